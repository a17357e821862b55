// Package normalize canonicalizes free-text names for matching.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes characters and drops combining marks, turning "É"
// into "E". Built once; transform.String is safe for concurrent use.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Name returns the canonical form of a display name: diacritics stripped,
// lower-cased, whitespace collapsed, trimmed. It is deterministic and
// idempotent: Name(Name(x)) == Name(x).
func Name(raw string) string {
	stripped, _, err := transform.String(stripMarks, raw)
	if err != nil {
		// Undecodable input falls back to the raw bytes; lowering and
		// collapsing still apply.
		stripped = raw
	}
	return strings.Join(strings.Fields(strings.ToLower(stripped)), " ")
}
