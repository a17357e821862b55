package athle

import (
	"fmt"
	"strings"
)

// ObfuscateLegacyID encodes a raw athlete id into the form the legacy site
// embeds in detail-page URLs: each character c becomes the decimal pair
// (99 - code(c)) followed by code(c). "1234" encodes to "5049495048514752".
func ObfuscateLegacyID(raw string) string {
	var b strings.Builder
	for _, c := range raw {
		fmt.Fprintf(&b, "%d%d", 99-int(c), int(c))
	}
	return b.String()
}
