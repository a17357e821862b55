// Package extract parses raw listing and detail pages into candidate records.
// It tolerates missing optional fields and distinguishes a well-formed empty
// page (end of pagination) from a structurally unrecognizable one.
package extract

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/athledata/athlecrawl/internal/athle"
)

// ErrUnrecognizedListing reports a page whose listing container cannot be
// found at all. It is fatal to the current season, never to siblings.
var ErrUnrecognizedListing = errors.New("listing container not recognized")

// ListingError wraps ErrUnrecognizedListing with page context.
type ListingError struct {
	Kind   athle.EntityKind
	Detail string
}

func (e *ListingError) Error() string {
	return fmt.Sprintf("%s listing: %s", e.Kind, e.Detail)
}

func (e *ListingError) Unwrap() error {
	return ErrUnrecognizedListing
}

func parse(body []byte) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(bytes.NewReader(body))
}

// detectGeneration inspects page markup for era markers. Portal pages render
// their pagination as div#optionsPagination and link athletes under
// /athletes/; legacy pages use select.barSelect and javascript link throwers.
func detectGeneration(doc *goquery.Document) (athle.Generation, bool) {
	switch {
	case doc.Find("div#optionsPagination").Length() > 0,
		doc.Find("tbody.text-blue-primary").Length() > 0,
		doc.Find(`a[href*="/athletes/"]`).Length() > 0:
		return athle.GenerationPortal, true
	case doc.Find("select.barSelect").Length() > 0,
		doc.Find(`a[href*="bddThrowAthlete"]`).Length() > 0:
		return athle.GenerationLegacy, true
	default:
		return "", false
	}
}

// PageCount reports how many pagination entries the page advertises, zero
// when the page carries no pagination widget.
func PageCount(body []byte) int {
	doc, err := parse(body)
	if err != nil {
		return 0
	}
	if n := doc.Find("div#optionsPagination div.select-option").Length(); n > 0 {
		return n
	}
	return doc.Find("select.barSelect option").Length()
}
