package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/athledata/athlecrawl/internal/athle"
)

// trailingStars removes the affiliation markers the site appends to some
// club names.
var trailingStars = regexp.MustCompile(`\*+$`)

// Clubs extracts club candidates from one listing page. A recognized page
// with zero rows is a valid end-of-pagination signal and yields an empty
// slice with no error.
func Clubs(body []byte, season athle.Season) ([]athle.ClubCandidate, error) {
	doc, err := parse(body)
	if err != nil {
		return nil, &ListingError{Kind: athle.KindClub, Detail: err.Error()}
	}

	gen, ok := detectGeneration(doc)
	if !ok {
		return nil, &ListingError{Kind: athle.KindClub, Detail: "no pagination or listing markers"}
	}

	scope := doc.Find("tbody.text-blue-primary")
	if scope.Length() == 0 {
		scope = doc.Selection
	}

	var clubs []athle.ClubCandidate
	scope.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		// Data rows carry exactly seven direct cells; detail rows do not.
		tds := tr.ChildrenFiltered("td")
		if tds.Length() != 7 {
			return
		}
		anchor := tds.Eq(2).Find("a").First()
		if anchor.Length() == 0 {
			return
		}
		name := strings.Join(strings.Fields(anchor.Text()), " ")
		name = strings.TrimSpace(trailingStars.ReplaceAllString(name, ""))
		id := strings.TrimSpace(tds.Eq(3).Text())
		if id == "" || name == "" {
			return
		}
		clubs = append(clubs, athle.ClubCandidate{
			ID:     athle.ExternalID{Raw: id, Gen: gen},
			Name:   name,
			Season: season,
		})
	})

	return clubs, nil
}
