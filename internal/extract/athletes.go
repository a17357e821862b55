package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/athledata/athlecrawl/internal/athle"
)

// Athletes extracts athlete candidates from one club listing page. Candidates
// carry only external id and display name at this stage; detail enrichment
// happens separately. Duplicate ids within a page collapse to the first
// occurrence.
func Athletes(body []byte, season athle.Season, club athle.ExternalID) ([]athle.AthleteCandidate, error) {
	doc, err := parse(body)
	if err != nil {
		return nil, &ListingError{Kind: athle.KindAthlete, Detail: err.Error()}
	}

	gen, ok := detectGeneration(doc)
	if !ok {
		return nil, &ListingError{Kind: athle.KindAthlete, Detail: "no pagination or listing markers"}
	}

	seen := make(map[string]struct{})
	var athletes []athle.AthleteCandidate
	add := func(raw, name string) {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return
		}
		if _, dup := seen[raw]; dup {
			return
		}
		seen[raw] = struct{}{}
		athletes = append(athletes, athle.AthleteCandidate{
			ID:     athle.ExternalID{Raw: raw, Gen: gen},
			Name:   strings.Join(strings.Fields(name), " "),
			Club:   club,
			Season: season,
		})
	}

	if gen == athle.GenerationLegacy {
		doc.Find(`a[href*="bddThrowAthlete"]`).Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			add(legacyAthleteID(href), a.Text())
		})
		return athletes, nil
	}

	doc.Find(`a[href*="/athletes/"]`).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		add(portalAthleteID(href), a.Text())
	})
	return athletes, nil
}

// legacyAthleteID pulls the raw id out of a javascript:bddThrowAthlete link;
// the id is the second comma-separated argument, quoted.
func legacyAthleteID(href string) string {
	parts := strings.Split(href, ",")
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(parts[1]), "'"))
}

// portalAthleteID pulls the raw id out of an /athletes/{id} path.
func portalAthleteID(href string) string {
	idx := strings.Index(href, "/athletes/")
	if idx < 0 {
		return ""
	}
	rest := strings.TrimPrefix(href[idx:], "/athletes/")
	if cut := strings.IndexAny(rest, "/?#"); cut >= 0 {
		rest = rest[:cut]
	}
	return rest
}
