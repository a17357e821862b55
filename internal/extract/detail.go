package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/athledata/athlecrawl/internal/athle"
)

// AthleteDetail carries the optional attributes scraped from an athlete's
// detail page. Every field may be absent without failing extraction.
type AthleteDetail struct {
	BirthYear   *int
	LicenseID   string
	Sex         string
	Nationality string
}

var (
	yearPattern    = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	licensePattern = regexp.MustCompile(`\b\d{5,}\b`)
	nonAlpha       = regexp.MustCompile(`[^A-Za-z]`)
)

// ParseAthleteDetail extracts birth year, license id, sex and nationality
// from a detail page of the given generation. Missing fields stay zero.
func ParseAthleteDetail(body []byte, gen athle.Generation) (AthleteDetail, error) {
	doc, err := parse(body)
	if err != nil {
		return AthleteDetail{}, err
	}
	if gen == athle.GenerationLegacy {
		return legacyDetail(doc), nil
	}
	return portalDetail(doc), nil
}

// portalDetail reads the p.text-white info lines of the redesigned site:
//
//	Né(e) en : 2004
//	Catégorie / Nationalité : ES / F / FRA
//	N° de licence : 2387169 - COMP (maj le ...)
func portalDetail(doc *goquery.Document) AthleteDetail {
	var d AthleteDetail
	doc.Find("p.text-white").Each(func(_ int, p *goquery.Selection) {
		line := strings.Join(strings.Fields(p.Text()), " ")
		switch {
		case strings.HasPrefix(line, "Né(e) en"):
			if m := yearPattern.FindString(line); m != "" {
				if year, err := strconv.Atoi(m); err == nil {
					d.BirthYear = &year
				}
			}
		case strings.HasPrefix(line, "Catégorie / Nationalité"):
			_, value, found := strings.Cut(line, ": ")
			if !found {
				return
			}
			parts := strings.Split(value, "/")
			if len(parts) >= 3 {
				d.Sex = cleanSex(parts[1])
				d.Nationality = cleanNationality(parts[2])
			}
		case strings.HasPrefix(line, "N° de licence"):
			if m := licensePattern.FindString(line); m != "" {
				d.LicenseID = m
			}
		}
	})
	return d
}

// legacyDetail walks the label/value table cells of the asp.net site. The
// value sits two sibling cells after the label.
func legacyDetail(doc *goquery.Document) AthleteDetail {
	var d AthleteDetail

	if value := legacyValue(doc, "Né(e) en"); value != "" {
		if m := yearPattern.FindString(value); m != "" {
			if year, err := strconv.Atoi(m); err == nil {
				d.BirthYear = &year
			}
		}
	}

	if value := legacyValue(doc, "N° Licence"); value != "" {
		d.LicenseID = strings.TrimSpace(strings.Split(value, " -")[0])
	}

	if value := legacyValue(doc, "Cat. / Nat."); value != "" {
		parts := strings.Split(value, "/")
		if len(parts) >= 3 {
			d.Sex = cleanSex(parts[1])
			d.Nationality = cleanNationality(parts[2])
		}
	}

	return d
}

func legacyValue(doc *goquery.Document, label string) string {
	var value string
	doc.Find("td").EachWithBreak(func(_ int, td *goquery.Selection) bool {
		if strings.TrimSpace(td.Text()) != label {
			return true
		}
		value = strings.TrimSpace(td.Next().Next().Text())
		return false
	})
	return value
}

func cleanSex(raw string) string {
	s := nonAlpha.ReplaceAllString(raw, "")
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1])
}

func cleanNationality(raw string) string {
	s := nonAlpha.ReplaceAllString(raw, "")
	if len(s) > 3 {
		s = s[:3]
	}
	return strings.ToUpper(s)
}
