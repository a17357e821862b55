// Package reconcile decides whether a scraped candidate matches a stored
// entity. Resolution is a three-way outcome so callers can never silently
// merge an uncertain identity.
package reconcile

import (
	"github.com/antzucaro/matchr"

	"github.com/athledata/athlecrawl/internal/athle"
	"github.com/athledata/athlecrawl/internal/normalize"
)

// Outcome classifies a resolution.
type Outcome int

// Resolution outcomes.
const (
	// New means no stored entity matches; insert a fresh row.
	New Outcome = iota
	// MatchExisting names the stored entity the candidate is.
	MatchExisting
	// AmbiguousNoMatch means more than one stored entity matched above
	// threshold within the tie margin; nothing is merged.
	AmbiguousNoMatch
)

func (o Outcome) String() string {
	switch o {
	case MatchExisting:
		return "match"
	case AmbiguousNoMatch:
		return "ambiguous"
	default:
		return "new"
	}
}

// Resolution is the result of reconciling one candidate.
type Resolution struct {
	Outcome Outcome
	// ID is the internal id of the matched entity, set for MatchExisting.
	ID int64
}

// ClubRef is the reconciler's view of a stored club.
type ClubRef struct {
	ID             int64
	External       athle.ExternalID
	NormalizedName string
	FirstYear      athle.Season
	LastYear       athle.Season
}

// AthleteRef is the reconciler's view of a stored athlete.
type AthleteRef struct {
	ID             int64
	External       athle.ExternalID
	LicenseID      string
	NormalizedName string
	BirthYear      *int
	Sex            string
}

// Matcher resolves candidates against known entities. Threshold is the
// minimum Jaro-Winkler similarity for a fuzzy name match; tieMargin is the
// band below the best score within which a second match makes the resolution
// ambiguous.
type Matcher struct {
	threshold float64
	tieMargin float64
}

// NewMatcher builds a Matcher; out-of-range knobs fall back to defaults.
func NewMatcher(threshold, tieMargin float64) *Matcher {
	if threshold <= 0 || threshold > 1 {
		threshold = 0.92
	}
	if tieMargin < 0 || tieMargin >= 1 {
		tieMargin = 0.01
	}
	return &Matcher{threshold: threshold, tieMargin: tieMargin}
}

// ResolveClub reconciles a club candidate. Resolution order: exact external
// id (with generation), then fuzzy normalized name corroborated by an
// overlapping season range.
func (m *Matcher) ResolveClub(c athle.ClubCandidate, known []ClubRef) Resolution {
	for _, ref := range known {
		if ref.External == c.ID {
			return Resolution{Outcome: MatchExisting, ID: ref.ID}
		}
	}

	name := normalize.Name(c.Name)
	if name == "" {
		return Resolution{Outcome: New}
	}

	var scored []scoredRef
	for _, ref := range known {
		// Corroboration: the observed season must touch the stored
		// activity window (one year of slack for gap seasons).
		if c.Season < ref.FirstYear-1 || c.Season > ref.LastYear+1 {
			continue
		}
		scored = appendScored(scored, ref.ID, name, ref.NormalizedName, m.threshold)
	}
	return m.pick(scored)
}

// ResolveAthlete reconciles an athlete candidate. Resolution order: exact
// external id (with generation), then exact valid-license match, then fuzzy
// normalized name corroborated by birth year and sex.
func (m *Matcher) ResolveAthlete(a athle.AthleteCandidate, known []AthleteRef) Resolution {
	for _, ref := range known {
		if ref.External == a.ID {
			return Resolution{Outcome: MatchExisting, ID: ref.ID}
		}
	}

	if athle.ValidLicense(a.LicenseID) {
		for _, ref := range known {
			if ref.LicenseID == a.LicenseID {
				return Resolution{Outcome: MatchExisting, ID: ref.ID}
			}
		}
	}

	name := normalize.Name(a.Name)
	if name == "" || a.BirthYear == nil || a.Sex == "" {
		// Without corroborating attributes a fuzzy name alone is not
		// trusted.
		return Resolution{Outcome: New}
	}

	var scored []scoredRef
	for _, ref := range known {
		if ref.BirthYear == nil || *ref.BirthYear != *a.BirthYear || ref.Sex != a.Sex {
			continue
		}
		scored = appendScored(scored, ref.ID, name, ref.NormalizedName, m.threshold)
	}
	return m.pick(scored)
}

type scoredRef struct {
	id    int64
	score float64
}

func appendScored(scored []scoredRef, id int64, name, knownName string, threshold float64) []scoredRef {
	if knownName == "" {
		return scored
	}
	score := matchr.JaroWinkler(name, knownName, false)
	if score < threshold {
		return scored
	}
	return append(scored, scoredRef{id: id, score: score})
}

// pick selects the best above-threshold score, declaring ambiguity when a
// runner-up sits inside the tie margin.
func (m *Matcher) pick(scored []scoredRef) Resolution {
	if len(scored) == 0 {
		return Resolution{Outcome: New}
	}
	best := scored[0]
	runnerUp := -1.0
	for _, s := range scored[1:] {
		if s.score > best.score {
			runnerUp = best.score
			best = s
		} else if s.score > runnerUp {
			runnerUp = s.score
		}
	}
	if runnerUp >= 0 && best.score-runnerUp <= m.tieMargin {
		return Resolution{Outcome: AmbiguousNoMatch}
	}
	return Resolution{Outcome: MatchExisting, ID: best.id}
}
