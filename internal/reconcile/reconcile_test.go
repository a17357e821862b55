package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/athledata/athlecrawl/internal/athle"
)

func intp(v int) *int { return &v }

func TestResolveClubExactExternalID(t *testing.T) {
	t.Parallel()

	m := NewMatcher(0.92, 0.01)
	known := []ClubRef{
		{ID: 7, External: athle.ExternalID{Raw: "045001", Gen: athle.GenerationPortal}, NormalizedName: "athletic club d'orleans", FirstYear: 2004, LastYear: 2023},
	}
	c := athle.ClubCandidate{ID: athle.ExternalID{Raw: "045001", Gen: athle.GenerationPortal}, Name: "Totally Renamed Club", Season: 2024}

	res := m.ResolveClub(c, known)
	assert.Equal(t, MatchExisting, res.Outcome)
	assert.Equal(t, int64(7), res.ID)
}

func TestResolveClubGenerationTagPreventsCrossMatch(t *testing.T) {
	t.Parallel()

	m := NewMatcher(0.92, 0.01)
	known := []ClubRef{
		{ID: 7, External: athle.ExternalID{Raw: "045001", Gen: athle.GenerationLegacy}, NormalizedName: "old club", FirstYear: 2004, LastYear: 2010},
	}
	c := athle.ClubCandidate{ID: athle.ExternalID{Raw: "045001", Gen: athle.GenerationPortal}, Name: "Completely Different", Season: 2024}

	res := m.ResolveClub(c, known)
	assert.Equal(t, New, res.Outcome, "same raw id from another generation is another entity")
}

func TestResolveClubFuzzyNeedsSeasonOverlap(t *testing.T) {
	t.Parallel()

	m := NewMatcher(0.9, 0.01)
	known := []ClubRef{
		{ID: 3, External: athle.ExternalID{Raw: "OLD1", Gen: athle.GenerationLegacy}, NormalizedName: "athletic club d'orleans", FirstYear: 2004, LastYear: 2010},
	}

	inWindow := athle.ClubCandidate{ID: athle.ExternalID{Raw: "NEW1", Gen: athle.GenerationPortal}, Name: "Athlétic Club d'Orléans", Season: 2010}
	assert.Equal(t, MatchExisting, m.ResolveClub(inWindow, known).Outcome)

	farAway := inWindow
	farAway.Season = 2024
	assert.Equal(t, New, m.ResolveClub(farAway, known).Outcome, "no season overlap, no fuzzy match")
}

func TestResolveClubAmbiguousTie(t *testing.T) {
	t.Parallel()

	m := NewMatcher(0.9, 0.05)
	known := []ClubRef{
		{ID: 1, External: athle.ExternalID{Raw: "A", Gen: athle.GenerationLegacy}, NormalizedName: "us athletisme melun", FirstYear: 2004, LastYear: 2024},
		{ID: 2, External: athle.ExternalID{Raw: "B", Gen: athle.GenerationLegacy}, NormalizedName: "us athletisme melun", FirstYear: 2004, LastYear: 2024},
	}
	c := athle.ClubCandidate{ID: athle.ExternalID{Raw: "C", Gen: athle.GenerationPortal}, Name: "US Athlétisme Melun", Season: 2020}

	res := m.ResolveClub(c, known)
	assert.Equal(t, AmbiguousNoMatch, res.Outcome, "two equally good matches never merge silently")
}

func TestResolveAthleteLicenseSurvivesIDChurn(t *testing.T) {
	t.Parallel()

	m := NewMatcher(0.92, 0.01)
	known := []AthleteRef{
		{ID: 11, External: athle.ExternalID{Raw: "OLD123", Gen: athle.GenerationLegacy}, LicenseID: "2387169", NormalizedName: "dupont jean"},
	}
	c := athle.AthleteCandidate{
		ID:        athle.ExternalID{Raw: "NEW456", Gen: athle.GenerationPortal},
		Name:      "DUPONT Jean",
		LicenseID: "2387169",
	}

	res := m.ResolveAthlete(c, known)
	assert.Equal(t, MatchExisting, res.Outcome)
	assert.Equal(t, int64(11), res.ID)
}

func TestResolveAthleteSentinelLicenseNeverMatches(t *testing.T) {
	t.Parallel()

	m := NewMatcher(0.92, 0.01)
	known := []AthleteRef{
		{ID: 11, External: athle.ExternalID{Raw: "A1", Gen: athle.GenerationPortal}, LicenseID: "-", NormalizedName: "somebody else"},
	}
	c := athle.AthleteCandidate{
		ID:        athle.ExternalID{Raw: "B2", Gen: athle.GenerationPortal},
		Name:      "Another Person",
		LicenseID: "-",
	}

	res := m.ResolveAthlete(c, known)
	assert.Equal(t, New, res.Outcome, "sentinel license ids are not identity")
}

func TestResolveAthleteFuzzyNeedsCorroboration(t *testing.T) {
	t.Parallel()

	m := NewMatcher(0.9, 0.01)
	known := []AthleteRef{
		{ID: 5, External: athle.ExternalID{Raw: "X", Gen: athle.GenerationLegacy}, NormalizedName: "martin claire", BirthYear: intp(1995), Sex: "F"},
	}

	full := athle.AthleteCandidate{
		ID:        athle.ExternalID{Raw: "Y", Gen: athle.GenerationPortal},
		Name:      "MARTIN  Claire",
		BirthYear: intp(1995),
		Sex:       "F",
	}
	assert.Equal(t, MatchExisting, m.ResolveAthlete(full, known).Outcome)

	wrongYear := full
	wrongYear.BirthYear = intp(1990)
	assert.Equal(t, New, m.ResolveAthlete(wrongYear, known).Outcome)

	noAttrs := full
	noAttrs.BirthYear = nil
	assert.Equal(t, New, m.ResolveAthlete(noAttrs, known).Outcome, "fuzzy name alone is not trusted")
}

func TestResolveAthleteBelowThresholdIsNew(t *testing.T) {
	t.Parallel()

	m := NewMatcher(0.95, 0.01)
	known := []AthleteRef{
		{ID: 5, External: athle.ExternalID{Raw: "X", Gen: athle.GenerationLegacy}, NormalizedName: "completely different name", BirthYear: intp(1995), Sex: "F"},
	}
	c := athle.AthleteCandidate{
		ID:        athle.ExternalID{Raw: "Y", Gen: athle.GenerationPortal},
		Name:      "MARTIN Claire",
		BirthYear: intp(1995),
		Sex:       "F",
	}

	assert.Equal(t, New, m.ResolveAthlete(c, known).Outcome)
}
