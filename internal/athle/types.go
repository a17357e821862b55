// Package athle defines core domain types shared across subsystems.
package athle

import "fmt"

// Generation identifies which era of the federation site issued an external
// id. Raw ids are only unique within a generation, so an id is never compared
// without its generation.
type Generation string

// Supported site generations.
const (
	// GenerationLegacy covers the asp.net listing site. Athlete ids come
	// from javascript link arguments and detail URLs use an obfuscated form.
	GenerationLegacy Generation = "legacy"
	// GenerationPortal covers the redesigned portal with /athletes/{id} paths.
	GenerationPortal Generation = "portal"
)

// Valid reports whether g is a known generation.
func (g Generation) Valid() bool {
	return g == GenerationLegacy || g == GenerationPortal
}

// ExternalID is a site-issued identifier tagged with the generation that
// produced it. Two ExternalIDs are the same entity only when both raw id and
// generation agree.
type ExternalID struct {
	Raw string
	Gen Generation
}

// IsZero reports whether the id carries no value.
func (id ExternalID) IsZero() bool {
	return id.Raw == ""
}

func (id ExternalID) String() string {
	return fmt.Sprintf("%s:%s", id.Gen, id.Raw)
}

// EntityKind distinguishes the two record types the crawler extracts.
type EntityKind string

// Supported entity kinds.
const (
	KindClub    EntityKind = "club"
	KindAthlete EntityKind = "athlete"
)

// ClubCandidate is one club row extracted from a listing page, before
// reconciliation against the store.
type ClubCandidate struct {
	ID     ExternalID
	Name   string
	Season Season
}

// AthleteCandidate is one athlete extracted from a club listing, optionally
// enriched from the athlete's detail page. Optional fields stay empty/nil when
// the source page does not carry them.
type AthleteCandidate struct {
	ID          ExternalID
	Name        string
	BirthYear   *int
	LicenseID   string
	Sex         string
	Nationality string
	// Club scopes the discovery context; it is not persisted as a membership.
	Club ExternalID
	// Season the candidate was observed in.
	Season Season
}

// licenseSentinels are values the site emits in place of a real license
// number. They are stored verbatim but never participate in identity.
var licenseSentinels = map[string]struct{}{
	"":     {},
	"-":    {},
	"None": {},
}

// ValidLicense reports whether the license id is a usable business key.
func ValidLicense(license string) bool {
	_, sentinel := licenseSentinels[license]
	return !sentinel
}
