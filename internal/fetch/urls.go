package fetch

import (
	"fmt"

	"github.com/athledata/athlecrawl/internal/athle"
)

// Endpoints holds the two site roots. BaseURL points at the legacy asp.net
// tree, PortalURL at the redesigned portal.
type Endpoints struct {
	BaseURL   string
	PortalURL string
}

// ClubsListingURL builds the paginated club listing URL for a season. Club
// listings only exist on the portal; frmposition selects the page and is
// 0-based, so the first page of a season is frmposition=0.
func (e Endpoints) ClubsListingURL(season athle.Season, page int) string {
	return fmt.Sprintf(
		"%s/bases/liste.aspx?frmpostback=true&frmbase=cclubs&frmmode=1&frmespace=0&frmsaison=%d&frmsexe=&frmligue=&frmdepartement=&frmnclub=&frmruptures=&frmposition=%d",
		e.PortalURL, season, page,
	)
}

// ClubAthletesURL builds the paginated athlete listing URL for one club in
// one season. The URL scheme depends on the generation that issued the club
// id; frmposition is 0-based on both.
func (e Endpoints) ClubAthletesURL(season athle.Season, club athle.ExternalID, page int) string {
	if club.Gen == athle.GenerationLegacy {
		return fmt.Sprintf(
			"%s/liste.aspx?frmpostback=true&frmbase=resultats&frmmode=1&frmespace=0&frmsaison=%d&frmclub=%s&frmposition=%d",
			e.BaseURL, season, club.Raw, page,
		)
	}
	return fmt.Sprintf(
		"%s/bases/liste.aspx?frmbase=cclubs&frmmode=2&frmespace=&frmtypeclub=M&frmsaison=%d&frmnclub=%s&frmposition=%d",
		e.PortalURL, season, club.Raw, page,
	)
}

// AthleteDetailURL builds the athlete detail page URL. Legacy ids are
// obfuscated into the seq parameter; portal ids map to a plain path.
func (e Endpoints) AthleteDetailURL(id athle.ExternalID) string {
	if id.Gen == athle.GenerationLegacy {
		return fmt.Sprintf("%s/athletes.aspx?base=records&seq=%s", e.BaseURL, athle.ObfuscateLegacyID(id.Raw))
	}
	return fmt.Sprintf("%s/athletes/%s", e.PortalURL, id.Raw)
}
