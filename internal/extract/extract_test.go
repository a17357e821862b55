package extract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athledata/athlecrawl/internal/athle"
)

const portalClubsPage = `<html><body>
<div id="optionsPagination">
  <div class="select-option">1</div>
  <div class="select-option">2</div>
</div>
<table><tbody class="text-blue-primary">
  <tr>
    <td>1</td><td></td>
    <td><a href="#">Athlétic  Club d'Orléans **</a></td>
    <td> 045001 </td>
    <td>45</td><td>CEN</td><td>120</td>
  </tr>
  <tr class="detail-row"><td colspan="7">expanded details</td></tr>
  <tr>
    <td>2</td><td></td>
    <td><a href="#">ASPTT Tours</a></td>
    <td>037012</td>
    <td>37</td><td>CEN</td><td>87</td>
  </tr>
  <tr>
    <td>3</td><td></td>
    <td>no anchor here</td>
    <td>099999</td>
    <td>99</td><td>XXX</td><td>1</td>
  </tr>
</tbody></table>
</body></html>`

const portalEmptyClubsPage = `<html><body>
<div id="optionsPagination"></div>
<table><tbody class="text-blue-primary"></tbody></table>
</body></html>`

const legacyAthletesPage = `<html><body>
<select class="barSelect"><option>1</option><option>2</option></select>
<table>
  <tr><td><a href="javascript:bddThrowAthlete('base', 123456, 0)">DUPONT Jean</a></td></tr>
  <tr><td><a href="javascript:bddThrowAthlete('base', '78901', 0)">MARTIN  Claire</a></td></tr>
  <tr><td><a href="javascript:bddThrowAthlete('base', 123456, 0)">DUPONT Jean</a></td></tr>
</table>
</body></html>`

const portalAthletesPage = `<html><body>
<div id="optionsPagination"><div class="select-option">1</div></div>
<table>
  <tr><td><a href="/athletes/424242">BERNARD Luc</a></td></tr>
  <tr><td><a href="https://www.athle.fr/athletes/555?tab=records">PETIT Anne</a></td></tr>
</table>
</body></html>`

const brokenPage = `<html><body><h1>Maintenance en cours</h1></body></html>`

func TestClubsParsesPortalRows(t *testing.T) {
	t.Parallel()

	clubs, err := Clubs([]byte(portalClubsPage), 2024)
	require.NoError(t, err)
	require.Len(t, clubs, 2)

	assert.Equal(t, athle.ExternalID{Raw: "045001", Gen: athle.GenerationPortal}, clubs[0].ID)
	assert.Equal(t, "Athlétic Club d'Orléans", clubs[0].Name, "trailing stars and doubled spaces stripped")
	assert.Equal(t, athle.Season(2024), clubs[0].Season)
	assert.Equal(t, "037012", clubs[1].ID.Raw)
}

func TestClubsEmptyPageIsNotAnError(t *testing.T) {
	t.Parallel()

	clubs, err := Clubs([]byte(portalEmptyClubsPage), 2024)
	require.NoError(t, err)
	assert.Empty(t, clubs)
}

func TestClubsUnrecognizableListingFails(t *testing.T) {
	t.Parallel()

	_, err := Clubs([]byte(brokenPage), 2024)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnrecognizedListing)

	var listingErr *ListingError
	require.True(t, errors.As(err, &listingErr))
	assert.Equal(t, athle.KindClub, listingErr.Kind)
}

func TestAthletesLegacyListing(t *testing.T) {
	t.Parallel()

	club := athle.ExternalID{Raw: "042", Gen: athle.GenerationLegacy}
	athletes, err := Athletes([]byte(legacyAthletesPage), 2023, club)
	require.NoError(t, err)
	require.Len(t, athletes, 2, "duplicate link collapses")

	assert.Equal(t, athle.ExternalID{Raw: "123456", Gen: athle.GenerationLegacy}, athletes[0].ID)
	assert.Equal(t, "DUPONT Jean", athletes[0].Name)
	assert.Equal(t, athle.ExternalID{Raw: "78901", Gen: athle.GenerationLegacy}, athletes[1].ID)
	assert.Equal(t, "MARTIN Claire", athletes[1].Name)
	assert.Equal(t, club, athletes[0].Club)
	assert.Equal(t, athle.Season(2023), athletes[0].Season)
}

func TestAthletesPortalListing(t *testing.T) {
	t.Parallel()

	club := athle.ExternalID{Raw: "045001", Gen: athle.GenerationPortal}
	athletes, err := Athletes([]byte(portalAthletesPage), 2024, club)
	require.NoError(t, err)
	require.Len(t, athletes, 2)

	assert.Equal(t, athle.ExternalID{Raw: "424242", Gen: athle.GenerationPortal}, athletes[0].ID)
	assert.Equal(t, "555", athletes[1].ID.Raw, "query string stripped from id")
}

func TestAthletesUnrecognizableListingFails(t *testing.T) {
	t.Parallel()

	_, err := Athletes([]byte(brokenPage), 2024, athle.ExternalID{})
	assert.ErrorIs(t, err, ErrUnrecognizedListing)
}

func TestPageCount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 2, PageCount([]byte(portalClubsPage)))
	assert.Equal(t, 2, PageCount([]byte(legacyAthletesPage)))
	assert.Equal(t, 0, PageCount([]byte(brokenPage)))
}
