package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athledata/athlecrawl/internal/athle"
)

const portalDetailPage = `<html><body>
<p class="text-white">Né(e) en : 2004</p>
<p class="text-white">Catégorie / Nationalité : ES / F / FRA</p>
<p class="text-white">N° de licence : 2387169 - COMP (maj le 12/04/2024)</p>
</body></html>`

const legacyDetailPage = `<html><body><table>
<tr><td>Né(e) en</td><td></td><td><b>1988</b></td></tr>
<tr><td>N° Licence</td><td></td><td>123456 - COMP</td></tr>
<tr><td>Cat. / Nat.</td><td></td><td>SE / M / FRA</td></tr>
</table></body></html>`

func TestParseAthleteDetailPortal(t *testing.T) {
	t.Parallel()

	d, err := ParseAthleteDetail([]byte(portalDetailPage), athle.GenerationPortal)
	require.NoError(t, err)

	require.NotNil(t, d.BirthYear)
	assert.Equal(t, 2004, *d.BirthYear)
	assert.Equal(t, "2387169", d.LicenseID)
	assert.Equal(t, "F", d.Sex)
	assert.Equal(t, "FRA", d.Nationality)
}

func TestParseAthleteDetailLegacy(t *testing.T) {
	t.Parallel()

	d, err := ParseAthleteDetail([]byte(legacyDetailPage), athle.GenerationLegacy)
	require.NoError(t, err)

	require.NotNil(t, d.BirthYear)
	assert.Equal(t, 1988, *d.BirthYear)
	assert.Equal(t, "123456", d.LicenseID)
	assert.Equal(t, "M", d.Sex)
	assert.Equal(t, "FRA", d.Nationality)
}

func TestParseAthleteDetailMissingFields(t *testing.T) {
	t.Parallel()

	page := `<html><body><p class="text-white">Né(e) en : 2001</p></body></html>`
	d, err := ParseAthleteDetail([]byte(page), athle.GenerationPortal)
	require.NoError(t, err)

	require.NotNil(t, d.BirthYear)
	assert.Equal(t, 2001, *d.BirthYear)
	assert.Empty(t, d.LicenseID)
	assert.Empty(t, d.Sex)
	assert.Empty(t, d.Nationality)
}

func TestParseAthleteDetailEmptyPage(t *testing.T) {
	t.Parallel()

	d, err := ParseAthleteDetail([]byte("<html><body></body></html>"), athle.GenerationLegacy)
	require.NoError(t, err)
	assert.Nil(t, d.BirthYear)
	assert.Empty(t, d.LicenseID)
}
