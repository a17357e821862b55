package cmd

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athledata/athlecrawl/internal/athle"
	"github.com/athledata/athlecrawl/internal/config"
)

func testConfig() config.Config {
	cfg := config.Config{}
	cfg.Crawler.FirstYear = 2004
	return cfg
}

func TestResolveSeasonsDefaults(t *testing.T) {
	t.Parallel()

	// October 2025 is already season 2026.
	clock := clockwork.NewFakeClockAt(time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC))
	r, err := resolveSeasons(testConfig(), clock, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, athle.Season(2004), r.First)
	assert.Equal(t, athle.Season(2026), r.Last)
}

func TestResolveSeasonsFlagsOverride(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	r, err := resolveSeasons(testConfig(), clock, 2018, 2020)
	require.NoError(t, err)
	assert.Equal(t, athle.SeasonRange{First: 2018, Last: 2020}, r)
}

func TestResolveSeasonsInvertedRangeFails(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	_, err := resolveSeasons(testConfig(), clock, 2022, 2018)
	require.Error(t, err)
}

func TestResolvePinnedClub(t *testing.T) {
	t.Parallel()

	ext, err := resolvePinnedClub(athle.KindAthlete, "045001", "portal")
	require.NoError(t, err)
	require.NotNil(t, ext)
	assert.Equal(t, athle.ExternalID{Raw: "045001", Gen: athle.GenerationPortal}, *ext)

	ext, err = resolvePinnedClub(athle.KindAthlete, "", "portal")
	require.NoError(t, err)
	assert.Nil(t, ext)

	// The club flag only applies to athlete crawls.
	ext, err = resolvePinnedClub(athle.KindClub, "045001", "portal")
	require.NoError(t, err)
	assert.Nil(t, ext)

	_, err = resolvePinnedClub(athle.KindAthlete, "045001", "modern")
	require.Error(t, err)
}
