package athle

import (
	"fmt"

	"github.com/jonboulle/clockwork"
)

// FirstSeason is the earliest season the federation database covers.
const FirstSeason Season = 2004

// Season is a federation competition year. Seasons roll over on September 1st
// and are labeled by the calendar year they end in: an observation in October
// 2023 belongs to season 2024.
type Season int

func (s Season) String() string {
	return fmt.Sprintf("%d", int(s))
}

// CurrentSeason derives the running season from the clock's notion of now.
func CurrentSeason(clock clockwork.Clock) Season {
	now := clock.Now()
	if now.Month() >= 9 {
		return Season(now.Year() + 1)
	}
	return Season(now.Year())
}

// SeasonRange is an inclusive span of seasons to crawl.
type SeasonRange struct {
	First Season
	Last  Season
}

// Validate rejects empty or inverted ranges before any work starts.
func (r SeasonRange) Validate() error {
	if r.First <= 0 || r.Last <= 0 {
		return fmt.Errorf("season range requires positive years, got %d-%d", r.First, r.Last)
	}
	if r.First > r.Last {
		return fmt.Errorf("season range is inverted: %d > %d", r.First, r.Last)
	}
	return nil
}

// Seasons lists the range in increasing order.
func (r SeasonRange) Seasons() []Season {
	out := make([]Season, 0, int(r.Last-r.First)+1)
	for s := r.First; s <= r.Last; s++ {
		out = append(out, s)
	}
	return out
}

// Contains reports whether s falls inside the range.
func (r SeasonRange) Contains(s Season) bool {
	return s >= r.First && s <= r.Last
}
