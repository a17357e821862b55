// Package crawl drives season iteration and pagination over the federation
// site. One logical worker processes pages strictly sequentially; failures
// are isolated per season and collected into a Report.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/athledata/athlecrawl/internal/archive"
	"github.com/athledata/athlecrawl/internal/athle"
	"github.com/athledata/athlecrawl/internal/extract"
	"github.com/athledata/athlecrawl/internal/fetch"
	"github.com/athledata/athlecrawl/internal/metrics"
	"github.com/athledata/athlecrawl/internal/reconcile"
	"github.com/athledata/athlecrawl/internal/store"
)

// Fetcher retrieves raw pages. fetch.Client satisfies it; tests substitute
// fakes so the state machine runs without network I/O.
type Fetcher interface {
	ClubsPage(ctx context.Context, season athle.Season, page int) (fetch.Page, error)
	ClubAthletesPage(ctx context.Context, season athle.Season, club athle.ExternalID, page int) (fetch.Page, error)
	AthleteDetail(ctx context.Context, id athle.ExternalID) (fetch.Page, error)
}

// State is the crawl position inside one season, threaded through the page
// step functions. Progress is tracked at page granularity only; re-processing
// a page after a restart is safe because upserts are idempotent.
type State struct {
	Season athle.Season
	Club   athle.ExternalID
	// Page is the 0-based listing position (the site's frmposition).
	Page int
	// MaxPages is the advertised page count, learned from the first page.
	// The lister clamps out-of-range positions to the last page instead of
	// serving an empty one, so iteration must be bounded by it.
	MaxPages int
}

// Crawler orchestrates fetch, extract, reconcile and upsert for a run.
type Crawler struct {
	fetcher  Fetcher
	clubs    store.Clubs
	athletes store.Athletes
	engine   *store.Engine
	matcher  *reconcile.Matcher
	archive  *archive.Store
	clock    clockwork.Clock
	delay    time.Duration
	logger   *zap.Logger
}

// Options configures a Crawler.
type Options struct {
	Fetcher  Fetcher
	Clubs    store.Clubs
	Athletes store.Athletes
	Matcher  *reconcile.Matcher
	Archive  *archive.Store
	Clock    clockwork.Clock
	Delay    time.Duration
	Logger   *zap.Logger
}

// New builds a Crawler.
func New(opts Options) *Crawler {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Matcher == nil {
		opts.Matcher = reconcile.NewMatcher(0, 0)
	}
	return &Crawler{
		fetcher:  opts.Fetcher,
		clubs:    opts.Clubs,
		athletes: opts.Athletes,
		engine:   store.NewEngine(opts.Clubs, opts.Athletes, opts.Matcher, opts.Logger),
		matcher:  opts.Matcher,
		archive:  opts.Archive,
		clock:    opts.Clock,
		delay:    opts.Delay,
		logger:   opts.Logger,
	}
}

// RunClubs crawls the club listing for every season in the range. Seasons
// fail independently; the returned error is non-nil only when the run as a
// whole was cut short (context cancellation).
func (c *Crawler) RunClubs(ctx context.Context, runID string, seasons athle.SeasonRange) (Report, error) {
	report := Report{RunID: runID}
	for _, season := range seasons.Seasons() {
		res := c.crawlClubSeason(ctx, season)
		report.Results = append(report.Results, res)
		metrics.ObserveSeason(string(athle.KindClub), string(res.Outcome))
		c.logSeason(res)
		if err := ctx.Err(); err != nil {
			return report, err
		}
	}
	return report, nil
}

// RunAthletes crawls athlete listings for every season in the range. Scope is
// the clubs already stored as active in each season, or the single club given
// explicitly.
func (c *Crawler) RunAthletes(ctx context.Context, runID string, seasons athle.SeasonRange, only *athle.ExternalID) (Report, error) {
	report := Report{RunID: runID}

	var pinned *store.ClubScope
	if only != nil {
		scope, found, err := c.clubs.ClubByExternalID(ctx, *only)
		if err != nil {
			return report, fmt.Errorf("resolve club %s: %w", only, err)
		}
		if !found {
			return report, fmt.Errorf("club %s is not in the store; crawl clubs first", only)
		}
		pinned = &scope
	}

	for _, season := range seasons.Seasons() {
		res := c.crawlAthleteSeason(ctx, season, pinned)
		report.Results = append(report.Results, res)
		metrics.ObserveSeason(string(athle.KindAthlete), string(res.Outcome))
		c.logSeason(res)
		if err := ctx.Err(); err != nil {
			return report, err
		}
	}
	return report, nil
}

// crawlClubSeason drives the club page step function until the season is
// done: an empty well-formed page or the advertised page count, whichever
// comes first.
func (c *Crawler) crawlClubSeason(ctx context.Context, season athle.Season) SeasonResult {
	res := SeasonResult{Season: season, Kind: athle.KindClub, Outcome: Succeeded}
	st := State{Season: season, MaxPages: 1}

	for {
		next, done, err := c.stepClubPage(ctx, st, &res)
		if err != nil {
			return c.fail(res, err)
		}
		if done {
			return res
		}
		st = next
	}
}

// stepClubPage processes one listing position and returns the advanced state.
func (c *Crawler) stepClubPage(ctx context.Context, st State, res *SeasonResult) (State, bool, error) {
	if err := c.pause(ctx, st.Page); err != nil {
		return st, false, err
	}

	page, err := c.fetcher.ClubsPage(ctx, st.Season, st.Page)
	if err != nil {
		return st, false, fmt.Errorf("season %d position %d: %w", st.Season, st.Page, err)
	}
	res.Pages++
	c.archive.Save(ctx, st.Season, athle.KindClub, page, c.clock.Now())
	if st.Page == 0 {
		if n := extract.PageCount(page.Body); n > 0 {
			st.MaxPages = n
		}
		c.logger.Debug("listing pagination",
			zap.Int("season", int(st.Season)),
			zap.Int("advertised_pages", st.MaxPages),
		)
	}

	cands, err := extract.Clubs(page.Body, st.Season)
	if err != nil {
		return st, false, fmt.Errorf("season %d position %d: %w", st.Season, st.Page, err)
	}
	if len(cands) == 0 {
		return st, true, nil
	}

	if err := c.applyClubs(ctx, cands, res); err != nil {
		return st, false, err
	}
	st.Page++
	return st, st.Page >= st.MaxPages, nil
}

func (c *Crawler) applyClubs(ctx context.Context, cands []athle.ClubCandidate, res *SeasonResult) error {
	known, err := c.clubs.SnapshotClubs(ctx)
	if err != nil {
		return fmt.Errorf("snapshot clubs: %w", err)
	}
	for _, cand := range cands {
		applied, err := c.engine.ApplyClub(ctx, c.matcher.ResolveClub(cand, known), cand)
		if err != nil {
			return fmt.Errorf("apply club %s: %w", cand.ID, err)
		}
		res.count(applied.Op)
	}
	return nil
}

// crawlAthleteSeason nests club iteration inside the season: every active
// club's listing is paged through, athletes enriched from their detail pages.
func (c *Crawler) crawlAthleteSeason(ctx context.Context, season athle.Season, pinned *store.ClubScope) SeasonResult {
	res := SeasonResult{Season: season, Kind: athle.KindAthlete, Outcome: Succeeded}

	var scopes []store.ClubScope
	if pinned != nil {
		scopes = []store.ClubScope{*pinned}
	} else {
		var err error
		scopes, err = c.clubs.ActiveClubs(ctx, season)
		if err != nil {
			return c.fail(res, fmt.Errorf("season %d scope: %w", season, err))
		}
	}

	for _, club := range scopes {
		st := State{Season: season, Club: club.External, MaxPages: 1}
		for {
			next, done, err := c.stepAthletePage(ctx, st, &res)
			if err != nil {
				return c.fail(res, err)
			}
			if done {
				break
			}
			st = next
		}
	}
	return res
}

// stepAthletePage processes one position of a club's athlete listing and
// returns the advanced state.
func (c *Crawler) stepAthletePage(ctx context.Context, st State, res *SeasonResult) (State, bool, error) {
	if err := c.pause(ctx, st.Page); err != nil {
		return st, false, err
	}

	page, err := c.fetcher.ClubAthletesPage(ctx, st.Season, st.Club, st.Page)
	if err != nil {
		return st, false, fmt.Errorf("season %d club %s position %d: %w", st.Season, st.Club, st.Page, err)
	}
	res.Pages++
	c.archive.Save(ctx, st.Season, athle.KindAthlete, page, c.clock.Now())
	if st.Page == 0 {
		if n := extract.PageCount(page.Body); n > 0 {
			st.MaxPages = n
		}
	}

	cands, err := extract.Athletes(page.Body, st.Season, st.Club)
	if err != nil {
		return st, false, fmt.Errorf("season %d club %s position %d: %w", st.Season, st.Club, st.Page, err)
	}
	if len(cands) == 0 {
		return st, true, nil
	}

	if err := c.applyAthletes(ctx, cands, res); err != nil {
		return st, false, err
	}
	st.Page++
	return st, st.Page >= st.MaxPages, nil
}

func (c *Crawler) applyAthletes(ctx context.Context, cands []athle.AthleteCandidate, res *SeasonResult) error {
	known, err := c.athletes.SnapshotAthletes(ctx)
	if err != nil {
		return fmt.Errorf("snapshot athletes: %w", err)
	}
	for _, cand := range cands {
		c.enrich(ctx, &cand)
		applied, err := c.engine.ApplyAthlete(ctx, c.matcher.ResolveAthlete(cand, known), cand)
		if err != nil {
			return fmt.Errorf("apply athlete %s: %w", cand.ID, err)
		}
		res.count(applied.Op)
	}
	return nil
}

// enrich fills optional athlete attributes from the detail page. Enrichment
// is best-effort: a failed or unparsable detail page leaves the candidate
// with listing-level fields only.
func (c *Crawler) enrich(ctx context.Context, cand *athle.AthleteCandidate) {
	page, err := c.fetcher.AthleteDetail(ctx, cand.ID)
	if err != nil {
		c.logger.Warn("athlete detail fetch failed",
			zap.String("athlete", cand.ID.String()),
			zap.Error(err),
		)
		return
	}
	detail, err := extract.ParseAthleteDetail(page.Body, cand.ID.Gen)
	if err != nil {
		c.logger.Warn("athlete detail unparsable",
			zap.String("athlete", cand.ID.String()),
			zap.Error(err),
		)
		return
	}
	if detail.BirthYear != nil {
		cand.BirthYear = detail.BirthYear
	}
	if detail.LicenseID != "" {
		cand.LicenseID = detail.LicenseID
	}
	if detail.Sex != "" {
		cand.Sex = detail.Sex
	}
	if detail.Nationality != "" {
		cand.Nationality = detail.Nationality
	}
}

// pause applies the inter-page courtesy delay. The first page of a sequence
// is fetched immediately.
func (c *Crawler) pause(ctx context.Context, page int) error {
	if page <= 0 || c.delay <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.clock.After(c.delay):
		return nil
	}
}

// fail classifies the error and closes out the season.
func (c *Crawler) fail(res SeasonResult, err error) SeasonResult {
	res.Err = err
	res.Outcome = classify(err)
	return res
}

func classify(err error) Outcome {
	var listing *extract.ListingError
	switch {
	case errors.As(err, &listing):
		return FailedParse
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return FailedNetwork
	default:
		var req *fetch.RequestError
		if errors.As(err, &req) {
			return FailedNetwork
		}
		return FailedStore
	}
}

func (r *SeasonResult) count(op store.Op) {
	switch op {
	case store.OpInserted:
		r.Inserted++
	case store.OpUpdated:
		r.Updated++
	case store.OpRecovered:
		r.Recovered++
	case store.OpSkipped:
		r.Skipped++
	}
}

func (c *Crawler) logSeason(res SeasonResult) {
	fields := []zap.Field{
		zap.Int("season", int(res.Season)),
		zap.String("kind", string(res.Kind)),
		zap.String("outcome", string(res.Outcome)),
		zap.Int("pages", res.Pages),
		zap.Int("inserted", res.Inserted),
		zap.Int("updated", res.Updated),
		zap.Int("recovered", res.Recovered),
		zap.Int("skipped", res.Skipped),
	}
	if res.Err != nil {
		c.logger.Error("season failed", append(fields, zap.Error(res.Err))...)
		return
	}
	c.logger.Info("season complete", fields...)
}
