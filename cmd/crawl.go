package cmd

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/athledata/athlecrawl/internal/archive"
	"github.com/athledata/athlecrawl/internal/athle"
	"github.com/athledata/athlecrawl/internal/config"
	"github.com/athledata/athlecrawl/internal/crawl"
	"github.com/athledata/athlecrawl/internal/fetch"
	"github.com/athledata/athlecrawl/internal/logging"
	"github.com/athledata/athlecrawl/internal/reconcile"
	"github.com/athledata/athlecrawl/internal/store/postgres"
)

var (
	flagFirstYear int
	flagLastYear  int
	flagClub      string
	flagClubGen   string
)

// newCrawlCmd groups the two crawl entity kinds.
func newCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl federation listings into the store",
	}

	cmd.PersistentFlags().IntVar(&flagFirstYear, "first-year", 0, "first season to crawl (defaults to the configured floor)")
	cmd.PersistentFlags().IntVar(&flagLastYear, "last-year", 0, "last season to crawl (defaults to the current season)")

	clubs := &cobra.Command{
		Use:   "clubs",
		Short: "Crawl the per-season club listings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCrawl(cmd.Context(), athle.KindClub)
		},
	}

	athletes := &cobra.Command{
		Use:   "athletes",
		Short: "Crawl athlete listings for clubs already in the store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCrawl(cmd.Context(), athle.KindAthlete)
		},
	}
	athletes.Flags().StringVar(&flagClub, "club", "", "restrict to one club's external id")
	athletes.Flags().StringVar(&flagClubGen, "club-generation", string(athle.GenerationPortal), "generation of the --club id (legacy|portal)")

	cmd.AddCommand(clubs, athletes)
	return cmd
}

func runCrawl(ctx context.Context, kind athle.EntityKind) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	clock := clockwork.NewRealClock()
	seasons, err := resolveSeasons(cfg, clock, flagFirstYear, flagLastYear)
	if err != nil {
		return err
	}

	only, err := resolvePinnedClub(kind, flagClub, flagClubGen)
	if err != nil {
		return err
	}

	db, err := postgres.New(ctx, postgres.Config{DSN: cfg.DB.DSN, MaxConns: cfg.DB.MaxConns})
	if err != nil {
		return err
	}
	defer db.Close()

	runID := uuid.NewString()
	logger = logging.WithRun(logger, runID)
	arch, err := archive.New(cfg.Archive.Dir, runID, logger)
	if err != nil {
		return err
	}

	fetcher := fetch.NewClient(fetch.Config{
		Endpoints: fetch.Endpoints{
			BaseURL:   cfg.Crawler.BaseURL,
			PortalURL: cfg.Crawler.PortalURL,
		},
		UserAgent:      cfg.Crawler.UserAgent,
		Timeout:        cfg.HTTP.Timeout(),
		MaxRetries:     cfg.HTTP.MaxRetries,
		BackoffInitial: cfg.HTTP.BackoffInitial(),
		BackoffMax:     cfg.HTTP.BackoffMax(),
	}, clock, logger)

	crawler := crawl.New(crawl.Options{
		Fetcher:  fetcher,
		Clubs:    db,
		Athletes: db,
		Matcher:  reconcile.NewMatcher(cfg.Match.Threshold, cfg.Match.TieMargin),
		Archive:  arch,
		Clock:    clock,
		Delay:    cfg.Crawler.Delay(),
		Logger:   logger,
	})

	logger.Info("starting crawl",
		zap.String("kind", string(kind)),
		zap.Int("first_season", int(seasons.First)),
		zap.Int("last_season", int(seasons.Last)),
	)

	var report crawl.Report
	if kind == athle.KindClub {
		report, err = crawler.RunClubs(ctx, runID, seasons)
	} else {
		report, err = crawler.RunAthletes(ctx, runID, seasons, only)
	}
	fmt.Print(report.Summary())
	if err != nil {
		return err
	}
	if report.Failed() {
		return fmt.Errorf("%d of %d seasons failed", failedCount(report), len(report.Results))
	}
	return nil
}

// resolveSeasons merges config floor, flags and the clock-derived current
// season into a validated range.
func resolveSeasons(cfg config.Config, clock clockwork.Clock, first, last int) (athle.SeasonRange, error) {
	r := athle.SeasonRange{
		First: athle.Season(cfg.Crawler.FirstYear),
		Last:  athle.CurrentSeason(clock),
	}
	if first > 0 {
		r.First = athle.Season(first)
	}
	if last > 0 {
		r.Last = athle.Season(last)
	}
	if err := r.Validate(); err != nil {
		return athle.SeasonRange{}, err
	}
	return r, nil
}

// resolvePinnedClub parses the --club flag into an external id.
func resolvePinnedClub(kind athle.EntityKind, raw, gen string) (*athle.ExternalID, error) {
	if kind != athle.KindAthlete || raw == "" {
		return nil, nil
	}
	ext := athle.ExternalID{Raw: raw, Gen: athle.Generation(gen)}
	if !ext.Gen.Valid() {
		return nil, fmt.Errorf("unknown club generation %q (want legacy or portal)", gen)
	}
	return &ext, nil
}

func failedCount(r crawl.Report) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome != crawl.Succeeded {
			n++
		}
	}
	return n
}
