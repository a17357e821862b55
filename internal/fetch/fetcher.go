// Package fetch retrieves listing and detail pages from the federation site
// using Colly, with bounded retries and jittered exponential backoff.
package fetch

import (
	"context"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/athledata/athlecrawl/internal/athle"
	"github.com/athledata/athlecrawl/internal/metrics"
)

// Page is one raw retrieved page. Pages are always fetched fresh; nothing is
// cached between calls.
type Page struct {
	URL        string
	StatusCode int
	Body       []byte
	Duration   time.Duration
}

// Config controls fetch behavior.
type Config struct {
	Endpoints      Endpoints
	UserAgent      string
	Timeout        time.Duration
	MaxRetries     int
	BackoffInitial time.Duration
	BackoffMax     time.Duration
}

// Client implements page retrieval against both site generations.
type Client struct {
	cfg    Config
	base   *colly.Collector
	policy *RetryPolicy
	clock  clockwork.Clock
	logger *zap.Logger
}

// NewClient builds a Client. The clock is injectable so backoff waits can be
// driven deterministically in tests.
func NewClient(cfg Config, clock clockwork.Clock, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	base := colly.NewCollector(colly.Async(false))
	base.IgnoreRobotsTxt = true
	base.AllowURLRevisit = true
	if cfg.UserAgent != "" {
		base.UserAgent = cfg.UserAgent
	}
	return &Client{
		cfg:    cfg,
		base:   base,
		policy: NewRetryPolicy(cfg.MaxRetries, cfg.BackoffInitial, cfg.BackoffMax),
		clock:  clock,
		logger: logger,
	}
}

// ClubsPage fetches one page of the season's club listing.
func (c *Client) ClubsPage(ctx context.Context, season athle.Season, page int) (Page, error) {
	return c.fetch(ctx, string(athle.KindClub), c.cfg.Endpoints.ClubsListingURL(season, page))
}

// ClubAthletesPage fetches one page of a club's athlete listing for a season.
func (c *Client) ClubAthletesPage(ctx context.Context, season athle.Season, club athle.ExternalID, page int) (Page, error) {
	return c.fetch(ctx, string(athle.KindAthlete), c.cfg.Endpoints.ClubAthletesURL(season, club, page))
}

// AthleteDetail fetches the detail page used to enrich an athlete candidate.
func (c *Client) AthleteDetail(ctx context.Context, id athle.ExternalID) (Page, error) {
	return c.fetch(ctx, string(athle.KindAthlete), c.cfg.Endpoints.AthleteDetailURL(id))
}

func (c *Client) fetch(ctx context.Context, kind, url string) (Page, error) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		page, err := c.get(ctx, url)
		if err == nil {
			metrics.ObservePage(kind, "ok", page.Duration)
			return page, nil
		}
		lastErr = err
		if !c.policy.ShouldRetry(err, attempt) {
			break
		}
		wait := c.policy.Backoff(attempt)
		metrics.ObserveRetry(kind)
		c.logger.Warn("retrying fetch",
			zap.String("url", url),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", wait),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return Page{}, ctx.Err()
		case <-c.clock.After(wait):
		}
	}
	metrics.ObservePage(kind, "error", 0)
	return Page{}, lastErr
}

// get performs a single attempt.
func (c *Client) get(ctx context.Context, url string) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}

	collector := c.base.Clone()
	collector.SetRequestTimeout(c.cfg.Timeout)

	var (
		page     Page
		status   int
		fetchErr error
	)
	collector.OnResponse(func(r *colly.Response) {
		page = Page{
			URL:        url,
			StatusCode: r.StatusCode,
			Body:       r.Body,
		}
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = err
	})

	start := c.clock.Now()
	if err := collector.Visit(url); err != nil && fetchErr == nil {
		fetchErr = err
	}
	collector.Wait()

	if fetchErr != nil {
		return Page{}, &RequestError{URL: url, StatusCode: status, Err: fetchErr}
	}
	page.Duration = c.clock.Since(start)
	return page, nil
}
