// Package archive persists raw fetched pages to disk so a failed season can
// be diagnosed without re-crawling. Archiving is optional; a nil *Store is a
// no-op.
package archive

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/athledata/athlecrawl/internal/athle"
	"github.com/athledata/athlecrawl/internal/fetch"
)

var invalidFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// Meta is the sidecar written next to every archived page.
type Meta struct {
	URL        string       `json:"url"`
	StatusCode int          `json:"status_code"`
	Season     athle.Season `json:"season"`
	Kind       string       `json:"kind"`
	FetchedAt  time.Time    `json:"fetched_at"`
	DurationMs int64        `json:"duration_ms"`
	Bytes      int          `json:"bytes"`
}

// Store writes page snapshots under root/<run>/<season>/.
type Store struct {
	root   string
	run    string
	logger *zap.Logger
}

// New returns a Store rooted at dir for one crawl run. An empty dir disables
// archiving and returns a nil Store.
func New(dir, run string, logger *zap.Logger) (*Store, error) {
	if dir == "" {
		return nil, nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	root := filepath.Join(dir, run)
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create archive dir %s: %w", root, err)
	}
	return &Store{root: root, run: run, logger: logger}, nil
}

// Save writes one page snapshot and its metadata sidecar. Archive failures
// are logged, never propagated: losing a snapshot must not fail a crawl.
func (s *Store) Save(ctx context.Context, season athle.Season, kind athle.EntityKind, page fetch.Page, fetchedAt time.Time) {
	if s == nil {
		return
	}
	if err := s.save(ctx, season, kind, page, fetchedAt); err != nil {
		s.logger.Warn("archive write failed",
			zap.String("url", page.URL),
			zap.Error(err),
		)
	}
}

func (s *Store) save(ctx context.Context, season athle.Season, kind athle.EntityKind, page fetch.Page, fetchedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(page.Body) == 0 {
		return fmt.Errorf("empty page body")
	}
	dir := filepath.Join(s.root, fmt.Sprintf("%d", season), string(kind))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create archive dir %s: %w", dir, err)
	}
	base := safeBasename(page.URL)
	if err := os.WriteFile(filepath.Join(dir, base+".html"), page.Body, 0o600); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	meta := Meta{
		URL:        page.URL,
		StatusCode: page.StatusCode,
		Season:     season,
		Kind:       string(kind),
		FetchedAt:  fetchedAt.UTC(),
		DurationMs: page.Duration.Milliseconds(),
		Bytes:      len(page.Body),
	}
	payload, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal meta: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, base+".json"), payload, 0o600); err != nil {
		return fmt.Errorf("write meta: %w", err)
	}
	return nil
}

// safeBasename flattens a URL into a filename, keeping enough of the host and
// query to stay readable and a hash suffix to stay unique.
func safeBasename(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return hashURL(raw)
	}
	host := invalidFilenameChars.ReplaceAllString(u.Hostname(), "_")
	p := strings.Trim(u.EscapedPath(), "/")
	if u.RawQuery != "" {
		p += "_" + u.RawQuery
	}
	if p == "" {
		p = "root"
	}
	p = invalidFilenameChars.ReplaceAllString(p, "_")
	if len(p) > 120 {
		p = p[:120]
	}
	return fmt.Sprintf("%s_%s_%s", host, p, hashURL(raw)[:16])
}

func hashURL(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
