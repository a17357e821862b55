package crawl

import (
	"fmt"
	"strings"

	"github.com/athledata/athlecrawl/internal/athle"
)

// Outcome labels how one season's crawl ended.
type Outcome string

// Season outcomes. Partial success across seasons is an expected terminal
// state; the report carries it instead of an error.
const (
	Succeeded     Outcome = "succeeded"
	FailedNetwork Outcome = "failed_network"
	FailedParse   Outcome = "failed_parse"
	FailedStore   Outcome = "failed_store"
)

// SeasonResult summarizes one crawled season.
type SeasonResult struct {
	Season    athle.Season
	Kind      athle.EntityKind
	Outcome   Outcome
	Pages     int
	Inserted  int
	Updated   int
	Recovered int
	Skipped   int
	Err       error
}

// Report is the per-run summary across all seasons.
type Report struct {
	RunID   string
	Results []SeasonResult
}

// Failed reports whether any season did not succeed.
func (r Report) Failed() bool {
	for _, res := range r.Results {
		if res.Outcome != Succeeded {
			return true
		}
	}
	return false
}

// ExitCode maps the report to a process exit status.
func (r Report) ExitCode() int {
	if r.Failed() {
		return 1
	}
	return 0
}

// Summary renders a one-line-per-season human summary.
func (r Report) Summary() string {
	var b strings.Builder
	for _, res := range r.Results {
		fmt.Fprintf(&b, "%d %s: %s pages=%d inserted=%d updated=%d recovered=%d skipped=%d",
			res.Season, res.Kind, res.Outcome,
			res.Pages, res.Inserted, res.Updated, res.Recovered, res.Skipped)
		if res.Err != nil {
			fmt.Fprintf(&b, " err=%v", res.Err)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
