// Package metrics exposes Prometheus collectors for the crawl pipeline.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	crawlPagesTotal           *prometheus.CounterVec
	crawlFetchRetriesTotal    *prometheus.CounterVec
	crawlFetchDurationSeconds *prometheus.HistogramVec
	crawlRecordsTotal         *prometheus.CounterVec
	crawlSeasonsTotal         *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus collectors. Safe to call multiple times.
func Init() {
	once.Do(func() {
		crawlPagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "athlecrawl_pages_total",
				Help: "Listing pages fetched, labeled by entity kind and outcome.",
			},
			[]string{"kind", "outcome"},
		)

		crawlFetchRetriesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "athlecrawl_fetch_retries_total",
				Help: "Fetch attempts beyond the first, labeled by entity kind.",
			},
			[]string{"kind"},
		)

		crawlFetchDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "athlecrawl_fetch_duration_seconds",
				Help:    "Histogram of page fetch latencies, labeled by entity kind.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"kind"},
		)

		crawlRecordsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "athlecrawl_records_total",
				Help: "Records written, labeled by entity kind and operation (insert, update, recovered).",
			},
			[]string{"kind", "op"},
		)

		crawlSeasonsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "athlecrawl_seasons_total",
				Help: "Season crawls finished, labeled by entity kind and outcome.",
			},
			[]string{"kind", "outcome"},
		)
	})
}

// ObservePage records one fetched (or failed) listing page.
func ObservePage(kind, outcome string, duration time.Duration) {
	if crawlPagesTotal == nil {
		return
	}
	crawlPagesTotal.WithLabelValues(kind, outcome).Inc()
	crawlFetchDurationSeconds.WithLabelValues(kind).Observe(duration.Seconds())
}

// ObserveRetry counts one retried fetch attempt.
func ObserveRetry(kind string) {
	if crawlFetchRetriesTotal == nil {
		return
	}
	crawlFetchRetriesTotal.WithLabelValues(kind).Inc()
}

// ObserveRecord counts one persisted record by operation.
func ObserveRecord(kind, op string) {
	if crawlRecordsTotal == nil {
		return
	}
	crawlRecordsTotal.WithLabelValues(kind, op).Inc()
}

// ObserveSeason counts one finished season crawl by outcome.
func ObserveSeason(kind, outcome string) {
	if crawlSeasonsTotal == nil {
		return
	}
	crawlSeasonsTotal.WithLabelValues(kind, outcome).Inc()
}
