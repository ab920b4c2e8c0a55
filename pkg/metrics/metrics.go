// Package metrics defines the Prometheus collectors recorded by index runs
// and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the indexer.
type Metrics struct {
	RunsTotal          *prometheus.CounterVec
	DocumentsProcessed prometheus.Counter
	TokensProcessed    *prometheus.CounterVec
	IndexBuildsTotal   *prometheus.CounterVec
	IndexBuildDuration *prometheus.HistogramVec
	IndexTerms         *prometheus.GaugeVec
	LexicalDiversity   *prometheus.GaugeVec
	SinkWritesTotal    *prometheus.CounterVec
	SinkWriteDuration  *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg. A nil reg uses
// the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawlindex_runs_total",
				Help: "Index runs by outcome (success, error).",
			},
			[]string{"status"},
		),
		DocumentsProcessed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "crawlindex_documents_processed_total",
				Help: "Documents read from the corpus.",
			},
		),
		TokensProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawlindex_tokens_processed_total",
				Help: "Tokens produced per document field.",
			},
			[]string{"field"},
		),
		IndexBuildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawlindex_index_builds_total",
				Help: "Indexes built by variant.",
			},
			[]string{"variant"},
		),
		IndexBuildDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crawlindex_index_build_duration_seconds",
				Help:    "Time spent building one index.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
			},
			[]string{"variant"},
		),
		IndexTerms: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "crawlindex_index_terms",
				Help: "Distinct terms in the most recent index per field and variant.",
			},
			[]string{"field", "variant"},
		),
		LexicalDiversity: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "crawlindex_lexical_diversity",
				Help: "Unique over total tokens per statistics label.",
			},
			[]string{"label"},
		),
		SinkWritesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawlindex_sink_writes_total",
				Help: "Sink writes by sink and status.",
			},
			[]string{"sink", "status"},
		),
		SinkWriteDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crawlindex_sink_write_duration_seconds",
				Help:    "Sink write latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"sink"},
		),
	}

	reg.MustRegister(
		m.RunsTotal,
		m.DocumentsProcessed,
		m.TokensProcessed,
		m.IndexBuildsTotal,
		m.IndexBuildDuration,
		m.IndexTerms,
		m.LexicalDiversity,
		m.SinkWritesTotal,
		m.SinkWriteDuration,
	)

	return m
}

// Handler returns the scrape handler for g, or the default gatherer when g
// is nil.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
