// Package metrics exposes Prometheus instrumentation for the analysis
// pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// AnalysesTotal counts finished analyses by envelope status.
	AnalysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pagelens_analyses_total",
		Help: "Total analyses by outcome status.",
	}, []string{"status"})

	// FetchFailuresTotal counts fetch failures by classified kind.
	FetchFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pagelens_fetch_failures_total",
		Help: "Fetch failures by failure kind.",
	}, []string{"kind"})

	// FetchDuration observes wall time of the fetch stage.
	FetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pagelens_fetch_duration_seconds",
		Help:    "Duration of the fetch stage.",
		Buckets: prometheus.DefBuckets,
	})

	// SummarizeDuration observes wall time of the summarize stage.
	SummarizeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pagelens_summarize_duration_seconds",
		Help:    "Duration of the summarize stage.",
		Buckets: prometheus.DefBuckets,
	})
)

// Handler serves the default registry in Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
