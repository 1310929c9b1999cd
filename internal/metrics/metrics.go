// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	searchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qualia_search_requests_total",
		Help: "Search adapter calls by answer source and failure kind.",
	}, []string{"source", "failure"})

	searchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "qualia_search_duration_seconds",
		Help:    "Duration of search adapter calls.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	}, []string{"source"})

	turnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qualia_turns_total",
		Help: "Submitted chat turns by result.",
	}, []string{"result"})

	historyFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qualia_history_failures_total",
		Help: "Swallowed chat history persistence failures by operation.",
	}, []string{"op"})
)

// ObserveSearch records one search adapter call.
func ObserveSearch(source, failure string, elapsed time.Duration) {
	searchTotal.WithLabelValues(source, failure).Inc()
	searchDuration.WithLabelValues(source).Observe(elapsed.Seconds())
}

// ObserveTurn records a submitted turn: completed, blank, busy or failed.
func ObserveTurn(result string) {
	turnsTotal.WithLabelValues(result).Inc()
}

// ObserveHistoryFailure records a swallowed load or save failure.
func ObserveHistoryFailure(op string) {
	historyFailures.WithLabelValues(op).Inc()
}
