package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "imagestudio"

var (
	GenerationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Total number of generation submissions, labeled by model and outcome.",
		},
		[]string{"model", "outcome"},
	)

	GenerationLatencySeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_latency_seconds",
			Help:      "Latency of the upstream generation call (seconds).",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120, 300},
		},
		[]string{"model"},
	)

	HistoryPersistFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_persist_failures_total",
			Help:      "Total number of successful generations that could not be saved to history.",
		},
	)

	StaleResultsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_results_total",
			Help:      "Total number of results discarded because a newer submission was issued.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		GenerationsTotal,
		GenerationLatencySeconds,
		HistoryPersistFailuresTotal,
		StaleResultsTotal,
	)
}
