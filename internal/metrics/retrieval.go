package metrics

import "github.com/prometheus/client_golang/prometheus"

// Retrieval Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "boostlab",
			Name:      "search_requests_total",
			Help:      "Total number of search calls",
		},
		[]string{"backend", "status"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "boostlab",
			Name:      "search_duration_seconds",
			Help:      "Search call duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"backend"},
	)

	SearchErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "boostlab",
			Name:      "search_errors_total",
			Help:      "Backend failures degraded to empty results",
		},
		[]string{"backend"},
	)
)

// Evaluation Prometheus metrics.
var (
	EvaluationRecordsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "boostlab",
			Name:      "evaluation_records_total",
			Help:      "Total ground truth records scored",
		},
	)

	EvaluationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "boostlab",
			Name:      "evaluation_duration_seconds",
			Help:      "Duration of one evaluation pass in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		},
	)
)

// Optimizer Prometheus metrics.
var (
	OptimizerTrialsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "boostlab",
			Name:      "optimizer_trials_total",
			Help:      "Total optimizer trials by final state",
		},
		[]string{"state"}, // "complete" / "failed"
	)

	OptimizerBestScore = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "boostlab",
			Name:      "optimizer_best_score",
			Help:      "Best objective value of the latest optimizer run",
		},
	)
)

var retrievalMetricsRegistered bool

// RegisterRetrievalMetrics registers search, evaluation and optimizer metrics.
// Must be called once from main.
func RegisterRetrievalMetrics() {
	if retrievalMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SearchErrorsTotal)
	prometheus.MustRegister(EvaluationRecordsTotal)
	prometheus.MustRegister(EvaluationDuration)
	prometheus.MustRegister(OptimizerTrialsTotal)
	prometheus.MustRegister(OptimizerBestScore)
	retrievalMetricsRegistered = true
}
