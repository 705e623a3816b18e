// Package metrics exposes Prometheus instruments for ingestion and retrieval.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "vcs"
)

var (
	// Extraction
	FramesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extract",
			Name:      "frames_total",
			Help:      "Frames visited during extraction by outcome",
		},
		[]string{"outcome"},
	)

	// Storage
	InsertBatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "insert_batches_total",
			Help:      "Insert batches submitted to a store by status",
		},
		[]string{"store", "status"},
	)

	FragmentsInsertedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "fragments_inserted_total",
			Help:      "Fragments accepted by a store",
		},
		[]string{"store", "media_type"},
	)

	// Query
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "total",
			Help:      "Similarity queries by input modality, strategy and status",
		},
		[]string{"input", "strategy", "status"},
	)

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "duration_seconds",
			Help:      "Similarity query duration in seconds",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"input"},
	)

	VectorizerCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "vectorizer",
			Name:      "cache_total",
			Help:      "Vectorizer cache lookups by result",
		},
		[]string{"result"},
	)

	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)
)

// Outcome labels for FramesTotal.
const (
	FrameSampled    = "sampled"
	FrameSkipped    = "skipped"
	FrameDegenerate = "degenerate"
	FrameWriteError = "write_error"
)

// RecordBatch records one insert batch outcome.
func RecordBatch(store string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	InsertBatchesTotal.WithLabelValues(store, status).Inc()
}

// RecordQuery records a query outcome and its latency.
func RecordQuery(input, strategy string, seconds float64, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	QueriesTotal.WithLabelValues(input, strategy, status).Inc()
	QueryDuration.WithLabelValues(input).Observe(seconds)
}
