// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flashpath_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flashpath_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flashpath_api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)

	// Q-table Metrics
	QTableUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flashpath_qtable_updates_total",
			Help: "Total number of Q-table updates",
		},
		[]string{"action", "result"}, // result: "success", "invalid_action", "error"
	)

	QTableLockWait = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "flashpath_qtable_lock_wait_seconds",
			Help:    "Time spent waiting for a per-user Q-table lock",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		},
	)

	AnswersJudged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flashpath_answers_judged_total",
			Help: "Total number of judged answers",
		},
		[]string{"verdict"},
	)

	// Recommendation Metrics
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flashpath_recommend_requests_total",
			Help: "Total number of recommendation queries",
		},
		[]string{"kind", "outcome"}, // kind: "recommend", "worst", "similar"
	)

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flashpath_recommend_duration_seconds",
			Help:    "Duration of recommendation queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	RecommendCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flashpath_recommend_cache_hits_total",
			Help: "Recommendation lists served from cache",
		},
	)

	RecommendCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flashpath_recommend_cache_misses_total",
			Help: "Recommendation lists computed from the Q-table",
		},
	)

	DanglingFlashcards = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flashpath_dangling_flashcards_total",
			Help: "Flashcard ids skipped during batch resolution",
		},
		[]string{"reason"}, // "not_found", "malformed_id", "error"
	)

	// Embedding Metrics
	EmbeddingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "flashpath_embedding_duration_seconds",
			Help:    "Time taken to embed one text",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
		},
	)

	EmbeddingRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flashpath_embedding_requests_total",
			Help: "Total number of embedding requests",
		},
		[]string{"result"}, // "success", "timeout", "error", "canceled"
	)

	EmbeddingQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flashpath_embedding_queue_depth",
			Help: "Embedding jobs waiting for a worker",
		},
	)

	// Vector Index Metrics
	VectorIndexSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flashpath_vector_index_size",
			Help: "Number of vectors in the similarity index",
		},
	)

	VectorSearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "flashpath_vector_index_search_duration_seconds",
			Help:    "Time taken by a similarity search",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		},
	)

	// Store Metrics
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flashpath_store_operation_duration_seconds",
			Help:    "Duration of document-store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "collection"},
	)

	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flashpath_store_errors_total",
			Help: "Document-store operations that returned an error",
		},
		[]string{"operation", "collection", "retryable"},
	)

	StoreRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flashpath_store_retries_total",
			Help: "Document-store operations retried after a transient fault",
		},
		[]string{"operation"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Re-embed Queue Metrics
	ReembedEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flashpath_reembed_events_total",
			Help: "Re-embedding requests by stage",
		},
		[]string{"stage"}, // "published", "processed", "failed", "stale"
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks in-flight API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordQTableUpdate records the outcome of one Q-table update.
func RecordQTableUpdate(action, result string) {
	QTableUpdates.WithLabelValues(action, result).Inc()
}

// RecordRecommendation records one recommendation query.
func RecordRecommendation(kind, outcome string, duration time.Duration) {
	RecommendRequests.WithLabelValues(kind, outcome).Inc()
	RecommendDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordEmbedding records one embedding request.
func RecordEmbedding(result string, duration time.Duration) {
	EmbeddingRequests.WithLabelValues(result).Inc()
	if result == "success" {
		EmbeddingDuration.Observe(duration.Seconds())
	}
}

// RecordStoreOperation records a document-store call.
func RecordStoreOperation(operation, collection string, duration time.Duration, err error, retryable bool) {
	StoreOperationDuration.WithLabelValues(operation, collection).Observe(duration.Seconds())
	if err != nil {
		r := "false"
		if retryable {
			r = "true"
		}
		StoreErrors.WithLabelValues(operation, collection, r).Inc()
	}
}
