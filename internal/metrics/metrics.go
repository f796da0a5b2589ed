// Clipfeed - Short-Form Video Feed Ranking and Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipfeed

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus Metrics Integration for Production Observability
// This package provides instrumentation for:
// - Catalog query performance (DuckDB)
// - Feed ranking latency and pool sizes
// - Exclusion degradation tracking
// - API endpoint latency and throughput
// - Engagement event processing
// - Cache efficiency

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets, // 0.005s, 0.01s, 0.025s, 0.05s, 0.1s, 0.25s, 0.5s, 1s, 2.5s, 5s, 10s
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	// Feed Ranking Metrics
	FeedRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_requests_total",
			Help: "Total number of feed ranking requests",
		},
		[]string{"path"}, // "ranked", "fast"
	)

	FeedRankingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_ranking_duration_seconds",
			Help:    "End-to-end feed assembly duration in seconds",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"path"},
	)

	FeedPoolSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feed_candidate_pool_size",
			Help:    "Number of candidates fetched per ranking pass",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000},
		},
	)

	FeedPagesServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_pages_served_total",
			Help: "Total number of feed pages served",
		},
		[]string{"source"}, // "recompute", "snapshot"
	)

	FeedDegradations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_degradations_total",
			Help: "Total number of graceful degradations during context assembly",
		},
		[]string{"signal"}, // "preferences", "history", "exclusion_waived_catalog", "exclusion_waived_exhausted"
	)

	FeedDependencyFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_dependency_failures_total",
			Help: "Total number of collaborator read failures during feed assembly",
		},
		[]string{"dependency"}, // "catalog", "preferences", "history"
	)

	FeedDiversityViolations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_diversity_violations_total",
			Help: "Total number of diversity constraint violations handled",
		},
		[]string{"constraint", "action"}, // constraint: "creator", "tag"; action: "drop", "defer", "relax"
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}, // Optimized for API latency
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Engagement Event Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engagement_events_published_total",
			Help: "Total number of engagement events published",
		},
		[]string{"kind"}, // "view", "like", "unlike", "comment"
	)

	EventsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engagement_events_processed_total",
			Help: "Total number of engagement events successfully applied",
		},
		[]string{"kind"},
	)

	EventsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engagement_events_rejected_total",
			Help: "Total number of engagement events rejected",
		},
		[]string{"reason"}, // "rate_limited", "parse_failed", "unknown_kind"
	)

	EventProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "engagement_event_processing_duration_seconds",
			Help:    "Duration of engagement event processing in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Cache Metrics (General)
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"}, // "snapshot", "context"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Current number of cached entries",
		},
		[]string{"cache_type"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of cache evictions (TTL expiry or LRU)",
		},
		[]string{"cache_type"},
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

	// History Store Metrics
	HistoryWrites = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "history_writes_total",
			Help: "Total number of watch-history writes",
		},
	)

	HistoryGCRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "history_gc_runs_total",
			Help: "Total number of Badger value-log GC runs",
		},
		[]string{"result"}, // "reclaimed", "noop", "error"
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordFeedRequest records one feed assembly pass.
// path is "ranked" for the full pipeline or "fast" for the bypass path.
func RecordFeedRequest(path string, duration time.Duration, poolSize int) {
	FeedRequestsTotal.WithLabelValues(path).Inc()
	FeedRankingDuration.WithLabelValues(path).Observe(duration.Seconds())
	if poolSize > 0 {
		FeedPoolSize.Observe(float64(poolSize))
	}
}

// RecordDegradation records a graceful degradation of one ranking signal.
func RecordDegradation(signal string) {
	FeedDegradations.WithLabelValues(signal).Inc()
}

// RecordDependencyFailure records a collaborator read failure.
func RecordDependencyFailure(dependency string) {
	FeedDependencyFailures.WithLabelValues(dependency).Inc()
}

// RecordDiversityViolation records a diversity constraint violation and the
// action the configured policy took.
func RecordDiversityViolation(constraint, action string) {
	FeedDiversityViolations.WithLabelValues(constraint, action).Inc()
}

// RecordEventPublished records an engagement event publish.
func RecordEventPublished(kind string) {
	EventsPublished.WithLabelValues(kind).Inc()
}

// RecordEventProcessed records a successfully applied engagement event.
func RecordEventProcessed(kind string, duration time.Duration) {
	EventsProcessed.WithLabelValues(kind).Inc()
	EventProcessingDuration.Observe(duration.Seconds())
}

// RecordEventRejected records a rejected engagement event.
func RecordEventRejected(reason string) {
	EventsRejected.WithLabelValues(reason).Inc()
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
