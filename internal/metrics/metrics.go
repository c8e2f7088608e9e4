// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package metrics

import (
	"errors"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var startedAt atomic.Int64

var (
	// Index Build Metrics
	IndexBuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "plotmatch_index_build_duration_seconds",
			Help:    "Duration of index initialization in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600}, // cold builds take minutes
		},
		[]string{"source"}, // "artifacts", "rebuild"
	)

	IndexColdStarts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plotmatch_index_cold_starts_total",
			Help: "Total number of index rebuilds from the raw corpus",
		},
		[]string{"reason"}, // "missing", "corrupt", "stale", "forced"
	)

	IndexBuildErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "plotmatch_index_build_errors_total",
			Help: "Total number of failed index builds",
		},
	)

	IndexRows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "plotmatch_index_rows",
			Help: "Number of movies in the published index",
		},
	)

	IndexVocabularySize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "plotmatch_index_vocabulary_size",
			Help: "Number of terms in the published vocabulary",
		},
	)

	IndexReady = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "plotmatch_index_ready",
			Help: "1 when an index is published and serving",
		},
	)

	// Artifact Metrics
	ArtifactLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plotmatch_artifact_loads_total",
			Help: "Total number of artifact load attempts",
		},
		[]string{"artifact", "result"}, // result: "ok", "missing", "corrupt", "error"
	)

	ArtifactSaveBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "plotmatch_artifact_size_bytes",
			Help: "Compressed size of the last saved artifact",
		},
		[]string{"artifact"},
	)

	// Recommendation Metrics
	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "plotmatch_recommendation_duration_seconds",
			Help:    "Recommendation latency in seconds, including poster lookups",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"kind"}, // "similar", "recommend"
	)

	RecommendationResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plotmatch_recommendations_total",
			Help: "Total number of recommendation requests by outcome",
		},
		[]string{"kind", "result"}, // result: "ok", "not_found", "not_ready", "error"
	)

	RecommendationCandidatesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "plotmatch_recommendation_candidates_dropped_total",
			Help: "Candidates dropped because no poster could be resolved",
		},
	)

	// Poster Metrics
	PosterLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plotmatch_poster_lookups_total",
			Help: "Total number of TMDB poster lookups by result",
		},
		[]string{"result"}, // "found", "no_poster", "error", "rejected"
	)

	PosterAPICallDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "plotmatch_poster_api_call_duration_seconds",
			Help:    "Duration of TMDB API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
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
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
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

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"}, // "poster_memory", "poster_badger"
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
			Help: "Total number of cache evictions (capacity or TTL)",
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

// RecordIndexBuild records a completed or failed index initialization.
// source is "artifacts" when both artifacts were reused and "rebuild"
// otherwise.
func RecordIndexBuild(source string, duration time.Duration, rows, vocabulary int, err error) {
	if err != nil {
		IndexBuildErrors.Inc()
		return
	}
	IndexBuildDuration.WithLabelValues(source).Observe(duration.Seconds())
	IndexRows.Set(float64(rows))
	IndexVocabularySize.Set(float64(vocabulary))
	IndexReady.Set(1)
}

// RecordColdStart records a rebuild and why it was needed.
func RecordColdStart(reason string) {
	IndexColdStarts.WithLabelValues(reason).Inc()
}

// RecordArtifactLoad records one artifact load attempt.
func RecordArtifactLoad(artifact, result string) {
	ArtifactLoads.WithLabelValues(artifact, result).Inc()
}

// RecordArtifactSave records the compressed size of a saved artifact.
func RecordArtifactSave(artifact string, sizeBytes int64) {
	ArtifactSaveBytes.WithLabelValues(artifact).Set(float64(sizeBytes))
}

// RecordRecommendation records a recommendation request outcome.
func RecordRecommendation(kind, result string, duration time.Duration) {
	RecommendationResults.WithLabelValues(kind, result).Inc()
	RecommendationDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordCandidatesDropped records candidates filtered out for lack of a poster.
func RecordCandidatesDropped(n int) {
	if n > 0 {
		RecommendationCandidatesDropped.Add(float64(n))
	}
}

// RecordPosterLookup records a TMDB lookup result.
func RecordPosterLookup(result string, duration time.Duration) {
	PosterLookups.WithLabelValues(result).Inc()
	if duration > 0 {
		PosterAPICallDuration.Observe(duration.Seconds())
	}
}

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

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordCacheHit records a hit on the named cache.
func RecordCacheHit(cacheType string) {
	CacheHits.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss records a miss on the named cache.
func RecordCacheMiss(cacheType string) {
	CacheMisses.WithLabelValues(cacheType).Inc()
}

// RecordCircuitBreakerTransition records a breaker state change and updates
// the state gauge. States use the gobreaker names.
func RecordCircuitBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
}

// RecordCircuitBreakerRequest records a request passing through a breaker.
func RecordCircuitBreakerRequest(name string, err, rejection error) {
	result := "success"
	switch {
	case err != nil && rejection != nil && errors.Is(err, rejection):
		result = "rejected"
	case err != nil:
		result = "failure"
	}
	CircuitBreakerRequests.WithLabelValues(name, result).Inc()
}

func stateValue(state string) float64 {
	switch state {
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return 0
	}
}

// RecordRateLimitHit records a request rejected by a rate limiter.
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// SetAppInfo publishes the build version and records the start time used
// by UpdateUptime.
func SetAppInfo(version string) {
	AppInfo.WithLabelValues(version, runtime.Version()).Set(1)
	startedAt.Store(time.Now().UnixNano())
}

// UpdateUptime refreshes the uptime gauge. It is a no-op before SetAppInfo.
func UpdateUptime() {
	start := startedAt.Load()
	if start == 0 {
		return
	}
	AppUptime.Set(time.Since(time.Unix(0, start)).Seconds())
}
