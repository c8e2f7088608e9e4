// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

/*
Package metrics provides Prometheus metrics for the recommendation service.

All collectors are registered on the default registry through promauto and are
exposed by the API at /metrics:

	curl http://localhost:8501/metrics

# Available Metrics

Index:
  - plotmatch_index_build_duration_seconds{source}: artifacts or rebuild
  - plotmatch_index_cold_starts_total{reason}: missing, corrupt, stale, forced
  - plotmatch_index_build_errors_total
  - plotmatch_index_rows, plotmatch_index_vocabulary_size, plotmatch_index_ready

Artifacts:
  - plotmatch_artifact_loads_total{artifact,result}
  - plotmatch_artifact_size_bytes{artifact}

Recommendations:
  - plotmatch_recommendation_duration_seconds{kind}
  - plotmatch_recommendations_total{kind,result}
  - plotmatch_recommendation_candidates_dropped_total

Posters:
  - plotmatch_poster_lookups_total{result}
  - plotmatch_poster_api_call_duration_seconds
  - circuit_breaker_state{name}: 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total{name,result}
  - circuit_breaker_state_transitions_total{name,from_state,to_state}
  - cache_hits_total, cache_misses_total, cache_entries, cache_evictions_total{cache_type}

HTTP:
  - api_requests_total{method,endpoint,status_code}
  - api_request_duration_seconds{method,endpoint}
  - api_active_requests
  - api_rate_limit_hits_total{endpoint}

DuckDB corpus source:
  - duckdb_query_duration_seconds{operation,table}
  - duckdb_query_errors_total{operation,table,error_type}

# Usage

Record helpers are safe for concurrent use:

	start := time.Now()
	resp, err := engine.Recommend(ctx, req)
	metrics.RecordRecommendation("recommend", "ok", time.Since(start))
*/
package metrics
