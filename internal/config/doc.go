// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

/*
Package config provides centralized configuration management for Plotmatch.

Configuration is layered with Koanf v2: struct defaults, then an optional
YAML file (CONFIG_PATH, ./config.yaml or /etc/plotmatch/config.yaml), then
environment variables mapped through an explicit table. Unknown environment
variables are ignored.

# Environment Variables

Server:
  - HTTP_PORT: Listen port (default: 8501)
  - HTTP_HOST: Bind address (default: 0.0.0.0)
  - HTTP_TIMEOUT: Request timeout (default: 30s)
  - ENVIRONMENT: development, staging or production

Engine:
  - RECOMMEND_MAX_FEATURES: Vocabulary cap (default: 5000)
  - RECOMMEND_STOP_WORDS: english or none
  - RECOMMEND_BUILD_WORKERS: Similarity build goroutines (default: GOMAXPROCS)
  - RECOMMEND_FORCE_REBUILD: Ignore persisted artifacts on startup
  - RECOMMEND_DEFAULT_K, RECOMMEND_MAX_K: Result counts (default: 5, 50)
  - RECOMMEND_OVER_FETCH_FACTOR: Candidate multiplier for poster filtering (default: 3)

Corpus:
  - DATASET_PATH: TMDB movies CSV
  - DATASET_FORMAT: csv or duckdb
  - DUCKDB_PATH, DUCKDB_TABLE: Read movies from a DuckDB table instead

Artifacts:
  - ARTIFACTS_BACKEND: local, memory, minio or s3
  - ARTIFACTS_DIR: Directory for the local backend (default: /data/artifacts)
  - ARTIFACTS_COMPRESSION: zstd, lz4, gzip or none
  - MINIO_*, S3_*: Object storage settings

Posters:
  - TMDB_API_KEY: Enables poster lookups
  - TMDB_RATE_LIMIT, TMDB_BURST: Client side rate limit
  - POSTER_CACHE_TTL, POSTER_CACHE_BADGER_PATH: Poster caching

Usage:

	import "github.com/tomtom215/plotmatch/internal/config"

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}
*/
package config
