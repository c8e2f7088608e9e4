// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/plotmatch/internal/recommend"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/plotmatch/config.yaml",
	"/etc/plotmatch/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// Default returns the built-in defaults without reading files or the
// environment.
func Default() *Config {
	return defaultConfig()
}

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	engine := recommend.DefaultConfig()

	return &Config{
		Server: ServerConfig{
			Port:            8501,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			Environment:     "development",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Recommend: RecommendConfig{
			MaxFeatures:       engine.Vectorizer.MaxFeatures,
			StopWords:         engine.Vectorizer.StopWords,
			BuildWorkers:      0, // 0 = use GOMAXPROCS
			BuildTimeout:      engine.Build.Timeout,
			ForceRebuild:      false,
			RefreshInterval:   0, // Disabled; the corpus file rarely changes
			DefaultK:          engine.Limits.DefaultK,
			MaxK:              engine.Limits.MaxK,
			OverFetchFactor:   engine.Limits.OverFetchFactor,
			MaxCandidates:     engine.Limits.MaxCandidates,
			PosterConcurrency: engine.Limits.PosterConcurrency,
			PosterTimeout:     engine.Limits.PosterTimeout,
			RetainVersions:    engine.Artifacts.RetainVersions,
		},
		Dataset: DatasetConfig{
			Path:   "/data/tmdb_5000_movies.csv",
			Format: DatasetFormatCSV,
		},
		Database: DatabaseConfig{
			Path:                   "", // in-memory
			MaxMemory:              "1GB",
			Threads:                0,
			PreserveInsertionOrder: true,
		},
		Artifacts: ArtifactsConfig{
			Backend:     BackendLocal,
			Dir:         "/data/artifacts",
			Compression: "zstd",
			MinIO: MinIOConfig{
				Bucket:       "plotmatch",
				Prefix:       "artifacts/",
				Region:       "us-east-1",
				UseSSL:       true,
				CreateBucket: true,
			},
			S3: S3Config{
				Prefix:   "artifacts/",
				PartSize: 16 * 1024 * 1024,
			},
		},
		TMDB: TMDBConfig{
			APIKey:                   "", // Posters disabled until a key is set
			BaseURL:                  "https://api.themoviedb.org",
			ImageBaseURL:             "https://image.tmdb.org/t/p/w500/",
			Language:                 "en-US",
			Timeout:                  5 * time.Second,
			RateLimit:                40,
			Burst:                    20,
			BreakerMaxRequests:       3,
			BreakerInterval:          time.Minute,
			BreakerTimeout:           30 * time.Second,
			BreakerFailureThreshold:  5,
			BreakerFailureRatio:      0.6,
			BreakerMinRequestsToTrip: 10,
		},
		PosterCache: PosterCacheConfig{
			MemoryEntries: 10000,
			TTL:           24 * time.Hour,
			NegativeTTL:   time.Hour,
			BadgerPath:    "",
		},
		Security: SecurityConfig{
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// TMDB_API_KEY -> tmdb.api_key
	// RECOMMEND_MAX_K -> recommend.max_k
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Server mappings
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",

	// Logging mappings
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Recommendation engine mappings
	"recommend_max_features":       "recommend.max_features",
	"recommend_stop_words":         "recommend.stop_words",
	"recommend_build_workers":      "recommend.build_workers",
	"recommend_build_timeout":      "recommend.build_timeout",
	"recommend_force_rebuild":      "recommend.force_rebuild",
	"recommend_refresh_interval":   "recommend.refresh_interval",
	"recommend_default_k":          "recommend.default_k",
	"recommend_max_k":              "recommend.max_k",
	"recommend_over_fetch_factor":  "recommend.over_fetch_factor",
	"recommend_max_candidates":     "recommend.max_candidates",
	"recommend_poster_concurrency": "recommend.poster_concurrency",
	"recommend_poster_timeout":     "recommend.poster_timeout",
	"recommend_retain_versions":    "recommend.retain_versions",

	// Dataset mappings
	"dataset_path":   "dataset.path",
	"dataset_format": "dataset.format",

	// Database mappings
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",
	"duckdb_table":      "database.table",

	// Artifact mappings
	"artifacts_backend":     "artifacts.backend",
	"artifacts_dir":         "artifacts.dir",
	"artifacts_compression": "artifacts.compression",
	"minio_endpoint":        "artifacts.minio.endpoint",
	"minio_access_key":      "artifacts.minio.access_key",
	"minio_secret_key":      "artifacts.minio.secret_key",
	"minio_bucket":          "artifacts.minio.bucket",
	"minio_prefix":          "artifacts.minio.prefix",
	"minio_region":          "artifacts.minio.region",
	"minio_use_ssl":         "artifacts.minio.use_ssl",
	"minio_create_bucket":   "artifacts.minio.create_bucket",
	"s3_bucket":             "artifacts.s3.bucket",
	"s3_prefix":             "artifacts.s3.prefix",
	"s3_region":             "artifacts.s3.region",
	"s3_endpoint":           "artifacts.s3.endpoint",
	"s3_use_path_style":     "artifacts.s3.use_path_style",
	"s3_part_size":          "artifacts.s3.part_size",

	// TMDB mappings
	"tmdb_api_key":                   "tmdb.api_key",
	"tmdb_base_url":                  "tmdb.base_url",
	"tmdb_image_base_url":            "tmdb.image_base_url",
	"tmdb_language":                  "tmdb.language",
	"tmdb_timeout":                   "tmdb.timeout",
	"tmdb_rate_limit":                "tmdb.rate_limit",
	"tmdb_burst":                     "tmdb.burst",
	"tmdb_breaker_max_requests":      "tmdb.breaker_max_requests",
	"tmdb_breaker_interval":          "tmdb.breaker_interval",
	"tmdb_breaker_timeout":           "tmdb.breaker_timeout",
	"tmdb_breaker_failure_threshold": "tmdb.breaker_failure_threshold",
	"tmdb_breaker_failure_ratio":     "tmdb.breaker_failure_ratio",
	"tmdb_breaker_min_requests":      "tmdb.breaker_min_requests",

	// Poster cache mappings
	"poster_cache_entries":      "poster_cache.memory_entries",
	"poster_cache_ttl":          "poster_cache.ttl",
	"poster_cache_negative_ttl": "poster_cache.negative_ttl",
	"poster_cache_badger_path":  "poster_cache.badger_path",

	// Security mappings
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped variables return an empty string and are skipped, so unrelated
// environment variables never pollute the configuration.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
