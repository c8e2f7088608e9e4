// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package config

import (
	"time"

	"github.com/tomtom215/plotmatch/internal/recommend"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any setting via environment variables
//
// Configuration Categories:
//
//  1. Corpus:
//     - Dataset: where the movie records come from (CSV file or DuckDB)
//     - Database: DuckDB connection tuning for the duckdb source
//
//  2. Engine:
//     - Recommend: vectorizer, build and request limits
//     - Artifacts: where the precomputed index is persisted
//
//  3. Posters:
//     - TMDB: API client, rate limit and circuit breaker
//     - PosterCache: in-memory and Badger caches
//
//  4. Serving:
//     - Server: HTTP listener
//     - Security: CORS and rate limiting
//     - Logging: log level and format
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	engine, err := recommend.NewEngine(cfg.Recommend.EngineConfig(), source, store, logger)
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Logging     LoggingConfig     `koanf:"logging"`
	Recommend   RecommendConfig   `koanf:"recommend"`
	Dataset     DatasetConfig     `koanf:"dataset"`
	Database    DatabaseConfig    `koanf:"database"`
	Artifacts   ArtifactsConfig   `koanf:"artifacts"`
	TMDB        TMDBConfig        `koanf:"tmdb"`
	PosterCache PosterCacheConfig `koanf:"poster_cache"`
	Security    SecurityConfig    `koanf:"security"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // Environment mode: "development", "staging", "production" (default: "development")
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// RecommendConfig holds recommendation engine settings. It is flattened
// into koanf paths and converted with EngineConfig.
type RecommendConfig struct {
	// Vectorizer settings. Changing either invalidates persisted artifacts.
	MaxFeatures int    `koanf:"max_features"`
	StopWords   string `koanf:"stop_words"`

	// Build settings
	BuildWorkers int           `koanf:"build_workers"` // 0 = GOMAXPROCS
	BuildTimeout time.Duration `koanf:"build_timeout"`
	ForceRebuild bool          `koanf:"force_rebuild"`

	// RefreshInterval re-verifies artifacts and the corpus periodically.
	// Zero disables refreshing.
	RefreshInterval time.Duration `koanf:"refresh_interval"`

	// Request limits
	DefaultK          int           `koanf:"default_k"`
	MaxK              int           `koanf:"max_k"`
	OverFetchFactor   int           `koanf:"over_fetch_factor"`
	MaxCandidates     int           `koanf:"max_candidates"`
	PosterConcurrency int           `koanf:"poster_concurrency"`
	PosterTimeout     time.Duration `koanf:"poster_timeout"`

	RetainVersions int `koanf:"retain_versions"`
}

// EngineConfig converts the flattened settings to a recommend.Config.
func (r RecommendConfig) EngineConfig() *recommend.Config {
	return &recommend.Config{
		Vectorizer: recommend.VectorizerConfig{
			MaxFeatures: r.MaxFeatures,
			StopWords:   r.StopWords,
		},
		Build: recommend.BuildConfig{
			Workers:      r.BuildWorkers,
			Timeout:      r.BuildTimeout,
			ForceRebuild: r.ForceRebuild,
		},
		Limits: recommend.LimitsConfig{
			DefaultK:          r.DefaultK,
			MaxK:              r.MaxK,
			OverFetchFactor:   r.OverFetchFactor,
			MaxCandidates:     r.MaxCandidates,
			PosterConcurrency: r.PosterConcurrency,
			PosterTimeout:     r.PosterTimeout,
		},
		Artifacts: recommend.ArtifactsConfig{
			RetainVersions: r.RetainVersions,
		},
	}
}

// Dataset formats.
const (
	DatasetFormatCSV    = "csv"
	DatasetFormatDuckDB = "duckdb"
)

// DatasetConfig selects the corpus source.
type DatasetConfig struct {
	// Path is the TMDB style CSV file with id, title and overview columns.
	Path string `koanf:"path"`

	// Format is "csv" (encoding/csv reader) or "duckdb" (read_csv_auto or
	// a table in Database.Path).
	Format string `koanf:"format"`
}

// DatabaseConfig holds DuckDB settings for the duckdb dataset format.
type DatabaseConfig struct {
	Path                   string `koanf:"path"` // empty = in-memory
	MaxMemory              string `koanf:"max_memory"`
	Threads                int    `koanf:"threads"`                  // Number of DuckDB threads (0 = use NumCPU)
	PreserveInsertionOrder bool   `koanf:"preserve_insertion_order"` // Must stay true for file-order rows
	Table                  string `koanf:"table"`                    // Read movies from this table instead of Dataset.Path
}

// Artifact backends.
const (
	BackendLocal  = "local"
	BackendMemory = "memory"
	BackendMinIO  = "minio"
	BackendS3     = "s3"
)

// ArtifactsConfig selects where precomputed artifacts are stored.
type ArtifactsConfig struct {
	Backend     string      `koanf:"backend"`
	Dir         string      `koanf:"dir"`
	Compression string      `koanf:"compression"`
	MinIO       MinIOConfig `koanf:"minio"`
	S3          S3Config    `koanf:"s3"`
}

// MinIOConfig holds MinIO artifact backend settings.
type MinIOConfig struct {
	Endpoint     string `koanf:"endpoint"`
	AccessKey    string `koanf:"access_key"`
	SecretKey    string `koanf:"secret_key"`
	Bucket       string `koanf:"bucket"`
	Prefix       string `koanf:"prefix"`
	Region       string `koanf:"region"`
	UseSSL       bool   `koanf:"use_ssl"`
	CreateBucket bool   `koanf:"create_bucket"`
}

// S3Config holds S3 artifact backend settings. Credentials come from the
// default AWS chain.
type S3Config struct {
	Bucket       string `koanf:"bucket"`
	Prefix       string `koanf:"prefix"`
	Region       string `koanf:"region"`
	Endpoint     string `koanf:"endpoint"`
	UsePathStyle bool   `koanf:"use_path_style"`
	PartSize     int64  `koanf:"part_size"`
}

// TMDBConfig holds The Movie Database API settings.
type TMDBConfig struct {
	// APIKey enables poster lookups. Empty disables them and responses are
	// ranking-only.
	APIKey       string        `koanf:"api_key"`
	BaseURL      string        `koanf:"base_url"`
	ImageBaseURL string        `koanf:"image_base_url"`
	Language     string        `koanf:"language"`
	Timeout      time.Duration `koanf:"timeout"`

	// Rate limiting (requests per second and burst)
	RateLimit float64 `koanf:"rate_limit"`
	Burst     int     `koanf:"burst"`

	// Circuit breaker
	BreakerMaxRequests       uint32        `koanf:"breaker_max_requests"`
	BreakerInterval          time.Duration `koanf:"breaker_interval"`
	BreakerTimeout           time.Duration `koanf:"breaker_timeout"`
	BreakerFailureThreshold  uint32        `koanf:"breaker_failure_threshold"`
	BreakerFailureRatio      float64       `koanf:"breaker_failure_ratio"`
	BreakerMinRequestsToTrip uint32        `koanf:"breaker_min_requests"`
}

// Enabled reports whether poster lookups are configured.
func (t TMDBConfig) Enabled() bool {
	return t.APIKey != ""
}

// PosterCacheConfig holds poster cache settings.
type PosterCacheConfig struct {
	MemoryEntries int           `koanf:"memory_entries"`
	TTL           time.Duration `koanf:"ttl"`
	NegativeTTL   time.Duration `koanf:"negative_ttl"` // TTL for "no poster" results
	BadgerPath    string        `koanf:"badger_path"`  // empty = no persistent cache
}

// SecurityConfig holds HTTP hardening settings.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// Load reads configuration using Koanf with layered sources.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
