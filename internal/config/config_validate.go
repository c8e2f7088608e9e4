// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/tomtom215/plotmatch/internal/recommend/storage"
)

// Validate checks the loaded configuration and returns the first problem
// found, named by its environment variable.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateLogging,
		c.validateRecommend,
		c.validateDataset,
		c.validateDatabase,
		c.validateArtifacts,
		c.validateTMDB,
		c.validatePosterCache,
		c.validateRateLimits,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

// validateServer validates server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if !validEnvironments[c.Server.Environment] {
		return fmt.Errorf("ENVIRONMENT must be one of: development, staging, production")
	}
	return nil
}

var validEnvironments = map[string]bool{
	"development": true,
	"staging":     true,
	"production":  true,
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// validateRecommend delegates to the engine's own validation.
func (c *Config) validateRecommend() error {
	if err := c.Recommend.EngineConfig().Validate(); err != nil {
		return fmt.Errorf("RECOMMEND: %w", err)
	}
	if c.Recommend.RefreshInterval < 0 {
		return fmt.Errorf("RECOMMEND_REFRESH_INTERVAL must not be negative")
	}
	return nil
}

func (c *Config) validateDataset() error {
	switch c.Dataset.Format {
	case DatasetFormatCSV:
		if c.Dataset.Path == "" {
			return fmt.Errorf("DATASET_PATH is required for the csv format")
		}
	case DatasetFormatDuckDB:
		if c.Dataset.Path == "" && c.Database.Table == "" {
			return fmt.Errorf("DATASET_PATH or DUCKDB_TABLE is required for the duckdb format")
		}
	default:
		return fmt.Errorf("DATASET_FORMAT must be one of: csv, duckdb")
	}
	return nil
}

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// validateDatabase rejects table names that cannot be used as identifiers.
func (c *Config) validateDatabase() error {
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must not be negative")
	}
	if c.Database.Table != "" && !tableNamePattern.MatchString(c.Database.Table) {
		return fmt.Errorf("DUCKDB_TABLE %q is not a valid table name", c.Database.Table)
	}
	return nil
}

func (c *Config) validateArtifacts() error {
	if _, err := storage.ParseCompression(c.Artifacts.Compression); err != nil {
		return fmt.Errorf("ARTIFACTS_COMPRESSION: %w", err)
	}

	switch c.Artifacts.Backend {
	case BackendLocal:
		if c.Artifacts.Dir == "" {
			return fmt.Errorf("ARTIFACTS_DIR is required for the local backend")
		}
	case BackendMemory:
	case BackendMinIO:
		m := c.Artifacts.MinIO
		if m.Endpoint == "" || m.Bucket == "" {
			return fmt.Errorf("MINIO_ENDPOINT and MINIO_BUCKET are required for the minio backend")
		}
		if m.AccessKey == "" || m.SecretKey == "" {
			return fmt.Errorf("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required for the minio backend")
		}
	case BackendS3:
		if c.Artifacts.S3.Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for the s3 backend")
		}
		if c.Artifacts.S3.PartSize != 0 && c.Artifacts.S3.PartSize < minS3PartSize {
			return fmt.Errorf("S3_PART_SIZE must be at least %d bytes", minS3PartSize)
		}
	default:
		return fmt.Errorf("ARTIFACTS_BACKEND must be one of: local, memory, minio, s3")
	}
	return nil
}

// minS3PartSize is the S3 multipart minimum.
const minS3PartSize = 5 * 1024 * 1024

func (c *Config) validateTMDB() error {
	if !c.TMDB.Enabled() {
		return nil
	}
	if containsPlaceholder(c.TMDB.APIKey) {
		return fmt.Errorf("TMDB_API_KEY contains a placeholder value")
	}
	for name, raw := range map[string]string{
		"TMDB_BASE_URL":       c.TMDB.BaseURL,
		"TMDB_IMAGE_BASE_URL": c.TMDB.ImageBaseURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL, got %q", name, raw)
		}
	}
	if c.TMDB.Timeout <= 0 {
		return fmt.Errorf("TMDB_TIMEOUT must be positive")
	}
	if c.TMDB.RateLimit <= 0 || c.TMDB.Burst < 1 {
		return fmt.Errorf("TMDB_RATE_LIMIT and TMDB_BURST must be positive")
	}
	if c.TMDB.BreakerFailureRatio < 0 || c.TMDB.BreakerFailureRatio > 1 {
		return fmt.Errorf("TMDB_BREAKER_FAILURE_RATIO must be between 0 and 1")
	}
	return nil
}

func (c *Config) validatePosterCache() error {
	if c.PosterCache.MemoryEntries < 0 {
		return fmt.Errorf("POSTER_CACHE_ENTRIES must not be negative")
	}
	if c.PosterCache.TTL <= 0 || c.PosterCache.NegativeTTL <= 0 {
		return fmt.Errorf("POSTER_CACHE_TTL and POSTER_CACHE_NEGATIVE_TTL must be positive")
	}
	return nil
}

// Rate limit constants
const (
	minRateLimitRequests = 1           // Minimum 1 request allowed
	maxRateLimitRequests = 100000      // Maximum 100K requests per window
	minRateLimitWindow   = time.Second // Minimum 1 second window
	maxRateLimitWindow   = time.Hour   // Maximum 1 hour window
)

// validateRateLimits validates rate limiting configuration bounds.
func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// hasWildcardCORS checks if CORS is configured with wildcard origins
func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// ShouldWarnAboutCORS returns true when wildcard CORS is used in production.
func (c *Config) ShouldWarnAboutCORS() bool {
	return c.IsProduction() && c.hasWildcardCORS()
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// placeholderPatterns indicate the user forgot to set a real value.
var placeholderPatterns = []string{
	"REPLACE",
	"CHANGEME",
	"CHANGE_ME",
	"YOUR_API_KEY",
	"PLACEHOLDER",
	"EXAMPLE",
}

func containsPlaceholder(value string) bool {
	upper := strings.ToUpper(value)
	for _, pattern := range placeholderPatterns {
		if strings.Contains(upper, pattern) {
			return true
		}
	}
	return false
}
