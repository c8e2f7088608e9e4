// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package recommend

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/plotmatch/internal/recommend/text"
)

// Stop word set names accepted by VectorizerConfig.StopWords.
const (
	StopWordsEnglish = "english"
	StopWordsNone    = "none"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Vectorizer controls how overviews become count vectors.
	Vectorizer VectorizerConfig `json:"vectorizer"`

	// Build controls index initialization.
	Build BuildConfig `json:"build"`

	// Limits contains request limits.
	Limits LimitsConfig `json:"limits"`

	// Artifacts controls artifact retention.
	Artifacts ArtifactsConfig `json:"artifacts"`
}

// VectorizerConfig contains vectorizer parameters. Changing any of them
// invalidates persisted artifacts.
type VectorizerConfig struct {
	// MaxFeatures caps the vocabulary size.
	// Default: 5000.
	MaxFeatures int `json:"max_features"`

	// StopWords is "english" or "none".
	// Default: "english".
	StopWords string `json:"stop_words"`
}

// BuildConfig contains index initialization parameters.
type BuildConfig struct {
	// Workers is the number of goroutines computing similarity rows.
	// Zero uses GOMAXPROCS.
	Workers int `json:"workers"`

	// Timeout is the maximum time allowed for one build.
	// Default: 30m.
	Timeout time.Duration `json:"timeout"`

	// ForceRebuild ignores persisted artifacts on the first build.
	ForceRebuild bool `json:"force_rebuild"`
}

// LimitsConfig contains request limits.
type LimitsConfig struct {
	// DefaultK is the number of recommendations when a request sets none.
	// Default: 5.
	DefaultK int `json:"default_k"`

	// MaxK is the maximum allowed K value.
	// Default: 50.
	MaxK int `json:"max_k"`

	// OverFetchFactor multiplies K to get the candidate count, so that
	// candidates without a poster can be dropped.
	// Default: 3.
	OverFetchFactor int `json:"over_fetch_factor"`

	// MaxCandidates caps the candidate count.
	// Default: 150.
	MaxCandidates int `json:"max_candidates"`

	// PosterConcurrency bounds parallel poster lookups per request.
	// Default: 8.
	PosterConcurrency int `json:"poster_concurrency"`

	// PosterTimeout bounds all poster lookups of one request.
	// Default: 10s.
	PosterTimeout time.Duration `json:"poster_timeout"`
}

// ArtifactsConfig contains artifact retention parameters.
type ArtifactsConfig struct {
	// RetainVersions is how many versions of each artifact to keep.
	// Default: 3.
	RetainVersions int `json:"retain_versions"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		Vectorizer: VectorizerConfig{
			MaxFeatures: text.DefaultMaxFeatures,
			StopWords:   StopWordsEnglish,
		},
		Build: BuildConfig{
			Timeout: 30 * time.Minute,
		},
		Limits: LimitsConfig{
			DefaultK:          5,
			MaxK:              50,
			OverFetchFactor:   3,
			MaxCandidates:     150,
			PosterConcurrency: 8,
			PosterTimeout:     10 * time.Second,
		},
		Artifacts: ArtifactsConfig{
			RetainVersions: 3,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Vectorizer.MaxFeatures < 1 {
		return fmt.Errorf("vectorizer.max_features must be positive, got %d", c.Vectorizer.MaxFeatures)
	}
	switch c.Vectorizer.StopWords {
	case StopWordsEnglish, StopWordsNone:
	default:
		return fmt.Errorf("vectorizer.stop_words must be %q or %q, got %q", StopWordsEnglish, StopWordsNone, c.Vectorizer.StopWords)
	}

	if c.Build.Workers < 0 {
		return fmt.Errorf("build.workers must be non-negative, got %d", c.Build.Workers)
	}
	if c.Build.Timeout <= 0 {
		return fmt.Errorf("build.timeout must be positive, got %v", c.Build.Timeout)
	}

	if c.Limits.DefaultK < 1 {
		return fmt.Errorf("limits.default_k must be positive, got %d", c.Limits.DefaultK)
	}
	if c.Limits.MaxK < c.Limits.DefaultK {
		return fmt.Errorf("limits.max_k must be >= limits.default_k, got %d < %d", c.Limits.MaxK, c.Limits.DefaultK)
	}
	if c.Limits.OverFetchFactor < 1 {
		return fmt.Errorf("limits.over_fetch_factor must be positive, got %d", c.Limits.OverFetchFactor)
	}
	if c.Limits.MaxCandidates < c.Limits.MaxK {
		return fmt.Errorf("limits.max_candidates must be >= limits.max_k, got %d < %d", c.Limits.MaxCandidates, c.Limits.MaxK)
	}
	if c.Limits.PosterConcurrency < 1 {
		return fmt.Errorf("limits.poster_concurrency must be positive, got %d", c.Limits.PosterConcurrency)
	}
	if c.Limits.PosterTimeout <= 0 {
		return fmt.Errorf("limits.poster_timeout must be positive, got %v", c.Limits.PosterTimeout)
	}

	if c.Artifacts.RetainVersions < 1 {
		return fmt.Errorf("artifacts.retain_versions must be positive, got %d", c.Artifacts.RetainVersions)
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	// all nested structs hold value types only
	clone := *c
	return &clone
}

// NewVectorizer returns the vectorizer described by the configuration.
func (c *Config) NewVectorizer() *text.Vectorizer {
	opts := []text.Option{text.WithMaxFeatures(c.Vectorizer.MaxFeatures)}
	if c.Vectorizer.StopWords == StopWordsNone {
		opts = append(opts, text.WithoutStopWords())
	}
	return text.NewVectorizer(opts...)
}

// MarshalJSON renders durations as strings.
func (c *Config) MarshalJSON() ([]byte, error) {
	type buildJSON struct {
		Workers      int    `json:"workers"`
		Timeout      string `json:"timeout"`
		ForceRebuild bool   `json:"force_rebuild"`
	}
	type limitsJSON struct {
		DefaultK          int    `json:"default_k"`
		MaxK              int    `json:"max_k"`
		OverFetchFactor   int    `json:"over_fetch_factor"`
		MaxCandidates     int    `json:"max_candidates"`
		PosterConcurrency int    `json:"poster_concurrency"`
		PosterTimeout     string `json:"poster_timeout"`
	}
	return json.Marshal(&struct {
		Vectorizer VectorizerConfig `json:"vectorizer"`
		Build      buildJSON        `json:"build"`
		Limits     limitsJSON       `json:"limits"`
		Artifacts  ArtifactsConfig  `json:"artifacts"`
	}{
		Vectorizer: c.Vectorizer,
		Build: buildJSON{
			Workers:      c.Build.Workers,
			Timeout:      c.Build.Timeout.String(),
			ForceRebuild: c.Build.ForceRebuild,
		},
		Limits: limitsJSON{
			DefaultK:          c.Limits.DefaultK,
			MaxK:              c.Limits.MaxK,
			OverFetchFactor:   c.Limits.OverFetchFactor,
			MaxCandidates:     c.Limits.MaxCandidates,
			PosterConcurrency: c.Limits.PosterConcurrency,
			PosterTimeout:     c.Limits.PosterTimeout.String(),
		},
		Artifacts: c.Artifacts,
	})
}
