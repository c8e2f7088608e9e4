// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package recommend

import (
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestDefaultConfig_Valid(t *testing.T) {
	t.Parallel()
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() error = %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"max features", func(c *Config) { c.Vectorizer.MaxFeatures = 0 }, "vectorizer.max_features"},
		{"stop words", func(c *Config) { c.Vectorizer.StopWords = "french" }, "vectorizer.stop_words"},
		{"workers", func(c *Config) { c.Build.Workers = -1 }, "build.workers"},
		{"timeout", func(c *Config) { c.Build.Timeout = 0 }, "build.timeout"},
		{"default k", func(c *Config) { c.Limits.DefaultK = 0 }, "limits.default_k"},
		{"max k below default", func(c *Config) { c.Limits.MaxK = 2 }, "limits.max_k"},
		{"over fetch", func(c *Config) { c.Limits.OverFetchFactor = 0 }, "limits.over_fetch_factor"},
		{"max candidates below max k", func(c *Config) { c.Limits.MaxCandidates = 10 }, "limits.max_candidates"},
		{"poster concurrency", func(c *Config) { c.Limits.PosterConcurrency = 0 }, "limits.poster_concurrency"},
		{"poster timeout", func(c *Config) { c.Limits.PosterTimeout = -time.Second }, "limits.poster_timeout"},
		{"retain versions", func(c *Config) { c.Artifacts.RetainVersions = 0 }, "artifacts.retain_versions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Clone(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	clone := cfg.Clone()
	clone.Limits.DefaultK = 9

	if cfg.Limits.DefaultK == 9 {
		t.Error("Clone() shares state with the original")
	}
}

func TestConfig_NewVectorizer(t *testing.T) {
	t.Parallel()

	english := DefaultConfig()
	none := DefaultConfig()
	none.Vectorizer.StopWords = StopWordsNone
	small := DefaultConfig()
	small.Vectorizer.MaxFeatures = 10

	if english.NewVectorizer().Settings() == none.NewVectorizer().Settings() {
		t.Error("stop word setting not reflected in vectorizer settings")
	}
	if got := small.NewVectorizer().MaxFeatures(); got != 10 {
		t.Errorf("MaxFeatures() = %d, want 10", got)
	}
}

func TestConfig_MarshalJSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(DefaultConfig())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	s := string(data)
	for _, want := range []string{`"timeout":"30m0s"`, `"poster_timeout":"10s"`, `"max_features":5000`, `"stop_words":"english"`} {
		if !strings.Contains(s, want) {
			t.Errorf("JSON %s missing %s", s, want)
		}
	}
}
