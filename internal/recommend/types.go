// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package recommend

import (
	"context"
	"time"

	"github.com/tomtom215/plotmatch/internal/recommend/storage"
)

// Movie is one record of the corpus.
type Movie struct {
	// ID is the catalog identifier used for poster lookups.
	ID int64 `json:"id"`

	// Title is the display title. Resolution matches it exactly.
	Title string `json:"title"`

	// Overview is the plot summary the vectorizer consumes.
	Overview string `json:"overview"`
}

// ScoredMovie is a neighbour of a query movie.
type ScoredMovie struct {
	Movie

	// Row is the corpus position of the movie.
	Row int `json:"row"`

	// Score is the cosine similarity to the query, in [0, 1].
	Score float64 `json:"score"`
}

// Recommendation is a displayable neighbour.
type Recommendation struct {
	ScoredMovie

	// PosterURL is empty when poster lookups are disabled.
	PosterURL string `json:"poster_url,omitempty"`
}

// Request asks for movies similar to Title.
type Request struct {
	// Title must exactly match a corpus title.
	Title string `json:"title"`

	// K is the number of recommendations to return.
	// Defaults to Config.Limits.DefaultK if zero.
	K int `json:"k,omitempty"`

	// RequestID is a unique identifier for tracing.
	RequestID string `json:"request_id,omitempty"`
}

// Response carries the recommendations for one request.
type Response struct {
	// Query is the resolved movie.
	Query Movie `json:"query"`

	// Items are in ranking order. There may be fewer than K.
	Items []Recommendation `json:"items"`

	// Metadata contains timing and diagnostic information.
	Metadata ResponseMetadata `json:"metadata"`
}

// ResponseMetadata contains timing and diagnostic information.
type ResponseMetadata struct {
	RequestID string `json:"request_id"`

	// K is the effective number of results asked for.
	K int `json:"k"`

	// Candidates is how many ranked neighbours were considered.
	Candidates int `json:"candidates"`

	// Dropped is how many candidates were skipped for lack of a poster.
	Dropped int `json:"dropped"`

	// PostersEnabled is false when results were not filtered by poster.
	PostersEnabled bool `json:"posters_enabled"`

	LatencyMS int64 `json:"latency_ms"`

	// IndexBuiltAt identifies the index that answered.
	IndexBuiltAt time.Time `json:"index_built_at"`

	Timestamp time.Time `json:"timestamp"`
}

// BuildState is the lifecycle state of the engine's index.
type BuildState string

const (
	StateIdle     BuildState = "idle"
	StateLoading  BuildState = "loading"
	StateBuilding BuildState = "building"
	StateReady    BuildState = "ready"
	StateFailed   BuildState = "failed"
)

// BuildStatus reports index initialization progress. ColdStart is set when
// the last build had to regenerate the artifacts from the raw corpus.
type BuildStatus struct {
	State BuildState `json:"state"`

	// ColdStart is true when the artifacts were missing, corrupt or stale.
	ColdStart bool `json:"cold_start"`

	// ColdStartReason is one of missing, corrupt, stale or forced.
	ColdStartReason string `json:"cold_start_reason,omitempty"`

	// Progress is the fraction of similarity rows computed, in [0, 1].
	Progress float64 `json:"progress"`

	// Rows is the size of the published corpus.
	Rows int `json:"rows"`

	// VocabularySize is the number of terms in the published vocabulary.
	VocabularySize int `json:"vocabulary_size"`

	// BuiltAt is when the published artifacts were produced.
	BuiltAt time.Time `json:"built_at,omitempty"`

	// LoadedFrom is "artifacts" or "source".
	LoadedFrom string `json:"loaded_from,omitempty"`

	// Duration of the last completed build.
	Duration time.Duration `json:"duration"`

	// LastError contains the last build error, if any.
	LastError string `json:"last_error,omitempty"`
}

// Source supplies the raw movie records.
type Source interface {
	LoadMovies(ctx context.Context) ([]Movie, error)
}

// PosterResolver looks up display posters for movies.
type PosterResolver interface {
	// Enabled reports whether lookups are configured. When false the engine
	// returns ranked results without filtering.
	Enabled() bool

	// PosterURL returns the poster URL of a movie, or an error when there is
	// none or the lookup failed.
	PosterURL(ctx context.Context, movieID int64) (string, error)
}

// ArtifactStore persists the movies and similarity artifacts.
// *storage.Store implements it.
type ArtifactStore interface {
	Save(ctx context.Context, name string, data any, meta storage.ArtifactMetadata) (*storage.ArtifactMetadata, error)
	Load(ctx context.Context, name string, version int, target any) (*storage.ArtifactMetadata, error)
	Prune(ctx context.Context, name string, keep int) error
}
