// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/plotmatch/internal/metrics"
	"github.com/tomtom215/plotmatch/internal/recommend/similarity"
	"github.com/tomtom215/plotmatch/internal/recommend/storage"
	"github.com/tomtom215/plotmatch/internal/recommend/text"
)

// Artifact names.
const (
	ArtifactMovies     = "movies"
	ArtifactSimilarity = "similarity"
)

// Cold start reasons reported in BuildStatus and metrics.
const (
	ReasonMissing     = "missing"
	ReasonCorrupt     = "corrupt"
	ReasonStale       = "stale"
	ReasonForced      = "forced"
	ReasonUnavailable = "unavailable"
)

// moviesArtifact is the persisted corpus and vocabulary.
type moviesArtifact struct {
	Movies []Movie
	Terms  []string
}

// similarityArtifact is the persisted upper triangle of the matrix.
type similarityArtifact struct {
	Size     int
	Triangle []float32
}

// artifactError carries the cold start reason of a failed load.
type artifactError struct {
	reason string
	err    error
}

func (e *artifactError) Error() string { return e.reason + ": " + e.err.Error() }
func (e *artifactError) Unwrap() error { return e.err }

func classifyLoad(name string, err error) *artifactError {
	reason := ReasonUnavailable
	result := "error"
	switch {
	case errors.Is(err, storage.ErrNotFound):
		reason, result = ReasonMissing, "missing"
	case errors.Is(err, storage.ErrCorrupt):
		reason, result = ReasonCorrupt, "corrupt"
	}
	metrics.RecordArtifactLoad(name, result)
	return &artifactError{reason: reason, err: fmt.Errorf("load %s: %w", name, err)}
}

// loadArtifacts reads both artifacts and checks that they belong together
// and match fingerprint.
func loadArtifacts(ctx context.Context, store ArtifactStore, fingerprint string) (*Index, error) {
	var movies moviesArtifact
	moviesMeta, err := store.Load(ctx, ArtifactMovies, 0, &movies)
	if err != nil {
		return nil, classifyLoad(ArtifactMovies, err)
	}
	metrics.RecordArtifactLoad(ArtifactMovies, "ok")

	if moviesMeta.Fingerprint != fingerprint {
		return nil, &artifactError{reason: ReasonStale, err: errors.New("movies artifact fingerprint does not match corpus")}
	}

	var sim similarityArtifact
	simMeta, err := store.Load(ctx, ArtifactSimilarity, 0, &sim)
	if err != nil {
		return nil, classifyLoad(ArtifactSimilarity, err)
	}
	metrics.RecordArtifactLoad(ArtifactSimilarity, "ok")

	if simMeta.Fingerprint != fingerprint {
		return nil, &artifactError{reason: ReasonStale, err: errors.New("similarity artifact fingerprint does not match corpus")}
	}

	vocab, err := text.VocabularyFromTerms(movies.Terms)
	if err != nil {
		return nil, &artifactError{reason: ReasonCorrupt, err: fmt.Errorf("movies vocabulary: %w", err)}
	}
	matrix, err := similarity.FromTriangle(sim.Size, sim.Triangle)
	if err != nil {
		return nil, &artifactError{reason: ReasonCorrupt, err: err}
	}
	idx, err := NewIndex(NewCorpus(movies.Movies), vocab, matrix, fingerprint, simMeta.CreatedAt)
	if err != nil {
		return nil, &artifactError{reason: ReasonCorrupt, err: err}
	}
	return idx, nil
}

// saveArtifacts writes both artifacts and prunes old versions.
func saveArtifacts(ctx context.Context, store ArtifactStore, idx *Index, buildDuration time.Duration, retain int) error {
	base := storage.ArtifactMetadata{
		CreatedAt:       idx.BuiltAt(),
		Rows:            idx.Corpus().Len(),
		Fingerprint:     idx.Fingerprint(),
		BuildDurationMS: buildDuration.Milliseconds(),
	}

	artifacts := []struct {
		name string
		data any
	}{
		{ArtifactMovies, moviesArtifact{Movies: idx.Corpus().Movies(), Terms: idx.Vocabulary().Terms()}},
		{ArtifactSimilarity, similarityArtifact{Size: idx.Similarity().Size(), Triangle: idx.Similarity().Triangle()}},
	}
	for _, a := range artifacts {
		meta, err := store.Save(ctx, a.name, a.data, base)
		if err != nil {
			return fmt.Errorf("save %s: %w", a.name, err)
		}
		metrics.RecordArtifactSave(a.name, meta.SizeBytes)
		if err := store.Prune(ctx, a.name, retain); err != nil {
			return fmt.Errorf("prune %s: %w", a.name, err)
		}
	}
	return nil
}
