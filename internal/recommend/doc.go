// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

// Package recommend implements content-based movie recommendations over
// plot overviews.
//
// # Architecture
//
// Initialization turns the corpus into an immutable Index:
//
//   - Corpus: movies with a non-blank overview, in source order. A movie's
//     position is its row in every matrix.
//   - Vectorization (package text): lowercase word counts over a fitted
//     vocabulary of at most max_features terms, English stop words removed.
//   - Similarity (package similarity): all-pairs cosine similarity, stored
//     as a packed upper triangle.
//
// Queries resolve a title to its row (first exact match) and read that row
// of the matrix. Nothing is computed per request beyond sorting one row.
//
// # Persistence
//
// Building the matrix is quadratic in the corpus size, so the Engine saves
// the corpus and the matrix as artifacts (package storage) and reuses them on
// the next start. Artifacts that are missing, corrupt or built from another
// corpus or vectorizer configuration trigger a cold start: the index is
// rebuilt and the artifacts rewritten. BuildStatus reports which path was
// taken and how long it took.
//
// # Usage
//
//	engine, err := recommend.NewEngine(cfg, source, store, logger)
//	if err != nil {
//	    return err
//	}
//	engine.SetPosterResolver(posters)
//	if err := engine.Build(ctx); err != nil {
//	    return err
//	}
//	resp, err := engine.Recommend(ctx, recommend.Request{Title: "Avatar", K: 5})
//
// # Thread Safety
//
// The published Index is swapped atomically and never modified, so readers
// take no locks. Builds are serialized; a concurrent Build returns
// ErrBuildInProgress.
package recommend
