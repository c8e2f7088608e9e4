// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package recommend

import (
	"errors"

	"github.com/tomtom215/plotmatch/internal/recommend/similarity"
)

var (
	// ErrNotFound is returned when a title does not exactly match any movie.
	ErrNotFound = errors.New("title not found")

	// ErrIndexOutOfRange is returned for row indices outside the corpus.
	// It is the same value the similarity package returns.
	ErrIndexOutOfRange = similarity.ErrIndexOutOfRange

	// ErrNotReady is returned before the first index has been published.
	ErrNotReady = errors.New("index not ready")

	// ErrBuildInProgress is returned when a build is requested while one runs.
	ErrBuildInProgress = errors.New("index build already in progress")

	// ErrEmptyCorpus is returned when no movie has a usable overview.
	ErrEmptyCorpus = errors.New("corpus has no movies with an overview")
)
