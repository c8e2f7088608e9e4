// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/plotmatch/internal/models"
)

// ListMovies handles GET /api/v1/movies?q=&limit=
// Returns titles containing q, case-insensitively, in corpus order.
func (h *Handler) ListMovies(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	limit, apiErr := getIntParam(r, "limit", defaultMovieLimit)
	if apiErr != nil {
		respondErrorDetails(w, http.StatusBadRequest, apiErr, nil)
		return
	}
	req := MoviesRequest{
		Query: r.URL.Query().Get("q"),
		Limit: limit,
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondErrorDetails(w, http.StatusBadRequest, apiErr, nil)
		return
	}

	idx, err := h.engine.Index()
	if err != nil {
		respondEngineError(w, err, "")
		return
	}

	corpus := idx.Corpus()
	found := corpus.Search(req.Query, req.Limit)
	movies := make([]models.MovieSummary, len(found))
	for i, m := range found {
		movies[i] = models.MovieSummary{ID: m.ID, Title: m.Title}
	}

	respondSuccess(w, r, http.StatusOK, models.MovieList{
		Query:  req.Query,
		Total:  corpus.Len(),
		Movies: movies,
	}, start)
}
