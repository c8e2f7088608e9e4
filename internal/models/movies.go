// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package models

// MovieSummary is one entry of the title picker.
type MovieSummary struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// MovieList answers GET /api/v1/movies.
type MovieList struct {
	Query  string         `json:"query,omitempty"`
	Total  int            `json:"total"` // movies in the corpus
	Movies []MovieSummary `json:"movies"`
}

// SimilarMovie is a ranked neighbour without poster filtering.
type SimilarMovie struct {
	ID    int64   `json:"id"`
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

// SimilarList answers GET /api/v1/recommendations/similar.
type SimilarList struct {
	Title string         `json:"title"`
	K     int            `json:"k"`
	Items []SimilarMovie `json:"items"`
}

// RebuildAccepted acknowledges a rebuild request.
type RebuildAccepted struct {
	Message string `json:"message"`
	State   string `json:"state"`
}
