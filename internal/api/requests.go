// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package api

// defaultMovieLimit applies when /movies is called without a limit.
const defaultMovieLimit = 50

// RecommendationRequest is parsed from the query string of the
// recommendation endpoints. K above the engine cap is clamped, not rejected.
type RecommendationRequest struct {
	Title string `query:"title" validate:"required,notblank,max=500"`
	K     int    `query:"k" validate:"gte=0,lte=1000"`
}

// MoviesRequest is parsed from the query string of the title picker.
type MoviesRequest struct {
	Query string `query:"q" validate:"max=200"`
	Limit int    `query:"limit" validate:"gte=0,lte=1000"`
}
