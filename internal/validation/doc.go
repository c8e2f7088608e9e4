// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is built lazily and shared, so struct metadata
// is parsed once. Field names in errors come from the `query` tag when a
// struct carries one, falling back to `json`, so clients see the parameter
// names they sent:
//
//	type RecommendationRequest struct {
//	    Title string `query:"title" validate:"required,notblank,max=500"`
//	    K     int    `query:"k" validate:"gte=0,lte=50"`
//	}
//
//	if err := validation.ValidateStruct(&req); err != nil {
//	    apiErr := err.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	}
//
// Custom tags:
//   - notblank: the string contains at least one non-space character
package validation
