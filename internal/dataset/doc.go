// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

// Package dataset reads the movie corpus from a TMDB style CSV export.
//
// The header must contain id, title and overview (case-insensitive, any
// order). Other columns are ignored. Rows are returned in file order with
// overviews untouched; blank overview filtering belongs to the corpus.
package dataset
