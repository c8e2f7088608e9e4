// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package poster

import (
	"errors"
	"fmt"
)

var (
	// ErrNoPoster is returned when the catalog has no poster for a movie,
	// including when the movie itself is unknown.
	ErrNoPoster = errors.New("no poster available")

	// ErrDisabled is returned by a resolver without an API key.
	ErrDisabled = errors.New("poster lookups disabled")
)

// APIError is a non-2xx response from the catalog API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tmdb api returned status %d: %s", e.StatusCode, e.Body)
}
