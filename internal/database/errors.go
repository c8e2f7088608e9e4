// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package database

import (
	"errors"
	"io"
)

var (
	// ErrMissingColumn is returned when the source lacks id, title or overview.
	ErrMissingColumn = errors.New("required movie column missing")

	// ErrInvalidTableName is returned for table names that are not plain
	// identifiers.
	ErrInvalidTableName = errors.New("invalid table name")

	// ErrConnectionLost is returned when the DuckDB connection is gone.
	ErrConnectionLost = errors.New("database connection lost")
)

// closeQuietly closes a resource and explicitly ignores any error
// Use this for cleanup operations in error paths where Close() errors are not actionable
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close() // Explicitly ignore error - cleanup is best-effort
	}
}
