// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means no artifact exists for the requested name/version.
	ErrNotFound = errors.New("artifact not found")

	// ErrCorrupt means an artifact exists but cannot be decoded.
	ErrCorrupt = errors.New("artifact corrupt")
)

// ChecksumMismatchError reports a payload whose SHA-256 does not match the
// one recorded at save time.
type ChecksumMismatchError struct {
	Name     string
	Version  int
	Expected string
	Actual   string
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch for %s v%d: expected %s, got %s", e.Name, e.Version, e.Expected, e.Actual)
}

// Unwrap makes errors.Is(err, ErrCorrupt) true.
func (e *ChecksumMismatchError) Unwrap() error {
	return ErrCorrupt
}
