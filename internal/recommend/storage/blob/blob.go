// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

// Package blob provides the key/value object backends that artifact files
// are written to: a local directory, process memory, MinIO and Amazon S3.
//
// Keys are slash-separated relative names such as "similarity_v3.art".
// Every backend reports a missing key as ErrNotFound so callers can treat
// absence uniformly.
package blob

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

// ErrNotFound is returned when a key does not exist.
var ErrNotFound = errors.New("blob not found")

// Backend stores whole objects by key.
type Backend interface {
	// Get returns the full contents of key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put writes data under key, replacing any previous object. Readers
	// never observe a partially written object.
	Put(ctx context.Context, key string, data []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns the keys starting with prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)

	// String names the backend for logs.
	String() string
}

// validateKey rejects keys that could escape the backend root.
func validateKey(key string) error {
	if key == "" {
		return errors.New("blob: empty key")
	}
	if strings.HasPrefix(key, "/") || path.Clean(key) != key || strings.HasPrefix(key, "..") {
		return fmt.Errorf("blob: invalid key %q", key)
	}
	return nil
}
