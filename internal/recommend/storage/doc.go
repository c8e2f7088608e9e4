// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

// Package storage persists the precomputed recommendation artifacts.
//
// Two artifacts exist: the filtered movie list (with the fitted vocabulary)
// and the packed similarity matrix. Rebuilding the matrix is quadratic in the
// corpus size, so it is written once and reloaded on every later start.
//
// # File Format
//
// Each version is one object named {name}_v{version}.art:
//
//	"PMAR" | uint16 format version | gob(storedFile)
//
// storedFile carries ArtifactMetadata and the compressed payload. The payload
// is the gob encoding of the caller's value; its SHA-256 is recorded before
// compression and verified after decompression.
//
// # Failure Semantics
//
// A missing artifact yields ErrNotFound. A damaged header, an undecodable
// envelope or payload and a checksum mismatch all match ErrCorrupt. Callers
// treat both as a cold start and rebuild.
//
// # Backends
//
// Objects go through blob.Backend: a local directory (default), memory,
// MinIO or S3.
package storage
