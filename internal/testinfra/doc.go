// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

// Package testinfra provides container helpers for integration tests.
//
// Files are built only with the integration tag:
//
//	go test -tags integration ./internal/recommend/storage/blob/...
//
// Tests call SkipIfNoDocker first so they skip cleanly on machines without
// a Docker daemon.
package testinfra
