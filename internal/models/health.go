// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package models

import "time"

// LivenessStatus is returned by the liveness check.
type LivenessStatus struct {
	Alive  bool    `json:"alive"`
	Uptime float64 `json:"uptime_seconds"`
}

// ReadinessStatus is returned by the readiness check. Ready is true once an
// index has been published.
type ReadinessStatus struct {
	Status     string     `json:"status"` // "ready" or "not_ready"
	Ready      bool       `json:"ready"`
	IndexState string     `json:"index_state"`
	ColdStart  bool       `json:"cold_start"`
	Movies     int        `json:"movies"`
	BuiltAt    *time.Time `json:"built_at,omitempty"`
	Posters    bool       `json:"posters_enabled"`
	Version    string     `json:"version"`
	Uptime     float64    `json:"uptime_seconds"`
}
