// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/plotmatch/internal/models"
	"github.com/tomtom215/plotmatch/internal/recommend"
)

// HealthLive handles liveness checks.
// Returns 200 OK if the process is alive, regardless of the index.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	respondSuccess(w, r, http.StatusOK, models.LivenessStatus{
		Alive:  true,
		Uptime: time.Since(h.startTime).Seconds(),
	}, time.Time{})
}

// HealthReady handles readiness checks.
// Returns 503 until an index has been published.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")

	status := h.engine.Status()
	ready := h.engine.Ready()

	body := models.ReadinessStatus{
		Status:     "ready",
		Ready:      ready,
		IndexState: string(status.State),
		ColdStart:  status.ColdStart,
		Movies:     status.Rows,
		Posters:    h.postersEnabled(),
		Version:    h.config.Version,
		Uptime:     time.Since(h.startTime).Seconds(),
	}
	if !status.BuiltAt.IsZero() {
		builtAt := status.BuiltAt
		body.BuiltAt = &builtAt
	}

	code := http.StatusOK
	if !ready {
		code = http.StatusServiceUnavailable
		body.Status = "not_ready"
		if status.State == recommend.StateBuilding || status.State == recommend.StateLoading {
			w.Header().Set("Retry-After", retryAfterSeconds)
		}
	}

	respondSuccess(w, r, code, body, time.Time{})
}
