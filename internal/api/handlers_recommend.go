// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/plotmatch/internal/logging"
	"github.com/tomtom215/plotmatch/internal/models"
	"github.com/tomtom215/plotmatch/internal/recommend"
)

// parseRecommendationRequest reads and validates title and k.
func parseRecommendationRequest(w http.ResponseWriter, r *http.Request) (RecommendationRequest, bool) {
	k, apiErr := getIntParam(r, "k", 0)
	if apiErr != nil {
		respondErrorDetails(w, http.StatusBadRequest, apiErr, nil)
		return RecommendationRequest{}, false
	}
	req := RecommendationRequest{
		Title: r.URL.Query().Get("title"),
		K:     k,
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondErrorDetails(w, http.StatusBadRequest, apiErr, nil)
		return RecommendationRequest{}, false
	}
	return req, true
}

// GetRecommendations handles GET /api/v1/recommendations?title=&k=
// Returns up to k movies similar to title that have a poster, in ranking
// order. Without poster lookups the raw ranking is returned.
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req, ok := parseRecommendationRequest(w, r)
	if !ok {
		return
	}

	resp, err := h.engine.Recommend(r.Context(), recommend.Request{
		Title:     req.Title,
		K:         req.K,
		RequestID: logging.RequestIDFromContext(r.Context()),
	})
	if err != nil {
		respondEngineError(w, err, req.Title)
		return
	}

	md := newMetadata(r, start)
	builtAt := resp.Metadata.IndexBuiltAt
	md.IndexBuiltAt = &builtAt

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     resp,
		Metadata: md,
	})
}

// GetSimilar handles GET /api/v1/recommendations/similar?title=&k=
// Returns the raw ranking without poster lookups.
func (h *Handler) GetSimilar(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req, ok := parseRecommendationRequest(w, r)
	if !ok {
		return
	}

	ranked, err := h.engine.Similar(req.Title, req.K)
	if err != nil {
		respondEngineError(w, err, req.Title)
		return
	}

	items := make([]models.SimilarMovie, len(ranked))
	for i, m := range ranked {
		items[i] = models.SimilarMovie{ID: m.ID, Title: m.Title, Score: m.Score}
	}

	respondSuccess(w, r, http.StatusOK, models.SimilarList{
		Title: req.Title,
		K:     h.engine.EffectiveK(req.K),
		Items: items,
	}, start)
}

// GetStatus handles GET /api/v1/recommendations/status
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	respondSuccess(w, r, http.StatusOK, h.engine.Status(), time.Time{})
}

// TriggerRebuild handles POST /api/v1/recommendations/rebuild
// Starts a rebuild that ignores stored artifacts and returns 202, or 409
// when a build is already running.
func (h *Handler) TriggerRebuild(w http.ResponseWriter, r *http.Request) {
	state := h.engine.Status().State
	if state == recommend.StateBuilding || state == recommend.StateLoading {
		respondEngineError(w, recommend.ErrBuildInProgress, "")
		return
	}
	if !h.rebuilding.CompareAndSwap(false, true) {
		respondEngineError(w, recommend.ErrBuildInProgress, "")
		return
	}

	requestID := logging.RequestIDFromContext(r.Context())
	h.rebuilds.Add(1)
	go func() {
		defer h.rebuilds.Done()
		defer h.rebuilding.Store(false)

		ctx := logging.ContextWithLogger(h.baseCtx, h.logger)
		ctx = logging.ContextWithRequestID(ctx, requestID)
		ctx, cancel := context.WithTimeout(ctx, h.config.RebuildTimeout)
		defer cancel()

		logger := logging.Ctx(ctx)
		start := time.Now()
		switch err := h.engine.Rebuild(ctx); {
		case err == nil:
			logger.Info().Dur("duration", time.Since(start)).Msg("Index rebuild completed")
		case errors.Is(err, recommend.ErrBuildInProgress):
			logger.Warn().Msg("Index rebuild skipped, another build is running")
		default:
			logger.Error().Err(err).Msg("Index rebuild failed")
		}
	}()

	w.Header().Set("Cache-Control", "no-store")
	respondSuccess(w, r, http.StatusAccepted, models.RebuildAccepted{
		Message: "Index rebuild started",
		State:   string(recommend.StateBuilding),
	}, time.Time{})
}
