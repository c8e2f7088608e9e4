// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package api

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/plotmatch/internal/recommend"
	"github.com/tomtom215/plotmatch/internal/websocket"
)

// Engine is the part of *recommend.Engine the handlers use.
type Engine interface {
	Ready() bool
	Status() recommend.BuildStatus
	Index() (*recommend.Index, error)
	EffectiveK(k int) int
	Similar(title string, k int) ([]recommend.ScoredMovie, error)
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Response, error)
	Rebuild(ctx context.Context) error
}

// PosterStatus reports whether poster filtering is active.
type PosterStatus interface {
	Enabled() bool
}

// HandlerConfig holds handler settings.
type HandlerConfig struct {
	// Version is reported by the readiness check.
	Version string

	// RebuildTimeout bounds a rebuild started through the API.
	RebuildTimeout time.Duration

	// AllowedOrigins are accepted for the status stream in addition to
	// same-origin requests. "*" accepts any origin.
	AllowedOrigins []string
}

// Handler serves the API endpoints.
type Handler struct {
	engine  Engine
	posters PosterStatus    // optional
	hub     *websocket.Hub // optional
	config  HandlerConfig
	logger  zerolog.Logger

	startTime time.Time

	// Background rebuilds derive from baseCtx so shutdown cancels them.
	baseCtx    context.Context
	rebuilding atomic.Bool
	rebuilds   sync.WaitGroup
}

// NewHandler creates a handler. posters may be nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHandler(ctx context.Context, engine Engine, posters PosterStatus, cfg HandlerConfig, logger zerolog.Logger) *Handler {
	if cfg.RebuildTimeout <= 0 {
		cfg.RebuildTimeout = 30 * time.Minute
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	return &Handler{
		engine:    engine,
		posters:   posters,
		config:    cfg,
		logger:    logger.With().Str("component", "api").Logger(),
		startTime: time.Now(),
		baseCtx:   ctx,
	}
}

// SetStatusHub enables the build status stream. Call it before serving.
func (h *Handler) SetStatusHub(hub *websocket.Hub) {
	h.hub = hub
}

// WaitRebuilds blocks until background rebuilds started by the handler
// have returned.
func (h *Handler) WaitRebuilds() {
	h.rebuilds.Wait()
}

func (h *Handler) postersEnabled() bool {
	return h.posters != nil && h.posters.Enabled()
}
