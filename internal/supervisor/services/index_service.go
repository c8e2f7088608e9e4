// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/plotmatch/internal/recommend"
)

// IndexBuilder is the part of the recommendation engine the service drives.
// *recommend.Engine satisfies it.
type IndexBuilder interface {
	Build(ctx context.Context) error
	Ready() bool
}

// IndexServiceConfig holds configuration for the index service.
type IndexServiceConfig struct {
	// RefreshInterval re-runs Build periodically. A build whose corpus and
	// settings are unchanged reuses the persisted artifacts, so this picks
	// up dataset edits cheaply. Zero disables refreshing.
	RefreshInterval time.Duration
}

// IndexService publishes the similarity index under supervision.
//
// The first build runs on start. If it fails, Serve returns the error and
// the supervisor restarts the service with backoff, so a missing dataset
// keeps being retried without taking the HTTP layer down.
type IndexService struct {
	engine IndexBuilder
	config IndexServiceConfig
	logger zerolog.Logger
	name   string
}

// NewIndexService creates a new index service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewIndexService(engine IndexBuilder, cfg IndexServiceConfig, logger zerolog.Logger) *IndexService {
	return &IndexService{
		engine: engine,
		config: cfg,
		logger: logger.With().Str("service", "index").Logger(),
		name:   "index-service",
	}
}

// Serve implements the suture.Service interface.
func (s *IndexService) Serve(ctx context.Context) error {
	s.logger.Info().
		Dur("refresh_interval", s.config.RefreshInterval).
		Msg("index service starting")

	if !s.engine.Ready() {
		if err := s.build(ctx); err != nil && !errors.Is(err, recommend.ErrBuildInProgress) {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("initial index build: %w", err)
		}
	}

	if s.config.RefreshInterval <= 0 {
		<-ctx.Done()
		s.logger.Info().Msg("index service shutting down")
		return ctx.Err()
	}

	ticker := time.NewTicker(s.config.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("index service shutting down")
			return ctx.Err()

		case <-ticker.C:
			s.logger.Debug().Msg("scheduled index refresh triggered")
			err := s.build(ctx)
			switch {
			case errors.Is(err, recommend.ErrBuildInProgress):
				s.logger.Debug().Msg("refresh skipped, build already running")
			case err != nil:
				// the previous index keeps serving
				s.logger.Warn().Err(err).Msg("scheduled index refresh failed")
			}
		}
	}
}

func (s *IndexService) build(ctx context.Context) error {
	start := time.Now()
	if err := s.engine.Build(ctx); err != nil {
		return err
	}
	s.logger.Info().
		Dur("duration", time.Since(start)).
		Msg("index published")
	return nil
}

// String returns the service name for logging.
func (s *IndexService) String() string {
	return s.name
}
