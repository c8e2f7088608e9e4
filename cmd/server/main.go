// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tomtom215/plotmatch/internal/api"
	"github.com/tomtom215/plotmatch/internal/bootstrap"
	"github.com/tomtom215/plotmatch/internal/config"
	"github.com/tomtom215/plotmatch/internal/logging"
	"github.com/tomtom215/plotmatch/internal/metrics"
	"github.com/tomtom215/plotmatch/internal/supervisor"
	"github.com/tomtom215/plotmatch/internal/supervisor/services"
	"github.com/tomtom215/plotmatch/internal/websocket"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// envFile is loaded before configuration when present.
const envFile = ".env"

func main() {
	// Variables already set in the environment take precedence.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.Warn().Err(err).Str("file", envFile).Msg("Failed to load env file")
	}

	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Str("dataset", cfg.Dataset.Path).
		Str("format", cfg.Dataset.Format).
		Str("artifacts_backend", cfg.Artifacts.Backend).
		Bool("posters", cfg.TMDB.Enabled()).
		Msg("Starting Plotmatch with supervisor tree")

	metrics.SetAppInfo(version)

	if cfg.ShouldWarnAboutCORS() {
		logging.Warn().Msg("CORS allows any origin in production")
	}

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Server exited with error")
	}
	logging.Info().Msg("Shutdown complete")
}

func run(cfg *config.Config) error {
	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := logging.Logger()

	components, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize engine: %w", err)
	}
	defer func() {
		if err := components.Close(); err != nil {
			logging.Err(err).Msg("Error closing resources")
		}
	}()

	// Bridges zerolog to slog for sutureslog
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout + 5*time.Second,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	serviceLogger := logging.WithComponent("supervisor")

	// Data layer
	tree.AddDataService(services.NewIndexService(components.Engine, services.IndexServiceConfig{
		RefreshInterval: cfg.Recommend.RefreshInterval,
	}, serviceLogger))

	var posters api.PosterStatus
	if components.Posters != nil {
		posters = components.Posters
		tree.AddDataService(components.Posters)
	}

	// API layer
	hub := websocket.NewHub(logger)
	components.Engine.SetStatusObserver(hub.BroadcastStatus)
	tree.AddAPIService(services.NewWebSocketHubService(hub))

	handler := api.NewHandler(ctx, components.Engine, posters, api.HandlerConfig{
		Version:        version,
		RebuildTimeout: cfg.Recommend.BuildTimeout,
		AllowedOrigins: cfg.Security.CORSOrigins,
	}, logger)
	handler.SetStatusHub(hub)
	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(&cfg.Security)))

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, serviceLogger))

	logging.Info().Str("addr", server.Addr).Msg("HTTP server added to supervisor tree")

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	var serveErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
		serveErr = <-errCh
	case serveErr = <-errCh:
		cancel()
	}
	if errors.Is(serveErr, context.Canceled) {
		serveErr = nil
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Unstopped service")
		}
	}

	// Rebuilds started through the API hold the artifact store.
	handler.WaitRebuilds()

	return serveErr
}
