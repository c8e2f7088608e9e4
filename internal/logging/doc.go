// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

// Package logging provides the zerolog-based structured logging used across
// Plotmatch.
//
// A global logger is configured once at startup:
//
//	logging.Init(logging.Config{
//	    Level:  cfg.Logging.Level,  // trace, debug, info, warn, error
//	    Format: cfg.Logging.Format, // json or console
//	    Caller: cfg.Logging.Caller,
//	})
//
// Components take a zerolog.Logger by value and derive a child with a
// component field, so tests can pass zerolog.Nop():
//
//	logger = logger.With().Str("component", "engine").Logger()
//
// # Request Context
//
// The HTTP middleware stores the request ID and a short correlation ID in
// the request context. Ctx returns a logger with both attached:
//
//	logging.Ctx(r.Context()).Warn().Str("title", title).Msg("Title not found")
//
// Background work started from a request (an index rebuild) copies the
// request ID into its own context so its entries stay traceable.
//
// # Supervisor Logging
//
// SlogHandler adapts zerolog to log/slog for sutureslog:
//
//	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), cfg)
//
// # Configuration
//
//	LOG_LEVEL   trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  json, console (default: json)
//	LOG_CALLER  include caller file:line (default: false)
package logging
