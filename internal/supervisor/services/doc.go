// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

/*
Package services provides suture.Service wrappers for Plotmatch components.

Each wrapper implements the suture.Service interface:

	type Service interface {
	    Serve(ctx context.Context) error
	}

# Available Services

Index (IndexService):
  - Builds or loads the similarity index on start
  - Returns the build error so the supervisor retries with backoff
  - Optionally re-runs Build on RefreshInterval

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - Drains in-flight requests for the configured timeout

WebSocket Hub (WebSocketHubService):
  - Runs the build status hub loop
  - Closes connected clients on shutdown

# Usage

	tree.AddDataService(services.NewIndexService(engine, services.IndexServiceConfig{
	    RefreshInterval: cfg.Recommend.RefreshInterval,
	}, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logger))
	tree.AddAPIService(services.NewWebSocketHubService(hub))
*/
package services
