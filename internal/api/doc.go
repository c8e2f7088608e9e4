// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

/*
Package api serves the Plotmatch HTTP API on a chi router.

Endpoints:

	GET  /api/v1/health/live                 liveness check
	GET  /api/v1/health/ready                503 until an index is published
	GET  /api/v1/movies?q=&limit=            title picker
	GET  /api/v1/recommendations?title=&k=   poster-filtered recommendations
	GET  /api/v1/recommendations/similar     raw ranking, no poster lookups
	GET  /api/v1/recommendations/status      index build status
	GET  /api/v1/recommendations/status/ws   build status stream (websocket)
	POST /api/v1/recommendations/rebuild     rebuild ignoring stored artifacts
	GET  /metrics                            Prometheus

Every JSON response uses the models.APIResponse envelope. Engine errors map
to status codes as follows:

	recommend.ErrNotFound         404 TITLE_NOT_FOUND
	recommend.ErrNotReady         503 INDEX_NOT_READY (with Retry-After)
	recommend.ErrBuildInProgress  409 BUILD_IN_PROGRESS
	validation failures           400 VALIDATION_ERROR

Middleware order: request ID, real IP, panic recovery and CORS apply to
every route; route groups add rate limiting, security headers, Prometheus
instrumentation and gzip. Gzip is skipped for websocket upgrades.

The status stream accepts same-origin clients and the configured CORS
origins. It sends the current BuildStatus on connect, then every change
published by the engine through the websocket hub.
*/
package api
