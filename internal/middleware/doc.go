// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

/*
Package middleware provides HTTP middleware for the Plotmatch API.

Components:

  - RequestID: UUID request IDs propagated to the logging context
  - PrometheusMetrics: request counts, latency and in-flight gauge
  - Compression: gzip for clients that accept it

All middleware uses the http.HandlerFunc signature. The api package adapts
them to chi with its chiMiddleware helper:

	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chiMiddleware(middleware.PrometheusMetrics))

Metrics are labelled with the chi route pattern when one is available, so
titles in query strings or path parameters never become label values.
*/
package middleware
