// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

/*
Package models defines the HTTP API payloads.

Every endpoint answers with an APIResponse envelope:

	{"status": "success", "data": ..., "metadata": {...}}
	{"status": "error", "error": {"code": "...", "message": "..."}, "metadata": {...}}

Domain types such as recommend.Response and recommend.BuildStatus are
embedded in Data as they are; this package only adds the wrappers that exist
for the API alone (health checks, title listings, rebuild receipts).
*/
package models
