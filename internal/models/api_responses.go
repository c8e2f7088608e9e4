// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package models

import (
	"time"
)

// APIResponse represents a standardized API response wrapper used by all HTTP endpoints.
// It provides consistent structure for both successful and error responses, with metadata
// for observability and caching information.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
//
// Fields:
//   - Status: Response status ("success" or "error")
//   - Data: Response payload (any JSON-serializable type)
//   - Metadata: Query execution metadata (timing, caching, timestamp)
//   - Error: Error details (populated only when Status is "error")
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"query": {...}, "items": [...]},
//	  "metadata": {
//	    "timestamp": "2025-11-28T12:00:00Z",
//	    "query_time_ms": 45,
//	    "cached": false
//	  }
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {
//	    "code": "TITLE_NOT_FOUND",
//	    "message": "No movie titled \"Alein\""
//	  },
//	  "metadata": {"timestamp": "2025-11-28T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability and performance tracking.
// All API responses include this metadata for monitoring query performance and
// cache effectiveness.
//
// Fields:
//   - Timestamp: Server time when response was generated (RFC3339 format)
//   - QueryTimeMS: Handler execution time in milliseconds
//   - RequestID: X-Request-ID of the request that produced the response
//   - IndexBuiltAt: Build time of the index that answered (omitted if none)
type Metadata struct {
	Timestamp    time.Time  `json:"timestamp"`
	QueryTimeMS  int64      `json:"query_time_ms,omitempty"`
	RequestID    string     `json:"request_id,omitempty"`
	IndexBuiltAt *time.Time `json:"index_built_at,omitempty"`
}

// APIError represents an error response with structured error details.
// Provides consistent error format across all API endpoints for better client handling.
//
// Fields:
//   - Code: Machine-readable error code (e.g., "VALIDATION_ERROR", "DATABASE_ERROR")
//   - Message: Human-readable error message
//   - Details: Additional context (field names, constraints, etc.)
//
// Common error codes:
//   - VALIDATION_ERROR: Invalid input parameters
//   - TITLE_NOT_FOUND: The title matches no movie exactly
//   - INDEX_NOT_READY: The index has not been published yet
//   - BUILD_IN_PROGRESS: A rebuild was requested while one runs
//   - RATE_LIMIT_EXCEEDED: Too many requests
//
// Example:
//
//	{
//	  "code": "VALIDATION_ERROR",
//	  "message": "k must be less than or equal to 50",
//	  "details": {"field": "k", "tag": "lte", "value": 500}
//	}
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
