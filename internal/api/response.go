// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/plotmatch/internal/logging"
	"github.com/tomtom215/plotmatch/internal/models"
	"github.com/tomtom215/plotmatch/internal/recommend"
	"github.com/tomtom215/plotmatch/internal/validation"
)

// Error codes.
const (
	codeValidation      = "VALIDATION_ERROR"
	codeTitleNotFound   = "TITLE_NOT_FOUND"
	codeIndexNotReady   = "INDEX_NOT_READY"
	codeBuildInProgress = "BUILD_IN_PROGRESS"
	codeTimeout         = "TIMEOUT"
	codeInternal        = "INTERNAL_ERROR"
	codeNotFound        = "NOT_FOUND"
	codeMethod          = "METHOD_NOT_ALLOWED"
	codeRateLimited     = "RATE_LIMIT_EXCEEDED"
	codeUnavailable     = "SERVICE_UNAVAILABLE"
)

// retryAfterSeconds is sent with 503 while the index builds.
const retryAfterSeconds = "5"

// sanitizeLogValue removes control characters from strings to prevent log injection attacks.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&result, "\\x%02x", r)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends a JSON response with proper headers. Handlers that set
// Cache-Control beforehand keep their value.
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	if w.Header().Get("Cache-Control") == "" {
		if status >= http.StatusBadRequest {
			w.Header().Set("Cache-Control", "no-store")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=60")
		}
	}

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("ETag", generateETag(data))

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// generateETag creates a simple ETag from data using FNV-1a hash
func generateETag(data []byte) string {
	hash := uint32(2166136261)
	for _, b := range data {
		hash ^= uint32(b)
		hash *= 16777619
	}
	return `"` + strconv.FormatUint(uint64(hash), 16) + `"`
}

// respondSuccess wraps data in a success envelope.
func respondSuccess(w http.ResponseWriter, r *http.Request, status int, data interface{}, start time.Time) {
	respondJSON(w, status, &models.APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: newMetadata(r, start),
	})
}

func newMetadata(r *http.Request, start time.Time) models.Metadata {
	md := models.Metadata{Timestamp: time.Now().UTC()}
	if r != nil {
		md.RequestID = logging.RequestIDFromContext(r.Context())
	}
	if !start.IsZero() {
		md.QueryTimeMS = time.Since(start).Milliseconds()
	}
	return md
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	respondErrorDetails(w, status, &models.APIError{Code: code, Message: message}, err)
}

func respondErrorDetails(w http.ResponseWriter, status int, apiErr *models.APIError, err error) {
	if err != nil {
		// Sanitize error output to prevent log injection attacks
		logging.Error().Str("code", sanitizeLogValue(apiErr.Code)).Str("error", sanitizeLogValue(err.Error())).Msg("API Error")
	}

	respondJSON(w, status, &models.APIResponse{
		Status: "error",
		Data:   nil,
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
		Error: apiErr,
	})
}

// respondEngineError maps engine errors to status codes.
func respondEngineError(w http.ResponseWriter, err error, title string) {
	switch {
	case errors.Is(err, recommend.ErrNotFound):
		respondErrorDetails(w, http.StatusNotFound, &models.APIError{
			Code:    codeTitleNotFound,
			Message: "No movie has exactly this title",
			Details: map[string]interface{}{"title": title},
		}, nil)
	case errors.Is(err, recommend.ErrNotReady):
		w.Header().Set("Retry-After", retryAfterSeconds)
		respondError(w, http.StatusServiceUnavailable, codeIndexNotReady, "The recommendation index is still being built", nil)
	case errors.Is(err, recommend.ErrBuildInProgress):
		respondError(w, http.StatusConflict, codeBuildInProgress, "An index build is already in progress", nil)
	case errors.Is(err, recommend.ErrIndexOutOfRange):
		respondError(w, http.StatusInternalServerError, codeInternal, "Index is inconsistent", err)
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, codeTimeout, "The request timed out", err)
	default:
		respondError(w, http.StatusInternalServerError, codeInternal, "Failed to compute recommendations", err)
	}
}

// validateRequest validates a struct using go-playground/validator.
// Returns nil if validation passes, or a models.APIError if validation fails.
func validateRequest(v interface{}) *models.APIError {
	validationErr := validation.ValidateStruct(v)
	if validationErr == nil {
		return nil
	}

	apiErr := validationErr.ToAPIError()
	return &models.APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}
}

// getIntParam extracts an integer query parameter. A missing parameter
// yields defaultValue; a malformed one is a validation error.
func getIntParam(r *http.Request, key string, defaultValue int) (int, *models.APIError) {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, &models.APIError{
			Code:    codeValidation,
			Message: key + " must be an integer",
			Details: map[string]interface{}{"field": key, "value": value},
		}
	}
	return intValue, nil
}
