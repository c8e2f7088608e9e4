// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package poster

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/plotmatch/internal/config"
	"github.com/tomtom215/plotmatch/internal/logging"
	"github.com/tomtom215/plotmatch/internal/metrics"
)

// breakerName labels the TMDB circuit breaker in logs and metrics.
const breakerName = "tmdb-api"

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 512

// movieDetails is the subset of GET /3/movie/{id} that is used.
type movieDetails struct {
	ID         int64  `json:"id"`
	PosterPath string `json:"poster_path"`
}

// Client fetches poster URLs from the TMDB API. Requests pass through a
// token bucket limiter and a circuit breaker.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	imageBaseURL string
	apiKey       string
	language     string

	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[string]
}

// NewClient creates a TMDB client.
func NewClient(cfg *config.TMDBConfig) *Client {
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		baseURL:      strings.TrimSuffix(cfg.BaseURL, "/"),
		imageBaseURL: cfg.ImageBaseURL,
		apiKey:       cfg.APIKey,
		language:     cfg.Language,
		limiter:      rate.NewLimiter(rate.Limit(cfg.RateLimit), burst),
		cb:           newBreaker(cfg),
	}
}

// newBreaker opens after BreakerFailureThreshold consecutive failures, or
// once BreakerMinRequestsToTrip requests were seen in the interval with a
// failure ratio of at least BreakerFailureRatio.
func newBreaker(cfg *config.TMDBConfig) *gobreaker.CircuitBreaker[string] {
	return gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if cfg.BreakerFailureThreshold > 0 && counts.ConsecutiveFailures >= cfg.BreakerFailureThreshold {
				logging.Warn().Uint32("consecutive_failures", counts.ConsecutiveFailures).Msg("[CIRCUIT BREAKER] Opening circuit")
				return true
			}
			if counts.Requests < cfg.BreakerMinRequestsToTrip || counts.Requests == 0 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= cfg.BreakerFailureRatio
			if shouldTrip {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("[CIRCUIT BREAKER] State transition")
			metrics.RecordCircuitBreakerTransition(name, from.String(), to.String())
		},

		// A movie without a poster is a valid answer, and a caller giving
		// up says nothing about the API's health.
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ErrNoPoster) ||
				errors.Is(err, context.Canceled)
		},
	})
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// BreakerState returns the circuit breaker state name.
func (c *Client) BreakerState() string {
	return c.cb.State().String()
}

// PosterURL returns the full poster URL of a movie. ErrNoPoster is returned
// when the movie is unknown or has no poster.
func (c *Client) PosterURL(ctx context.Context, movieID int64) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}

	if err := c.limiter.Wait(ctx); err != nil {
		metrics.RecordPosterLookup("rejected", 0)
		return "", fmt.Errorf("tmdb rate limiter: %w", err)
	}

	start := time.Now()
	posterURL, err := c.cb.Execute(func() (string, error) {
		return c.fetch(ctx, movieID)
	})
	duration := time.Since(start)

	metrics.RecordCircuitBreakerRequest(breakerName, err, gobreaker.ErrOpenState)
	switch {
	case err == nil:
		metrics.RecordPosterLookup("found", duration)
	case errors.Is(err, ErrNoPoster):
		metrics.RecordPosterLookup("no_poster", duration)
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordPosterLookup("rejected", 0)
		logging.Debug().Err(err).Int64("movie_id", movieID).Msg("[CIRCUIT BREAKER] Request rejected")
	default:
		metrics.RecordPosterLookup("error", duration)
	}
	return posterURL, err
}

func (c *Client) fetch(ctx context.Context, movieID int64) (string, error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	reqURL := fmt.Sprintf("%s/3/movie/%s?%s", c.baseURL, strconv.FormatInt(movieID, 10), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return "", ErrNoPoster
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var details movieDetails
	if err := json.NewDecoder(resp.Body).Decode(&details); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if details.PosterPath == "" {
		return "", ErrNoPoster
	}
	return joinImageURL(c.imageBaseURL, details.PosterPath), nil
}

// joinImageURL joins base and a poster path with exactly one slash.
func joinImageURL(base, path string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
}
