// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package poster

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/plotmatch/internal/config"
)

func testTMDBConfig(baseURL string) *config.TMDBConfig {
	return &config.TMDBConfig{
		APIKey:                   "test-key",
		BaseURL:                  baseURL,
		ImageBaseURL:             "https://image.tmdb.org/t/p/w500/",
		Language:                 "en-US",
		Timeout:                  2 * time.Second,
		RateLimit:                1000,
		Burst:                    100,
		BreakerMaxRequests:       1,
		BreakerInterval:          time.Minute,
		BreakerTimeout:           time.Minute,
		BreakerFailureThreshold:  3,
		BreakerFailureRatio:      0.6,
		BreakerMinRequestsToTrip: 10,
	}
}

func newTMDBServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestClient_PosterURL(t *testing.T) {
	t.Parallel()

	server := newTMDBServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("language") != "en-US" {
			t.Errorf("language = %q", r.URL.Query().Get("language"))
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/3/movie/19995":
			_, _ = w.Write([]byte(`{"id":19995,"title":"Avatar","poster_path":"/kyeqWdyUXW608qlYkRqosgbbJyK.jpg"}`))
		case "/3/movie/1":
			_, _ = w.Write([]byte(`{"id":1,"title":"Obscure","poster_path":null}`))
		case "/3/movie/500":
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"status_message":"internal error"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"status_code":34,"status_message":"The resource you requested could not be found."}`))
		}
	})

	client := NewClient(testTMDBConfig(server.URL))

	tests := []struct {
		name    string
		id      int64
		want    string
		wantErr error
		status  int
	}{
		{name: "found", id: 19995, want: "https://image.tmdb.org/t/p/w500/kyeqWdyUXW608qlYkRqosgbbJyK.jpg"},
		{name: "null poster path", id: 1, wantErr: ErrNoPoster},
		{name: "unknown movie", id: 404, wantErr: ErrNoPoster},
		{name: "server error", id: 500, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := client.PosterURL(context.Background(), tt.id)
			switch {
			case tt.status != 0:
				var apiErr *APIError
				if !errors.As(err, &apiErr) || apiErr.StatusCode != tt.status {
					t.Fatalf("PosterURL() error = %v, want APIError %d", err, tt.status)
				}
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("PosterURL() error = %v, want %v", err, tt.wantErr)
				}
			default:
				if err != nil {
					t.Fatalf("PosterURL() error = %v", err)
				}
				if got != tt.want {
					t.Errorf("PosterURL() = %q, want %q", got, tt.want)
				}
			}
		})
	}
}

func TestClient_Disabled(t *testing.T) {
	t.Parallel()

	cfg := testTMDBConfig("http://127.0.0.1:1")
	cfg.APIKey = ""
	client := NewClient(cfg)

	if client.Enabled() {
		t.Error("Enabled() should be false without an API key")
	}
	if _, err := client.PosterURL(context.Background(), 1); !errors.Is(err, ErrDisabled) {
		t.Errorf("PosterURL() error = %v, want ErrDisabled", err)
	}
}

func TestClient_CircuitBreakerOpens(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := newTMDBServer(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	client := NewClient(testTMDBConfig(server.URL))

	for i := 0; i < 3; i++ {
		if _, err := client.PosterURL(context.Background(), 42); err == nil {
			t.Fatalf("request %d should fail", i)
		}
	}
	if client.BreakerState() != "open" {
		t.Fatalf("BreakerState() = %q, want open", client.BreakerState())
	}

	_, err := client.PosterURL(context.Background(), 42)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("PosterURL() error = %v, want ErrOpenState", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server called %d times, want 3", got)
	}
}

func TestClient_NoPosterDoesNotTrip(t *testing.T) {
	t.Parallel()

	server := newTMDBServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	client := NewClient(testTMDBConfig(server.URL))
	for i := 0; i < 5; i++ {
		if _, err := client.PosterURL(context.Background(), 7); !errors.Is(err, ErrNoPoster) {
			t.Fatalf("PosterURL() error = %v, want ErrNoPoster", err)
		}
	}
	if client.BreakerState() != "closed" {
		t.Errorf("BreakerState() = %q, want closed", client.BreakerState())
	}
}

func TestClient_RateLimiterHonorsContext(t *testing.T) {
	t.Parallel()

	server := newTMDBServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"poster_path":"/a.jpg"}`))
	})

	cfg := testTMDBConfig(server.URL)
	cfg.RateLimit = 0.001
	cfg.Burst = 1
	client := NewClient(cfg)

	if _, err := client.PosterURL(context.Background(), 1); err != nil {
		t.Fatalf("first request should use the burst token: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := client.PosterURL(ctx, 2); err == nil {
		t.Error("second request should fail waiting for a token")
	}
}

func TestJoinImageURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		base, path, want string
	}{
		{"https://image.tmdb.org/t/p/w500/", "/abc.jpg", "https://image.tmdb.org/t/p/w500/abc.jpg"},
		{"https://image.tmdb.org/t/p/w500", "abc.jpg", "https://image.tmdb.org/t/p/w500/abc.jpg"},
		{"https://cdn.example/w342/", "abc.jpg", "https://cdn.example/w342/abc.jpg"},
	}
	for _, tt := range tests {
		if got := joinImageURL(tt.base, tt.path); got != tt.want {
			t.Errorf("joinImageURL(%q, %q) = %q, want %q", tt.base, tt.path, got, tt.want)
		}
	}
}
