// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestPrometheusMetrics_PassesThrough(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
	}{
		{name: "ok", status: http.StatusOK},
		{name: "not found", status: http.StatusNotFound},
		{name: "unavailable", status: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := PrometheusMetrics(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("body"))
			})
			rec := httptest.NewRecorder()
			handler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/recommendations", nil))

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if rec.Body.String() != "body" {
				t.Errorf("body = %q", rec.Body.String())
			}
		})
	}
}

func TestRouteLabel(t *testing.T) {
	t.Parallel()

	var label string
	r := chi.NewRouter()
	r.Get("/api/v1/movies/{id}", func(_ http.ResponseWriter, req *http.Request) {
		label = routeLabel(req)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/movies/19995", nil))

	if label != "/api/v1/movies/{id}" {
		t.Errorf("routeLabel() = %q, want route pattern", label)
	}

	raw := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	if got := routeLabel(raw); got != "/metrics" {
		t.Errorf("routeLabel() without chi = %q, want /metrics", got)
	}
}

func TestMetricsResponseWriter(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	wrapper := &metricsResponseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	wrapper.WriteHeader(http.StatusCreated)
	if wrapper.statusCode != http.StatusCreated || rec.Code != http.StatusCreated {
		t.Errorf("status = %d/%d, want 201", wrapper.statusCode, rec.Code)
	}

	if _, err := wrapper.Write([]byte("test")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if rec.Body.String() != "test" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestMetricsResponseWriter_Hijack(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(PrometheusMetrics(func(w http.ResponseWriter, _ *http.Request) {
		hj, ok := w.(http.Hijacker)
		if !ok {
			t.Error("wrapped writer is not a Hijacker")
			return
		}
		conn, buf, err := hj.Hijack()
		if err != nil {
			t.Errorf("Hijack() error = %v", err)
			return
		}
		defer conn.Close()
		_, _ = buf.WriteString("HTTP/1.1 200 OK\r\nContent-Length: 2\r\nConnection: close\r\n\r\nok")
		_ = buf.Flush()
	}))
	defer server.Close()

	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "ok" {
		t.Errorf("body = %q, want ok", body)
	}
}

func BenchmarkPrometheusMetrics(b *testing.B) {
	handler := PrometheusMetrics(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/recommendations", nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler(httptest.NewRecorder(), req)
	}
}
