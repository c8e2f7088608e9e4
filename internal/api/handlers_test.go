// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/plotmatch/internal/recommend"
)

// testSource implements recommend.Source. When gate is set, LoadMovies
// closes started and blocks until gate is closed.
type testSource struct {
	movies  []recommend.Movie
	started chan struct{}
	gate    chan struct{}
}

func (s *testSource) LoadMovies(ctx context.Context) ([]recommend.Movie, error) {
	if s.gate != nil {
		close(s.started)
		select {
		case <-s.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.movies, nil
}

// testPosters implements recommend.PosterResolver.
type testPosters struct {
	urls map[int64]string
}

func (p *testPosters) Enabled() bool { return true }

func (p *testPosters) PosterURL(_ context.Context, id int64) (string, error) {
	if url, ok := p.urls[id]; ok {
		return url, nil
	}
	return "", errors.New("no poster")
}

func testMovies() []recommend.Movie {
	return []recommend.Movie{
		{ID: 10, Title: "Alien", Overview: "space crew alien ship"},
		{ID: 11, Title: "Aliens", Overview: "space marines alien ship"},
		{ID: 12, Title: "Prometheus", Overview: "space crew ship engineers"},
		{ID: 13, Title: "Heat", Overview: "bank robbery detective"},
		{ID: 14, Title: "Ronin", Overview: "bank heist car chase detective"},
		{ID: 16, Title: "Up", Overview: "balloon house"},
	}
}

func newTestEngine(t *testing.T, source recommend.Source) *recommend.Engine {
	t.Helper()
	engine, err := recommend.NewEngine(recommend.DefaultConfig(), source, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return engine
}

// newReadyHandler returns a handler over a built engine.
func newReadyHandler(t *testing.T, posters PosterStatus) (*Handler, *recommend.Engine) {
	t.Helper()
	engine := newTestEngine(t, &testSource{movies: testMovies()})
	if p, ok := posters.(recommend.PosterResolver); ok {
		engine.SetPosterResolver(p)
	}
	if err := engine.Build(context.Background()); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return NewHandler(context.Background(), engine, posters, HandlerConfig{Version: "test"}, zerolog.Nop()), engine
}

// envelope mirrors models.APIResponse with raw data.
type envelope struct {
	Status   string          `json:"status"`
	Data     json.RawMessage `json:"data"`
	Metadata struct {
		RequestID    string     `json:"request_id"`
		IndexBuiltAt *time.Time `json:"index_built_at"`
	} `json:"metadata"`
	Error *struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return env
}

func serve(h http.HandlerFunc, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestHealthLive(t *testing.T) {
	t.Parallel()

	h := NewHandler(context.Background(), newTestEngine(t, &testSource{}), nil, HandlerConfig{}, zerolog.Nop())
	rec := serve(h.HealthLive, http.MethodGet, "/api/v1/health/live")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var data struct {
		Alive bool `json:"alive"`
	}
	if err := json.Unmarshal(decode(t, rec).Data, &data); err != nil || !data.Alive {
		t.Errorf("data = %+v, %v", data, err)
	}
	if rec.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("Cache-Control = %q", rec.Header().Get("Cache-Control"))
	}
}

func TestHealthReady(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, &testSource{movies: testMovies()})
	h := NewHandler(context.Background(), engine, nil, HandlerConfig{Version: "1.2.3"}, zerolog.Nop())

	rec := serve(h.HealthReady, http.MethodGet, "/api/v1/health/ready")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status before build = %d, want 503", rec.Code)
	}

	if err := engine.Build(context.Background()); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	rec = serve(h.HealthReady, http.MethodGet, "/api/v1/health/ready")
	if rec.Code != http.StatusOK {
		t.Fatalf("status after build = %d, want 200", rec.Code)
	}
	var data struct {
		Status     string `json:"status"`
		Ready      bool   `json:"ready"`
		IndexState string `json:"index_state"`
		Movies     int    `json:"movies"`
		Version    string `json:"version"`
	}
	if err := json.Unmarshal(decode(t, rec).Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if !data.Ready || data.Status != "ready" || data.IndexState != "ready" || data.Movies != 6 || data.Version != "1.2.3" {
		t.Errorf("data = %+v", data)
	}
}

func TestGetRecommendations(t *testing.T) {
	t.Parallel()

	h, _ := newReadyHandler(t, nil)

	tests := []struct {
		name      string
		query     string
		wantCode  int
		wantError string
		wantItems int
	}{
		{name: "default k", query: "?title=Alien", wantCode: http.StatusOK, wantItems: 5},
		{name: "explicit k", query: "?title=Alien&k=2", wantCode: http.StatusOK, wantItems: 2},
		{name: "k above cap is clamped", query: "?title=Heat&k=999", wantCode: http.StatusOK, wantItems: 5},
		{name: "missing title", query: "", wantCode: http.StatusBadRequest, wantError: codeValidation},
		{name: "blank title", query: "?title=%20%20", wantCode: http.StatusBadRequest, wantError: codeValidation},
		{name: "non integer k", query: "?title=Alien&k=two", wantCode: http.StatusBadRequest, wantError: codeValidation},
		{name: "negative k", query: "?title=Alien&k=-1", wantCode: http.StatusBadRequest, wantError: codeValidation},
		{name: "k beyond bound", query: "?title=Alien&k=1001", wantCode: http.StatusBadRequest, wantError: codeValidation},
		{name: "unknown title", query: "?title=Alein", wantCode: http.StatusNotFound, wantError: codeTitleNotFound},
		{name: "title match is exact", query: "?title=alien", wantCode: http.StatusNotFound, wantError: codeTitleNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := serve(h.GetRecommendations, http.MethodGet, "/api/v1/recommendations"+tt.query)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			env := decode(t, rec)
			if tt.wantError != "" {
				if env.Status != "error" || env.Error == nil || env.Error.Code != tt.wantError {
					t.Fatalf("error = %+v, want %s", env.Error, tt.wantError)
				}
				return
			}

			var resp recommend.Response
			if err := json.Unmarshal(env.Data, &resp); err != nil {
				t.Fatalf("decode data: %v", err)
			}
			if len(resp.Items) != tt.wantItems {
				t.Errorf("got %d items, want %d", len(resp.Items), tt.wantItems)
			}
			for _, item := range resp.Items {
				if item.Title == resp.Query.Title {
					t.Errorf("query movie %q returned as its own recommendation", item.Title)
				}
			}
			if env.Metadata.IndexBuiltAt == nil {
				t.Error("metadata should carry the index build time")
			}
		})
	}
}

func TestGetRecommendations_Ranking(t *testing.T) {
	t.Parallel()

	h, _ := newReadyHandler(t, nil)
	rec := serve(h.GetRecommendations, http.MethodGet, "/api/v1/recommendations?title=Heat&k=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp recommend.Response
	if err := json.Unmarshal(decode(t, rec).Data, &resp); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].Title != "Ronin" {
		t.Errorf("items = %+v, want Ronin first", resp.Items)
	}
	if resp.Metadata.PostersEnabled {
		t.Error("posters should be disabled without a resolver")
	}
}

func TestGetRecommendations_PosterFiltering(t *testing.T) {
	t.Parallel()

	posters := &testPosters{urls: map[int64]string{
		12: "https://image.tmdb.org/t/p/w500/prometheus.jpg",
		16: "https://image.tmdb.org/t/p/w500/up.jpg",
	}}
	h, _ := newReadyHandler(t, posters)

	rec := serve(h.GetRecommendations, http.MethodGet, "/api/v1/recommendations?title=Alien&k=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp recommend.Response
	if err := json.Unmarshal(decode(t, rec).Data, &resp); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].Title != "Prometheus" {
		t.Fatalf("items = %+v, want Prometheus", resp.Items)
	}
	if resp.Items[0].PosterURL != posters.urls[12] {
		t.Errorf("PosterURL = %q", resp.Items[0].PosterURL)
	}
	if !resp.Metadata.PostersEnabled || resp.Metadata.Dropped == 0 {
		t.Errorf("metadata = %+v, want posters enabled and Aliens dropped", resp.Metadata)
	}
}

func TestEndpoints_NotReady(t *testing.T) {
	t.Parallel()

	h := NewHandler(context.Background(), newTestEngine(t, &testSource{movies: testMovies()}), nil, HandlerConfig{}, zerolog.Nop())

	for name, fn := range map[string]http.HandlerFunc{
		"recommendations": h.GetRecommendations,
		"similar":         h.GetSimilar,
		"movies":          h.ListMovies,
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			rec := serve(fn, http.MethodGet, "/?title=Alien")
			if rec.Code != http.StatusServiceUnavailable {
				t.Fatalf("status = %d, want 503", rec.Code)
			}
			if env := decode(t, rec); env.Error == nil || env.Error.Code != codeIndexNotReady {
				t.Errorf("error = %+v", env.Error)
			}
			if rec.Header().Get("Retry-After") == "" {
				t.Error("Retry-After should be set")
			}
		})
	}
}

func TestGetSimilar(t *testing.T) {
	t.Parallel()

	// Posters are enabled but raw rankings never consult them.
	h, _ := newReadyHandler(t, &testPosters{urls: map[int64]string{}})

	rec := serve(h.GetSimilar, http.MethodGet, "/api/v1/recommendations/similar?title=Alien&k=3")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var data struct {
		K     int `json:"k"`
		Items []struct {
			Title string  `json:"title"`
			Score float64 `json:"score"`
		} `json:"items"`
	}
	if err := json.Unmarshal(decode(t, rec).Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.K != 3 || len(data.Items) != 3 {
		t.Fatalf("data = %+v", data)
	}
	for i := 1; i < len(data.Items); i++ {
		if data.Items[i].Score > data.Items[i-1].Score {
			t.Errorf("scores not descending: %+v", data.Items)
		}
	}
	if data.Items[0].Title != "Aliens" && data.Items[0].Title != "Prometheus" {
		t.Errorf("first neighbour = %q", data.Items[0].Title)
	}
}

func TestListMovies(t *testing.T) {
	t.Parallel()

	h, _ := newReadyHandler(t, nil)

	tests := []struct {
		name       string
		query      string
		wantCode   int
		wantTitles []string
	}{
		{name: "substring", query: "?q=ALI", wantCode: http.StatusOK, wantTitles: []string{"Alien", "Aliens"}},
		{name: "limit", query: "?q=ali&limit=1", wantCode: http.StatusOK, wantTitles: []string{"Alien"}},
		{name: "no match", query: "?q=zzz", wantCode: http.StatusOK, wantTitles: []string{}},
		{name: "all", query: "", wantCode: http.StatusOK, wantTitles: []string{"Alien", "Aliens", "Prometheus", "Heat", "Ronin", "Up"}},
		{name: "bad limit", query: "?limit=x", wantCode: http.StatusBadRequest},
		{name: "limit too large", query: "?limit=5000", wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := serve(h.ListMovies, http.MethodGet, "/api/v1/movies"+tt.query)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			var data struct {
				Total  int `json:"total"`
				Movies []struct {
					Title string `json:"title"`
				} `json:"movies"`
			}
			if err := json.Unmarshal(decode(t, rec).Data, &data); err != nil {
				t.Fatalf("decode data: %v", err)
			}
			if data.Total != 6 {
				t.Errorf("total = %d, want 6", data.Total)
			}
			if len(data.Movies) != len(tt.wantTitles) {
				t.Fatalf("movies = %+v, want %v", data.Movies, tt.wantTitles)
			}
			for i, m := range data.Movies {
				if m.Title != tt.wantTitles[i] {
					t.Errorf("movies[%d] = %q, want %q", i, m.Title, tt.wantTitles[i])
				}
			}
		})
	}
}

func TestGetStatus(t *testing.T) {
	t.Parallel()

	h, _ := newReadyHandler(t, nil)
	rec := serve(h.GetStatus, http.MethodGet, "/api/v1/recommendations/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var status recommend.BuildStatus
	if err := json.Unmarshal(decode(t, rec).Data, &status); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if status.State != recommend.StateReady || !status.ColdStart || status.ColdStartReason == "" || status.Rows != 6 {
		t.Errorf("status = %+v", status)
	}
}

func TestTriggerRebuild(t *testing.T) {
	t.Parallel()

	h, engine := newReadyHandler(t, nil)
	builtAt := engine.Status().BuiltAt

	rec := serve(h.TriggerRebuild, http.MethodPost, "/api/v1/recommendations/rebuild")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
	h.WaitRebuilds()

	status := engine.Status()
	if status.State != recommend.StateReady || status.ColdStartReason != "forced" {
		t.Errorf("status after rebuild = %+v", status)
	}
	if !status.BuiltAt.After(builtAt) && !status.BuiltAt.Equal(builtAt) {
		t.Errorf("BuiltAt went backwards: %v < %v", status.BuiltAt, builtAt)
	}
}

func TestTriggerRebuild_Conflict(t *testing.T) {
	t.Parallel()

	source := &testSource{
		movies:  testMovies(),
		started: make(chan struct{}),
		gate:    make(chan struct{}),
	}
	engine := newTestEngine(t, source)
	h := NewHandler(context.Background(), engine, nil, HandlerConfig{}, zerolog.Nop())

	buildErr := make(chan error, 1)
	go func() { buildErr <- engine.Build(context.Background()) }()
	<-source.started

	rec := serve(h.TriggerRebuild, http.MethodPost, "/api/v1/recommendations/rebuild")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if env := decode(t, rec); env.Error == nil || env.Error.Code != codeBuildInProgress {
		t.Errorf("error = %+v", env.Error)
	}

	close(source.gate)
	if err := <-buildErr; err != nil {
		t.Fatalf("Build() error = %v", err)
	}
}

func TestTriggerRebuild_CancelledOnShutdown(t *testing.T) {
	t.Parallel()

	source := &testSource{
		movies:  testMovies(),
		started: make(chan struct{}),
		gate:    make(chan struct{}),
	}
	engine := newTestEngine(t, source)
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHandler(ctx, engine, nil, HandlerConfig{}, zerolog.Nop())

	rec := serve(h.TriggerRebuild, http.MethodPost, "/api/v1/recommendations/rebuild")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
	<-source.started
	cancel()
	h.WaitRebuilds()

	if engine.Ready() {
		t.Error("cancelled rebuild should not publish an index")
	}
	if state := engine.Status().State; state != recommend.StateFailed {
		t.Errorf("state = %q, want failed", state)
	}
}
