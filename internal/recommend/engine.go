// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/plotmatch/internal/metrics"
	"github.com/tomtom215/plotmatch/internal/recommend/similarity"
)

// Engine owns the published Index and its lifecycle. It is safe for
// concurrent use: readers load the current Index without locking, and
// builds are serialized.
type Engine struct {
	config *Config
	logger zerolog.Logger

	source  Source
	store   ArtifactStore
	posters PosterResolver

	index atomic.Pointer[Index]

	// held for the duration of a build
	buildMu sync.Mutex

	statusMu sync.RWMutex
	status   BuildStatus

	rowsDone  atomic.Int64
	rowsTotal atomic.Int64

	observer     StatusObserver
	lastProgress atomic.Int64 // percent last reported to observer
}

// StatusObserver receives a status snapshot on every state change and at
// each whole percent of similarity rows completed. It must not block.
type StatusObserver func(BuildStatus)

// NewEngine creates an engine. store may be nil, in which case every build
// starts cold and nothing is persisted.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, source Source, store ArtifactStore, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if source == nil {
		return nil, errors.New("source is required")
	}

	return &Engine{
		config: cfg,
		logger: logger.With().Str("component", "recommend").Logger(),
		source: source,
		store:  store,
		status: BuildStatus{State: StateIdle},
	}, nil
}

// SetPosterResolver sets the resolver used to filter recommendations.
// Without one, Recommend returns the raw ranking.
func (e *Engine) SetPosterResolver(p PosterResolver) {
	e.posters = p
}

// SetStatusObserver registers fn to receive build status changes. Call it
// before the first build.
func (e *Engine) SetStatusObserver(fn StatusObserver) {
	e.observer = fn
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// Index returns the published index.
func (e *Engine) Index() (*Index, error) {
	idx := e.index.Load()
	if idx == nil {
		return nil, ErrNotReady
	}
	return idx, nil
}

// Ready reports whether an index is published.
func (e *Engine) Ready() bool {
	return e.index.Load() != nil
}

// Status returns a snapshot of the build status.
func (e *Engine) Status() BuildStatus {
	e.statusMu.RLock()
	s := e.status
	e.statusMu.RUnlock()

	if s.State == StateBuilding {
		if total := e.rowsTotal.Load(); total > 0 {
			s.Progress = float64(e.rowsDone.Load()) / float64(total)
		}
	}
	return s
}

// Build publishes an index, reusing persisted artifacts when they match the
// current corpus and settings and rebuilding them otherwise. It returns
// ErrBuildInProgress if another build is running.
func (e *Engine) Build(ctx context.Context) error {
	return e.build(ctx, e.config.Build.ForceRebuild)
}

// Rebuild is Build ignoring persisted artifacts.
func (e *Engine) Rebuild(ctx context.Context) error {
	return e.build(ctx, true)
}

func (e *Engine) build(ctx context.Context, force bool) (err error) {
	if !e.buildMu.TryLock() {
		return ErrBuildInProgress
	}
	defer e.buildMu.Unlock()

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, e.config.Build.Timeout)
	defer cancel()

	e.updateStatus(func(s *BuildStatus) {
		s.State = StateLoading
		s.LastError = ""
		s.Progress = 0
	})
	defer func() {
		if err != nil {
			metrics.RecordIndexBuild("", 0, 0, 0, err)
			e.logger.Error().Err(err).Msg("index build failed")
			e.updateStatus(func(s *BuildStatus) {
				s.State = StateFailed
				s.LastError = err.Error()
				if e.index.Load() != nil {
					// the previous index keeps serving
					s.State = StateReady
				}
			})
		}
	}()

	records, err := e.source.LoadMovies(ctx)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}
	corpus := NewCorpus(records)
	if corpus.Len() == 0 {
		return ErrEmptyCorpus
	}
	e.logger.Info().
		Int("records", len(records)).
		Int("movies", corpus.Len()).
		Int("dropped_blank_overview", len(records)-corpus.Len()).
		Msg("loaded corpus")
	if dups := corpus.Duplicates(); len(dups) > 0 {
		e.logger.Warn().
			Int("count", len(dups)).
			Strs("titles", dups[:min(len(dups), 10)]).
			Msg("duplicate titles; only the first occurrence is resolvable")
	}

	vectorizer := e.config.NewVectorizer()
	fingerprint := Fingerprint(corpus, vectorizer.Settings())

	idx, reason := e.tryArtifacts(ctx, fingerprint, force)
	loadedFrom := "artifacts"
	if idx == nil {
		loadedFrom = "source"
		metrics.RecordColdStart(reason)
		e.logger.Warn().
			Str("reason", reason).
			Int("movies", corpus.Len()).
			Msg("cold start: rebuilding similarity index from corpus")
		e.updateStatus(func(s *BuildStatus) {
			s.State = StateBuilding
			s.ColdStart = true
			s.ColdStartReason = reason
		})

		idx, err = e.rebuild(ctx, corpus)
		if err != nil {
			return err
		}
		if e.store != nil {
			if err := saveArtifacts(ctx, e.store, idx, time.Since(start), e.config.Artifacts.RetainVersions); err != nil {
				// the index is still usable; the next start will rebuild
				e.logger.Error().Err(err).Msg("failed to persist artifacts")
			}
		}
	} else {
		e.updateStatus(func(s *BuildStatus) {
			s.ColdStart = false
			s.ColdStartReason = ""
		})
	}

	e.index.Store(idx)
	duration := time.Since(start)
	source := "artifacts"
	if loadedFrom == "source" {
		source = "rebuild"
	}
	metrics.RecordIndexBuild(source, duration, idx.Corpus().Len(), idx.Vocabulary().Len(), nil)

	e.updateStatus(func(s *BuildStatus) {
		s.State = StateReady
		s.Progress = 1
		s.Rows = idx.Corpus().Len()
		s.VocabularySize = idx.Vocabulary().Len()
		s.BuiltAt = idx.BuiltAt()
		s.LoadedFrom = loadedFrom
		s.Duration = duration
	})

	e.logger.Info().
		Str("loaded_from", loadedFrom).
		Int("rows", idx.Corpus().Len()).
		Int("vocabulary", idx.Vocabulary().Len()).
		Dur("duration", duration).
		Msg("index ready")
	return nil
}

// tryArtifacts returns the persisted index, or nil and the cold start reason.
func (e *Engine) tryArtifacts(ctx context.Context, fingerprint string, force bool) (*Index, string) {
	if force {
		return nil, ReasonForced
	}
	if e.store == nil {
		return nil, ReasonMissing
	}

	idx, err := loadArtifacts(ctx, e.store, fingerprint)
	if err != nil {
		var ae *artifactError
		if !errors.As(err, &ae) {
			return nil, ReasonUnavailable
		}
		e.logger.Info().Err(err).Str("reason", ae.reason).Msg("persisted artifacts not usable")
		return nil, ae.reason
	}
	return idx, ""
}

func (e *Engine) rebuild(ctx context.Context, corpus *Corpus) (*Index, error) {
	e.rowsDone.Store(0)
	e.rowsTotal.Store(int64(corpus.Len()))
	e.lastProgress.Store(0)

	idx, err := BuildIndex(ctx, corpus, e.config.NewVectorizer(),
		similarity.WithWorkers(e.config.Build.Workers),
		similarity.WithProgress(func(done, total int) {
			e.rowsDone.Store(int64(done))
			e.reportProgress(done, total)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}
	return idx, nil
}

func (e *Engine) updateStatus(fn func(*BuildStatus)) {
	e.statusMu.Lock()
	fn(&e.status)
	e.statusMu.Unlock()

	if e.observer != nil {
		e.observer(e.Status())
	}
}

// reportProgress notifies the observer once per whole percent. Workers
// race to report, so only the one that advances lastProgress does.
func (e *Engine) reportProgress(done, total int) {
	if e.observer == nil || total <= 0 {
		return
	}
	pct := int64(done * 100 / total)
	for {
		last := e.lastProgress.Load()
		if pct <= last {
			return
		}
		if e.lastProgress.CompareAndSwap(last, pct) {
			e.observer(e.Status())
			return
		}
	}
}

// EffectiveK applies the default and the cap to a requested K.
func (e *Engine) EffectiveK(k int) int {
	if k <= 0 {
		return e.config.Limits.DefaultK
	}
	return min(k, e.config.Limits.MaxK)
}

// Similar returns the raw ranking for title without poster filtering.
func (e *Engine) Similar(title string, k int) ([]ScoredMovie, error) {
	start := time.Now()
	idx, err := e.Index()
	if err != nil {
		metrics.RecordRecommendation("similar", resultLabel(err), time.Since(start))
		return nil, err
	}
	items, err := idx.Similar(title, e.EffectiveK(k))
	metrics.RecordRecommendation("similar", resultLabel(err), time.Since(start))
	return items, err
}

// Recommend returns up to K displayable movies similar to req.Title, in
// ranking order. When a poster resolver is enabled, K times the over-fetch
// factor candidates are ranked and those without a poster are dropped;
// lookup failures only remove candidates, they never reorder them.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) (resp *Response, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordRecommendation("recommend", resultLabel(err), time.Since(start))
	}()

	if req.RequestID == "" {
		req.RequestID = uuid.New().String()
	}
	k := e.EffectiveK(req.K)
	logger := e.logger.With().Str("request_id", req.RequestID).Str("title", req.Title).Logger()

	idx, err := e.Index()
	if err != nil {
		return nil, err
	}
	row, err := idx.Corpus().Resolve(req.Title)
	if err != nil {
		return nil, err
	}
	query := idx.Corpus().movies[row]

	postersEnabled := e.posters != nil && e.posters.Enabled()
	candidates := k
	if postersEnabled {
		candidates = min(k*e.config.Limits.OverFetchFactor, e.config.Limits.MaxCandidates)
	}
	ranked, err := idx.Neighbors(row, candidates)
	if err != nil {
		return nil, err
	}

	var items []Recommendation
	dropped := 0
	if postersEnabled {
		items, dropped = e.filterByPoster(ctx, ranked, k)
		metrics.RecordCandidatesDropped(dropped)
	} else {
		items = make([]Recommendation, len(ranked))
		for i, m := range ranked {
			items[i] = Recommendation{ScoredMovie: m}
		}
	}

	resp = &Response{
		Query: query,
		Items: items,
		Metadata: ResponseMetadata{
			RequestID:      req.RequestID,
			K:              k,
			Candidates:     len(ranked),
			Dropped:        dropped,
			PostersEnabled: postersEnabled,
			LatencyMS:      time.Since(start).Milliseconds(),
			IndexBuiltAt:   idx.BuiltAt(),
			Timestamp:      time.Now().UTC(),
		},
	}

	logger.Debug().
		Int("k", k).
		Int("candidates", len(ranked)).
		Int("returned", len(items)).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("recommendation complete")
	return resp, nil
}

// filterByPoster looks up posters for all candidates with bounded
// concurrency and keeps the first k that have one, in ranking order. It also
// returns how many candidates were skipped before the cut.
func (e *Engine) filterByPoster(ctx context.Context, ranked []ScoredMovie, k int) ([]Recommendation, int) {
	ctx, cancel := context.WithTimeout(ctx, e.config.Limits.PosterTimeout)
	defer cancel()

	urls := make([]string, len(ranked))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Limits.PosterConcurrency)
	for i, m := range ranked {
		g.Go(func() error {
			url, err := e.posters.PosterURL(gctx, m.ID)
			if err != nil {
				e.logger.Debug().Err(err).Int64("movie_id", m.ID).Msg("dropping candidate without poster")
				return nil
			}
			urls[i] = url
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // lookups never return errors; failures drop candidates

	out := make([]Recommendation, 0, k)
	dropped := 0
	for i, m := range ranked {
		if urls[i] == "" {
			dropped++
			continue
		}
		out = append(out, Recommendation{ScoredMovie: m, PosterURL: urls[i]})
		if len(out) == k {
			break
		}
	}
	return out, dropped
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrNotReady):
		return "not_ready"
	default:
		return "error"
	}
}
