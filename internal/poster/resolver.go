// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package poster

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/plotmatch/internal/config"
	"github.com/tomtom215/plotmatch/internal/recommend"
)

// Fetcher performs uncached lookups. *Client implements it.
type Fetcher interface {
	Enabled() bool
	PosterURL(ctx context.Context, movieID int64) (string, error)
}

// CachedResolver resolves posters through the memory cache, then the
// persistent cache, then the fetcher. Found posters are cached for TTL and
// missing ones for NegativeTTL. Transient errors are not cached.
type CachedResolver struct {
	fetcher    Fetcher
	memory     *MemoryCache
	persistent Cache // optional

	ttl         time.Duration
	negativeTTL time.Duration

	group        singleflight.Group
	fetchTimeout time.Duration
	logger       zerolog.Logger
}

// sharedFetchTimeout bounds a fetch shared by concurrent callers. The fetch
// outlives any single caller's context.
const sharedFetchTimeout = 15 * time.Second

// NewCachedResolver creates a resolver. persistent may be nil.
func NewCachedResolver(fetcher Fetcher, cfg *config.PosterCacheConfig, persistent Cache, logger zerolog.Logger) *CachedResolver {
	return &CachedResolver{
		fetcher:      fetcher,
		memory:       NewMemoryCache(cfg.MemoryEntries, cfg.TTL),
		persistent:   persistent,
		ttl:          cfg.TTL,
		negativeTTL:  cfg.NegativeTTL,
		fetchTimeout: sharedFetchTimeout,
		logger:       logger.With().Str("component", "poster").Logger(),
	}
}

// Enabled implements recommend.PosterResolver.
func (r *CachedResolver) Enabled() bool {
	return r.fetcher != nil && r.fetcher.Enabled()
}

// PosterURL implements recommend.PosterResolver.
func (r *CachedResolver) PosterURL(ctx context.Context, movieID int64) (string, error) {
	if !r.Enabled() {
		return "", ErrDisabled
	}

	if entry, ok, _ := r.memory.Get(ctx, movieID); ok {
		return entryResult(entry)
	}

	if r.persistent != nil {
		entry, ok, err := r.persistent.Get(ctx, movieID)
		if err != nil {
			r.logger.Warn().Err(err).Int64("movie_id", movieID).Msg("Persistent poster cache read failed")
		} else if ok {
			_ = r.memory.Set(ctx, movieID, entry, r.ttlFor(entry))
			return entryResult(entry)
		}
	}

	// Concurrent requests for the same movie share one fetch. A caller that
	// gives up returns early without cancelling the others.
	ch := r.group.DoChan(cacheKey(movieID), func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.fetchTimeout)
		defer cancel()
		return r.fetch(fetchCtx, movieID)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return entryResult(res.Val.(Entry))
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (r *CachedResolver) fetch(ctx context.Context, movieID int64) (Entry, error) {
	url, err := r.fetcher.PosterURL(ctx, movieID)
	if err != nil && !errors.Is(err, ErrNoPoster) {
		return Entry{}, err
	}

	entry := Entry{URL: url}
	ttl := r.ttlFor(entry)
	_ = r.memory.Set(ctx, movieID, entry, ttl)
	if r.persistent != nil {
		if err := r.persistent.Set(ctx, movieID, entry, ttl); err != nil {
			r.logger.Warn().Err(err).Int64("movie_id", movieID).Msg("Persistent poster cache write failed")
		}
	}
	return entry, nil
}

func (r *CachedResolver) ttlFor(entry Entry) time.Duration {
	if entry.NoPoster() {
		return r.negativeTTL
	}
	return r.ttl
}

func entryResult(entry Entry) (string, error) {
	if entry.NoPoster() {
		return "", ErrNoPoster
	}
	return entry.URL, nil
}

// maintenanceInterval is how often expired cache entries are collected.
const maintenanceInterval = 10 * time.Minute

// Serve collects expired memory entries and runs Badger value log GC until
// ctx is cancelled. It satisfies suture.Service.
func (r *CachedResolver) Serve(ctx context.Context) error {
	ticker := time.NewTicker(maintenanceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.maintain()
		}
	}
}

func (r *CachedResolver) maintain() {
	removed := r.memory.CleanupExpired()

	if gc, ok := r.persistent.(interface{ RunGC() error }); ok {
		if err := gc.RunGC(); err != nil {
			r.logger.Warn().Err(err).Msg("Poster cache GC failed")
		}
	}

	stats := r.memory.Stats()
	r.logger.Debug().
		Int("expired", removed).
		Int("size", stats.Size).
		Float64("hit_rate", stats.HitRate()).
		Msg("Poster cache maintenance")
}

// String names the service in supervisor logs.
func (r *CachedResolver) String() string {
	return "poster-cache-maintenance"
}

var _ recommend.PosterResolver = (*CachedResolver)(nil)
