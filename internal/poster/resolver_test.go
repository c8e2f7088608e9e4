// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package poster

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/tomtom215/plotmatch/internal/config"
)

// fakeFetcher implements Fetcher for testing.
type fakeFetcher struct {
	enabled bool
	urls    map[int64]string
	errs    map[int64]error
	delay   time.Duration

	mu    sync.Mutex
	calls map[int64]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		enabled: true,
		urls:    map[int64]string{},
		errs:    map[int64]error{},
		calls:   map[int64]int{},
	}
}

func (f *fakeFetcher) Enabled() bool { return f.enabled }

func (f *fakeFetcher) PosterURL(_ context.Context, movieID int64) (string, error) {
	f.mu.Lock()
	f.calls[movieID]++
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if err, ok := f.errs[movieID]; ok {
		return "", err
	}
	if url, ok := f.urls[movieID]; ok {
		return url, nil
	}
	return "", ErrNoPoster
}

func (f *fakeFetcher) callCount(movieID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[movieID]
}

func testCacheConfig() *config.PosterCacheConfig {
	return &config.PosterCacheConfig{
		MemoryEntries: 100,
		TTL:           time.Hour,
		NegativeTTL:   time.Minute,
	}
}

func newInMemoryBadger(t *testing.T) *BadgerCache {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		t.Fatalf("open badger: %v", err)
	}
	c := NewBadgerCacheFromDB(db)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCachedResolver_CachesPositiveAndNegative(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher()
	fetcher.urls[1] = "https://image.tmdb.org/t/p/w500/one.jpg"
	resolver := NewCachedResolver(fetcher, testCacheConfig(), nil, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		url, err := resolver.PosterURL(ctx, 1)
		if err != nil || url != fetcher.urls[1] {
			t.Fatalf("PosterURL(1) = %q, %v", url, err)
		}
		if _, err := resolver.PosterURL(ctx, 2); !errors.Is(err, ErrNoPoster) {
			t.Fatalf("PosterURL(2) error = %v, want ErrNoPoster", err)
		}
	}

	if got := fetcher.callCount(1); got != 1 {
		t.Errorf("found poster fetched %d times, want 1", got)
	}
	if got := fetcher.callCount(2); got != 1 {
		t.Errorf("missing poster fetched %d times, want 1", got)
	}
}

func TestCachedResolver_TransientErrorsNotCached(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher()
	fetcher.errs[3] = &APIError{StatusCode: 503}
	resolver := NewCachedResolver(fetcher, testCacheConfig(), nil, zerolog.Nop())

	for i := 0; i < 2; i++ {
		var apiErr *APIError
		if _, err := resolver.PosterURL(context.Background(), 3); !errors.As(err, &apiErr) {
			t.Fatalf("PosterURL() error = %v, want APIError", err)
		}
	}
	if got := fetcher.callCount(3); got != 2 {
		t.Errorf("failing lookup fetched %d times, want 2", got)
	}
}

func TestCachedResolver_Disabled(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher()
	fetcher.enabled = false
	resolver := NewCachedResolver(fetcher, testCacheConfig(), nil, zerolog.Nop())

	if resolver.Enabled() {
		t.Error("Enabled() should follow the fetcher")
	}
	if _, err := resolver.PosterURL(context.Background(), 1); !errors.Is(err, ErrDisabled) {
		t.Errorf("PosterURL() error = %v, want ErrDisabled", err)
	}
	if fetcher.callCount(1) != 0 {
		t.Error("disabled resolver should not fetch")
	}
}

func TestCachedResolver_PersistentCache(t *testing.T) {
	t.Parallel()

	persistent := newInMemoryBadger(t)
	ctx := context.Background()

	fetcher := newFakeFetcher()
	fetcher.urls[10] = "https://image.tmdb.org/t/p/w500/ten.jpg"

	first := NewCachedResolver(fetcher, testCacheConfig(), persistent, zerolog.Nop())
	if _, err := first.PosterURL(ctx, 10); err != nil {
		t.Fatalf("PosterURL() error = %v", err)
	}
	if _, err := first.PosterURL(ctx, 11); !errors.Is(err, ErrNoPoster) {
		t.Fatalf("PosterURL() error = %v, want ErrNoPoster", err)
	}

	// A fresh resolver with an empty memory cache reads through Badger.
	second := NewCachedResolver(fetcher, testCacheConfig(), persistent, zerolog.Nop())
	url, err := second.PosterURL(ctx, 10)
	if err != nil || url != fetcher.urls[10] {
		t.Fatalf("PosterURL(10) = %q, %v", url, err)
	}
	if _, err := second.PosterURL(ctx, 11); !errors.Is(err, ErrNoPoster) {
		t.Fatalf("PosterURL(11) error = %v, want ErrNoPoster", err)
	}

	if got := fetcher.callCount(10); got != 1 {
		t.Errorf("fetched %d times, want 1", got)
	}
	if got := fetcher.callCount(11); got != 1 {
		t.Errorf("negative entry fetched %d times, want 1", got)
	}
}

func TestCachedResolver_SharedFetch(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher()
	fetcher.urls[5] = "https://image.tmdb.org/t/p/w500/five.jpg"
	fetcher.delay = 50 * time.Millisecond
	resolver := NewCachedResolver(fetcher, testCacheConfig(), nil, zerolog.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := resolver.PosterURL(context.Background(), 5); err != nil {
				t.Errorf("PosterURL() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if got := fetcher.callCount(5); got > 2 {
		t.Errorf("concurrent lookups fetched %d times", got)
	}
}

// blockingFetcher holds every lookup until release is closed and records
// whether the context it ran under was cancelled.
type blockingFetcher struct {
	once      sync.Once
	started   chan struct{}
	release   chan struct{}
	cancelled chan bool
}

func (f *blockingFetcher) Enabled() bool { return true }

func (f *blockingFetcher) PosterURL(ctx context.Context, _ int64) (string, error) {
	f.once.Do(func() { close(f.started) })
	<-f.release
	f.cancelled <- ctx.Err() != nil
	return "https://image.tmdb.org/t/p/w500/heat.jpg", nil
}

func TestCachedResolver_SharedFetchSurvivesCallerCancel(t *testing.T) {
	t.Parallel()

	fetcher := &blockingFetcher{
		started:   make(chan struct{}),
		release:   make(chan struct{}),
		cancelled: make(chan bool, 2),
	}
	resolver := NewCachedResolver(fetcher, testCacheConfig(), nil, zerolog.Nop())

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := resolver.PosterURL(firstCtx, 949)
		firstErr <- err
	}()
	<-fetcher.started

	secondURL := make(chan string, 1)
	secondErr := make(chan error, 1)
	go func() {
		url, err := resolver.PosterURL(context.Background(), 949)
		secondURL <- url
		secondErr <- err
	}()

	cancelFirst()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Errorf("first caller error = %v, want context.Canceled", err)
	}

	// Give the second caller time to join the in-flight fetch.
	time.Sleep(20 * time.Millisecond)
	close(fetcher.release)

	if err := <-secondErr; err != nil {
		t.Fatalf("second caller error = %v", err)
	}
	if url := <-secondURL; url != "https://image.tmdb.org/t/p/w500/heat.jpg" {
		t.Errorf("second caller url = %q", url)
	}
	if <-fetcher.cancelled {
		t.Error("shared fetch ran under a cancelled context")
	}
}

func TestBadgerCache_TTL(t *testing.T) {
	t.Parallel()

	c := newInMemoryBadger(t)
	ctx := context.Background()

	if err := c.Set(ctx, 1, Entry{URL: "u"}, time.Second); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	entry, ok, err := c.Get(ctx, 1)
	if err != nil || !ok || entry.URL != "u" {
		t.Fatalf("Get() = %+v, %v, %v", entry, ok, err)
	}

	if _, ok, _ := c.Get(ctx, 2); ok {
		t.Error("Get() of unknown id should miss")
	}

	// Badger TTL has second granularity.
	time.Sleep(2100 * time.Millisecond)
	if _, ok, _ := c.Get(ctx, 1); ok {
		t.Error("entry should have expired")
	}

	if err := c.RunGC(); err != nil {
		t.Errorf("RunGC() error = %v", err)
	}
}

func TestBadgerCache_CancelledContext(t *testing.T) {
	t.Parallel()

	c := newInMemoryBadger(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := c.Set(ctx, 1, Entry{URL: "u"}, time.Minute); !errors.Is(err, context.Canceled) {
		t.Errorf("Set() error = %v, want context.Canceled", err)
	}
	if _, _, err := c.Get(ctx, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("Get() error = %v, want context.Canceled", err)
	}
}

func TestCachedResolver_Maintain(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher()
	resolver := NewCachedResolver(fetcher, testCacheConfig(), newInMemoryBadger(t), zerolog.Nop())

	// No panic with an empty cache and a GC-capable persistent layer.
	resolver.maintain()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := resolver.Serve(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() error = %v, want context.Canceled", err)
	}
	if resolver.String() == "" {
		t.Error("String() should name the service")
	}
}
