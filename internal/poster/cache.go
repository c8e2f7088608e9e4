// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package poster

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/plotmatch/internal/cache"
	"github.com/tomtom215/plotmatch/internal/metrics"
)

// Cache type labels for metrics.
const (
	cacheTypeMemory = "poster_memory"
	cacheTypeBadger = "poster_badger"
)

// Entry is a cached lookup result. An empty URL records that the movie has
// no poster.
type Entry struct {
	URL string `json:"url"`
}

// NoPoster reports whether the entry is a negative result.
func (e Entry) NoPoster() bool {
	return e.URL == ""
}

// Cache stores lookup results by movie id.
type Cache interface {
	Get(ctx context.Context, movieID int64) (Entry, bool, error)
	Set(ctx context.Context, movieID int64, entry Entry, ttl time.Duration) error
}

// MemoryCache is an in-process LRU cache.
type MemoryCache struct {
	lru *cache.LRU[Entry]
}

// NewMemoryCache creates a memory cache holding up to capacity entries.
func NewMemoryCache(capacity int, ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		lru: cache.NewLRU[Entry](capacity, ttl, cache.WithEvictCallback[Entry](func() {
			metrics.CacheEvictions.WithLabelValues(cacheTypeMemory).Inc()
		})),
	}
}

// Get implements Cache.
func (m *MemoryCache) Get(_ context.Context, movieID int64) (Entry, bool, error) {
	entry, ok := m.lru.Get(cacheKey(movieID))
	if ok {
		metrics.RecordCacheHit(cacheTypeMemory)
	} else {
		metrics.RecordCacheMiss(cacheTypeMemory)
	}
	return entry, ok, nil
}

// Set implements Cache.
func (m *MemoryCache) Set(_ context.Context, movieID int64, entry Entry, ttl time.Duration) error {
	m.lru.AddWithTTL(cacheKey(movieID), entry, ttl)
	metrics.CacheSize.WithLabelValues(cacheTypeMemory).Set(float64(m.lru.Len()))
	return nil
}

// CleanupExpired drops expired entries.
func (m *MemoryCache) CleanupExpired() int {
	n := m.lru.CleanupExpired()
	metrics.CacheSize.WithLabelValues(cacheTypeMemory).Set(float64(m.lru.Len()))
	return n
}

// Stats returns LRU counters.
func (m *MemoryCache) Stats() cache.LRUStats {
	return m.lru.Stats()
}

// BadgerCache persists lookup results across restarts. Entries expire
// through Badger's native TTL.
type BadgerCache struct {
	db *badger.DB
}

// OpenBadgerCache opens or creates a Badger database at path.
func OpenBadgerCache(path string) (*BadgerCache, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Suppress BadgerDB internal logs
	// Poster entries are tiny
	opts.ValueLogFileSize = 16 << 20

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for poster cache: %w", err)
	}
	return &BadgerCache{db: db}, nil
}

// NewBadgerCacheFromDB wraps an existing Badger database.
func NewBadgerCacheFromDB(db *badger.DB) *BadgerCache {
	return &BadgerCache{db: db}
}

// Get implements Cache.
func (b *BadgerCache) Get(ctx context.Context, movieID int64) (Entry, bool, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, false, err
	}

	var (
		entry Entry
		found bool
	)
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(movieID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	if err != nil {
		return Entry{}, false, fmt.Errorf("poster cache get: %w", err)
	}

	if found {
		metrics.RecordCacheHit(cacheTypeBadger)
	} else {
		metrics.RecordCacheMiss(cacheTypeBadger)
	}
	return entry, found, nil
}

// Set implements Cache.
func (b *BadgerCache) Set(ctx context.Context, movieID int64, entry Entry, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal poster entry: %w", err)
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(badgerKey(movieID), data).WithTTL(ttl))
	})
}

// RunGC reclaims value log space from expired entries.
func (b *BadgerCache) RunGC() error {
	err := b.db.RunValueLogGC(0.5)
	if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
		return nil
	}
	return err
}

// Close closes the database.
func (b *BadgerCache) Close() error {
	return b.db.Close()
}

func cacheKey(movieID int64) string {
	return strconv.FormatInt(movieID, 10)
}

func badgerKey(movieID int64) []byte {
	return []byte("poster:" + cacheKey(movieID))
}

var (
	_ Cache = (*MemoryCache)(nil)
	_ Cache = (*BadgerCache)(nil)
)
