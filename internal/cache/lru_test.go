// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package cache

import (
	"strconv"
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestLRU_BasicOperations(t *testing.T) {
	t.Parallel()

	cache := NewLRU[string](3, time.Minute)
	cache.Add("a", "1")
	cache.Add("b", "2")
	cache.Add("c", "3")

	for key, want := range map[string]string{"a": "1", "b": "2", "c": "3"} {
		got, found := cache.Get(key)
		if !found {
			t.Errorf("Expected to find key %q", key)
			continue
		}
		if got != want {
			t.Errorf("Get(%q) = %q, want %q", key, got, want)
		}
	}

	if cache.Len() != 3 {
		t.Errorf("Expected len 3, got %d", cache.Len())
	}
}

func TestLRU_Eviction(t *testing.T) {
	t.Parallel()

	evicted := 0
	cache := NewLRU[int](3, time.Minute, WithEvictCallback[int](func() { evicted++ }))

	cache.Add("a", 1)
	cache.Add("b", 2)
	cache.Add("c", 3)

	// Access 'a' so 'b' becomes least recently used
	cache.Get("a")
	cache.Add("d", 4)

	if _, found := cache.Get("b"); found {
		t.Error("Expected 'b' to be evicted")
	}
	for _, key := range []string{"a", "c", "d"} {
		if _, found := cache.Get(key); !found {
			t.Errorf("Expected %q to be present", key)
		}
	}
	if evicted != 1 {
		t.Errorf("evict callback called %d times, want 1", evicted)
	}
	if stats := cache.Stats(); stats.Evictions != 1 {
		t.Errorf("Stats().Evictions = %d, want 1", stats.Evictions)
	}
}

func TestLRU_TTLExpiration(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	cache := NewLRU[string](10, time.Minute, WithClock[string](clock.Now))

	cache.Add("a", "x")
	if _, found := cache.Get("a"); !found {
		t.Error("Expected to find key 'a' immediately")
	}

	clock.Advance(time.Minute + time.Second)
	if _, found := cache.Get("a"); found {
		t.Error("Expected key 'a' to be expired")
	}
	if cache.Len() != 0 {
		t.Errorf("expired entry should be removed on Get, len = %d", cache.Len())
	}
}

func TestLRU_AddWithTTL(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	cache := NewLRU[string](10, time.Hour, WithClock[string](clock.Now))

	cache.Add("long", "x")
	cache.AddWithTTL("short", "", 10*time.Second)

	clock.Advance(30 * time.Second)

	if _, found := cache.Get("short"); found {
		t.Error("short-lived entry should have expired")
	}
	if _, found := cache.Get("long"); !found {
		t.Error("default TTL entry should still be present")
	}
}

func TestLRU_Remove(t *testing.T) {
	t.Parallel()

	cache := NewLRU[int](10, time.Minute)
	cache.Add("a", 1)
	cache.Add("b", 2)

	if !cache.Remove("a") {
		t.Error("Remove() should return true for existing key")
	}
	if cache.Remove("a") {
		t.Error("Remove() should return false for missing key")
	}
	if _, found := cache.Get("a"); found {
		t.Error("Expected 'a' to be removed")
	}
	if cache.Len() != 1 {
		t.Errorf("Expected len 1, got %d", cache.Len())
	}
}

func TestLRU_Clear(t *testing.T) {
	t.Parallel()

	cache := NewLRU[int](10, time.Minute)
	cache.Add("a", 1)
	cache.Add("b", 2)
	cache.Clear()

	if cache.Len() != 0 {
		t.Errorf("Expected len 0 after clear, got %d", cache.Len())
	}
	cache.Add("c", 3)
	if _, found := cache.Get("c"); !found {
		t.Error("cache should be usable after Clear")
	}
}

func TestLRU_CleanupExpired(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	cache := NewLRU[int](10, time.Minute, WithClock[int](clock.Now))

	cache.AddWithTTL("a", 1, time.Second)
	cache.AddWithTTL("b", 2, time.Second)
	cache.Add("c", 3)

	clock.Advance(2 * time.Second)

	if removed := cache.CleanupExpired(); removed != 2 {
		t.Errorf("CleanupExpired() = %d, want 2", removed)
	}
	if cache.Len() != 1 {
		t.Errorf("Expected len 1, got %d", cache.Len())
	}
}

func TestLRU_Stats(t *testing.T) {
	t.Parallel()

	cache := NewLRU[int](10, time.Minute)
	cache.Add("a", 1)

	cache.Get("a")
	cache.Get("a")
	cache.Get("missing")

	stats := cache.Stats()
	if stats.Hits != 2 {
		t.Errorf("Expected 2 hits, got %d", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("Expected 1 miss, got %d", stats.Misses)
	}
	if stats.Size != 1 {
		t.Errorf("Expected size 1, got %d", stats.Size)
	}
	if rate := stats.HitRate(); rate < 0.66 || rate > 0.67 {
		t.Errorf("HitRate() = %f, want ~0.667", rate)
	}
	if (LRUStats{}).HitRate() != 0 {
		t.Error("HitRate() without lookups should be 0")
	}
}

func TestLRU_UpdateExisting(t *testing.T) {
	t.Parallel()

	cache := NewLRU[string](2, time.Minute)
	cache.Add("a", "old")
	cache.Add("b", "b")
	cache.Add("a", "new")

	// 'a' was refreshed, so 'b' is evicted next
	cache.Add("c", "c")

	if got, _ := cache.Get("a"); got != "new" {
		t.Errorf("Get(a) = %q, want new", got)
	}
	if _, found := cache.Get("b"); found {
		t.Error("Expected 'b' to be evicted")
	}
	if cache.Len() != 2 {
		t.Errorf("Expected len 2, got %d", cache.Len())
	}
}

func TestLRU_Defaults(t *testing.T) {
	t.Parallel()

	cache := NewLRU[int](0, 0)
	if cache.capacity != 10000 || cache.ttl != 5*time.Minute {
		t.Errorf("defaults = %d/%v", cache.capacity, cache.ttl)
	}
}

func TestLRU_Concurrent(t *testing.T) {
	t.Parallel()

	cache := NewLRU[int](100, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := strconv.Itoa(id*100 + j)
				cache.Add(key, j)
				cache.Get(key)
				if j%10 == 0 {
					cache.Remove(key)
				}
			}
		}(i)
	}
	wg.Wait()

	if cache.Len() > 100 {
		t.Errorf("cache exceeded capacity: %d", cache.Len())
	}
}
