// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

/*
Package cache provides a generic, thread-safe LRU cache with per-entry TTL.

The poster resolver keeps recent TMDB lookups here in front of the
persistent Badger cache. Positive and negative results are stored with
different TTLs through AddWithTTL.

# Usage

	lru := cache.NewLRU[string](10000, 24*time.Hour)
	lru.Add("19995", "https://image.tmdb.org/t/p/w500/abc.jpg")
	if url, ok := lru.Get("19995"); ok {
		// ...
	}

Expired entries are dropped lazily on Get and in bulk by CleanupExpired.
Stats reports hits, misses and evictions for the cache metrics.
*/
package cache
