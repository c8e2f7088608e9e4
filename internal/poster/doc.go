// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

/*
Package poster resolves movie poster URLs from the TMDB API.

Lookups go through three layers:

  - MemoryCache: an LRU with separate TTLs for found and missing posters
  - BadgerCache: optional on-disk cache that survives restarts
  - Client: rate limited HTTP client behind a circuit breaker

A movie that TMDB does not know, or that has no poster_path, yields
ErrNoPoster. Without an API key the resolver reports Enabled() == false and
returns ErrDisabled, and the recommendation engine skips poster filtering.

Usage:

	client := poster.NewClient(&cfg.TMDB)
	resolver := poster.NewCachedResolver(client, &cfg.PosterCache, nil, logger)
	engine.SetPosterResolver(resolver)
*/
package poster
