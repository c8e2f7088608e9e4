// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

// Package database reads the movie corpus through DuckDB.
//
// # Overview
//
// DuckDB is an alternative to the plain CSV reader in package dataset. It
// can read the TMDB export straight from disk with read_csv_auto, or from a
// table in a persistent database file populated with ImportMovies:
//
//	db, err := database.New(&cfg.Database)
//	source := database.NewCSVMovieSource(db, "/data/tmdb_5000_movies.csv")
//	movies, err := source.LoadMovies(ctx)
//
// Both modes return rows in file (or insertion) order, which fixes the row
// order of the similarity index. This requires preserve_insertion_order,
// which is on by default.
//
// Every column is read as VARCHAR; ids that do not parse as integers are
// skipped and counted. Missing id, title or overview columns fail with
// ErrMissingColumn.
//
// # Concurrency
//
// An in-memory database is pinned to a single pooled connection. File
// databases use a pool sized to the CPU count.
package database
