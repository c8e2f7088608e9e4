// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"

	"github.com/tomtom215/plotmatch/internal/recommend"
)

// Required column names.
const (
	ColumnID       = "id"
	ColumnTitle    = "title"
	ColumnOverview = "overview"
)

var (
	// ErrMissingColumn is returned when the header lacks a required column.
	ErrMissingColumn = errors.New("required column missing")

	// ErrEmptyFile is returned when the file has no header row.
	ErrEmptyFile = errors.New("csv file is empty")
)

// Stats describes the last load.
type Stats struct {
	Rows       int
	SkippedIDs int
	ShortRows  int
	Duration   time.Duration
}

// CSVSource reads a TMDB style movies CSV. Column order is free and extra
// columns are ignored. Files ending in .gz or .zst are decompressed.
// It implements recommend.Source.
type CSVSource struct {
	path   string
	logger zerolog.Logger
	stats  Stats
}

// NewCSVSource creates a source for the file at path.
func NewCSVSource(path string, logger zerolog.Logger) *CSVSource {
	return &CSVSource{
		path:   path,
		logger: logger.With().Str("component", "dataset").Str("path", path).Logger(),
	}
}

// String describes the source for logs.
func (s *CSVSource) String() string {
	return "csv:" + s.path
}

// Stats returns statistics of the last successful LoadMovies call.
func (s *CSVSource) Stats() Stats {
	return s.stats
}

// LoadMovies reads every record in file order.
func (s *CSVSource) LoadMovies(ctx context.Context) ([]recommend.Movie, error) {
	start := time.Now()

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	r, closeFn, err := decompressor(s.path, f)
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", s.path, err)
	}
	defer closeFn()

	movies, stats, err := ReadMovies(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", s.path, err)
	}
	stats.Duration = time.Since(start)
	s.stats = stats

	if stats.SkippedIDs > 0 || stats.ShortRows > 0 {
		s.logger.Warn().
			Int("skipped_ids", stats.SkippedIDs).
			Int("short_rows", stats.ShortRows).
			Msg("Skipped malformed movie rows")
	}
	s.logger.Debug().
		Int("rows", stats.Rows).
		Dur("duration", stats.Duration).
		Msg("Loaded movies from CSV")

	return movies, nil
}

func decompressor(path string, r io.Reader) (io.Reader, func(), error) {
	switch {
	case strings.HasSuffix(path, ".gz"):
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return zr, func() { _ = zr.Close() }, nil
	case strings.HasSuffix(path, ".zst"):
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return zr, zr.Close, nil
	default:
		return r, func() {}, nil
	}
}

// checkEvery is how many rows are read between context checks.
const checkEvery = 1024

// ReadMovies parses movies from CSV. Rows whose id is not an integer, and
// rows too short to hold the required columns, are skipped and counted.
func ReadMovies(ctx context.Context, r io.Reader) ([]recommend.Movie, Stats, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, Stats{}, ErrEmptyFile
	}
	if err != nil {
		return nil, Stats{}, fmt.Errorf("read header: %w", err)
	}

	idx := headerIndex(header)
	var cols [3]int
	for i, name := range []string{ColumnID, ColumnTitle, ColumnOverview} {
		c, ok := idx[name]
		if !ok {
			return nil, Stats{}, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
		cols[i] = c
	}
	width := max(cols[0], cols[1], cols[2]) + 1

	var (
		movies []recommend.Movie
		stats  Stats
	)
	for line := 0; ; line++ {
		if line%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, Stats{}, err
			}
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, Stats{}, fmt.Errorf("read row %d: %w", line+2, err)
		}
		if len(row) < width {
			stats.ShortRows++
			continue
		}

		id, err := strconv.ParseInt(strings.TrimSpace(row[cols[0]]), 10, 64)
		if err != nil {
			stats.SkippedIDs++
			continue
		}
		movies = append(movies, recommend.Movie{
			ID:       id,
			Title:    row[cols[1]],
			Overview: row[cols[2]],
		})
	}

	stats.Rows = len(movies)
	return movies, stats, nil
}

// headerIndex maps lowercased column names to positions. The first
// occurrence wins. A UTF-8 byte order mark on the first column is dropped.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		name = strings.ToLower(strings.TrimSpace(name))
		if _, ok := idx[name]; !ok {
			idx[name] = i
		}
	}
	return idx
}
