// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/tomtom215/plotmatch/internal/logging"
	"github.com/tomtom215/plotmatch/internal/metrics"
	"github.com/tomtom215/plotmatch/internal/recommend"
)

// MovieSource reads the movie corpus through DuckDB, either straight from a
// CSV file with read_csv_auto or from a table. It implements
// recommend.Source.
type MovieSource struct {
	db      *DB
	csvPath string
	table   string
}

// NewCSVMovieSource reads movies from a TMDB style CSV file.
func NewCSVMovieSource(db *DB, csvPath string) *MovieSource {
	return &MovieSource{db: db, csvPath: csvPath}
}

// NewTableMovieSource reads movies from a table with id, title and overview
// columns, in insertion order.
func NewTableMovieSource(db *DB, table string) (*MovieSource, error) {
	if !validTableName(table) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTableName, table)
	}
	return &MovieSource{db: db, table: table}, nil
}

// String describes the source for logs.
func (s *MovieSource) String() string {
	if s.table != "" {
		return "duckdb:" + s.table
	}
	return "duckdb:" + s.csvPath
}

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

func validTableName(name string) bool {
	return tableNamePattern.MatchString(name)
}

// quoteLiteral renders a SQL string literal. Table functions such as
// read_csv_auto do not accept bound parameters for their file argument.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func csvRelation(path string) string {
	return fmt.Sprintf("read_csv_auto(%s, header=true, all_varchar=true)", quoteLiteral(path))
}

// relation is the FROM target: the table, or the CSV table function.
func (s *MovieSource) relation() string {
	if s.table != "" {
		return s.table
	}
	return csvRelation(s.csvPath)
}

// query returns the SELECT for the configured relation. Ids that do not
// parse become NULL and are skipped by the caller.
func (s *MovieSource) query() string {
	const columns = `TRY_CAST(trim(CAST(src.id AS VARCHAR)) AS BIGINT) AS id, COALESCE(src.title, '') AS title, COALESCE(src.overview, '') AS overview`
	if s.table != "" {
		return fmt.Sprintf("SELECT %s FROM %s AS src ORDER BY rowid", columns, s.table)
	}
	return fmt.Sprintf("SELECT %s FROM %s AS src", columns, s.relation())
}

// LoadMovies returns every record in file (or insertion) order. Blank
// overviews are returned as-is; NewCorpus filters them.
func (s *MovieSource) LoadMovies(ctx context.Context) ([]recommend.Movie, error) {
	start := time.Now()
	movies, skipped, err := s.load(ctx)
	metrics.RecordDBQuery("load_movies", s.relationLabel(), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	logger := logging.WithComponent("database")
	if skipped > 0 {
		logger.Warn().
			Str("source", s.String()).
			Int("skipped", skipped).
			Msg("Skipped movie rows with malformed ids")
	}
	logger.Debug().
		Str("source", s.String()).
		Int("rows", len(movies)).
		Dur("duration", time.Since(start)).
		Msg("Loaded movies from DuckDB")

	return movies, nil
}

func (s *MovieSource) relationLabel() string {
	if s.table != "" {
		return s.table
	}
	return "read_csv_auto"
}

func (s *MovieSource) load(ctx context.Context) ([]recommend.Movie, int, error) {
	if err := s.db.requireColumns(ctx, s.relation(), s.String()); err != nil {
		return nil, 0, s.wrapQueryError(err)
	}

	rows, err := s.db.conn.QueryContext(ctx, s.query())
	if err != nil {
		return nil, 0, s.wrapQueryError(err)
	}
	defer closeQuietly(rows)

	var (
		movies  []recommend.Movie
		skipped int
	)
	for rows.Next() {
		var (
			id              sql.NullInt64
			title, overview string
		)
		if err := rows.Scan(&id, &title, &overview); err != nil {
			return nil, 0, fmt.Errorf("failed to scan movie row: %w", err)
		}
		if !id.Valid {
			skipped++
			continue
		}
		movies = append(movies, recommend.Movie{
			ID:       id.Int64,
			Title:    title,
			Overview: overview,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, s.wrapQueryError(err)
	}

	return movies, skipped, nil
}

func (s *MovieSource) wrapQueryError(err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, ErrMissingColumn):
		return err
	case isConnectionError(err):
		return fmt.Errorf("%w: %v", ErrConnectionLost, err)
	case isMissingColumn(err):
		return fmt.Errorf("%w in %s: %v", ErrMissingColumn, s.String(), err)
	default:
		return fmt.Errorf("failed to query movies from %s: %w", s.String(), err)
	}
}

// requiredColumns are the columns every movie relation must carry.
var requiredColumns = []string{"id", "title", "overview"}

// requireColumns reads the column list of relation without scanning rows
// and fails with ErrMissingColumn naming the first absent one. DuckDB
// identifiers are case-insensitive, so the comparison is too.
func (db *DB) requireColumns(ctx context.Context, relation, label string) error {
	rows, err := db.conn.QueryContext(ctx, "SELECT * FROM "+relation+" LIMIT 0")
	if err != nil {
		return err
	}
	defer closeQuietly(rows)

	columns, err := rows.Columns()
	if err != nil {
		return err
	}
	for _, want := range requiredColumns {
		if !slices.ContainsFunc(columns, func(c string) bool { return strings.EqualFold(c, want) }) {
			return fmt.Errorf("%w in %s: %q", ErrMissingColumn, label, want)
		}
	}
	return nil
}

// isMissingColumn matches DuckDB binder errors for unknown columns.
func isMissingColumn(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "Binder Error") &&
		(strings.Contains(msg, "not found") || strings.Contains(msg, "does not have a column"))
}

// ImportMovies copies the id, title and overview columns of a CSV file into
// a table, replacing it if it exists. Returns the number of rows imported.
func (db *DB) ImportMovies(ctx context.Context, csvPath, table string) (int64, error) {
	if !validTableName(table) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTableName, table)
	}

	start := time.Now()
	if err := db.requireColumns(ctx, csvRelation(csvPath), csvPath); err != nil {
		metrics.RecordDBQuery("import_movies", table, time.Since(start), err)
		if errors.Is(err, ErrMissingColumn) {
			return 0, err
		}
		return 0, fmt.Errorf("failed to read %s: %w", csvPath, err)
	}

	stmt := fmt.Sprintf(
		"CREATE OR REPLACE TABLE %s AS SELECT id, title, overview FROM %s",
		table, csvRelation(csvPath))
	_, err := db.conn.ExecContext(ctx, stmt)
	metrics.RecordDBQuery("import_movies", table, time.Since(start), err)
	if err != nil {
		if isMissingColumn(err) {
			return 0, fmt.Errorf("%w in %s: %v", ErrMissingColumn, csvPath, err)
		}
		return 0, fmt.Errorf("failed to import %s into %s: %w", csvPath, table, err)
	}

	var count int64
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return count, nil
}
