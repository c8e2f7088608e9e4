// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/tomtom215/plotmatch/internal/config"
	"github.com/tomtom215/plotmatch/internal/database"
	"github.com/tomtom215/plotmatch/internal/dataset"
	"github.com/tomtom215/plotmatch/internal/poster"
	"github.com/tomtom215/plotmatch/internal/recommend"
	"github.com/tomtom215/plotmatch/internal/recommend/storage"
	"github.com/tomtom215/plotmatch/internal/recommend/storage/blob"
)

// Components holds everything needed to serve recommendations.
type Components struct {
	Engine *recommend.Engine
	Store  *storage.Store

	// Posters is nil when no TMDB API key is configured.
	Posters *poster.CachedResolver

	closers []io.Closer
}

// Close releases the database and the persistent poster cache.
func (c *Components) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// New wires the engine from configuration. The index is not built; callers
// run Engine.Build or hand the engine to an IndexService.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Components, error) {
	c := &Components{}

	store, err := OpenStore(ctx, &cfg.Artifacts)
	if err != nil {
		return nil, err
	}
	c.Store = store

	source, closer, err := OpenSource(cfg, logger)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		c.closers = append(c.closers, closer)
	}

	engine, err := recommend.NewEngine(cfg.Recommend.EngineConfig(), source, store, logger)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("create engine: %w", err)
	}
	c.Engine = engine

	if cfg.TMDB.Enabled() {
		resolver, closer, err := OpenPosters(cfg, logger)
		if err != nil {
			_ = c.Close()
			return nil, err
		}
		if closer != nil {
			c.closers = append(c.closers, closer)
		}
		c.Posters = resolver
		engine.SetPosterResolver(resolver)
	} else {
		logger.Info().Msg("TMDB API key not set, poster filtering disabled")
	}

	return c, nil
}

// OpenStore creates the artifact store on the configured backend.
func OpenStore(ctx context.Context, cfg *config.ArtifactsConfig) (*storage.Store, error) {
	compression, err := storage.ParseCompression(cfg.Compression)
	if err != nil {
		return nil, err
	}

	var backend blob.Backend
	switch cfg.Backend {
	case config.BackendLocal, "":
		backend, err = blob.NewLocal(cfg.Dir)
	case config.BackendMemory:
		backend = blob.NewMemory()
	case config.BackendMinIO:
		backend, err = blob.NewMinIO(ctx, blob.MinIOConfig{
			Endpoint:     cfg.MinIO.Endpoint,
			AccessKey:    cfg.MinIO.AccessKey,
			SecretKey:    cfg.MinIO.SecretKey,
			Bucket:       cfg.MinIO.Bucket,
			Prefix:       cfg.MinIO.Prefix,
			Region:       cfg.MinIO.Region,
			UseSSL:       cfg.MinIO.UseSSL,
			CreateBucket: cfg.MinIO.CreateBucket,
		})
	case config.BackendS3:
		backend, err = blob.NewS3(ctx, blob.S3Config{
			Bucket:       cfg.S3.Bucket,
			Prefix:       cfg.S3.Prefix,
			Region:       cfg.S3.Region,
			Endpoint:     cfg.S3.Endpoint,
			UsePathStyle: cfg.S3.UsePathStyle,
			PartSize:     cfg.S3.PartSize,
		})
	default:
		return nil, fmt.Errorf("unknown artifact backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s artifact backend: %w", cfg.Backend, err)
	}

	store, err := storage.NewStore(ctx, backend, storage.WithCompression(compression))
	if err != nil {
		return nil, fmt.Errorf("open artifact store: %w", err)
	}
	return store, nil
}

// OpenSource returns the corpus source for the configured dataset format.
// The closer is non-nil when a database connection was opened.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func OpenSource(cfg *config.Config, logger zerolog.Logger) (recommend.Source, io.Closer, error) {
	switch cfg.Dataset.Format {
	case config.DatasetFormatCSV, "":
		return dataset.NewCSVSource(cfg.Dataset.Path, logger), nil, nil
	case config.DatasetFormatDuckDB:
		db, err := database.New(&cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		if cfg.Database.Table == "" {
			return database.NewCSVMovieSource(db, cfg.Dataset.Path), db, nil
		}
		source, err := database.NewTableMovieSource(db, cfg.Database.Table)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return source, db, nil
	default:
		return nil, nil, fmt.Errorf("unknown dataset format %q", cfg.Dataset.Format)
	}
}

// OpenPosters creates the cached TMDB resolver. The closer is non-nil when a
// Badger cache was opened.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func OpenPosters(cfg *config.Config, logger zerolog.Logger) (*poster.CachedResolver, io.Closer, error) {
	var (
		persistent poster.Cache
		closer     io.Closer
	)
	if cfg.PosterCache.BadgerPath != "" {
		badgerCache, err := poster.OpenBadgerCache(cfg.PosterCache.BadgerPath)
		if err != nil {
			return nil, nil, err
		}
		persistent, closer = badgerCache, badgerCache
	}

	client := poster.NewClient(&cfg.TMDB)
	return poster.NewCachedResolver(client, &cfg.PosterCache, persistent, logger), closer, nil
}
