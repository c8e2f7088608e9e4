// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/plotmatch/internal/config"
	"github.com/tomtom215/plotmatch/internal/dataset"
	"github.com/tomtom215/plotmatch/internal/recommend/storage/blob"
)

const moviesCSV = `id,title,overview
1,Alien,"crew of a spaceship meets a deadly alien"
2,Aliens,"marines return to fight the deadly alien"
3,Heat,"a detective hunts a crew of bank robbers"
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "movies.csv")
	if err := os.WriteFile(path, []byte(moviesCSV), 0o600); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	cfg := config.Default()
	cfg.Dataset.Path = path
	cfg.Artifacts.Backend = config.BackendLocal
	cfg.Artifacts.Dir = filepath.Join(dir, "artifacts")
	return cfg
}

func TestOpenStore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		backend     string
		compression string
		wantErr     bool
		wantBackend any
	}{
		{name: "memory", backend: config.BackendMemory, compression: "lz4", wantBackend: &blob.Memory{}},
		{name: "local", backend: config.BackendLocal, compression: "zstd", wantBackend: &blob.Local{}},
		{name: "empty backend is local", backend: "", compression: "", wantBackend: &blob.Local{}},
		{name: "unknown backend", backend: "ftp", wantErr: true},
		{name: "unknown compression", backend: config.BackendMemory, compression: "brotli", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := &config.ArtifactsConfig{
				Backend:     tt.backend,
				Dir:         t.TempDir(),
				Compression: tt.compression,
			}
			store, err := OpenStore(context.Background(), cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("OpenStore() should fail")
				}
				return
			}
			if err != nil {
				t.Fatalf("OpenStore() error = %v", err)
			}
			switch tt.wantBackend.(type) {
			case *blob.Memory:
				if _, ok := store.Backend().(*blob.Memory); !ok {
					t.Errorf("backend = %T, want *blob.Memory", store.Backend())
				}
			case *blob.Local:
				if _, ok := store.Backend().(*blob.Local); !ok {
					t.Errorf("backend = %T, want *blob.Local", store.Backend())
				}
			}
		})
	}
}

func TestOpenSource(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	source, closer, err := OpenSource(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("OpenSource() error = %v", err)
	}
	if closer != nil {
		t.Error("CSV source should not open a database")
	}
	if _, ok := source.(*dataset.CSVSource); !ok {
		t.Errorf("source = %T, want *dataset.CSVSource", source)
	}

	cfg.Dataset.Format = "parquet"
	if _, _, err := OpenSource(cfg, zerolog.Nop()); err == nil {
		t.Error("unknown format should fail")
	}
}

func TestNew_BuildsAndRecommends(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	components, err := New(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = components.Close() })

	if components.Posters != nil {
		t.Error("posters should be disabled without an API key")
	}
	if err := components.Engine.Build(context.Background()); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	ranked, err := components.Engine.Similar("Alien", 1)
	if err != nil {
		t.Fatalf("Similar() error = %v", err)
	}
	if len(ranked) != 1 || ranked[0].Title != "Aliens" {
		t.Errorf("Similar(Alien) = %+v, want Aliens first", ranked)
	}

	artifacts, err := components.Store.ListArtifacts(context.Background())
	if err != nil {
		t.Fatalf("ListArtifacts() error = %v", err)
	}
	if len(artifacts) == 0 {
		t.Error("build should persist artifacts")
	}
}

func TestNew_WithPosters(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.TMDB.APIKey = "test-key"
	cfg.PosterCache.BadgerPath = filepath.Join(t.TempDir(), "posters")

	components, err := New(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if components.Posters == nil || !components.Posters.Enabled() {
		t.Fatal("posters should be enabled with an API key")
	}
	if err := components.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
