// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tomtom215/plotmatch/internal/bootstrap"
	"github.com/tomtom215/plotmatch/internal/config"
	"github.com/tomtom215/plotmatch/internal/logging"
)

// cli holds state shared by the subcommands.
type cli struct {
	loadConfig func() (*config.Config, error)

	// Flags
	envFile      string
	datasetPath  string
	artifactsDir string
	backend      string
	logLevel     string
	asJSON       bool

	cfg    *config.Config
	logger zerolog.Logger
}

func newRootCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	c := &cli{loadConfig: loadConfig}

	root := &cobra.Command{
		Use:          "plotmatch",
		Short:        "Content-based movie recommendations from plot overviews",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.envFile, "env-file", ".env", "environment file loaded before configuration, if present")
	flags.StringVar(&c.datasetPath, "dataset", "", "movie CSV path (overrides DATASET_PATH)")
	flags.StringVar(&c.artifactsDir, "artifacts-dir", "", "local artifact directory (overrides ARTIFACTS_DIR)")
	flags.StringVar(&c.backend, "backend", "", "artifact backend: local, memory, minio or s3 (overrides ARTIFACTS_BACKEND)")
	flags.StringVar(&c.logLevel, "log-level", "warn", "log level written to stderr")
	flags.BoolVar(&c.asJSON, "json", false, "print results as JSON")

	root.AddCommand(
		newBuildCmd(c),
		newRecommendCmd(c),
		newTitlesCmd(c),
		newImportCmd(c),
		newArtifactsCmd(c),
	)
	return root
}

// setup loads configuration and applies flag overrides.
func (c *cli) setup(cmd *cobra.Command) error {
	if c.envFile != "" {
		if err := godotenv.Load(c.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", c.envFile, err)
		}
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if c.datasetPath != "" {
		cfg.Dataset.Path = c.datasetPath
	}
	if c.artifactsDir != "" {
		cfg.Artifacts.Dir = c.artifactsDir
	}
	if c.backend != "" {
		cfg.Artifacts.Backend = c.backend
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration: %w", err)
	}
	c.cfg = cfg

	if _, err := zerolog.ParseLevel(c.logLevel); err != nil {
		return fmt.Errorf("invalid --log-level %q", c.logLevel)
	}
	logging.Init(logging.Config{
		Level:  c.logLevel,
		Format: "console",
		Output: cmd.ErrOrStderr(),
	})
	c.logger = logging.Logger()
	return nil
}

// components wires the engine. The caller closes the result.
func (c *cli) components(ctx context.Context) (*bootstrap.Components, error) {
	return bootstrap.New(ctx, c.cfg, c.logger)
}

// buildIndex publishes an index, loading artifacts when they are current.
func (c *cli) buildIndex(ctx context.Context, comps *bootstrap.Components) error {
	if c.cfg.Recommend.BuildTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Recommend.BuildTimeout)
		defer cancel()
	}
	return comps.Engine.Build(ctx)
}

// printJSON writes v indented to w.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
