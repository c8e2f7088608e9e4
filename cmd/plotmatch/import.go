// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/plotmatch/internal/database"
)

func newImportCmd(c *cli) *cobra.Command {
	var table string

	cmd := &cobra.Command{
		Use:   "import <csv>",
		Short: "Copy a movie CSV into a DuckDB table",
		Long: `Import copies the id, title and overview columns of a CSV file into a
table of the configured DuckDB database (DUCKDB_PATH). Set DATASET_FORMAT=duckdb
and DUCKDB_TABLE to build from the table afterwards.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if table == "" {
				table = c.cfg.Database.Table
			}
			if table == "" {
				table = "movies"
			}

			db, err := database.New(&c.cfg.Database)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer func() { _ = db.Close() }()

			n, err := db.ImportMovies(cmd.Context(), args[0], table)
			if err != nil {
				return err
			}

			c.logger.Info().Str("table", table).Int64("rows", n).Msg("Imported movies")
			if c.asJSON {
				return printJSON(cmd.OutOrStdout(), map[string]any{"table": table, "rows": n})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d movies into %s\n", n, table)
			return nil
		},
	}

	cmd.Flags().StringVar(&table, "table", "", "destination table (default DUCKDB_TABLE or movies)")
	return cmd
}
