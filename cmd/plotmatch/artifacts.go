// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/plotmatch/internal/bootstrap"
	"github.com/tomtom215/plotmatch/internal/recommend"
)

func newArtifactsCmd(c *cli) *cobra.Command {
	var keep int

	cmd := &cobra.Command{
		Use:   "artifacts",
		Short: "List the latest stored artifacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := bootstrap.OpenStore(cmd.Context(), &c.cfg.Artifacts)
			if err != nil {
				return err
			}

			if keep > 0 {
				for _, name := range []string{recommend.ArtifactMovies, recommend.ArtifactSimilarity} {
					if err := store.Prune(cmd.Context(), name, keep); err != nil {
						return fmt.Errorf("prune %s: %w", name, err)
					}
				}
			}

			artifacts, err := store.ListArtifacts(cmd.Context())
			if err != nil {
				return err
			}
			if c.asJSON {
				return printJSON(cmd.OutOrStdout(), artifacts)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tVERSION\tROWS\tSIZE\tCOMPRESSION\tCREATED")
			for _, a := range artifacts {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\t%s\n",
					a.Name, a.Version, a.Rows, a.SizeBytes, a.Compression, a.CreatedAt.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&keep, "prune", 0, "delete all but the newest N versions of each artifact")
	return cmd
}
