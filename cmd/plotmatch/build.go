// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBuildCmd(c *cli) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the similarity index and persist its artifacts",
		Long: `Build loads the corpus, vectorizes every overview and stores the movies
and similarity artifacts. Current artifacts are reused unless --force is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if force {
				c.cfg.Recommend.ForceRebuild = true
			}

			comps, err := c.components(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = comps.Close() }()

			if err := c.buildIndex(cmd.Context(), comps); err != nil {
				return fmt.Errorf("build index: %w", err)
			}

			status := comps.Engine.Status()
			if c.asJSON {
				return printJSON(cmd.OutOrStdout(), status)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "state:       %s\n", status.State)
			fmt.Fprintf(out, "source:      %s\n", status.LoadedFrom)
			if status.ColdStart {
				fmt.Fprintf(out, "cold start:  %s\n", status.ColdStartReason)
			}
			fmt.Fprintf(out, "movies:      %d\n", status.Rows)
			fmt.Fprintf(out, "vocabulary:  %d\n", status.VocabularySize)
			fmt.Fprintf(out, "duration:    %s\n", status.Duration)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "rebuild even when current artifacts exist")
	return cmd
}
