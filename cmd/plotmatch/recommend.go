// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tomtom215/plotmatch/internal/recommend"
)

func newRecommendCmd(c *cli) *cobra.Command {
	var (
		k   int
		raw bool
	)

	cmd := &cobra.Command{
		Use:   "recommend <title>",
		Short: "Print movies with the most similar plots",
		Long: `Recommend ranks every movie by overview similarity to the exact title
given. With a TMDB API key configured, movies without a poster are skipped
unless --raw is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			comps, err := c.components(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = comps.Close() }()

			if err := c.buildIndex(cmd.Context(), comps); err != nil {
				return fmt.Errorf("build index: %w", err)
			}

			var items []recommend.Recommendation
			if raw {
				ranked, err := comps.Engine.Similar(args[0], k)
				if err != nil {
					return err
				}
				for _, m := range ranked {
					items = append(items, recommend.Recommendation{ScoredMovie: m})
				}
			} else {
				resp, err := comps.Engine.Recommend(cmd.Context(), recommend.Request{Title: args[0], K: k})
				if err != nil {
					return err
				}
				items = resp.Items
			}

			if c.asJSON {
				return printJSON(cmd.OutOrStdout(), items)
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no recommendations")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tSCORE\tTITLE\tPOSTER")
			for i, item := range items {
				fmt.Fprintf(tw, "%d\t%.4f\t%s\t%s\n", i+1, item.Score, item.Title, item.PosterURL)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVarP(&k, "k", "k", 0, "number of recommendations (0 uses the configured default)")
	cmd.Flags().BoolVar(&raw, "raw", false, "skip poster filtering")
	return cmd
}
