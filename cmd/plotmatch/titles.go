// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newTitlesCmd(c *cli) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "titles [query]",
		Short: "List corpus titles, optionally filtered by a substring",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var query string
			if len(args) == 1 {
				query = args[0]
			}

			comps, err := c.components(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = comps.Close() }()

			if err := c.buildIndex(cmd.Context(), comps); err != nil {
				return fmt.Errorf("build index: %w", err)
			}
			idx, err := comps.Engine.Index()
			if err != nil {
				return err
			}

			movies := idx.Corpus().Search(query, limit)
			if c.asJSON {
				return printJSON(cmd.OutOrStdout(), movies)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE")
			for _, m := range movies {
				fmt.Fprintf(tw, "%d\t%s\n", m.ID, m.Title)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "maximum titles to print (0 for all)")
	return cmd
}
