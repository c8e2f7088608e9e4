// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

// Command plotmatch precomputes similarity artifacts and queries them from
// the terminal. It reads the same configuration as the server.
//
//	plotmatch build --force
//	plotmatch recommend "The Dark Knight" -k 10
//	plotmatch titles dark --limit 20
//	plotmatch import movies.csv --table movies
//	plotmatch artifacts --prune 2
package main

import (
	"os"

	"github.com/tomtom215/plotmatch/internal/config"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd(config.Load).Execute(); err != nil {
		os.Exit(1)
	}
}
