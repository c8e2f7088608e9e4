// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

/*
Package main is the entry point for the Plotmatch HTTP server.

Plotmatch recommends movies whose plot overviews are most similar to a
chosen title. The server loads (or builds) a TF-IDF similarity index over
the movie corpus and serves ranked neighbours over a JSON API, optionally
keeping only movies with a TMDB poster.

# Application Architecture

The server runs under a Suture v4 supervisor tree:

	RootSupervisor ("plotmatch")
	├── DataSupervisor ("data-layer")
	│   ├── Index Service (build or load artifacts, optional refresh)
	│   └── Poster cache maintenance (when TMDB is configured)
	└── APISupervisor ("api-layer")
	    ├── WebSocket Hub (build status stream)
	    └── HTTP Server

Component initialization order:

 1. Environment: optional .env file (godotenv)
 2. Configuration: Koanf v2 defaults, config.yaml, environment
 3. Logging: zerolog with JSON or console output
 4. Engine: artifact store, corpus source, poster resolver
 5. Supervisor Tree: index service, websocket hub and HTTP server
 6. HTTP Server: Chi router with middleware stack

The HTTP server starts before the index is ready. Until the first build
publishes an index, recommendation endpoints answer 503 and the readiness
check reports the build state.

# Configuration

Common environment variables:

	DATASET_PATH        movie CSV (id, title, overview columns)
	DATASET_FORMAT      csv or duckdb
	ARTIFACTS_BACKEND   local, memory, minio or s3
	ARTIFACTS_DIR       directory for the local backend
	TMDB_API_KEY        enables poster filtering
	HTTP_PORT           listen port (default 8501)

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains
in-flight requests, running rebuilds are cancelled, and the database and
poster cache are closed.

# Example Usage

	export DATASET_PATH=./data/tmdb_5000_movies.csv
	export TMDB_API_KEY=your-key
	./plotmatch-server

	curl 'http://localhost:8501/api/v1/recommendations?title=Avatar'
*/
package main
