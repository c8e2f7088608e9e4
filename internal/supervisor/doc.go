// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

/*
Package supervisor provides process supervision for Plotmatch using suture v4.

The tree has two layers:

	RootSupervisor ("plotmatch")
	├── DataSupervisor ("data-layer")
	│   ├── IndexService
	│   └── poster cache maintenance (when TMDB is enabled)
	└── APISupervisor ("api-layer")
	    ├── WebSocketHubService
	    └── HTTPServerService

Services returning an error are restarted with suture's backoff. The HTTP
server starts immediately and reports 503 on readiness until the index
service has published an index.

Supervisor events are logged through sutureslog, fed by the zerolog slog
adapter in internal/logging:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddDataService(indexSvc)
	tree.AddAPIService(hubSvc)
	tree.AddAPIService(httpSvc)
	err = tree.Serve(ctx)
*/
package supervisor
