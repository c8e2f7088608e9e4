// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

/*
Package websocket streams index build status to connected clients.

The Hub owns the client set and fans out messages. The engine reports every
state change and each percent of similarity rows through its status
observer, which the server points at Hub.BroadcastStatus:

	hub := websocket.NewHub(logger)
	engine.SetStatusObserver(hub.BroadcastStatus)
	tree.AddAPIService(services.NewWebSocketHubService(hub))

Clients connect to /api/v1/recommendations/status/ws and receive JSON
messages of the form:

	{"type": "build_status", "data": {"state": "building", "progress": 0.42, ...}}

A client may send {"type": "ping"} and gets {"type": "pong"} back. Slow
clients whose send buffer fills are dropped.
*/
package websocket
