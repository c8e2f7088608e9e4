// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package api

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	gorillaws "github.com/gorilla/websocket"

	"github.com/tomtom215/plotmatch/internal/logging"
	"github.com/tomtom215/plotmatch/internal/websocket"
)

func (h *Handler) upgrader() gorillaws.Upgrader {
	return gorillaws.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkStreamOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkStreamOrigin accepts same-origin requests and configured origins.
// Requests without an Origin header are rejected.
func (h *Handler) checkStreamOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		logging.Ctx(r.Context()).Warn().Msg("Status stream rejected: missing Origin header")
		return false
	}

	if u, err := url.Parse(origin); err == nil && strings.EqualFold(u.Host, r.Host) {
		return true
	}
	for _, allowed := range h.config.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	logging.Ctx(r.Context()).Warn().Str("origin", sanitizeOrigin(origin)).Msg("Status stream rejected from unauthorized origin")
	return false
}

// sanitizeOrigin bounds and strips control characters from a logged origin.
func sanitizeOrigin(origin string) string {
	if len(origin) > 200 {
		origin = origin[:200]
	}
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, origin)
}

// StatusStream handles GET /api/v1/recommendations/status/ws
// Upgrades to a websocket that receives the current BuildStatus at once and
// every change after it.
func (h *Handler) StatusStream(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		respondError(w, http.StatusServiceUnavailable, codeUnavailable, "Status stream unavailable", nil)
		return
	}

	upgrader := h.upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Status stream upgrade failed")
		return
	}

	client := websocket.NewClient(h.hub, conn)
	client.Send(websocket.Message{Type: websocket.MessageTypeBuildStatus, Data: h.engine.Status()})
	if err := h.hub.Register(r.Context(), client); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Status stream registration failed")
		_ = conn.Close()
		return
	}
	client.Start()
}
