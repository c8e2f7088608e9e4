// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package websocket

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/plotmatch/internal/recommend"
)

// Message types
const (
	MessageTypeBuildStatus = "build_status"
	MessageTypePing        = "ping"
	MessageTypePong        = "pong"
)

// Message is the envelope for every frame in both directions.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// ErrHubUnavailable is returned by Register when the hub is not accepting
// clients.
var ErrHubUnavailable = errors.New("websocket hub unavailable")

// registerTimeout bounds how long Register waits for the hub loop.
const registerTimeout = 5 * time.Second

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	logger     zerolog.Logger
}

// NewHub creates a hub. Run it with RunWithContext.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger.With().Str("component", "websocket-hub").Logger(),
	}
}

// RunWithContext processes registrations and broadcasts until ctx is
// cancelled, then closes every client and returns ctx.Err().
//
// Lifecycle events are drained before broadcasts so a client registered
// ahead of a message always receives it.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return h.shutdown(ctx)
		default:
		}

		select {
		case client := <-h.register:
			h.add(client)
			continue
		case client := <-h.unregister:
			h.remove(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			return h.shutdown(ctx)
		case client := <-h.register:
			h.add(client)
		case client := <-h.unregister:
			h.remove(client)
		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

func (h *Hub) add(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug().Int("total_clients", n).Msg("websocket client connected")
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug().Int("total_clients", n).Msg("websocket client disconnected")
}

func (h *Hub) shutdown(ctx context.Context) error {
	n := h.ClientCount()
	h.closeAllClients()
	h.logger.Info().Int("clients_closed", n).Msg("websocket hub stopped")
	return ctx.Err()
}

// sortedClients returns clients in connection order. Caller holds mu.
func (h *Hub) sortedClients() []*Client {
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	return clients
}

// broadcastToClients delivers message to every client in connection order
// and drops clients whose buffer is full.
func (h *Hub) broadcastToClients(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.sortedClients() {
		select {
		case client.send <- message:
		default:
			close(client.send)
			delete(h.clients, client)
			h.logger.Debug().Uint64("client_id", client.id).Msg("dropped slow websocket client")
		}
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.sortedClients() {
		close(client.send)
		delete(h.clients, client)
	}
}

// Register hands client to the hub loop. It fails with ErrHubUnavailable if
// the loop does not pick the client up in time.
func (h *Hub) Register(ctx context.Context, client *Client) error {
	timer := time.NewTimer(registerTimeout)
	defer timer.Stop()

	select {
	case h.register <- client:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrHubUnavailable
	}
}

// BroadcastJSON queues a message for every client. It never blocks; when
// the queue is full the message is dropped.
func (h *Hub) BroadcastJSON(messageType string, data any) {
	select {
	case h.broadcast <- Message{Type: messageType, Data: data}:
	default:
		h.logger.Warn().Str("type", messageType).Msg("websocket broadcast queue full, message dropped")
	}
}

// BroadcastStatus publishes a build status snapshot. Its signature matches
// recommend.StatusObserver.
func (h *Hub) BroadcastStatus(status recommend.BuildStatus) {
	h.BroadcastJSON(MessageTypeBuildStatus, status)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
