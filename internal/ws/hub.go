package ws

import (
	"encoding/json"
	"log/slog"
)

// Hub maintains the set of connected clients and fans notifications out to
// them. One connection per user; a new connection replaces the old one.
//
// Delivery is best-effort: a full or dead client is dropped rather than
// allowing it to block the hub loop.
type Hub struct {
	clients map[uint64]*Client

	register   chan *Client
	unregister chan *Client
	outbound   chan envelope

	logger *slog.Logger
}

type envelope struct {
	userID  uint64
	payload []byte
}

// NewHub creates a hub. Run must be started on its own goroutine.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[uint64]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		outbound:   make(chan envelope, 256),
		logger:     logger,
	}
}

// Notify queues a payload for one user. Never blocks: if the hub's queue
// is full the notification is dropped and logged, so a slow consumer can
// not stall a lifecycle operation.
func (h *Hub) Notify(userID uint64, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("failed to marshal notification", "user_id", userID, "err", err)
		return
	}

	select {
	case h.outbound <- envelope{userID: userID, payload: payload}:
	default:
		h.logger.Warn("notification queue full, dropping", "user_id", userID)
	}
}

// Run processes register/unregister/notify events until the process exits.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			if existing, ok := h.clients[client.userID]; ok {
				close(existing.send)
			}
			h.clients[client.userID] = client
			h.logger.Debug("ws client registered", "user_id", client.userID)

		case client := <-h.unregister:
			if stored, ok := h.clients[client.userID]; ok && stored == client {
				delete(h.clients, client.userID)
				close(client.send)
				h.logger.Debug("ws client unregistered", "user_id", client.userID)
			}

		case env := <-h.outbound:
			client, ok := h.clients[env.userID]
			if !ok {
				continue
			}
			select {
			case client.send <- env.payload:
			default:
				h.logger.Warn("ws client send buffer full, dropping connection", "user_id", env.userID)
				close(client.send)
				delete(h.clients, env.userID)
			}
		}
	}
}
