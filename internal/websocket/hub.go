package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dukerupert/goshop/internal/model"
)

const (
	TypeChange   = "change"
	TypeSnapshot = "snapshot"
	TypeError    = "error"
)

// Message is what the live feed sends to the view layer. Change messages
// describe a committed mutation; snapshot messages carry the fresh result of
// a subscribed view.
type Message struct {
	Type   string `json:"type"`
	Entity string `json:"entity,omitempty"`
	Action string `json:"action,omitempty"`
	ID     int64  `json:"id,omitempty"`
	Count  int64  `json:"count,omitempty"`
	View   string `json:"view,omitempty"`
	Data   any    `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
}

// NewChangeMessage converts a store change into a broadcastable message.
func NewChangeMessage(c model.Change) Message {
	return Message{
		Type:   TypeChange,
		Entity: c.Entity,
		Action: c.Action,
		ID:     c.ID,
		Count:  c.Count,
	}
}

func NewSnapshotMessage(view string, data any) Message {
	return Message{Type: TypeSnapshot, View: view, Data: data}
}

func (m Message) String() string {
	if m.Type == TypeChange {
		return fmt.Sprintf("%s_%s", m.Entity, m.Action)
	}
	return m.Type + ":" + m.View
}

// Hub maintains the set of connected clients and broadcasts change messages.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client and closes its send queue. Safe to call twice.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.closeSend()
	}
	h.mu.Unlock()
}

// Broadcast sends msg to every client. Clients with a full queue miss it.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		if !c.enqueue(data) {
			h.logger.Debug("client queue full, dropped message", "message", msg.String())
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
