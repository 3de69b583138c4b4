package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/dukerupert/apptbook/internal/model"
)

// Message is a live-update notification broadcast to all clients.
type Message struct {
	Type        string             `json:"type"`
	Action      string             `json:"action"`
	ID          int64              `json:"id"`
	Version     int64              `json:"version,omitempty"`
	Status      string             `json:"status,omitempty"`
	EventID     string             `json:"calendar_event_id,omitempty"`
	Appointment *model.Appointment `json:"appointment,omitempty"`
}

// Appointment actions.
const (
	ActionCreated        = "created"
	ActionUpdated        = "updated"
	ActionDeleted        = "deleted"
	ActionCalendarSynced = "calendar_synced"
)

// AppointmentMessage builds the message for action on a. a may be nil for
// deletions, in which case only id is sent.
func AppointmentMessage(action string, id int64, a *model.Appointment) Message {
	msg := Message{
		Type:   "appointment_" + action,
		Action: action,
		ID:     id,
	}
	if a != nil {
		msg.Version = a.Version
		msg.Status = a.DispositionStatus.Label()
		if a.CalendarEventID != nil {
			msg.EventID = *a.CalendarEventID
		}
		msg.Appointment = a
	}
	return msg
}

// Hub maintains the set of active WebSocket clients and broadcasts messages.
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

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("websocket client connected", "clients", h.ClientCount())
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast sends a message to all connected clients. Clients whose buffer
// is full miss the message.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("websocket client buffer full, dropping message", "type", msg.Type, "id", msg.ID)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
