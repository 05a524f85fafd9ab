package notification

import (
	"sync"

	"go.uber.org/zap"

	"rasa-cafe/metrics"
)

const clientBuffer = 16

// Client is the receiving end of one open stream.
type Client struct {
	events chan Event
}

func NewClient() *Client {
	return &Client{events: make(chan Event, clientBuffer)}
}

func (c *Client) Events() <-chan Event {
	return c.events
}

// deliver never blocks; a client that stopped reading loses the event.
func (c *Client) deliver(e Event) bool {
	select {
	case c.events <- e:
		return true
	default:
		return false
	}
}

// Hub maps each user to at most one connected client. Delivery is best
// effort: events for users without a client are dropped, never queued.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	log     *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		clients: make(map[string]*Client),
		log:     log,
	}
}

// Register makes client the user's current stream, superseding any earlier one.
func (h *Hub) Register(userID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[userID]; ok {
		h.log.Debug("stream superseded", zap.String("user_id", userID))
	}
	h.clients[userID] = client
	metrics.StreamClients.Set(float64(len(h.clients)))
}

func (h *Hub) Unregister(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, userID)
	metrics.StreamClients.Set(float64(len(h.clients)))
}

// Release unregisters the user only while client is still the current one.
func (h *Hub) Release(userID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == client {
		delete(h.clients, userID)
		metrics.StreamClients.Set(float64(len(h.clients)))
	}
}

// SendToUser reports whether the event was handed to a connected client.
func (h *Hub) SendToUser(userID string, e Event) bool {
	h.mu.RLock()
	client, ok := h.clients[userID]
	h.mu.RUnlock()
	if !ok {
		return false
	}
	if !client.deliver(e) {
		h.log.Warn("dropping event for slow client",
			zap.String("user_id", userID),
			zap.String("type", e.Type))
		return false
	}
	return true
}

// Broadcast sends e to every client except excludeUserID's and returns how
// many accepted it.
func (h *Hub) Broadcast(e Event, excludeUserID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	sent := 0
	for userID, client := range h.clients {
		if userID == excludeUserID {
			continue
		}
		if client.deliver(e) {
			sent++
		}
	}
	return sent
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
