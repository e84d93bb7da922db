package ws

import (
	"encoding/json"
	"sync"

	"devmatch-service/internal/logger"
	"devmatch-service/internal/models"
)

// Hub is the process-wide presence registry and room table. Each user has at
// most one registered client; rooms are chat ids plus one private room per
// user id.
type Hub struct {
	clients map[string]*Client
	rooms   map[string]map[*Client]struct{}
	mu      sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[*Client]struct{}),
	}
}

// Register makes c the active client of its user and returns the client it
// replaced, if any.
func (h *Hub) Register(c *Client) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()
	previous := h.clients[c.info.UserID]
	h.clients[c.info.UserID] = c
	if previous == c {
		return nil
	}
	return previous
}

// Unregister drops c from every room. It reports whether c was still the
// registered client of its user; only then is the user considered offline.
func (h *Hub) Unregister(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for room, members := range h.rooms {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	if h.clients[c.info.UserID] != c {
		return false
	}
	delete(h.clients, c.info.UserID)
	return true
}

// Join subscribes c to room.
func (h *Hub) Join(room string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[room]; !ok {
		h.rooms[room] = make(map[*Client]struct{})
	}
	h.rooms[room][c] = struct{}{}
}

// Leave unsubscribes c from room.
func (h *Hub) Leave(room string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.rooms[room]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// IsOnline reports whether userID has a registered client.
func (h *Hub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

func (h *Hub) OnlineCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// EmitToUser sends an event to the private room of userID.
func (h *Hub) EmitToUser(userID string, event string, data any) {
	h.EmitToRoom(userID, "", event, data)
}

// EmitToRoom sends an event to every subscriber of room except the clients
// of exceptUserID.
func (h *Hub) EmitToRoom(room string, exceptUserID string, event string, data any) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.rooms[room]))
	for c := range h.rooms[room] {
		if exceptUserID != "" && c.info.UserID == exceptUserID {
			continue
		}
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	h.deliver(targets, event, data)
}

// Broadcast sends an event to every registered client except exceptUserID's.
func (h *Hub) Broadcast(exceptUserID string, event string, data any) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for userID, c := range h.clients {
		if userID != exceptUserID {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	h.deliver(targets, event, data)
}

func (h *Hub) deliver(targets []*Client, event string, data any) {
	if len(targets) == 0 {
		return
	}
	payload, err := json.Marshal(models.SocketEvent{Event: event, Data: data})
	if err != nil {
		logger.Error().Err(err).Str("event", event).Msg("websocket encode failed")
		return
	}
	for _, c := range targets {
		if !c.enqueue(payload) {
			logger.Warn().Str("conn_id", c.info.ConnID).Str("user_id", c.info.UserID).Msg("websocket queue full, dropping connection")
			c.close("send queue full")
		}
	}
}
