package websocket

import (
	"context"
	"log/slog"
	"sync"

	"github.com/lorrc/service-desk-analytics/internal/core/domain"
	"github.com/lorrc/service-desk-analytics/internal/core/ports"
)

// Hub maintains the set of active Clients and routes events to the clients
// subscribed to the technician an event is about.
type Hub struct {
	// clients maps a caller (folded token subject) to its connections.
	// A single user can have multiple connections (multiple tabs/devices).
	clients map[string]map[*Client]bool

	// rooms maps a folded technician name to subscribed clients.
	rooms map[string]map[*Client]bool

	broadcast chan domain.Event

	Register   chan *Client
	Unregister chan *Client

	// done is closed when Run returns.
	done chan struct{}

	// mu protects the clients and rooms maps
	mu sync.RWMutex

	logger *slog.Logger
}

// Ensure Hub implements the EventBroadcaster interface.
var _ ports.EventBroadcaster = (*Hub)(nil)

// NewHub creates a new WebSocket hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		broadcast:  make(chan domain.Event, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.With("component", "websocket_hub"),
	}
}

// Broadcast queues an event for delivery. It never blocks; when the queue
// is full the event is dropped and logged.
func (h *Hub) Broadcast(event domain.Event) error {
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("broadcast channel full, dropping event",
			"event_type", event.Type,
			"technician", event.Technician,
		)
	}
	return nil
}

// Run starts the hub's event loop and returns when ctx is cancelled. It
// must run in its own goroutine.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			close(h.done)
			return

		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case event := <-h.broadcast:
			h.broadcastEvent(event)
		}
	}
}

// Attach registers a client unless the hub has stopped.
func (h *Hub) Attach(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Detach unregisters a client unless the hub has stopped.
func (h *Hub) Detach(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

// registerClient adds a client and subscribes it to its own room and to any
// rooms it was given before attaching.
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.UserKey] == nil {
		h.clients[client.UserKey] = make(map[*Client]bool)
	}
	h.clients[client.UserKey][client] = true
	h.joinLocked(client, client.UserKey)
	for _, key := range client.GetSubscriptions() {
		h.joinLocked(client, key)
	}

	h.logger.Info("client registered",
		"user", client.UserKey,
		"total_connections", len(h.clients[client.UserKey]),
	)
}

// unregisterClient removes a client from the hub and all rooms
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if userClients, ok := h.clients[client.UserKey]; ok {
		if _, exists := userClients[client]; !exists {
			return
		}
		delete(userClients, client)
		if len(userClients) == 0 {
			delete(h.clients, client.UserKey)
		}
	} else {
		return
	}

	for _, room := range client.GetSubscriptions() {
		h.leaveLocked(client, room)
	}

	client.CloseSend()

	h.logger.Info("client unregistered", "user", client.UserKey)
}

// broadcastEvent sends an event to every client in the technician's room
func (h *Hub) broadcastEvent(event domain.Event) {
	key := domain.Fold(event.Technician)

	h.mu.RLock()
	room := h.rooms[key]
	clients := make([]*Client, 0, len(room))
	for client := range room {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	if len(clients) == 0 {
		return
	}

	h.logger.Debug("broadcasting event",
		"event_type", event.Type,
		"technician", event.Technician,
		"client_count", len(clients),
	)

	for _, client := range clients {
		select {
		case client.Send <- event:
		default:
			h.logger.Warn("client send buffer full, unregistering", "user", client.UserKey)
			h.unregisterClient(client)
		}
	}
}

// subscribe adds a client to a technician's room
func (h *Hub) subscribe(client *Client, technician string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.joinLocked(client, domain.Fold(technician))
}

// unsubscribe removes a client from a technician's room. A client always
// stays in its own room.
func (h *Hub) unsubscribe(client *Client, technician string) {
	key := domain.Fold(technician)
	if key == client.UserKey {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(client, key)
}

func (h *Hub) joinLocked(client *Client, key string) {
	if key == "" {
		return
	}
	if h.rooms[key] == nil {
		h.rooms[key] = make(map[*Client]bool)
	}
	h.rooms[key][client] = true
	client.AddSubscription(key)
}

func (h *Hub) leaveLocked(client *Client, key string) {
	if room, ok := h.rooms[key]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, key)
		}
	}
	client.RemoveSubscription(key)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, userClients := range h.clients {
		for client := range userClients {
			client.CloseSend()
		}
	}
	h.clients = make(map[string]map[*Client]bool)
	h.rooms = make(map[string]map[*Client]bool)
}

// GetClientCount returns the total number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, userClients := range h.clients {
		count += len(userClients)
	}
	return count
}

// GetClientsInRoom returns the number of clients following a technician
func (h *Hub) GetClientsInRoom(technician string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[domain.Fold(technician)])
}
