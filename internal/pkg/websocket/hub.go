package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yigit/campusfound/internal/app/models"
	"github.com/yigit/campusfound/internal/pkg/metrics"
)

const deliveryBuffer = 256

// Event is what connected clients receive
type Event struct {
	Type         string               `json:"type"`
	Notification *models.Notification `json:"notification"`
}

type delivery struct {
	userID uuid.UUID
	data   []byte
}

// Hub keeps the open connections of each user and pushes new notifications to them
type Hub struct {
	// Connected clients keyed by user; a user may have several tabs open
	clients map[uuid.UUID]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	deliver    chan delivery
	done       chan struct{}

	mu     sync.RWMutex
	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan delivery, deliveryBuffer),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run serves registrations and deliveries until ctx is done, then closes every client
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case d := <-h.deliver:
			h.deliverTo(d)
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]struct{})
	}
	h.clients[client.userID][client] = struct{}{}
	metrics.WebSocketConnections.Inc()

	h.logger.Debug().
		Str("userID", client.userID.String()).
		Str("addr", client.conn.RemoteAddr().String()).
		Msg("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(client)
}

func (h *Hub) dropLocked(client *Client) {
	conns, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, ok := conns[client]; !ok {
		return
	}
	delete(conns, client)
	close(client.send)
	metrics.WebSocketConnections.Dec()
	if len(conns) == 0 {
		delete(h.clients, client.userID)
	}

	h.logger.Debug().Str("userID", client.userID.String()).Msg("Client unregistered")
}

func (h *Hub) deliverTo(d delivery) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients[d.userID] {
		select {
		case client.send <- d.data:
		default:
			// slow consumer
			h.logger.Warn().Str("userID", d.userID.String()).Msg("Dropping websocket client with full buffer")
			h.dropLocked(client)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, conns := range h.clients {
		for client := range conns {
			h.dropLocked(client)
		}
	}
}

// Publish queues a stored notification for the user's open connections.
// It never blocks; when the queue is full the push is skipped since the
// notification stays readable through the API.
func (h *Hub) Publish(userID uuid.UUID, n *models.Notification) {
	data, err := json.Marshal(Event{Type: "notification", Notification: n})
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to marshal notification event")
		return
	}
	select {
	case h.deliver <- delivery{userID: userID, data: data}:
	default:
		h.logger.Warn().Str("userID", userID.String()).Msg("Notification push queue full")
	}
}

// ClientCount returns the number of open connections of a user
func (h *Hub) ClientCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
