package live

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"parkwash/backend/services/parking-service/internal/metrics"
	"parkwash/backend/services/parking-service/internal/service"
)

// Source produces the current open sessions with running cost.
type Source interface {
	Live(ctx context.Context) ([]service.LiveSession, error)
}

// Update is the message pushed to every client.
type Update struct {
	Type     string                `json:"type"`
	At       time.Time             `json:"at"`
	Sessions []service.LiveSession `json:"sessions"`
}

// Hub tracks live clients and periodically broadcasts open-session snapshots.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*Client
	source   Source
	interval time.Duration
	logger   *zap.Logger
}

// NewHub builds hub.
func NewHub(source Source, interval time.Duration, logger *zap.Logger) *Hub {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Hub{
		clients:  make(map[string]*Client),
		source:   source,
		interval: interval,
		logger:   logger,
	}
}

// Add registers new client.
func (h *Hub) Add(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID()] = client
	metrics.LiveClients.Set(float64(len(h.clients)))
}

// Remove removes client.
func (h *Hub) Remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, id)
	metrics.LiveClients.Set(float64(len(h.clients)))
}

// Count returns connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Start broadcasts a snapshot every interval until ctx is done.
func (h *Hub) Start(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if h.Count() == 0 {
				continue
			}
			msg, err := h.Snapshot(ctx)
			if err != nil {
				h.logger.Warn("failed to build live snapshot", zap.Error(err))
				continue
			}
			h.broadcast(msg)
		}
	}
}

// Snapshot encodes the current open sessions.
func (h *Hub) Snapshot(ctx context.Context) ([]byte, error) {
	sessions, err := h.source.Live(ctx)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Update{Type: "sessions", At: time.Now().UTC(), Sessions: sessions})
}

func (h *Hub) broadcast(msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		client.Send(msg)
	}
}
