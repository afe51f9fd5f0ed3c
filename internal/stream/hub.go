// Package stream pushes freshly computed prediction batches to websocket
// subscribers. Cache hits are never rebroadcast; clients only see batches
// the scanner actually recomputed.
package stream

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/courtside/internal/config"
	"github.com/yourusername/courtside/internal/metrics"
	"github.com/yourusername/courtside/internal/scanner"
)

// broadcastBuffer bounds in-flight batches; a full buffer drops the batch
// rather than stalling the scanner
const broadcastBuffer = 64

// defaultSendBuffer is the per-client send buffer when the config leaves
// stream.send_buffer unset
const defaultSendBuffer = 256

// Hub maintains the set of active clients and fans batches out to them
type Hub struct {
	clients   map[*Client]bool
	clientsMu sync.RWMutex

	broadcast  chan scanner.Batch
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	sendBuffer int
	logger     *logrus.Logger
}

// NewHub creates a hub. Run must be started before clients connect.
func NewHub(cfg config.StreamConfig, logger *logrus.Logger) *Hub {
	sendBuffer := cfg.SendBuffer
	if sendBuffer <= 0 {
		sendBuffer = defaultSendBuffer
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan scanner.Batch, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		sendBuffer: sendBuffer,
		logger:     logger,
	}
}

// Run is the hub's main loop. It returns when ctx is cancelled, after
// closing every client's send channel.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case c := <-h.register:
			h.registerClient(c)
		case c := <-h.unregister:
			h.unregisterClient(c)
		case batch := <-h.broadcast:
			h.fanOut(batch)
		}
	}
}

// Register adds a client to the hub. A no-op after shutdown.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

// Unregister removes a client from the hub. A no-op after shutdown, so
// pump goroutines never block on a stopped hub.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast queues a batch for fan-out without blocking the caller.
// Implements scanner.Broadcaster.
func (h *Hub) Broadcast(batch scanner.Batch) {
	select {
	case h.broadcast <- batch:
	default:
		if h.logger != nil {
			h.logger.WithField("scope", batch.Scope).Warn("Broadcast buffer full, dropping batch")
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

func (h *Hub) registerClient(c *Client) {
	h.clientsMu.Lock()
	h.clients[c] = true
	total := len(h.clients)
	h.clientsMu.Unlock()

	metrics.StreamClients.Set(float64(total))
	if h.logger != nil {
		h.logger.WithFields(logrus.Fields{"client": c.ID, "total": total}).Info("Stream client connected")
	}
}

func (h *Hub) unregisterClient(c *Client) {
	h.clientsMu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	total := len(h.clients)
	h.clientsMu.Unlock()

	metrics.StreamClients.Set(float64(total))
	if h.logger != nil {
		h.logger.WithFields(logrus.Fields{"client": c.ID, "total": total}).Info("Stream client disconnected")
	}
}

func (h *Hub) fanOut(batch scanner.Batch) {
	h.clientsMu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clientsMu.RUnlock()

	for _, c := range clients {
		if !c.wantsScope(batch.Scope) {
			continue
		}
		if !c.trySend(batch) {
			// A full send buffer means the client stopped reading
			if h.logger != nil {
				h.logger.WithField("client", c.ID).Warn("Stream client too slow, disconnecting")
			}
			go h.Unregister(c)
		}
	}
}

func (h *Hub) shutdown() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
	close(h.done)
	metrics.StreamClients.Set(0)
}
