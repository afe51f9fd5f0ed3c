package stream

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/courtside/internal/cache"
	"github.com/yourusername/courtside/internal/scanner"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
)

// subscribeMessage is the only inbound message clients may send. An empty
// scope list subscribes to every batch.
type subscribeMessage struct {
	Type   string   `json:"type"`
	Scopes []string `json:"scopes"`
}

// Client is one websocket subscriber
type Client struct {
	ID   string
	conn *websocket.Conn
	hub  *Hub
	send chan scanner.Batch

	scopesMu sync.RWMutex
	scopes   map[string]bool

	logger *logrus.Logger
}

// NewClient wraps an upgraded websocket connection. The send buffer size
// comes from the hub's stream configuration. The caller starts ReadPump
// and WritePump and registers the client with the hub.
func NewClient(conn *websocket.Conn, hub *Hub, logger *logrus.Logger) *Client {
	return &Client{
		ID:     uuid.New().String(),
		conn:   conn,
		hub:    hub,
		send:   make(chan scanner.Batch, hub.sendBuffer),
		scopes: make(map[string]bool),
		logger: logger,
	}
}

// ReadPump consumes subscribe messages and pongs until the peer goes away
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg subscribeMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) && c.logger != nil {
				c.logger.WithField("client", c.ID).WithError(err).Debug("Stream client closed unexpectedly")
			}
			return
		}
		if msg.Type == "subscribe" {
			c.setScopes(msg.Scopes)
		}
	}
}

// WritePump forwards batches to the peer and keeps the connection alive
// with pings
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case batch, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(batch); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) trySend(batch scanner.Batch) bool {
	select {
	case c.send <- batch:
		return true
	default:
		return false
	}
}

func (c *Client) setScopes(scopes []string) {
	c.scopesMu.Lock()
	defer c.scopesMu.Unlock()
	c.scopes = make(map[string]bool, len(scopes))
	for _, s := range scopes {
		c.scopes[s] = true
	}
}

// wantsScope reports whether the client subscribed to this batch's scope.
// No subscription means everything; the all-scan matches the "all" scope.
func (c *Client) wantsScope(scope string) bool {
	c.scopesMu.RLock()
	defer c.scopesMu.RUnlock()
	if len(c.scopes) == 0 {
		return true
	}
	if scope == cache.AllScanKey {
		return c.scopes[string(cache.ScopeAll)]
	}
	return c.scopes[scope]
}
