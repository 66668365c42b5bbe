package server

import (
	"context"
	"sync"

	"github.com/coder/websocket"
	"github.com/prometheus/client_golang/prometheus"
)

// Client is a single WebSocket connection. Send is its broker
// subscription and may drop under load; Replies carries answers to this
// client's own requests and never drops.
type Client struct {
	ID       string
	PlayerID string
	Conn     *websocket.Conn
	Send     chan Message
	Replies  chan Message
}

// WritePump writes queued messages to the connection until ctx ends or
// a write fails.
func (c *Client) WritePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-c.Replies:
			if err := c.Conn.Write(ctx, websocket.MessageText, msg.Data); err != nil {
				return
			}
		case msg, ok := <-c.Send:
			if !ok {
				return
			}
			if err := c.Conn.Write(ctx, websocket.MessageText, msg.Data); err != nil {
				return
			}
		}
	}
}

// reply queues ev for this client alone, waiting for room until ctx
// ends. It reports whether ev was queued.
func (c *Client) reply(ctx context.Context, ev Event) bool {
	msg, err := encodeEvent(ev)
	if err != nil {
		return false
	}
	select {
	case c.Replies <- msg:
		return true
	case <-ctx.Done():
		return false
	}
}

// Hub tracks live WebSocket clients so they can be counted and closed on
// shutdown.
type Hub struct {
	mu      sync.Mutex
	clients map[string]*Client
	gauge   prometheus.Gauge
}

// NewHub creates a hub. gauge may be nil.
func NewHub(gauge prometheus.Gauge) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		gauge:   gauge,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ID] = c
	h.report()
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c.ID)
	h.report()
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// CloseAll sends a going-away close frame to every client.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for _, c := range h.clients {
		if c.Conn != nil {
			conns = append(conns, c.Conn)
		}
	}
	h.mu.Unlock()

	for _, conn := range conns {
		conn.Close(websocket.StatusGoingAway, "server shutting down")
	}
}

// report updates the gauge. h.mu must be held.
func (h *Hub) report() {
	if h.gauge != nil {
		h.gauge.Set(float64(len(h.clients)))
	}
}
