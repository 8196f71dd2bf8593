package websocket

import (
	"context"
	"log/slog"
	"sync"
	"time"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/goshop/internal/live"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
)

// Client is a single WebSocket connection.
type Client struct {
	hub    *Hub
	conn   *ws.Conn
	logger *slog.Logger

	mu     sync.Mutex
	send   chan []byte
	closed bool

	// Latest unsent snapshot per view. A newer result overwrites an older
	// one, so a slow client skips intermediate states but always ends on
	// the current one.
	pending map[string][]byte
	order   []string
	dirty   chan struct{}

	subs []*live.Subscription
}

func NewClient(hub *Hub, conn *ws.Conn, logger *slog.Logger) *Client {
	return &Client{
		hub:     hub,
		conn:    conn,
		logger:  logger,
		send:    make(chan []byte, sendBufferSize),
		pending: make(map[string][]byte),
		dirty:   make(chan struct{}, 1),
	}
}

// enqueue queues data without blocking. It reports false when the queue is
// full or already closed.
func (c *Client) enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// setSnapshot stores data as the latest result for view and wakes the
// writer. It never blocks and never drops the newest result.
func (c *Client) setSnapshot(view string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if _, ok := c.pending[view]; !ok {
		c.order = append(c.order, view)
	}
	c.pending[view] = data
	select {
	case c.dirty <- struct{}{}:
	default:
	}
}

// takeSnapshots returns the pending snapshots in first-dirtied order and
// resets the slots.
func (c *Client) takeSnapshots() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, 0, len(c.order))
	for _, view := range c.order {
		out = append(out, c.pending[view])
		delete(c.pending, view)
	}
	c.order = c.order[:0]
	return out
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// Run registers the client, subscribes it to the requested views, and pumps
// messages until the connection closes.
func (c *Client) Run(ctx context.Context, registry *live.Registry, views Views, names []string) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	for _, name := range names {
		c.subs = append(c.subs, c.subscribe(registry, name, views[name]))
	}
	defer func() {
		for _, sub := range c.subs {
			sub.Unsubscribe()
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.writePump(ctx)
	c.readPump(ctx)
}

// readPump discards incoming messages and returns when the connection closes.
func (c *Client) readPump(ctx context.Context) {
	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			return
		}
	}
}

// writePump drains the change queue, flushes dirty snapshot slots and pings
// periodically to detect stale connections.
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.Write(ctx, ws.MessageText, msg); err != nil {
				return
			}
		case <-c.dirty:
			for _, msg := range c.takeSnapshots() {
				if err := c.conn.Write(ctx, ws.MessageText, msg); err != nil {
					return
				}
			}
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
