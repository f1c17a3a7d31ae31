package websocket

import (
	"sync"
	"time"

	"realtime-chat/internal/protocol"
	"realtime-chat/pkg/logger"

	"github.com/gorilla/websocket"
)

// Client is one live authenticated connection. It is owned exclusively by the
// gateway: created on a successful handshake, torn down exactly once on
// disconnect or transport error.
type Client struct {
	ID     string
	UserID string
	Email  string

	conn    *websocket.Conn
	send    chan []byte
	gateway *Gateway

	mu       sync.Mutex
	closed   bool
	teardown sync.Once
}

// enqueue places a frame on the outbound queue without blocking. It returns
// false when the queue is closed or full; a full queue means the client is
// too slow to keep and the caller disconnects it.
func (c *Client) enqueue(frame []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// closeSend shuts the outbound queue. Safe to call at most once; guarded by
// the gateway's teardown path.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// closeTransport closes the underlying socket, which unblocks ReadPump and
// lets the normal teardown path run.
func (c *Client) closeTransport() {
	if c.conn != nil {
		c.conn.Close()
	}
}

// sendError delivers a scoped error event to this connection only.
func (c *Client) sendError(reason string) {
	frame, err := protocol.NewErrorEvent(reason)
	if err != nil {
		logger.Error("Error marshaling error event: %v", err)
		return
	}
	c.enqueue(frame)
}

// ReadPump reads frames off the socket and hands them to the gateway
// dispatcher. It owns the teardown trigger: whatever ends the read loop,
// cleanup runs on the way out.
func (c *Client) ReadPump() {
	defer func() {
		c.gateway.Disconnect(c)
		c.closeTransport()
	}()

	cfg := c.gateway.cfg
	c.conn.SetReadLimit(cfg.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("WebSocket error: %v", err)
			}
			break
		}
		c.gateway.Dispatch(c, message)
	}
}

// WritePump drains the outbound queue onto the socket and keeps the
// connection alive with pings.
func (c *Client) WritePump() {
	cfg := c.gateway.cfg
	ticker := time.NewTicker(cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.closeTransport()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Error("Write error: %v", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
