package websocket

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// The console only pushes; anything a tab sends is read and discarded
	maxMessageSize = 512

	// sendBuffer holds events queued for one tab. A full list snapshot per
	// search keystroke fits comfortably.
	sendBuffer = 64

	// CloseReasonSessionEnded is sent in the close frame on logout or expiry
	CloseReasonSessionEnded = "session ended"
)

// Client is one browser tab subscribed to a console session's events
type Client struct {
	id        string
	sessionID uuid.UUID
	conn      *websocket.Conn
	hub       *Hub
	send      chan []byte

	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
	done      chan struct{}
}

// NewClient creates a client for an upgraded connection
func NewClient(conn *websocket.Conn, sessionID uuid.UUID, hub *Hub) *Client {
	return &Client{
		id:        uuid.New().String(),
		sessionID: sessionID,
		conn:      conn,
		hub:       hub,
		send:      make(chan []byte, sendBuffer),
		done:      make(chan struct{}),
	}
}

// ID returns the client's unique identifier
func (c *Client) ID() string {
	return c.id
}

// SessionID returns the console session the client belongs to
func (c *Client) SessionID() uuid.UUID {
	return c.sessionID
}

// Send queues a message without blocking
func (c *Client) Send(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrClientClosed
	}

	select {
	case c.send <- data:
		return nil
	default:
		return ErrSlowClient
	}
}

// Close stops the write pump, which sends a close frame and releases the
// connection. Safe to call more than once.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()
	})
	return nil
}

// ReadPump keeps the read deadline fresh through pongs and detects the
// browser going away. Run it in its own goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().
					Err(err).
					Str("client_id", c.id).
					Str("session_id", c.sessionID.String()).
					Msg("WebSocket unexpected close")
			}
			return
		}
	}
}

// WritePump delivers queued events in order and pings the tab. It owns the
// connection and closes it on exit. Run it in its own goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
		close(c.done)
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				frame := websocket.FormatCloseMessage(websocket.CloseNormalClosure, CloseReasonSessionEnded)
				_ = c.conn.WriteMessage(websocket.CloseMessage, frame)
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Warn().
					Err(err).
					Str("client_id", c.id).
					Str("session_id", c.sessionID.String()).
					Msg("WebSocket write error")
				c.hub.Unregister(c)
				_ = c.Close()
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.hub.Unregister(c)
				_ = c.Close()
				return
			}
		}
	}
}

// Done is closed once the write pump has released the connection
func (c *Client) Done() <-chan struct{} {
	return c.done
}
