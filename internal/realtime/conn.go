package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// writeWait is the deadline for a single outbound write.
	writeWait = 10 * time.Second

	// pongWait is how long the read side waits for life signs from the
	// peer before giving up on the connection.
	pongWait = 60 * time.Second

	// pingPeriod is the keepalive interval. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
)

// socket is the subset of *websocket.Conn the connection handler needs.
// Tests substitute an in-memory implementation.
type socket interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// Conn owns one live, authenticated websocket for its lifetime. Outbound
// frames pass through a bounded buffer drained by a single writer
// goroutine, so the broadcaster never blocks on socket I/O.
type Conn struct {
	sock     socket
	identity Identity
	send     chan []byte
	done     chan struct{}

	closeOnce sync.Once
	// onClose runs exactly once when the connection shuts down, on any
	// exit path. The handler uses it to unregister from the registry.
	onClose func(*Conn)

	logger *slog.Logger
}

// NewConn wraps an authenticated socket. sendBufferSize bounds the
// outbound buffer; a full buffer marks the connection as a slow consumer.
func NewConn(sock socket, identity Identity, sendBufferSize int, logger *slog.Logger) *Conn {
	if sendBufferSize <= 0 {
		sendBufferSize = 16
	}
	return &Conn{
		sock:     sock,
		identity: identity,
		send:     make(chan []byte, sendBufferSize),
		done:     make(chan struct{}),
		logger: logger.With(
			"component", "realtime_conn",
			"user_id", identity.UserID,
			"company_id", identity.CompanyID,
		),
	}
}

// Identity returns the authenticated principal behind this connection.
// It is immutable after construction.
func (c *Conn) Identity() Identity {
	return c.identity
}

// Enqueue offers an already encoded frame to the outbound buffer without
// blocking. It reports false when the buffer is full or the connection
// is closing; the caller decides what a refused delivery means.
func (c *Conn) Enqueue(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// Close shuts the connection down. Safe to call from any goroutine and
// any number of times; the underlying socket is closed and the onClose
// hook fires exactly once.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.sock.Close()
		if c.onClose != nil {
			c.onClose(c)
		}
		c.logger.Debug("connection closed")
	})
}

// readPump consumes inbound frames until the socket errors or closes.
// The only recognized message is the keepalive ping, answered with a
// pong on the outbound path; everything else is ignored.
func (c *Conn) readPump() {
	defer c.Close()

	_ = c.sock.SetReadDeadline(time.Now().Add(pongWait))
	c.sock.SetPongHandler(func(string) error {
		return c.sock.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.sock.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("unexpected close", "error", err)
			}
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			// Malformed frames keep the connection open.
			continue
		}
		if msg.Type == MessageTypePing {
			// Pongs ride the same outbound buffer as events, keeping a
			// single writer per socket.
			if !c.Enqueue(pongPayload) {
				c.logger.Debug("dropped pong, outbound buffer full")
			}
			// Any reaching frame counts as a life sign.
			_ = c.sock.SetReadDeadline(time.Now().Add(pongWait))
			continue
		}
		// Unknown message types are ignored.
	}
}

// writePump drains the outbound buffer and sends protocol-level pings.
// It is the only goroutine that writes to the socket.
func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			_ = c.sock.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.sock.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.sock.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// run starts both pumps and blocks until the read side exits.
func (c *Conn) run() {
	go c.writePump()
	c.readPump()
}
