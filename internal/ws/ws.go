package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/liveresults/liveresults/internal/hub"
	"github.com/liveresults/liveresults/internal/results"
)

const (
	// writeTimeout bounds every frame written to a viewer.
	writeTimeout = 10 * time.Second

	// pongWait is the read deadline, extended by every pong.
	pongWait = 60 * time.Second

	// pingPeriod must stay below pongWait.
	pingPeriod = pongWait * 9 / 10

	// maxInboundBytes caps frames from viewers; they only send control frames.
	maxInboundBytes = 512

	// enqueueTimeout bounds how long Send waits for room in a full buffer.
	enqueueTimeout = 2 * time.Second

	// DefaultSendBuffer is the per-client outgoing message buffer depth.
	DefaultSendBuffer = 256
)

// Errors returned by a client's Send.
var (
	ErrClosed         = errors.New("ws: connection closed")
	ErrSendBufferFull = errors.New("ws: send buffer full")
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  512,
	WriteBufferSize: 8192,
	// Viewers are anonymous; origin policy belongs to the reverse proxy.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Registry is the part of the hub the transport needs.
type Registry interface {
	Connect(ctx context.Context, sub hub.Subscriber) error
	Disconnect(sub hub.Subscriber)
}

// Handler upgrades HTTP requests to WebSocket connections and registers each
// one as a hub subscriber for as long as it stays open.
type Handler struct {
	registry   Registry
	sendBuffer int

	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewHandler creates a Handler. sendBuffer <= 0 selects DefaultSendBuffer.
func NewHandler(r Registry, sendBuffer int) *Handler {
	if sendBuffer <= 0 {
		sendBuffer = DefaultSendBuffer
	}
	return &Handler{
		registry:   r,
		sendBuffer: sendBuffer,
		clients:    make(map[*client]struct{}),
	}
}

// Run blocks until ctx is cancelled, then closes every open connection.
func (h *Handler) Run(ctx context.Context) {
	<-ctx.Done()
	h.closeAll()
}

// Count returns the number of open connections.
func (h *Handler) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the connection, replays the current state through the
// registry, then streams broadcasts until the client goes away.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered with an HTTP error.
		return
	}

	c := newClient(conn, h.sendBuffer)
	h.track(c)
	defer h.untrack(c)
	go c.writePump()

	if err := h.registry.Connect(r.Context(), c); err != nil {
		slog.Warn("ws: connect failed", "id", c.id, "remote", r.RemoteAddr, "err", err)
		c.close()
		return
	}
	defer func() {
		h.registry.Disconnect(c)
		c.close()
	}()

	c.readPump()
}

func (h *Handler) track(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Handler) untrack(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

func (h *Handler) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.close()
	}
}

// client is one connected WebSocket viewer. It implements hub.Subscriber.
type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte

	once sync.Once
	done chan struct{}
}

func newClient(conn *websocket.Conn, buf int) *client {
	return &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, buf),
		done: make(chan struct{}),
	}
}

func (c *client) ID() string { return c.id }

// Send encodes msg and queues it for the write pump. It waits at most
// enqueueTimeout for buffer space.
func (c *client) Send(ctx context.Context, msg results.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	select {
	case c.send <- data:
		return nil
	default:
	}

	t := time.NewTimer(enqueueTimeout)
	defer t.Stop()
	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		c.close()
		return ErrSendBufferFull
	}
}

func (c *client) close() {
	c.once.Do(func() { close(c.done) })
}

// writePump is the only writer on the connection. It forwards queued
// messages, pings on pingPeriod and sends a close frame once the client is
// closed.
func (c *client) writePump() {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		c.close()
		c.conn.Close()
	}()

	for {
		var err error
		select {
		case msg := <-c.send:
			err = c.write(websocket.TextMessage, msg)
		case <-ping.C:
			err = c.write(websocket.PingMessage, nil)
		case <-c.done:
			c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "")) //nolint:errcheck
			return
		}
		if err != nil {
			slog.Debug("ws: write failed", "id", c.id, "err", err)
			return
		}
	}
}

func (c *client) write(messageType int, data []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)) //nolint:errcheck
	return c.conn.WriteMessage(messageType, data)
}

// readPump discards viewer frames and keeps the read deadline alive on pongs.
// It returns when the connection fails or the viewer goes away.
func (c *client) readPump() {
	defer c.conn.Close()
	c.conn.SetReadLimit(maxInboundBytes)
	c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			return
		}
	}
}
