package service

import (
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"

	"signal_server/internal/models"
	"signal_server/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// Hub maintains active WebSocket subscribers keyed by channel and pushes
// one message per lifecycle transition to every subscriber of the order
// owner's channel.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]bool
	closed  bool
}

type client struct {
	conn    *websocket.Conn
	send    chan []byte
	channel string
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*client]bool),
	}
}

// Publish marshals the event and queues it to every subscriber of channel.
// Slow clients with a full buffer are dropped rather than blocking the
// lifecycle task.
func (h *Hub) Publish(channel string, event models.OrderEvent) error {
	message, err := sonic.Marshal(event)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		if c.channel != channel {
			continue
		}
		select {
		case c.send <- message:
		default:
			logger.Error("ws client on %s too slow, dropping message", channel)
		}
	}
	return nil
}

// Register takes ownership of an upgraded connection and subscribes it to
// the given channel. Returns after starting the read/write pumps.
func (h *Hub) Register(conn *websocket.Conn, channel string) {
	c := &client{
		conn:    conn,
		send:    make(chan []byte, 256),
		channel: channel,
	}
	if !h.attach(c) {
		_ = conn.Close()
		return
	}

	greeting, _ := sonic.Marshal(map[string]string{
		"type":    "connection_established",
		"message": "Connected to real-time order updates.",
	})
	c.send <- greeting

	go c.writePump(h)
	go c.readPump(h)

	logger.Info("ws client connected on %s", channel)
}

func (h *Hub) attach(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	h.clients[c] = true
	return true
}

func (h *Hub) detach(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
	}
}

// ClientCount reports active subscribers, for the admin health endpoint.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Shutdown отключает всех подписчиков.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for c := range h.clients {
		close(c.send)
		_ = c.conn.Close()
		delete(h.clients, c)
	}
}

// readPump discards inbound frames; the stream is one-way. It exists to
// notice closed connections and keep pong handling alive.
func (c *client) readPump(h *Hub) {
	defer func() {
		h.detach(c)
		_ = c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("ws read error: %v", err)
			}
			return
		}
	}
}

func (c *client) writePump(h *Hub) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
