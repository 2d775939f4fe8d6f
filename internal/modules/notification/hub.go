package notification

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 16
)

// Client is one registered connection. Its writer goroutine owns every write
// to conn: queued events and pings.
type Client struct {
	conn      *websocket.Conn
	send      chan Event
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(conn *websocket.Conn, buffer int) *Client {
	return &Client{
		conn: conn,
		send: make(chan Event, buffer),
		done: make(chan struct{}),
	}
}

// close stops the writer and closes the connection; safe to call repeatedly.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// writePump drains the send queue and pings every pingPeriod until the client
// is closed. onError runs when a write fails.
func (c *Client) writePump(onError func()) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case ev := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(ev); err != nil {
				onError()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				onError()
				return
			}
		}
	}
}

// Hub keeps at most one live connection per user.
type Hub struct {
	clients map[int64]*Client
	mutex   sync.RWMutex
	now     func() time.Time
	buffer  int
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[int64]*Client),
		now:     time.Now,
		buffer:  sendBuffer,
	}
}

// Register replaces any previous connection of the user and starts the
// connection's writer.
func (h *Hub) Register(userID int64, conn *websocket.Conn) *Client {
	c := newClient(conn, h.buffer)

	h.mutex.Lock()
	if old, exists := h.clients[userID]; exists {
		old.close()
	}
	h.clients[userID] = c
	h.mutex.Unlock()

	go c.writePump(func() { h.Unregister(userID, c) })
	return c
}

// Unregister drops c if it is still the user's current connection.
func (h *Hub) Unregister(userID int64, c *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if current, exists := h.clients[userID]; exists && current == c {
		c.close()
		delete(h.clients, userID)
	}
}

// Notify queues an event for the user without waiting for the socket. It
// reports whether the user was online and the event was queued. A client whose
// queue is full is disconnected.
func (h *Hub) Notify(userID int64, eventType string, data any) bool {
	h.mutex.RLock()
	c, exists := h.clients[userID]
	h.mutex.RUnlock()

	if !exists {
		return false
	}

	ev := Event{Type: eventType, Data: data, CreatedAt: h.now().UTC()}
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- ev:
		return true
	default:
		h.Unregister(userID, c)
		return false
	}
}

func (h *Hub) IsOnline(userID int64) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	_, exists := h.clients[userID]
	return exists
}

func (h *Hub) OnlineCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.clients)
}

// Close disconnects everyone; used on shutdown.
func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for userID, c := range h.clients {
		c.close()
		delete(h.clients, userID)
	}
}
