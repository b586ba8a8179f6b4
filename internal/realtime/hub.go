package realtime

import (
	"encoding/json"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 4 * 1024
	sendBuffer = 64
)

// Message is pushed to websocket clients.
type Message struct {
	Type       string `json:"type"`
	ResourceID string `json:"resource_id,omitempty"`
	Payload    any    `json:"payload,omitempty"`
}

const (
	MessageStatus = "status"
	MessageError  = "error"
)

type clientMessage struct {
	Type       string `json:"type"`
	ResourceID string `json:"resource_id"`
}

// connection represents a single WebSocket client
type connection struct {
	userID    string
	conn      *websocket.Conn
	send      chan []byte
	resources map[string]bool
}

// Hub tracks websocket clients and the resources each one watches.
type Hub struct {
	mu          sync.RWMutex
	connections map[*connection]struct{}
	onSubscribe func(resourceID string)
}

func NewHub() *Hub {
	return &Hub{
		connections: make(map[*connection]struct{}),
	}
}

// OnSubscribe sets a hook called after a client starts watching a resource.
func (h *Hub) OnSubscribe(fn func(resourceID string)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onSubscribe = fn
}

func (h *Hub) register(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[c] = struct{}{}
}

func (h *Hub) unregister(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.connections[c]; ok {
		delete(h.connections, c)
		close(c.send)
	}
}

func (h *Hub) subscribe(c *connection, resourceID string) {
	if resourceID == "" {
		return
	}
	h.mu.Lock()
	c.resources[resourceID] = true
	hook := h.onSubscribe
	h.mu.Unlock()

	if hook != nil {
		hook(resourceID)
	}
}

func (h *Hub) unsubscribe(c *connection, resourceID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(c.resources, resourceID)
}

// BroadcastToResource sends msg to every client watching resourceID and
// returns how many clients it was queued for. Slow clients are skipped.
func (h *Hub) BroadcastToResource(resourceID string, msg *Message) int {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("realtime: marshal %s: %v", msg.Type, err)
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	sent := 0
	for c := range h.connections {
		if !c.resources[resourceID] {
			continue
		}
		select {
		case c.send <- data:
			sent++
		default:
		}
	}
	return sent
}

// SubscribedResources lists every resource at least one client watches.
func (h *Hub) SubscribedResources() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[string]struct{})
	for c := range h.connections {
		for id := range c.resources {
			seen[id] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// ServeWS registers a new connection and blocks until it disconnects.
func (h *Hub) ServeWS(conn *websocket.Conn, userID string, initial []string) {
	c := &connection{
		userID:    userID,
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
		resources: make(map[string]bool),
	}

	h.register(c)
	go h.writePump(c)

	for _, id := range initial {
		h.subscribe(c, id)
	}
	h.readPump(c)
}

func (h *Hub) readPump(c *connection) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("realtime: read user_id=%s: %v", c.userID, err)
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.reply(c, &Message{Type: MessageError, Payload: "invalid json"})
			continue
		}

		switch msg.Type {
		case "subscribe":
			h.subscribe(c, msg.ResourceID)
		case "unsubscribe":
			h.unsubscribe(c, msg.ResourceID)
		default:
			h.reply(c, &Message{Type: MessageError, Payload: "unknown message type: " + msg.Type})
		}
	}
}

func (h *Hub) reply(c *connection, msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.connections[c]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (h *Hub) writePump(c *connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
