// Package guibus is the local pub/sub transport between the Game
// Session Listener and the GUI collaborator (out of scope per spec,
// transport unspecified there). Modeled directly on the teacher's
// cmd/real-server/websocket.go hub: register/unregister channels, a
// broadcast channel, a write pump per client with ping keepalive.
package guibus

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Event names emitted to the GUI, per the external-interfaces contract.
const (
	EventRecordingsChanged  = "RecordingsChanged"
	EventMetadataChanged    = "MetadataChanged"
	EventMarkerflagsChanged = "MarkerflagsChanged"
	EventRecordingStarted   = "RecordingStarted"
	EventGameDetected       = "GameDetected"
	EventRecordingFinished  = "RecordingFinished"
)

// Message is the JSON envelope written to every connected GUI client.
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

type client struct {
	conn *websocket.Conn
	send chan Message
}

// Hub fans broadcast events out to every connected GUI client.
type Hub struct {
	clients    map[*client]struct{}
	broadcast  chan Message
	register   chan *client
	unregister chan *client
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*client]struct{}),
		broadcast:  make(chan Message, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
	}
}

// Run drains the hub's channels until ctx-less shutdown (the hub lives
// for the process lifetime; callers simply stop calling Emit).
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			h.mu.Unlock()
		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
		case msg := <-h.broadcast:
			h.mu.RLock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					log.Printf("[guibus] client send buffer full, dropping")
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Emit queues an event for broadcast to every connected GUI client.
func (h *Hub) Emit(eventType string, data interface{}) {
	msg := Message{Type: eventType, Data: data, Timestamp: time.Now().Format(time.RFC3339)}
	select {
	case h.broadcast <- msg:
	default:
		log.Printf("[guibus] broadcast queue full, dropping %s", eventType)
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true }, // local-only control API
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// ServeHTTP upgrades a connection and registers it with the hub.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[guibus] upgrade failed: %v", err)
		return
	}
	c := &client{conn: conn, send: make(chan Message, 16)}
	h.register <- c
	go c.writePump()
	go c.readPump(h)
}

func (c *client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *client) readPump(h *Hub) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
