// Package events pushes library change notifications to connected reader
// clients over WebSocket, so open shelf and library views refresh without
// polling.
package events

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	BookImported = "book.imported"
	BookDeleted  = "book.deleted"
	ShelfUpdated = "shelf.update"
)

type Event struct {
	Type    string    `json:"type"`
	Payload any       `json:"payload,omitempty"`
	At      time.Time `json:"at"`
}

type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

type Stats struct {
	Clients int `json:"clients"`
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]struct{})}
}

func (h *Hub) Add(ws *websocket.Conn) {
	h.mu.Lock()
	h.clients[ws] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) Remove(ws *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, ws)
	h.mu.Unlock()
	_ = ws.Close()
}

// Broadcast sends one event to every connected client. Clients that fail
// the write are dropped; slow consumers are not worth stalling imports for.
func (h *Hub) Broadcast(eventType string, payload any) {
	b, err := json.Marshal(Event{Type: eventType, Payload: payload, At: time.Now().UTC()})
	if err != nil {
		return
	}
	b = append(b, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	for ws := range h.clients {
		if err := ws.WriteMessage(websocket.TextMessage, b); err != nil {
			_ = ws.Close()
			delete(h.clients, ws)
		}
	}
}

func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Stats{Clients: len(h.clients)}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin checking happens at the reverse proxy; readers connect from
	// dev ports and packaged webviews with unpredictable origins.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Handler upgrades the request and parks the connection in the hub until
// the peer goes away. The stream is one-way, server to reader; incoming
// frames are drained and discarded.
func (h *Hub) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		h.Add(conn)
		log.Printf("[events] client connected, %d active", h.Stats().Clients)
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"hello"}`+"\n"))

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}

		h.Remove(conn)
		log.Println("[events] client disconnected")
	}
}
