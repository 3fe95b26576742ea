package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/smokyabdulrahman/masjid-display/internal/board"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 8
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// client is one connected screen.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans boards out to the screens watching each mosque.
type Hub struct {
	mu      sync.Mutex
	clients map[string]map[*client]struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{clients: map[string]map[*client]struct{}{}}
}

// Sink returns a board.Sink broadcasting to the screens of mosque id.
func (h *Hub) Sink(id string) board.Sink {
	return board.SinkFunc(func(_ context.Context, b board.Board) error {
		payload, err := json.Marshal(b)
		if err != nil {
			return err
		}
		h.Broadcast(id, payload)
		return nil
	})
}

// Broadcast queues payload for every screen of mosque id. Screens that
// cannot keep up are disconnected.
func (h *Hub) Broadcast(id string, payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients[id] {
		select {
		case c.send <- payload:
		default:
			log.Warn().Str("mosque", id).Msg("dropping slow screen")
			h.removeLocked(id, c)
		}
	}
}

// Count reports how many screens watch mosque id.
func (h *Hub) Count(id string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[id])
}

func (h *Hub) add(id string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[id] == nil {
		h.clients[id] = map[*client]struct{}{}
	}
	h.clients[id][c] = struct{}{}
}

func (h *Hub) remove(id string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(id, c)
}

func (h *Hub) removeLocked(id string, c *client) {
	if _, ok := h.clients[id][c]; !ok {
		return
	}
	delete(h.clients[id], c)
	close(c.send)
	if len(h.clients[id]) == 0 {
		delete(h.clients, id)
	}
}

// Serve upgrades the request and streams boards for mosque id until the
// screen goes away. initial, if set, is sent first.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, id string, initial *board.Board) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	if initial != nil {
		if payload, err := json.Marshal(initial); err == nil {
			c.send <- payload
		}
	}
	h.add(id, c)
	log.Info().Str("mosque", id).Str("remote", r.RemoteAddr).Msg("screen connected")

	go c.writePump()
	c.readPump()

	h.remove(id, c)
	log.Info().Str("mosque", id).Str("remote", r.RemoteAddr).Msg("screen disconnected")
}

// readPump keeps the connection alive and returns when the screen closes.
func (c *client) readPump() {
	defer c.conn.Close()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
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
