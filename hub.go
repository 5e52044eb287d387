package main

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/ThakurMayank5/skribbl-rooms/internal/game"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = time.Minute
	pingPeriod     = 30 * time.Second
	maxMessageSize = 512 * 1024
	outboxSize     = 256
)

type Client struct {
	ID       game.ConnID
	Username string

	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(id game.ConnID, username string, conn *websocket.Conn) *Client {
	return &Client{
		ID:       id,
		Username: username,
		conn:     conn,
		send:     make(chan []byte, outboxSize),
		done:     make(chan struct{}),
	}
}

// enqueue never blocks; a client that cannot keep up loses frames.
func (c *Client) enqueue(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- data:
		return true
	default:
		log.Warn().Str("conn", string(c.ID)).Msg("⚠️ Outbox full, dropping frame")
		return false
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *Client) readPump(handle func(*Client, Message)) {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("conn", string(c.ID)).Msg("read error")
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Debug().Err(err).Str("conn", string(c.ID)).Msg("unmarshal error")
			continue
		}
		handle(c, msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Debug().Err(err).Str("conn", string(c.ID)).Msg("write error")
				c.close()
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// Hub tracks live connections and implements game.Broadcaster.
type Hub struct {
	mu      sync.RWMutex
	clients map[game.ConnID]*Client
}

func NewHub() *Hub {
	return &Hub{clients: make(map[game.ConnID]*Client)}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	total := len(h.clients)
	h.mu.Unlock()

	log.Info().Str("conn", string(c.ID)).Str("username", c.Username).Int("clients", total).Msg("🔌 Client connected")
}

func (h *Hub) Unregister(id game.ConnID) {
	h.mu.Lock()
	delete(h.clients, id)
	total := len(h.clients)
	h.mu.Unlock()

	log.Info().Str("conn", string(id)).Int("clients", total).Msg("❌ Client disconnected")
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Deliver marshals ev once and queues it for every recipient still connected.
func (h *Hub) Deliver(to []game.ConnID, ev game.Event) {
	if len(to) == 0 {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("type", ev.Type).Msg("Error marshaling event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, id := range to {
		if c, ok := h.clients[id]; ok {
			c.enqueue(data)
		}
	}
}
