package push

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/jobhub/jobboard/internal/core/domain"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = (pongWait * 9) / 10
	sendBuffer   = 32
)

type conn struct {
	ws   *websocket.Conn
	send chan []byte
}

// Hub tracks the backend's live push connections per user.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]map[*conn]struct{}
	log   zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{conns: make(map[string]map[*conn]struct{}), log: log}
}

// Serve owns ws for userID until the peer disconnects.
func (h *Hub) Serve(userID string, ws *websocket.Conn) {
	c := &conn{ws: ws, send: make(chan []byte, sendBuffer)}
	h.add(userID, c)
	h.log.Debug().Str("user_id", userID).Msg("push client connected")

	go h.writePump(c)
	h.readPump(c)

	h.remove(userID, c)
	close(c.send)
	h.log.Debug().Str("user_id", userID).Msg("push client disconnected")
}

// Send delivers ev to every connection of userID and returns how many
// accepted it. Slow connections drop the event.
func (h *Hub) Send(userID string, ev domain.PushEvent) int {
	data, err := json.Marshal(ev)
	if err != nil {
		h.log.Error().Err(err).Msg("encode push event")
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := 0
	for c := range h.conns[userID] {
		select {
		case c.send <- data:
			delivered++
		default:
			h.log.Warn().Str("user_id", userID).Msg("push buffer full, dropping event")
		}
	}
	return delivered
}

// Connections returns the number of live connections of userID.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID])
}

func (h *Hub) add(userID string, c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.conns[userID]
	if !ok {
		set = make(map[*conn]struct{})
		h.conns[userID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) remove(userID string, c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.conns[userID]
	delete(set, c)
	if len(set) == 0 {
		delete(h.conns, userID)
	}
}

// readPump discards inbound frames; it exists to process control frames
// and notice disconnects.
func (h *Hub) readPump(c *conn) {
	c.ws.SetReadLimit(4096)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *conn) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
