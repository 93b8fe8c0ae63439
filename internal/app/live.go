package app

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const liveWriteTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local network use
	},
}

// LiveHub pushes snapshots to every connected websocket client.
type LiveHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	initial func() any
	log     *slog.Logger
}

// NewLiveHub returns a hub. initial, when non-nil, produces the message sent
// to a client right after it connects.
func NewLiveHub(initial func() any, logger *slog.Logger) *LiveHub {
	return &LiveHub{
		clients: make(map[*websocket.Conn]struct{}),
		initial: initial,
		log:     logger.With("component", "live"),
	}
}

// HandleWS upgrades the request and keeps the client registered until it
// disconnects. Incoming messages are discarded.
func (h *LiveHub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade error", "error", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	if h.initial != nil {
		if err := h.write(conn, h.initial()); err != nil {
			h.drop(conn)
			h.mu.Unlock()
			return
		}
	}
	h.mu.Unlock()
	h.log.Debug("client connected", "remote", r.RemoteAddr)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	h.drop(conn)
	h.mu.Unlock()
	h.log.Debug("client disconnected", "remote", r.RemoteAddr)
}

// Broadcast sends v to every client, dropping clients that fail.
func (h *LiveHub) Broadcast(v any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := h.write(conn, v); err != nil {
			h.log.Debug("dropping client", "error", err)
			h.drop(conn)
		}
	}
}

// Clients returns the number of connected clients.
func (h *LiveHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *LiveHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		h.drop(conn)
	}
}

// write and drop require h.mu.
func (h *LiveHub) write(conn *websocket.Conn, v any) error {
	_ = conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
	return conn.WriteJSON(v)
}

func (h *LiveHub) drop(conn *websocket.Conn) {
	if _, ok := h.clients[conn]; !ok {
		return
	}
	delete(h.clients, conn)
	_ = conn.Close()
}
