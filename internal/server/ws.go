package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/gesture"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

const (
	clientBuffer = 16
	writeTimeout = 2 * time.Second
)

// EventMessage is the JSON frame sent to WebSocket clients per gesture.
type EventMessage struct {
	Type        string  `json:"type"`
	X           int     `json:"x"`
	Y           int     `json:"y"`
	Value       float64 `json:"value"`
	FingerCount int     `json:"finger_count"`
	TimestampMs int64   `json:"timestamp_ms"`
}

func newEventMessage(ev gesture.Event) EventMessage {
	return EventMessage{
		Type:        ev.Type.String(),
		X:           ev.X,
		Y:           ev.Y,
		Value:       ev.Value,
		FingerCount: ev.FingerCount,
		TimestampMs: ev.Timestamp.UnixMilli(),
	}
}

// Hub broadcasts gesture events to WebSocket clients. Each client has its
// own send queue; a client that falls behind loses messages rather than
// stalling the others.
type Hub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]chan []byte
	closed  bool
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]chan []byte)}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues ev for every connected client.
func (h *Hub) Broadcast(ev gesture.Event) {
	msg, err := json.Marshal(newEventMessage(ev))
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, send := range h.clients {
		select {
		case send <- msg:
		default:
		}
	}
}

// Run broadcasts events until the channel closes or ctx is done, then
// closes every client connection.
func (h *Hub) Run(ctx context.Context, events <-chan gesture.Event) {
	defer h.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			h.Broadcast(ev)
		}
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	send := make(chan []byte, clientBuffer)
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		goAway(conn)
		return
	}
	h.clients[conn] = send
	h.mu.Unlock()

	done := make(chan struct{})
	go h.writeLoop(conn, send, done)

	// Reads only detect the peer going away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	close(done)
	conn.Close()
}

// Close sends a going-away frame to every client and drops its connection.
// Hijacked connections are not tracked by http.Server.Shutdown, so this is
// what ends their read loops. Later upgrades are refused.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		goAway(conn)
	}
}

func goAway(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeTimeout))
	conn.Close()
}

func (h *Hub) writeLoop(conn *websocket.Conn, send <-chan []byte, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case msg := <-send:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				conn.Close()
				return
			}
		}
	}
}
