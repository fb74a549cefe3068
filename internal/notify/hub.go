package notify

import (
	"encoding/json"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Hub fans events out to every connected listener, over plain TCP
// (newline-framed JSON) and websocket. Dead connections are dropped on
// write failure.
type Hub struct {
	mu  sync.Mutex
	tcp map[net.Conn]struct{}
	ws  map[*websocket.Conn]struct{}
}

type Stats struct {
	TCPClients int `json:"tcp_clients"`
	WSClients  int `json:"ws_clients"`
}

func NewHub() *Hub {
	return &Hub{
		tcp: make(map[net.Conn]struct{}),
		ws:  make(map[*websocket.Conn]struct{}),
	}
}

// Publish stamps the event and broadcasts it.
func (h *Hub) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	b, err := json.Marshal(ev)
	if err != nil {
		return
	}
	framed := append(b, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.tcp {
		_ = c.SetWriteDeadline(time.Now().Add(2 * time.Second))
		if _, err := c.Write(framed); err != nil {
			_ = c.Close()
			delete(h.tcp, c)
		}
	}

	for conn := range h.ws {
		if err := conn.WriteMessage(websocket.TextMessage, framed); err != nil {
			_ = conn.Close()
			delete(h.ws, conn)
		}
	}
}

func (h *Hub) AddTCP(conn net.Conn) {
	h.mu.Lock()
	h.tcp[conn] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) RemoveTCP(conn net.Conn) {
	h.mu.Lock()
	delete(h.tcp, conn)
	h.mu.Unlock()
	_ = conn.Close()
}

func (h *Hub) AddWS(conn *websocket.Conn) {
	h.mu.Lock()
	h.ws[conn] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) RemoveWS(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.ws, conn)
	h.mu.Unlock()
	_ = conn.Close()
}

func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Stats{TCPClients: len(h.tcp), WSClients: len(h.ws)}
}
