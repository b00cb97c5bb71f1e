package api

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// StateEvent describes websocket payloads emitted after each transition.
type StateEvent struct {
	Type      string    `json:"type"`
	State     StateDTO  `json:"state"`
	Timestamp time.Time `json:"timestamp"`
}

// wsClient wraps a websocket connection with write locking.
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// StateNotifier keeps track of one session's websocket clients.
type StateNotifier struct {
	mu      sync.Mutex
	clients map[*wsClient]struct{}
	closed  bool
}

// NewStateNotifier constructs a notifier instance.
func NewStateNotifier() *StateNotifier {
	return &StateNotifier{clients: make(map[*wsClient]struct{})}
}

// Register attaches a websocket connection and sends it the current state.
func (n *StateNotifier) Register(conn *websocket.Conn, current StateEvent) *wsClient {
	client := &wsClient{conn: conn}
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		_ = conn.Close()
		return client
	}
	n.clients[client] = struct{}{}
	n.mu.Unlock()

	current.Timestamp = time.Now().UTC()
	_ = client.writeJSON(current)
	return client
}

// Unregister removes the websocket client from the notifier and closes the socket.
func (n *StateNotifier) Unregister(client *wsClient) {
	if client == nil {
		return
	}
	n.mu.Lock()
	delete(n.clients, client)
	n.mu.Unlock()
	_ = client.conn.Close()
}

// Broadcast sends the supplied event to all registered websocket clients.
// Clients that fail a write are dropped.
func (n *StateNotifier) Broadcast(event StateEvent) {
	event.Timestamp = time.Now().UTC()

	n.mu.Lock()
	defer n.mu.Unlock()
	for client := range n.clients {
		if err := client.writeJSON(event); err != nil {
			delete(n.clients, client)
			_ = client.conn.Close()
		}
	}
}

// Close disconnects every client; later registrations are refused.
func (n *StateNotifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
	for client := range n.clients {
		delete(n.clients, client)
		_ = client.conn.Close()
	}
}

// Clients reports how many sockets are attached.
func (n *StateNotifier) Clients() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.clients)
}

func (c *wsClient) writeJSON(payload interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteJSON(payload)
}
