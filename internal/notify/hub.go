// Package notify pushes events to connected browsers and relays inquiries to
// the business over WhatsApp and e-mail.
package notify

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"realtyhub/internal/metrics"
)

// Event types
const (
	EventConnectionEstablished = "connection_established"
	EventContactMessageSent    = "contact_message_sent"
	EventWhatsAppReady         = "whatsapp_ready"
	EventWhatsAppError         = "whatsapp_error"
	EventWhatsAppDisconnected  = "whatsapp_disconnected"
	EventWhatsAppStatus        = "whatsapp_status"
)

const (
	sendBuffer     = 16
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Event is sent as a flat JSON object: type and message plus the Data fields
type Event struct {
	Type    string
	Message string
	Data    map[string]interface{}
}

func (e Event) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(e.Data)+2)
	for k, v := range e.Data {
		out[k] = v
	}
	out["type"] = e.Type
	out["message"] = e.Message
	return json.Marshal(out)
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub tracks the open notification sockets
type Hub struct {
	mu        sync.RWMutex
	clients   map[*client]struct{}
	closed    bool
	upgrader  websocket.Upgrader
	onConnect func() []Event
}

// NewHub creates a hub accepting upgrades from the given origins. "*" allows any origin.
func NewHub(allowedOrigins []string) *Hub {
	h := &Hub{clients: make(map[*client]struct{})}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

// OnConnect sets the events queued for every new client after connection_established
func (h *Hub) OnConnect(fn func() []Event) {
	h.mu.Lock()
	h.onConnect = fn
	h.mu.Unlock()
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	closed := h.closed
	h.mu.RUnlock()
	if closed {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response
		log.Printf("[WS] Upgrade failed: %v", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	if !h.register(c) {
		_ = conn.Close()
		return
	}
	log.Printf("[WS] Client connected from %s (total=%d)", r.RemoteAddr, h.Count())

	go c.writePump(h)
	c.readPump(h)
}

func (h *Hub) register(c *client) bool {
	greeting := []Event{{
		Type:    EventConnectionEstablished,
		Message: "Connected to notification server",
	}}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	if h.onConnect != nil {
		greeting = append(greeting, h.onConnect()...)
	}
	h.clients[c] = struct{}{}
	metrics.WSClientConnected()

	// Greetings are queued under the lock so they precede any broadcast
	for _, evt := range greeting {
		data, err := json.Marshal(evt)
		if err != nil {
			log.Printf("[WS] Failed to encode %s: %v", evt.Type, err)
			continue
		}
		c.send <- data
	}
	return true
}

// unregister must be called with h.mu held
func (h *Hub) unregister(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	metrics.WSClientDisconnected()
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	h.unregister(c)
	h.mu.Unlock()
}

// Broadcast queues evt for every client and returns how many received it.
// A client whose queue is full is dropped.
func (h *Hub) Broadcast(evt Event) int {
	data, err := json.Marshal(evt)
	if err != nil {
		log.Printf("[WS] Failed to encode %s: %v", evt.Type, err)
		return 0
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	sent := 0
	for c := range h.clients {
		select {
		case c.send <- data:
			sent++
		default:
			log.Printf("[WS] Dropping client with a full send queue")
			h.unregister(c)
		}
	}
	return sent
}

// Count returns the number of connected clients
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and rejects new ones
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		h.unregister(c)
	}
}

// readPump discards inbound frames; it exists to process control frames and detect closure
func (c *client) readPump(h *Hub) {
	defer func() {
		h.remove(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] Read error: %v", err)
			}
			return
		}
	}
}

func (c *client) writePump(h *Hub) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				h.remove(c)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(c)
				return
			}
		}
	}
}
