package orderControllers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Ashish5180/vibe-bites/models"
)

const (
	EventOrderCreated = "order.created"
	EventOrderUpdated = "order.updated"

	writeWait  = 5 * time.Second
	sendBuffer = 32
)

// Event is one message on the admin order feed.
type Event struct {
	Type  string        `json:"type"`
	Order *models.Order `json:"order"`
}

// Hub fans order events out to connected admin dashboards. Each client has
// its own queue and writer goroutine so a slow dashboard never holds up the
// request that broadcasts. A nil *Hub drops every event.
type Hub struct {
	mu       sync.Mutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
	log      *zap.Logger
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub accepts handshakes from allowedOrigin, or from anywhere when it is
// empty or "*".
func NewHub(log *zap.Logger, allowedOrigin string) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		log:     log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "" || allowedOrigin == "*" {
					return true
				}
				return r.Header.Get("Origin") == allowedOrigin
			},
		},
	}
}

// Serve upgrades the request and keeps the connection registered until the
// client goes away.
func (h *Hub) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	cl := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.register(cl)
	go h.writeLoop(cl)

	defer h.unregister(cl)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) register(cl *client) {
	h.mu.Lock()
	h.clients[cl] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.drop(cl)
}

// drop must be called with h.mu held. Closing send stops the writer, which
// then closes the connection.
func (h *Hub) drop(cl *client) {
	if _, ok := h.clients[cl]; !ok {
		return
	}
	delete(h.clients, cl)
	close(cl.send)
}

// writeLoop is the only writer on cl.conn.
func (h *Hub) writeLoop(cl *client) {
	defer cl.conn.Close()
	for data := range cl.send {
		_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := cl.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.log.Debug("dropping order feed client", zap.Error(err))
			return
		}
	}
	_ = cl.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
		time.Now().Add(writeWait))
}

// Broadcast queues the event for every client without blocking. A client
// whose queue is full is disconnected.
func (h *Hub) Broadcast(eventType string, order *models.Order) {
	if h == nil {
		return
	}
	data, err := json.Marshal(Event{Type: eventType, Order: order})
	if err != nil {
		h.log.Error("marshal order event failed", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for cl := range h.clients {
		select {
		case cl.send <- data:
		default:
			h.log.Warn("order feed client too slow, disconnecting")
			h.drop(cl)
		}
	}
}

// Clients is the number of connected dashboards.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for cl := range h.clients {
		h.drop(cl)
	}
}
