package tracking

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"canteen-system/internal/auth"
	"canteen-system/internal/logger"
	"canteen-system/internal/models"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API is served to browser clients on other origins.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one connected live-feed subscriber. Admin clients receive every
// order event; customer clients only events for their own orders.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID string
	admin  bool
}

// wants reports whether this client should receive the event.
func (c *Client) wants(event *models.OrderEvent) bool {
	return c.admin || c.userID == event.UserID
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		// The feed is one-way; inbound frames only keep the connection alive.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
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
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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

// Hub maintains the set of live-feed subscribers and routes order events
// to them.
type Hub struct {
	clients    map[*Client]bool
	events     chan *models.OrderEvent
	register   chan *Client
	unregister chan *Client
	logger     *logger.Logger
}

// NewHub creates a hub. Call Run in its own goroutine.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		events:     make(chan *models.OrderEvent, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     log,
	}
}

// Dispatch queues an order event for delivery to matching subscribers.
func (h *Hub) Dispatch(event *models.OrderEvent) {
	select {
	case h.events <- event:
	default:
		h.logger.Error("feed_backpressure", "Dropping order event, hub queue full", "", nil, map[string]interface{}{
			"order_number": event.OrderNumber,
		})
	}
}

// Run is the hub event loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case event := <-h.events:
			h.broadcast(event)
		}
	}
}

func (h *Hub) broadcast(event *models.OrderEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("feed_marshal_failed", "Failed to marshal order event", "", err, nil)
		return
	}

	for client := range h.clients {
		if !client.wants(event) {
			continue
		}
		select {
		case client.send <- payload:
		default:
			// Slow consumer. Drop it rather than stall the feed.
			delete(h.clients, client)
			close(client.send)
		}
	}
}

// ServeWS upgrades the request and registers the caller on the live feed.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, identity *auth.Identity) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("ws_upgrade_failed", "Failed to upgrade websocket", "", err, nil)
		return
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, 64),
		userID: identity.UserID,
		admin:  identity.IsAdmin(),
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}
