package web

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WebSocket upgrader with reasonable settings
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for now, tighten in production
		return true
	},
}

// Hub maintains active WebSocket connections
type Hub struct {
	// Registered clients by session ID
	sessionClients map[string]map[*Client]bool

	// Broadcast channel for session updates
	broadcast chan SessionUpdate

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	mu sync.RWMutex
}

// Client represents a WebSocket connection
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
}

// SessionUpdate represents an update to broadcast
type SessionUpdate struct {
	SessionID string      `json:"sessionId"`
	Type      string      `json:"type"` // "move", "navigation", "playback", "playback_step", "playback_finished", "reset"
	Data      interface{} `json:"data"`
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		sessionClients: make(map[string]map[*Client]bool),
		broadcast:      make(chan SessionUpdate, 64),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
	}
}

// Run starts the hub's main event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.sessionClients[client.sessionID] == nil {
				h.sessionClients[client.sessionID] = make(map[*Client]bool)
			}
			h.sessionClients[client.sessionID][client] = true
			h.mu.Unlock()

			log.Info().
				Str("sessionID", client.sessionID).
				Msg("Client connected to session")

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.sessionClients[client.sessionID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.send)

					// Clean up empty session rooms
					if len(clients) == 0 {
						delete(h.sessionClients, client.sessionID)
					}
				}
			}
			h.mu.Unlock()

			log.Info().
				Str("sessionID", client.sessionID).
				Msg("Client disconnected from session")

		case update := <-h.broadcast:
			h.mu.RLock()
			clients := h.sessionClients[update.SessionID]
			h.mu.RUnlock()

			if clients != nil {
				message, err := json.Marshal(update)
				if err != nil {
					log.Error().Err(err).Msg("Failed to marshal session update")
					continue
				}

				for client := range clients {
					select {
					case client.send <- message:
					default:
						// Client's send channel is full, close it
						close(client.send)
						h.mu.Lock()
						delete(clients, client)
						h.mu.Unlock()
					}
				}
			}
		}
	}
}

// BroadcastSessionUpdate sends an update to all clients watching a session
func (h *Hub) BroadcastSessionUpdate(update SessionUpdate) {
	select {
	case h.broadcast <- update:
	default:
		log.Warn().Str("sessionID", update.SessionID).Msg("Broadcast channel full, dropping update")
	}
}

// WatcherCount reports how many clients are connected to a session
func (h *Hub) WatcherCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessionClients[sessionID])
}

// WebSocketHandler handles WebSocket upgrade requests
func (s *Service) WebSocketHandler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Get session ID from query params
		sessionID := r.URL.Query().Get("sessionId")
		if sessionID == "" {
			http.Error(w, "Missing sessionId parameter", http.StatusBadRequest)
			return
		}
		if s.registry.Get(sessionID) == nil {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}

		// Upgrade connection
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
			return
		}

		// Create client
		client := &Client{
			hub:       hub,
			conn:      conn,
			send:      make(chan []byte, 256),
			sessionID: sessionID,
		}

		// Register client
		client.hub.register <- client

		// Start client goroutines
		go client.writePump()
		go client.readPump()
	}
}

// readPump handles incoming messages from the WebSocket
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Msg("WebSocket error")
			}
			break
		}

		// Handle incoming messages (ping/pong, etc.)
		var msg map[string]interface{}
		if err := json.Unmarshal(message, &msg); err == nil {
			if msg["type"] == "ping" {
				// Send pong response
				pong := map[string]string{"type": "pong"}
				if data, err := json.Marshal(pong); err == nil {
					select {
					case c.send <- data:
					default:
					}
				}
			}
		}
	}
}

// writePump handles sending messages to the WebSocket
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current WebSocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
