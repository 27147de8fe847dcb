package websocket

import (
	"encoding/json"
	"sync"

	"github.com/clockert/fram-backend/pkg/logger"
)

// Client is a single WebSocket connection bound to a cart session. One
// session can hold several connections (multiple open tabs).
type Client struct {
	Hub       *Hub
	Conn      *Conn
	SessionID string
	Send      chan []byte
}

// Hub fans cart change events out to the connections of the session whose
// cart changed. Other sessions never see the event.
type Hub struct {
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan *sessionMessage

	mu sync.RWMutex
}

type sessionMessage struct {
	SessionID string
	Message   []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string][]*Client),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan *sessionMessage, 1024),
	}
}

// Run processes registration and broadcast events. Call in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.SessionID] = append(h.clients[client.SessionID], client)
			h.mu.Unlock()
			logger.Info("WebSocket client registered", map[string]interface{}{
				"session_id":  client.SessionID,
				"connections": len(h.clients[client.SessionID]),
			})

		case client := <-h.unregister:
			h.mu.Lock()
			removed := false
			if clientList, ok := h.clients[client.SessionID]; ok {
				newList := make([]*Client, 0, len(clientList))
				for _, c := range clientList {
					if c != client {
						newList = append(newList, c)
					} else {
						removed = true
					}
				}
				if len(newList) == 0 {
					delete(h.clients, client.SessionID)
				} else {
					h.clients[client.SessionID] = newList
				}
			}
			h.mu.Unlock()
			if removed {
				// Unregister can race between the broadcast drop path and
				// ReadPump exit; only the removal that found the client may
				// close its channel.
				close(client.Send)
				logger.Info("WebSocket client unregistered", map[string]interface{}{
					"session_id": client.SessionID,
				})
			}

		case message := <-h.broadcast:
			h.mu.RLock()
			for _, client := range h.clients[message.SessionID] {
				select {
				case client.Send <- message.Message:
				default:
					// Send buffer full - drop the connection rather than
					// block every other session's updates.
					go h.Unregister(client)
					logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
						"session_id": message.SessionID,
					})
				}
			}
			h.mu.RUnlock()
		}
	}
}

// BroadcastCartUpdate pushes a cart change event to every connection of one
// session. Events may be dropped under pressure; the cart itself is the
// source of truth and clients can always refetch it.
func (h *Hub) BroadcastCartUpdate(sessionID string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal cart update", err, nil)
		return err
	}

	select {
	case h.broadcast <- &sessionMessage{SessionID: sessionID, Message: data}:
		return nil
	default:
		logger.Warn("Broadcast channel full, cart update dropped", map[string]interface{}{
			"session_id": sessionID,
		})
		return nil
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// IsSessionConnected reports whether the session has at least one open connection.
func (h *Hub) IsSessionConnected(sessionID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[sessionID]
	return ok
}
