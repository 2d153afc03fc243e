// Package realtime implements the websocket delivery channel: a hub of
// connected clients grouped by room, with fan-out broadcast. The hub is
// transient by design; durable persistence happens in the chat service
// before anything is broadcast.
package realtime

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/havenmind/support-service/internal/config"
	"github.com/havenmind/support-service/internal/domain/errors"
)

// RoomMessage is a payload queued for fan-out to one room.
type RoomMessage struct {
	RoomID  string
	Payload []byte
	// Exclude is a client id skipped during fan-out, normally the sender.
	Exclude string
}

// Hub routes messages between connected clients grouped by room.
type Hub struct {
	clients    map[string]*Client
	rooms      map[string]map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan *RoomMessage
	mu         sync.RWMutex
	config     config.RealtimeConfig
}

// NewHub creates a new hub. Call Run in a goroutine before registering
// clients.
func NewHub(cfg config.RealtimeConfig) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *RoomMessage, 256),
		config:     cfg,
	}
}

// Run processes registration and broadcast events until the process
// exits.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			log.Debug().Str("client_id", client.ID).Msg("websocket client registered")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				for roomID, members := range h.rooms {
					delete(members, client.ID)
					if len(members) == 0 {
						delete(h.rooms, roomID)
					}
				}
				delete(h.clients, client.ID)
				close(client.Send)
			}
			h.mu.Unlock()
			log.Debug().Str("client_id", client.ID).Msg("websocket client unregistered")

		case msg := <-h.broadcast:
			h.mu.RLock()
			if members, ok := h.rooms[msg.RoomID]; ok {
				for clientID, client := range members {
					if clientID == msg.Exclude {
						continue
					}
					select {
					case client.Send <- msg.Payload:
					default:
						// Slow consumer; drop the connection rather than
						// block the hub.
						go h.Unregister(client)
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub and all its rooms.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// JoinRoom subscribes the client to a room.
func (h *Hub) JoinRoom(client *Client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[string]*Client)
	}
	h.rooms[roomID][client.ID] = client
	log.Info().Str("client_id", client.ID).Str("room_id", roomID).Msg("client joined room")
}

// LeaveRoom unsubscribes the client from a room.
func (h *Hub) LeaveRoom(client *Client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members, ok := h.rooms[roomID]; ok {
		delete(members, client.ID)
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}
	log.Info().Str("client_id", client.ID).Str("room_id", roomID).Msg("client left room")
}

// BroadcastToRoom fans the message out to every member of the room,
// skipping the excluded client id.
func (h *Hub) BroadcastToRoom(roomID string, message interface{}, exclude string) error {
	data, err := json.Marshal(message)
	if err != nil {
		return errors.NewTransportError("failed to encode broadcast payload", err)
	}

	h.broadcast <- &RoomMessage{
		RoomID:  roomID,
		Payload: data,
		Exclude: exclude,
	}
	return nil
}

// RoomClientCount returns the number of clients subscribed to the room.
func (h *Hub) RoomClientCount(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if members, ok := h.rooms[roomID]; ok {
		return len(members)
	}
	return 0
}
