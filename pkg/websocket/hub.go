package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Hub fans dispatch events out to connected clients. Every driver joins the
// shared drivers room plus a personal room; assignment offers go to the
// assigned driver, pool updates go to all drivers.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	rooms      map[string]map[*Client]bool
	mutex      sync.RWMutex
}

type Message struct {
	Type      string                 `json:"type"`
	RoomID    string                 `json:"room_id,omitempty"`
	UserID    primitive.ObjectID     `json:"user_id"`
	Timestamp int64                  `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

const driversRoom = "drivers"

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.clients[client] = true

	h.joinRoom(client, "user_"+client.UserID.Hex())
	if client.Role == "driver" {
		h.joinRoom(client, driversRoom)
	}
}

func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)

		for roomID, room := range h.rooms {
			if _, exists := room[client]; exists {
				delete(room, client)
				if len(room) == 0 {
					delete(h.rooms, roomID)
				}
			}
		}
	}
}

func (h *Hub) broadcastMessage(message []byte) {
	var msg Message
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Printf("Error unmarshaling message: %v", err)
		return
	}

	if msg.RoomID != "" {
		h.sendToRoom(msg.RoomID, msg)
	} else {
		h.sendToAll(msg)
	}
}

// Sends take the write lock: a full client gets evicted mid-send, and sends
// arrive concurrently from request goroutines, not just the Run loop.
func (h *Hub) sendToAll(message Message) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	data, _ := json.Marshal(message)
	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			h.evict(client)
		}
	}
}

func (h *Hub) sendToRoom(roomID string, message Message) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	room, exists := h.rooms[roomID]
	if !exists {
		return
	}

	data, _ := json.Marshal(message)
	for client := range room {
		select {
		case client.send <- data:
		default:
			h.evict(client)
		}
	}
}

// evict drops a client whose send buffer is full. The caller holds the write
// lock. The client leaves every room so no later send can hit the closed
// channel.
func (h *Hub) evict(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
	for roomID, room := range h.rooms {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// SendToUser delivers a message to one user's personal room.
func (h *Hub) SendToUser(userID primitive.ObjectID, message Message) {
	h.sendToRoom("user_"+userID.Hex(), message)
}

// NotifyAssignment offers a booking to the assigned driver.
func (h *Hub) NotifyAssignment(driverID, bookingID primitive.ObjectID, data map[string]interface{}) {
	message := Message{
		Type:      "booking_assigned",
		UserID:    driverID,
		Timestamp: time.Now().Unix(),
		Data:      data,
	}
	if message.Data == nil {
		message.Data = make(map[string]interface{})
	}
	message.Data["booking_id"] = bookingID.Hex()

	h.SendToUser(driverID, message)
}

// NotifyPoolUpdate tells all connected drivers that the assignable pool
// changed, e.g. after a decline returned a booking to it.
func (h *Hub) NotifyPoolUpdate(bookingID primitive.ObjectID) {
	message := Message{
		Type:      "pool_updated",
		Timestamp: time.Now().Unix(),
		Data: map[string]interface{}{
			"booking_id": bookingID.Hex(),
		},
	}

	h.sendToRoom(driversRoom, message)
}

func (h *Hub) joinRoom(client *Client, roomID string) {
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][client] = true
	client.rooms[roomID] = true
}
