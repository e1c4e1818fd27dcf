package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"protector-server/chat"
	"protector-server/models"
	"protector-server/store"
)

// Hub manages all WebSocket connections and fans booking-scoped chat events
// out to the connected client and operator surfaces. Each booking room with
// at least one member holds one live chat subscription; the subscription is
// released when the room empties so registrations never leak.
type Hub struct {
	// Registered clients by user id
	Clients map[uint]*Client

	// Booking room members
	BookingMembers map[uint]map[uint]bool

	// Register requests from clients
	Register chan *Client

	// Unregister requests from clients
	Unregister chan *Client

	// Message handlers by incoming message type
	MessageHandlers map[string]MessageHandler

	chatSvc  *chat.Service
	roomSubs map[uint]*chat.Subscription

	mu sync.RWMutex
}

// Message is the WebSocket wire format, both directions
type Message struct {
	Type        string             `json:"type"`
	BookingID   uint               `json:"booking_id,omitempty"`
	MessageID   uint               `json:"message_id,omitempty"`
	SenderID    uint               `json:"sender_id,omitempty"`
	SenderType  models.SenderType  `json:"sender_type,omitempty"`
	MessageType models.MessageType `json:"message_type,omitempty"`
	Content     string             `json:"content,omitempty"`
	RequestID   string             `json:"request_id,omitempty"`
	Timestamp   time.Time          `json:"timestamp"`
	Data        interface{}        `json:"data,omitempty"`
}

// MessageHandler handles one incoming message type
type MessageHandler func(*Client, *Message) error

// NewHub creates a hub bridged to the chat service
func NewHub(chatSvc *chat.Service) *Hub {
	hub := &Hub{
		Clients:         make(map[uint]*Client),
		BookingMembers:  make(map[uint]map[uint]bool),
		Register:        make(chan *Client),
		Unregister:      make(chan *Client),
		MessageHandlers: make(map[string]MessageHandler),
		chatSvc:         chatSvc,
		roomSubs:        make(map[uint]*chat.Subscription),
	}

	hub.registerDefaultHandlers()

	return hub
}

func (h *Hub) registerDefaultHandlers() {
	h.MessageHandlers["chat"] = h.handleChatMessage
	h.MessageHandlers["typing"] = h.handleTypingIndicator
	h.MessageHandlers["ping"] = h.handlePing
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	// A reconnect replaces the old connection; release its send channel so
	// its write pump winds down
	if old, ok := h.Clients[client.ID]; ok && old != client {
		close(old.Send)
	}
	h.Clients[client.ID] = client
	h.mu.Unlock()

	h.AddUserToBooking(client.ID, client.BookingID)
	log.Printf("🔌 Client registered: ID=%d, Role=%s, Booking=%d", client.ID, client.Role, client.BookingID)
}

// unregisterClient removes a connection. A stale unregister from a connection
// that has already been replaced by a reconnect is ignored, so the live
// connection stays registered.
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	if current, ok := h.Clients[client.ID]; ok && current == client {
		for bookingID := range h.BookingMembers {
			if h.BookingMembers[bookingID][client.ID] {
				delete(h.BookingMembers[bookingID], client.ID)
				h.teardownRoomIfEmpty(bookingID)
			}
		}
		delete(h.Clients, client.ID)
		close(client.Send)
		log.Printf("🔌 Client unregistered: ID=%d, Role=%s", client.ID, client.Role)
	}
	h.mu.Unlock()
}

// AddUserToBooking adds a user to a booking room, attaching the room's chat
// subscription when the room is new
func (h *Hub) AddUserToBooking(userID uint, bookingID uint) {
	if bookingID == 0 {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.BookingMembers[bookingID] == nil {
		h.BookingMembers[bookingID] = make(map[uint]bool)
	}
	h.BookingMembers[bookingID][userID] = true

	if _, attached := h.roomSubs[bookingID]; !attached {
		sub, err := h.chatSvc.Subscribe(bookingID, func(m models.Message) {
			h.deliverChatMessage(m)
		})
		if err != nil {
			log.Printf("❌ Failed to attach feed for booking %d: %v", bookingID, err)
			return
		}
		h.roomSubs[bookingID] = sub
	}
}

// RemoveUserFromBooking removes a user from a booking room
func (h *Hub) RemoveUserFromBooking(userID uint, bookingID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.BookingMembers[bookingID] != nil {
		delete(h.BookingMembers[bookingID], userID)
		h.teardownRoomIfEmpty(bookingID)
	}
}

// teardownRoomIfEmpty releases the room's chat subscription; callers hold h.mu
func (h *Hub) teardownRoomIfEmpty(bookingID uint) {
	if len(h.BookingMembers[bookingID]) > 0 {
		return
	}
	delete(h.BookingMembers, bookingID)
	if sub, ok := h.roomSubs[bookingID]; ok {
		h.chatSvc.Unsubscribe(sub)
		delete(h.roomSubs, bookingID)
	}
}

// deliverChatMessage fans one persisted message out to the booking room.
// The sender receives the echo too; surfaces deduplicate by message id
// against their optimistic render.
func (h *Hub) deliverChatMessage(m models.Message) {
	wireMessage := &Message{
		Type:        "chat",
		BookingID:   m.BookingID,
		MessageID:   m.ID,
		SenderID:    m.SenderID,
		SenderType:  m.SenderType,
		MessageType: m.Type,
		Content:     m.Content,
		Timestamp:   m.CreatedAt,
	}
	if m.Metadata != nil {
		wireMessage.Data = m.Metadata
	}
	h.SendToBooking(m.BookingID, wireMessage, 0)
}

// SendToBooking sends a message to every member of a booking room, skipping
// excludeUserID when non-zero
func (h *Hub) SendToBooking(bookingID uint, message *Message, excludeUserID uint) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("❌ Error marshaling message: %v", err)
		return
	}

	members := h.BookingMembers[bookingID]
	if members == nil {
		return
	}

	for userID := range members {
		if excludeUserID != 0 && userID == excludeUserID {
			continue
		}
		client, exists := h.Clients[userID]
		if !exists {
			continue
		}
		select {
		case client.Send <- data:
		default:
			log.Printf("⚠️ User %d's send buffer is full", userID)
		}
	}
}

// SendToUser sends a message to a specific connected user
func (h *Hub) SendToUser(userID uint, message *Message) {
	h.mu.RLock()
	client, exists := h.Clients[userID]
	h.mu.RUnlock()

	if !exists {
		return
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("❌ Error marshaling message: %v", err)
		return
	}

	select {
	case client.Send <- data:
	default:
		log.Printf("⚠️ User %d's send buffer is full", userID)
	}
}

// IsUserConnected checks if a user is currently connected
func (h *Hub) IsUserConnected(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, exists := h.Clients[userID]
	return exists
}

// handleChatMessage persists an incoming chat message through the service;
// delivery to the room rides the change feed like every other insert
func (h *Hub) handleChatMessage(client *Client, message *Message) error {
	bookingID := message.BookingID
	if bookingID == 0 {
		bookingID = client.BookingID
	}

	msgType := message.MessageType
	if msgType == "" {
		msgType = models.MessageTypeText
	}

	_, err := h.chatSvc.PostMessage(store.SendInput{
		BookingID:  bookingID,
		SenderType: client.SenderType(),
		SenderID:   client.ID,
		Content:    message.Content,
		Type:       msgType,
		RequestID:  message.RequestID,
	})
	if err != nil {
		log.Printf("❌ Error persisting chat message from user %d: %v", client.ID, err)
		return client.SendError("send_failed", err.Error())
	}
	return nil
}

// handleTypingIndicator relays typing indicators to the room, excluding the sender
func (h *Hub) handleTypingIndicator(client *Client, message *Message) error {
	bookingID := message.BookingID
	if bookingID == 0 {
		bookingID = client.BookingID
	}
	h.SendToBooking(bookingID, message, client.ID)
	return nil
}

// handlePing answers connection health checks
func (h *Hub) handlePing(client *Client, message *Message) error {
	return client.SendMessage(&Message{
		Type:      "pong",
		Timestamp: time.Now(),
	})
}
