package realtime

import "time"

// Inbound event types.
const (
	// EventJoinRoom subscribes the connection to a room.
	EventJoinRoom = "joinRoom"
	// EventLeaveRoom unsubscribes the connection from a room.
	EventLeaveRoom = "leaveRoom"
	// EventSendMessage submits a chat message for a room.
	EventSendMessage = "sendMessage"
)

// Outbound event types.
const (
	// EventChatMessage delivers a chat message to room members.
	EventChatMessage = "chatMessage"
	// EventChatError reports a failure back to the sender only.
	EventChatError = "chatError"
)

// InboundEvent is the envelope clients send over the websocket.
type InboundEvent struct {
	Type     string `json:"type"`
	RoomID   string `json:"roomId,omitempty"`
	Receiver string `json:"receiver,omitempty"`
	Content  string `json:"content,omitempty"`
}

// ChatMessageEvent is broadcast to every member of a room when a message
// arrives. Content is plaintext: the realtime channel is transient and
// carries no stored ciphertext.
type ChatMessageEvent struct {
	Type      string    `json:"type"`
	MessageID string    `json:"messageId"`
	RoomID    string    `json:"roomId"`
	Sender    string    `json:"sender"`
	Receiver  string    `json:"receiver"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatErrorEvent is sent to the offending connection only.
type ChatErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewChatError builds a chatError event.
func NewChatError(message string) *ChatErrorEvent {
	return &ChatErrorEvent{Type: EventChatError, Message: message}
}
