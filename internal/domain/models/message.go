// Package models contains domain models for the Haven support service.
package models

import (
	"sort"
	"strings"
	"time"
)

// MessageKind discriminates the stored message types in a room.
type MessageKind string

const (
	// KindMessage is a plain chat message.
	KindMessage MessageKind = "message"
	// KindAppointmentRequested notifies that an appointment was requested.
	KindAppointmentRequested MessageKind = "appointment_requested"
	// KindAppointmentApproved notifies that an appointment was approved.
	KindAppointmentApproved MessageKind = "appointment_approved"
	// KindAppointmentDeclined notifies that an appointment was declined.
	KindAppointmentDeclined MessageKind = "appointment_declined"
	// KindAppointmentCancelled notifies that an approved appointment was
	// cancelled by either party.
	KindAppointmentCancelled MessageKind = "appointment_cancelled"
	// KindCrisisAlert is a system-authored crisis notification.
	KindCrisisAlert MessageKind = "crisis_alert"
)

// EncryptionMetadata describes how a message's ciphertext was produced.
// IV, Tag and IntegrityHash are hex-encoded.
type EncryptionMetadata struct {
	Algorithm     string `json:"algorithm" bson:"algorithm"`
	IV            string `json:"iv" bson:"iv"`
	Tag           string `json:"tag" bson:"tag"`
	IntegrityHash string `json:"integrityHash" bson:"integrityHash"`
}

// Message is one chat line in a room. Plaintext is never stored; the
// Ciphertext field holds the hex-encoded encrypted payload. Messages are
// immutable once appended.
type Message struct {
	ID            string             `json:"id" bson:"_id"`
	RoomID        string             `json:"roomId" bson:"roomId"`
	Sender        string             `json:"sender" bson:"sender"`
	Receiver      string             `json:"receiver" bson:"receiver"`
	Ciphertext    string             `json:"-" bson:"ciphertext"`
	Encryption    EncryptionMetadata `json:"-" bson:"encryption"`
	Timestamp     time.Time          `json:"timestamp" bson:"timestamp"`
	Kind          MessageKind        `json:"kind" bson:"kind"`
	AppointmentID string             `json:"appointmentId,omitempty" bson:"appointmentId,omitempty"`
}

// DecryptedMessage is the read-side view of a Message with the plaintext
// restored. Undecryptable marks a message whose ciphertext failed
// authentication; its Content holds a placeholder, never garbage.
type DecryptedMessage struct {
	ID            string      `json:"id"`
	RoomID        string      `json:"roomId"`
	Sender        string      `json:"sender"`
	Receiver      string      `json:"receiver"`
	Content       string      `json:"content"`
	Timestamp     time.Time   `json:"timestamp"`
	Kind          MessageKind `json:"kind"`
	AppointmentID string      `json:"appointmentId,omitempty"`
	Undecryptable bool        `json:"undecryptable,omitempty"`
}

// UndecryptablePlaceholder is shown in place of content that failed
// authentication on read.
const UndecryptablePlaceholder = "[unable to decrypt this message]"

// RoomID derives the conversation room id for two participants. The pair
// is sorted so both sides compute the same id regardless of who sends
// first.
func RoomID(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return strings.Join(ids, "_")
}

// NewMessage creates a plain chat message shell for the given room. The
// caller fills Ciphertext and Encryption before persisting.
func NewMessage(roomID, sender, receiver string, ts time.Time) *Message {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return &Message{
		RoomID:    roomID,
		Sender:    sender,
		Receiver:  receiver,
		Timestamp: ts,
		Kind:      KindMessage,
	}
}

// NewNotificationMessage creates an appointment- or crisis-notification
// message linked to an appointment.
func NewNotificationMessage(roomID, sender, receiver string, kind MessageKind, appointmentID string) *Message {
	return &Message{
		RoomID:        roomID,
		Sender:        sender,
		Receiver:      receiver,
		Timestamp:     time.Now().UTC(),
		Kind:          kind,
		AppointmentID: appointmentID,
	}
}

// IsNotification reports whether the message is a notification rather
// than a user-authored chat line.
func (m *Message) IsNotification() bool {
	return m.Kind != KindMessage
}
