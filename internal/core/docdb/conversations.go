// Package docdb provides the conversation store interface.
package docdb

import (
	"context"

	"github.com/havenmind/support-service/internal/domain/models"
)

// ConversationStore is the durable, ordered log of encrypted messages and
// notification entries per room.
type ConversationStore interface {
	// AppendMessage persists a new message. Messages are write-once and
	// never mutated afterwards.
	AppendMessage(ctx context.Context, message *models.Message) error

	// ListByRoom returns all messages of a room ordered ascending by
	// timestamp. Append order is not trusted: concurrent writers may
	// interleave, so the store sorts on read.
	ListByRoom(ctx context.Context, roomID string) ([]*models.Message, error)

	// ListRoomsByParticipant returns the distinct room ids the
	// participant has sent or received messages in.
	ListRoomsByParticipant(ctx context.Context, participantID string) ([]string, error)

	// EnsureIndexes creates necessary indexes for the collection.
	EnsureIndexes(ctx context.Context) error
}
