// Package mongodb provides the conversation store implementation.
package mongodb

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/havenmind/support-service/internal/domain/models"
)

// ConversationStore implements docdb.ConversationStore for MongoDB.
type ConversationStore struct {
	messages *mongo.Collection
}

// NewConversationStore creates a new conversation store wrapper.
func NewConversationStore(db *mongo.Database) *ConversationStore {
	return &ConversationStore{
		messages: db.Collection(MessagesCollection),
	}
}

// AppendMessage persists a new message. Write-once: existing messages are
// never updated through this store.
func (s *ConversationStore) AppendMessage(ctx context.Context, message *models.Message) error {
	if message.RoomID == "" {
		return fmt.Errorf("room id is required")
	}
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now().UTC()
	}

	if _, err := s.messages.InsertOne(ctx, message); err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	return nil
}

// ListByRoom returns all messages of a room ordered ascending by
// timestamp. The sort happens both in the query and again in memory:
// concurrent writers interleave, and readers must not trust append order.
func (s *ConversationStore) ListByRoom(ctx context.Context, roomID string) ([]*models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cursor, err := s.messages.Find(ctx, bson.M{"roomId": roomID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []*models.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}

	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp.Before(messages[j].Timestamp)
	})

	return messages, nil
}

// ListRoomsByParticipant returns the distinct room ids the participant
// appears in as sender or receiver.
func (s *ConversationStore) ListRoomsByParticipant(ctx context.Context, participantID string) ([]string, error) {
	filter := bson.M{"$or": []bson.M{
		{"sender": participantID},
		{"receiver": participantID},
	}}

	raw, err := s.messages.Distinct(ctx, "roomId", filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	rooms := make([]string, 0, len(raw))
	for _, v := range raw {
		if id, ok := v.(string); ok {
			rooms = append(rooms, id)
		}
	}
	sort.Strings(rooms)
	return rooms, nil
}

// EnsureIndexes creates the room/timestamp index used by history reads.
func (s *ConversationStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.messages.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "roomId", Value: 1},
			{Key: "timestamp", Value: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create messages index: %w", err)
	}
	return nil
}
