// Package mongodb provides the therapy session store implementation.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/havenmind/support-service/internal/domain/models"
)

// SessionStore implements docdb.SessionStore for MongoDB.
type SessionStore struct {
	sessions  *mongo.Collection
	exchanges *mongo.Collection
}

// NewSessionStore creates a new session store wrapper.
func NewSessionStore(db *mongo.Database) *SessionStore {
	return &SessionStore{
		sessions:  db.Collection(SessionsCollection),
		exchanges: db.Collection(ExchangesCollection),
	}
}

// CreateSession persists a new therapy session.
func (s *SessionStore) CreateSession(ctx context.Context, session *models.TherapySession) error {
	if session.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.CreatedAt.IsZero() {
		now := time.Now().UTC()
		session.CreatedAt = now
		session.UpdatedAt = now
	}

	if _, err := s.sessions.InsertOne(ctx, session); err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by id scoped to its owner.
func (s *SessionStore) GetSession(ctx context.Context, id, userID string) (*models.TherapySession, error) {
	var session models.TherapySession
	err := s.sessions.FindOne(ctx, bson.M{"_id": id, "userId": userID}).Decode(&session)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

// UpdateSession replaces a session's mutable fields.
func (s *SessionStore) UpdateSession(ctx context.Context, session *models.TherapySession) error {
	update := bson.M{"$set": bson.M{
		"terminated": session.Terminated,
		"updatedAt":  time.Now().UTC(),
	}}

	result, err := s.sessions.UpdateOne(ctx, bson.M{"_id": session.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("session %s not found", session.ID)
	}
	return nil
}

// AppendExchange persists one prompt/response pair.
func (s *SessionStore) AppendExchange(ctx context.Context, exchange *models.Exchange) error {
	if exchange.SessionID == "" {
		return fmt.Errorf("session id is required")
	}
	if exchange.ID == "" {
		exchange.ID = uuid.NewString()
	}
	if exchange.CreatedAt.IsZero() {
		exchange.CreatedAt = time.Now().UTC()
	}

	if _, err := s.exchanges.InsertOne(ctx, exchange); err != nil {
		return fmt.Errorf("failed to insert exchange: %w", err)
	}
	return nil
}

// ListExchanges returns a session's exchanges ordered ascending by
// creation time.
func (s *SessionStore) ListExchanges(ctx context.Context, sessionID string) ([]*models.Exchange, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := s.exchanges.Find(ctx, bson.M{"sessionId": sessionID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list exchanges: %w", err)
	}
	defer cursor.Close(ctx)

	var exchanges []*models.Exchange
	if err := cursor.All(ctx, &exchanges); err != nil {
		return nil, fmt.Errorf("failed to decode exchanges: %w", err)
	}
	return exchanges, nil
}

// EnsureIndexes creates the session and exchange lookup indexes.
func (s *SessionStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.sessions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create sessions index: %w", err)
	}

	_, err = s.exchanges.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "sessionId", Value: 1},
			{Key: "createdAt", Value: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create exchanges index: %w", err)
	}
	return nil
}
