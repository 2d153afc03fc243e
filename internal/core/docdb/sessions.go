// Package docdb provides the AI therapy session store interface.
package docdb

import (
	"context"

	"github.com/havenmind/support-service/internal/domain/models"
)

// SessionStore persists AI therapy sessions and their prompt/response
// exchanges.
type SessionStore interface {
	// CreateSession persists a new session.
	CreateSession(ctx context.Context, session *models.TherapySession) error

	// GetSession retrieves a session by id scoped to its owner, nil when
	// absent.
	GetSession(ctx context.Context, id, userID string) (*models.TherapySession, error)

	// UpdateSession replaces a session's mutable fields (terminated).
	UpdateSession(ctx context.Context, session *models.TherapySession) error

	// AppendExchange persists one prompt/response pair.
	AppendExchange(ctx context.Context, exchange *models.Exchange) error

	// ListExchanges returns a session's exchanges ordered ascending by
	// creation time.
	ListExchanges(ctx context.Context, sessionID string) ([]*models.Exchange, error)

	// EnsureIndexes creates necessary indexes for the collections.
	EnsureIndexes(ctx context.Context) error
}
