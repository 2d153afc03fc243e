// Package docdb defines the document database interfaces consumed by the
// service layer. Implementations live under infrastructure/docdb.
package docdb

import "context"

// Type represents the type of document database.
type Type string

const (
	// TypeMongoDB represents a MongoDB document database.
	TypeMongoDB Type = "mongodb"
	// TypeCosmosDB represents CosmosDB, which speaks the MongoDB protocol.
	TypeCosmosDB Type = "cosmosdb"
)

// SortOrder represents the sort direction.
type SortOrder string

const (
	// SortOrderAsc represents ascending order.
	SortOrderAsc SortOrder = "asc"
	// SortOrderDesc represents descending order.
	SortOrderDesc SortOrder = "desc"
)

// Client bundles the typed stores backed by one database connection.
type Client interface {
	// Conversations returns the conversation (message log) store.
	Conversations() ConversationStore

	// Appointments returns the appointment store.
	Appointments() AppointmentStore

	// Directory returns the professional directory.
	Directory() ProfessionalDirectory

	// Sessions returns the AI therapy session store.
	Sessions() SessionStore

	// EnsureIndexes creates the indexes every store relies on.
	EnsureIndexes(ctx context.Context) error

	// Ping verifies the database connection.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close(ctx context.Context) error
}
