// Package mongodb provides the MongoDB implementation of the docdb
// interfaces.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/havenmind/support-service/internal/core/docdb"
)

// Collection names.
const (
	MessagesCollection     = "messages"
	AppointmentsCollection = "appointments"
	UsersCollection        = "users"
	SessionsCollection     = "sessions"
	ExchangesCollection    = "exchanges"
)

// Client implements the docdb.Client interface for MongoDB.
type Client struct {
	client        *mongo.Client
	conversations *ConversationStore
	appointments  *AppointmentStore
	directory     *ProfessionalDirectory
	sessions      *SessionStore
}

// ClientConfig holds MongoDB connection configuration.
type ClientConfig struct {
	URI          string
	DatabaseName string
}

// NewClient creates a new MongoDB client.
func NewClient(ctx context.Context, config *ClientConfig) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if config.URI == "" {
		return nil, fmt.Errorf("mongodb URI is required")
	}
	if config.DatabaseName == "" {
		return nil, fmt.Errorf("database name is required")
	}

	clientOpts := options.Client().ApplyURI(config.URI)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(config.DatabaseName)

	return &Client{
		client:        client,
		conversations: NewConversationStore(db),
		appointments:  NewAppointmentStore(db),
		directory:     NewProfessionalDirectory(db),
		sessions:      NewSessionStore(db),
	}, nil
}

// Conversations returns the conversation store.
func (c *Client) Conversations() docdb.ConversationStore {
	return c.conversations
}

// Appointments returns the appointment store.
func (c *Client) Appointments() docdb.AppointmentStore {
	return c.appointments
}

// Directory returns the professional directory.
func (c *Client) Directory() docdb.ProfessionalDirectory {
	return c.directory
}

// Sessions returns the therapy session store.
func (c *Client) Sessions() docdb.SessionStore {
	return c.sessions
}

// EnsureIndexes creates the indexes every store relies on.
func (c *Client) EnsureIndexes(ctx context.Context) error {
	if err := c.conversations.EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := c.appointments.EnsureIndexes(ctx); err != nil {
		return err
	}
	return c.sessions.EnsureIndexes(ctx)
}

// Ping verifies the connection to MongoDB.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("mongodb ping failed: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (c *Client) Close(ctx context.Context) error {
	if err := c.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from mongodb: %w", err)
	}
	return nil
}
