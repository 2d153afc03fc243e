// Package mongodb provides the appointment store implementation.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/havenmind/support-service/internal/core/docdb"
	"github.com/havenmind/support-service/internal/domain/models"
)

// AppointmentStore implements docdb.AppointmentStore for MongoDB.
type AppointmentStore struct {
	appointments *mongo.Collection
}

// NewAppointmentStore creates a new appointment store wrapper.
func NewAppointmentStore(db *mongo.Database) *AppointmentStore {
	return &AppointmentStore{
		appointments: db.Collection(AppointmentsCollection),
	}
}

// Create persists a new appointment.
func (s *AppointmentStore) Create(ctx context.Context, appointment *models.Appointment) error {
	if appointment.Client == "" || appointment.Professional == "" {
		return fmt.Errorf("client and professional are required")
	}
	if appointment.ID == "" {
		appointment.ID = uuid.NewString()
	}
	if appointment.CreatedAt.IsZero() {
		appointment.CreatedAt = time.Now().UTC()
	}

	if _, err := s.appointments.InsertOne(ctx, appointment); err != nil {
		return fmt.Errorf("failed to insert appointment: %w", err)
	}
	return nil
}

// Get retrieves an appointment by id.
func (s *AppointmentStore) Get(ctx context.Context, id string) (*models.Appointment, error) {
	var appointment models.Appointment
	err := s.appointments.FindOne(ctx, bson.M{"_id": id}).Decode(&appointment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

// Update replaces the mutable fields of an existing appointment.
func (s *AppointmentStore) Update(ctx context.Context, appointment *models.Appointment) error {
	if appointment.ID == "" {
		return fmt.Errorf("appointment id is required")
	}

	update := bson.M{"$set": bson.M{
		"status":      appointment.Status,
		"meetingLink": appointment.MeetingLink,
		"notes":       appointment.Notes,
		"approvedAt":  appointment.ApprovedAt,
		"declinedAt":  appointment.DeclinedAt,
	}}

	result, err := s.appointments.UpdateOne(ctx, bson.M{"_id": appointment.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("appointment %s not found", appointment.ID)
	}
	return nil
}

// List returns appointments matching the filter, newest first.
func (s *AppointmentStore) List(ctx context.Context, filter *docdb.AppointmentFilter) ([]*models.Appointment, error) {
	query := buildAppointmentQuery(filter)

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.appointments.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var appointments []*models.Appointment
	if err := cursor.All(ctx, &appointments); err != nil {
		return nil, fmt.Errorf("failed to decode appointments: %w", err)
	}
	return appointments, nil
}

// HasNonTerminal reports whether a pending or approved appointment exists
// for the pair.
func (s *AppointmentStore) HasNonTerminal(ctx context.Context, clientID, professionalID string) (bool, error) {
	query := bson.M{
		"client":       clientID,
		"professional": professionalID,
		"status":       bson.M{"$in": []models.AppointmentStatus{models.StatusPending, models.StatusApproved}},
	}
	count, err := s.appointments.CountDocuments(ctx, query)
	if err != nil {
		return false, fmt.Errorf("failed to check open appointments: %w", err)
	}
	return count > 0, nil
}

// HasUpcomingCommitment reports whether the professional has a pending or
// approved appointment scheduled inside the window.
func (s *AppointmentStore) HasUpcomingCommitment(ctx context.Context, professionalID string, windowStart, windowEnd time.Time) (bool, error) {
	query := bson.M{
		"professional": professionalID,
		"status":       bson.M{"$in": []models.AppointmentStatus{models.StatusPending, models.StatusApproved}},
		"scheduledTime": bson.M{
			"$gte": windowStart,
			"$lt":  windowEnd,
		},
	}
	count, err := s.appointments.CountDocuments(ctx, query)
	if err != nil {
		return false, fmt.Errorf("failed to check upcoming commitments: %w", err)
	}
	return count > 0, nil
}

// EnsureIndexes creates the pair/status and professional/schedule
// indexes backing the dedup and availability queries.
func (s *AppointmentStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.appointments.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "client", Value: 1},
			{Key: "professional", Value: 1},
			{Key: "status", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "professional", Value: 1},
			{Key: "scheduledTime", Value: 1},
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to create appointment indexes: %w", err)
	}
	return nil
}

// buildAppointmentQuery translates a docdb filter into a bson query.
func buildAppointmentQuery(filter *docdb.AppointmentFilter) bson.M {
	query := bson.M{}
	if filter == nil {
		return query
	}

	if filter.Participant != "" {
		query["$or"] = []bson.M{
			{"client": filter.Participant},
			{"professional": filter.Participant},
		}
	}
	if filter.Client != "" {
		query["client"] = filter.Client
	}
	if filter.Professional != "" {
		query["professional"] = filter.Professional
	}
	if len(filter.Statuses) > 0 {
		query["status"] = bson.M{"$in": filter.Statuses}
	}

	scheduled := bson.M{}
	if !filter.ScheduledAfter.IsZero() {
		scheduled["$gte"] = filter.ScheduledAfter
	}
	if !filter.ScheduledBefore.IsZero() {
		scheduled["$lt"] = filter.ScheduledBefore
	}
	if len(scheduled) > 0 {
		query["scheduledTime"] = scheduled
	}

	return query
}
