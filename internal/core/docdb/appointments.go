// Package docdb provides the appointment store interface.
package docdb

import (
	"context"
	"time"

	"github.com/havenmind/support-service/internal/domain/models"
)

// AppointmentFilter narrows appointment queries. Zero-value fields are
// ignored.
type AppointmentFilter struct {
	// Participant matches appointments where the id is the client or the
	// professional.
	Participant string
	// Client matches the client side only.
	Client string
	// Professional matches the professional side only.
	Professional string
	// Statuses restricts to the given lifecycle states.
	Statuses []models.AppointmentStatus
	// ScheduledAfter / ScheduledBefore bound the scheduled time, used by
	// the escalation availability check.
	ScheduledAfter  time.Time
	ScheduledBefore time.Time
}

// AppointmentStore persists appointments and answers the queries the
// booking and escalation flows need.
type AppointmentStore interface {
	// Create persists a new appointment.
	Create(ctx context.Context, appointment *models.Appointment) error

	// Get retrieves an appointment by id, nil when absent.
	Get(ctx context.Context, id string) (*models.Appointment, error)

	// Update replaces an existing appointment's mutable fields (status,
	// meeting link, notes, decision timestamps).
	Update(ctx context.Context, appointment *models.Appointment) error

	// List returns appointments matching the filter, newest first.
	List(ctx context.Context, filter *AppointmentFilter) ([]*models.Appointment, error)

	// HasNonTerminal reports whether a pending or approved appointment
	// already exists for the (client, professional) pair. Enforces the
	// one-open-appointment invariant for user-initiated requests; the
	// crisis path does not consult it.
	HasNonTerminal(ctx context.Context, clientID, professionalID string) (bool, error)

	// HasUpcomingCommitment reports whether the professional has a
	// pending or approved appointment scheduled inside the window.
	HasUpcomingCommitment(ctx context.Context, professionalID string, windowStart, windowEnd time.Time) (bool, error)

	// EnsureIndexes creates necessary indexes for the collection.
	EnsureIndexes(ctx context.Context) error
}
