// Package appointments implements the booking workflow between clients
// and professionals: request, approve, decline, cancel, and the queries
// each side's schedule view needs. Every decision drops an encrypted
// notification message into the pair's room so the conversation carries
// the audit trail.
package appointments

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/havenmind/support-service/internal/core/docdb"
	"github.com/havenmind/support-service/internal/domain/errors"
	"github.com/havenmind/support-service/internal/domain/models"
	"github.com/havenmind/support-service/internal/services/chat"
)

// Service manages the appointment lifecycle.
type Service struct {
	store     docdb.AppointmentStore
	directory docdb.ProfessionalDirectory
	chat      *chat.Service
}

// Config holds the appointment service configuration.
type Config struct {
	Store     docdb.AppointmentStore
	Directory docdb.ProfessionalDirectory
	Chat      *chat.Service
}

// RequestInput carries a client's appointment request.
type RequestInput struct {
	Client        string
	Professional  string
	Title         string
	Description   string
	ScheduledTime time.Time
}

// NewService creates a new appointment service.
func NewService(cfg *Config) (*Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("appointment store is required")
	}
	if cfg.Directory == nil {
		return nil, fmt.Errorf("professional directory is required")
	}
	if cfg.Chat == nil {
		return nil, fmt.Errorf("chat service is required")
	}

	return &Service{
		store:     cfg.Store,
		directory: cfg.Directory,
		chat:      cfg.Chat,
	}, nil
}

// Request creates a pending appointment. A client may hold at most one
// open (pending or approved) appointment with a given professional, so a
// duplicate request is rejected with a conflict.
func (s *Service) Request(ctx context.Context, in *RequestInput) (*models.Appointment, error) {
	if in.Title == "" {
		return nil, errors.NewValidationError("title is required", "")
	}
	if in.ScheduledTime.IsZero() || in.ScheduledTime.Before(time.Now().UTC()) {
		return nil, errors.NewValidationError("scheduled time must be in the future", "")
	}

	professional, err := s.directory.GetProfessional(ctx, in.Professional)
	if err != nil {
		return nil, errors.NewPersistenceError("professional lookup", err)
	}
	if professional == nil {
		return nil, errors.NewNotFoundError("professional", in.Professional)
	}

	open, err := s.store.HasNonTerminal(ctx, in.Client, in.Professional)
	if err != nil {
		return nil, errors.NewPersistenceError("appointment dedup check", err)
	}
	if open {
		return nil, errors.NewConflictError("an open appointment with this professional already exists",
			"wait for a decision or cancel it first")
	}

	appointment := models.NewAppointment(in.Title, in.Description, in.ScheduledTime, in.Client, in.Professional)
	if err := s.store.Create(ctx, appointment); err != nil {
		return nil, errors.NewPersistenceError("appointment creation", err)
	}

	s.notify(ctx, appointment, appointment.Client, appointment.Professional,
		models.KindAppointmentRequested,
		fmt.Sprintf("New appointment request: %s, scheduled for %s.",
			appointment.Title, appointment.ScheduledTime.Format(time.RFC1123)))

	return appointment, nil
}

// Approve confirms a pending appointment. Only the assigned professional
// may approve.
func (s *Service) Approve(ctx context.Context, id, professionalID, meetingLink, notes string) (*models.Appointment, error) {
	appointment, err := s.getForProfessional(ctx, id, professionalID)
	if err != nil {
		return nil, err
	}

	if !appointment.Approve(meetingLink, notes) {
		return nil, errors.NewConflictError("appointment is not pending",
			fmt.Sprintf("current status: %s", appointment.Status))
	}
	if err := s.store.Update(ctx, appointment); err != nil {
		return nil, errors.NewPersistenceError("appointment approval", err)
	}

	s.notify(ctx, appointment, appointment.Professional, appointment.Client,
		models.KindAppointmentApproved,
		fmt.Sprintf("Your appointment %q was approved for %s.",
			appointment.Title, appointment.ScheduledTime.Format(time.RFC1123)))

	return appointment, nil
}

// Decline rejects a pending appointment. Only the assigned professional
// may decline.
func (s *Service) Decline(ctx context.Context, id, professionalID, notes string) (*models.Appointment, error) {
	appointment, err := s.getForProfessional(ctx, id, professionalID)
	if err != nil {
		return nil, err
	}

	if !appointment.Decline(notes) {
		return nil, errors.NewConflictError("appointment is not pending",
			fmt.Sprintf("current status: %s", appointment.Status))
	}
	if err := s.store.Update(ctx, appointment); err != nil {
		return nil, errors.NewPersistenceError("appointment decline", err)
	}

	s.notify(ctx, appointment, appointment.Professional, appointment.Client,
		models.KindAppointmentDeclined,
		fmt.Sprintf("Your appointment %q was declined.", appointment.Title))

	return appointment, nil
}

// Cancel cancels an approved appointment. Either party may cancel.
func (s *Service) Cancel(ctx context.Context, id, userID string) (*models.Appointment, error) {
	appointment, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, errors.NewPersistenceError("appointment read", err)
	}
	if appointment == nil {
		return nil, errors.NewNotFoundError("appointment", id)
	}
	if appointment.Client != userID && appointment.Professional != userID {
		return nil, errors.NewForbiddenError("appointment belongs to another user")
	}

	if !appointment.Cancel() {
		return nil, errors.NewConflictError("only approved appointments can be cancelled",
			fmt.Sprintf("current status: %s", appointment.Status))
	}
	if err := s.store.Update(ctx, appointment); err != nil {
		return nil, errors.NewPersistenceError("appointment cancellation", err)
	}

	counterpart := appointment.Professional
	if userID == appointment.Professional {
		counterpart = appointment.Client
	}
	s.notify(ctx, appointment, userID, counterpart,
		models.KindAppointmentCancelled,
		fmt.Sprintf("The appointment %q was cancelled.", appointment.Title))

	return appointment, nil
}

// ListForUser returns the user's appointments on either side of the
// booking, newest first, optionally narrowed to the given statuses.
func (s *Service) ListForUser(ctx context.Context, userID string, statuses ...models.AppointmentStatus) ([]*models.Appointment, error) {
	appointments, err := s.store.List(ctx, &docdb.AppointmentFilter{
		Participant: userID,
		Statuses:    statuses,
	})
	if err != nil {
		return nil, errors.NewPersistenceError("appointment listing", err)
	}
	return appointments, nil
}

// ListPending returns the professional's pending requests, newest first.
func (s *Service) ListPending(ctx context.Context, professionalID string) ([]*models.Appointment, error) {
	appointments, err := s.store.List(ctx, &docdb.AppointmentFilter{
		Professional: professionalID,
		Statuses:     []models.AppointmentStatus{models.StatusPending},
	})
	if err != nil {
		return nil, errors.NewPersistenceError("pending appointment listing", err)
	}
	return appointments, nil
}

// getForProfessional loads the appointment and checks it is assigned to
// the acting professional.
func (s *Service) getForProfessional(ctx context.Context, id, professionalID string) (*models.Appointment, error) {
	appointment, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, errors.NewPersistenceError("appointment read", err)
	}
	if appointment == nil {
		return nil, errors.NewNotFoundError("appointment", id)
	}
	if appointment.Professional != professionalID {
		return nil, errors.NewForbiddenError("appointment is assigned to another professional")
	}
	return appointment, nil
}

// notify drops a status message into the pair's room. Best effort: the
// appointment state change already happened.
func (s *Service) notify(ctx context.Context, appointment *models.Appointment, sender, receiver string, kind models.MessageKind, content string) {
	if _, err := s.chat.AppendNotification(ctx, sender, receiver, content, kind, appointment.ID); err != nil {
		log.Error().Err(err).
			Str("appointment_id", appointment.ID).
			Str("kind", string(kind)).
			Msg("failed to append appointment notification")
	}
}
