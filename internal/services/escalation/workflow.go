// Package escalation implements the crisis handoff: when a message is
// classified as a crisis disclosure, the workflow books an urgent
// appointment with an available professional and drops an alert into the
// shared room, then hands back a safety message for the user. Every
// internal failure degrades to the hotline response — the user always
// gets guidance.
package escalation

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/havenmind/support-service/internal/core/docdb"
	"github.com/havenmind/support-service/internal/domain/models"
	"github.com/havenmind/support-service/internal/services/chat"
)

// safetyMessageFormat is returned when an urgent appointment was booked.
// Verbs: the professional's display name and the scheduled time.
const safetyMessageFormat = "I'm really concerned about what you're sharing. Your safety matters, and you deserve immediate support. I've arranged an urgent session for you with %s at %s; please check your appointments. If you are in immediate danger, call 988 (Suicide & Crisis Lifeline) or 911 right now. You don't have to face this alone."

// HotlineFallbackMessage is returned when no professional could be
// reached; it still points the user at immediate help.
const HotlineFallbackMessage = "I'm really concerned about what you're sharing, and I want you to get help right away. Please call 988 (Suicide & Crisis Lifeline) to talk to someone now, or 911 if you are in immediate danger. You can also text HOME to 741741 to reach the Crisis Text Line. You don't have to face this alone."

// Result describes the outcome of a crisis escalation.
type Result struct {
	// Response is the safety text to surface to the user. Never empty.
	Response string `json:"response"`

	// Escalated reports whether an urgent appointment was booked.
	Escalated bool `json:"escalated"`

	// Appointment is the booked urgent appointment, nil when none was.
	Appointment *models.Appointment `json:"appointment,omitempty"`

	// Professional is the professional the user was handed to.
	Professional *models.Professional `json:"professional,omitempty"`
}

// Workflow books urgent appointments for users in crisis.
type Workflow struct {
	directory       docdb.ProfessionalDirectory
	appointments    docdb.AppointmentStore
	chat            *chat.Service
	lookaheadWindow time.Duration
	urgentOffset    time.Duration
}

// Config holds the escalation workflow configuration.
type Config struct {
	Directory    docdb.ProfessionalDirectory
	Appointments docdb.AppointmentStore
	Chat         *chat.Service

	// LookaheadWindow is how far ahead a professional's calendar is
	// checked for conflicts when judging availability.
	LookaheadWindow time.Duration

	// UrgentOffset is how far from now the urgent session is scheduled.
	UrgentOffset time.Duration
}

// NewWorkflow creates a new escalation workflow.
func NewWorkflow(cfg *Config) (*Workflow, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.Directory == nil {
		return nil, fmt.Errorf("professional directory is required")
	}
	if cfg.Appointments == nil {
		return nil, fmt.Errorf("appointment store is required")
	}
	if cfg.Chat == nil {
		return nil, fmt.Errorf("chat service is required")
	}

	lookahead := cfg.LookaheadWindow
	if lookahead == 0 {
		lookahead = 60 * time.Minute
	}
	offset := cfg.UrgentOffset
	if offset == 0 {
		offset = 30 * time.Minute
	}

	return &Workflow{
		directory:       cfg.Directory,
		appointments:    cfg.Appointments,
		chat:            cfg.Chat,
		lookaheadWindow: lookahead,
		urgentOffset:    offset,
	}, nil
}

// Escalate runs the crisis handoff for the given user. It never returns
// an empty response: when any step fails, the hotline fallback text is
// returned alongside the error so callers can still answer the user.
func (w *Workflow) Escalate(ctx context.Context, userID string) (*Result, error) {
	fallback := &Result{Response: HotlineFallbackMessage}

	professional, err := w.findAvailable(ctx, time.Now().UTC())
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).
			Msg("crisis escalation: professional lookup failed")
		return fallback, err
	}
	if professional == nil {
		log.Warn().Str("user_id", userID).
			Msg("crisis escalation: no professional available, returning hotline guidance")
		return fallback, nil
	}

	scheduledTime := time.Now().UTC().Add(w.urgentOffset)
	appointment := models.NewCrisisAppointment(userID, professional.ID, scheduledTime)
	if err := w.appointments.Create(ctx, appointment); err != nil {
		log.Error().Err(err).Str("user_id", userID).
			Str("professional_id", professional.ID).
			Msg("crisis escalation: urgent appointment creation failed")
		return fallback, err
	}

	// Notification is best effort: the appointment exists either way, and
	// the professional will see it on their schedule.
	alert := fmt.Sprintf("URGENT: a crisis support session has been scheduled for %s. A user may be at risk and needs immediate attention.",
		scheduledTime.Format(time.RFC1123))
	if _, err := w.chat.AppendNotification(ctx, userID, professional.ID, alert,
		models.KindCrisisAlert, appointment.ID); err != nil {
		log.Error().Err(err).
			Str("appointment_id", appointment.ID).
			Str("professional_id", professional.ID).
			Msg("crisis escalation: alert notification failed")
	}

	log.Info().
		Str("user_id", userID).
		Str("professional_id", professional.ID).
		Str("appointment_id", appointment.ID).
		Time("scheduled_time", scheduledTime).
		Msg("crisis escalation: urgent appointment booked")

	return &Result{
		Response: fmt.Sprintf(safetyMessageFormat,
			professional.DisplayName(), scheduledTime.Format(time.RFC1123)),
		Escalated:    true,
		Appointment:  appointment,
		Professional: professional,
	}, nil
}

// findAvailable returns the first professional with no approved or
// pending commitment inside the lookahead window, enumerated in the
// directory's stable order. Returns nil when everyone is booked.
func (w *Workflow) findAvailable(ctx context.Context, now time.Time) (*models.Professional, error) {
	professionals, err := w.directory.FindProfessionals(ctx)
	if err != nil {
		return nil, err
	}

	windowEnd := now.Add(w.lookaheadWindow)
	for _, p := range professionals {
		busy, err := w.appointments.HasUpcomingCommitment(ctx, p.ID, now, windowEnd)
		if err != nil {
			return nil, err
		}
		if !busy {
			return p, nil
		}
	}
	return nil, nil
}
