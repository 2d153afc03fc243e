// Package models contains domain models for the Haven support service.
package models

import "time"

// AppointmentStatus represents the lifecycle state of an appointment.
type AppointmentStatus string

const (
	// StatusPending awaits the professional's decision.
	StatusPending AppointmentStatus = "pending"
	// StatusApproved is confirmed by the professional (or by the crisis
	// workflow, which creates appointments directly approved).
	StatusApproved AppointmentStatus = "approved"
	// StatusDeclined was rejected by the professional. Terminal.
	StatusDeclined AppointmentStatus = "declined"
	// StatusCompleted took place. Terminal.
	StatusCompleted AppointmentStatus = "completed"
	// StatusCancelled was cancelled by either party. Terminal.
	StatusCancelled AppointmentStatus = "cancelled"
)

// ParseAppointmentStatus validates a status string from the API surface.
func ParseAppointmentStatus(s string) (AppointmentStatus, bool) {
	switch status := AppointmentStatus(s); status {
	case StatusPending, StatusApproved, StatusDeclined, StatusCompleted, StatusCancelled:
		return status, true
	}
	return "", false
}

// IsTerminal reports whether the status permits no further transitions.
func (s AppointmentStatus) IsTerminal() bool {
	switch s {
	case StatusDeclined, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Appointment is a scheduled session between a client and a professional.
type Appointment struct {
	ID            string            `json:"id" bson:"_id"`
	Title         string            `json:"title" bson:"title"`
	Description   string            `json:"description" bson:"description"`
	ScheduledTime time.Time         `json:"scheduledTime" bson:"scheduledTime"`
	Client        string            `json:"client" bson:"client"`
	Professional  string            `json:"professional" bson:"professional"`
	Status        AppointmentStatus `json:"status" bson:"status"`
	MeetingLink   string            `json:"meetingLink,omitempty" bson:"meetingLink,omitempty"`
	Notes         string            `json:"notes,omitempty" bson:"notes,omitempty"`
	// CrisisBooked marks appointments created by the escalation workflow,
	// which bypass the one-non-terminal-per-pair invariant.
	CrisisBooked bool       `json:"crisisBooked,omitempty" bson:"crisisBooked,omitempty"`
	CreatedAt    time.Time  `json:"createdAt" bson:"createdAt"`
	ApprovedAt   *time.Time `json:"approvedAt,omitempty" bson:"approvedAt,omitempty"`
	DeclinedAt   *time.Time `json:"declinedAt,omitempty" bson:"declinedAt,omitempty"`
}

// NewAppointment creates a client-requested appointment in pending state.
func NewAppointment(title, description string, scheduledTime time.Time, client, professional string) *Appointment {
	return &Appointment{
		Title:         title,
		Description:   description,
		ScheduledTime: scheduledTime,
		Client:        client,
		Professional:  professional,
		Status:        StatusPending,
		CreatedAt:     time.Now().UTC(),
	}
}

// NewCrisisAppointment creates an urgent appointment directly approved,
// bypassing the normal pending workflow.
func NewCrisisAppointment(client, professional string, scheduledTime time.Time) *Appointment {
	now := time.Now().UTC()
	return &Appointment{
		Title:         "Urgent Mental Health Support",
		Description:   "Automatically scheduled crisis session. Please reach out to the client as soon as possible.",
		ScheduledTime: scheduledTime,
		Client:        client,
		Professional:  professional,
		Status:        StatusApproved,
		CrisisBooked:  true,
		CreatedAt:     now,
		ApprovedAt:    &now,
	}
}

// Approve transitions a pending appointment to approved.
func (a *Appointment) Approve(meetingLink, notes string) bool {
	if a.Status != StatusPending {
		return false
	}
	now := time.Now().UTC()
	a.Status = StatusApproved
	a.MeetingLink = meetingLink
	a.Notes = notes
	a.ApprovedAt = &now
	return true
}

// Decline transitions a pending appointment to declined.
func (a *Appointment) Decline(notes string) bool {
	if a.Status != StatusPending {
		return false
	}
	now := time.Now().UTC()
	a.Status = StatusDeclined
	a.Notes = notes
	a.DeclinedAt = &now
	return true
}

// Cancel transitions an approved appointment to cancelled.
func (a *Appointment) Cancel() bool {
	if a.Status != StatusApproved {
		return false
	}
	a.Status = StatusCancelled
	return true
}
