// Package models_test provides unit tests for the domain models.
package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/havenmind/support-service/internal/domain/models"
)

func TestRoomID_SymmetricAcrossParticipants(t *testing.T) {
	assert.Equal(t, models.RoomID("alice", "bob"), models.RoomID("bob", "alice"))
	assert.Equal(t, "alice_bob", models.RoomID("bob", "alice"))
}

func TestRoomID_DistinctPairsDistinctRooms(t *testing.T) {
	assert.NotEqual(t, models.RoomID("alice", "bob"), models.RoomID("alice", "carol"))
}

func TestNewMessage_Defaults(t *testing.T) {
	msg := models.NewMessage("alice_bob", "alice", "bob", time.Time{})

	assert.Equal(t, models.KindMessage, msg.Kind)
	assert.False(t, msg.Timestamp.IsZero())
}

func TestAppointmentStatus_IsTerminal(t *testing.T) {
	assert.False(t, models.StatusPending.IsTerminal())
	assert.False(t, models.StatusApproved.IsTerminal())
	assert.True(t, models.StatusDeclined.IsTerminal())
	assert.True(t, models.StatusCompleted.IsTerminal())
	assert.True(t, models.StatusCancelled.IsTerminal())
}

func TestParseAppointmentStatus(t *testing.T) {
	status, ok := models.ParseAppointmentStatus("approved")
	assert.True(t, ok)
	assert.Equal(t, models.StatusApproved, status)

	_, ok = models.ParseAppointmentStatus("rescheduled")
	assert.False(t, ok)
}

func TestAppointment_Lifecycle(t *testing.T) {
	appointment := models.NewAppointment("Check-in", "", time.Now().Add(24*time.Hour), "alice", "dr-lane")
	assert.Equal(t, models.StatusPending, appointment.Status)

	ok := appointment.Approve("https://meet.example/abc", "see you then")
	assert.True(t, ok)
	assert.Equal(t, models.StatusApproved, appointment.Status)
	assert.NotNil(t, appointment.ApprovedAt)

	// Approved appointments cannot be approved or declined again.
	assert.False(t, appointment.Approve("", ""))
	assert.False(t, appointment.Decline(""))

	assert.True(t, appointment.Cancel())
	assert.Equal(t, models.StatusCancelled, appointment.Status)
	assert.False(t, appointment.Cancel())
}

func TestAppointment_DeclineOnlyFromPending(t *testing.T) {
	appointment := models.NewAppointment("Check-in", "", time.Now().Add(24*time.Hour), "alice", "dr-lane")

	assert.True(t, appointment.Decline("fully booked"))
	assert.Equal(t, models.StatusDeclined, appointment.Status)
	assert.NotNil(t, appointment.DeclinedAt)
	assert.False(t, appointment.Cancel())
}

func TestNewCrisisAppointment_DirectlyApproved(t *testing.T) {
	scheduled := time.Now().UTC().Add(30 * time.Minute)
	appointment := models.NewCrisisAppointment("alice", "dr-lane", scheduled)

	assert.Equal(t, models.StatusApproved, appointment.Status)
	assert.True(t, appointment.CrisisBooked)
	assert.NotNil(t, appointment.ApprovedAt)
	assert.Equal(t, scheduled, appointment.ScheduledTime)
}

func TestTherapySession_TerminateIdempotent(t *testing.T) {
	session := models.NewTherapySession("alice", 4)

	assert.True(t, session.Terminate())
	assert.True(t, session.Terminated)
	assert.False(t, session.Terminate())
}
