// Package escalation_test provides unit tests for the crisis escalation
// workflow.
package escalation_test

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/havenmind/support-service/internal/core/docdb"
	"github.com/havenmind/support-service/internal/domain/models"
	"github.com/havenmind/support-service/internal/services/chat"
	"github.com/havenmind/support-service/internal/services/escalation"
)

type fakeDirectory struct {
	professionals []*models.Professional
	err           error
}

func (d *fakeDirectory) FindProfessionals(_ context.Context) ([]*models.Professional, error) {
	return d.professionals, d.err
}

func (d *fakeDirectory) GetProfessional(_ context.Context, id string) (*models.Professional, error) {
	for _, p := range d.professionals {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

type fakeAppointments struct {
	appointments []*models.Appointment
	busy         map[string]bool
	createErr    error
}

func (s *fakeAppointments) Create(_ context.Context, appointment *models.Appointment) error {
	if s.createErr != nil {
		return s.createErr
	}
	if appointment.ID == "" {
		appointment.ID = uuid.NewString()
	}
	s.appointments = append(s.appointments, appointment)
	return nil
}

func (s *fakeAppointments) Get(_ context.Context, id string) (*models.Appointment, error) {
	for _, a := range s.appointments {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (s *fakeAppointments) Update(_ context.Context, _ *models.Appointment) error {
	return nil
}

func (s *fakeAppointments) List(_ context.Context, _ *docdb.AppointmentFilter) ([]*models.Appointment, error) {
	return s.appointments, nil
}

func (s *fakeAppointments) HasNonTerminal(_ context.Context, _, _ string) (bool, error) {
	return false, nil
}

func (s *fakeAppointments) HasUpcomingCommitment(_ context.Context, professionalID string, _, _ time.Time) (bool, error) {
	return s.busy[professionalID], nil
}

func (s *fakeAppointments) EnsureIndexes(_ context.Context) error {
	return nil
}

type memoryStore struct {
	messages []*models.Message
}

func (s *memoryStore) AppendMessage(_ context.Context, message *models.Message) error {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	s.messages = append(s.messages, message)
	return nil
}

func (s *memoryStore) ListByRoom(_ context.Context, roomID string) ([]*models.Message, error) {
	var out []*models.Message
	for _, m := range s.messages {
		if m.RoomID == roomID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

func (s *memoryStore) ListRoomsByParticipant(_ context.Context, _ string) ([]string, error) {
	return nil, nil
}

func (s *memoryStore) EnsureIndexes(_ context.Context) error {
	return nil
}

func newWorkflow(t *testing.T, directory *fakeDirectory, store *fakeAppointments) (*escalation.Workflow, *memoryStore) {
	t.Helper()

	msgStore := &memoryStore{}
	chatService, err := chat.NewService(&chat.Config{
		Store:        msgStore,
		ServerSecret: "test-secret",
	})
	require.NoError(t, err)

	workflow, err := escalation.NewWorkflow(&escalation.Config{
		Directory:       directory,
		Appointments:    store,
		Chat:            chatService,
		LookaheadWindow: 60 * time.Minute,
		UrgentOffset:    30 * time.Minute,
	})
	require.NoError(t, err)
	return workflow, msgStore
}

func TestEscalate_BooksUrgentAppointment(t *testing.T) {
	directory := &fakeDirectory{professionals: []*models.Professional{
		{ID: "dr-lane", Username: "dr.lane"},
	}}
	store := &fakeAppointments{busy: map[string]bool{}}
	workflow, msgStore := newWorkflow(t, directory, store)

	result, err := workflow.Escalate(context.Background(), "alice")
	require.NoError(t, err)

	assert.True(t, result.Escalated)
	assert.Contains(t, result.Response, "dr.lane")
	assert.Contains(t, result.Response, "988")
	require.NotNil(t, result.Appointment)
	assert.Equal(t, "dr-lane", result.Professional.ID)

	// The appointment is created directly approved with the crisis flag,
	// scheduled close to the urgent offset.
	appointment := result.Appointment
	assert.Equal(t, models.StatusApproved, appointment.Status)
	assert.True(t, appointment.CrisisBooked)
	assert.WithinDuration(t, time.Now().UTC().Add(30*time.Minute), appointment.ScheduledTime, 5*time.Second)

	// An alert notification landed in the shared room.
	require.Len(t, msgStore.messages, 1)
	assert.Equal(t, models.KindCrisisAlert, msgStore.messages[0].Kind)
	assert.Equal(t, appointment.ID, msgStore.messages[0].AppointmentID)
}

func TestEscalate_SkipsBusyProfessionals(t *testing.T) {
	directory := &fakeDirectory{professionals: []*models.Professional{
		{ID: "dr-busy"},
		{ID: "dr-free"},
	}}
	store := &fakeAppointments{busy: map[string]bool{"dr-busy": true}}
	workflow, _ := newWorkflow(t, directory, store)

	result, err := workflow.Escalate(context.Background(), "alice")
	require.NoError(t, err)

	assert.True(t, result.Escalated)
	assert.Equal(t, "dr-free", result.Professional.ID)
}

func TestEscalate_NoProfessionalAvailable_HotlineFallback(t *testing.T) {
	directory := &fakeDirectory{}
	store := &fakeAppointments{busy: map[string]bool{}}
	workflow, msgStore := newWorkflow(t, directory, store)

	result, err := workflow.Escalate(context.Background(), "alice")
	require.NoError(t, err)

	assert.False(t, result.Escalated)
	assert.Equal(t, escalation.HotlineFallbackMessage, result.Response)
	assert.Contains(t, result.Response, "988")
	assert.Nil(t, result.Appointment)

	// Nothing was booked and nothing was written.
	assert.Empty(t, store.appointments)
	assert.Empty(t, msgStore.messages)
}

func TestEscalate_EveryProfessionalBusy_HotlineFallback(t *testing.T) {
	directory := &fakeDirectory{professionals: []*models.Professional{
		{ID: "dr-a"},
		{ID: "dr-b"},
	}}
	store := &fakeAppointments{busy: map[string]bool{"dr-a": true, "dr-b": true}}
	workflow, _ := newWorkflow(t, directory, store)

	result, err := workflow.Escalate(context.Background(), "alice")
	require.NoError(t, err)

	assert.False(t, result.Escalated)
	assert.Equal(t, escalation.HotlineFallbackMessage, result.Response)
}

func TestEscalate_DirectoryError_StillAnswers(t *testing.T) {
	directory := &fakeDirectory{err: fmt.Errorf("directory down")}
	store := &fakeAppointments{busy: map[string]bool{}}
	workflow, _ := newWorkflow(t, directory, store)

	result, err := workflow.Escalate(context.Background(), "alice")

	assert.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, escalation.HotlineFallbackMessage, result.Response)
}

func TestEscalate_BookingError_StillAnswers(t *testing.T) {
	directory := &fakeDirectory{professionals: []*models.Professional{{ID: "dr-lane"}}}
	store := &fakeAppointments{busy: map[string]bool{}, createErr: fmt.Errorf("write failed")}
	workflow, _ := newWorkflow(t, directory, store)

	result, err := workflow.Escalate(context.Background(), "alice")

	assert.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, escalation.HotlineFallbackMessage, result.Response)
	assert.False(t, result.Escalated)
}
