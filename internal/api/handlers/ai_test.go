package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/havenmind/support-service/internal/api/dto"
	"github.com/havenmind/support-service/internal/api/handlers"
	"github.com/havenmind/support-service/internal/core/docdb"
	"github.com/havenmind/support-service/internal/domain/models"
	rediscache "github.com/havenmind/support-service/internal/infrastructure/cache/redis"
	"github.com/havenmind/support-service/internal/services/chat"
	"github.com/havenmind/support-service/internal/services/completion"
	"github.com/havenmind/support-service/internal/services/crisis"
	"github.com/havenmind/support-service/internal/services/escalation"
	"github.com/havenmind/support-service/internal/services/session"
)

type memorySessionStore struct {
	sessions  map[string]*models.TherapySession
	exchanges []*models.Exchange
}

func newMemorySessionStore() *memorySessionStore {
	return &memorySessionStore{sessions: make(map[string]*models.TherapySession)}
}

func (s *memorySessionStore) CreateSession(_ context.Context, sess *models.TherapySession) error {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	s.sessions[sess.ID] = sess
	return nil
}

func (s *memorySessionStore) GetSession(_ context.Context, id, userID string) (*models.TherapySession, error) {
	sess, ok := s.sessions[id]
	if !ok || sess.UserID != userID {
		return nil, nil
	}
	return sess, nil
}

func (s *memorySessionStore) UpdateSession(_ context.Context, sess *models.TherapySession) error {
	s.sessions[sess.ID] = sess
	return nil
}

func (s *memorySessionStore) AppendExchange(_ context.Context, exchange *models.Exchange) error {
	if exchange.ID == "" {
		exchange.ID = uuid.NewString()
	}
	s.exchanges = append(s.exchanges, exchange)
	return nil
}

func (s *memorySessionStore) ListExchanges(_ context.Context, sessionID string) ([]*models.Exchange, error) {
	var out []*models.Exchange
	for _, ex := range s.exchanges {
		if ex.SessionID == sessionID {
			out = append(out, ex)
		}
	}
	return out, nil
}

func (s *memorySessionStore) EnsureIndexes(_ context.Context) error { return nil }

type memoryDirectory struct {
	professionals []*models.Professional
}

func (d *memoryDirectory) FindProfessionals(_ context.Context) ([]*models.Professional, error) {
	return d.professionals, nil
}

func (d *memoryDirectory) GetProfessional(_ context.Context, id string) (*models.Professional, error) {
	for _, p := range d.professionals {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

type memoryAppointments struct {
	appointments []*models.Appointment
}

func (s *memoryAppointments) Create(_ context.Context, appointment *models.Appointment) error {
	if appointment.ID == "" {
		appointment.ID = uuid.NewString()
	}
	s.appointments = append(s.appointments, appointment)
	return nil
}

func (s *memoryAppointments) Get(_ context.Context, id string) (*models.Appointment, error) {
	for _, a := range s.appointments {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (s *memoryAppointments) Update(_ context.Context, _ *models.Appointment) error { return nil }

func (s *memoryAppointments) List(_ context.Context, _ *docdb.AppointmentFilter) ([]*models.Appointment, error) {
	return s.appointments, nil
}

func (s *memoryAppointments) HasNonTerminal(_ context.Context, _, _ string) (bool, error) {
	return false, nil
}

func (s *memoryAppointments) HasUpcomingCommitment(_ context.Context, _ string, _, _ time.Time) (bool, error) {
	return false, nil
}

func (s *memoryAppointments) EnsureIndexes(_ context.Context) error { return nil }

type memoryConversations struct {
	messages []*models.Message
}

func (s *memoryConversations) AppendMessage(_ context.Context, message *models.Message) error {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	s.messages = append(s.messages, message)
	return nil
}

func (s *memoryConversations) ListByRoom(_ context.Context, roomID string) ([]*models.Message, error) {
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

func (s *memoryConversations) ListRoomsByParticipant(_ context.Context, _ string) ([]string, error) {
	return nil, nil
}

func (s *memoryConversations) EnsureIndexes(_ context.Context) error { return nil }

type stubModel struct {
	response string
	prompts  []string
}

func (p *stubModel) Name() string { return "stub" }

func (p *stubModel) Complete(_ context.Context, prompt string) (string, error) {
	p.prompts = append(p.prompts, prompt)
	return p.response, nil
}

// aiFixture wires the generate endpoint the way the server does, with
// in-memory stores behind every service.
type aiFixture struct {
	router       *gin.Engine
	sessions     *session.Service
	sessionStore *memorySessionStore
	appointments *memoryAppointments
	model        *stubModel
}

func newAIFixture(t *testing.T, professionals []*models.Professional) *aiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	redisClient := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	cacheClient := rediscache.NewClientWithCache(
		rediscache.NewCacheWithClient(redisClient, time.Minute))

	sessionStore := newMemorySessionStore()
	sessions, err := session.NewService(&session.Config{
		Store:        sessionStore,
		CacheClient:  cacheClient,
		ServerSecret: "test-secret",
	})
	require.NoError(t, err)

	chatService, err := chat.NewService(&chat.Config{
		Store:        &memoryConversations{},
		ServerSecret: "test-secret",
	})
	require.NoError(t, err)

	appointmentStore := &memoryAppointments{}
	workflow, err := escalation.NewWorkflow(&escalation.Config{
		Directory:    &memoryDirectory{professionals: professionals},
		Appointments: appointmentStore,
		Chat:         chatService,
	})
	require.NoError(t, err)

	model := &stubModel{response: "That sounds difficult. Tell me more."}
	handler := handlers.NewAIHandler(sessions, crisis.NewClassifier(), workflow,
		completion.NewChain(model))

	router := gin.New()
	router.POST("/ai/generate", func(c *gin.Context) {
		c.Set("user_id", "alice")
		c.Set("user_role", "user")
	}, handler.Generate)

	return &aiFixture{
		router:       router,
		sessions:     sessions,
		sessionStore: sessionStore,
		appointments: appointmentStore,
		model:        model,
	}
}

func (f *aiFixture) generate(t *testing.T, sessionID, message string) (*httptest.ResponseRecorder, dto.GenerateResponse) {
	t.Helper()

	body, err := json.Marshal(dto.GenerateRequest{SessionID: sessionID, Message: message})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/ai/generate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	f.router.ServeHTTP(recorder, req)

	var resp dto.GenerateResponse
	if recorder.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	}
	return recorder, resp
}

func TestGenerate_CrisisBooksUrgentAppointment(t *testing.T) {
	fixture := newAIFixture(t, []*models.Professional{
		{ID: "dr-lane", Username: "dr.lane", Email: "lane@example.com"},
	})
	sess, err := fixture.sessions.Start(context.Background(), "alice", 3)
	require.NoError(t, err)

	recorder, resp := fixture.generate(t, sess.ID, "I want to kill myself")
	require.Equal(t, http.StatusOK, recorder.Code)

	assert.True(t, resp.Danger)
	assert.True(t, resp.Escalated)
	require.NotNil(t, resp.Booked)
	assert.Equal(t, "dr-lane", resp.Booked.Professional)
	assert.Equal(t, "alice", resp.Booked.Client)
	assert.True(t, resp.Booked.CrisisBooked)
	assert.Contains(t, resp.Response, "dr.lane")
	assert.Contains(t, resp.Response, "988")

	// The model chain was never consulted.
	assert.Empty(t, fixture.model.prompts)

	// The appointment was persisted and the exchange recorded.
	require.Len(t, fixture.appointments.appointments, 1)
	assert.Equal(t, models.StatusApproved, fixture.appointments.appointments[0].Status)
	require.Len(t, fixture.sessionStore.exchanges, 1)
	assert.Equal(t, "I want to kill myself", fixture.sessionStore.exchanges[0].Prompt)
}

func TestGenerate_CrisisWithNobodyAvailableFallsBackToHotline(t *testing.T) {
	fixture := newAIFixture(t, nil)
	sess, err := fixture.sessions.Start(context.Background(), "alice", 3)
	require.NoError(t, err)

	recorder, resp := fixture.generate(t, sess.ID, "I can't go on anymore")
	require.Equal(t, http.StatusOK, recorder.Code)

	assert.True(t, resp.Danger)
	assert.False(t, resp.Escalated)
	assert.Nil(t, resp.Booked)
	assert.Contains(t, resp.Response, "988")
	assert.Contains(t, resp.Response, "741741")
	assert.Empty(t, fixture.appointments.appointments)
}

func TestGenerate_NeutralMessageAnswersThroughChain(t *testing.T) {
	fixture := newAIFixture(t, []*models.Professional{
		{ID: "dr-lane", Username: "dr.lane"},
	})
	sess, err := fixture.sessions.Start(context.Background(), "alice", 6)
	require.NoError(t, err)

	recorder, resp := fixture.generate(t, sess.ID, "Work has been stressful lately")
	require.Equal(t, http.StatusOK, recorder.Code)

	assert.False(t, resp.Danger)
	assert.False(t, resp.Escalated)
	assert.Nil(t, resp.Booked)
	assert.Equal(t, "That sounds difficult. Tell me more.", resp.Response)
	require.Len(t, fixture.model.prompts, 1)
	assert.Empty(t, fixture.appointments.appointments)
}

func TestGenerate_TerminatedSessionConflicts(t *testing.T) {
	fixture := newAIFixture(t, nil)
	ctx := context.Background()
	sess, err := fixture.sessions.Start(ctx, "alice", 6)
	require.NoError(t, err)
	_, err = fixture.sessions.End(ctx, sess.ID, "alice")
	require.NoError(t, err)

	recorder, _ := fixture.generate(t, sess.ID, "hello again")
	assert.Equal(t, http.StatusConflict, recorder.Code)
}

func TestGenerate_UnknownSessionNotFound(t *testing.T) {
	fixture := newAIFixture(t, nil)

	recorder, _ := fixture.generate(t, "missing-session", "hello")
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}
