package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/havenmind/support-service/internal/api/dto"
	"github.com/havenmind/support-service/internal/api/handlers"
	"github.com/havenmind/support-service/internal/core/cache"
	"github.com/havenmind/support-service/internal/core/docdb"
)

type fakeCacheClient struct {
	pingErr error
}

func (f *fakeCacheClient) Get(_ context.Context, _ string) ([]byte, error) { return nil, nil }
func (f *fakeCacheClient) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error {
	return nil
}
func (f *fakeCacheClient) Delete(_ context.Context, _ string) (bool, error)         { return false, nil }
func (f *fakeCacheClient) DeletePattern(_ context.Context, _ string) (int64, error) { return 0, nil }
func (f *fakeCacheClient) Ping(_ context.Context) error                             { return f.pingErr }
func (f *fakeCacheClient) Close() error                                             { return nil }
func (f *fakeCacheClient) GetCache() cache.Cache                                    { return f }

type fakeDocDBClient struct {
	pingErr error
}

func (f *fakeDocDBClient) Conversations() docdb.ConversationStore { return nil }
func (f *fakeDocDBClient) Appointments() docdb.AppointmentStore   { return nil }
func (f *fakeDocDBClient) Directory() docdb.ProfessionalDirectory { return nil }
func (f *fakeDocDBClient) Sessions() docdb.SessionStore           { return nil }
func (f *fakeDocDBClient) EnsureIndexes(_ context.Context) error  { return nil }
func (f *fakeDocDBClient) Ping(_ context.Context) error           { return f.pingErr }
func (f *fakeDocDBClient) Close(_ context.Context) error          { return nil }

func performHealthRequest(t *testing.T, handler gin.HandlerFunc, path string) *httptest.ResponseRecorder {
	t.Helper()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET(path, handler)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestHealth_AllComponentsHealthy(t *testing.T) {
	handler := handlers.NewHealthHandler(&fakeCacheClient{}, &fakeDocDBClient{})

	recorder := performHealthRequest(t, handler.Health, "/health")

	assert.Equal(t, http.StatusOK, recorder.Code)

	var body dto.HealthResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "healthy", body.Components["cache"])
	assert.Equal(t, "healthy", body.Components["docdb"])
}

func TestHealth_UnhealthyComponent(t *testing.T) {
	handler := handlers.NewHealthHandler(
		&fakeCacheClient{pingErr: fmt.Errorf("connection refused")},
		&fakeDocDBClient{})

	recorder := performHealthRequest(t, handler.Health, "/health")

	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)

	var body dto.HealthResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, "unhealthy", body.Components["cache"])
	assert.Equal(t, "healthy", body.Components["docdb"])
}

func TestReady_DocDBDown(t *testing.T) {
	handler := handlers.NewHealthHandler(
		&fakeCacheClient{},
		&fakeDocDBClient{pingErr: fmt.Errorf("no reachable servers")})

	recorder := performHealthRequest(t, handler.Ready, "/ready")

	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "docdb unavailable")
}

func TestLive_AlwaysOK(t *testing.T) {
	handler := handlers.NewHealthHandler(&fakeCacheClient{}, &fakeDocDBClient{})

	recorder := performHealthRequest(t, handler.Live, "/live")

	assert.Equal(t, http.StatusOK, recorder.Code)
}
