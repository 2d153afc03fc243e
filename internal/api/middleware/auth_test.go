package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/havenmind/support-service/internal/api/middleware"
	"github.com/havenmind/support-service/internal/domain/errors"
	"github.com/havenmind/support-service/internal/domain/models"
)

const testSecret = "test-jwt-secret"

func signToken(t *testing.T, secret, subject, role string, expiresIn time.Duration) string {
	t.Helper()

	claims := middleware.Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func newAuthRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	chain := append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"userId": middleware.GetUserID(c),
			"role":   middleware.GetUserRole(c),
		})
	})
	router.GET("/protected", chain...)
	return router
}

func TestAuthenticate_ValidToken(t *testing.T) {
	auth := middleware.NewAuthMiddleware(testSecret)
	router := newAuthRouter(auth.Authenticate())

	token := signToken(t, testSecret, "alice", "user", time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "alice")
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	auth := middleware.NewAuthMiddleware(testSecret)
	router := newAuthRouter(auth.Authenticate())

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Contains(t, recorder.Body.String(), errors.ErrCodeUnauthorized)
}

func TestAuthenticate_WrongSecret(t *testing.T) {
	auth := middleware.NewAuthMiddleware(testSecret)
	router := newAuthRouter(auth.Authenticate())

	token := signToken(t, "another-secret", "alice", "user", time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	auth := middleware.NewAuthMiddleware(testSecret)
	router := newAuthRouter(auth.Authenticate())

	token := signToken(t, testSecret, "alice", "user", -time.Minute)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestRequireProfessional(t *testing.T) {
	auth := middleware.NewAuthMiddleware(testSecret)
	router := newAuthRouter(auth.Authenticate(), auth.RequireProfessional())

	clientToken := signToken(t, testSecret, "alice", "user", time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+clientToken)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusForbidden, recorder.Code)

	proToken := signToken(t, testSecret, "dr-lane", models.RoleProfessional, time.Hour)
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+proToken)
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestParse_EmptySubjectRejected(t *testing.T) {
	auth := middleware.NewAuthMiddleware(testSecret)

	token := signToken(t, testSecret, "", "user", time.Hour)
	_, err := auth.Parse(token)
	assert.Error(t, err)
}
