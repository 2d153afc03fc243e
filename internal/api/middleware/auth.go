// Package middleware provides HTTP middleware for the API.
package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/havenmind/support-service/internal/domain/errors"
	"github.com/havenmind/support-service/internal/domain/models"
)

const (
	contextKeyUserID   = "user_id"
	contextKeyUserRole = "user_role"
)

// Claims are the JWT claims issued by the identity service.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthMiddleware validates bearer tokens minted by the identity service
// and exposes the authenticated user to downstream handlers.
type AuthMiddleware struct {
	secret []byte
}

// NewAuthMiddleware creates a new AuthMiddleware.
func NewAuthMiddleware(secret string) *AuthMiddleware {
	return &AuthMiddleware{
		secret: []byte(secret),
	}
}

// Authenticate returns a gin middleware that validates the Bearer token
// and stores the user id and role in the context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearer(c)
		if token == "" {
			HandleError(c, errors.NewUnauthorizedError("missing or malformed authorization header"))
			return
		}

		claims, err := m.Parse(token)
		if err != nil {
			HandleError(c, errors.NewUnauthorizedError("invalid token"))
			return
		}

		c.Set(contextKeyUserID, claims.Subject)
		c.Set(contextKeyUserRole, claims.Role)

		c.Next()
	}
}

// RequireRole returns a gin middleware that rejects users lacking the
// role. Must run after Authenticate.
func (m *AuthMiddleware) RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserRole(c) != role {
			HandleError(c, errors.NewForbiddenError(fmt.Sprintf("requires the %s role", role)))
			return
		}
		c.Next()
	}
}

// RequireProfessional restricts the route to professionals.
func (m *AuthMiddleware) RequireProfessional() gin.HandlerFunc {
	return m.RequireRole(models.RoleProfessional)
}

// Parse validates and decodes a token. Exposed for the websocket
// handshake, which carries the token as a query parameter.
func (m *AuthMiddleware) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("token is not valid")
	}
	return claims, nil
}

// GetUserID retrieves the authenticated user id from the gin context.
func GetUserID(c *gin.Context) string {
	if userID, exists := c.Get(contextKeyUserID); exists {
		return userID.(string)
	}
	return ""
}

// GetUserRole retrieves the authenticated user's role from the gin
// context.
func GetUserRole(c *gin.Context) string {
	if role, exists := c.Get(contextKeyUserRole); exists {
		return role.(string)
	}
	return ""
}

// extractBearer pulls the token out of the Authorization header.
func extractBearer(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
