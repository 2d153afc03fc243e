// Package routes defines the HTTP routes for the Haven support service.
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/havenmind/support-service/internal/api/handlers"
	"github.com/havenmind/support-service/internal/api/middleware"
)

// Config holds the dependencies for setting up routes.
type Config struct {
	HealthHandler       *handlers.HealthHandler
	ChatHandler         *handlers.ChatHandler
	AppointmentsHandler *handlers.AppointmentsHandler
	AIHandler           *handlers.AIHandler
	WSHandler           *handlers.WSHandler
	AuthMiddleware      *middleware.AuthMiddleware
}

// Setup configures all routes on the Gin engine.
func Setup(r *gin.Engine, cfg *Config) {
	// All routes live under /api/v1/support-service
	v1 := r.Group("/api/v1/support-service")
	{
		// Health check routes (no auth required)
		v1.GET("/health", cfg.HealthHandler.Health)
		v1.GET("/ready", cfg.HealthHandler.Ready)
		v1.GET("/live", cfg.HealthHandler.Live)

		// The websocket handshake authenticates via the token query
		// parameter because browsers cannot set headers on upgrades, so
		// it sits outside the bearer-auth group.
		v1.GET("/chat/ws", cfg.WSHandler.Connect)

		protected := v1.Group("")
		protected.Use(cfg.AuthMiddleware.Authenticate())

		chat := protected.Group("/chat")
		{
			chat.GET("/rooms", cfg.ChatHandler.GetRooms)
			chat.GET("/rooms/:roomId/messages", cfg.ChatHandler.GetHistory)
			chat.POST("/messages", cfg.ChatHandler.SendMessage)
		}

		protected.GET("/professionals", cfg.AppointmentsHandler.Professionals)

		appointments := protected.Group("/appointments")
		{
			appointments.POST("", cfg.AppointmentsHandler.Request)
			appointments.GET("", cfg.AppointmentsHandler.List)

			professional := appointments.Group("")
			professional.Use(cfg.AuthMiddleware.RequireProfessional())
			{
				professional.GET("/pending", cfg.AppointmentsHandler.ListPending)
				professional.POST("/:id/approve", cfg.AppointmentsHandler.Approve)
				professional.POST("/:id/decline", cfg.AppointmentsHandler.Decline)
			}

			appointments.POST("/:id/cancel", cfg.AppointmentsHandler.Cancel)
		}

		ai := protected.Group("/ai")
		{
			ai.POST("/sessions", cfg.AIHandler.StartSession)
			ai.POST("/sessions/:id/end", cfg.AIHandler.EndSession)
			ai.POST("/generate", cfg.AIHandler.Generate)
		}
	}
}

// SetupWithMiddleware sets up routes with common middleware.
func SetupWithMiddleware(r *gin.Engine, cfg *Config, loggingMw *middleware.LoggingMiddleware, errorMw *middleware.ErrorMiddleware) {
	r.Use(loggingMw.Logger())
	r.Use(errorMw.Recovery())
	r.Use(gin.Recovery())

	Setup(r, cfg)
}
