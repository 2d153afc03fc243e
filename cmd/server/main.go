// Package main is the entry point for the Haven support service.
// @title Haven Support Service API
// @version 1.0
// @description Mental health support backend: encrypted chat, crisis screening and escalation, appointment booking, and AI therapy sessions

// @contact.name API Support
// @contact.url https://github.com/havenmind/support-service

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token authentication
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/havenmind/support-service/docs"
	"github.com/havenmind/support-service/internal/api/handlers"
	"github.com/havenmind/support-service/internal/api/middleware"
	"github.com/havenmind/support-service/internal/api/routes"
	"github.com/havenmind/support-service/internal/config"
	"github.com/havenmind/support-service/internal/core/cache"
	"github.com/havenmind/support-service/internal/core/docdb"
	rediscache "github.com/havenmind/support-service/internal/infrastructure/cache/redis"
	"github.com/havenmind/support-service/internal/infrastructure/docdb/mongodb"
	"github.com/havenmind/support-service/internal/realtime"
	"github.com/havenmind/support-service/internal/services/appointments"
	"github.com/havenmind/support-service/internal/services/chat"
	"github.com/havenmind/support-service/internal/services/completion"
	"github.com/havenmind/support-service/internal/services/crisis"
	"github.com/havenmind/support-service/internal/services/escalation"
	"github.com/havenmind/support-service/internal/services/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	setupLogging(cfg.Log)

	ctx := context.Background()

	cacheClient, err := createCacheClient(cfg.Cache)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize cache client")
	}
	defer cacheClient.Close()

	docDBClient, err := createDocDBClient(ctx, cfg.DocDB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize document db client")
	}
	defer docDBClient.Close(ctx)

	if err := docDBClient.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to ensure indexes")
	}

	hub := realtime.NewHub(cfg.Realtime)
	go hub.Run()

	router, err := setupRouter(cfg, cacheClient, docDBClient, hub)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up router")
	}

	srv := &http.Server{
		Addr:    cfg.Server.Address(),
		Handler: router,
	}

	go func() {
		log.Info().Str("address", cfg.Server.Address()).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}

// setupLogging configures the global zerolog logger.
func setupLogging(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

// createCacheClient creates a cache client based on the configuration.
func createCacheClient(cfg config.CacheConfig) (cache.Client, error) {
	cacheType := cache.Type(cfg.Type)

	switch cacheType {
	case cache.TypeRedis:
		return rediscache.NewClient(rediscache.Config{
			Host:       cfg.Host,
			Port:       cfg.Port,
			Password:   cfg.Password,
			DB:         cfg.DB,
			DefaultTTL: cfg.TTL,
		})
	default:
		log.Fatal().Str("type", cfg.Type).Msg("unsupported cache type")
		return nil, nil
	}
}

// createDocDBClient creates a document database client based on the configuration.
func createDocDBClient(ctx context.Context, cfg config.DocDBConfig) (docdb.Client, error) {
	docDBType := docdb.Type(cfg.Type)

	switch docDBType {
	case docdb.TypeMongoDB:
		return mongodb.NewClient(ctx, &mongodb.ClientConfig{
			URI:          cfg.URI,
			DatabaseName: cfg.Database,
		})
	default:
		log.Fatal().Str("type", cfg.Type).Msg("unsupported docdb type")
		return nil, nil
	}
}

// createProviderChain wires the model providers that have credentials, in
// preference order.
func createProviderChain(cfg config.AIConfig) (*completion.Chain, error) {
	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	var providers []completion.Provider

	if cfg.GeminiAPIKey != "" {
		gemini, err := completion.NewGeminiProvider(&completion.GeminiConfig{
			APIKey:     cfg.GeminiAPIKey,
			Model:      cfg.GeminiModel,
			HTTPClient: httpClient,
		})
		if err != nil {
			return nil, err
		}
		providers = append(providers, gemini)
	}

	if cfg.DeepseekAPIKey != "" {
		deepseek, err := completion.NewDeepseekProvider(&completion.DeepseekConfig{
			APIKey:     cfg.DeepseekAPIKey,
			BaseURL:    cfg.DeepseekURL,
			HTTPClient: httpClient,
		})
		if err != nil {
			return nil, err
		}
		providers = append(providers, deepseek)
	}

	if cfg.LlamaAPIKey != "" {
		llama, err := completion.NewLlamaProvider(&completion.LlamaConfig{
			APIKey:     cfg.LlamaAPIKey,
			Model:      cfg.LlamaModelURL,
			HTTPClient: httpClient,
		})
		if err != nil {
			return nil, err
		}
		providers = append(providers, llama)
	}

	if len(providers) == 0 {
		log.Warn().Msg("no completion providers configured, generation will be unavailable")
	}

	return completion.NewChain(providers...), nil
}

// setupRouter creates and configures the Gin router.
func setupRouter(cfg *config.Config, cacheClient cache.Client, docDBClient docdb.Client, hub *realtime.Hub) (*gin.Engine, error) {
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()

	loggingMw := middleware.NewLoggingMiddleware()
	errorMw := middleware.NewErrorMiddleware()
	authMw := middleware.NewAuthMiddleware(cfg.Chat.JWTSecret)

	chatService, err := chat.NewService(&chat.Config{
		Store:            docDBClient.Conversations(),
		ServerSecret:     cfg.Chat.ServerSecret,
		MaxMessageLength: cfg.Chat.MaxMessageLength,
	})
	if err != nil {
		return nil, err
	}

	appointmentService, err := appointments.NewService(&appointments.Config{
		Store:     docDBClient.Appointments(),
		Directory: docDBClient.Directory(),
		Chat:      chatService,
	})
	if err != nil {
		return nil, err
	}

	escalationWorkflow, err := escalation.NewWorkflow(&escalation.Config{
		Directory:       docDBClient.Directory(),
		Appointments:    docDBClient.Appointments(),
		Chat:            chatService,
		LookaheadWindow: cfg.Escalation.LookaheadWindow,
		UrgentOffset:    cfg.Escalation.UrgentOffset,
	})
	if err != nil {
		return nil, err
	}

	sessionService, err := session.NewService(&session.Config{
		Store:        docDBClient.Sessions(),
		CacheClient:  cacheClient,
		ServerSecret: cfg.Chat.ServerSecret,
		TTL:          cfg.Cache.TTL,
	})
	if err != nil {
		return nil, err
	}

	providerChain, err := createProviderChain(cfg.AI)
	if err != nil {
		return nil, err
	}
	log.Info().Strs("providers", providerChain.Providers()).Msg("completion chain configured")

	classifier := crisis.NewClassifier()

	healthHandler := handlers.NewHealthHandler(cacheClient, docDBClient)
	chatHandler := handlers.NewChatHandler(chatService, hub)
	appointmentsHandler := handlers.NewAppointmentsHandler(appointmentService, docDBClient.Directory())
	aiHandler := handlers.NewAIHandler(sessionService, classifier, escalationWorkflow, providerChain)
	wsHandler := handlers.NewWSHandler(hub, chatService, authMw, cfg.Realtime)

	routesCfg := &routes.Config{
		HealthHandler:       healthHandler,
		ChatHandler:         chatHandler,
		AppointmentsHandler: appointmentsHandler,
		AIHandler:           aiHandler,
		WSHandler:           wsHandler,
		AuthMiddleware:      authMw,
	}

	corsCfg := middleware.DefaultCORSConfig()
	router.Use(middleware.NewCORSMiddleware(corsCfg))
	middleware.SetupCORSRoutes(router, corsCfg)

	routes.SetupWithMiddleware(router, routesCfg, loggingMw, errorMw)

	// Swagger documentation endpoint
	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return router, nil
}
