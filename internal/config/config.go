// Package config handles application configuration loading and management.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Server     ServerConfig
	Cache      CacheConfig
	DocDB      DocDBConfig
	Chat       ChatConfig
	Escalation EscalationConfig
	AI         AIConfig
	Realtime   RealtimeConfig
	Log        LogConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host    string
	Port    int
	GinMode string
}

// Address returns the server address in host:port format.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// CacheConfig holds cache-related configuration.
type CacheConfig struct {
	Type     string
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

// DocDBConfig holds document database configuration.
type DocDBConfig struct {
	Type     string
	URI      string
	Database string
}

// ChatConfig holds encrypted chat configuration.
type ChatConfig struct {
	// ServerSecret feeds per-room key derivation. Required in production.
	ServerSecret string
	// JWTSecret verifies bearer tokens issued by the auth service.
	JWTSecret string
	// MaxMessageLength bounds a single chat message in characters.
	MaxMessageLength int
}

// EscalationConfig holds crisis escalation configuration.
type EscalationConfig struct {
	// LookaheadWindow is how far ahead a professional's calendar must be
	// clear to count as available.
	LookaheadWindow time.Duration
	// UrgentOffset is how soon after "now" a crisis session is scheduled.
	UrgentOffset time.Duration
}

// AIConfig holds generative AI provider configuration.
type AIConfig struct {
	GeminiAPIKey   string
	GeminiModel    string
	DeepseekAPIKey string
	DeepseekURL    string
	LlamaAPIKey    string
	LlamaModelURL  string
	RequestTimeout time.Duration
}

// RealtimeConfig holds websocket channel configuration.
type RealtimeConfig struct {
	WriteWait      time.Duration
	PongWait       time.Duration
	PingInterval   time.Duration
	MaxMessageSize int64
	SendBufferSize int
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:    getEnv("SERVER_HOST", "0.0.0.0"),
			Port:    getEnvAsInt("SERVER_PORT", 8080),
			GinMode: getEnv("GIN_MODE", "debug"),
		},
		Cache: CacheConfig{
			Type:     getEnv("CACHE_TYPE", "redis"),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			TTL:      time.Duration(getEnvAsInt("CACHE_TTL_SECONDS", 180)) * time.Second,
		},
		DocDB: DocDBConfig{
			Type:     getEnv("DOCDB_TYPE", "mongodb"),
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "havenmind"),
		},
		Chat: ChatConfig{
			ServerSecret:     getEnv("CHAT_SERVER_SECRET", ""),
			JWTSecret:        getEnv("JWT_SECRET", ""),
			MaxMessageLength: getEnvAsInt("CHAT_MAX_MESSAGE_LENGTH", 10000),
		},
		Escalation: EscalationConfig{
			LookaheadWindow: time.Duration(getEnvAsInt("ESCALATION_LOOKAHEAD_MINUTES", 60)) * time.Minute,
			UrgentOffset:    time.Duration(getEnvAsInt("ESCALATION_URGENT_OFFSET_MINUTES", 30)) * time.Minute,
		},
		AI: AIConfig{
			GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
			GeminiModel:    getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			DeepseekAPIKey: getEnv("DEEPSEEK_API_KEY", ""),
			DeepseekURL:    getEnv("DEEPSEEK_API_URL", "https://api.deepseek.com/v1"),
			LlamaAPIKey:    getEnv("LLAMA_API_KEY", ""),
			LlamaModelURL:  getEnv("LLAMA_MODEL_URL", "meta-llama/Llama-2-7b-chat-hf"),
			RequestTimeout: time.Duration(getEnvAsInt("AI_REQUEST_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		Realtime: RealtimeConfig{
			WriteWait:      time.Duration(getEnvAsInt("WS_WRITE_WAIT_SECONDS", 10)) * time.Second,
			PongWait:       time.Duration(getEnvAsInt("WS_PONG_WAIT_SECONDS", 20)) * time.Second,
			PingInterval:   time.Duration(getEnvAsInt("WS_PING_INTERVAL_SECONDS", 15)) * time.Second,
			MaxMessageSize: int64(getEnvAsInt("WS_MAX_MESSAGE_BYTES", 65536)),
			SendBufferSize: getEnvAsInt("WS_SEND_BUFFER_SIZE", 256),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if cfg.Escalation.UrgentOffset > cfg.Escalation.LookaheadWindow {
		return nil, fmt.Errorf("urgent offset (%s) must fall within the lookahead window (%s)",
			cfg.Escalation.UrgentOffset, cfg.Escalation.LookaheadWindow)
	}

	return cfg, nil
}

// getEnv gets an environment variable with a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
