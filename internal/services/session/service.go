// Package session manages therapy sessions and their exchange history.
// Sessions and exchanges are persisted in the document store; the recent
// exchange window used as prompt context is additionally cached in Redis,
// encrypted at rest, so the hot path does not hit Mongo on every turn.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/havenmind/support-service/internal/core/cache"
	"github.com/havenmind/support-service/internal/core/docdb"
	"github.com/havenmind/support-service/internal/domain/errors"
	"github.com/havenmind/support-service/internal/domain/models"
	"github.com/havenmind/support-service/internal/pkg/cipher"
)

const (
	// DefaultHistoryTTL is the default TTL for the cached exchange window.
	DefaultHistoryTTL = 3 * time.Minute

	// DefaultHistoryCount is the default number of cached exchanges.
	DefaultHistoryCount = 10

	cacheKeyRoot = "therapy"
)

// Service manages therapy sessions and their exchange history.
type Service struct {
	store        docdb.SessionStore
	cacheClient  cache.Client
	serverSecret string
	ttl          time.Duration
	historyCount int
}

// Config holds the session service configuration.
type Config struct {
	Store        docdb.SessionStore
	CacheClient  cache.Client
	ServerSecret string
	TTL          time.Duration
	HistoryCount int
}

// NewService creates a new session service.
func NewService(cfg *Config) (*Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if cfg.CacheClient == nil {
		return nil, fmt.Errorf("cache client is required")
	}
	if cfg.ServerSecret == "" {
		return nil, fmt.Errorf("server secret is required")
	}

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = DefaultHistoryTTL
	}
	count := cfg.HistoryCount
	if count == 0 {
		count = DefaultHistoryCount
	}

	return &Service{
		store:        cfg.Store,
		cacheClient:  cfg.CacheClient,
		serverSecret: cfg.ServerSecret,
		ttl:          ttl,
		historyCount: count,
	}, nil
}

// Start creates a new therapy session for the user with the given mood
// rating.
func (s *Service) Start(ctx context.Context, userID string, mood int) (*models.TherapySession, error) {
	if mood < 1 || mood > 10 {
		return nil, errors.NewValidationError("mood must be between 1 and 10", "")
	}

	session := models.NewTherapySession(userID, mood)
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, errors.NewPersistenceError("session creation", err)
	}
	return session, nil
}

// Get retrieves the user's session by id.
func (s *Service) Get(ctx context.Context, sessionID, userID string) (*models.TherapySession, error) {
	session, err := s.store.GetSession(ctx, sessionID, userID)
	if err != nil {
		return nil, errors.NewPersistenceError("session read", err)
	}
	if session == nil {
		return nil, errors.NewNotFoundError("session", sessionID)
	}
	return session, nil
}

// End terminates the user's session and drops its cached history.
func (s *Service) End(ctx context.Context, sessionID, userID string) (*models.TherapySession, error) {
	session, err := s.Get(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	if session.Terminate() {
		if err := s.store.UpdateSession(ctx, session); err != nil {
			return nil, errors.NewPersistenceError("session termination", err)
		}
	}

	if _, err := s.cacheClient.Delete(ctx, s.cacheKey(sessionID)); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).
			Msg("failed to drop cached session history")
	}

	return session, nil
}

// RecordExchange persists a prompt/response pair and refreshes the cached
// history window.
func (s *Service) RecordExchange(ctx context.Context, sessionID, prompt, response string) error {
	exchange := models.NewExchange(sessionID, prompt, response)
	if err := s.store.AppendExchange(ctx, exchange); err != nil {
		return errors.NewPersistenceError("exchange append", err)
	}

	history, err := s.readCachedHistory(ctx, sessionID)
	if err != nil {
		// Cache is an accelerator only; the store already holds the
		// exchange.
		log.Warn().Err(err).Str("session_id", sessionID).
			Msg("failed to read cached session history")
		return nil
	}

	if history == nil {
		// Cold cache. Seeding the window with just the newest exchange
		// would narrow the context served to the model, so rebuild from
		// the store, which already includes this exchange.
		stored, err := s.store.ListExchanges(ctx, sessionID)
		if err != nil {
			log.Warn().Err(err).Str("session_id", sessionID).
				Msg("failed to rebuild session history window")
			return nil
		}
		history = make([]models.Exchange, 0, len(stored))
		for _, ex := range stored {
			history = append(history, *ex)
		}
	} else {
		history = append(history, *exchange)
	}
	if len(history) > s.historyCount {
		history = history[len(history)-s.historyCount:]
	}

	if err := s.writeCachedHistory(ctx, sessionID, history); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).
			Msg("failed to write cached session history")
	}
	return nil
}

// History returns the recent exchange window for prompt context, served
// from cache when warm and rebuilt from the store otherwise.
func (s *Service) History(ctx context.Context, sessionID string) ([]models.Exchange, error) {
	cached, err := s.readCachedHistory(ctx, sessionID)
	if err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).
			Msg("cached session history unavailable, falling back to store")
	} else if cached != nil {
		return cached, nil
	}

	stored, err := s.store.ListExchanges(ctx, sessionID)
	if err != nil {
		return nil, errors.NewPersistenceError("exchange listing", err)
	}

	history := make([]models.Exchange, 0, len(stored))
	for _, ex := range stored {
		history = append(history, *ex)
	}
	if len(history) > s.historyCount {
		history = history[len(history)-s.historyCount:]
	}

	if err := s.writeCachedHistory(ctx, sessionID, history); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).
			Msg("failed to warm cached session history")
	}
	return history, nil
}

// readCachedHistory returns the cached window, nil on a miss. A stale or
// undecryptable entry is deleted and treated as a miss.
func (s *Service) readCachedHistory(ctx context.Context, sessionID string) ([]models.Exchange, error) {
	key := s.cacheKey(sessionID)

	encrypted, err := s.cacheClient.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to get history from cache: %w", err)
	}
	if encrypted == nil {
		return nil, nil
	}

	rc, err := s.historyCipher(sessionID)
	if err != nil {
		return nil, err
	}

	var env cipher.Envelope
	if err := json.Unmarshal(encrypted, &env); err != nil {
		_, _ = s.cacheClient.Delete(ctx, key)
		return nil, nil
	}

	plaintext, err := rc.Decrypt(&env)
	if err != nil {
		_, _ = s.cacheClient.Delete(ctx, key)
		return nil, nil
	}

	var history []models.Exchange
	if err := json.Unmarshal([]byte(plaintext), &history); err != nil {
		_, _ = s.cacheClient.Delete(ctx, key)
		return nil, nil
	}
	return history, nil
}

// writeCachedHistory encrypts and stores the window with the service TTL.
func (s *Service) writeCachedHistory(ctx context.Context, sessionID string, history []models.Exchange) error {
	data, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	rc, err := s.historyCipher(sessionID)
	if err != nil {
		return err
	}

	env, err := rc.Encrypt(string(data))
	if err != nil {
		return fmt.Errorf("failed to encrypt history: %w", err)
	}

	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	if err := s.cacheClient.Set(ctx, s.cacheKey(sessionID), payload, s.ttl); err != nil {
		return fmt.Errorf("failed to store history in cache: %w", err)
	}
	return nil
}

func (s *Service) historyCipher(sessionID string) (*cipher.RoomCipher, error) {
	return cipher.NewForRoom(sessionID, cacheKeyRoot, "history", s.serverSecret)
}

func (s *Service) cacheKey(sessionID string) string {
	return fmt.Sprintf("%s:history:%s", cacheKeyRoot, sessionID)
}
