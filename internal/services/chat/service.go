// Package chat provides the encrypted conversation service: it is the
// only component that turns plaintext into stored ciphertext and back.
// Decryption is server-mediated — clients never hold the room key, they
// only display what history reads return.
package chat

import (
	"context"
	"fmt"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/havenmind/support-service/internal/core/docdb"
	"github.com/havenmind/support-service/internal/domain/errors"
	"github.com/havenmind/support-service/internal/domain/models"
	"github.com/havenmind/support-service/internal/pkg/cipher"
)

// Service encrypts, persists and decrypts room messages.
type Service struct {
	store            docdb.ConversationStore
	serverSecret     string
	maxMessageLength int
}

// Config holds the chat service configuration.
type Config struct {
	Store            docdb.ConversationStore
	ServerSecret     string
	MaxMessageLength int
}

// NewService creates a new chat service.
func NewService(cfg *Config) (*Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("conversation store is required")
	}
	if cfg.ServerSecret == "" {
		return nil, fmt.Errorf("server secret is required")
	}

	maxLen := cfg.MaxMessageLength
	if maxLen == 0 {
		maxLen = 10000
	}

	return &Service{
		store:            cfg.Store,
		serverSecret:     cfg.ServerSecret,
		maxMessageLength: maxLen,
	}, nil
}

// SendMessage encrypts the plaintext and appends it to the room shared by
// sender and receiver. This is the durable path; realtime broadcast is a
// separate, non-persistent channel.
func (s *Service) SendMessage(ctx context.Context, sender, receiver, content string, ts time.Time) (*models.Message, error) {
	msg := models.NewMessage(models.RoomID(sender, receiver), sender, receiver, ts)
	if err := s.seal(msg, content); err != nil {
		return nil, err
	}

	if err := s.store.AppendMessage(ctx, msg); err != nil {
		return nil, errors.NewPersistenceError("chat message", err)
	}
	return msg, nil
}

// AppendNotification encrypts and appends a notification message (an
// appointment status change or a crisis alert) into a room.
func (s *Service) AppendNotification(ctx context.Context, sender, receiver, content string, kind models.MessageKind, appointmentID string) (*models.Message, error) {
	roomID := models.RoomID(sender, receiver)
	msg := models.NewNotificationMessage(roomID, sender, receiver, kind, appointmentID)
	if err := s.seal(msg, content); err != nil {
		return nil, err
	}

	if err := s.store.AppendMessage(ctx, msg); err != nil {
		return nil, errors.NewPersistenceError("notification message", err)
	}
	return msg, nil
}

// History returns a room's messages decrypted, ordered ascending by
// timestamp. A message whose ciphertext fails authentication is returned
// as an undecryptable placeholder; the rest of the history is unaffected.
func (s *Service) History(ctx context.Context, roomID string) ([]models.DecryptedMessage, error) {
	stored, err := s.store.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, errors.NewPersistenceError("chat history read", err)
	}

	history := make([]models.DecryptedMessage, 0, len(stored))
	for _, msg := range stored {
		entry := models.DecryptedMessage{
			ID:            msg.ID,
			RoomID:        msg.RoomID,
			Sender:        msg.Sender,
			Receiver:      msg.Receiver,
			Timestamp:     msg.Timestamp,
			Kind:          msg.Kind,
			AppointmentID: msg.AppointmentID,
		}

		content, err := s.open(msg)
		if err != nil {
			log.Warn().Err(err).
				Str("room_id", msg.RoomID).
				Str("message_id", msg.ID).
				Msg("message failed to decrypt, returning placeholder")
			entry.Content = models.UndecryptablePlaceholder
			entry.Undecryptable = true
		} else {
			entry.Content = content
		}

		history = append(history, entry)
	}

	return history, nil
}

// Rooms lists the room ids the participant has conversations in.
func (s *Service) Rooms(ctx context.Context, participantID string) ([]string, error) {
	rooms, err := s.store.ListRoomsByParticipant(ctx, participantID)
	if err != nil {
		return nil, errors.NewPersistenceError("room listing", err)
	}
	return rooms, nil
}

// seal encrypts content into the message and fills its encryption
// metadata.
func (s *Service) seal(msg *models.Message, content string) error {
	if content == "" {
		return errors.NewValidationError("message content is required", "")
	}
	if utf8.RuneCountInString(content) > s.maxMessageLength {
		return errors.NewValidationError("message too long",
			fmt.Sprintf("max %d characters", s.maxMessageLength))
	}

	rc, err := s.roomCipher(msg.RoomID, msg.Sender, msg.Receiver)
	if err != nil {
		return err
	}

	env, err := rc.Encrypt(content)
	if err != nil {
		return err
	}

	msg.Ciphertext = env.Ciphertext
	msg.Encryption = models.EncryptionMetadata{
		Algorithm:     cipher.Algorithm,
		IV:            env.IV,
		Tag:           env.Tag,
		IntegrityHash: cipher.Hash(content),
	}
	return nil
}

// open decrypts a stored message and cross-checks the integrity hash.
func (s *Service) open(msg *models.Message) (string, error) {
	rc, err := s.roomCipher(msg.RoomID, msg.Sender, msg.Receiver)
	if err != nil {
		return "", err
	}

	content, err := rc.Decrypt(&cipher.Envelope{
		Ciphertext: msg.Ciphertext,
		IV:         msg.Encryption.IV,
		Tag:        msg.Encryption.Tag,
	})
	if err != nil {
		return "", err
	}

	if msg.Encryption.IntegrityHash != "" && !cipher.VerifyIntegrity(content, msg.Encryption.IntegrityHash) {
		return "", errors.NewDecryptionError("integrity hash mismatch", nil)
	}

	return content, nil
}

// roomCipher derives the room cipher with participants in sorted order so
// every call site reconstructs the same key regardless of message
// direction.
func (s *Service) roomCipher(roomID, a, b string) (*cipher.RoomCipher, error) {
	ids := []string{a, b}
	sort.Strings(ids)
	return cipher.NewForRoom(roomID, ids[0], ids[1], s.serverSecret)
}
