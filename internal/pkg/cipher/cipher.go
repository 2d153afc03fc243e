// Package cipher provides AES-256-GCM encryption for chat messages with
// deterministic per-room key derivation and integrity hashing.
package cipher

import (
	"crypto/aes"
	gocipher "crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/havenmind/support-service/internal/domain/errors"
)

const (
	// Algorithm is the tag stored with every encrypted message.
	Algorithm = "aes-256-gcm"
	// KeyLength is the AES-256 key size in bytes.
	KeyLength = 32
	// IVLength is the GCM nonce size in bytes (128 bits).
	IVLength = 16
	// TagLength is the GCM authentication tag size in bytes.
	TagLength = 16
)

// Envelope carries one encrypted message. All fields are hex-encoded for
// storage and transport.
type Envelope struct {
	Ciphertext string
	IV         string
	Tag        string
}

// DeriveRoomKey derives the symmetric key for a room from the room id,
// both participant ids and the server-held secret. The derivation is a
// one-way hash: the same inputs always yield the same key, and without
// the server secret the key cannot be reconstructed.
func DeriveRoomKey(roomID, participantA, participantB, serverSecret string) ([]byte, error) {
	if roomID == "" || serverSecret == "" {
		return nil, errors.NewEncryptionError("room id and server secret are required for key derivation", nil)
	}
	material := fmt.Sprintf("%s_%s_%s_%s", roomID, participantA, participantB, serverSecret)
	sum := sha256.Sum256([]byte(material))
	return sum[:], nil
}

// RoomCipher performs authenticated encryption with a derived room key.
type RoomCipher struct {
	aead gocipher.AEAD
}

// New creates a RoomCipher for the given 32-byte key.
func New(key []byte) (*RoomCipher, error) {
	if len(key) != KeyLength {
		return nil, errors.NewEncryptionError(fmt.Sprintf("key must be %d bytes, got %d", KeyLength, len(key)), nil)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.NewEncryptionError("failed to create AES cipher", err)
	}

	// 16-byte nonce to match the stored IV format; GCM's default is 12.
	aead, err := gocipher.NewGCMWithNonceSize(block, IVLength)
	if err != nil {
		return nil, errors.NewEncryptionError("failed to create GCM", err)
	}

	return &RoomCipher{aead: aead}, nil
}

// NewForRoom derives the room key and returns a ready cipher.
func NewForRoom(roomID, participantA, participantB, serverSecret string) (*RoomCipher, error) {
	key, err := DeriveRoomKey(roomID, participantA, participantB, serverSecret)
	if err != nil {
		return nil, err
	}
	return New(key)
}

// Encrypt encrypts plaintext with a fresh random IV and returns the
// hex-encoded ciphertext, IV and authentication tag.
func (c *RoomCipher) Encrypt(plaintext string) (*Envelope, error) {
	if plaintext == "" {
		return nil, errors.NewEncryptionError("plaintext is required", nil)
	}

	iv := make([]byte, IVLength)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, errors.NewEncryptionError("failed to generate IV", err)
	}

	sealed := c.aead.Seal(nil, iv, []byte(plaintext), nil)

	// Seal appends the tag to the ciphertext; store them detached.
	split := len(sealed) - TagLength
	return &Envelope{
		Ciphertext: hex.EncodeToString(sealed[:split]),
		IV:         hex.EncodeToString(iv),
		Tag:        hex.EncodeToString(sealed[split:]),
	}, nil
}

// Decrypt authenticates and decrypts an envelope. A tag that does not
// verify (tampering or wrong key) returns a decryption error, never
// garbage plaintext.
func (c *RoomCipher) Decrypt(env *Envelope) (string, error) {
	if env == nil || env.Ciphertext == "" {
		return "", errors.NewDecryptionError("encrypted payload is required", nil)
	}

	ciphertext, err := hex.DecodeString(env.Ciphertext)
	if err != nil {
		return "", errors.NewDecryptionError("malformed ciphertext encoding", err)
	}
	iv, err := hex.DecodeString(env.IV)
	if err != nil || len(iv) != IVLength {
		return "", errors.NewDecryptionError("malformed IV", err)
	}
	tag, err := hex.DecodeString(env.Tag)
	if err != nil || len(tag) != TagLength {
		return "", errors.NewDecryptionError("malformed authentication tag", err)
	}

	plaintext, err := c.aead.Open(nil, iv, append(ciphertext, tag...), nil)
	if err != nil {
		return "", errors.NewDecryptionError("message failed authentication", err)
	}

	return string(plaintext), nil
}

// Hash returns the hex-encoded SHA-256 digest of the plaintext, stored
// alongside the ciphertext so a later decrypt can be cross-checked.
func Hash(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// VerifyIntegrity reports whether the candidate plaintext matches the
// stored digest.
func VerifyIntegrity(candidate, digest string) bool {
	if candidate == "" || digest == "" {
		return false
	}
	actual := Hash(candidate)
	return subtle.ConstantTimeCompare([]byte(actual), []byte(digest)) == 1
}

// GenerateKey generates a random 32-byte key, hex-encoded. Used for
// provisioning the server secret in development.
func GenerateKey() (string, error) {
	key := make([]byte, KeyLength)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}
	return hex.EncodeToString(key), nil
}
