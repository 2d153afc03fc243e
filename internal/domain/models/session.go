// Package models contains domain models for the Haven support service.
package models

import "time"

// TherapySession groups a sequence of AI prompt/response exchanges for
// conversational continuity. The crisis check runs per inbound prompt
// regardless of session state.
type TherapySession struct {
	ID         string    `json:"id" bson:"_id"`
	UserID     string    `json:"userId" bson:"userId"`
	Mood       int       `json:"mood,omitempty" bson:"mood,omitempty"`
	Model      string    `json:"model,omitempty" bson:"model,omitempty"`
	Terminated bool      `json:"terminated" bson:"terminated"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt" bson:"updatedAt"`
}

// NewTherapySession creates a new session for a user. Mood is the 1-10
// self-report captured at session start, 0 when not provided.
func NewTherapySession(userID string, mood int) *TherapySession {
	now := time.Now().UTC()
	return &TherapySession{
		UserID:    userID,
		Mood:      mood,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Terminate marks the session as ended. Terminated sessions reject new
// prompts. Returns false when the session was already terminated.
func (s *TherapySession) Terminate() bool {
	if s.Terminated {
		return false
	}
	s.Terminated = true
	s.UpdatedAt = time.Now().UTC()
	return true
}

// Exchange is one stored prompt/response pair within a session.
type Exchange struct {
	ID        string    `json:"id" bson:"_id"`
	SessionID string    `json:"sessionId" bson:"sessionId"`
	Prompt    string    `json:"prompt" bson:"prompt"`
	Response  string    `json:"response" bson:"response"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// NewExchange creates a stored prompt/response pair.
func NewExchange(sessionID, prompt, response string) *Exchange {
	return &Exchange{
		SessionID: sessionID,
		Prompt:    prompt,
		Response:  response,
		CreatedAt: time.Now().UTC(),
	}
}
