// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import "time"

// SendMessageRequest represents the request body for sending a chat
// message over the durable HTTP path.
type SendMessageRequest struct {
	Receiver string `json:"receiver" binding:"required"`
	Content  string `json:"content" binding:"required,min=1,max=10000"`
}

// RequestAppointmentRequest represents the request body for a client's
// appointment request.
type RequestAppointmentRequest struct {
	Professional  string    `json:"professional" binding:"required"`
	Title         string    `json:"title" binding:"required,min=1,max=200"`
	Description   string    `json:"description" binding:"max=2000"`
	ScheduledTime time.Time `json:"scheduledTime" binding:"required"`
}

// ApproveAppointmentRequest represents the professional's approval.
type ApproveAppointmentRequest struct {
	MeetingLink string `json:"meetingLink" binding:"max=2000"`
	Notes       string `json:"notes" binding:"max=2000"`
}

// DeclineAppointmentRequest represents the professional's decline.
type DeclineAppointmentRequest struct {
	Notes string `json:"notes" binding:"max=2000"`
}

// StartSessionRequest represents the request body for starting a therapy
// session.
type StartSessionRequest struct {
	Mood int `json:"mood" binding:"required,min=1,max=10"`
}

// GenerateRequest represents the request body for a session prompt.
type GenerateRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	Message   string `json:"message" binding:"required,min=1,max=10000"`
}
