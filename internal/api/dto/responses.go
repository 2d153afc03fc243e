package dto

import (
	"time"

	"github.com/havenmind/support-service/internal/domain/models"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// HealthResponse represents a health check response.
type HealthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components,omitempty"`
}

// MessageResponse represents a decrypted message in API responses.
type MessageResponse struct {
	ID            string    `json:"id"`
	RoomID        string    `json:"roomId"`
	Sender        string    `json:"sender"`
	Receiver      string    `json:"receiver"`
	Content       string    `json:"content"`
	Kind          string    `json:"kind"`
	AppointmentID string    `json:"appointmentId,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	Undecryptable bool      `json:"undecryptable,omitempty"`
}

// NewMessageResponse maps a decrypted message to its API shape.
func NewMessageResponse(m *models.DecryptedMessage) *MessageResponse {
	return &MessageResponse{
		ID:            m.ID,
		RoomID:        m.RoomID,
		Sender:        m.Sender,
		Receiver:      m.Receiver,
		Content:       m.Content,
		Kind:          string(m.Kind),
		AppointmentID: m.AppointmentID,
		Timestamp:     m.Timestamp,
		Undecryptable: m.Undecryptable,
	}
}

// GetHistoryResponse represents the response for a room history read.
type GetHistoryResponse struct {
	RoomID   string             `json:"roomId"`
	Messages []*MessageResponse `json:"messages"`
	Total    int                `json:"total"`
}

// SendMessageResponse represents the response for sending a message.
type SendMessageResponse struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"roomId"`
	Timestamp time.Time `json:"timestamp"`
}

// RoomsResponse lists the caller's conversation rooms.
type RoomsResponse struct {
	Rooms []string `json:"rooms"`
}

// AppointmentResponse represents an appointment in API responses.
type AppointmentResponse struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	ScheduledTime time.Time  `json:"scheduledTime"`
	Client        string     `json:"client"`
	Professional  string     `json:"professional"`
	Status        string     `json:"status"`
	MeetingLink   string     `json:"meetingLink,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	CrisisBooked  bool       `json:"crisisBooked,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	ApprovedAt    *time.Time `json:"approvedAt,omitempty"`
	DeclinedAt    *time.Time `json:"declinedAt,omitempty"`
}

// NewAppointmentResponse maps an appointment to its API shape.
func NewAppointmentResponse(a *models.Appointment) *AppointmentResponse {
	return &AppointmentResponse{
		ID:            a.ID,
		Title:         a.Title,
		Description:   a.Description,
		ScheduledTime: a.ScheduledTime,
		Client:        a.Client,
		Professional:  a.Professional,
		Status:        string(a.Status),
		MeetingLink:   a.MeetingLink,
		Notes:         a.Notes,
		CrisisBooked:  a.CrisisBooked,
		CreatedAt:     a.CreatedAt,
		ApprovedAt:    a.ApprovedAt,
		DeclinedAt:    a.DeclinedAt,
	}
}

// NewAppointmentResponses maps a slice of appointments.
func NewAppointmentResponses(appointments []*models.Appointment) []*AppointmentResponse {
	out := make([]*AppointmentResponse, 0, len(appointments))
	for _, a := range appointments {
		out = append(out, NewAppointmentResponse(a))
	}
	return out
}

// GetAppointmentsResponse represents an appointment listing.
type GetAppointmentsResponse struct {
	Appointments []*AppointmentResponse `json:"appointments"`
	Total        int                    `json:"total"`
}

// SessionResponse represents a therapy session in API responses.
type SessionResponse struct {
	ID         string    `json:"id"`
	Mood       int       `json:"mood"`
	Terminated bool      `json:"terminated"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NewSessionResponse maps a therapy session to its API shape.
func NewSessionResponse(s *models.TherapySession) *SessionResponse {
	return &SessionResponse{
		ID:         s.ID,
		Mood:       s.Mood,
		Terminated: s.Terminated,
		CreatedAt:  s.CreatedAt,
	}
}

// GenerateResponse represents the response for a session prompt.
type GenerateResponse struct {
	Response  string               `json:"response"`
	Danger    bool                 `json:"danger"`
	Escalated bool                 `json:"escalated,omitempty"`
	Booked    *AppointmentResponse `json:"appointment,omitempty"`
}

// ProfessionalResponse represents a professional in API responses.
type ProfessionalResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// GetProfessionalsResponse lists professionals.
type GetProfessionalsResponse struct {
	Professionals []*ProfessionalResponse `json:"professionals"`
	Total         int                     `json:"total"`
}
