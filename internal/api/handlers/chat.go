package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/havenmind/support-service/internal/api/dto"
	"github.com/havenmind/support-service/internal/api/middleware"
	"github.com/havenmind/support-service/internal/domain/errors"
	"github.com/havenmind/support-service/internal/realtime"
	"github.com/havenmind/support-service/internal/services/chat"
)

// ChatHandler handles the durable chat endpoints. Messages posted here
// are encrypted and persisted, then mirrored onto the realtime channel
// for connected room members.
type ChatHandler struct {
	chat *chat.Service
	hub  *realtime.Hub
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService *chat.Service, hub *realtime.Hub) *ChatHandler {
	return &ChatHandler{
		chat: chatService,
		hub:  hub,
	}
}

// GetHistory handles GET /chat/rooms/{roomId}/messages
// @Summary Get room history
// @Description Returns the decrypted message history of a room, oldest first
// @Tags Chat
// @Produce json
// @Param roomId path string true "Room ID"
// @Success 200 {object} dto.GetHistoryResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/support-service/chat/rooms/{roomId}/messages [get]
func (h *ChatHandler) GetHistory(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)
	roomID := c.Param("roomId")

	if !roomHasParticipant(roomID, userID) {
		middleware.HandleError(c, errors.NewForbiddenError("room belongs to other participants"))
		return
	}

	history, err := h.chat.History(ctx, roomID)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	messages := make([]*dto.MessageResponse, 0, len(history))
	for i := range history {
		messages = append(messages, dto.NewMessageResponse(&history[i]))
	}

	c.JSON(http.StatusOK, dto.GetHistoryResponse{
		RoomID:   roomID,
		Messages: messages,
		Total:    len(messages),
	})
}

// SendMessage handles POST /chat/messages
// @Summary Send a chat message
// @Description Encrypts and persists a message, then broadcasts it to connected room members
// @Tags Chat
// @Accept json
// @Produce json
// @Param request body dto.SendMessageRequest true "Message content and receiver"
// @Success 201 {object} dto.SendMessageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/support-service/chat/messages [post]
func (h *ChatHandler) SendMessage(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, errors.NewBadRequestError("invalid request body", err.Error()))
		return
	}
	if req.Receiver == userID {
		middleware.HandleError(c, errors.NewValidationError("cannot message yourself", ""))
		return
	}

	msg, err := h.chat.SendMessage(ctx, userID, req.Receiver, req.Content, time.Now().UTC())
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	// Mirror onto the realtime channel so connected members see it
	// without polling. The message is already durable.
	_ = h.hub.BroadcastToRoom(msg.RoomID, &realtime.ChatMessageEvent{
		Type:      realtime.EventChatMessage,
		MessageID: msg.ID,
		RoomID:    msg.RoomID,
		Sender:    msg.Sender,
		Receiver:  msg.Receiver,
		Content:   req.Content,
		Timestamp: msg.Timestamp,
	}, "")

	c.JSON(http.StatusCreated, dto.SendMessageResponse{
		ID:        msg.ID,
		RoomID:    msg.RoomID,
		Timestamp: msg.Timestamp,
	})
}

// GetRooms handles GET /chat/rooms
// @Summary List my rooms
// @Description Returns the room ids the caller participates in
// @Tags Chat
// @Produce json
// @Success 200 {object} dto.RoomsResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/support-service/chat/rooms [get]
func (h *ChatHandler) GetRooms(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)

	rooms, err := h.chat.Rooms(ctx, userID)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.RoomsResponse{Rooms: rooms})
}

// roomHasParticipant reports whether the user id is one of the room's
// participants. Room ids are the sorted participant pair joined with an
// underscore.
func roomHasParticipant(roomID, userID string) bool {
	if userID == "" {
		return false
	}
	for _, part := range strings.Split(roomID, "_") {
		if part == userID {
			return true
		}
	}
	return false
}
