package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/havenmind/support-service/internal/api/middleware"
	"github.com/havenmind/support-service/internal/config"
	"github.com/havenmind/support-service/internal/domain/errors"
	"github.com/havenmind/support-service/internal/realtime"
	"github.com/havenmind/support-service/internal/services/chat"
)

// WSHandler upgrades connections onto the realtime channel and routes
// inbound events. A sendMessage event is persisted through the chat
// service before it is broadcast, so the websocket path and the HTTP
// path leave the same durable trail.
type WSHandler struct {
	hub      *realtime.Hub
	chat     *chat.Service
	auth     *middleware.AuthMiddleware
	config   config.RealtimeConfig
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(hub *realtime.Hub, chatService *chat.Service, auth *middleware.AuthMiddleware, cfg config.RealtimeConfig) *WSHandler {
	return &WSHandler{
		hub:    hub,
		chat:   chatService,
		auth:   auth,
		config: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browsers cannot set headers on websocket handshakes, so
			// origin alone cannot be trusted; auth happens via the token
			// query parameter instead.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Connect handles GET /chat/ws
// @Summary Open the realtime channel
// @Description Upgrades to a websocket; authenticate with the token query parameter
// @Tags Realtime
// @Param token query string true "Bearer token"
// @Success 101 {string} string "Switching Protocols"
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/v1/support-service/chat/ws [get]
func (h *WSHandler) Connect(c *gin.Context) {
	token := c.Query("token")
	claims, err := h.auth.Parse(token)
	if err != nil {
		middleware.HandleError(c, errors.NewUnauthorizedError("invalid token"))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := realtime.NewClient(uuid.NewString(), claims.Subject, h.hub, conn, h.config)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump(h.handleEvent)
}

// handleEvent routes one inbound frame. Errors go back to the offending
// connection only.
func (h *WSHandler) handleEvent(client *realtime.Client, payload []byte) {
	var event realtime.InboundEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		_ = client.SendEvent(realtime.NewChatError("malformed event"))
		return
	}

	switch event.Type {
	case realtime.EventJoinRoom:
		if !roomHasParticipant(event.RoomID, client.UserID) {
			_ = client.SendEvent(realtime.NewChatError("room belongs to other participants"))
			return
		}
		h.hub.JoinRoom(client, event.RoomID)

	case realtime.EventLeaveRoom:
		h.hub.LeaveRoom(client, event.RoomID)

	case realtime.EventSendMessage:
		h.handleSendMessage(client, &event)

	default:
		_ = client.SendEvent(realtime.NewChatError("unknown event type"))
	}
}

// handleSendMessage persists the message, then fans it out to the room.
func (h *WSHandler) handleSendMessage(client *realtime.Client, event *realtime.InboundEvent) {
	if event.Receiver == "" || event.Content == "" {
		_ = client.SendEvent(realtime.NewChatError("receiver and content are required"))
		return
	}
	if event.Receiver == client.UserID {
		_ = client.SendEvent(realtime.NewChatError("cannot message yourself"))
		return
	}

	// The hub has no request context; bound the store write instead.
	ctx, cancel := contextWithTimeout()
	defer cancel()

	msg, err := h.chat.SendMessage(ctx, client.UserID, event.Receiver, event.Content, time.Now().UTC())
	if err != nil {
		if ctx.Err() != nil {
			err = errors.NewTimeoutError("chat message write")
		}
		log.Warn().Err(err).Str("client_id", client.ID).Msg("websocket message rejected")
		_ = client.SendEvent(realtime.NewChatError("message could not be delivered"))
		return
	}

	// The message is already durable; a fan-out failure only costs the
	// realtime delivery.
	if err := h.hub.BroadcastToRoom(msg.RoomID, &realtime.ChatMessageEvent{
		Type:      realtime.EventChatMessage,
		MessageID: msg.ID,
		RoomID:    msg.RoomID,
		Sender:    msg.Sender,
		Receiver:  msg.Receiver,
		Content:   event.Content,
		Timestamp: msg.Timestamp,
	}, ""); err != nil {
		log.Warn().Err(err).Str("room_id", msg.RoomID).Msg("realtime fan-out failed")
	}
}

func contextWithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}
