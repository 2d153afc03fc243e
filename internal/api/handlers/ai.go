package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/havenmind/support-service/internal/api/dto"
	"github.com/havenmind/support-service/internal/api/middleware"
	"github.com/havenmind/support-service/internal/domain/errors"
	"github.com/havenmind/support-service/internal/services/completion"
	"github.com/havenmind/support-service/internal/services/crisis"
	"github.com/havenmind/support-service/internal/services/escalation"
	"github.com/havenmind/support-service/internal/services/session"
)

// AIHandler handles the therapy session endpoints. Every prompt is
// screened by the crisis classifier before it reaches a model provider;
// a crisis disclosure short-circuits into the escalation workflow.
type AIHandler struct {
	sessions   *session.Service
	classifier *crisis.Classifier
	escalation *escalation.Workflow
	completion *completion.Chain
}

// NewAIHandler creates a new AIHandler.
func NewAIHandler(sessions *session.Service, classifier *crisis.Classifier, workflow *escalation.Workflow, chain *completion.Chain) *AIHandler {
	return &AIHandler{
		sessions:   sessions,
		classifier: classifier,
		escalation: workflow,
		completion: chain,
	}
}

// StartSession handles POST /ai/sessions
// @Summary Start a therapy session
// @Description Opens a session with an initial mood rating (1-10)
// @Tags AI
// @Accept json
// @Produce json
// @Param request body dto.StartSessionRequest true "Initial mood"
// @Success 201 {object} dto.SessionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/support-service/ai/sessions [post]
func (h *AIHandler) StartSession(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)

	var req dto.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, errors.NewBadRequestError("invalid request body", err.Error()))
		return
	}

	sess, err := h.sessions.Start(ctx, userID, req.Mood)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewSessionResponse(sess))
}

// EndSession handles POST /ai/sessions/{id}/end
// @Summary End a therapy session
// @Description Terminates the session; terminated sessions reject new prompts
// @Tags AI
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/support-service/ai/sessions/{id}/end [post]
func (h *AIHandler) EndSession(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)

	sess, err := h.sessions.End(ctx, c.Param("id"), userID)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSessionResponse(sess))
}

// Generate handles POST /ai/generate
// @Summary Generate a session response
// @Description Screens the message for crisis disclosures, then either escalates or answers through the model chain
// @Tags AI
// @Accept json
// @Produce json
// @Param request body dto.GenerateRequest true "Session prompt"
// @Success 200 {object} dto.GenerateResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/support-service/ai/generate [post]
func (h *AIHandler) Generate(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)

	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, errors.NewBadRequestError("invalid request body", err.Error()))
		return
	}

	sess, err := h.sessions.Get(ctx, req.SessionID, userID)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	if sess.Terminated {
		middleware.HandleError(c, errors.NewConflictError("session has ended", "start a new session"))
		return
	}

	assessment := h.classifier.Classify(req.Message)
	if assessment.Crisis {
		result, err := h.escalation.Escalate(ctx, userID)
		if err != nil {
			// The fallback result still carries safety guidance; answer
			// with it rather than a bare error.
			log.Error().Err(err).Str("user_id", userID).
				Str("category", assessment.Category).
				Msg("crisis escalation degraded to hotline guidance")
		}

		if err := h.sessions.RecordExchange(ctx, req.SessionID, req.Message, result.Response); err != nil {
			log.Warn().Err(err).Str("session_id", req.SessionID).
				Msg("failed to record crisis exchange")
		}

		resp := dto.GenerateResponse{
			Response:  result.Response,
			Danger:    true,
			Escalated: result.Escalated,
		}
		if result.Appointment != nil {
			resp.Booked = dto.NewAppointmentResponse(result.Appointment)
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	history, err := h.sessions.History(ctx, req.SessionID)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	answer, err := h.completion.Generate(ctx, req.Message, history)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	if err := h.sessions.RecordExchange(ctx, req.SessionID, req.Message, answer); err != nil {
		log.Warn().Err(err).Str("session_id", req.SessionID).
			Msg("failed to record exchange")
	}

	c.JSON(http.StatusOK, dto.GenerateResponse{
		Response: answer,
		Danger:   false,
	})
}
