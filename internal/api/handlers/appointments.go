package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/havenmind/support-service/internal/api/dto"
	"github.com/havenmind/support-service/internal/api/middleware"
	"github.com/havenmind/support-service/internal/core/docdb"
	"github.com/havenmind/support-service/internal/domain/errors"
	"github.com/havenmind/support-service/internal/domain/models"
	"github.com/havenmind/support-service/internal/services/appointments"
)

// AppointmentsHandler handles appointment booking endpoints.
type AppointmentsHandler struct {
	appointments *appointments.Service
	directory    docdb.ProfessionalDirectory
}

// NewAppointmentsHandler creates a new AppointmentsHandler.
func NewAppointmentsHandler(service *appointments.Service, directory docdb.ProfessionalDirectory) *AppointmentsHandler {
	return &AppointmentsHandler{
		appointments: service,
		directory:    directory,
	}
}

// Request handles POST /appointments
// @Summary Request an appointment
// @Description Creates a pending appointment with a professional
// @Tags Appointments
// @Accept json
// @Produce json
// @Param request body dto.RequestAppointmentRequest true "Appointment details"
// @Success 201 {object} dto.AppointmentResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/support-service/appointments [post]
func (h *AppointmentsHandler) Request(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)

	var req dto.RequestAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, errors.NewBadRequestError("invalid request body", err.Error()))
		return
	}

	appointment, err := h.appointments.Request(ctx, &appointments.RequestInput{
		Client:        userID,
		Professional:  req.Professional,
		Title:         req.Title,
		Description:   req.Description,
		ScheduledTime: req.ScheduledTime,
	})
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewAppointmentResponse(appointment))
}

// List handles GET /appointments
// @Summary List my appointments
// @Description Returns the caller's appointments on either side of the booking, newest first
// @Tags Appointments
// @Produce json
// @Param status query string false "Filter by status" Enums(pending, approved, declined, completed, cancelled)
// @Success 200 {object} dto.GetAppointmentsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/support-service/appointments [get]
func (h *AppointmentsHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)

	var statuses []models.AppointmentStatus
	if raw := c.Query("status"); raw != "" {
		status, ok := models.ParseAppointmentStatus(raw)
		if !ok {
			middleware.HandleError(c, errors.NewValidationError("unknown appointment status", raw))
			return
		}
		statuses = append(statuses, status)
	}

	list, err := h.appointments.ListForUser(ctx, userID, statuses...)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.GetAppointmentsResponse{
		Appointments: dto.NewAppointmentResponses(list),
		Total:        len(list),
	})
}

// ListPending handles GET /appointments/pending
// @Summary List pending requests
// @Description Returns the professional's pending appointment requests
// @Tags Appointments
// @Produce json
// @Success 200 {object} dto.GetAppointmentsResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/support-service/appointments/pending [get]
func (h *AppointmentsHandler) ListPending(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)

	list, err := h.appointments.ListPending(ctx, userID)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.GetAppointmentsResponse{
		Appointments: dto.NewAppointmentResponses(list),
		Total:        len(list),
	})
}

// Approve handles POST /appointments/{id}/approve
// @Summary Approve an appointment
// @Description Confirms a pending appointment; professional only
// @Tags Appointments
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Param request body dto.ApproveAppointmentRequest true "Meeting link and notes"
// @Success 200 {object} dto.AppointmentResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/support-service/appointments/{id}/approve [post]
func (h *AppointmentsHandler) Approve(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)

	var req dto.ApproveAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, errors.NewBadRequestError("invalid request body", err.Error()))
		return
	}

	appointment, err := h.appointments.Approve(ctx, c.Param("id"), userID, req.MeetingLink, req.Notes)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAppointmentResponse(appointment))
}

// Decline handles POST /appointments/{id}/decline
// @Summary Decline an appointment
// @Description Rejects a pending appointment; professional only
// @Tags Appointments
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Param request body dto.DeclineAppointmentRequest true "Optional notes"
// @Success 200 {object} dto.AppointmentResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/support-service/appointments/{id}/decline [post]
func (h *AppointmentsHandler) Decline(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)

	var req dto.DeclineAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, errors.NewBadRequestError("invalid request body", err.Error()))
		return
	}

	appointment, err := h.appointments.Decline(ctx, c.Param("id"), userID, req.Notes)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAppointmentResponse(appointment))
}

// Cancel handles POST /appointments/{id}/cancel
// @Summary Cancel an appointment
// @Description Cancels an approved appointment; either party may cancel
// @Tags Appointments
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 200 {object} dto.AppointmentResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/support-service/appointments/{id}/cancel [post]
func (h *AppointmentsHandler) Cancel(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)

	appointment, err := h.appointments.Cancel(ctx, c.Param("id"), userID)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAppointmentResponse(appointment))
}

// Professionals handles GET /professionals
// @Summary List professionals
// @Description Returns the professionals available for booking
// @Tags Appointments
// @Produce json
// @Success 200 {object} dto.GetProfessionalsResponse
// @Failure 401 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/support-service/professionals [get]
func (h *AppointmentsHandler) Professionals(c *gin.Context) {
	ctx := c.Request.Context()

	professionals, err := h.directory.FindProfessionals(ctx)
	if err != nil {
		middleware.HandleError(c, errors.NewInternalError("failed to list professionals", err))
		return
	}

	out := make([]*dto.ProfessionalResponse, 0, len(professionals))
	for _, p := range professionals {
		out = append(out, &dto.ProfessionalResponse{
			ID:       p.ID,
			Username: p.Username,
			Email:    p.Email,
		})
	}

	c.JSON(http.StatusOK, dto.GetProfessionalsResponse{
		Professionals: out,
		Total:         len(out),
	})
}
