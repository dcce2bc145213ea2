package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"calmme-backend-go/internal/core"
	"calmme-backend-go/internal/models"
)

// ConsultationHandler handles psychologist directory and booking endpoints.
type ConsultationHandler struct {
	consultationService core.ConsultationService
	logger              *zap.Logger
}

// NewConsultationHandler creates a new ConsultationHandler.
func NewConsultationHandler(cs core.ConsultationService, logger *zap.Logger) *ConsultationHandler {
	return &ConsultationHandler{consultationService: cs, logger: logger}
}

// ListPsychologists handles GET /api/v1/psychologists?search=term.
func (h *ConsultationHandler) ListPsychologists(c *gin.Context) {
	term := c.Query("search")

	var (
		psychs []*models.Psychologist
		err    error
	)
	if term != "" {
		psychs, err = h.consultationService.SearchPsychologists(c.Request.Context(), term)
	} else {
		psychs, err = h.consultationService.ListPsychologists(c.Request.Context())
	}
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, psychs)
}

// GetPsychologist handles GET /api/v1/psychologists/:psychologistId.
func (h *ConsultationHandler) GetPsychologist(c *gin.Context) {
	psych, err := h.consultationService.GetPsychologist(c.Request.Context(), c.Param("psychologistId"))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, psych)
}

// GetSchedules handles GET /api/v1/psychologists/:psychologistId/schedules.
func (h *ConsultationHandler) GetSchedules(c *gin.Context) {
	schedules, err := h.consultationService.GetSchedules(c.Request.Context(), c.Param("psychologistId"))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, schedules)
}

// CreateAppointment handles POST /api/v1/appointments. The booking starts
// unpaid.
func (h *ConsultationHandler) CreateAppointment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	appt, err := h.consultationService.CreateAppointment(c.Request.Context(), userID, req)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, appt)
}

// CreateConsultation handles POST /api/v1/consultations.
func (h *ConsultationHandler) CreateConsultation(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.CreateConsultationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	consultation, err := h.consultationService.CreateConsultation(c.Request.Context(), userID, req)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, consultation)
}

// ListConsultations handles GET /api/v1/consultations.
func (h *ConsultationHandler) ListConsultations(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	consultations, err := h.consultationService.ListUserConsultations(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, consultations)
}

// UpdateConsultationStatus handles PATCH /api/v1/consultations/:consultationId/status.
func (h *ConsultationHandler) UpdateConsultationStatus(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	var req models.UpdateConsultationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if err := h.consultationService.UpdateConsultationStatus(c.Request.Context(), c.Param("consultationId"), req.Status); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Consultation status updated"})
}
