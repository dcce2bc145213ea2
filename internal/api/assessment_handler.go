package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"calmme-backend-go/internal/core"
	"calmme-backend-go/internal/models"
)

// AssessmentHandler handles the anxiety self-assessment endpoints.
type AssessmentHandler struct {
	assessmentService core.AssessmentService
	logger            *zap.Logger
}

// NewAssessmentHandler creates a new AssessmentHandler.
func NewAssessmentHandler(as core.AssessmentService, logger *zap.Logger) *AssessmentHandler {
	return &AssessmentHandler{assessmentService: as, logger: logger}
}

// GetQuestions handles GET /api/v1/assessment/questions.
func (h *AssessmentHandler) GetQuestions(c *gin.Context) {
	c.JSON(http.StatusOK, h.assessmentService.Questions())
}

// Submit handles POST /api/v1/assessment/score.
func (h *AssessmentHandler) Submit(c *gin.Context) {
	var req models.AssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	result, err := h.assessmentService.Evaluate(req.Answers)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
