package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"calmme-backend-go/internal/core"
	"calmme-backend-go/internal/identity"
	"calmme-backend-go/internal/middleware"
	"calmme-backend-go/pkg/validator"
)

// ErrorResponse is a generic structure for returning errors via API.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// SuccessResponse is a generic structure for simple success messages.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// currentUserID pulls the authenticated user's ID out of the Gin context.
// Aborts with 401 when the auth middleware did not run.
func currentUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(middleware.ContextUserID)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication error: User ID not found in context"})
		return "", false
	}
	return userID, true
}

// respondBindingError maps a request binding failure to a 400 with
// per-field messages where the validator produced them.
func respondBindingError(c *gin.Context, err error) {
	fields := validator.FormatValidationErrors(err)
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Fields: fields})
}

// respondServiceError maps service-layer errors to HTTP statuses. Identity
// provider error codes pass through verbatim with the provider's status.
func respondServiceError(c *gin.Context, logger *zap.Logger, err error) {
	var apiErr *identity.APIError
	if errors.As(err, &apiErr) {
		c.JSON(apiErr.HTTPStatus, ErrorResponse{Error: apiErr.Code})
		return
	}

	switch {
	case errors.Is(err, core.ErrUserNotFound),
		errors.Is(err, core.ErrUsernameNotFound),
		errors.Is(err, core.ErrPaymentNotFound),
		errors.Is(err, core.ErrPsychologistNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, core.ErrUsernameTaken),
		errors.Is(err, core.ErrAlreadySubscribed):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, core.ErrNoPendingAppointment),
		errors.Is(err, core.ErrInvalidMood),
		errors.Is(err, core.ErrInvalidAnswers),
		errors.Is(err, core.ErrInvalidRole):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, core.ErrOrphanedCredential):
		logger.Error("orphaned credential detected", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Account setup failed", Details: "Registration could not be completed. Please contact support."})
	default:
		logger.Error("unhandled service error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
	}
}
