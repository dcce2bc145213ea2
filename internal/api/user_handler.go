package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"calmme-backend-go/internal/core"
	"calmme-backend-go/internal/middleware"
	"calmme-backend-go/internal/models"
)

// UserHandler handles profile endpoints for the authenticated user.
type UserHandler struct {
	identityService core.IdentityService
	logger          *zap.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(is core.IdentityService, logger *zap.Logger) *UserHandler {
	return &UserHandler{identityService: is, logger: logger}
}

// GetMe handles GET /api/v1/users/me. The read reconciles the stored email
// with the token's view when they differ.
func (h *UserHandler) GetMe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	email := c.GetString(middleware.ContextUserEmail)
	verified := c.GetBool(middleware.ContextEmailVerified)

	user, err := h.identityService.GetCurrentUserData(c.Request.Context(), userID, email, verified)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateMe handles PATCH /api/v1/users/me.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if err := h.identityService.UpdateProfile(c.Request.Context(), userID, req); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Profile updated"})
}

// UpdateEmail handles PUT /api/v1/users/me/email. The change is
// verify-before-update: the provider email flips only after the user clicks
// the emailed link.
func (h *UserHandler) UpdateEmail(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.UpdateEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if err := h.identityService.UpdateEmailWithAuth(c.Request.Context(), userID, req.NewEmail, req.CurrentPassword); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Verification email sent to the new address"})
}

// UpdatePassword handles PUT /api/v1/users/me/password.
func (h *UserHandler) UpdatePassword(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if err := h.identityService.UpdatePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Password updated"})
}
