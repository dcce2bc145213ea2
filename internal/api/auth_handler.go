package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"calmme-backend-go/internal/core"
	"calmme-backend-go/internal/middleware"
	"calmme-backend-go/internal/models"
)

// AuthHandler handles authentication and account lifecycle endpoints.
type AuthHandler struct {
	identityService core.IdentityService
	logger          *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(is core.IdentityService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{identityService: is, logger: logger}
}

// Login handles POST /api/v1/auth/login. The identifier may be an email or
// a username.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	session, err := h.identityService.ResolveLogin(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	session, err := h.identityService.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// Logout handles POST /api/v1/auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	email := c.GetString(middleware.ContextUserEmail)
	verified := c.GetBool(middleware.ContextEmailVerified)

	if err := h.identityService.Logout(c.Request.Context(), userID, email, verified); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Logged out successfully"})
}

// ResendVerification handles POST /api/v1/auth/resend-verification.
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	idToken := c.GetString(middleware.ContextIDToken)

	if err := h.identityService.ResendEmailVerification(c.Request.Context(), idToken); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Verification email sent"})
}

// VerificationStatus handles GET /api/v1/auth/verification-status.
func (h *AuthHandler) VerificationStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	verified, err := h.identityService.CheckEmailVerificationStatus(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"emailVerified": verified})
}
