package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"calmme-backend-go/internal/core"
	"calmme-backend-go/internal/models"
)

// AdminHandler handles admin panel endpoints. Routes using it are guarded
// by the admin role middleware.
type AdminHandler struct {
	adminService core.AdminService
	logger       *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(as core.AdminService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{adminService: as, logger: logger}
}

// ListUsers handles GET /api/v1/admin/users?search=term.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	term := c.Query("search")

	var (
		users []*models.User
		err   error
	)
	if term != "" {
		users, err = h.adminService.SearchUsers(c.Request.Context(), term)
	} else {
		users, err = h.adminService.ListUsers(c.Request.Context())
	}
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// UpdateUserRole handles PUT /api/v1/admin/users/:userId/role.
func (h *AdminHandler) UpdateUserRole(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.UpdateUserRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if err := h.adminService.UpdateUserRole(c.Request.Context(), adminID, c.Param("userId"), req.Role); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "User role updated"})
}

// DisableUser handles POST /api/v1/admin/users/:userId/disable.
func (h *AdminHandler) DisableUser(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.DisableUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if err := h.adminService.DisableUser(c.Request.Context(), adminID, c.Param("userId"), req.Reason); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "User disabled"})
}

// EnableUser handles POST /api/v1/admin/users/:userId/enable.
func (h *AdminHandler) EnableUser(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.adminService.EnableUser(c.Request.Context(), adminID, c.Param("userId")); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "User enabled"})
}
