package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"calmme-backend-go/internal/db"
)

// RequireRole guards a route group behind a profile role. It runs after
// VerifyToken and reads the profile document, so disabled accounts are also
// rejected here.
func RequireRole(userRepo db.UserRepository, logger *zap.Logger, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(ContextUserID)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
			return
		}

		user, err := userRepo.GetByID(c.Request.Context(), userID)
		if err != nil {
			logger.Warn("role check: failed to load profile", zap.String("uid", userID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "Access denied"})
			return
		}
		if user.Disabled {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "Account is disabled"})
			return
		}
		if user.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "Access denied"})
			return
		}

		c.Next()
	}
}
