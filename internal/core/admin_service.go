package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"calmme-backend-go/internal/db"
	"calmme-backend-go/internal/models"
)

// ErrInvalidRole is returned when a role change names a role outside the
// known set.
var ErrInvalidRole = errors.New("invalid role")

// adminService implements the AdminService interface.
type adminService struct {
	userRepo     db.UserRepository
	auditService AuditService
	logger       *zap.Logger
	now          Clock
}

// NewAdminService creates a new AdminService instance.
func NewAdminService(userRepo db.UserRepository, auditService AuditService, logger *zap.Logger) AdminService {
	return &adminService{
		userRepo:     userRepo,
		auditService: auditService,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// ListUsers returns all profiles, newest first.
func (s *adminService) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// SearchUsers filters profiles by a case-insensitive substring match on
// username and email. Firestore has no substring queries, so the filter
// runs in memory over the full list.
func (s *adminService) SearchUsers(ctx context.Context, term string) ([]*models.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return users, nil
	}

	matched := make([]*models.User, 0, len(users))
	for _, user := range users {
		if strings.Contains(strings.ToLower(user.Username), term) ||
			strings.Contains(strings.ToLower(user.Email), term) {
			matched = append(matched, user)
		}
	}
	return matched, nil
}

// UpdateUserRole changes a user's role.
func (s *adminService) UpdateUserRole(ctx context.Context, adminID, userID, role string) error {
	if role != models.RoleUser && role != models.RoleAdmin && role != models.RolePsychologist {
		return fmt.Errorf("%w: '%s'", ErrInvalidRole, role)
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: uid '%s'", ErrUserNotFound, userID)
		}
		return fmt.Errorf("failed to get profile for uid '%s': %w", userID, err)
	}
	if err := s.userRepo.UpdateFields(ctx, userID, map[string]interface{}{"role": role}); err != nil {
		return fmt.Errorf("failed to update role for uid '%s': %w", userID, err)
	}

	s.audit(ctx, models.AuditLog{
		UserID:   adminID,
		Action:   models.AuditRoleChange,
		TargetID: userID,
		Details:  map[string]interface{}{"role": role},
	})
	return nil
}

// DisableUser flags an account as disabled with a reason.
func (s *adminService) DisableUser(ctx context.Context, adminID, userID, reason string) error {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: uid '%s'", ErrUserNotFound, userID)
		}
		return fmt.Errorf("failed to get profile for uid '%s': %w", userID, err)
	}

	fields := map[string]interface{}{
		"disabled":       true,
		"disabledReason": reason,
		"disabledAt":     s.now(),
	}
	if err := s.userRepo.UpdateFields(ctx, userID, fields); err != nil {
		return fmt.Errorf("failed to disable uid '%s': %w", userID, err)
	}

	s.audit(ctx, models.AuditLog{
		UserID:   adminID,
		Action:   models.AuditUserDisable,
		TargetID: userID,
		Details:  map[string]interface{}{"reason": reason},
	})
	return nil
}

// EnableUser clears the disabled flag.
func (s *adminService) EnableUser(ctx context.Context, adminID, userID string) error {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: uid '%s'", ErrUserNotFound, userID)
		}
		return fmt.Errorf("failed to get profile for uid '%s': %w", userID, err)
	}

	fields := map[string]interface{}{
		"disabled":       false,
		"disabledReason": nil,
		"disabledAt":     nil,
	}
	if err := s.userRepo.UpdateFields(ctx, userID, fields); err != nil {
		return fmt.Errorf("failed to enable uid '%s': %w", userID, err)
	}

	s.audit(ctx, models.AuditLog{
		UserID:   adminID,
		Action:   models.AuditUserEnable,
		TargetID: userID,
	})
	return nil
}

func (s *adminService) audit(ctx context.Context, entry models.AuditLog) {
	if s.auditService == nil {
		return
	}
	entry.Timestamp = s.now()
	if err := s.auditService.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to write audit log", zap.String("action", entry.Action), zap.Error(err))
	}
}
