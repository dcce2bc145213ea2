package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"calmme-backend-go/internal/db"
	"calmme-backend-go/internal/identity"
	"calmme-backend-go/internal/models"
)

// Custom errors for the IdentityService.
var (
	// ErrUserNotFound is returned when a profile document is missing.
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameNotFound is returned when a login identifier is not
	// email-shaped and no profile carries that username.
	ErrUsernameNotFound = errors.New("username not found")
	// ErrUsernameTaken is returned by Register when the username pre-check
	// finds an existing profile.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrOrphanedCredential is returned when profile creation fails after
	// the credential was created. The account exists at the provider without
	// a profile document and needs manual recovery; callers must treat this
	// as fatal.
	ErrOrphanedCredential = errors.New("credential created but profile creation failed")
)

// identityService implements the IdentityService interface.
type identityService struct {
	userRepo     db.UserRepository
	provider     IdentityProvider
	authAdmin    AuthAdmin
	auditService AuditService
	logger       *zap.Logger
	now          Clock
}

// NewIdentityService creates a new IdentityService instance.
func NewIdentityService(
	userRepo db.UserRepository,
	provider IdentityProvider,
	authAdmin AuthAdmin,
	auditService AuditService,
	logger *zap.Logger,
) IdentityService {
	return &identityService{
		userRepo:     userRepo,
		provider:     provider,
		authAdmin:    authAdmin,
		auditService: auditService,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// ResolveLogin authenticates either an email or a username identifier.
// Provider errors (INVALID_PASSWORD, EMAIL_NOT_FOUND, ...) pass through
// verbatim for the UI to display.
func (s *identityService) ResolveLogin(ctx context.Context, identifier, password string) (*AuthSession, error) {
	email := identifier
	if !strings.Contains(identifier, "@") {
		user, err := s.userRepo.GetByUsername(ctx, identifier)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return nil, fmt.Errorf("%w: '%s'", ErrUsernameNotFound, identifier)
			}
			return nil, fmt.Errorf("failed to resolve username '%s': %w", identifier, err)
		}
		email = user.Email
	}

	result, err := s.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}

	session := &AuthSession{
		UID:          result.UID,
		IDToken:      result.IDToken,
		RefreshToken: result.RefreshToken,
	}

	// Attach the profile when it exists. A missing profile is the orphaned
	// credential case; the session is still returned so the client can show
	// a recovery message.
	user, err := s.userRepo.GetByID(ctx, result.UID)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("failed to load profile for uid '%s': %w", result.UID, err)
		}
		s.logger.Warn("login succeeded for credential without profile document", zap.String("uid", result.UID))
	} else {
		session.User = user
	}

	s.audit(ctx, models.AuditLog{
		UserID: result.UID,
		Action: models.AuditUserLogin,
	})
	return session, nil
}

// Register creates the credential, then the profile document, then sends the
// verification email. The credential and profile writes are not atomic.
func (s *identityService) Register(ctx context.Context, username, email, password string) (*AuthSession, error) {
	username = strings.ToLower(strings.TrimSpace(username))

	_, err := s.userRepo.GetByUsername(ctx, username)
	if err == nil {
		return nil, fmt.Errorf("%w: '%s'", ErrUsernameTaken, username)
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username '%s': %w", username, err)
	}

	result, err := s.provider.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	newUser := &models.User{
		ID:                 result.UID,
		Username:           username,
		Email:              email,
		Role:               models.RoleUser,
		SubscriptionStatus: models.SubscriptionInactive,
		EmailVerified:      false,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if createErr := s.userRepo.Create(ctx, newUser); createErr != nil {
		// The credential exists at the provider with no profile behind it.
		s.logger.Error("profile creation failed after sign-up; orphaned credential",
			zap.String("uid", result.UID),
			zap.Error(createErr),
		)
		return nil, fmt.Errorf("%w (uid %s): %v", ErrOrphanedCredential, result.UID, createErr)
	}

	if oobErr := s.provider.SendOobCode(ctx, identity.OobVerifyEmail, result.IDToken, ""); oobErr != nil {
		s.logger.Warn("failed to send verification email", zap.String("uid", result.UID), zap.Error(oobErr))
	}

	s.audit(ctx, models.AuditLog{
		UserID:  result.UID,
		Action:  models.AuditUserRegister,
		Details: map[string]interface{}{"username": username},
	})

	return &AuthSession{
		UID:          result.UID,
		IDToken:      result.IDToken,
		RefreshToken: result.RefreshToken,
		User:         newUser,
	}, nil
}

// GetCurrentUserData reads the profile document and lazily reconciles its
// email with the provider's. The provider is the source of truth: after an
// out-of-band email change commits, the next read here folds it into the
// profile and clears the pending marker.
func (s *identityService) GetCurrentUserData(ctx context.Context, uid, providerEmail string, providerVerified bool) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: uid '%s'", ErrUserNotFound, uid)
		}
		return nil, fmt.Errorf("failed to get profile for uid '%s': %w", uid, err)
	}

	if providerEmail != "" && user.Email != providerEmail {
		fields := map[string]interface{}{
			"email":         providerEmail,
			"emailVerified": providerVerified,
			"pendingEmail":  nil,
		}
		if err := s.userRepo.UpdateFields(ctx, uid, fields); err != nil {
			return nil, fmt.Errorf("failed to reconcile email for uid '%s': %w", uid, err)
		}
		user, err = s.userRepo.GetByID(ctx, uid)
		if err != nil {
			return nil, fmt.Errorf("failed to re-read profile for uid '%s': %w", uid, err)
		}
	}
	return user, nil
}

// UpdateProfile applies partial profile edits.
func (s *identityService) UpdateProfile(ctx context.Context, uid string, req models.UpdateProfileRequest) error {
	fields := make(map[string]interface{})
	if req.Gender != nil {
		fields["gender"] = *req.Gender
	}
	if req.DateOfBirth != nil {
		fields["dateOfBirth"] = *req.DateOfBirth
	}
	if req.ProfilePicture != nil {
		fields["profilePicture"] = *req.ProfilePicture
	}
	if len(fields) == 0 {
		return nil
	}
	if err := s.userRepo.UpdateFields(ctx, uid, fields); err != nil {
		return fmt.Errorf("failed to update profile for uid '%s': %w", uid, err)
	}
	return nil
}

// UpdateEmailWithAuth re-authenticates with the current password, asks the
// provider for a verify-before-update email change, and marks the profile.
// The actual email change commits when the user clicks the emailed link;
// GetCurrentUserData reconciles it afterwards.
func (s *identityService) UpdateEmailWithAuth(ctx context.Context, uid, newEmail, currentPassword string) error {
	user, err := s.userRepo.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: uid '%s'", ErrUserNotFound, uid)
		}
		return fmt.Errorf("failed to get profile for uid '%s': %w", uid, err)
	}

	reauth, err := s.provider.SignInWithPassword(ctx, user.Email, currentPassword)
	if err != nil {
		return err
	}

	if err := s.provider.SendOobCode(ctx, identity.OobVerifyAndChangeEmail, reauth.IDToken, newEmail); err != nil {
		return err
	}

	fields := map[string]interface{}{
		"pendingEmail":  newEmail,
		"emailVerified": false,
	}
	if err := s.userRepo.UpdateFields(ctx, uid, fields); err != nil {
		return fmt.Errorf("failed to mark pending email for uid '%s': %w", uid, err)
	}

	s.audit(ctx, models.AuditLog{
		UserID:  uid,
		Action:  models.AuditEmailChange,
		Details: map[string]interface{}{"pendingEmail": newEmail},
	})
	return nil
}

// UpdatePassword re-authenticates before setting the new password.
func (s *identityService) UpdatePassword(ctx context.Context, uid, currentPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: uid '%s'", ErrUserNotFound, uid)
		}
		return fmt.Errorf("failed to get profile for uid '%s': %w", uid, err)
	}

	reauth, err := s.provider.SignInWithPassword(ctx, user.Email, currentPassword)
	if err != nil {
		return err
	}
	if _, err := s.provider.UpdatePassword(ctx, reauth.IDToken, newPassword); err != nil {
		return err
	}
	return nil
}

// ResendEmailVerification triggers another verification email for the
// signed-in account.
func (s *identityService) ResendEmailVerification(ctx context.Context, idToken string) error {
	return s.provider.SendOobCode(ctx, identity.OobVerifyEmail, idToken, "")
}

// CheckEmailVerificationStatus asks the provider whether the email has been
// verified and mirrors a positive answer onto the profile document.
func (s *identityService) CheckEmailVerificationStatus(ctx context.Context, uid string) (bool, error) {
	record, err := s.authAdmin.GetUser(ctx, uid)
	if err != nil {
		return false, fmt.Errorf("failed to look up provider account for uid '%s': %w", uid, err)
	}
	if record.EmailVerified {
		if err := s.userRepo.UpdateFields(ctx, uid, map[string]interface{}{"emailVerified": true}); err != nil {
			s.logger.Warn("failed to mirror verified flag onto profile", zap.String("uid", uid), zap.Error(err))
		}
	}
	return record.EmailVerified, nil
}

// Logout syncs the profile email one last time, then revokes the user's
// refresh tokens at the provider.
func (s *identityService) Logout(ctx context.Context, uid, providerEmail string, providerVerified bool) error {
	if providerEmail != "" {
		fields := map[string]interface{}{
			"email":         providerEmail,
			"emailVerified": providerVerified,
			"pendingEmail":  nil,
		}
		if err := s.userRepo.UpdateFields(ctx, uid, fields); err != nil {
			s.logger.Warn("failed to sync email on logout", zap.String("uid", uid), zap.Error(err))
		}
	}
	if err := s.authAdmin.RevokeRefreshTokens(ctx, uid); err != nil {
		return fmt.Errorf("failed to revoke refresh tokens for uid '%s': %w", uid, err)
	}
	return nil
}

// audit records an entry, logging on failure instead of propagating.
func (s *identityService) audit(ctx context.Context, entry models.AuditLog) {
	if s.auditService == nil {
		return
	}
	entry.Timestamp = s.now()
	if err := s.auditService.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to write audit log", zap.String("action", entry.Action), zap.Error(err))
	}
}
