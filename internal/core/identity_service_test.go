package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"calmme-backend-go/internal/identity"
	"calmme-backend-go/internal/models"
)

type identityFixture struct {
	svc      *identityService
	users    *fakeUserRepo
	provider *fakeIdentityProvider
	admin    *fakeAuthAdmin
	audit    *fakeAuditRepo
}

func newIdentityFixture(t *testing.T) *identityFixture {
	t.Helper()
	f := &identityFixture{
		users:    newFakeUserRepo(),
		provider: newFakeIdentityProvider(),
		admin:    newFakeAuthAdmin(),
		audit:    newFakeAuditRepo(),
	}
	svc := NewIdentityService(f.users, f.provider, f.admin, NewAuditService(f.audit), zap.NewNop()).(*identityService)
	svc.now = func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) }
	f.svc = svc
	return f
}

func (f *identityFixture) register(t *testing.T, username, email, password string) *AuthSession {
	t.Helper()
	session, err := f.svc.Register(context.Background(), username, email, password)
	require.NoError(t, err)
	return session
}

func TestRegisterCreatesCredentialAndProfile(t *testing.T) {
	f := newIdentityFixture(t)

	session := f.register(t, "Alice", "alice@example.com", "secret123")
	assert.NotEmpty(t, session.UID)
	assert.NotEmpty(t, session.IDToken)

	// Username is stored lowercase.
	user, err := f.users.GetByID(context.Background(), session.UID)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, models.SubscriptionInactive, user.SubscriptionStatus)
	assert.False(t, user.EmailVerified)

	// A verification email was requested.
	assert.Contains(t, f.provider.oobCalls, identity.OobVerifyEmail)
}

func TestRegisterRejectsTakenUsername(t *testing.T) {
	f := newIdentityFixture(t)
	f.register(t, "alice", "alice@example.com", "secret123")

	_, err := f.svc.Register(context.Background(), "Alice", "other@example.com", "secret123")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestResolveLoginWithEmail(t *testing.T) {
	f := newIdentityFixture(t)
	registered := f.register(t, "alice", "alice@example.com", "secret123")

	session, err := f.svc.ResolveLogin(context.Background(), "alice@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, registered.UID, session.UID)
	require.NotNil(t, session.User)
	assert.Equal(t, "alice", session.User.Username)
}

func TestResolveLoginWithUsername(t *testing.T) {
	f := newIdentityFixture(t)
	registered := f.register(t, "alice", "alice@example.com", "secret123")

	session, err := f.svc.ResolveLogin(context.Background(), "alice", "secret123")
	require.NoError(t, err)
	assert.Equal(t, registered.UID, session.UID)
}

func TestResolveLoginUnknownUsername(t *testing.T) {
	f := newIdentityFixture(t)

	_, err := f.svc.ResolveLogin(context.Background(), "nobody", "secret123")
	assert.ErrorIs(t, err, ErrUsernameNotFound)
}

func TestResolveLoginWrongPasswordPassesProviderCodeThrough(t *testing.T) {
	f := newIdentityFixture(t)
	f.register(t, "alice", "alice@example.com", "secret123")

	_, err := f.svc.ResolveLogin(context.Background(), "alice", "wrong")
	require.Error(t, err)
	assert.Equal(t, "INVALID_PASSWORD", err.Error())
}

func TestGetCurrentUserDataReconcilesEmail(t *testing.T) {
	f := newIdentityFixture(t)
	session := f.register(t, "alice", "alice@example.com", "secret123")
	ctx := context.Background()

	// Simulate a committed out-of-band email change: the token now carries
	// the new address while the profile still holds the old one plus the
	// pending marker.
	require.NoError(t, f.users.UpdateFields(ctx, session.UID, map[string]interface{}{
		"pendingEmail": "new@example.com",
	}))

	user, err := f.svc.GetCurrentUserData(ctx, session.UID, "new@example.com", true)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email)
	assert.True(t, user.EmailVerified)
	assert.Empty(t, user.PendingEmail)
}

func TestGetCurrentUserDataNoReconcileWhenEmailsMatch(t *testing.T) {
	f := newIdentityFixture(t)
	session := f.register(t, "alice", "alice@example.com", "secret123")

	user, err := f.svc.GetCurrentUserData(context.Background(), session.UID, "alice@example.com", false)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
}

func TestGetCurrentUserDataUnknownUser(t *testing.T) {
	f := newIdentityFixture(t)

	_, err := f.svc.GetCurrentUserData(context.Background(), "missing", "", false)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateEmailWithAuthMarksPending(t *testing.T) {
	f := newIdentityFixture(t)
	session := f.register(t, "alice", "alice@example.com", "secret123")
	ctx := context.Background()

	require.NoError(t, f.svc.UpdateEmailWithAuth(ctx, session.UID, "new@example.com", "secret123"))

	user, err := f.users.GetByID(ctx, session.UID)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.PendingEmail)
	// The stored email does not change until the link is clicked.
	assert.Equal(t, "alice@example.com", user.Email)
	assert.False(t, user.EmailVerified)
	assert.Contains(t, f.provider.oobCalls, identity.OobVerifyAndChangeEmail)
}

func TestUpdateEmailWithAuthWrongPassword(t *testing.T) {
	f := newIdentityFixture(t)
	session := f.register(t, "alice", "alice@example.com", "secret123")

	err := f.svc.UpdateEmailWithAuth(context.Background(), session.UID, "new@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, "INVALID_PASSWORD", err.Error())
}

func TestUpdatePasswordRequiresReauth(t *testing.T) {
	f := newIdentityFixture(t)
	session := f.register(t, "alice", "alice@example.com", "secret123")
	ctx := context.Background()

	err := f.svc.UpdatePassword(ctx, session.UID, "wrong", "newsecret")
	require.Error(t, err)

	require.NoError(t, f.svc.UpdatePassword(ctx, session.UID, "secret123", "newsecret"))

	// The new password works.
	_, err = f.svc.ResolveLogin(ctx, "alice", "newsecret")
	assert.NoError(t, err)
}

func TestCheckEmailVerificationStatusMirrorsFlag(t *testing.T) {
	f := newIdentityFixture(t)
	session := f.register(t, "alice", "alice@example.com", "secret123")
	ctx := context.Background()

	verified, err := f.svc.CheckEmailVerificationStatus(ctx, session.UID)
	require.NoError(t, err)
	assert.False(t, verified)

	f.admin.verified[session.UID] = true
	verified, err = f.svc.CheckEmailVerificationStatus(ctx, session.UID)
	require.NoError(t, err)
	assert.True(t, verified)

	user, err := f.users.GetByID(ctx, session.UID)
	require.NoError(t, err)
	assert.True(t, user.EmailVerified)
}

func TestLogoutRevokesTokens(t *testing.T) {
	f := newIdentityFixture(t)
	session := f.register(t, "alice", "alice@example.com", "secret123")

	require.NoError(t, f.svc.Logout(context.Background(), session.UID, "alice@example.com", true))
	assert.Equal(t, []string{session.UID}, f.admin.revoked)
}

func TestRegisterOrphanedCredential(t *testing.T) {
	f := newIdentityFixture(t)
	ctx := context.Background()

	// A profile document already occupies the UID the provider hands out,
	// so profile creation fails after the credential exists.
	require.NoError(t, f.users.Create(ctx, &models.User{ID: "uid-1", Username: "ghost"}))

	_, err := f.svc.Register(ctx, "alice", "alice@example.com", "secret123")
	assert.ErrorIs(t, err, ErrOrphanedCredential)
}
