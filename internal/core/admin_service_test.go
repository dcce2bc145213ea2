package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"calmme-backend-go/internal/models"
)

func newAdminServiceForTest(t *testing.T) (*adminService, *fakeUserRepo, *fakeAuditRepo) {
	t.Helper()
	users := newFakeUserRepo()
	audit := newFakeAuditRepo()
	svc := NewAdminService(users, NewAuditService(audit), zap.NewNop()).(*adminService)
	svc.now = func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) }
	return svc, users, audit
}

func seedUsers(t *testing.T, users *fakeUserRepo) {
	t.Helper()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, u := range []*models.User{
		{ID: "u1", Username: "alice", Email: "alice@example.com", Role: models.RoleUser},
		{ID: "u2", Username: "bob", Email: "bob@calm.me", Role: models.RoleUser},
		{ID: "u3", Username: "carol", Email: "carol@example.com", Role: models.RoleAdmin},
	} {
		u.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, users.Create(context.Background(), u))
	}
}

func TestListUsersNewestFirst(t *testing.T) {
	svc, users, _ := newAdminServiceForTest(t)
	seedUsers(t, users)

	list, err := svc.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "carol", list[0].Username)
	assert.Equal(t, "alice", list[2].Username)
}

func TestSearchUsersMatchesUsernameAndEmail(t *testing.T) {
	svc, users, _ := newAdminServiceForTest(t)
	seedUsers(t, users)
	ctx := context.Background()

	matched, err := svc.SearchUsers(ctx, "ali")
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "alice", matched[0].Username)

	matched, err = svc.SearchUsers(ctx, "CALM.ME")
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "bob", matched[0].Username)
}

func TestUpdateUserRole(t *testing.T) {
	svc, users, audit := newAdminServiceForTest(t)
	seedUsers(t, users)
	ctx := context.Background()

	require.NoError(t, svc.UpdateUserRole(ctx, "u3", "u1", models.RolePsychologist))

	user, err := users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.RolePsychologist, user.Role)

	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditRoleChange, audit.entries[0].Action)
	assert.Equal(t, "u3", audit.entries[0].UserID)
	assert.Equal(t, "u1", audit.entries[0].TargetID)
}

func TestUpdateUserRoleRejectsUnknownRole(t *testing.T) {
	svc, users, _ := newAdminServiceForTest(t)
	seedUsers(t, users)

	err := svc.UpdateUserRole(context.Background(), "u3", "u1", "superuser")
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestDisableAndEnableUser(t *testing.T) {
	svc, users, audit := newAdminServiceForTest(t)
	seedUsers(t, users)
	ctx := context.Background()

	require.NoError(t, svc.DisableUser(ctx, "u3", "u1", "abuse report"))

	user, err := users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, user.Disabled)
	assert.Equal(t, "abuse report", user.DisabledReason)
	require.NotNil(t, user.DisabledAt)

	require.NoError(t, svc.EnableUser(ctx, "u3", "u1"))

	user, err = users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, user.Disabled)
	assert.Empty(t, user.DisabledReason)
	assert.Nil(t, user.DisabledAt)

	require.Len(t, audit.entries, 2)
	assert.Equal(t, models.AuditUserDisable, audit.entries[0].Action)
	assert.Equal(t, models.AuditUserEnable, audit.entries[1].Action)
}

func TestAdminActionsUnknownUser(t *testing.T) {
	svc, _, _ := newAdminServiceForTest(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.UpdateUserRole(ctx, "admin", "missing", models.RoleUser), ErrUserNotFound)
	assert.ErrorIs(t, svc.DisableUser(ctx, "admin", "missing", "x"), ErrUserNotFound)
	assert.ErrorIs(t, svc.EnableUser(ctx, "admin", "missing"), ErrUserNotFound)
}
