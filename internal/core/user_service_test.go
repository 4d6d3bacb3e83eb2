package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audti-backend-go/internal/db"
	"audti-backend-go/internal/models"
)

func TestUserService_InitializeMakesFirstUserAdmin(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	first := &models.Session{AuthUID: "uid-first", Email: "first@example.com", DisplayName: "First"}
	user, created, err := env.users.Initialize(ctx, first)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.RoleAdministrator, user.Role)
	assert.Equal(t, first.AuthUID, user.ID)
	assert.True(t, user.Active)

	again, created, err := env.users.Initialize(ctx, first)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, user.ID, again.ID)

	second := &models.Session{AuthUID: "uid-second", Email: "second@example.com"}
	user, created, err = env.users.Initialize(ctx, second)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.RoleAuditor, user.Role)
	assert.Equal(t, "second@example.com", user.Name)
}

func TestUserService_MeWithoutProfile(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.users.Me(context.Background(), &models.Session{AuthUID: "uid-1"})
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestUserService_AdminGating(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	auditor := env.addUser(t, "ana", models.RoleAuditor)

	_, err := env.users.List(ctx, auditor)
	assert.ErrorIs(t, err, ErrForbidden)
	_, _, err = env.users.Create(ctx, auditor, models.CreateUserRequest{Name: "x", Email: "x@example.com"})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, env.users.Delete(ctx, auditor, "any"), ErrForbidden)
	_, err = env.activity.List(ctx, auditor, 0)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Empty(t, env.identity.created)
}

func TestUserService_CreateGeneratesPasswordAndNotifies(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	admin := env.addUser(t, "admin", models.RoleAdministrator)

	user, password, err := env.users.Create(ctx, admin, models.CreateUserRequest{Name: " Bia ", Email: "Bia@Example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Bia", user.Name)
	assert.Equal(t, "bia@example.com", user.Email)
	assert.Equal(t, models.RoleAuditor, user.Role)
	assert.Len(t, password, GeneratedPasswordLength)

	require.Len(t, env.notifier.sent, 1)
	assert.Equal(t, models.NotificationWelcome, env.notifier.sent[0].Kind)
	assert.Equal(t, password, env.notifier.sent[0].Password)

	_, password, err = env.users.Create(ctx, admin, models.CreateUserRequest{Name: "Caio", Email: "caio@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Empty(t, password)

	entries, err := env.activity.List(ctx, admin, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.ActionUserCreate, entries[0].Action)
}

func TestUserService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	admin := env.addUser(t, "admin", models.RoleAdministrator)

	tests := []struct {
		name  string
		req   models.CreateUserRequest
		field string
	}{
		{"missing name", models.CreateUserRequest{Email: "a@example.com"}, "name"},
		{"bad email", models.CreateUserRequest{Name: "A", Email: "not-an-email"}, "email"},
		{"short password", models.CreateUserRequest{Name: "A", Email: "a@example.com", Password: "123"}, "password"},
		{"unknown role", models.CreateUserRequest{Name: "A", Email: "a@example.com", Role: "owner"}, "role"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := env.users.Create(ctx, admin, tt.req)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
	assert.Empty(t, env.identity.created)
}

func TestUserService_CreateRemovesIdentityWhenProfileFails(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	admin := env.addUser(t, "admin", models.RoleAdministrator)
	env.addUser(t, "taken", models.RoleAuditor)
	// the provider hands out an identity already linked to a profile
	env.identity.uid = "auth-taken"

	_, _, err := env.users.Create(ctx, admin, models.CreateUserRequest{Name: "Dup", Email: "dup@example.com"})
	assert.ErrorIs(t, err, db.ErrAlreadyExists)
	assert.Equal(t, []string{"auth-taken"}, env.identity.deleted)
	assert.Empty(t, env.notifier.sent)
}

func TestUserService_DeleteOrder(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	admin := env.addUser(t, "admin", models.RoleAdministrator)
	target := env.addUser(t, "bia", models.RoleAuditor)

	require.NoError(t, env.users.Delete(ctx, admin, target.Profile.ID))

	_, err := env.repos.Users.GetByID(ctx, target.Profile.ID)
	assert.ErrorIs(t, err, db.ErrNotFound)
	assert.Equal(t, []string{target.AuthUID}, env.identity.deleted)

	entries, err := env.activity.List(ctx, admin, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.ActionUserDelete, entries[0].Action)
	assert.Equal(t, target.Profile.ID, entries[0].Details["userId"])
}

func TestUserService_DeleteReportsOrphanedIdentity(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	admin := env.addUser(t, "admin", models.RoleAdministrator)
	target := env.addUser(t, "bia", models.RoleAuditor)
	env.identity.deleteErr = errors.New("provider unavailable")

	err := env.users.Delete(ctx, admin, target.Profile.ID)
	assert.ErrorIs(t, err, ErrPartialFailure)

	_, err = env.repos.Users.GetByID(ctx, target.Profile.ID)
	assert.ErrorIs(t, err, db.ErrNotFound)

	entries, err := env.activity.List(ctx, admin, 0)
	require.NoError(t, err)
	actions := make([]string, len(entries))
	for i, e := range entries {
		actions[i] = e.Action
	}
	assert.ElementsMatch(t, []string{models.ActionUserDelete, models.ActionIdentityOrphaned}, actions)
}

func TestUserService_DeleteAbortsWhenActivityLogFails(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	repos.Activity = failingActivityRepo{}
	env := newTestEnvWith(t, repos)
	admin := env.addUser(t, "admin", models.RoleAdministrator)
	target := env.addUser(t, "bia", models.RoleAuditor)

	err := env.users.Delete(ctx, admin, target.Profile.ID)
	require.Error(t, err)

	_, err = env.repos.Users.GetByID(ctx, target.Profile.ID)
	assert.NoError(t, err)
	assert.Empty(t, env.identity.deleted)
}

func TestUserService_SelfGuards(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	admin := env.addUser(t, "admin", models.RoleAdministrator)
	self := admin.Profile.ID

	var ve *ValidationError
	require.ErrorAs(t, env.users.Delete(ctx, admin, self), &ve)

	_, err := env.users.SetActive(ctx, admin, self, false)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "active", ve.Field)

	role := models.RoleAuditor
	_, err = env.users.Update(ctx, admin, self, models.UpdateUserRequest{Role: &role})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "role", ve.Field)

	assert.Empty(t, env.identity.updates)
	assert.Empty(t, env.identity.deleted)
}

func TestUserService_SetActiveDisablesIdentity(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	admin := env.addUser(t, "admin", models.RoleAdministrator)
	target := env.addUser(t, "bia", models.RoleAuditor)

	user, err := env.users.SetActive(ctx, admin, target.Profile.ID, false)
	require.NoError(t, err)
	assert.False(t, user.Active)
	require.Len(t, env.identity.updates, 1)
	require.NotNil(t, env.identity.updates[0].Disabled)
	assert.True(t, *env.identity.updates[0].Disabled)

	// no change, no provider call
	_, err = env.users.SetActive(ctx, admin, target.Profile.ID, false)
	require.NoError(t, err)
	assert.Len(t, env.identity.updates, 1)
}

func TestUserService_ProfileByAuthUIDSeesUpdates(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	admin := env.addUser(t, "admin", models.RoleAdministrator)
	target := env.addUser(t, "bia", models.RoleAuditor)

	before, err := env.users.ProfileByAuthUID(ctx, target.AuthUID)
	require.NoError(t, err)
	assert.True(t, before.Active)

	_, err = env.users.SetActive(ctx, admin, target.Profile.ID, false)
	require.NoError(t, err)

	after, err := env.users.ProfileByAuthUID(ctx, target.AuthUID)
	require.NoError(t, err)
	assert.False(t, after.Active)
}

func TestUserService_ResetPassword(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	admin := env.addUser(t, "admin", models.RoleAdministrator)
	target := env.addUser(t, "bia", models.RoleAuditor)

	password, err := env.users.ResetPassword(ctx, admin, target.Profile.ID, models.ResetPasswordRequest{})
	require.NoError(t, err)
	assert.Len(t, password, GeneratedPasswordLength)
	require.Len(t, env.identity.updates, 1)
	assert.Equal(t, password, *env.identity.updates[0].Password)
	require.Len(t, env.notifier.sent, 1)
	assert.Equal(t, models.NotificationPasswordReset, env.notifier.sent[0].Kind)

	password, err = env.users.ResetPassword(ctx, admin, target.Profile.ID, models.ResetPasswordRequest{Password: "novaSenha1"})
	require.NoError(t, err)
	assert.Equal(t, "novaSenha1", password)
}
