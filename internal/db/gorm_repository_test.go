package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"audti-backend-go/internal/filter"
	"audti-backend-go/internal/models"
)

func newTestRepos(t *testing.T) Repositories {
	t.Helper()
	gdb, err := OpenGorm("sqlite", ":memory:", zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return NewGormRepositories(gdb)
}

var (
	ownerScope = Scope{ActorID: "owner-1"}
	otherScope = Scope{ActorID: "owner-2"}
	adminScope = Scope{ActorID: "admin-1", Admin: true}
)

func seedAudit(t *testing.T, repos Repositories, scope Scope, id, title, date, unit string, categories ...string) *models.Audit {
	t.Helper()
	now := time.Now().UTC()
	audit := &models.Audit{
		ID:         id,
		Title:      title,
		Date:       date,
		Auditor:    "Ana",
		Unit:       unit,
		Categories: categories,
		Criteria:   []models.Criterion{{Description: "Piso limpo", Score: 4, ChecklistID: "item-1", Category: "Higiene", Weight: 3}},
		OwnerID:    scope.ActorID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, repos.Audits.Create(context.Background(), scope, audit))
	return audit
}

func TestGormAuditRepository_Scope(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	seedAudit(t, repos, ownerScope, "a1", "Visita", "2024-03-01", "Centro", "Higiene")

	got, err := repos.Audits.GetByID(ctx, ownerScope, "a1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Higiene"}, got.Categories)
	require.Len(t, got.Criteria, 1)
	assert.Equal(t, "item-1", got.Criteria[0].ChecklistID)

	_, err = repos.Audits.GetByID(ctx, otherScope, "a1")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repos.Audits.GetByID(ctx, adminScope, "a1")
	assert.NoError(t, err)

	got.Title = "Hijack"
	assert.ErrorIs(t, repos.Audits.Update(ctx, otherScope, got), ErrNotFound)
	assert.ErrorIs(t, repos.Audits.Delete(ctx, otherScope, "a1"), ErrNotFound)

	foreign := &models.Audit{ID: "a2", Title: "x", Date: "2024-03-01", Auditor: "x", OwnerID: "owner-1"}
	assert.ErrorIs(t, repos.Audits.Create(ctx, otherScope, foreign), ErrPolicyViolation)
}

func TestGormAuditRepository_ListFilters(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	seedAudit(t, repos, ownerScope, "a1", "Cozinha central", "2024-01-10", "Centro", "Higiene")
	seedAudit(t, repos, ownerScope, "a2", "Almoxarifado", "2024-02-15", "Norte", "Estoque")
	seedAudit(t, repos, ownerScope, "a3", "Banheiros", "2024-03-20", "Centro", "Higiene", "Estrutura")
	seedAudit(t, repos, otherScope, "a4", "Outro dono", "2024-03-21", "Sul", "Higiene")

	res, err := repos.Audits.List(ctx, ownerScope, filter.New())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	require.Len(t, res.Items, 3)
	assert.Equal(t, "a3", res.Items[0].ID, "newest first by default")

	res, err = repos.Audits.List(ctx, ownerScope, filter.New().WithCategories("Higiene"))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)

	res, err = repos.Audits.List(ctx, ownerScope, filter.New().WithUnit("Norte"))
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "a2", res.Items[0].ID)

	res, err = repos.Audits.List(ctx, ownerScope, filter.New().WithSearch("COZINHA"))
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "a1", res.Items[0].ID)

	res, err = repos.Audits.List(ctx, ownerScope, filter.New().WithDateRange("2024-02-01", "2024-02-29"))
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "a2", res.Items[0].ID)

	res, err = repos.Audits.List(ctx, ownerScope, filter.New().WithSort(filter.SortByTitle, filter.Ascending).WithPageSize(2))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, res.TotalPages)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "a2", res.Items[0].ID)
	assert.Equal(t, "a3", res.Items[1].ID)

	res, err = repos.Audits.List(ctx, adminScope, filter.New())
	require.NoError(t, err)
	assert.Equal(t, 4, res.Total)
}

func TestGormAuditRepository_SearchFoldsAccentedCase(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	audit := seedAudit(t, repos, ownerScope, "a1", "AUDITORIA SEGURANÇA", "2024-01-10", "Centro", "Segurança")
	seedAudit(t, repos, ownerScope, "a2", "Almoxarifado", "2024-02-15", "Norte", "Estoque")

	q := filter.New().WithSearch("segurança")
	assert.True(t, q.Matches(*audit))

	res, err := repos.Audits.List(ctx, ownerScope, q)
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	assert.Equal(t, "a1", res.Items[0].ID)

	audit.Title = "CONFERÊNCIA DE ESTOQUE"
	require.NoError(t, repos.Audits.Update(ctx, ownerScope, audit))

	res, err = repos.Audits.List(ctx, ownerScope, filter.New().WithSearch("conferência"))
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	assert.Equal(t, "a1", res.Items[0].ID)

	res, err = repos.Audits.List(ctx, ownerScope, q)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Total)
}

func TestGormAuditRepository_DistinctValuesAreScoped(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	seedAudit(t, repos, ownerScope, "a1", "A", "2024-01-10", "Centro", "Higiene", "Estoque")
	seedAudit(t, repos, otherScope, "a2", "B", "2024-01-11", "Sul", "Seguranca")

	categories, err := repos.Audits.DistinctCategories(ctx, ownerScope)
	require.NoError(t, err)
	assert.Equal(t, []string{"Estoque", "Higiene"}, categories)

	units, err := repos.Audits.DistinctUnits(ctx, adminScope)
	require.NoError(t, err)
	assert.Equal(t, []string{"Centro", "Sul"}, units)
}

func TestGormResponseRepository_UpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	seedAudit(t, repos, ownerScope, "a1", "Visita", "2024-03-01", "")

	now := time.Now().UTC()
	first := []models.Response{{ChecklistID: "item-1", Score: 2, RespondedBy: "owner-1", RespondedAt: now, CreatedAt: now, UpdatedAt: now}}
	require.NoError(t, repos.Responses.UpsertMany(ctx, ownerScope, "a1", first))

	second := []models.Response{{ChecklistID: "item-1", Score: 5, Justification: "ok", RespondedBy: "owner-1", RespondedAt: now, CreatedAt: now, UpdatedAt: now}}
	require.NoError(t, repos.Responses.UpsertMany(ctx, ownerScope, "a1", second))

	responses, err := repos.Responses.ListByAudit(ctx, ownerScope, "a1")
	require.NoError(t, err)
	require.Len(t, responses, 1)
	assert.Equal(t, 5, responses[0].Score)
	assert.Equal(t, "ok", responses[0].Justification)

	assert.ErrorIs(t, repos.Responses.UpsertMany(ctx, otherScope, "a1", second), ErrNotFound)
	_, err = repos.Responses.ListByAudit(ctx, otherScope, "a1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormAuditRepository_DeleteRemovesResponses(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	seedAudit(t, repos, ownerScope, "a1", "Visita", "2024-03-01", "")
	now := time.Now().UTC()
	require.NoError(t, repos.Responses.UpsertMany(ctx, ownerScope, "a1", []models.Response{{ChecklistID: "item-1", Score: 3, RespondedAt: now}}))

	require.NoError(t, repos.Audits.Delete(ctx, adminScope, "a1"))

	_, err := repos.Audits.GetByID(ctx, adminScope, "a1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repos.Responses.ListByAudit(ctx, adminScope, "a1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormChecklistRepository_DeleteCategoryKeepsAuditSnapshots(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	items := []*models.ChecklistItem{
		{ID: "item-1", Category: "Higiene", Description: "Piso limpo", Weight: 3, Order: 1},
		{ID: "item-2", Category: "Higiene", Description: "Lixeiras", Weight: 2, Order: 2},
		{ID: "item-3", Category: "Estoque", Description: "Validade", Weight: 5, Order: 1},
	}
	require.NoError(t, repos.Checklists.CreateMany(ctx, items))
	seedAudit(t, repos, ownerScope, "a1", "Visita", "2024-03-01", "", "Higiene")

	n, err := repos.Checklists.DeleteCategory(ctx, "Higiene")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	remaining, err := repos.Checklists.List(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "item-3", remaining[0].ID)

	audit, err := repos.Audits.GetByID(ctx, ownerScope, "a1")
	require.NoError(t, err)
	require.Len(t, audit.Criteria, 1)
	assert.Equal(t, "Piso limpo", audit.Criteria[0].Description)

	_, err = repos.Checklists.DeleteCategory(ctx, "Higiene")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormUserRepository(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	exists, err := repos.Users.HasAny(ctx)
	require.NoError(t, err)
	assert.False(t, exists)

	user := &models.User{ID: "u1", AuthUID: "uid-1", Name: "Ana", Email: "ana@example.com", Role: models.RoleAuditor, Active: true}
	require.NoError(t, repos.Users.Create(ctx, user))

	dup := &models.User{ID: "u2", AuthUID: "uid-1", Name: "Bia", Email: "bia@example.com", Role: models.RoleAuditor}
	assert.ErrorIs(t, repos.Users.Create(ctx, dup), ErrAlreadyExists)

	got, err := repos.Users.GetByAuthUID(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)

	got.Active = false
	require.NoError(t, repos.Users.Update(ctx, got))
	got, err = repos.Users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, got.Active)

	require.NoError(t, repos.Users.Delete(ctx, "u1"))
	assert.ErrorIs(t, repos.Users.Delete(ctx, "u1"), ErrNotFound)
}

func TestGormActivityLogRepository_NewestFirst(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, action := range []string{models.ActionUserCreate, models.ActionUserUpdate, models.ActionUserDelete} {
		require.NoError(t, repos.Activity.Create(ctx, &models.ActivityLog{
			ID:        action,
			ActorID:   "admin-1",
			ActorName: "Admin",
			Action:    action,
			Details:   map[string]interface{}{"n": i},
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	entries, err := repos.Activity.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.ActionUserDelete, entries[0].Action)
	assert.Equal(t, float64(2), entries[0].Details["n"])
	assert.Equal(t, models.ActionUserUpdate, entries[1].Action)
}
