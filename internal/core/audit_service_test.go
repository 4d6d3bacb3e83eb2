package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"audti-backend-go/internal/criteria"
	"audti-backend-go/internal/db"
	"audti-backend-go/internal/filter"
	"audti-backend-go/internal/models"
)

func TestServices_RejectMissingSessionBeforeStoreAccess(t *testing.T) {
	ctx := context.Background()
	// Empty repositories panic on any store call.
	repos := db.Repositories{}
	logger := zap.NewNop()
	activity := NewActivityService(repos, ActivityOptions{}, logger)
	audits := NewAuditService(repos, nil, logger)
	checklists := NewChecklistService(repos, activity, nil, logger)
	responses := NewResponseService(repos, nil, logger)
	users := NewUserService(repos, &fakeIdentity{}, activity, nil, nil, logger)
	reports := NewReportService(repos, logger)

	for _, session := range []*models.Session{nil, {}} {
		_, err := audits.Create(ctx, session, models.CreateAuditRequest{Title: "t", Auditor: "a", Date: "2025-05-15"})
		assert.ErrorIs(t, err, ErrUnauthenticated)
		_, err = audits.Get(ctx, session, "a1")
		assert.ErrorIs(t, err, ErrUnauthenticated)
		assert.ErrorIs(t, audits.Delete(ctx, session, "a1"), ErrUnauthenticated)
		res, err := audits.List(ctx, session, filter.New())
		assert.ErrorIs(t, err, ErrUnauthenticated)
		assert.Empty(t, res.Items)
		_, err = audits.Reconcile(ctx, session, models.ReconcileRequest{})
		assert.ErrorIs(t, err, ErrUnauthenticated)
		_, err = checklists.List(ctx, session, nil)
		assert.ErrorIs(t, err, ErrUnauthenticated)
		_, err = checklists.Create(ctx, session, models.CreateChecklistItemRequest{Category: "c", Description: "d"})
		assert.ErrorIs(t, err, ErrUnauthenticated)
		_, err = responses.ListByAudit(ctx, session, "a1")
		assert.ErrorIs(t, err, ErrUnauthenticated)
		_, _, err = users.Initialize(ctx, session)
		assert.ErrorIs(t, err, ErrUnauthenticated)
		_, err = users.List(ctx, session)
		assert.ErrorIs(t, err, ErrUnauthenticated)
		_, err = activity.List(ctx, session, 10)
		assert.ErrorIs(t, err, ErrUnauthenticated)
		_, err = reports.Overview(ctx, session)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	}
}

func TestAuditService_CreateScoresAndResponses(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	admin := env.addUser(t, "admin", models.RoleAdministrator)
	auditor := env.addUser(t, "carlos", models.RoleAuditor)
	items := env.seedItems(t, admin, "Segurança", 5, 5, 4, 3)

	form, err := env.audits.Reconcile(ctx, auditor, models.ReconcileRequest{
		Categories: []string{"Segurança"},
		Title:      "Auditoria Matriz Maio",
		Auditor:    "Carlos Silva",
		Date:       "2025-05-15",
	})
	require.NoError(t, err)
	require.Len(t, form.Criteria, 4)
	for i, c := range form.Criteria {
		assert.Equal(t, items[i].ID, c.ChecklistID)
		assert.Equal(t, 0, c.Score)
	}

	list := form.Criteria
	for i, score := range []int{5, 5, 4, 5} {
		list, err = criteria.SetScore(list, i, score, time.Now().UTC())
		require.NoError(t, err)
	}

	audit, err := env.audits.Create(ctx, auditor, models.CreateAuditRequest{
		Title:      "Auditoria Matriz Maio",
		Auditor:    "Carlos Silva",
		Date:       "2025-05-15",
		Categories: []string{"Segurança"},
		Criteria:   list,
	})
	require.NoError(t, err)
	assert.Equal(t, auditor.Profile.ID, audit.OwnerID)
	for _, c := range audit.Criteria {
		assert.Nil(t, c.EditedAt)
	}

	report, err := env.reports.AuditReport(ctx, auditor, audit.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.75, report.Summary.Mean)
	assert.Equal(t, 4, report.Responses)

	// saving again must not duplicate responses
	criteriaCopy := audit.Criteria
	_, err = env.audits.Update(ctx, auditor, audit.ID, models.UpdateAuditRequest{Criteria: &criteriaCopy})
	require.NoError(t, err)
	responses, err := env.responses.ListByAudit(ctx, auditor, audit.ID)
	require.NoError(t, err)
	assert.Len(t, responses, 4)
}

func TestAuditService_FormPrefersPersistedResponses(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	admin := env.addUser(t, "admin", models.RoleAdministrator)
	auditor := env.addUser(t, "ana", models.RoleAuditor)
	items := env.seedItems(t, admin, "Higiene", 3, 2)

	audit, err := env.audits.Create(ctx, auditor, models.CreateAuditRequest{
		Title: "Visita", Auditor: "Ana", Date: "2025-01-10", Categories: []string{"Higiene"},
		Criteria: []models.Criterion{{ChecklistID: items[0].ID, Score: 4, Justification: "bom"}},
	})
	require.NoError(t, err)

	form, err := env.audits.Form(ctx, auditor, audit.ID)
	require.NoError(t, err)
	require.Len(t, form.Criteria, 2)
	assert.Equal(t, 4, form.Criteria[0].Score)
	assert.Equal(t, "bom", form.Criteria[0].Justification)
	assert.Equal(t, 0, form.Criteria[1].Score)
	require.Len(t, form.Groups, 1)
	assert.Equal(t, "Higiene", form.Groups[0].Category)
}

func TestAuditService_ScopeIsolation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	admin := env.addUser(t, "admin", models.RoleAdministrator)
	owner := env.addUser(t, "owner", models.RoleAuditor)
	other := env.addUser(t, "other", models.RoleAuditor)

	audit, err := env.audits.Create(ctx, owner, models.CreateAuditRequest{Title: "Visita", Auditor: "Owner", Date: "2025-02-01"})
	require.NoError(t, err)

	_, err = env.audits.Get(ctx, other, audit.ID)
	assert.ErrorIs(t, err, db.ErrNotFound)
	assert.ErrorIs(t, env.audits.Delete(ctx, other, audit.ID), db.ErrNotFound)

	got, err := env.audits.Get(ctx, admin, audit.ID)
	require.NoError(t, err)
	assert.Equal(t, audit.ID, got.ID)

	res, err := env.audits.List(ctx, other, filter.New())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Total)
}

func TestAuditService_AuditsBeforeInitializeStayOwned(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.addUser(t, "admin", models.RoleAdministrator)

	session := &models.Session{AuthUID: "auth-new", Email: "nova@example.com", DisplayName: "Nova"}
	audit, err := env.audits.Create(ctx, session, models.CreateAuditRequest{Title: "Primeira visita", Auditor: "Nova", Date: "2025-03-01"})
	require.NoError(t, err)

	user, created, err := env.users.Initialize(ctx, session)
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, models.RoleAuditor, user.Role)
	session.Profile = user

	got, err := env.audits.Get(ctx, session, audit.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.OwnerID)

	res, err := env.audits.List(ctx, session, filter.New())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
}

func TestAuditService_ResponseFailureIsPartial(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	repos.Responses = failingResponseRepo{repos.Responses}
	env := newTestEnvWith(t, repos)
	admin := env.addUser(t, "admin", models.RoleAdministrator)
	items := env.seedItems(t, admin, "Higiene", 3)

	audit, err := env.audits.Create(ctx, admin, models.CreateAuditRequest{
		Title: "Visita", Auditor: "Admin", Date: "2025-05-15", Categories: []string{"Higiene"},
		Criteria: []models.Criterion{{ChecklistID: items[0].ID, Score: 4}},
	})
	assert.ErrorIs(t, err, ErrPartialFailure)
	assert.NotErrorIs(t, err, db.ErrNotFound)
	require.NotNil(t, audit)
	assert.Contains(t, err.Error(), audit.ID)

	stored, err := env.audits.Get(ctx, admin, audit.ID)
	require.NoError(t, err)
	assert.Equal(t, "Visita", stored.Title)
}

func TestAuditService_InactiveProfileIsForbidden(t *testing.T) {
	env := newTestEnv(t)
	session := env.addUser(t, "ana", models.RoleAuditor)
	session.Profile.Active = false

	_, err := env.audits.Get(context.Background(), session, "any")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAuditService_Validation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	auditor := env.addUser(t, "ana", models.RoleAuditor)

	tests := []struct {
		name  string
		req   models.CreateAuditRequest
		field string
	}{
		{"missing title", models.CreateAuditRequest{Auditor: "Ana", Date: "2025-01-01"}, "title"},
		{"missing auditor", models.CreateAuditRequest{Title: "t", Date: "2025-01-01"}, "auditor"},
		{"bad date", models.CreateAuditRequest{Title: "t", Auditor: "Ana", Date: "01/02/2025"}, "date"},
		{"score out of range", models.CreateAuditRequest{Title: "t", Auditor: "Ana", Date: "2025-01-01",
			Criteria: []models.Criterion{{Description: "x", Score: 6}}}, "criteria[0].score"},
		{"finalize without criteria", models.CreateAuditRequest{Title: "t", Auditor: "Ana", Date: "2025-01-01", Finalize: true}, "criteria"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.audits.Create(ctx, auditor, tt.req)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestAuditService_Finalize(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	auditor := env.addUser(t, "ana", models.RoleAuditor)

	audit, err := env.audits.Create(ctx, auditor, models.CreateAuditRequest{
		Title: "Visita", Auditor: "Ana", Date: "2025-01-10",
		Criteria: []models.Criterion{{Description: "Extintores", Score: 3}},
		Finalize: true,
	})
	require.NoError(t, err)
	assert.True(t, audit.Finalized)
	assert.NotNil(t, audit.FinalizedAt)
	assert.Equal(t, auditor.Profile.ID, audit.FinalizedBy)
	assert.Equal(t, auditor.Profile.Name, audit.FinalizedByName)
}

func TestAuditService_ReconcileOperations(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	admin := env.addUser(t, "admin", models.RoleAdministrator)
	auditor := env.addUser(t, "ana", models.RoleAuditor)
	env.seedItems(t, admin, "Higiene", 3)

	form, err := env.audits.Reconcile(ctx, auditor, models.ReconcileRequest{
		Categories: []string{"Higiene"},
		Operations: []models.CriterionOperation{
			{Op: models.CriterionAdd},
			{Op: models.CriterionUpdate, Index: 1, Description: strPtr("Portas"), Score: intPtr(2)},
		},
	})
	require.NoError(t, err)
	require.Len(t, form.Criteria, 2)
	assert.Equal(t, "Portas", form.Criteria[1].Description)
	assert.Equal(t, 2, form.Criteria[1].Score)
	assert.NotNil(t, form.Criteria[1].EditedAt)

	_, err = env.audits.Reconcile(ctx, auditor, models.ReconcileRequest{
		Categories: []string{"Higiene"},
		Operations: []models.CriterionOperation{{Op: models.CriterionRemove, Index: 0}},
	})
	assert.ErrorIs(t, err, criteria.ErrTemplateLocked)

	_, err = env.audits.Reconcile(ctx, auditor, models.ReconcileRequest{
		Operations: []models.CriterionOperation{{Op: models.CriterionRemove, Index: 3}},
	})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "operations[0].index", ve.Field)
}

func TestAuditService_ListSeesNewAuditsAfterCreate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	auditor := env.addUser(t, "ana", models.RoleAuditor)

	_, err := env.audits.Create(ctx, auditor, models.CreateAuditRequest{Title: "Primeira", Auditor: "Ana", Date: "2025-01-10"})
	require.NoError(t, err)
	res, err := env.audits.List(ctx, auditor, filter.New())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)

	_, err = env.audits.Create(ctx, auditor, models.CreateAuditRequest{Title: "Segunda", Auditor: "Ana", Date: "2025-01-11"})
	require.NoError(t, err)
	res, err = env.audits.List(ctx, auditor, filter.New())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, "Segunda", res.Items[0].Title)
}

func TestAuditService_FilterOptions(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	auditor := env.addUser(t, "ana", models.RoleAuditor)

	_, err := env.audits.Create(ctx, auditor, models.CreateAuditRequest{
		Title: "Visita", Auditor: "Ana", Date: "2025-01-10", Unit: "Centro",
		Categories: []string{" Segurança ", "Higiene", "Higiene"},
	})
	require.NoError(t, err)

	opts, err := env.audits.FilterOptions(ctx, auditor)
	require.NoError(t, err)
	assert.Equal(t, []string{"Higiene", "Segurança"}, opts.Categories)
	assert.Equal(t, []string{"Centro"}, opts.Units)
}

func TestReportService_Overview(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	auditor := env.addUser(t, "ana", models.RoleAuditor)

	_, err := env.audits.Create(ctx, auditor, models.CreateAuditRequest{
		Title: "A", Auditor: "Ana", Date: "2025-01-10", Unit: "Centro",
		Criteria: []models.Criterion{{Description: "x", Score: 4}, {Description: "y", Score: 2}},
		Finalize: true,
	})
	require.NoError(t, err)
	_, err = env.audits.Create(ctx, auditor, models.CreateAuditRequest{Title: "B", Auditor: "Ana", Date: "2025-01-11", Unit: "Centro"})
	require.NoError(t, err)

	o, err := env.reports.Overview(ctx, auditor)
	require.NoError(t, err)
	assert.Equal(t, 2, o.Total)
	assert.Equal(t, 1, o.Finalized)
	assert.Equal(t, 1, o.Drafts)
	assert.Equal(t, 3.0, o.MeanScore)
	assert.Equal(t, []UnitCount{{Unit: "Centro", Count: 2}}, o.ByUnit)
}
