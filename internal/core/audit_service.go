package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"audti-backend-go/internal/criteria"
	"audti-backend-go/internal/db"
	"audti-backend-go/internal/filter"
	"audti-backend-go/internal/models"
	"audti-backend-go/pkg/cache"
)

// FilterOptions lists the values in use for the audit list filters.
type FilterOptions struct {
	Categories []string `json:"categories"`
	Units      []string `json:"units"`
}

// AuditForm is a reconciled criteria list with its completion percentage.
type AuditForm struct {
	Audit    *models.Audit          `json:"audit,omitempty"`
	Criteria []models.Criterion     `json:"criteria"`
	Groups   []models.CategoryGroup `json:"groups"`
	Progress int                    `json:"progress"`
}

type auditService struct {
	audits     db.AuditRepository
	checklists db.ChecklistRepository
	responses  db.ResponseRepository
	cache      cache.Cache
	logger     *zap.Logger
	now        func() time.Time
}

// NewAuditService creates a new AuditService instance.
func NewAuditService(repos db.Repositories, c cache.Cache, logger *zap.Logger) AuditService {
	return &auditService{
		audits:     repos.Audits,
		checklists: repos.Checklists,
		responses:  repos.Responses,
		cache:      c,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *auditService) Create(ctx context.Context, session *models.Session, req models.CreateAuditRequest) (*models.Audit, error) {
	if err := authenticated(session); err != nil {
		return nil, err
	}
	audit := &models.Audit{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Date:        strings.TrimSpace(req.Date),
		Auditor:     strings.TrimSpace(req.Auditor),
		Unit:        strings.TrimSpace(req.Unit),
		Categories:  cleanCategories(req.Categories),
	}
	if err := validateAudit(audit); err != nil {
		return nil, err
	}
	if err := validateScores(req.Criteria); err != nil {
		return nil, err
	}

	list, err := s.rederive(ctx, audit.Categories, req.Criteria)
	if err != nil {
		return nil, err
	}
	audit.Criteria = list

	now := s.now()
	audit.ID = newID()
	audit.OwnerID = session.ActorID()
	audit.UpdatedBy = session.ActorID()
	audit.CreatedAt = now
	audit.UpdatedAt = now
	if req.Finalize {
		if err := finalize(audit, session, now); err != nil {
			return nil, err
		}
	}

	scope := scopeOf(session)
	if err := s.audits.Create(ctx, scope, audit); err != nil {
		return nil, err
	}
	invalidate(ctx, s.cache, s.logger, FamilyAudits)

	if err := s.saveResponses(ctx, session, audit, now); err != nil {
		return audit, err
	}
	s.logger.Info("Audit created", zap.String("auditID", audit.ID), zap.String("actor", audit.OwnerID), zap.Int("criteria", len(audit.Criteria)))
	return audit, nil
}

func (s *auditService) Get(ctx context.Context, session *models.Session, auditID string) (*models.Audit, error) {
	if err := authenticated(session); err != nil {
		return nil, err
	}
	return s.audits.GetByID(ctx, scopeOf(session), auditID)
}

func (s *auditService) Update(ctx context.Context, session *models.Session, auditID string, req models.UpdateAuditRequest) (*models.Audit, error) {
	if err := authenticated(session); err != nil {
		return nil, err
	}
	scope := scopeOf(session)
	audit, err := s.audits.GetByID(ctx, scope, auditID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		audit.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		audit.Description = strings.TrimSpace(*req.Description)
	}
	if req.Date != nil {
		audit.Date = strings.TrimSpace(*req.Date)
	}
	if req.Auditor != nil {
		audit.Auditor = strings.TrimSpace(*req.Auditor)
	}
	if req.Unit != nil {
		audit.Unit = strings.TrimSpace(*req.Unit)
	}
	if req.Categories != nil {
		audit.Categories = cleanCategories(*req.Categories)
	}
	if err := validateAudit(audit); err != nil {
		return nil, err
	}

	current := audit.Criteria
	if req.Criteria != nil {
		current = *req.Criteria
		if err := validateScores(current); err != nil {
			return nil, err
		}
	}
	if req.Criteria != nil || req.Categories != nil {
		list, err := s.rederive(ctx, audit.Categories, current)
		if err != nil {
			return nil, err
		}
		audit.Criteria = list
	}

	now := s.now()
	audit.UpdatedBy = session.ActorID()
	audit.UpdatedAt = now
	if req.Finalize && !audit.Finalized {
		if err := finalize(audit, session, now); err != nil {
			return nil, err
		}
	}

	if err := s.audits.Update(ctx, scope, audit); err != nil {
		return nil, err
	}
	invalidate(ctx, s.cache, s.logger, FamilyAudits)

	if err := s.saveResponses(ctx, session, audit, now); err != nil {
		return audit, err
	}
	return audit, nil
}

func (s *auditService) Delete(ctx context.Context, session *models.Session, auditID string) error {
	if err := authenticated(session); err != nil {
		return err
	}
	if err := s.audits.Delete(ctx, scopeOf(session), auditID); err != nil {
		return err
	}
	invalidate(ctx, s.cache, s.logger, FamilyAudits, FamilyResponses)
	s.logger.Info("Audit deleted", zap.String("auditID", auditID), zap.String("actor", session.ActorID()))
	return nil
}

func (s *auditService) List(ctx context.Context, session *models.Session, q filter.Query) (filter.Result, error) {
	q = q.Normalize()
	if err := authenticated(session); err != nil {
		return filter.Empty(q), err
	}
	if err := q.Validate(); err != nil {
		return filter.Empty(q), invalid("query", "%s", strings.TrimPrefix(err.Error(), filter.ErrInvalidQuery.Error()+": "))
	}

	scope := scopeOf(session)
	key := cacheKey(scope.ActorID, boolKey(scope.Admin), q.CacheKey())
	result, err := cached(ctx, s.cache, s.logger, FamilyAudits, key, func() (filter.Result, error) {
		return s.audits.List(ctx, scope, q)
	})
	if err != nil {
		return filter.Empty(q), err
	}
	return result, nil
}

func (s *auditService) FilterOptions(ctx context.Context, session *models.Session) (*FilterOptions, error) {
	if err := authenticated(session); err != nil {
		return nil, err
	}
	scope := scopeOf(session)
	opts := &FilterOptions{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		categories, err := s.audits.DistinctCategories(gctx, scope)
		opts.Categories = categories
		return err
	})
	g.Go(func() error {
		units, err := s.audits.DistinctUnits(gctx, scope)
		opts.Units = units
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if opts.Categories == nil {
		opts.Categories = []string{}
	}
	if opts.Units == nil {
		opts.Units = []string{}
	}
	return opts, nil
}

func (s *auditService) Reconcile(ctx context.Context, session *models.Session, req models.ReconcileRequest) (*AuditForm, error) {
	if err := authenticated(session); err != nil {
		return nil, err
	}
	if err := validateScores(req.Criteria); err != nil {
		return nil, err
	}

	var responses []models.Response
	if req.AuditID != "" {
		var err error
		responses, err = s.responses.ListByAudit(ctx, scopeOf(session), req.AuditID)
		if err != nil {
			return nil, err
		}
	}
	categories := cleanCategories(req.Categories)
	items, err := s.items(ctx, categories)
	if err != nil {
		return nil, err
	}

	list := criteria.Reconcile(items, responses, req.Criteria)
	list, err = applyOperations(list, req.Operations, s.now())
	if err != nil {
		return nil, err
	}
	return &AuditForm{
		Criteria: list,
		Groups:   models.GroupByCategory(items).Ordered(),
		Progress: criteria.Progress([]string{req.Title, req.Date, req.Auditor}, list),
	}, nil
}

func (s *auditService) Form(ctx context.Context, session *models.Session, auditID string) (*AuditForm, error) {
	if err := authenticated(session); err != nil {
		return nil, err
	}
	scope := scopeOf(session)
	audit, err := s.audits.GetByID(ctx, scope, auditID)
	if err != nil {
		return nil, err
	}
	responses, err := s.responses.ListByAudit(ctx, scope, auditID)
	if err != nil {
		return nil, err
	}
	items, err := s.items(ctx, audit.Categories)
	if err != nil {
		return nil, err
	}
	list := criteria.Reconcile(items, responses, audit.Criteria)
	return &AuditForm{
		Audit:    audit,
		Criteria: list,
		Groups:   models.GroupByCategory(items).Ordered(),
		Progress: criteria.Progress([]string{audit.Title, audit.Date, audit.Auditor}, list),
	}, nil
}

// rederive re-runs reconciliation on save, so the stored template-sourced
// criteria always match the items of the selected categories.
func (s *auditService) rederive(ctx context.Context, categories []string, current []models.Criterion) ([]models.Criterion, error) {
	items, err := s.items(ctx, categories)
	if err != nil {
		return nil, err
	}
	return criteria.Snapshot(criteria.Reconcile(items, nil, current)), nil
}

func (s *auditService) items(ctx context.Context, categories []string) ([]models.ChecklistItem, error) {
	if len(categories) == 0 {
		return nil, nil
	}
	items, err := s.checklists.ListByCategories(ctx, categories)
	if err != nil {
		return nil, fmt.Errorf("failed to load checklist items: %w", err)
	}
	return items, nil
}

func (s *auditService) saveResponses(ctx context.Context, session *models.Session, audit *models.Audit, now time.Time) error {
	responses := criteria.Responses(audit.ID, audit.Criteria)
	if len(responses) == 0 {
		return nil
	}
	for i := range responses {
		responses[i].RespondedBy = session.ActorID()
		responses[i].RespondedByEmail = session.Email
		responses[i].RespondedAt = now
		responses[i].CreatedAt = now
		responses[i].UpdatedAt = now
	}
	if err := s.responses.UpsertMany(ctx, scopeOf(session), audit.ID, responses); err != nil {
		return fmt.Errorf("%w: audit '%s' was saved but its responses were not: %v", ErrPartialFailure, audit.ID, err)
	}
	invalidate(ctx, s.cache, s.logger, FamilyResponses)
	return nil
}

func finalize(audit *models.Audit, session *models.Session, now time.Time) error {
	if len(audit.Criteria) == 0 {
		return invalid("criteria", "at least one criterion is required to finalize")
	}
	at := now
	audit.Finalized = true
	audit.FinalizedAt = &at
	audit.FinalizedBy = session.ActorID()
	audit.FinalizedByName = session.ActorName()
	return nil
}

func validateAudit(a *models.Audit) error {
	if a.Title == "" {
		return invalid("title", "is required")
	}
	if a.Auditor == "" {
		return invalid("auditor", "is required")
	}
	if a.Date == "" {
		return invalid("date", "is required")
	}
	if _, err := time.Parse(models.DateLayout, a.Date); err != nil {
		return invalid("date", "must be formatted as YYYY-MM-DD")
	}
	return nil
}

func validateScores(list []models.Criterion) error {
	for i, c := range list {
		if c.Score < 0 || c.Score > 5 {
			return invalid(fmt.Sprintf("criteria[%d].score", i), "must be between 0 and 5")
		}
	}
	return nil
}

func applyOperations(list []models.Criterion, ops []models.CriterionOperation, at time.Time) ([]models.Criterion, error) {
	var err error
	for i, op := range ops {
		switch op.Op {
		case models.CriterionAdd:
			list = criteria.AddCustom(list)
		case models.CriterionRemove:
			list, err = criteria.Remove(list, op.Index)
		case models.CriterionUpdate:
			if op.Score != nil && (*op.Score < 0 || *op.Score > 5) {
				return nil, invalid(fmt.Sprintf("operations[%d].score", i), "must be between 0 and 5")
			}
			list, err = criteria.Update(list, op.Index, criteria.Patch{
				Description:   op.Description,
				Score:         op.Score,
				Justification: op.Justification,
			}, at)
		default:
			return nil, invalid(fmt.Sprintf("operations[%d].op", i), "unknown operation %q", op.Op)
		}
		if errors.Is(err, criteria.ErrIndexOutOfRange) {
			return nil, invalid(fmt.Sprintf("operations[%d].index", i), "%d is out of range", op.Index)
		}
		if err != nil {
			return nil, err
		}
	}
	return list, nil
}

func cleanCategories(categories []string) []string {
	seen := make(map[string]struct{}, len(categories))
	out := make([]string, 0, len(categories))
	for _, c := range categories {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
