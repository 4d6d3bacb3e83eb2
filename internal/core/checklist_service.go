package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"audti-backend-go/internal/db"
	"audti-backend-go/internal/models"
	"audti-backend-go/pkg/cache"
)

type checklistService struct {
	checklists db.ChecklistRepository
	activity   ActivityService
	cache      cache.Cache
	logger     *zap.Logger
	now        func() time.Time
}

// NewChecklistService creates a new ChecklistService instance.
func NewChecklistService(repos db.Repositories, activity ActivityService, c cache.Cache, logger *zap.Logger) ChecklistService {
	return &checklistService{
		checklists: repos.Checklists,
		activity:   activity,
		cache:      c,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *checklistService) List(ctx context.Context, session *models.Session, categories []string) ([]models.ChecklistItem, error) {
	if err := authenticated(session); err != nil {
		return nil, err
	}
	categories = cleanCategories(categories)
	key := cacheKey(append([]string{"items"}, categories...)...)
	return cached(ctx, s.cache, s.logger, FamilyChecklists, key, func() ([]models.ChecklistItem, error) {
		var (
			items []models.ChecklistItem
			err   error
		)
		if len(categories) == 0 {
			items, err = s.checklists.List(ctx)
		} else {
			items, err = s.checklists.ListByCategories(ctx, categories)
		}
		if items == nil {
			items = []models.ChecklistItem{}
		}
		return items, err
	})
}

func (s *checklistService) Grouped(ctx context.Context, session *models.Session, categories []string) ([]models.CategoryGroup, error) {
	items, err := s.List(ctx, session, categories)
	if err != nil {
		return nil, err
	}
	return models.GroupByCategory(items).Ordered(), nil
}

func (s *checklistService) Categories(ctx context.Context, session *models.Session) ([]string, error) {
	if err := authenticated(session); err != nil {
		return nil, err
	}
	return cached(ctx, s.cache, s.logger, FamilyChecklists, cacheKey("categories"), func() ([]string, error) {
		categories, err := s.checklists.Categories(ctx)
		if categories == nil {
			categories = []string{}
		}
		return categories, err
	})
}

func (s *checklistService) Get(ctx context.Context, session *models.Session, itemID string) (*models.ChecklistItem, error) {
	if err := authenticated(session); err != nil {
		return nil, err
	}
	return s.checklists.GetByID(ctx, itemID)
}

func (s *checklistService) Create(ctx context.Context, session *models.Session, req models.CreateChecklistItemRequest) (*models.ChecklistItem, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	item, err := s.newItem(session, req, "")
	if err != nil {
		return nil, err
	}
	if err := s.checklists.Create(ctx, item); err != nil {
		return nil, err
	}
	invalidate(ctx, s.cache, s.logger, FamilyChecklists)
	return item, nil
}

func (s *checklistService) CreateMany(ctx context.Context, session *models.Session, reqs []models.CreateChecklistItemRequest) ([]models.ChecklistItem, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	items, err := s.newItems(session, reqs)
	if err != nil {
		return nil, err
	}
	if err := s.checklists.CreateMany(ctx, items); err != nil {
		return nil, err
	}
	invalidate(ctx, s.cache, s.logger, FamilyChecklists)

	out := make([]models.ChecklistItem, len(items))
	for i, item := range items {
		out[i] = *item
	}
	return out, nil
}

func (s *checklistService) Update(ctx context.Context, session *models.Session, itemID string, req models.UpdateChecklistItemRequest) (*models.ChecklistItem, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	item, err := s.checklists.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if req.Category != nil {
		item.Category = strings.TrimSpace(*req.Category)
	}
	if req.Description != nil {
		item.Description = strings.TrimSpace(*req.Description)
	}
	if req.Weight != nil {
		item.Weight = *req.Weight
	}
	if req.Required != nil {
		item.Required = *req.Required
	}
	if req.Order != nil {
		item.Order = *req.Order
	}
	if err := validateItem(item, ""); err != nil {
		return nil, err
	}
	item.UpdatedBy = session.ActorID()
	item.UpdatedAt = s.now()

	if err := s.checklists.Update(ctx, item); err != nil {
		return nil, err
	}
	invalidate(ctx, s.cache, s.logger, FamilyChecklists)
	return item, nil
}

func (s *checklistService) Delete(ctx context.Context, session *models.Session, itemID string) error {
	if err := requireAdmin(session); err != nil {
		return err
	}
	if err := s.checklists.Delete(ctx, itemID); err != nil {
		return err
	}
	invalidate(ctx, s.cache, s.logger, FamilyChecklists)
	return nil
}

// DeleteCategory removes every item of the category. Audits that embed
// criteria from those items keep their snapshot.
func (s *checklistService) DeleteCategory(ctx context.Context, session *models.Session, category string) (int, error) {
	if err := requireAdmin(session); err != nil {
		return 0, err
	}
	category = strings.TrimSpace(category)
	if category == "" {
		return 0, invalid("category", "is required")
	}
	removed, err := s.checklists.DeleteCategory(ctx, category)
	if err != nil {
		return 0, err
	}
	invalidate(ctx, s.cache, s.logger, FamilyChecklists)
	if err := s.activity.Append(ctx, session, models.ActionChecklistCategory, map[string]interface{}{
		"category": category,
		"removed":  removed,
	}); err != nil {
		return removed, err
	}
	return removed, nil
}

func (s *checklistService) Import(ctx context.Context, session *models.Session, reqs []models.CreateChecklistItemRequest) (int, error) {
	if err := requireAdmin(session); err != nil {
		return 0, err
	}
	if len(reqs) == 0 {
		return 0, invalid("items", "the template contains no items")
	}
	items, err := s.CreateMany(ctx, session, reqs)
	if err != nil {
		return 0, err
	}
	categories := make(map[string]struct{})
	for _, item := range items {
		categories[item.Category] = struct{}{}
	}
	if err := s.activity.Append(ctx, session, models.ActionChecklistImport, map[string]interface{}{
		"items":      len(items),
		"categories": len(categories),
	}); err != nil {
		return len(items), err
	}
	return len(items), nil
}

func (s *checklistService) newItems(session *models.Session, reqs []models.CreateChecklistItemRequest) ([]*models.ChecklistItem, error) {
	items := make([]*models.ChecklistItem, 0, len(reqs))
	for i, req := range reqs {
		item, err := s.newItem(session, req, fmt.Sprintf("items[%d].", i))
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *checklistService) newItem(session *models.Session, req models.CreateChecklistItemRequest, prefix string) (*models.ChecklistItem, error) {
	now := s.now()
	item := &models.ChecklistItem{
		ID:          newID(),
		Category:    strings.TrimSpace(req.Category),
		Description: strings.TrimSpace(req.Description),
		Weight:      models.DefaultWeight,
		Required:    req.Required,
		Order:       req.Order,
		CreatedBy:   session.ActorID(),
		UpdatedBy:   session.ActorID(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Weight != nil {
		item.Weight = *req.Weight
	}
	if err := validateItem(item, prefix); err != nil {
		return nil, err
	}
	return item, nil
}

func validateItem(item *models.ChecklistItem, prefix string) error {
	if item.Category == "" {
		return invalid(prefix+"category", "is required")
	}
	if item.Description == "" {
		return invalid(prefix+"description", "is required")
	}
	if item.Weight < 1 || item.Weight > 5 {
		return invalid(prefix+"weight", "must be between 1 and 5")
	}
	return nil
}
