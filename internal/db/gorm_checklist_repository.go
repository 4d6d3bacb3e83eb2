package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"audti-backend-go/internal/models"
)

const checklistOrder = "category ASC, display_order ASC, id ASC"

type gormChecklistRepository struct {
	db *gorm.DB
}

// NewGormChecklistRepository creates a ChecklistRepository backed by a relational store.
func NewGormChecklistRepository(db *gorm.DB) ChecklistRepository {
	return &gormChecklistRepository{db: db}
}

func (r *gormChecklistRepository) List(ctx context.Context) ([]models.ChecklistItem, error) {
	var recs []checklistItemRecord
	if err := r.db.WithContext(ctx).Order(checklistOrder).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list checklist items: %w", translateError(err))
	}
	return checklistModels(recs), nil
}

func (r *gormChecklistRepository) ListByCategories(ctx context.Context, categories []string) ([]models.ChecklistItem, error) {
	if len(categories) == 0 {
		return []models.ChecklistItem{}, nil
	}
	var recs []checklistItemRecord
	if err := r.db.WithContext(ctx).Where("category IN ?", categories).Order(checklistOrder).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list checklist items by category: %w", translateError(err))
	}
	return checklistModels(recs), nil
}

func (r *gormChecklistRepository) Categories(ctx context.Context) ([]string, error) {
	categories := []string{}
	err := r.db.WithContext(ctx).Model(&checklistItemRecord{}).Distinct("category").Order("category").Pluck("category", &categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list checklist categories: %w", translateError(err))
	}
	return categories, nil
}

func (r *gormChecklistRepository) GetByID(ctx context.Context, itemID string) (*models.ChecklistItem, error) {
	var rec checklistItemRecord
	if err := r.db.WithContext(ctx).Where("id = ?", itemID).First(&rec).Error; err != nil {
		return nil, fmt.Errorf("failed to get checklist item '%s': %w", itemID, translateError(err))
	}
	item := rec.toModel()
	return &item, nil
}

func (r *gormChecklistRepository) Create(ctx context.Context, item *models.ChecklistItem) error {
	if err := r.db.WithContext(ctx).Create(toChecklistItemRecord(item)).Error; err != nil {
		return fmt.Errorf("failed to create checklist item: %w", translateError(err))
	}
	return nil
}

func (r *gormChecklistRepository) CreateMany(ctx context.Context, items []*models.ChecklistItem) error {
	if len(items) == 0 {
		return nil
	}
	recs := make([]*checklistItemRecord, len(items))
	for i, item := range items {
		recs[i] = toChecklistItemRecord(item)
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(recs, 100).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create %d checklist items: %w", len(items), translateError(err))
	}
	return nil
}

func (r *gormChecklistRepository) Update(ctx context.Context, item *models.ChecklistItem) error {
	res := r.db.WithContext(ctx).Model(&checklistItemRecord{}).Where("id = ?", item.ID).Updates(map[string]interface{}{
		"category":      item.Category,
		"description":   item.Description,
		"weight":        item.Weight,
		"required":      item.Required,
		"display_order": item.Order,
		"updated_by":    item.UpdatedBy,
		"updated_at":    item.UpdatedAt,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update checklist item '%s': %w", item.ID, translateError(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("checklist item '%s' not found for update: %w", item.ID, ErrNotFound)
	}
	return nil
}

func (r *gormChecklistRepository) Delete(ctx context.Context, itemID string) error {
	res := r.db.WithContext(ctx).Where("id = ?", itemID).Delete(&checklistItemRecord{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete checklist item '%s': %w", itemID, translateError(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("checklist item '%s' not found for deletion: %w", itemID, ErrNotFound)
	}
	return nil
}

func (r *gormChecklistRepository) DeleteCategory(ctx context.Context, category string) (int, error) {
	res := r.db.WithContext(ctx).Where("category = ?", category).Delete(&checklistItemRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete checklist category '%s': %w", category, translateError(res.Error))
	}
	if res.RowsAffected == 0 {
		return 0, fmt.Errorf("checklist category '%s' not found: %w", category, ErrNotFound)
	}
	return int(res.RowsAffected), nil
}

func checklistModels(recs []checklistItemRecord) []models.ChecklistItem {
	items := make([]models.ChecklistItem, len(recs))
	for i := range recs {
		items[i] = recs[i].toModel()
	}
	return items
}
