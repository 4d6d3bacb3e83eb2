package db

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"audti-backend-go/internal/filter"
	"audti-backend-go/internal/models"
)

type gormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository creates an AuditRepository backed by a relational store.
func NewGormAuditRepository(db *gorm.DB) AuditRepository {
	return &gormAuditRepository{db: db}
}

func (r *gormAuditRepository) Create(ctx context.Context, scope Scope, audit *models.Audit) error {
	if !scope.Allows(audit.OwnerID) {
		return fmt.Errorf("audit owner '%s' differs from the acting user: %w", audit.OwnerID, ErrPolicyViolation)
	}
	rec, err := toAuditRecord(audit)
	if err != nil {
		return err
	}
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rec).Error; err != nil {
			return err
		}
		return replaceCategories(tx, audit.ID, audit.Categories)
	})
	if err != nil {
		return fmt.Errorf("failed to create audit '%s': %w", audit.ID, translateError(err))
	}
	return nil
}

func (r *gormAuditRepository) GetByID(ctx context.Context, scope Scope, auditID string) (*models.Audit, error) {
	var rec auditRecord
	err := scope.owned(r.db.WithContext(ctx), "owner_id").Where("id = ?", auditID).First(&rec).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get audit '%s': %w", auditID, translateError(err))
	}
	audits, err := r.attachCategories(ctx, []auditRecord{rec})
	if err != nil {
		return nil, err
	}
	return &audits[0], nil
}

func (r *gormAuditRepository) Update(ctx context.Context, scope Scope, audit *models.Audit) error {
	rec, err := toAuditRecord(audit)
	if err != nil {
		return err
	}
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := scope.owned(tx.Model(&auditRecord{}), "owner_id").
			Where("id = ?", audit.ID).
			Updates(map[string]interface{}{
				"title":             rec.Title,
				"description":       rec.Description,
				"date":              rec.Date,
				"auditor":           rec.Auditor,
				"unit":              rec.Unit,
				"search_text":       rec.SearchText,
				"criteria":          rec.Criteria,
				"updated_by":        rec.UpdatedBy,
				"finalized":         rec.Finalized,
				"finalized_at":      rec.FinalizedAt,
				"finalized_by":      rec.FinalizedBy,
				"finalized_by_name": rec.FinalizedByName,
				"updated_at":        rec.UpdatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return replaceCategories(tx, audit.ID, audit.Categories)
	})
	if err != nil {
		return fmt.Errorf("failed to update audit '%s': %w", audit.ID, translateError(err))
	}
	return nil
}

func (r *gormAuditRepository) Delete(ctx context.Context, scope Scope, auditID string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := scope.owned(tx, "owner_id").Where("id = ?", auditID).Delete(&auditRecord{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("audit_id = ?", auditID).Delete(&auditCategoryRecord{}).Error; err != nil {
			return err
		}
		return tx.Where("audit_id = ?", auditID).Delete(&responseRecord{}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete audit '%s': %w", auditID, translateError(err))
	}
	return nil
}

// List evaluates the whole query in SQL.
func (r *gormAuditRepository) List(ctx context.Context, scope Scope, q filter.Query) (filter.Result, error) {
	q = q.Normalize()
	query := r.filtered(ctx, scope, q)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return filter.Empty(q), fmt.Errorf("failed to count audits: %w", translateError(err))
	}

	var recs []auditRecord
	if err := query.Order(orderClause(q)).Limit(q.PageSize).Offset(q.Offset()).Find(&recs).Error; err != nil {
		return filter.Empty(q), fmt.Errorf("failed to list audits: %w", translateError(err))
	}
	audits, err := r.attachCategories(ctx, recs)
	if err != nil {
		return filter.Empty(q), err
	}
	return filter.NewResult(q, audits, int(total)), nil
}

func (r *gormAuditRepository) ListAll(ctx context.Context, scope Scope) ([]models.Audit, error) {
	var recs []auditRecord
	if err := scope.owned(r.db.WithContext(ctx), "owner_id").Order("date DESC, id DESC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list audits: %w", translateError(err))
	}
	return r.attachCategories(ctx, recs)
}

func (r *gormAuditRepository) DistinctCategories(ctx context.Context, scope Scope) ([]string, error) {
	visible := scope.owned(r.db.WithContext(ctx).Model(&auditRecord{}).Select("id"), "owner_id")
	categories := []string{}
	err := r.db.WithContext(ctx).Model(&auditCategoryRecord{}).
		Where("audit_id IN (?)", visible).
		Distinct("category").
		Order("category").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list audit categories: %w", translateError(err))
	}
	return categories, nil
}

func (r *gormAuditRepository) DistinctUnits(ctx context.Context, scope Scope) ([]string, error) {
	units := []string{}
	err := scope.owned(r.db.WithContext(ctx).Model(&auditRecord{}), "owner_id").
		Where("unit <> ''").
		Distinct("unit").
		Order("unit").
		Pluck("unit", &units).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list audit units: %w", translateError(err))
	}
	return units, nil
}

func (r *gormAuditRepository) filtered(ctx context.Context, scope Scope, q filter.Query) *gorm.DB {
	query := scope.owned(r.db.WithContext(ctx).Model(&auditRecord{}), "owner_id")

	if q.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(q.Search)) + "%"
		query = query.Where("search_text LIKE ? ESCAPE '!'", pattern)
	}
	if len(q.Categories) > 0 {
		tagged := r.db.Model(&auditCategoryRecord{}).Select("audit_id").Where("category IN ?", q.Categories)
		query = query.Where("id IN (?)", tagged)
	}
	if q.Unit != "" {
		query = query.Where("unit = ?", q.Unit)
	}
	if q.DateFrom != "" {
		query = query.Where("date >= ?", q.DateFrom)
	}
	if q.DateTo != "" {
		query = query.Where("date <= ?", q.DateTo)
	}
	return query
}

func orderClause(q filter.Query) string {
	dir := "DESC"
	if q.SortDir == filter.Ascending {
		dir = "ASC"
	}
	if q.SortField == filter.SortByTitle {
		return fmt.Sprintf("LOWER(title) %s, id %s", dir, dir)
	}
	return fmt.Sprintf("date %s, id %s", dir, dir)
}

func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}

func (r *gormAuditRepository) attachCategories(ctx context.Context, recs []auditRecord) ([]models.Audit, error) {
	audits := make([]models.Audit, 0, len(recs))
	if len(recs) == 0 {
		return audits, nil
	}
	ids := make([]string, len(recs))
	for i, rec := range recs {
		ids[i] = rec.ID
	}
	var tags []auditCategoryRecord
	if err := r.db.WithContext(ctx).Where("audit_id IN ?", ids).Order("category").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to load audit categories: %w", translateError(err))
	}
	byAudit := make(map[string][]string, len(recs))
	for _, tag := range tags {
		byAudit[tag.AuditID] = append(byAudit[tag.AuditID], tag.Category)
	}
	for i := range recs {
		audit, err := recs[i].toModel(byAudit[recs[i].ID])
		if err != nil {
			return nil, err
		}
		audits = append(audits, audit)
	}
	return audits, nil
}

func replaceCategories(tx *gorm.DB, auditID string, categories []string) error {
	if err := tx.Where("audit_id = ?", auditID).Delete(&auditCategoryRecord{}).Error; err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(categories))
	tags := make([]auditCategoryRecord, 0, len(categories))
	for _, c := range categories {
		if _, dup := seen[c]; dup || c == "" {
			continue
		}
		seen[c] = struct{}{}
		tags = append(tags, auditCategoryRecord{AuditID: auditID, Category: c})
	}
	if len(tags) == 0 {
		return nil
	}
	return tx.Create(&tags).Error
}
