package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"audti-backend-go/internal/models"
)

type gormResponseRepository struct {
	db *gorm.DB
}

// NewGormResponseRepository creates a ResponseRepository backed by a relational store.
func NewGormResponseRepository(db *gorm.DB) ResponseRepository {
	return &gormResponseRepository{db: db}
}

func (r *gormResponseRepository) ListByAudit(ctx context.Context, scope Scope, auditID string) ([]models.Response, error) {
	if err := visibleAudit(r.db.WithContext(ctx), scope, auditID); err != nil {
		return nil, fmt.Errorf("failed to list responses of audit '%s': %w", auditID, err)
	}
	var recs []responseRecord
	if err := r.db.WithContext(ctx).Where("audit_id = ?", auditID).Order("created_at ASC, id ASC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list responses of audit '%s': %w", auditID, translateError(err))
	}
	responses := make([]models.Response, len(recs))
	for i := range recs {
		responses[i] = recs[i].toModel()
	}
	return responses, nil
}

func (r *gormResponseRepository) UpsertMany(ctx context.Context, scope Scope, auditID string, responses []models.Response) error {
	if len(responses) == 0 {
		return nil
	}
	recs := make([]responseRecord, 0, len(responses))
	for _, resp := range responses {
		id := resp.ID
		if id == "" {
			id = uuid.NewString()
		}
		recs = append(recs, responseRecord{
			ID:               id,
			AuditID:          auditID,
			ChecklistID:      resp.ChecklistID,
			Score:            resp.Score,
			Justification:    resp.Justification,
			RespondedBy:      resp.RespondedBy,
			RespondedByEmail: resp.RespondedByEmail,
			RespondedAt:      resp.RespondedAt,
			CreatedAt:        resp.CreatedAt,
			UpdatedAt:        resp.UpdatedAt,
		})
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := visibleAudit(tx, scope, auditID); err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "audit_id"}, {Name: "checklist_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"score", "justification", "responded_by", "responded_by_email", "responded_at", "updated_at",
			}),
		}).Create(&recs).Error
	})
	if err != nil {
		return fmt.Errorf("failed to upsert %d responses of audit '%s': %w", len(responses), auditID, translateError(err))
	}
	return nil
}

// visibleAudit returns ErrNotFound unless the audit exists within scope.
func visibleAudit(tx *gorm.DB, scope Scope, auditID string) error {
	var count int64
	if err := scope.owned(tx.Model(&auditRecord{}), "owner_id").Where("id = ?", auditID).Count(&count).Error; err != nil {
		return translateError(err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}
