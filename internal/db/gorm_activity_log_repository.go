package db

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"audti-backend-go/internal/models"
)

type gormActivityLogRepository struct {
	db *gorm.DB
}

// NewGormActivityLogRepository creates an ActivityLogRepository backed by a relational store.
func NewGormActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &gormActivityLogRepository{db: db}
}

func (r *gormActivityLogRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("failed to encode activity log details: %w", err)
	}
	rec := &activityLogRecord{
		ID:        entry.ID,
		ActorID:   entry.ActorID,
		ActorName: entry.ActorName,
		Action:    entry.Action,
		Details:   string(details),
		CreatedAt: entry.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to create activity log entry: %w", translateError(err))
	}
	return nil
}

func (r *gormActivityLogRepository) List(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	var recs []activityLogRecord
	if err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list activity logs: %w", translateError(err))
	}
	entries := make([]models.ActivityLog, 0, len(recs))
	for _, rec := range recs {
		entry := models.ActivityLog{
			ID:        rec.ID,
			ActorID:   rec.ActorID,
			ActorName: rec.ActorName,
			Action:    rec.Action,
			CreatedAt: rec.CreatedAt,
		}
		if rec.Details != "" && rec.Details != "null" {
			if err := json.Unmarshal([]byte(rec.Details), &entry.Details); err != nil {
				return nil, fmt.Errorf("failed to decode activity log '%s': %w", rec.ID, err)
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
