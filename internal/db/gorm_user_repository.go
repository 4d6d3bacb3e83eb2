package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"audti-backend-go/internal/models"
)

type gormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a UserRepository backed by a relational store.
func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

func (r *gormUserRepository) List(ctx context.Context) ([]models.User, error) {
	var recs []userRecord
	if err := r.db.WithContext(ctx).Order("name ASC, id ASC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", translateError(err))
	}
	users := make([]models.User, len(recs))
	for i := range recs {
		users[i] = recs[i].toModel()
	}
	return users, nil
}

func (r *gormUserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	return r.first(ctx, "id = ?", userID)
}

func (r *gormUserRepository) GetByAuthUID(ctx context.Context, authUID string) (*models.User, error) {
	return r.first(ctx, "auth_uid = ?", authUID)
}

func (r *gormUserRepository) first(ctx context.Context, cond string, arg string) (*models.User, error) {
	var rec userRecord
	if err := r.db.WithContext(ctx).Where(cond, arg).First(&rec).Error; err != nil {
		return nil, fmt.Errorf("failed to get user '%s': %w", arg, translateError(err))
	}
	user := rec.toModel()
	return &user, nil
}

func (r *gormUserRepository) HasAny(ctx context.Context) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&userRecord{}).Limit(1).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to count users: %w", translateError(err))
	}
	return count > 0, nil
}

func (r *gormUserRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(toUserRecord(user)).Error; err != nil {
		return fmt.Errorf("failed to create user '%s': %w", user.Email, translateError(err))
	}
	return nil
}

func (r *gormUserRepository) Update(ctx context.Context, user *models.User) error {
	res := r.db.WithContext(ctx).Model(&userRecord{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"name":       user.Name,
		"email":      user.Email,
		"role":       string(user.Role),
		"active":     user.Active,
		"updated_at": user.UpdatedAt,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update user '%s': %w", user.ID, translateError(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user '%s' not found for update: %w", user.ID, ErrNotFound)
	}
	return nil
}

func (r *gormUserRepository) Delete(ctx context.Context, userID string) error {
	res := r.db.WithContext(ctx).Where("id = ?", userID).Delete(&userRecord{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete user '%s': %w", userID, translateError(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user '%s' not found for deletion: %w", userID, ErrNotFound)
	}
	return nil
}
