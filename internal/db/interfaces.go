package db

import (
	"context"

	"audti-backend-go/internal/filter"
	"audti-backend-go/internal/models"
)

// AuditRepository defines storage operations for audits. Every call is
// filtered through the given scope.
type AuditRepository interface {
	Create(ctx context.Context, scope Scope, audit *models.Audit) error
	GetByID(ctx context.Context, scope Scope, auditID string) (*models.Audit, error)
	Update(ctx context.Context, scope Scope, audit *models.Audit) error
	// Delete removes the audit together with its responses.
	Delete(ctx context.Context, scope Scope, auditID string) error
	List(ctx context.Context, scope Scope, q filter.Query) (filter.Result, error)
	ListAll(ctx context.Context, scope Scope) ([]models.Audit, error)
	DistinctCategories(ctx context.Context, scope Scope) ([]string, error)
	DistinctUnits(ctx context.Context, scope Scope) ([]string, error)
}

// ChecklistRepository defines storage operations for checklist template rows.
// Lists are ordered by category, then display order.
type ChecklistRepository interface {
	List(ctx context.Context) ([]models.ChecklistItem, error)
	ListByCategories(ctx context.Context, categories []string) ([]models.ChecklistItem, error)
	Categories(ctx context.Context) ([]string, error)
	GetByID(ctx context.Context, itemID string) (*models.ChecklistItem, error)
	Create(ctx context.Context, item *models.ChecklistItem) error
	// CreateMany inserts all items or none.
	CreateMany(ctx context.Context, items []*models.ChecklistItem) error
	Update(ctx context.Context, item *models.ChecklistItem) error
	Delete(ctx context.Context, itemID string) error
	// DeleteCategory removes every item of the category and returns how many were removed.
	DeleteCategory(ctx context.Context, category string) (int, error)
}

// ResponseRepository defines storage operations for audit responses.
type ResponseRepository interface {
	ListByAudit(ctx context.Context, scope Scope, auditID string) ([]models.Response, error)
	// UpsertMany writes all responses or none, keyed by (audit, checklist item).
	UpsertMany(ctx context.Context, scope Scope, auditID string, responses []models.Response) error
}

// UserRepository defines storage operations for user profiles.
type UserRepository interface {
	List(ctx context.Context) ([]models.User, error)
	GetByID(ctx context.Context, userID string) (*models.User, error)
	GetByAuthUID(ctx context.Context, authUID string) (*models.User, error)
	HasAny(ctx context.Context) (bool, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, userID string) error
}

// ActivityLogRepository defines storage operations for the append-only activity log.
type ActivityLogRepository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	// List returns the newest entries first.
	List(ctx context.Context, limit int) ([]models.ActivityLog, error)
}

// Repositories bundles one implementation of every repository.
type Repositories struct {
	Audits     AuditRepository
	Checklists ChecklistRepository
	Responses  ResponseRepository
	Users      UserRepository
	Activity   ActivityLogRepository
}
