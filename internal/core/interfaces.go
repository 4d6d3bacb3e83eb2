package core

import (
	"context"

	"audti-backend-go/internal/filter"
	"audti-backend-go/internal/models"
)

// Every service method takes the acting session explicitly. A nil or
// unverified session fails with ErrUnauthenticated before the store is touched.

// AuditService manages audits and their criteria forms.
type AuditService interface {
	// Create and Update return the stored audit together with ErrPartialFailure
	// when the audit row was written but its responses were not.
	Create(ctx context.Context, session *models.Session, req models.CreateAuditRequest) (*models.Audit, error)
	Get(ctx context.Context, session *models.Session, auditID string) (*models.Audit, error)
	Update(ctx context.Context, session *models.Session, auditID string, req models.UpdateAuditRequest) (*models.Audit, error)
	Delete(ctx context.Context, session *models.Session, auditID string) error
	// List never returns a nil result: on failure it is empty and err is set.
	List(ctx context.Context, session *models.Session, q filter.Query) (filter.Result, error)
	FilterOptions(ctx context.Context, session *models.Session) (*FilterOptions, error)
	// Reconcile builds the editable criteria list for an unsaved form.
	Reconcile(ctx context.Context, session *models.Session, req models.ReconcileRequest) (*AuditForm, error)
	// Form reconciles a stored audit against the live checklist and its responses.
	Form(ctx context.Context, session *models.Session, auditID string) (*AuditForm, error)
}

// ChecklistService manages checklist templates. Reads are open to any
// authenticated user, writes to active administrators.
type ChecklistService interface {
	List(ctx context.Context, session *models.Session, categories []string) ([]models.ChecklistItem, error)
	Grouped(ctx context.Context, session *models.Session, categories []string) ([]models.CategoryGroup, error)
	Categories(ctx context.Context, session *models.Session) ([]string, error)
	Get(ctx context.Context, session *models.Session, itemID string) (*models.ChecklistItem, error)
	Create(ctx context.Context, session *models.Session, req models.CreateChecklistItemRequest) (*models.ChecklistItem, error)
	CreateMany(ctx context.Context, session *models.Session, reqs []models.CreateChecklistItemRequest) ([]models.ChecklistItem, error)
	Update(ctx context.Context, session *models.Session, itemID string, req models.UpdateChecklistItemRequest) (*models.ChecklistItem, error)
	Delete(ctx context.Context, session *models.Session, itemID string) error
	DeleteCategory(ctx context.Context, session *models.Session, category string) (int, error)
	// Import creates every item or none.
	Import(ctx context.Context, session *models.Session, reqs []models.CreateChecklistItemRequest) (int, error)
}

// ResponseService exposes the persisted responses of an audit.
type ResponseService interface {
	ListByAudit(ctx context.Context, session *models.Session, auditID string) ([]models.Response, error)
}

// UserService manages user profiles and their identities.
type UserService interface {
	// Initialize creates the caller's profile on first login. The first
	// profile ever created becomes an active administrator.
	Initialize(ctx context.Context, session *models.Session) (*models.User, bool, error)
	Me(ctx context.Context, session *models.Session) (*models.User, error)
	// ProfileByAuthUID resolves the profile of a verified identity; it is used
	// while building the session and does not take one.
	ProfileByAuthUID(ctx context.Context, authUID string) (*models.User, error)
	List(ctx context.Context, session *models.Session) ([]models.User, error)
	Get(ctx context.Context, session *models.Session, userID string) (*models.User, error)
	// Create returns the new profile and, when one was generated, the initial password.
	Create(ctx context.Context, session *models.Session, req models.CreateUserRequest) (*models.User, string, error)
	Update(ctx context.Context, session *models.Session, userID string, req models.UpdateUserRequest) (*models.User, error)
	ResetPassword(ctx context.Context, session *models.Session, userID string, req models.ResetPasswordRequest) (string, error)
	SetActive(ctx context.Context, session *models.Session, userID string, active bool) (*models.User, error)
	// Delete writes the activity entry, removes the profile, then the identity.
	// A failure of the last step returns ErrPartialFailure; nothing is rolled back.
	Delete(ctx context.Context, session *models.Session, userID string) error
}

// ActivityService writes and reads the activity log.
type ActivityService interface {
	// Record writes an entry and reports any failure.
	Record(ctx context.Context, session *models.Session, action string, details map[string]interface{}) (*models.ActivityLog, error)
	// Append is the best-effort form of Record: store failures are logged and
	// swallowed, only ErrUnauthenticated is returned.
	Append(ctx context.Context, session *models.Session, action string, details map[string]interface{}) error
	List(ctx context.Context, session *models.Session, limit int) ([]models.ActivityLog, error)
}

// ReportService computes score summaries.
type ReportService interface {
	AuditReport(ctx context.Context, session *models.Session, auditID string) (*AuditReport, error)
	Overview(ctx context.Context, session *models.Session) (*Overview, error)
}

// IdentityProvider manages identities in the external authentication provider.
type IdentityProvider interface {
	CreateIdentity(ctx context.Context, email, password, displayName string, disabled bool) (string, error)
	UpdateIdentity(ctx context.Context, uid string, update IdentityUpdate) error
	DeleteIdentity(ctx context.Context, uid string) error
}

// IdentityUpdate lists the identity fields to change; nil fields are left as they are.
type IdentityUpdate struct {
	Email       *string
	Password    *string
	DisplayName *string
	Disabled    *bool
}

// Notifier queues an outgoing user notification.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification) error
}
