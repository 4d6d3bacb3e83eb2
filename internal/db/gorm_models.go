package db

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"audti-backend-go/internal/models"
)

// Row shapes of the relational store. They stay private to this package;
// repositories translate them to and from the models types.

type auditRecord struct {
	ID              string `gorm:"primaryKey;size:36"`
	Title           string `gorm:"not null"`
	Description     string
	Date            string `gorm:"size:10;not null;index"`
	Auditor         string `gorm:"not null"`
	Unit            string `gorm:"index"`
	SearchText      string `gorm:"type:text"` // lowered title, description and auditor
	Criteria        string `gorm:"type:text"` // JSON snapshot
	OwnerID         string `gorm:"size:128;not null;index"`
	UpdatedBy       string `gorm:"size:128"`
	Finalized       bool
	FinalizedAt     *time.Time
	FinalizedBy     string `gorm:"size:128"`
	FinalizedByName string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (auditRecord) TableName() string { return "audits" }

type auditCategoryRecord struct {
	AuditID  string `gorm:"primaryKey;size:36"`
	Category string `gorm:"primaryKey;index"`
}

func (auditCategoryRecord) TableName() string { return "audit_categories" }

type checklistItemRecord struct {
	ID           string `gorm:"primaryKey;size:36"`
	Category     string `gorm:"not null;index"`
	Description  string `gorm:"not null"`
	Weight       int    `gorm:"not null"`
	Required     bool
	DisplayOrder int
	CreatedBy    string `gorm:"size:128"`
	UpdatedBy    string `gorm:"size:128"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (checklistItemRecord) TableName() string { return "checklist_items" }

type responseRecord struct {
	ID               string `gorm:"primaryKey;size:36"`
	AuditID          string `gorm:"size:36;not null;uniqueIndex:idx_responses_audit_item"`
	ChecklistID      string `gorm:"size:36;not null;uniqueIndex:idx_responses_audit_item"`
	Score            int
	Justification    string
	RespondedBy      string `gorm:"size:128"`
	RespondedByEmail string
	RespondedAt      time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (responseRecord) TableName() string { return "audit_responses" }

type userRecord struct {
	ID        string `gorm:"primaryKey;size:128"`
	AuthUID   string `gorm:"size:128;not null;uniqueIndex"`
	Name      string `gorm:"not null"`
	Email     string `gorm:"not null;index"`
	Role      string `gorm:"size:32;not null"`
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (userRecord) TableName() string { return "users" }

type activityLogRecord struct {
	ID        string `gorm:"primaryKey;size:36"`
	ActorID   string `gorm:"size:128;index"`
	ActorName string
	Action    string    `gorm:"not null"`
	Details   string    `gorm:"type:text"` // JSON object
	CreatedAt time.Time `gorm:"index"`
}

func (activityLogRecord) TableName() string { return "activity_logs" }

func toAuditRecord(a *models.Audit) (*auditRecord, error) {
	criteria := a.Criteria
	if criteria == nil {
		criteria = []models.Criterion{}
	}
	raw, err := json.Marshal(criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to encode criteria of audit '%s': %w", a.ID, err)
	}
	return &auditRecord{
		ID:              a.ID,
		Title:           a.Title,
		Description:     a.Description,
		Date:            a.Date,
		Auditor:         a.Auditor,
		Unit:            a.Unit,
		SearchText:      searchText(a),
		Criteria:        string(raw),
		OwnerID:         a.OwnerID,
		UpdatedBy:       a.UpdatedBy,
		Finalized:       a.Finalized,
		FinalizedAt:     a.FinalizedAt,
		FinalizedBy:     a.FinalizedBy,
		FinalizedByName: a.FinalizedByName,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}, nil
}

// searchText folds case in Go; LOWER in SQLite only folds ASCII.
func searchText(a *models.Audit) string {
	return strings.ToLower(strings.Join([]string{a.Title, a.Description, a.Auditor}, "\x1f"))
}

func (r *auditRecord) toModel(categories []string) (models.Audit, error) {
	criteria := []models.Criterion{}
	if r.Criteria != "" {
		if err := json.Unmarshal([]byte(r.Criteria), &criteria); err != nil {
			return models.Audit{}, fmt.Errorf("failed to decode criteria of audit '%s': %w", r.ID, err)
		}
	}
	if categories == nil {
		categories = []string{}
	}
	return models.Audit{
		ID:              r.ID,
		Title:           r.Title,
		Description:     r.Description,
		Date:            r.Date,
		Auditor:         r.Auditor,
		Unit:            r.Unit,
		Categories:      categories,
		Criteria:        criteria,
		OwnerID:         r.OwnerID,
		UpdatedBy:       r.UpdatedBy,
		Finalized:       r.Finalized,
		FinalizedAt:     r.FinalizedAt,
		FinalizedBy:     r.FinalizedBy,
		FinalizedByName: r.FinalizedByName,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}, nil
}

func toChecklistItemRecord(item *models.ChecklistItem) *checklistItemRecord {
	return &checklistItemRecord{
		ID:           item.ID,
		Category:     item.Category,
		Description:  item.Description,
		Weight:       item.Weight,
		Required:     item.Required,
		DisplayOrder: item.Order,
		CreatedBy:    item.CreatedBy,
		UpdatedBy:    item.UpdatedBy,
		CreatedAt:    item.CreatedAt,
		UpdatedAt:    item.UpdatedAt,
	}
}

func (r *checklistItemRecord) toModel() models.ChecklistItem {
	return models.ChecklistItem{
		ID:          r.ID,
		Category:    r.Category,
		Description: r.Description,
		Weight:      r.Weight,
		Required:    r.Required,
		Order:       r.DisplayOrder,
		CreatedBy:   r.CreatedBy,
		UpdatedBy:   r.UpdatedBy,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func (r *responseRecord) toModel() models.Response {
	return models.Response{
		ID:               r.ID,
		AuditID:          r.AuditID,
		ChecklistID:      r.ChecklistID,
		Score:            r.Score,
		Justification:    r.Justification,
		RespondedBy:      r.RespondedBy,
		RespondedByEmail: r.RespondedByEmail,
		RespondedAt:      r.RespondedAt,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func toUserRecord(u *models.User) *userRecord {
	return &userRecord{
		ID:        u.ID,
		AuthUID:   u.AuthUID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (r *userRecord) toModel() models.User {
	return models.User{
		ID:        r.ID,
		AuthUID:   r.AuthUID,
		Name:      r.Name,
		Email:     r.Email,
		Role:      models.Role(r.Role),
		Active:    r.Active,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
