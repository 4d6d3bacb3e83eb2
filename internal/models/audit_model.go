package models

import "time"

// DateLayout is the calendar-date format used for Audit.Date and date-range filters.
const DateLayout = "2006-01-02"

// Audit is a single inspection record with scored criteria for one unit/visit.
// Criteria is an embedded snapshot: later template edits never rewrite it.
type Audit struct {
	ID              string      `json:"id" firestore:"-"`
	Title           string      `json:"title" firestore:"title"`
	Description     string      `json:"description,omitempty" firestore:"description,omitempty"`
	Date            string      `json:"date" firestore:"date"` // YYYY-MM-DD
	Auditor         string      `json:"auditor" firestore:"auditor"`
	Unit            string      `json:"unit,omitempty" firestore:"unit,omitempty"`
	Categories      []string    `json:"categories" firestore:"categories"`
	Criteria        []Criterion `json:"criteria" firestore:"criteria"`
	OwnerID         string      `json:"ownerId" firestore:"ownerId"` // profile id of the user who created it
	UpdatedBy       string      `json:"updatedBy,omitempty" firestore:"updatedBy,omitempty"`
	Finalized       bool        `json:"finalized" firestore:"finalized"`
	FinalizedAt     *time.Time  `json:"finalizedAt,omitempty" firestore:"finalizedAt,omitempty"`
	FinalizedBy     string      `json:"finalizedBy,omitempty" firestore:"finalizedBy,omitempty"`
	FinalizedByName string      `json:"finalizedByName,omitempty" firestore:"finalizedByName,omitempty"`
	CreatedAt       time.Time   `json:"createdAt" firestore:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt" firestore:"updatedAt"`
}

// HasCategory reports whether the audit is tagged with any of the given categories.
func (a Audit) HasCategory(categories ...string) bool {
	for _, want := range categories {
		for _, have := range a.Categories {
			if have == want {
				return true
			}
		}
	}
	return false
}

// Criterion is one scored line item inside an audit. A criterion with a
// ChecklistID is template-sourced; one without is custom.
type Criterion struct {
	Description   string `json:"description" firestore:"description"`
	Score         int    `json:"score" firestore:"score" binding:"min=0,max=5"`
	Justification string `json:"justification" firestore:"justification"`
	ChecklistID   string `json:"checklistId,omitempty" firestore:"checklistId,omitempty"`
	// Category and Weight are copied from the checklist item when the criterion is derived.
	Category string `json:"category,omitempty" firestore:"category,omitempty"`
	Weight   int    `json:"weight,omitempty" firestore:"weight,omitempty"`
	// EditedAt marks an unsaved in-session edit. It is never persisted.
	EditedAt *time.Time `json:"editedAt,omitempty" firestore:"-"`
}

// TemplateSourced reports whether the criterion was derived from a checklist item.
func (c Criterion) TemplateSourced() bool {
	return c.ChecklistID != ""
}
