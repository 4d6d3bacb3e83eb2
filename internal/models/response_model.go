package models

import "time"

// Response is the persisted record of one template-sourced criterion of an audit.
// (AuditID, ChecklistID) is unique.
type Response struct {
	ID               string    `json:"id" firestore:"-"`
	AuditID          string    `json:"auditId" firestore:"auditId"`
	ChecklistID      string    `json:"checklistId" firestore:"checklistId"`
	Score            int       `json:"score" firestore:"score"`
	Justification    string    `json:"justification" firestore:"justification"`
	RespondedBy      string    `json:"respondedBy" firestore:"respondedBy"`
	RespondedByEmail string    `json:"respondedByEmail,omitempty" firestore:"respondedByEmail,omitempty"`
	RespondedAt      time.Time `json:"respondedAt" firestore:"respondedAt"`
	CreatedAt        time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt" firestore:"updatedAt"`
}
