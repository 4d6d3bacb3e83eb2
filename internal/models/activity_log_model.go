package models

import "time"

// Action labels written to the activity log.
const (
	ActionUserCreate        = "user.create"
	ActionUserUpdate        = "user.update"
	ActionUserDelete        = "user.delete"
	ActionUserActivate      = "user.activate"
	ActionUserDeactivate    = "user.deactivate"
	ActionPasswordReset     = "user.password_reset"
	ActionIdentityOrphaned  = "user.identity_orphaned"
	ActionChecklistImport   = "checklist.import"
	ActionChecklistCategory = "checklist.category_delete"
)

// ActivityLog is an append-only record of a sensitive mutation.
type ActivityLog struct {
	ID        string                 `json:"id" firestore:"-"`
	ActorID   string                 `json:"actorId" firestore:"actorId"`
	ActorName string                 `json:"actorName" firestore:"actorName"` // snapshot at write time
	Action    string                 `json:"action" firestore:"action"`
	Details   map[string]interface{} `json:"details,omitempty" firestore:"details,omitempty"`
	CreatedAt time.Time              `json:"createdAt" firestore:"createdAt"`
}
