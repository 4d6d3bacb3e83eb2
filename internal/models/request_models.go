package models

// CreateAuditRequest is the body for creating an audit.
// Required fields are validated by the service so the field name reaches the client.
type CreateAuditRequest struct {
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Date        string      `json:"date"`
	Auditor     string      `json:"auditor"`
	Unit        string      `json:"unit,omitempty"`
	Categories  []string    `json:"categories"`
	Criteria    []Criterion `json:"criteria" binding:"dive"`
	Finalize    bool        `json:"finalize"`
}

// UpdateAuditRequest represents a partial audit update.
// Pointers distinguish empty values from fields not provided.
type UpdateAuditRequest struct {
	Title       *string      `json:"title,omitempty"`
	Description *string      `json:"description,omitempty"`
	Date        *string      `json:"date,omitempty"`
	Auditor     *string      `json:"auditor,omitempty"`
	Unit        *string      `json:"unit,omitempty"`
	Categories  *[]string    `json:"categories,omitempty"`
	Criteria    *[]Criterion `json:"criteria,omitempty" binding:"omitempty,dive"`
	Finalize    bool         `json:"finalize"`
}

// ReconcileRequest asks for the editable criteria list of an audit form.
type ReconcileRequest struct {
	AuditID    string      `json:"auditId,omitempty"`
	Categories []string    `json:"categories"`
	Criteria   []Criterion `json:"criteria"`
	// Form values used for the progress metric.
	Title   string `json:"title,omitempty"`
	Date    string `json:"date,omitempty"`
	Auditor string `json:"auditor,omitempty"`
	// Operations are applied in order to the reconciled list.
	Operations []CriterionOperation `json:"operations,omitempty"`
}

// Criterion operations.
const (
	CriterionAdd    = "add"
	CriterionRemove = "remove"
	CriterionUpdate = "update"
)

// CriterionOperation is one edit of the form's criteria list.
type CriterionOperation struct {
	Op            string  `json:"op"`
	Index         int     `json:"index"`
	Description   *string `json:"description,omitempty"`
	Score         *int    `json:"score,omitempty"`
	Justification *string `json:"justification,omitempty"`
}

// CreateChecklistItemRequest is the body for creating one template row.
type CreateChecklistItemRequest struct {
	Category    string `json:"category" binding:"required"`
	Description string `json:"description" binding:"required"`
	Weight      *int   `json:"weight,omitempty" binding:"omitempty,min=1,max=5"`
	Required    bool   `json:"required"`
	Order       int    `json:"order"`
}

// UpdateChecklistItemRequest represents a partial checklist item update.
type UpdateChecklistItemRequest struct {
	Category    *string `json:"category,omitempty"`
	Description *string `json:"description,omitempty"`
	Weight      *int    `json:"weight,omitempty" binding:"omitempty,min=1,max=5"`
	Required    *bool   `json:"required,omitempty"`
	Order       *int    `json:"order,omitempty"`
}

// CreateUserRequest is the body for an administrator creating a user.
type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"` // generated when empty
	Role     Role   `json:"role"`
	Active   *bool  `json:"active,omitempty"`
}

// UpdateUserRequest represents a partial user update.
type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Role     *Role   `json:"role,omitempty"`
	Active   *bool   `json:"active,omitempty"`
	Password *string `json:"password,omitempty"`
}

// ResetPasswordRequest optionally carries the new password.
type ResetPasswordRequest struct {
	Password string `json:"password,omitempty"`
}

// SetUserStatusRequest toggles a user's active flag.
type SetUserStatusRequest struct {
	Active *bool `json:"active" binding:"required"`
}
