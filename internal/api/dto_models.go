package api

import (
	"audti-backend-go/internal/filter"
)

// ErrorResponse is a generic structure for returning errors via API.
type ErrorResponse struct {
	Error   string `json:"error"`             // A high-level error message
	Details string `json:"details,omitempty"` // More specific details about the error, if available
	Field   string `json:"field,omitempty"`   // The offending input field of a validation error
	ID      string `json:"id,omitempty"`      // The resource a partially completed write did store
}

// SuccessResponse is a generic structure for simple success messages.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// CreatedUserResponse is returned when an administrator creates a user.
// Password is present only when it was generated.
type CreatedUserResponse struct {
	User     interface{} `json:"user"`
	Password string      `json:"password,omitempty"`
}

// PasswordResponse carries a newly set password back to the administrator.
type PasswordResponse struct {
	Password string `json:"password"`
}

// DeleteCategoryResponse reports how many items a category delete removed.
type DeleteCategoryResponse struct {
	Category string `json:"category"`
	Removed  int    `json:"removed"`
}

// ImportResponse reports the result of a template import.
type ImportResponse struct {
	Imported int `json:"imported"`
}

// AuditListResponse is one page of audits. Error is set when the page is
// empty because the query failed.
type AuditListResponse struct {
	filter.Result
	Error string `json:"error,omitempty"`
}
