package core

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated is returned when an operation is attempted without a verified session.
	// No store call has been made when it is returned.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden is returned when the session lacks the role an operation needs.
	ErrForbidden = errors.New("operation not permitted for this user")
	// ErrPartialFailure is returned when a compound operation stopped after some of its steps were applied.
	ErrPartialFailure = errors.New("operation only partially completed")
)

// ValidationError reports an invalid input field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
