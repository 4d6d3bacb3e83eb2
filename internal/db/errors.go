package db

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a record does not exist or is outside the caller's scope.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists is returned when a unique key is taken.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrPolicyViolation is returned when the store's authorization rules reject a write.
	ErrPolicyViolation = errors.New("operation rejected by the store authorization policy")
	// ErrPolicyMisconfigured is returned when an authorization policy fails to evaluate,
	// typically a policy that references its own table.
	ErrPolicyMisconfigured = errors.New("store authorization policy is misconfigured")
)

// translateError maps driver errors onto the package sentinels. The original
// message is kept in the chain for operators.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrAlreadyExists) ||
		errors.Is(err, ErrPolicyViolation) || errors.Is(err, ErrPolicyMisconfigured) {
		return err
	}

	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %v", ErrAlreadyExists, err)
	case codes.PermissionDenied:
		return fmt.Errorf("%w: %v", ErrPolicyViolation, err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "infinite recursion detected in policy"):
		return fmt.Errorf("%w: %v", ErrPolicyMisconfigured, err)
	case strings.Contains(msg, "row-level security policy"), strings.Contains(msg, "permission denied"):
		return fmt.Errorf("%w: %v", ErrPolicyViolation, err)
	case strings.Contains(msg, "duplicate key"), strings.Contains(msg, "unique constraint"):
		return fmt.Errorf("%w: %v", ErrAlreadyExists, err)
	}
	return err
}
