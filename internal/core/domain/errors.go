package domain

import (
	"errors"
	"fmt"
)

var ErrInvalidToken = errors.New("invalid or expired token")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrAccountLocked = errors.New("account locked")
var ErrForbidden = errors.New("operation not permitted")
var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrInvalidRole = errors.New("invalid role")

// ValidationError reports a changeset field that failed an invariant check.
// Field is empty when the changeset as a whole is invalid (e.g. empty).
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NewValidationError builds a field-level validation failure.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}
