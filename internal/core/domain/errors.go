package domain

import (
	"errors"
	"strings"
)

var (
	ErrUnauthenticated         = errors.New("authentication required")
	ErrInvalidToken            = errors.New("invalid or expired session")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrInvalidCredentials      = errors.New("invalid credentials")

	ErrUserNotFound      = errors.New("user not found")
	ErrUserExists        = errors.New("user already exists")
	ErrPatientNotFound   = errors.New("patient not found")
	ErrEncounterNotFound = errors.New("encounter not found")
)

// ValidationError carries every violation found in a single input.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Violations, "; ")
}

// NewValidationError builds a ValidationError from one or more messages.
func NewValidationError(msgs ...string) *ValidationError {
	return &ValidationError{Violations: msgs}
}
