package model

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	ErrInvalidInput = errors.New("invalid input")

	// Player errors
	ErrPlayerNotFound = errors.New("player not found")
	ErrUsernameTaken  = errors.New("username already exists")

	// Session errors
	ErrSessionNotFound = errors.New("active session not found")

	// Run errors
	ErrRunNotFound = errors.New("run not found")
)

// ValidationError describes malformed or missing input.
// It matches ErrInvalidInput with errors.Is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a ValidationError with a formatted message
func NewValidationError(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
