package models

import (
	"errors"
	"fmt"
)

// Custom errors
var (
	ErrNotFound        = errors.New("record not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidRecord   = errors.New("invalid record")

	ErrEventNotFound  = fmt.Errorf("event %w", ErrNotFound)
	ErrSeriesNotFound = fmt.Errorf("series %w", ErrNotFound)
	ErrRiderNotFound  = fmt.Errorf("rider %w", ErrNotFound)
	ErrClubNotFound   = fmt.Errorf("club %w", ErrNotFound)
	ErrScaleNotFound  = fmt.Errorf("point scale %w", ErrNotFound)
)

// ValidationError describes a record that failed boundary validation.
type ValidationError struct {
	Code    string
	Message string
}

// NewValidationError creates a validation error with a machine-readable code.
func NewValidationError(code, message string) *ValidationError {
	return &ValidationError{Code: code, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap lets callers match any validation failure with errors.Is(err, ErrInvalidRecord).
func (e *ValidationError) Unwrap() error {
	return ErrInvalidRecord
}

// RecomputeError is returned when a scope recompute was rolled back.
// The scope's previous derived rows are untouched when this error is returned.
type RecomputeError struct {
	Scope     string
	Retryable bool
	Err       error
}

func (e *RecomputeError) Error() string {
	if e.Retryable {
		return fmt.Sprintf("recompute %s failed (retryable): %v", e.Scope, e.Err)
	}
	return fmt.Sprintf("recompute %s failed: %v", e.Scope, e.Err)
}

func (e *RecomputeError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is a rolled-back recompute that may succeed on retry.
func IsRetryable(err error) bool {
	var rerr *RecomputeError
	if errors.As(err, &rerr) {
		return rerr.Retryable
	}
	return false
}
