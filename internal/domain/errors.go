package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrConflict      = errors.New("conflict")
)

// Reporting pipeline errors.
var (
	// ErrReportNotFound means the period was never generated. It wraps
	// ErrNotFound so generic not-found handling still applies.
	ErrReportNotFound = fmt.Errorf("report not yet generated: %w", ErrNotFound)

	// ErrEmptyCatalog means there is no active catalog entry at all, so not
	// even the universal fallback can produce a recommendation.
	ErrEmptyCatalog = errors.New("recommendation catalog is empty")

	// ErrStorageUnavailable marks transport or storage failures. Callers may
	// keep serving last-known-good data while it persists.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrIdentityPending is returned by identity providers that do not know
	// the current user yet.
	ErrIdentityPending = errors.New("identity pending")

	// ErrIdentityTimeout means identity polling was exhausted and no fallback
	// identity was available.
	ErrIdentityTimeout = errors.New("identity resolution timed out")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

// StorageError wraps an infrastructure failure so that it matches both
// ErrStorageUnavailable and the original cause. Domain sentinels and nil pass
// through unchanged.
func StorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{ErrNotFound, ErrAlreadyExists, ErrValidation, ErrConflict, ErrForbidden} {
		if errors.Is(err, known) {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}
