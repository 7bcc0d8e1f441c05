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

	// Referential errors: the run aborts and nothing persists.
	ErrUnresolvedTopics = errors.New("unresolved topic hierarchy")
	ErrUnknownTopic     = errors.New("unknown topic slug")

	// Invariant violations.
	ErrMultiplePrimary = errors.New("multiple primary audio assets")
	ErrAudioUnresolved = errors.New("audio asset has no url, file or discoverable conventional file")

	// Configuration preconditions.
	ErrStorageNotConfigured = errors.New("object storage is not configured")

	ErrBatchNotFound = errors.New("ingestion batch not found")

	// ErrDryRunRollback is returned from inside a transaction callback to force
	// a rollback after every write of a dry run has been performed. It never
	// escapes the ingestion controller.
	ErrDryRunRollback = errors.New("dry-run rollback")
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
	return fmt.Sprintf("validation: %d errors (first: %s: %s)", len(e.Errors), e.Errors[0].Field, e.Errors[0].Message)
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
