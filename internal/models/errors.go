package models

import (
	"errors"
	"fmt"
)

// Guard-clause errors. Returned synchronously before any mutation occurs.
var (
	ErrAlreadyInProgress = errors.New("automation already in progress for product")
	ErrAlreadyListed     = errors.New("product already listed")
	ErrAlreadyMapped     = errors.New("product already mapped to a listing")
)

// Not-found errors.
var (
	ErrJobNotFound     = errors.New("job not found")
	ErrStepNotFound    = errors.New("step not found")
	ErrDraftNotFound   = errors.New("draft not found")
	ErrProductNotFound = errors.New("product not found")
	ErrMappingNotFound = errors.New("mapping not found")
)

// ErrDraftNotPending is returned when a review operation targets a draft
// that has already left the pending state.
var ErrDraftNotPending = errors.New("draft is not pending")

// ErrConfirmationRequired is returned by bulk operations invoked without an
// explicit confirmation flag.
var ErrConfirmationRequired = errors.New("confirmation required")

// ValidationError reports missing or invalid required input. It produces no
// job or publish side effects.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Reason)
}

// NewValidationError creates a validation error with the given reason.
func NewValidationError(reason string) *ValidationError {
	return &ValidationError{Reason: reason}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
