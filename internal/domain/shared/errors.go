// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrNegativeValue   = errors.New("value cannot be negative")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrFutureTimestamp = errors.New("timestamp cannot be in the future")
	ErrInvalidFormat   = errors.New("invalid format")

	// State errors
	ErrInvalidState     = errors.New("invalid state")
	ErrStateTransition  = errors.New("invalid state transition")
	ErrAlreadyProcessed = errors.New("already processed")
	ErrExpired          = errors.New("expired")

	// Concurrency errors
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// Infrastructure errors
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrTimeout            = errors.New("operation timeout")
	ErrRateLimited        = errors.New("rate limited")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "learning", "progress", "course"
	Op      string // Operation that failed, e.g., "Record", "Recompute"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Course domain errors
var (
	ErrCourseNotFound    = NewDomainError("course", "Find", ErrNotFound, "course not found")
	ErrModuleNotFound    = NewDomainError("course", "FindModule", ErrNotFound, "module not found")
	ErrContentNotFound   = NewDomainError("course", "FindContent", ErrNotFound, "content item not found")
	ErrEmptyCourse       = NewDomainError("course", "Validate", ErrInvalidEntity, "course has no modules")
	ErrInvalidCourseID   = NewDomainError("course", "Validate", ErrInvalidID, "invalid course ID")
	ErrInvalidContentRef = NewDomainError("course", "Validate", ErrInvalidInput, "content reference does not exist in course")
)

// Learning event domain errors
var (
	ErrEventNotFound       = NewDomainError("learning", "Find", ErrNotFound, "event not found")
	ErrMissingEventField   = NewDomainError("learning", "Validate", ErrEmptyValue, "required event field missing")
	ErrInvalidEventPairing = NewDomainError("learning", "Validate", ErrInvalidInput, "event type not valid for content type")
	ErrInvalidPercentage   = NewDomainError("learning", "Validate", ErrValueOutOfRange, "percentage must be between 0 and 100")
	ErrNegativeTimeSpent   = NewDomainError("learning", "Validate", ErrNegativeValue, "time spent cannot be negative")
	ErrInvalidContentType  = NewDomainError("learning", "Validate", ErrInvalidInput, "unknown content type")
	ErrInvalidEventType    = NewDomainError("learning", "Validate", ErrInvalidInput, "unknown event type")
)

// Progress domain errors
var (
	ErrSnapshotNotFound   = NewDomainError("progress", "Find", ErrNotFound, "progress snapshot not found")
	ErrSnapshotExists     = NewDomainError("progress", "Create", ErrAlreadyExists, "progress snapshot already exists for user and course")
	ErrRecomputeFailed    = NewDomainError("progress", "Recompute", ErrInvalidState, "progress recompute failed")
	ErrSnapshotConflict   = NewDomainError("progress", "Upsert", ErrConcurrentModification, "concurrent snapshot write detected")
	ErrMissingCourseShape = NewDomainError("progress", "Recompute", ErrNotFound, "course structure unavailable for recompute")
)

// User identity errors
var (
	ErrInvalidUserID = NewDomainError("shared", "Validate", ErrInvalidID, "invalid user ID")
	ErrMissingUserID = NewDomainError("shared", "Validate", ErrEmptyValue, "user ID is required")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrNegativeValue) ||
		errors.Is(err, ErrValueOutOfRange) ||
		errors.Is(err, ErrInvalidFormat)
}

// IsConflict checks if the error indicates a concurrent write conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConcurrentModification) ||
		errors.Is(err, ErrAlreadyExists)
}

// IsRetryable checks if the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrConcurrentModification)
}
