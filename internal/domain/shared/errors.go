package shared

import (
	"errors"
	"fmt"
)

// Error codes used across the print pipeline
const (
	CodeNotFound          = "NOT_FOUND"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeForbidden         = "FORBIDDEN"
	CodeValidation        = "VALIDATION_ERROR"
	CodeStorage           = "STORAGE_ERROR"
	CodeConversion        = "CONVERSION_ERROR"
	CodeConflict          = "CONFLICT"
	CodeGone              = "GONE"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a DomainError with the same code.
// This lets callers compare against the sentinel values below with errors.Is.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WrapDomainError creates a domain error carrying an underlying cause
func WrapDomainError(code, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Sentinels for errors.Is comparisons
var (
	ErrNotFound   = NewDomainError(CodeNotFound, "Resource not found")
	ErrForbidden  = NewDomainError(CodeForbidden, "Operation not allowed in current state")
	ErrValidation = NewDomainError(CodeValidation, "Invalid input provided")
	ErrStorage    = NewDomainError(CodeStorage, "Object storage operation failed")
	ErrConversion = NewDomainError(CodeConversion, "Document conversion failed")
	ErrConflict   = NewDomainError(CodeConflict, "Resource already in requested state")
)

// NewNotFoundError reports a missing entity
func NewNotFoundError(entity string, id any) *DomainError {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s %v not found", entity, id))
}

// NewForbiddenError reports an operation attempted on a frozen or out-of-phase entity
func NewForbiddenError(message string) *DomainError {
	return NewDomainError(CodeForbidden, message)
}

// NewValidationError reports a malformed request or action list
func NewValidationError(message string) *DomainError {
	return NewDomainError(CodeValidation, message)
}

// NewStorageError wraps an object store failure
func NewStorageError(op, path string, cause error) *DomainError {
	return WrapDomainError(CodeStorage, fmt.Sprintf("storage %s %q failed", op, path), cause)
}

// NewConversionError wraps a converter failure
func NewConversionError(sourceType string, cause error) *DomainError {
	return WrapDomainError(CodeConversion, fmt.Sprintf("conversion from %s failed", sourceType), cause)
}

// NewConflictError reports a duplicate operation or a stale read of an entity
func NewConflictError(message string) *DomainError {
	return NewDomainError(CodeConflict, message)
}

// NewGoneError reports an entity that existed but is no longer served
func NewGoneError(message string) *DomainError {
	return NewDomainError(CodeGone, message)
}

// InvalidTransitionError is returned when a state machine rejects a transition.
type InvalidTransitionError struct {
	Machine   string
	Current   string
	Requested string
}

// Error implements the error interface
func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid %s transition from %s to %s", e.Machine, e.Current, e.Requested)
}

// Is matches any InvalidTransitionError, so errors.Is(err, ErrInvalidTransition) works
func (e *InvalidTransitionError) Is(target error) bool {
	if target == ErrInvalidTransition {
		return true
	}
	var de *DomainError
	return errors.As(target, &de) && de.Code == CodeInvalidTransition
}

// ErrInvalidTransition is the sentinel for any rejected transition
var ErrInvalidTransition = errors.New("invalid state transition")

// NewInvalidTransitionError creates an InvalidTransitionError
func NewInvalidTransitionError(machine, current, requested string) *InvalidTransitionError {
	return &InvalidTransitionError{Machine: machine, Current: current, Requested: requested}
}

// ErrorCode extracts the taxonomy code from err, or "" when err is not a domain error.
func ErrorCode(err error) string {
	var ite *InvalidTransitionError
	if errors.As(err, &ite) {
		return CodeInvalidTransition
	}
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsRetryable reports whether a background attempt failing with err may be retried.
// Collaborator failures are retryable; state machine, validation, not-found and
// forbidden errors indicate a logic or request error and are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	switch ErrorCode(err) {
	case CodeInvalidTransition, CodeValidation, CodeForbidden, CodeNotFound, CodeConflict, CodeGone:
		return false
	default:
		return true
	}
}
