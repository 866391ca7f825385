package models

import (
	"fmt"
	"net/http"
)

// NotFoundError indicates an entity is absent or not publicly visible.
// An unapproved consultant is deliberately reported as not-found rather
// than forbidden so that its existence is not leaked.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// NewNotFound creates a NotFoundError for the named resource
func NewNotFound(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

// ValidationError indicates a precondition on user-supplied data failed
// (price mismatch, past date, slot conflict, amount mismatch, ...).
// Code is machine-readable and stable across releases.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewValidation creates a ValidationError with a machine-readable code
func NewValidation(code, message string) *ValidationError {
	return &ValidationError{Code: code, Message: message}
}

// ConflictError indicates a duplicate unique constraint outside the
// booking flow (where duplicates are absorbed, not surfaced).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// NewConflict creates a ConflictError
func NewConflict(message string) *ConflictError {
	return &ConflictError{Message: message}
}

// AppError is a generic operational failure with a fixed public status,
// code and message. The wrapped cause is logged server-side only.
type AppError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError wraps an unexpected error behind a stable public message
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{Status: status, Code: code, Message: message, Err: err}
}

// Stable fallback codes for unclassified failures
const (
	CodeInternalError       = "INTERNAL_ERROR"
	CodeSessionBookingError = "SESSION_BOOKING_ERROR"
	CodePaymentError        = "PAYMENT_ERROR"
)

// NewBookingFailed wraps an unexpected booking failure without leaking internals
func NewBookingFailed(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeSessionBookingError, "Failed to book session", err)
}
