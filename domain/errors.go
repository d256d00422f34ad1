package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeInternal     ErrorCode = "INTERNAL"

	// ErrCodeTransport marks a network or HTTP failure against the grader API.
	// Recoverable: pollers keep their previous snapshot and retry.
	ErrCodeTransport ErrorCode = "TRANSPORT"
	// ErrCodeValidation marks input rejected locally, before any round trip.
	ErrCodeValidation ErrorCode = "VALIDATION"
	// ErrCodeChannel marks a push-channel failure; recovered via reconnect.
	ErrCodeChannel ErrorCode = "CHANNEL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors. The submission-path messages are shown verbatim to
// students, so keep them stable.
var (
	ErrAssignmentNotFound = NewError(ErrCodeNotFound, "assignment not found")
	ErrNotInClassRepo     = NewError(ErrCodeInvalid, "not in student's class repository")
	ErrNotInAssignment    = NewError(ErrCodeInvalid, "not in an assignment directory")
	ErrNotAvailableYet    = NewError(ErrCodeValidation, "assignment is not available yet")
	ErrPastDue            = NewError(ErrCodeValidation, "assignment is past due")
	ErrUnauthorized       = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrInvalidPayload     = NewError(ErrCodeInvalid, "invalid payload")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
