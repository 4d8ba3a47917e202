package service

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure for callers: resource absent, not allowed,
// bad input, wrong lifecycle stage, or dependency down.
type ErrorKind string

const (
	KindNotFound     ErrorKind = "not_found"
	KindForbidden    ErrorKind = "forbidden"
	KindInvalidInput ErrorKind = "invalid_input"
	KindInvalidState ErrorKind = "invalid_state"
	KindUnavailable  ErrorKind = "unavailable"
)

// DomainError carries an error kind alongside a user-facing message
type DomainError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NotFoundError creates an error for an absent resource
func NotFoundError(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// ForbiddenError creates an error for an action the actor may not perform
func ForbiddenError(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

// InvalidInputError creates an error for malformed or rejected input
func InvalidInputError(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// InvalidStateError creates an error for an operation in the wrong lifecycle stage
func InvalidStateError(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

// UnavailableError creates an error for an unreachable downstream dependency
func UnavailableError(message string, err error) *DomainError {
	return &DomainError{Kind: KindUnavailable, Message: message, Err: err}
}

// KindOf extracts the error kind, if the error is a DomainError
func KindOf(err error) (ErrorKind, bool) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Kind, true
	}
	return "", false
}

// IsKind checks whether the error carries the given kind
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
