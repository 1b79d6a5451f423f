// Package apperr defines the error taxonomy surfaced by the application
// services. Every rejected operation carries a machine-readable kind
// plus a human-readable message; HTTP mapping lives in the interface
// layer.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an application error.
type Kind string

const (
	KindAuthenticationRequired     Kind = "AUTHENTICATION_REQUIRED"
	KindOrganizationContextMissing Kind = "ORGANIZATION_CONTEXT_MISSING"
	KindPermissionDenied           Kind = "PERMISSION_DENIED"
	KindNotFound                   Kind = "NOT_FOUND"
	KindValidation                 Kind = "VALIDATION"
	KindInvalidStateTransition     Kind = "INVALID_STATE"
	KindDependencyFailure          Kind = "DEPENDENCY_FAILURE"
)

// Error is a domain error with a stable kind.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes errors.Is match on kind so callers can compare against the
// bare constructors, e.g. errors.Is(err, apperr.NotFound("")).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// New creates an error with the given kind and formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error with the given kind wrapping an underlying cause.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// AuthenticationRequired reports a request with no authenticated identity.
func AuthenticationRequired(msg string) *Error {
	return &Error{Kind: KindAuthenticationRequired, Message: msg}
}

// OrganizationContextMissing reports a request with no tenant context.
func OrganizationContextMissing(msg string) *Error {
	return &Error{Kind: KindOrganizationContextMissing, Message: msg}
}

// PermissionDenied reports an insufficient role for the operation.
func PermissionDenied(msg string) *Error {
	return &Error{Kind: KindPermissionDenied, Message: msg}
}

// NotFound reports an absent entity. Entities outside the caller's
// organization report the same kind, so cross-tenant existence never
// leaks.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Validation reports malformed input.
func Validation(format string, args ...interface{}) *Error {
	return New(KindValidation, format, args...)
}

// InvalidStateTransition reports a lifecycle operation attempted outside
// the states that permit it.
func InvalidStateTransition(format string, args ...interface{}) *Error {
	return New(KindInvalidStateTransition, format, args...)
}

// DependencyFailure reports a failing external collaborator.
func DependencyFailure(err error, msg string) *Error {
	return &Error{Kind: KindDependencyFailure, Message: msg, Err: err}
}

// KindOf returns the kind of err, or an empty kind when err is not an
// application error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
