package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an error for propagation policy: every kind maps to one
// localized user-facing template and one HTTP status upstream.
type Kind string

const (
	// KindTransient marks temporarily failing external capabilities
	// (classifier, repository, speech). Retried before it surfaces.
	KindTransient Kind = "TRANSIENT"
	// KindValidation marks records rejected before persistence
	// (missing fields, incomplete language maps).
	KindValidation Kind = "VALIDATION"
	// KindNotFound marks unknown scheme or session ids.
	KindNotFound Kind = "NOT_FOUND"
	// KindExpired marks sessions past TTL or ended.
	KindExpired Kind = "EXPIRED"
	// KindConflict marks an optimistic version mismatch on commit.
	KindConflict Kind = "CONFLICT"
	// KindAmbiguous marks a reference the context resolver refused to guess.
	KindAmbiguous Kind = "AMBIGUOUS"
)

// Error carries a kind plus an internal message that never reaches end users.
type Error struct {
	Kind    Kind
	Message string
	wrapped error
}

func (e *Error) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.wrapped }

// New creates a classified error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates a classified error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying error without losing it.
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, wrapped: err}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), wrapped: err}
}

// KindOf extracts the kind of err, or KindTransient when err carries none:
// unclassified failures are treated as retryable rather than leaking detail.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindTransient
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind == kind
	}
	return false
}

// Retryable reports whether the caller may retry the failed operation.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindTransient, KindConflict:
		return true
	default:
		return false
	}
}
