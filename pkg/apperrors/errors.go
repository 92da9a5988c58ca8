// Package apperrors defines the error taxonomy shared by services and handlers.
// The Kind of an error, never its message text, determines the caller-visible
// HTTP status.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind string

const (
	// KindGeneration means the language model produced no usable output for a
	// generation task (empty or unparseable).
	KindGeneration Kind = "generation_failed"

	// KindInvalidSQL means sanitized SQL failed probe-execution validation.
	// Client-correctable: the description likely needs rephrasing.
	KindInvalidSQL Kind = "invalid_sql"

	// KindViewCreation means view DDL failed after validation succeeded.
	// A server-side problem, not user-correctable.
	KindViewCreation Kind = "view_creation_failed"

	// KindNotFound means a lookup by identifier matched no row.
	KindNotFound Kind = "not_found"

	// KindExecution covers any other driver-level failure during ad-hoc or
	// view execution.
	KindExecution Kind = "execution_failed"
)

// Error is a classified error carrying a caller-safe detail message.
// Lower-level driver/model errors are never leaked across a component
// boundary except as the detail of one of these.
type Error struct {
	Kind   Kind
	Detail string
	Cause  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a classified error.
func New(kind Kind, detail string, cause error) *Error {
	return &Error{Kind: kind, Detail: detail, Cause: cause}
}

// Generation builds a KindGeneration error.
func Generation(detail string, cause error) *Error {
	return New(KindGeneration, detail, cause)
}

// InvalidSQL builds a KindInvalidSQL error.
func InvalidSQL(detail string, cause error) *Error {
	return New(KindInvalidSQL, detail, cause)
}

// ViewCreation builds a KindViewCreation error.
func ViewCreation(detail string, cause error) *Error {
	return New(KindViewCreation, detail, cause)
}

// NotFound builds a KindNotFound error.
func NotFound(detail string) *Error {
	return New(KindNotFound, detail, nil)
}

// Execution builds a KindExecution error.
func Execution(detail string, cause error) *Error {
	return New(KindExecution, detail, cause)
}

// KindOf extracts the Kind from an error chain. Unclassified errors report
// KindExecution, the server-failure default.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindExecution
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// DetailOf returns the caller-safe detail message from an error chain,
// falling back to the raw error text for unclassified errors.
func DetailOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		if appErr.Cause != nil {
			return fmt.Sprintf("%s: %v", appErr.Detail, appErr.Cause)
		}
		return appErr.Detail
	}
	return err.Error()
}
