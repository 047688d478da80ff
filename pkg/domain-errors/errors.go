// Package domainerrors defines the error vocabulary shared by services.
//
// Services create errors with New or Wrap and callers branch on codes with
// HasCode. Stores do not use this package directly; they return sentinel
// errors (pkg/platform/sentinel) which services translate into coded errors
// before they cross a module boundary.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for propagation policy decisions.
type Code string

const (
	// CodeValidation marks malformed input. Surfaced to the caller
	// immediately, nothing is attempted.
	CodeValidation Code = "validation"

	// CodeConflict marks a domain-level uniqueness violation, such as a
	// second evaluation for the same period.
	CodeConflict Code = "conflict"

	// CodeNotFound marks a referenced entity that does not exist.
	CodeNotFound Code = "not_found"

	// CodeExternal marks a failure of an external collaborator (a scorer
	// process that could not be launched, an unreachable broker).
	CodeExternal Code = "external"

	// CodeInvariantViolation marks a broken model invariant. Usually
	// converted to CodeValidation or CodeConflict at the service boundary.
	CodeInvariantViolation Code = "invariant_violation"

	// CodeInternal marks everything else.
	CodeInternal Code = "internal"
)

// Error carries a code, a caller-facing message and an optional cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded error with a caller-facing message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for
// uncoded errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
