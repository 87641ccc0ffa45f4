package joblens

import (
	"context"
	"errors"
	"fmt"
)

// Application error codes.
//
// These are meaningful to the caller: EUNAVAILABLE, ERATELIMITED and
// ECANCELED are the only codes surfaced by the extraction engine's public
// operations; the rest are used internally and by collaborator
// implementations.
const (
	ECANCELED    = "canceled"     // operation aborted cooperatively
	EINTERNAL    = "internal"     // unexpected internal error
	EINVALID     = "invalid"      // validation failed
	ENOTFOUND    = "not_found"    // entity does not exist
	ERATELIMITED = "rate_limited" // extraction gate denied the attempt
	EUNAVAILABLE = "unavailable"  // no usable inference capability
)

// Error represents an application-specific error. Application errors carry
// a machine-readable code and a human-readable message.
type Error struct {
	// Code is one of the application error code constants.
	Code string

	// Message is a human-readable description of the error.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("joblens error: code=%s message=%s", e.Code, e.Message)
}

// ErrorCode returns the code of the root error, if available.
// Context cancellation maps to ECANCELED; other non-application errors
// map to EINTERNAL. Returns an empty string for a nil error.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	} else if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ECANCELED
	}
	return EINTERNAL
}

// ErrorMessage returns the message of the root error, if available.
// Non-application errors always return "Internal error.".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// Errorf is a helper function to return an Error with a given code and
// formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}
