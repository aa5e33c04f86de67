// Package domainerrors defines the coded error type shared by services and
// the HTTP layer. Services create coded errors at the point where an
// infrastructure or validation fact becomes a caller-visible outcome; the
// transport layer translates codes to HTTP statuses without inspecting
// messages.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a caller-visible error category.
type Code string

const (
	CodeBadRequest   Code = "bad_request"
	CodeInvalidInput Code = "invalid_input"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeNotFound     Code = "not_found"
	CodeInternal     Code = "internal_error"

	// Pipeline state errors. The caller invoked a step out of the allowed
	// order; these are surfaced verbatim and never retried.
	CodeAlreadyRegistered      Code = "already_registered"
	CodeIncompleteRegistration Code = "incomplete_registration"
	CodeInvalidState           Code = "invalid_state"

	// Delegated validation errors from the document store adapter.
	CodeUnsupportedType   Code = "unsupported_type"
	CodeUnsupportedFormat Code = "unsupported_format"
	CodePayloadTooLarge   Code = "payload_too_large"

	CodeInvalidCapacity Code = "invalid_capacity"

	// CodeUnavailable marks transient infrastructure failures. Safe for the
	// caller to retry; every pipeline operation is idempotent under retry.
	CodeUnavailable Code = "unavailable"
)

// Error is a domain error carrying a stable code and a human-readable
// message. The message may be shown to callers for non-internal codes.
type Error struct {
	Code    Code
	Message string
	wrapped error
}

func (e *Error) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.wrapped }

// New creates a domain error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a domain error that preserves the underlying cause for
// logging while exposing only code and message to callers.
func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, wrapped: err}
}

// HasCode reports whether err is a domain error with the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is an alias of HasCode kept for call-site readability.
func Is(err error, code Code) bool { return HasCode(err, code) }

// CodeOf extracts the code from err, defaulting to CodeInternal for
// non-domain errors so unclassified failures never leak details.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf extracts the caller-visible message from err. Internal errors
// yield an empty message.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) && de.Code != CodeInternal {
		return de.Message
	}
	return ""
}

// ToHTTPStatus maps a domain error code to its HTTP status. Validation
// failures map to 400 across the board; out-of-order step invocations map
// to 409; transient infrastructure faults map to 503 so clients know the
// request is retryable.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeInvalidInput, CodeUnsupportedType,
		CodeUnsupportedFormat, CodePayloadTooLarge, CodeInvalidCapacity:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeAlreadyRegistered, CodeIncompleteRegistration, CodeInvalidState:
		return http.StatusConflict
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
