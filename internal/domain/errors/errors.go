// Package errors defines the error taxonomy surfaced by the API client.
package errors

import (
	"net/http"

	"campus/internal/errors"
)

// Kind classifies an API failure. The gateway recovers Unauthorized once per
// logical request via refresh-and-retry; every other kind passes through to
// the caller uninterpreted.
type Kind string

const (
	KindNetwork      Kind = "NETWORK"
	KindBadRequest   Kind = "BAD_REQUEST"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindForbidden    Kind = "FORBIDDEN"
	KindNotFound     Kind = "NOT_FOUND"
	KindServerError  Kind = "SERVER_ERROR"
	KindUnknown      Kind = "UNKNOWN"
)

// ErrSessionExpired is surfaced when the refresh call itself fails. The UI
// boundary must treat it as a forced sign-out.
var ErrSessionExpired = errors.New("session expired")

// APIError is a classified API failure carrying the server-provided message.
type APIError struct {
	kind       Kind
	statusCode int
	message    string
	cause      error
}

// NewAPIError builds an APIError with an explicit kind.
func NewAPIError(kind Kind, statusCode int, message string) *APIError {
	return &APIError{kind: kind, statusCode: statusCode, message: message}
}

// NewNetworkError wraps a transport-level failure.
func NewNetworkError(cause error) *APIError {
	return &APIError{kind: KindNetwork, message: "network error", cause: cause}
}

// FromStatus maps an HTTP status code and message to the taxonomy.
func FromStatus(statusCode int, message string) *APIError {
	kind := KindUnknown
	switch {
	case statusCode == http.StatusUnauthorized:
		kind = KindUnauthorized
	case statusCode == http.StatusForbidden:
		kind = KindForbidden
	case statusCode == http.StatusNotFound:
		kind = KindNotFound
	case statusCode >= 400 && statusCode < 500:
		kind = KindBadRequest
	case statusCode >= 500:
		kind = KindServerError
	}
	if message == "" {
		message = http.StatusText(statusCode)
	}

	return &APIError{kind: kind, statusCode: statusCode, message: message}
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}

	return e.message
}

// Unwrap exposes the transport cause, if any.
func (e *APIError) Unwrap() error {
	return e.cause
}

// Kind returns the failure classification.
func (e *APIError) Kind() Kind {
	return e.kind
}

// StatusCode returns the HTTP status, or 0 for transport failures.
func (e *APIError) StatusCode() int {
	return e.statusCode
}

// Message returns the server-provided, user-facing message.
func (e *APIError) Message() string {
	return e.message
}

// IsKind reports whether err is an APIError of the given kind.
func IsKind(err error, kind Kind) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}

	return apiErr.kind == kind
}

// IsUnauthorized reports whether err is an Unauthorized API failure.
func IsUnauthorized(err error) bool { return IsKind(err, KindUnauthorized) }

// IsForbidden reports whether err is a Forbidden API failure.
func IsForbidden(err error) bool { return IsKind(err, KindForbidden) }

// IsNotFound reports whether err is a NotFound API failure.
func IsNotFound(err error) bool { return IsKind(err, KindNotFound) }

// IsNetwork reports whether err is a transport-level failure.
func IsNetwork(err error) bool { return IsKind(err, KindNetwork) }
