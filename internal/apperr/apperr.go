package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for status mapping and metrics.
type Kind string

const (
	KindUnauthorized   Kind = "unauthorized"
	KindInvalidRequest Kind = "invalid_request"
	KindConfiguration  Kind = "configuration"
	KindUpstream       Kind = "upstream"
	KindInternal       Kind = "internal"
)

// Error carries a client-safe message together with its kind.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "Unknown error"
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Unauthorized reports a missing or wrong access token.
func Unauthorized() *Error {
	return &Error{Kind: KindUnauthorized, Message: "Unauthorized"}
}

func InvalidRequest(message string) *Error {
	return &Error{Kind: KindInvalidRequest, Message: message}
}

func Configuration(message string) *Error {
	return &Error{Kind: KindConfiguration, Message: message}
}

// Upstream reports a non-2xx answer from Raindrop or a marketplace.
func Upstream(message string) *Error {
	return &Error{Kind: KindUpstream, Message: message}
}

// Internal wraps err without changing its message.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Err: err}
}

// KindOf reports the kind of err. Errors that were never classified are internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// StatusCode maps err to the HTTP status the handlers answer with.
func StatusCode(err error) int {
	switch KindOf(err) {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindInvalidRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
