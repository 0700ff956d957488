// Package apperror defines the single error type used across the identity
// and secret-management core.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an Error for HTTP mapping and client-facing next actions.
type Kind string

const (
	Unauthorized       Kind = "Unauthorized"
	Forbidden          Kind = "Forbidden"
	NotFound           Kind = "NotFound"
	Conflict           Kind = "Conflict"
	InvalidInput       Kind = "InvalidInput"
	TokenExpired       Kind = "TokenExpired"
	CipherCorrupt      Kind = "CipherCorrupt"
	OAuthStateInvalid  Kind = "OAuthStateInvalid"
	OAuthProviderError Kind = "OAuthProviderError"
	Internal           Kind = "Internal"
)

// Error is the one error type every component in this module returns for
// anything client-visible. It carries enough to render the
// {error,message,statusCode,nextActions?} envelope from the HTTP layer
// without the handler needing to know which component raised it.
type Error struct {
	Kind        Kind
	Message     string
	NextActions []string
	cause       error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Is lets callers write errors.Is(err, apperror.Sentinel(apperror.NotFound))
// to match on Kind alone, regardless of message or wrapped cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinel returns a bare Error of the given kind, suitable only as an
// errors.Is comparison target (never returned to a caller).
func Sentinel(kind Kind) *Error { return &Error{Kind: kind} }

// New constructs an Error of the given kind with a message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap constructs an Error of the given kind wrapping an underlying cause.
// The cause is never included in Message — callers control what's
// client-visible; cause is only surfaced via logging/Unwrap.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// WithNextActions returns a copy of e with NextActions set.
func (e *Error) WithNextActions(actions ...string) *Error {
	n := *e
	n.NextActions = actions
	return &n
}

// HTTPStatus maps a Kind to its HTTP status code per spec §7.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case Unauthorized, TokenExpired:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case InvalidInput:
		return http.StatusBadRequest
	case OAuthStateInvalid:
		return http.StatusBadRequest
	case OAuthProviderError:
		return http.StatusBadGateway
	case CipherCorrupt, Internal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// As reports whether err is an *Error and, if so, returns it.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// KindOf returns the Kind of err if it is (or wraps) an *Error, else Internal.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return Internal
}
