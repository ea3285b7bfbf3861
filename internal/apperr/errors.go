// Package apperr is the error taxonomy shared by services and handlers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindAuthenticationMissing
	KindAuthenticationInvalid
	KindAuthorizationDenied
	KindNotFound
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindAuthenticationMissing:
		return "authentication_missing"
	case KindAuthenticationInvalid:
		return "authentication_invalid"
	case KindAuthorizationDenied:
		return "authorization_denied"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation_failed"
	default:
		return "internal"
	}
}

// Status is the HTTP status a Kind is reported with.
func (k Kind) Status() int {
	switch k {
	case KindAuthenticationMissing, KindAuthorizationDenied:
		return http.StatusForbidden
	case KindAuthenticationInvalid:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error is a failure with a client-facing message. Cause is kept for logs only.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Validation(msg string, cause error) *Error {
	return &Error{Kind: KindValidation, Message: msg, Cause: cause}
}

func Forbidden(msg string) *Error {
	return &Error{Kind: KindAuthorizationDenied, Message: msg}
}

func Unauthenticated(msg string) *Error {
	return &Error{Kind: KindAuthenticationInvalid, Message: msg}
}

func MissingCredentials(msg string) *Error {
	return &Error{Kind: KindAuthenticationMissing, Message: msg}
}

func Internal(msg string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Cause: cause}
}

// KindOf reports the Kind of err. Errors outside the taxonomy are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err belongs to kind k.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}
