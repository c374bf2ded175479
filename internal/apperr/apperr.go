// Package apperr defines the error taxonomy shared by services and handlers.
// Services wrap failures in a kind; the HTTP layer maps kinds to status codes
// and stable client messages, never forwarding internal error text.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindStateConflict
	KindExternal
)

type Error struct {
	kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.err }

// Message returns the client-safe message.
func (e *Error) Message() string { return e.msg }

func (e *Error) Kind() Kind { return e.kind }

func newError(kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func Validation(msg string) *Error    { return newError(KindValidation, msg) }
func Unauthorized(msg string) *Error  { return newError(KindUnauthorized, msg) }
func Forbidden(msg string) *Error     { return newError(KindForbidden, msg) }
func NotFound(msg string) *Error      { return newError(KindNotFound, msg) }
func StateConflict(msg string) *Error { return newError(KindStateConflict, msg) }

// External marks a failure of an upstream dependency (payment gateway,
// notification provider). The cause is kept for logs only.
func External(msg string, err error) *Error {
	return &Error{kind: KindExternal, msg: msg, err: err}
}

// Internal wraps an unexpected failure. Clients see a generic message.
func Internal(err error) *Error {
	return &Error{kind: KindInternal, msg: "internal error", err: err}
}

// KindOf extracts the kind from an error chain, defaulting to KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindInternal
}

// ClientMessage returns the message safe to expose for err.
func ClientMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.kind != KindInternal {
		return e.msg
	}
	return "internal error"
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
