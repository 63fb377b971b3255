package service

import (
	"errors"
	"fmt"
)

// ErrorKind classifies service errors for the transport layer
type ErrorKind string

const (
	ErrValidation   ErrorKind = "validation"
	ErrNotFound     ErrorKind = "not_found"
	ErrConflict     ErrorKind = "conflict"
	ErrUnauthorized ErrorKind = "unauthorized"
	ErrTokenExpired ErrorKind = "token_expired"
	ErrUnavailable  ErrorKind = "unavailable"
	ErrUpstream     ErrorKind = "upstream"
)

// Error is an expected failure with a client-facing message
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func validationError(format string, args ...interface{}) *Error {
	return newError(ErrValidation, format, args...)
}

func notFoundError(format string, args ...interface{}) *Error {
	return newError(ErrNotFound, format, args...)
}

// KindOf returns the kind of a service error, or "" for unexpected errors
func KindOf(err error) ErrorKind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return ""
}
