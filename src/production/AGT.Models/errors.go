package agtmodels

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures into the closed set the rest of the
// system switches on. Adapters at the persistence/auth boundary are the
// only place raw driver errors get mapped into kinds; nothing above
// that layer inspects error text.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindUnauthenticated
	KindPermissionDenied
	KindNotFound
	KindInvalidInput
	KindUnavailable
	KindConfig
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindPermissionDenied:
		return "permission_denied"
	case KindNotFound:
		return "not_found"
	case KindInvalidInput:
		return "invalid_input"
	case KindUnavailable:
		return "unavailable"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

// Error is a classified error with an optional cause.
type Error struct {
	Kind  ErrorKind
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Cause)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Cause }

// E builds a classified error.
func E(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap builds a classified error around a cause.
func Wrap(kind ErrorKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Cause: cause}
}

// KindOf returns the kind of err, or KindUnknown for unclassified errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsAuth reports whether err should be treated as a session problem,
// i.e. handled by redirecting to login rather than an inline banner.
func IsAuth(err error) bool {
	k := KindOf(err)
	return k == KindUnauthenticated || k == KindPermissionDenied
}
