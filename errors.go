package asgen

import (
	"errors"
	"strings"
)

// ErrorKind classifies an *Error for inspection with errors.As.
type ErrorKind string

// The set of error kinds components in this module are expected to use.
const (
	ErrConflict     ErrorKind = "conflict"
	ErrInternal     ErrorKind = "internal"
	ErrInvalid      ErrorKind = "invalid"
	ErrNotFound     ErrorKind = "not-found"
	ErrPrecondition ErrorKind = "precondition"
	ErrTransient    ErrorKind = "transient"
)

// Error is this module's error domain type.
//
// Components should construct an Error at a system boundary (a CAS
// transaction, an archive open, a network fetch) and prefer fmt.Errorf
// with "%w" everywhere else, so that the Kind attached is the one from
// the original boundary failure.
type Error struct {
	Inner   error
	Kind    ErrorKind
	Message string
	Op      string
}

var (
	_ error                       = (*Error)(nil)
	_ interface{ Is(error) bool } = (*Error)(nil)
	_ interface{ Unwrap() error } = (*Error)(nil)
)

// Error implements error.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(" ")
	}
	b.WriteString("[")
	switch e.Kind {
	case ErrConflict, ErrInternal, ErrInvalid, ErrNotFound, ErrPrecondition, ErrTransient:
		b.WriteString(string(e.Kind))
	default:
		b.WriteString("???")
	}
	b.WriteString("]: ")
	if e.Message != "" {
		b.WriteString(e.Message)
	}
	if e.Message != "" && e.Inner != nil {
		b.WriteString(": ")
	}
	if e.Op == "" && e.Message == "" {
		b.Reset()
	}
	if e.Inner != nil {
		b.WriteString(e.Inner.Error())
	}
	return b.String()
}

// Unwrap enables errors.Unwrap/errors.As/errors.Is on the inner error.
func (e *Error) Unwrap() error { return e.Inner }

// Is reports whether target is an *Error with the same Kind.
func (e *Error) Is(target error) bool {
	var o *Error
	if !errors.As(target, &o) {
		return false
	}
	return o.Kind == e.Kind
}

// NewError constructs an *Error at a system boundary.
func NewError(op string, kind ErrorKind, msg string, inner error) *Error {
	return &Error{Op: op, Kind: kind, Message: msg, Inner: inner}
}
