package arrowgram

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an Error.
type Kind string

const (
	KindSpecParse    Kind = "SpecParseError"         // malformed JSON or missing fields
	KindUnresolvable Kind = "UnresolvableReferences" // resolver could not make progress
	KindEncoding     Kind = "EncodingError"          // converter met a dangling reference
)

// Error is the structured error type for specification handling.
type Error struct {
	Kind       Kind
	Message    string
	Names      []string // offending arrows
	Violations []string // schema violations, "/path: message"
	Cause      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	if len(e.Names) > 0 {
		msg += ": " + strings.Join(e.Names, ", ")
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates an Error of the given kind.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WithCause attaches an underlying cause.
func (e *Error) WithCause(err error) *Error {
	e.Cause = err
	return e
}

// WithNames attaches the names of the offending arrows.
func (e *Error) WithNames(names []string) *Error {
	e.Names = names
	return e
}

// Unresolvable builds the resolver failure for the given straggler arrows.
func Unresolvable(names []string) *Error {
	return NewError(KindUnresolvable, "unresolvable references").WithNames(names)
}

func isKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// IsSpecParse reports whether err is a specification parse failure.
func IsSpecParse(err error) bool { return isKind(err, KindSpecParse) }

// IsUnresolvable reports whether err is a resolver failure.
func IsUnresolvable(err error) bool { return isKind(err, KindUnresolvable) }

// IsEncoding reports whether err is a converter reference failure.
func IsEncoding(err error) bool { return isKind(err, KindEncoding) }
