package expr

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedToken is returned when the input holds a character that
	// cannot start or continue an expression at that position.
	ErrUnexpectedToken = errors.New("unexpected token")
	// ErrMissingOpenParen is returned when a function name is not followed by '('.
	ErrMissingOpenParen = errors.New("expected '(' after function")
	// ErrMissingCloseParen is returned when a '(' is never closed.
	ErrMissingCloseParen = errors.New("missing ')'")
	// ErrUnknownFunction is returned for identifiers outside the built-in set.
	ErrUnknownFunction = errors.New("unknown function")
)

// ParseError describes why an expression could not be compiled.
// Kind is one of the Err* sentinels and can be matched with errors.Is.
type ParseError struct {
	Kind  error
	Pos   int    // byte offset into Input
	Name  string // offending identifier or token text, if any
	Input string
}

func (e *ParseError) Error() string {
	switch {
	case e.Kind == ErrUnknownFunction:
		return fmt.Sprintf("%v: %s", e.Kind, e.Name)
	case e.Name != "":
		return fmt.Sprintf("%v %q at position %d", e.Kind, e.Name, e.Pos)
	default:
		return fmt.Sprintf("%v at position %d", e.Kind, e.Pos)
	}
}

func (e *ParseError) Unwrap() error {
	return e.Kind
}

// KindName returns a short machine-friendly name for the error kind.
func (e *ParseError) KindName() string {
	return KindName(e.Kind)
}

// KindName maps a parse error sentinel to a stable label, e.g. for metrics.
func KindName(kind error) string {
	switch kind {
	case ErrUnexpectedToken:
		return "unexpected_token"
	case ErrMissingOpenParen:
		return "missing_open_paren"
	case ErrMissingCloseParen:
		return "missing_close_paren"
	case ErrUnknownFunction:
		return "unknown_function"
	default:
		return "unknown"
	}
}
