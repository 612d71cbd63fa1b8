// Package diag defines the user-facing errors of the Tally language and
// renders them against the source text they refer to.
package diag

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/tally/pkg/token"
)

// Kind classifies a language error by the stage that produced it.
type Kind int

const (
	// LexError is an unrecognized character in the input.
	LexError Kind = iota + 1
	// SyntaxError is a grammar violation at a specific token.
	SyntaxError
	// RuntimeError is a failure while evaluating a well-formed tree.
	RuntimeError
)

// String returns the heading used when the error is displayed.
func (k Kind) String() string {
	switch k {
	case LexError:
		return "Illegal Character"
	case SyntaxError:
		return "Invalid Syntax"
	case RuntimeError:
		return "Runtime Error"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Slug returns a stable lower-case identifier for the kind, suitable for
// storage and machine-readable output.
func (k Kind) Slug() string {
	switch k {
	case LexError:
		return "lex"
	case SyntaxError:
		return "syntax"
	case RuntimeError:
		return "runtime"
	default:
		return "unknown"
	}
}

// ParseKind is the inverse of Kind.Slug.
func ParseKind(slug string) (Kind, bool) {
	for _, k := range []Kind{LexError, SyntaxError, RuntimeError} {
		if k.Slug() == slug {
			return k, true
		}
	}
	return 0, false
}

// Error is a language error attributed to a span of source text.
type Error struct {
	Kind    Kind
	Span    token.Span
	Message string
}

// Errorf builds an Error of the given kind covering span.
func Errorf(kind Kind, span token.Span, format string, args ...any) *Error {
	return &Error{Kind: kind, Span: span, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.Message
}

// Format renders the error header, location line and a caret excerpt of the
// offending source. Line and column numbers are 1-based.
func (e *Error) Format() string {
	start, end := e.Span.Start, e.Span.End

	var b strings.Builder
	b.WriteString(e.Error())
	fmt.Fprintf(&b, "\nFile %s, line %d, column %d to %d, column %d",
		start.Name(), start.Line+1, start.Column+1, end.Line+1, end.Column+1)
	if start.Source != nil {
		b.WriteString("\n\n")
		b.WriteString(Render(start.Source.Text, start, end))
	}
	return b.String()
}

// As extracts a *Error from err's chain.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// IsKind reports whether err is a language error of the given kind.
func IsKind(err error, kind Kind) bool {
	de, ok := As(err)
	return ok && de.Kind == kind
}
