// Package token defines the token kinds and source positions of the Tally
// expression language.
package token

import "fmt"

// Kind represents the type of a lexical token.
type Kind int

const (
	EOF Kind = iota

	// Literals
	INT     // 42
	FLOAT   // 4.2
	IDENT   // x
	KEYWORD // VAR

	// Operators and punctuation
	PLUS   // +
	MINUS  // -
	STAR   // *
	SLASH  // /
	CARET  // ^
	EQ     // =
	LPAREN // (
	RPAREN // )
)

var kindNames = map[Kind]string{
	EOF:     "EOF",
	INT:     "INT",
	FLOAT:   "FLOAT",
	IDENT:   "IDENTIFIER",
	KEYWORD: "KEYWORD",
	PLUS:    "+",
	MINUS:   "-",
	STAR:    "*",
	SLASH:   "/",
	CARET:   "^",
	EQ:      "=",
	LPAREN:  "(",
	RPAREN:  ")",
}

// String returns a human-readable representation of the token kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", int(k))
}

// IsOperator returns true if the kind is an operator or punctuation.
func (k Kind) IsOperator() bool {
	return k >= PLUS && k <= RPAREN
}

// Var is the only reserved word of the language.
const Var = "VAR"

// LookupIdent returns KEYWORD for reserved words and IDENT otherwise.
// Reserved words are case-sensitive.
func LookupIdent(ident string) Kind {
	if ident == Var {
		return KEYWORD
	}
	return IDENT
}

// Token represents a lexical token with position information.
// Literal is set for INT, FLOAT, IDENT and KEYWORD tokens.
type Token struct {
	Kind    Kind
	Literal string
	Span    Span
}

// Is reports whether the token is a keyword with the given spelling.
func (t Token) Is(kind Kind, literal string) bool {
	return t.Kind == kind && t.Literal == literal
}

// Text returns the source spelling of the token. EOF has no spelling.
func (t Token) Text() string {
	switch t.Kind {
	case INT, FLOAT, IDENT, KEYWORD:
		return t.Literal
	case EOF:
		return ""
	default:
		return t.Kind.String()
	}
}

func (t Token) String() string {
	if t.Literal != "" {
		return t.Kind.String() + ":" + t.Literal
	}
	return t.Kind.String()
}
