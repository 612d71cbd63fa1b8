package parser

// Syntax error messages.
const (
	ErrExpectedAtom     = "Expected int, float, '+', '-', or '('"
	ErrExpectedRParen   = "Expected ')'"
	ErrExpectedIdent    = "Expected identifier"
	ErrExpectedEquals   = "Expected '='"
	ErrExpectedOperator = "Expected '+', '-', '*', '/', '^' or EOF"
	ErrTooDeep          = "Maximum nesting depth exceeded"
)
