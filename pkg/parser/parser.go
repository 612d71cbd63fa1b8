// Package parser builds an expression tree from a Tally token sequence.
//
// # Grammar
//
// The parser is recursive descent with one function per precedence tier,
// tightest binding first:
//
//	atom    → INT | FLOAT | IDENTIFIER | "(" expr ")"
//	power   → atom ("^" factor)*
//	factor  → ("+" | "-") factor | power
//	term    → factor (("*" | "/") factor)*
//	expr    → "VAR" IDENTIFIER "=" expr | term (("+" | "-") term)*
//
// Because the right operand of "^" re-enters factor, exponentiation is
// right-associative and binds tighter than a unary minus on its left:
// 2^3^2 is 2^(3^2) and -2^2 is -(2^2).
package parser

import (
	"github.com/leapstack-labs/tally/pkg/ast"
	"github.com/leapstack-labs/tally/pkg/diag"
	"github.com/leapstack-labs/tally/pkg/token"
)

// DefaultMaxDepth bounds how deeply expressions may nest before parsing
// fails with a SyntaxError instead of exhausting the goroutine stack.
const DefaultMaxDepth = 512

// Parser parses a token sequence into an AST.
type Parser struct {
	tokens   []token.Token
	pos      int
	token    token.Token // current token
	depth    int
	maxDepth int
}

// Option configures a Parser.
type Option func(*Parser)

// WithMaxDepth sets the nesting limit. Values below 1 select DefaultMaxDepth.
func WithMaxDepth(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.maxDepth = n
		}
	}
}

// New creates a parser over tokens. A missing trailing EOF token is supplied.
func New(tokens []token.Token, opts ...Option) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != token.EOF {
		var end token.Position
		if len(tokens) > 0 {
			end = tokens[len(tokens)-1].Span.End
		}
		tokens = append(tokens[:len(tokens):len(tokens)], token.Token{
			Kind: token.EOF,
			Span: token.Span{Start: end, End: end},
		})
	}
	p := &Parser{tokens: tokens, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(p)
	}
	p.token = p.tokens[0]
	return p
}

// Parse parses tokens into a single expression. The whole sequence must be
// consumed; trailing tokens are a SyntaxError.
func Parse(tokens []token.Token, opts ...Option) (ast.Node, error) {
	return New(tokens, opts...).Parse()
}

// Parse runs the parser. It stops at the first error and never returns a
// partial tree alongside it.
func (p *Parser) Parse() (ast.Node, error) {
	node, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if !p.check(token.EOF) {
		return nil, p.errorf(ErrExpectedOperator)
	}
	return node, nil
}

// ---------- Token Helpers ----------

// nextToken advances to the next token. EOF is sticky.
func (p *Parser) nextToken() {
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	p.token = p.tokens[p.pos]
}

// check returns true if the current token is of the given kind.
func (p *Parser) check(k token.Kind) bool {
	return p.token.Kind == k
}

// checkAny returns true if the current token is any of the given kinds.
func (p *Parser) checkAny(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			return true
		}
	}
	return false
}

// errorf builds a SyntaxError at the current token.
func (p *Parser) errorf(format string, args ...any) error {
	return diag.Errorf(diag.SyntaxError, p.token.Span, format, args...)
}

// enter tracks recursion depth; the returned func must be deferred.
func (p *Parser) enter() (func(), error) {
	if p.depth >= p.maxDepth {
		return nil, p.errorf(ErrTooDeep)
	}
	p.depth++
	return func() { p.depth-- }, nil
}
