// Package tally is the entry point to the Tally expression language.
//
// # Usage
//
//	s := tally.NewSession()
//	if _, err := s.EvaluateSource("<stdin>", "VAR x = 5"); err != nil {
//	    // handle error
//	}
//	v, err := s.EvaluateSource("<stdin>", "x + 1") // 6
//
// Source text goes through three stages: lexing, parsing and evaluation.
// Each stage stops at its first failure and the pipeline returns that error;
// errors are *diag.Error values whose Format method renders a caret excerpt.
//
// A Session keeps one global environment alive across submissions, so names
// bound by one call are visible to the next. Sessions do no locking: callers
// that submit from several goroutines must serialize access themselves.
package tally

import (
	"log/slog"

	"github.com/leapstack-labs/tally/pkg/ast"
	"github.com/leapstack-labs/tally/pkg/env"
	"github.com/leapstack-labs/tally/pkg/interp"
	"github.com/leapstack-labs/tally/pkg/lexer"
	"github.com/leapstack-labs/tally/pkg/parser"
	"github.com/leapstack-labs/tally/pkg/token"
	"github.com/leapstack-labs/tally/pkg/value"
)

// Session evaluates source text against a persistent environment.
type Session struct {
	env      *env.Environment
	maxDepth int
	logger   *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithMaxDepth limits expression nesting. Zero keeps the default.
func WithMaxDepth(n int) Option {
	return func(s *Session) { s.maxDepth = n }
}

// WithLogger sets the logger used for debug tracing of each stage.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithEnvironment evaluates against e instead of a fresh global environment.
func WithEnvironment(e *env.Environment) Option {
	return func(s *Session) {
		if e != nil {
			s.env = e
		}
	}
}

// NewSession creates a session with a fresh global environment.
func NewSession(opts ...Option) *Session {
	s := &Session{
		env:    env.NewGlobal(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Env returns the session's global environment.
func (s *Session) Env() *env.Environment {
	return s.env
}

// Reset discards all bindings and starts over with a fresh global
// environment.
func (s *Session) Reset() {
	s.env = env.NewGlobal()
}

// EvaluateSource lexes, parses and evaluates text. label names the origin of
// the text in diagnostics and has no other effect. On failure the returned
// Number is the zero value and err is a *diag.Error.
func (s *Session) EvaluateSource(label, text string) (value.Number, error) {
	node, err := s.Parse(label, text)
	if err != nil {
		return value.Number{}, err
	}
	return s.Evaluate(node)
}

// Parse lexes and parses text with the session's nesting limit.
func (s *Session) Parse(label, text string) (ast.Node, error) {
	node, err := Parse(label, text, parser.WithMaxDepth(s.maxDepth))
	if err != nil {
		s.logger.Debug("parse failed", slog.String("label", label), slog.Any("error", err))
		return nil, err
	}
	return node, nil
}

// Evaluate evaluates an already parsed tree against the session environment.
func (s *Session) Evaluate(node ast.Node) (value.Number, error) {
	v, err := interp.Evaluate(node, s.env)
	if err != nil {
		s.logger.Debug("evaluation failed", slog.String("source", node.Span().Start.Name()), slog.Any("error", err))
		return value.Number{}, err
	}
	s.logger.Debug("evaluated", slog.String("source", node.Span().Start.Name()), slog.String("value", v.String()))
	return v, nil
}

// Tokenize lexes text into tokens ending with EOF.
func Tokenize(label, text string) ([]token.Token, error) {
	return lexer.Tokenize(token.NewSource(label, text))
}

// Parse lexes and parses text into an expression tree.
func Parse(label, text string, opts ...parser.Option) (ast.Node, error) {
	tokens, err := Tokenize(label, text)
	if err != nil {
		return nil, err
	}
	return parser.Parse(tokens, opts...)
}

// Eval evaluates text in a fresh session.
func Eval(label, text string) (value.Number, error) {
	return NewSession().EvaluateSource(label, text)
}
