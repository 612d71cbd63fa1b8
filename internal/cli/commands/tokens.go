package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/tally/pkg/tally"
	"github.com/leapstack-labs/tally/pkg/token"
	"github.com/spf13/cobra"
)

// NewTokensCommand creates the tokens command.
func NewTokensCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <expression>...",
		Short: "Show the tokens of an expression",
		Long: `Show the tokens the lexer produces for an expression.

The trailing EOF token is included. Lexical errors are reported with the
usual caret excerpt.`,
		Example: `  tally tokens "VAR a = 1.5e3"
  tally tokens -o json "2 ^ -1"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runTokens,
	}
}

// TokenView is the structured form of a token.
type TokenView struct {
	Kind    string `json:"kind" yaml:"kind"`
	Literal string `json:"literal,omitempty" yaml:"literal,omitempty"`
	Start   string `json:"start" yaml:"start"`
	End     string `json:"end" yaml:"end"`
}

func runTokens(cmd *cobra.Command, args []string) error {
	cmdCtx := NewCommandContextWithoutEngine(cmd)
	r := cmdCtx.Renderer

	toks, err := tally.Tokenize("<args>", strings.Join(args, " "))
	if err != nil {
		_ = r.Error(err)
		return ErrFailed
	}

	views := make([]TokenView, len(toks))
	for i, tok := range toks {
		views[i] = TokenView{
			Kind:    tok.Kind.String(),
			Literal: tok.Literal,
			Start:   location(tok.Span.Start),
			End:     location(tok.Span.End),
		}
	}

	if r.Structured() {
		return r.Data(views)
	}

	rows := make([][]string, len(views))
	for i, v := range views {
		rows[i] = []string{v.Kind, v.Literal, v.Start, v.End}
	}
	return r.Table([]string{"Kind", "Literal", "Start", "End"}, rows)
}

// location formats a position as 1-based line:column.
func location(p token.Position) string {
	return fmt.Sprintf("%d:%d", p.Line+1, p.Column+1)
}
