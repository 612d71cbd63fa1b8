package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// ErrFailed reports that one or more submissions failed. Their diagnostics
// have already been rendered.
var ErrFailed = errors.New("evaluation failed")

// EvalOptions holds options for the eval command.
type EvalOptions struct {
	Files []string
}

// NewEvalCommand creates the eval command.
func NewEvalCommand() *cobra.Command {
	opts := &EvalOptions{}

	cmd := &cobra.Command{
		Use:   "eval [expression...]",
		Short: "Evaluate expressions",
		Long: `Evaluate a Tally expression and print its value.

Arguments are joined with spaces into a single expression. With --file, each
non-blank line of the file is evaluated in order against the same session,
so variables assigned on one line are visible on the next. Lines starting
with '#' are skipped. Without arguments or files, the expression is read
from standard input.

Bindings persist across invocations when the journal is enabled.`,
		Example: `  tally eval "2 + 3 * 4"
  tally eval VAR rate = 0.25
  tally eval --file budget.tl
  echo "2 ^ 10" | tally eval
  tally eval "10 / 4" -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(cmd, args, opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.Files, "file", "f", nil, "Evaluate each line of a file (repeatable)")
	_ = cmd.MarkFlagFilename("file", "tl", "txt")

	return cmd
}

func runEval(cmd *cobra.Command, args []string, opts *EvalOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	if _, err := cmdCtx.Engine.Restore(ctx); err != nil {
		cmdCtx.Logger.Warn("failed to restore bindings", "error", err)
	}

	r := cmdCtx.Renderer
	failed := 0

	switch {
	case len(args) > 0:
		if !submit(ctx, cmdCtx.Engine, r, "<args>", strings.Join(args, " ")) {
			failed++
		}
	case len(opts.Files) > 0:
		for _, path := range opts.Files {
			n, err := runFile(ctx, cmdCtx.Engine, r, path)
			if err != nil {
				return err
			}
			failed += n
		}
	default:
		in := cmd.InOrStdin()
		if isTerminal(in) {
			return fmt.Errorf("no expression given (pass one as arguments, use --file, or pipe it on stdin)")
		}
		content, err := io.ReadAll(in)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		if !submit(ctx, cmdCtx.Engine, r, "<stdin>", string(content)) {
			failed++
		}
	}

	if failed > 0 {
		return ErrFailed
	}
	return nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
