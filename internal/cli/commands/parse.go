package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/tally/pkg/format"
	"github.com/leapstack-labs/tally/pkg/parser"
	"github.com/leapstack-labs/tally/pkg/tally"
	"github.com/spf13/cobra"
)

// ParseOptions holds options for the parse command.
type ParseOptions struct {
	Format string
}

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	opts := &ParseOptions{}

	cmd := &cobra.Command{
		Use:   "parse <expression>...",
		Short: "Show the syntax tree of an expression",
		Long: `Parse an expression without evaluating it and print its syntax tree.

Formats:
  sexpr   - prefix notation, e.g. (+ 1 (* 2 3))
  source  - fully parenthesized source, e.g. 1 + (2 * 3)
  tree    - the node tree with spans (always used with -o json|yaml)`,
		Example: `  tally parse "1 + 2 * 3"
  tally parse --format source "-2 ^ 2"
  tally parse -o yaml "VAR x = 1"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Format, "format", "sexpr", "Output format: sexpr, source, tree")
	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"sexpr", "source", "tree"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runParse(cmd *cobra.Command, args []string, opts *ParseOptions) error {
	cmdCtx := NewCommandContextWithoutEngine(cmd)
	r := cmdCtx.Renderer

	switch opts.Format {
	case "sexpr", "source", "tree":
	default:
		return fmt.Errorf("unknown format %q (use sexpr, source or tree)", opts.Format)
	}

	node, err := tally.Parse("<args>", strings.Join(args, " "), parser.WithMaxDepth(cmdCtx.Cfg.MaxDepth))
	if err != nil {
		_ = r.Error(err)
		return ErrFailed
	}

	if r.Structured() {
		return r.Data(format.Tree(node))
	}

	switch opts.Format {
	case "tree":
		return writeYAML(r.Out(), format.Tree(node))
	case "source":
		r.Println(format.Source(node))
	default:
		r.Println(format.Sexpr(node))
	}
	return nil
}
