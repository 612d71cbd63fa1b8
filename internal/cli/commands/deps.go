package commands

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/leapstack-labs/tally/internal/deps"
	"github.com/leapstack-labs/tally/pkg/parser"
	"github.com/leapstack-labs/tally/pkg/tally"
	"github.com/spf13/cobra"
)

// DepsOptions holds options for the deps command.
type DepsOptions struct {
	Upstream   string
	Downstream string
}

// NewDepsCommand creates the deps command.
func NewDepsCommand() *cobra.Command {
	opts := &DepsOptions{}

	cmd := &cobra.Command{
		Use:   "deps <file>",
		Short: "Show which variables of a file are computed from which",
		Long: `Parse a file without evaluating it and show the dependencies between
the variables it assigns.

Variables read before the file assigns them are reported; they must
already be bound in the session when the file is evaluated. Circular
definitions through reassignment are reported as well.`,
		Example: `  tally deps budget.tl
  tally deps budget.tl --upstream total
  tally deps budget.tl --downstream rate -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeps(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.Upstream, "upstream", "", "List the variables this variable is computed from")
	cmd.Flags().StringVar(&opts.Downstream, "downstream", "", "List the variables computed from this variable")
	cmd.MarkFlagsMutuallyExclusive("upstream", "downstream")

	return cmd
}

// VariableView is the structured form of a variable in the graph.
type VariableView struct {
	Name      string   `json:"name" yaml:"name"`
	Lines     []int    `json:"lines" yaml:"lines"`
	DependsOn []string `json:"depends_on" yaml:"depends_on"`
	UsedBy    []string `json:"used_by" yaml:"used_by"`
	Level     *int     `json:"level,omitempty" yaml:"level,omitempty"`
}

// UnresolvedView is the structured form of a read before assignment.
type UnresolvedView struct {
	Name   string `json:"name" yaml:"name"`
	Line   int    `json:"line" yaml:"line"`
	Column int    `json:"column" yaml:"column"`
}

// DepsView is the structured output of the deps command.
type DepsView struct {
	Variables  []VariableView   `json:"variables" yaml:"variables"`
	Unresolved []UnresolvedView `json:"unresolved,omitempty" yaml:"unresolved,omitempty"`
	Cycle      []string         `json:"cycle,omitempty" yaml:"cycle,omitempty"`
}

func runDeps(cmd *cobra.Command, path string, opts *DepsOptions) error {
	cmdCtx := NewCommandContextWithoutEngine(cmd)
	r := cmdCtx.Renderer

	f, err := os.Open(path) //nolint:gosec // user-supplied path
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	stmts, err := readStatements(f)
	_ = f.Close()
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	parsed := make([]deps.Statement, 0, len(stmts))
	failed := 0
	for _, stmt := range stmts {
		node, err := tally.Parse(statementLabel(path, stmt.Line), stmt.Text, parser.WithMaxDepth(cmdCtx.Cfg.MaxDepth))
		if err != nil {
			_ = r.Error(err)
			failed++
			continue
		}
		parsed = append(parsed, deps.Statement{Line: stmt.Line, Node: node})
	}
	if failed > 0 {
		return ErrFailed
	}

	analysis := deps.Analyze(parsed)
	g := analysis.Graph

	if name := opts.Upstream + opts.Downstream; name != "" {
		if _, ok := g.Variable(name); !ok {
			return fmt.Errorf("%s does not assign %q", path, name)
		}
		names := g.Upstream(name)
		if opts.Downstream != "" {
			names = g.Downstream(name)
		}
		if r.Structured() {
			return r.Data(names)
		}
		for _, n := range names {
			r.Println(n)
		}
		return nil
	}

	view := DepsView{Cycle: g.FindCycle()}
	levelOf := map[string]int{}
	if levels, err := g.Levels(); err == nil {
		for i, level := range levels {
			for _, name := range level {
				levelOf[name] = i
			}
		}
	}
	for _, v := range g.Variables() {
		vv := VariableView{
			Name:      v.Name,
			Lines:     v.Lines,
			DependsOn: g.Dependencies(v.Name),
			UsedBy:    g.Dependents(v.Name),
		}
		if level, ok := levelOf[v.Name]; ok {
			vv.Level = &level
		}
		view.Variables = append(view.Variables, vv)
	}
	for _, u := range analysis.Unresolved {
		view.Unresolved = append(view.Unresolved, UnresolvedView{
			Name:   u.Name,
			Line:   u.Line,
			Column: u.Span.Start.Column + 1,
		})
	}

	if r.Structured() {
		return r.Data(view)
	}

	rows := make([][]string, len(view.Variables))
	for i, v := range view.Variables {
		level := "-"
		if v.Level != nil {
			level = strconv.Itoa(*v.Level)
		}
		rows[i] = []string{v.Name, joinInts(v.Lines), strings.Join(v.DependsOn, ", "), strings.Join(v.UsedBy, ", "), level}
	}
	if err := r.Table([]string{"Variable", "Lines", "Depends On", "Used By", "Level"}, rows); err != nil {
		return err
	}

	for _, u := range view.Unresolved {
		r.Info("%s:%d: '%s' is read before the file assigns it", path, u.Line, u.Name)
	}
	if view.Cycle != nil {
		r.Info("circular definition: %s", strings.Join(view.Cycle, " -> "))
	}
	return nil
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}
