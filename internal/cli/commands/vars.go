package commands

import (
	"github.com/leapstack-labs/tally/internal/cli/output"
	"github.com/leapstack-labs/tally/internal/engine"
	"github.com/spf13/cobra"
)

// NewVarsCommand creates the vars command.
func NewVarsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "vars",
		Short: "List the variables of a session",
		Long: `List the variables bound in a session.

Bindings are restored from the journal first, so this shows what a new
REPL on the same session would start with.`,
		Example: `  tally vars
  tally vars --session budget -o json`,
		Args: cobra.NoArgs,
		RunE: runVars,
	}
}

// BindingView is the structured form of a binding.
type BindingView struct {
	Name  string `json:"name" yaml:"name"`
	Kind  string `json:"kind" yaml:"kind"`
	Value string `json:"value" yaml:"value"`
}

func runVars(cmd *cobra.Command, _ []string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if _, err := cmdCtx.Engine.Restore(cmd.Context()); err != nil {
		return err
	}
	return renderBindings(cmdCtx.Renderer, cmdCtx.Engine.Bindings())
}

func renderBindings(r *output.Renderer, bindings []engine.Binding) error {
	views := make([]BindingView, len(bindings))
	for i, b := range bindings {
		views[i] = BindingView{Name: b.Name, Kind: b.Value.Kind().String(), Value: b.Value.String()}
	}

	if r.Structured() {
		return r.Data(views)
	}

	rows := make([][]string, len(views))
	for i, v := range views {
		rows[i] = []string{v.Name, v.Kind, v.Value}
	}
	return r.Table([]string{"Name", "Kind", "Value"}, rows)
}
