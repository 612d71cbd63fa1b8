package commands

import (
	"errors"
	"time"

	"github.com/leapstack-labs/tally/internal/cli/output"
	"github.com/leapstack-labs/tally/internal/state"
	"github.com/spf13/cobra"
)

// ErrNoJournal is returned by commands that need the journal when it is
// disabled.
var ErrNoJournal = errors.New("the journal is disabled (set journal: true and a state_path)")

// HistoryOptions holds options for the history command.
type HistoryOptions struct {
	Limit int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent submissions of a session",
		Long: `Show the submissions recorded in the journal, newest first.

Failed submissions are listed with the kind of error they raised.`,
		Example: `  tally history
  tally history --limit 5 -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Maximum number of submissions to show (0 for all)")

	return cmd
}

// SubmissionView is the structured form of a journaled submission.
type SubmissionView struct {
	ID        string `json:"id" yaml:"id"`
	Label     string `json:"label" yaml:"label"`
	Source    string `json:"source" yaml:"source"`
	Value     string `json:"value,omitempty" yaml:"value,omitempty"`
	Kind      string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
	CreatedAt string `json:"created_at" yaml:"created_at"`
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if !cmdCtx.Engine.Journaled() {
		return ErrNoJournal
	}

	subs, err := cmdCtx.Engine.History(cmd.Context(), opts.Limit)
	if err != nil {
		return err
	}
	return renderHistory(cmdCtx.Renderer, subs)
}

func renderHistory(r *output.Renderer, subs []*state.Submission) error {
	views := make([]SubmissionView, len(subs))
	for i, s := range subs {
		v := SubmissionView{
			ID:        s.ID,
			Label:     s.Label,
			Source:    s.Source,
			CreatedAt: s.CreatedAt.Format(time.RFC3339),
		}
		if s.Succeeded() {
			v.Value = s.Value
			v.Kind = s.Kind
		} else {
			v.Error = s.ErrorKind + ": " + s.ErrorMessage
		}
		views[i] = v
	}

	if r.Structured() {
		return r.Data(views)
	}

	rows := make([][]string, len(views))
	for i, v := range views {
		result := v.Value
		if v.Error != "" {
			result = v.Error
		}
		rows[i] = []string{v.CreatedAt, v.Label, v.Source, result}
	}
	return r.Table([]string{"Time", "Label", "Source", "Result"}, rows)
}
