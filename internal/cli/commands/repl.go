package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/tally/internal/cli/output"
	"github.com/leapstack-labs/tally/internal/engine"
	"github.com/spf13/cobra"
)

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session",
		Long: `Start an interactive Tally session.

Each line is evaluated as soon as it is entered. Variables stay bound for
the rest of the session and, when the journal is enabled, are restored the
next time the session is opened.`,
		Example: `  tally repl
  tally repl --session budget
  tally repl --prompt "calc> "`,
		Args: cobra.NoArgs,
		RunE: runREPL,
	}
}

func runREPL(cmd *cobra.Command, _ []string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	restored, err := cmdCtx.Engine.Restore(ctx)
	if err != nil {
		cmdCtx.Logger.Warn("failed to restore bindings", "error", err)
	}

	historyFile := cmdCtx.Cfg.REPL.HistoryFile
	if historyFile != "" {
		if err := os.MkdirAll(filepath.Dir(historyFile), 0750); err != nil {
			return fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	sess := newREPLSession(cmdCtx.Engine, cmdCtx.Renderer, cmd.OutOrStdout(), cmd.ErrOrStderr())

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          cmdCtx.Cfg.REPL.Prompt,
		HistoryFile:     historyFile,
		AutoComplete:    sess.completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	// Print welcome message
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Tally REPL (session: %s", cmdCtx.Engine.Session())
	if restored > 0 {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), ", %d bindings restored", restored)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), ")")
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		if quit := sess.handleLine(ctx, line); quit {
			break
		}
	}

	return nil
}

// replSession evaluates REPL input against an engine.
type replSession struct {
	eng    *engine.Engine
	r      *output.Renderer
	out    io.Writer
	errOut io.Writer
}

func newREPLSession(eng *engine.Engine, r *output.Renderer, out, errOut io.Writer) *replSession {
	return &replSession{eng: eng, r: r, out: out, errOut: errOut}
}

// handleLine processes one line of input and reports whether the REPL
// should exit.
func (s *replSession) handleLine(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	if strings.HasPrefix(line, ".") {
		return s.handleDotCommand(ctx, line)
	}

	submit(ctx, s.eng, s.r, "<stdin>", line)
	return false
}

func (s *replSession) handleDotCommand(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(s.out)

	case ".vars":
		if err := renderBindings(s.r, s.eng.Bindings()); err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
		}

	case ".history":
		if !s.eng.Journaled() {
			_, _ = fmt.Fprintln(s.errOut, "History is unavailable: the journal is disabled")
			break
		}
		subs, err := s.eng.History(ctx, 20)
		if err == nil {
			err = renderHistory(s.r, subs)
		}
		if err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
		}

	case ".reset":
		if err := s.eng.Reset(ctx); err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
			break
		}
		_, _ = fmt.Fprintln(s.out, "Session reset")

	case ".clear":
		_, _ = fmt.Fprint(s.out, "\033[H\033[2J")

	default:
		_, _ = fmt.Fprintf(s.errOut, "Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help           Show this help message
  .vars           List variables of the session
  .history        Show recent submissions
  .reset          Forget all variables of the session
  .clear          Clear the screen
  .quit / .exit   Exit the REPL

Syntax:
  2 + 3 * 4           arithmetic with + - * / and ^ (power)
  VAR name = expr     bind a variable; the value is printed
  name                use a variable; null is predefined as 0

Tips:
  - Use arrow keys to navigate history
  - Tab completion works for commands and variable names
`
	_, _ = fmt.Fprintln(w, help)
}

// completer completes dot-commands, the VAR keyword and the names bound in
// the session at the time of completion.
func (s *replSession) completer() *readline.PrefixCompleter {
	names := readline.PcItemDynamic(func(string) []string {
		bindings := s.eng.Bindings()
		out := make([]string, len(bindings))
		for i, b := range bindings {
			out[i] = b.Name
		}
		return out
	})

	return readline.NewPrefixCompleter(
		readline.PcItem("VAR"),
		names,
		readline.PcItem(".help"),
		readline.PcItem(".vars"),
		readline.PcItem(".history"),
		readline.PcItem(".reset"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}
