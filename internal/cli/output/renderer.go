// Package output renders command results for terminals and for scripts.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/muesli/termenv"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Mode selects how results are written.
type Mode string

// Output modes.
const (
	ModeAuto Mode = "auto"
	ModeText Mode = "text"
	ModeJSON Mode = "json"
	ModeYAML Mode = "yaml"
)

// Renderer writes results to out and diagnostics to errOut.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   Mode
	isTTY  bool
	styles styles
}

type styles struct {
	errorHeader lipgloss.Style
	location    lipgloss.Style
	value       lipgloss.Style
	muted       lipgloss.Style
}

// NewRenderer creates a renderer, detecting whether out is a terminal.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	return NewRendererWithTTY(out, errOut, isTerminal(out), mode)
}

// NewRendererWithTTY creates a renderer with an explicit terminal state.
// Styling is only applied when isTTY is true.
func NewRendererWithTTY(out, errOut io.Writer, isTTY bool, mode Mode) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}

	lr := lipgloss.NewRenderer(out)
	if isTTY {
		lr.SetColorProfile(termenv.EnvColorProfile())
	} else {
		lr.SetColorProfile(termenv.Ascii)
	}

	return &Renderer{
		out:    out,
		errOut: errOut,
		mode:   mode,
		isTTY:  isTTY,
		styles: styles{
			errorHeader: lr.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
			location:    lr.NewStyle().Faint(true),
			value:       lr.NewStyle().Bold(true),
			muted:       lr.NewStyle().Foreground(lipgloss.Color("8")),
		},
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Mode returns the effective output mode; auto resolves to text.
func (r *Renderer) Mode() Mode {
	if r.mode == ModeAuto {
		return ModeText
	}
	return r.mode
}

// IsTTY reports whether output is going to a terminal.
func (r *Renderer) IsTTY() bool {
	return r.isTTY
}

// Structured reports whether the effective mode is machine-readable.
func (r *Renderer) Structured() bool {
	m := r.Mode()
	return m == ModeJSON || m == ModeYAML
}

// Out returns the result writer.
func (r *Renderer) Out() io.Writer {
	return r.out
}

// ErrOut returns the diagnostic writer.
func (r *Renderer) ErrOut() io.Writer {
	return r.errOut
}

// Println writes a line to the result writer.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.out, a...)
}

// Printf writes formatted text to the result writer.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.out, format, a...)
}

// Info writes a status line to the diagnostic writer. Structured modes
// suppress it so stdout stays parseable.
func (r *Renderer) Info(format string, a ...any) {
	if r.Structured() {
		return
	}
	_, _ = fmt.Fprintln(r.errOut, r.styles.muted.Render(fmt.Sprintf(format, a...)))
}

// Data writes v as JSON or YAML, or with fmt in text mode.
func (r *Renderer) Data(v any) error {
	switch r.Mode() {
	case ModeJSON:
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case ModeYAML:
		enc := yaml.NewEncoder(r.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		_, err := fmt.Fprintln(r.out, v)
		return err
	}
}

// Table writes rows under headers. Structured modes emit a list of objects
// keyed by header.
func (r *Renderer) Table(headers []string, rows [][]string) error {
	if r.Structured() {
		records := make([]map[string]string, 0, len(rows))
		for _, row := range rows {
			rec := make(map[string]string, len(headers))
			for i, h := range headers {
				if i < len(row) {
					rec[h] = row[i]
				}
			}
			records = append(records, rec)
		}
		return r.Data(records)
	}

	if len(rows) == 0 {
		_, _ = fmt.Fprintln(r.out, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	if r.isTTY {
		t.SetStyle(table.StyleLight)
	} else {
		t.SetStyle(table.StyleDefault)
	}

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	t.AppendHeader(header)

	for _, row := range rows {
		tr := make(table.Row, len(row))
		for i, cell := range row {
			tr[i] = cell
		}
		t.AppendRow(tr)
	}

	t.Render()
	return nil
}
