package output

import (
	"fmt"

	"github.com/leapstack-labs/tally/pkg/diag"
	"github.com/leapstack-labs/tally/pkg/value"
)

// ResultView is the structured form of a successful evaluation.
type ResultView struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
	Kind  string `json:"kind" yaml:"kind"`
}

// ErrorView is the structured form of a failed evaluation.
type ErrorView struct {
	Label   string        `json:"label,omitempty" yaml:"label,omitempty"`
	Kind    string        `json:"kind" yaml:"kind"`
	Name    string        `json:"name" yaml:"name"`
	Message string        `json:"message" yaml:"message"`
	Start   *LocationView `json:"start,omitempty" yaml:"start,omitempty"`
	End     *LocationView `json:"end,omitempty" yaml:"end,omitempty"`
}

// LocationView is a 1-based line and column.
type LocationView struct {
	Line   int `json:"line" yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

// NewErrorView converts err into its structured form.
func NewErrorView(err error) ErrorView {
	de, ok := diag.As(err)
	if !ok {
		return ErrorView{Kind: "internal", Name: "Error", Message: err.Error()}
	}
	start, end := de.Span.Start, de.Span.End
	return ErrorView{
		Label:   start.Name(),
		Kind:    de.Kind.Slug(),
		Name:    de.Kind.String(),
		Message: de.Message,
		Start:   &LocationView{Line: start.Line + 1, Column: start.Column + 1},
		End:     &LocationView{Line: end.Line + 1, Column: end.Column + 1},
	}
}

// Result writes the value of a successful evaluation.
func (r *Renderer) Result(label string, v value.Number) error {
	if r.Structured() {
		return r.Data(ResultView{Label: label, Value: v.String(), Kind: v.Kind().String()})
	}
	_, err := fmt.Fprintln(r.out, r.styles.value.Render(v.String()))
	return err
}

// Error writes a failed evaluation. Language errors are shown with their
// caret excerpt; structured modes write an ErrorView to the result writer.
func (r *Renderer) Error(err error) error {
	if r.Structured() {
		return r.Data(map[string]ErrorView{"error": NewErrorView(err)})
	}

	de, ok := diag.As(err)
	if !ok {
		_, werr := fmt.Fprintf(r.errOut, "%s %v\n", r.styles.errorHeader.Render("Error:"), err)
		return werr
	}

	start, end := de.Span.Start, de.Span.End
	_, _ = fmt.Fprintf(r.errOut, "%s %s\n", r.styles.errorHeader.Render(de.Kind.String()+":"), de.Message)
	_, _ = fmt.Fprintln(r.errOut, r.styles.location.Render(fmt.Sprintf(
		"File %s, line %d, column %d to %d, column %d",
		start.Name(), start.Line+1, start.Column+1, end.Line+1, end.Column+1)))
	if start.Source != nil {
		_, _ = fmt.Fprintln(r.errOut)
		_, _ = fmt.Fprintln(r.errOut, diag.Render(start.Source.Text, start, end))
	}
	return nil
}
