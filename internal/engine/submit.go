package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/leapstack-labs/tally/internal/state"
	"github.com/leapstack-labs/tally/pkg/ast"
	"github.com/leapstack-labs/tally/pkg/diag"
	"github.com/leapstack-labs/tally/pkg/value"
)

// Result is the outcome of one submission.
type Result struct {
	// ID is the journal entry, empty when the engine is not journaled.
	ID       string
	Label    string
	Source   string
	Value    value.Number
	Err      error
	Duration time.Duration
}

// OK reports whether the submission evaluated successfully.
func (r Result) OK() bool {
	return r.Err == nil
}

// Submit evaluates text in the session. Language errors are reported in
// Result.Err; journal failures are logged and do not fail the submission.
func (e *Engine) Submit(ctx context.Context, label, text string) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	res := Result{Label: label, Source: text}

	var assigned []string
	node, err := e.session.Parse(label, text)
	if err == nil {
		assigned = assignedNames(node)
		res.Value, err = e.session.Evaluate(node)
	}
	res.Err = err
	res.Duration = time.Since(start)

	e.logger.Debug("submission evaluated",
		slog.String("label", label),
		slog.Bool("ok", res.OK()),
		slog.Duration("duration", res.Duration))

	if e.store != nil {
		res.ID = e.journal(ctx, res, assigned)
	}
	return res
}

func (e *Engine) journal(ctx context.Context, res Result, assigned []string) string {
	sub := &state.Submission{
		Session: e.name,
		Label:   res.Label,
		Source:  res.Source,
	}
	if res.Err != nil {
		sub.ErrorMessage = res.Err.Error()
		sub.ErrorKind = "internal"
		if de, ok := diag.As(res.Err); ok {
			sub.ErrorKind = de.Kind.Slug()
			sub.ErrorMessage = de.Message
		}
	} else {
		sub.Value = res.Value.String()
		sub.Kind = res.Value.Kind().String()
	}

	if err := e.store.RecordSubmission(ctx, sub); err != nil {
		e.logger.Warn("failed to journal submission", slog.String("label", res.Label), slog.Any("error", err))
		return ""
	}

	if res.Err != nil {
		return sub.ID
	}
	env := e.session.Env()
	for _, name := range assigned {
		v, ok := env.Get(name)
		if !ok {
			continue
		}
		b := &state.Binding{Session: e.name, Name: name, Kind: v.Kind().String(), Value: v.String()}
		if err := e.store.SaveBinding(ctx, b); err != nil {
			e.logger.Warn("failed to save binding", slog.String("name", name), slog.Any("error", err))
		}
	}
	return sub.ID
}

// assignedNames returns the variable names bound anywhere in node, without
// duplicates.
func assignedNames(node ast.Node) []string {
	var names []string
	seen := make(map[string]bool)
	ast.Walk(node, func(n ast.Node) bool {
		if a, ok := n.(*ast.VariableAssign); ok && !seen[a.Name.Literal] {
			seen[a.Name.Literal] = true
			names = append(names, a.Name.Literal)
		}
		return true
	})
	return names
}
