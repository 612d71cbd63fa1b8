package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/leapstack-labs/tally/internal/cli/output"
	"github.com/leapstack-labs/tally/internal/engine"
)

// statement is one expression read from a file.
type statement struct {
	Line int
	Text string
}

// readStatements splits r into one statement per non-blank line. Lines
// whose first non-space character is '#' are skipped.
func readStatements(r io.Reader) ([]statement, error) {
	var stmts []statement
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		stmts = append(stmts, statement{Line: line, Text: text})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return stmts, nil
}

// statementLabel names a statement in diagnostics as path:line.
func statementLabel(path string, line int) string {
	return fmt.Sprintf("%s:%d", path, line)
}

// runFile evaluates every statement of the file at path in order and
// renders each result. It returns the number of failed statements.
func runFile(ctx context.Context, eng *engine.Engine, r *output.Renderer, path string) (int, error) {
	f, err := os.Open(path) //nolint:gosec // user-supplied path
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	stmts, err := readStatements(f)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", path, err)
	}

	failed := 0
	for _, stmt := range stmts {
		if !submit(ctx, eng, r, statementLabel(path, stmt.Line), stmt.Text) {
			failed++
		}
	}
	return failed, nil
}

// submit evaluates one submission and renders its outcome. It reports
// whether evaluation succeeded.
func submit(ctx context.Context, eng *engine.Engine, r *output.Renderer, label, text string) bool {
	res := eng.Submit(ctx, label, text)
	if res.Err != nil {
		_ = r.Error(res.Err)
		return false
	}
	_ = r.Result(label, res.Value)
	return true
}
