// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/tally/internal/cli/config"
	"github.com/leapstack-labs/tally/internal/cli/output"
)

// CalcFile is the expression file created by SetupTestProject.
const CalcFile = "calc.tl"

// SetupTestProject creates a temporary project with a tally.yaml whose
// state lives inside the project, changes into it and loads its
// configuration. The configuration is reset when the test ends.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()

	cfg := `state_path: .tally/state.db
session: test
journal: true
repl:
  history_file: .tally/history
watch:
  debounce: 10ms
`
	if err := os.WriteFile(filepath.Join(tmpDir, "tally.yaml"), []byte(cfg), 0600); err != nil {
		t.Fatalf("failed to create tally.yaml: %v", err)
	}

	calc := `# running total
VAR a = 2
VAR b = a ^ 3

a + b
`
	if err := os.WriteFile(filepath.Join(tmpDir, CalcFile), []byte(calc), 0600); err != nil {
		t.Fatalf("failed to create %s: %v", CalcFile, err)
	}

	t.Chdir(tmpDir)
	t.Cleanup(config.ResetConfig)
	if _, err := config.LoadConfig("", nil); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	return tmpDir
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
// Output is captured in buffers for inspection.
func NewTestRenderer(mode output.Mode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// NewTestRendererText creates a new plain text test renderer.
func NewTestRendererText() *TestRenderer {
	return NewTestRenderer(output.ModeText, false)
}

// NewTestRendererJSON creates a new test renderer in JSON mode.
func NewTestRendererJSON() *TestRenderer {
	return NewTestRenderer(output.ModeJSON, false)
}

// Output returns the stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// Reset clears both output buffers.
func (tr *TestRenderer) Reset() {
	tr.Out.Reset()
	tr.ErrOut.Reset()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// Lines splits s into trimmed, non-empty lines.
func Lines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
