package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCLIDocs(t *testing.T) {
	outDir := t.TempDir()

	require.NoError(t, generateCLIDocs(outDir))

	index, err := os.ReadFile(filepath.Join(outDir, "index.md"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "# CLI Reference")
	assert.Contains(t, string(index), "[`eval`](/cli/eval)")
	assert.Contains(t, string(index), "`TALLY_STATE_PATH`")

	eval, err := os.ReadFile(filepath.Join(outDir, "eval.md"))
	require.NoError(t, err)
	assert.Contains(t, string(eval), "tally eval [expression...]")
	assert.Contains(t, string(eval), "`--file`")
	assert.Contains(t, string(eval), "## Global Options")
	assert.Equal(t, 0, strings.Count(string(eval), "```")%2, "unbalanced code fences")

	for _, name := range []string{"repl", "watch", "deps", "tokens", "parse", "vars", "history", "init", "version", "completion"} {
		assert.FileExists(t, filepath.Join(outDir, name+".md"))
	}
}

func TestDedent(t *testing.T) {
	in := "  tally eval 1\n\n    tally eval 2\n"
	assert.Equal(t, "tally eval 1\n\n  tally eval 2", dedent(in))
	assert.Equal(t, "flat", dedent("flat\n"))
}

func TestCleanDescription(t *testing.T) {
	assert.Equal(t, "Output format (auto|text)", cleanDescription("output format\n  (auto|text)"))
	assert.Equal(t, "", cleanDescription(""))
}

func TestMarkdownTable(t *testing.T) {
	w := NewMarkdownWriter()
	w.Table([]string{"A", "B"}, [][]string{{"1", "2"}})

	out := string(w.Bytes())
	assert.Contains(t, strings.ToLower(out), "| a | b |")
	assert.Contains(t, out, "| 1 | 2 |")
}
