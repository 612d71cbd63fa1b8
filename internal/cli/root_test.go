package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/tally/internal/cli/commands"
	"github.com/leapstack-labs/tally/internal/cli/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootSubcommands(t *testing.T) {
	root := NewRootCmd()

	want := []string{"version", "eval", "repl", "watch", "deps", "tokens", "parse", "vars", "history", "init", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}

	for _, flag := range []string{"config", "session", "state", "journal", "max-depth", "prompt", "history-file", "verbose", "output"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestRootEvalWithFlags(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Cleanup(config.ResetConfig)

	state := filepath.Join(dir, "custom", "state.db")
	_, _, err := runRoot(t, "--state", state, "--session", "s1", "eval", "VAR x = 7")
	require.NoError(t, err)
	assert.FileExists(t, state)

	stdout, _, err := runRoot(t, "--state", state, "-s", "s1", "eval", "x * 6")
	require.NoError(t, err)
	assert.Equal(t, "42\n", stdout)

	// Sessions do not share variables.
	_, stderr, err := runRoot(t, "--state", state, "-s", "s2", "eval", "x")
	require.ErrorIs(t, err, commands.ErrFailed)
	assert.Contains(t, stderr, "'x' is not defined")
}

func TestRootNoJournal(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Cleanup(config.ResetConfig)

	_, _, err := runRoot(t, "--journal=false", "eval", "VAR x = 1")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, config.DefaultStateFile))
	assert.True(t, os.IsNotExist(err), "state database should not be created")
}

func TestRootMaxDepth(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Cleanup(config.ResetConfig)

	_, stderr, err := runRoot(t, "--journal=false", "--max-depth", "2", "eval", "((((1))))")
	require.ErrorIs(t, err, commands.ErrFailed)
	assert.Contains(t, stderr, "Maximum nesting depth exceeded")
}

func TestRootInvalidConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Cleanup(config.ResetConfig)

	_, _, err := runRoot(t, "--output", "xml", "eval", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestCompletionCommand(t *testing.T) {
	stdout, _, err := runRoot(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, stdout, "tally")

	_, _, err = runRoot(t, "completion", "tcsh")
	require.Error(t, err)
}
