package engine

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/tally/internal/state"
	"github.com/leapstack-labs/tally/internal/testutil"
	"github.com/leapstack-labs/tally/pkg/diag"
	"github.com/leapstack-labs/tally/pkg/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *state.SQLiteStore {
	t.Helper()
	store := state.NewSQLiteStore(testutil.NewTestLogger(t))
	require.NoError(t, store.Open(":memory:"))
	require.NoError(t, store.Migrate())
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSubmitWithoutJournal(t *testing.T) {
	eng, err := New(Config{Logger: testutil.NewTestLogger(t)})
	require.NoError(t, err)
	defer func() { _ = eng.Close() }()

	ctx := context.Background()
	assert.False(t, eng.Journaled())
	assert.Equal(t, DefaultSession, eng.Session())

	res := eng.Submit(ctx, "<stdin>", "VAR x = 2 + 3 * 4")
	require.True(t, res.OK(), "unexpected error: %v", res.Err)
	assert.Empty(t, res.ID)
	assert.Equal(t, "14", res.Value.String())

	res = eng.Submit(ctx, "<stdin>", "x / 4")
	require.NoError(t, res.Err)
	assert.Equal(t, "3.5", res.Value.String())

	res = eng.Submit(ctx, "<stdin>", "1 / 0")
	require.Error(t, res.Err)
	assert.True(t, diag.IsKind(res.Err, diag.RuntimeError))

	history, err := eng.History(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestSubmitJournalsAndSnapshots(t *testing.T) {
	store := newTestStore(t)
	eng, err := New(Config{Session: "calc", Store: store, Logger: testutil.NewTestLogger(t)})
	require.NoError(t, err)
	ctx := context.Background()

	res := eng.Submit(ctx, "a.tl", "VAR rate = VAR base = 0.5")
	require.NoError(t, res.Err)
	assert.NotEmpty(t, res.ID)

	res = eng.Submit(ctx, "a.tl", "rate / 0")
	require.Error(t, res.Err)

	res = eng.Submit(ctx, "a.tl", "1 @ 2")
	require.Error(t, res.Err)

	history, err := eng.History(ctx, 0)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "lex", history[0].ErrorKind)
	assert.Equal(t, "runtime", history[1].ErrorKind)
	assert.Equal(t, "Division by zero", history[1].ErrorMessage)
	assert.Equal(t, "0.5", history[2].Value)
	assert.Equal(t, "float", history[2].Kind)

	bindings, err := store.LoadBindings(ctx, "calc")
	require.NoError(t, err)
	require.Len(t, bindings, 2)
	assert.Equal(t, "base", bindings[0].Name)
	assert.Equal(t, "rate", bindings[1].Name)
}

func TestRestore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.db")
	ctx := context.Background()

	first, err := New(Config{StatePath: path, Session: "work"})
	require.NoError(t, err)
	require.True(t, first.Journaled())
	require.NoError(t, first.Submit(ctx, "<stdin>", "VAR n = 2 ^ 10").Err)
	require.NoError(t, first.Submit(ctx, "<stdin>", "VAR half = n / 2").Err)
	require.NoError(t, first.Close())

	second, err := New(Config{StatePath: path, Session: "work"})
	require.NoError(t, err)
	defer func() { _ = second.Close() }()

	res := second.Submit(ctx, "<stdin>", "n")
	require.Error(t, res.Err, "bindings are not visible before Restore")

	count, err := second.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	res = second.Submit(ctx, "<stdin>", "n + half")
	require.NoError(t, res.Err)
	assert.True(t, value.Float(1536).Equal(res.Value))

	other, err := New(Config{StatePath: path, Session: "elsewhere"})
	require.NoError(t, err)
	defer func() { _ = other.Close() }()
	count, err = other.Restore(ctx)
	require.NoError(t, err)
	assert.Zero(t, count, "sessions are isolated")
}

func TestRestoreRejectsCorruptBinding(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveBinding(ctx, &state.Binding{Session: DefaultSession, Name: "x", Kind: "matrix", Value: "1"}))

	eng, err := New(Config{Store: store})
	require.NoError(t, err)
	_, err = eng.Restore(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to restore x")
}

func TestReset(t *testing.T) {
	store := newTestStore(t)
	eng, err := New(Config{Store: store})
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, eng.Submit(ctx, "<stdin>", "VAR x = 1").Err)
	require.NoError(t, eng.Reset(ctx))

	assert.Error(t, eng.Submit(ctx, "<stdin>", "x").Err)
	bindings, err := store.LoadBindings(ctx, DefaultSession)
	require.NoError(t, err)
	assert.Empty(t, bindings)

	history, err := eng.History(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, history, 1, "only the submission after the reset remains")
}

func TestBindings(t *testing.T) {
	eng, err := New(Config{})
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, eng.Submit(ctx, "<stdin>", "VAR b = 2").Err)
	require.NoError(t, eng.Submit(ctx, "<stdin>", "VAR a = 1.5").Err)

	bindings := eng.Bindings()
	names := make([]string, len(bindings))
	for i, b := range bindings {
		names[i] = b.Name
	}
	assert.Equal(t, []string{"a", "b", "null"}, names)
	assert.True(t, value.Float(1.5).Equal(bindings[0].Value))
}

func TestSubmitIsSerialized(t *testing.T) {
	eng, err := New(Config{})
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, eng.Submit(ctx, "<stdin>", "VAR n = 0").Err)

	done := make(chan struct{})
	for range 8 {
		go func() {
			defer func() { done <- struct{}{} }()
			for range 50 {
				eng.Submit(ctx, "<stdin>", "VAR n = n + 1")
			}
		}()
	}
	for range 8 {
		<-done
	}

	res := eng.Submit(ctx, "<stdin>", "n")
	require.NoError(t, res.Err)
	assert.Equal(t, "400", res.Value.String())
}

func TestJournalFailureIsLogged(t *testing.T) {
	store := state.NewSQLiteStore(nil) // never opened
	logger, buf := testutil.NewCaptureLogger()

	eng, err := New(Config{Store: store, Logger: logger})
	require.NoError(t, err)

	res := eng.Submit(context.Background(), "<stdin>", "1 + 1")
	require.NoError(t, res.Err, "journal failures do not fail the submission")
	assert.Empty(t, res.ID)
	assert.Contains(t, buf.String(), "failed to journal submission")
}
