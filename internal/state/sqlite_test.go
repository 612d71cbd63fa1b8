package state

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/leapstack-labs/tally/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore(testutil.NewTestLogger(t))
	require.NoError(t, store.Open(":memory:"))
	require.NoError(t, store.Migrate())
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_OpenClose(t *testing.T) {
	store := NewSQLiteStore(nil)
	require.NoError(t, store.Open(":memory:"))
	assert.Equal(t, ":memory:", store.Path())
	require.NoError(t, store.Close())
}

func TestSQLiteStore_Migrate(t *testing.T) {
	store := setupTestStore(t)

	version, err := store.GetMigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	// Re-running is a no-op.
	require.NoError(t, store.Migrate())

	for _, table := range []string{"submissions", "bindings"} {
		rows, err := store.db.Query("SELECT 1 FROM " + table + " LIMIT 1")
		require.NoError(t, err, "table %s should exist", table)
		_ = rows.Close()
	}
}

func TestSQLiteStore_NotOpened(t *testing.T) {
	store := NewSQLiteStore(nil)
	ctx := context.Background()

	assert.ErrorIs(t, store.Migrate(), errNotOpened)
	assert.ErrorIs(t, store.RecordSubmission(ctx, &Submission{}), errNotOpened)
	_, err := store.ListSubmissions(ctx, "default", 0)
	assert.ErrorIs(t, err, errNotOpened)
	_, err = store.GetSubmission(ctx, "x")
	assert.ErrorIs(t, err, errNotOpened)
	assert.ErrorIs(t, store.SaveBinding(ctx, &Binding{}), errNotOpened)
	_, err = store.LoadBindings(ctx, "default")
	assert.ErrorIs(t, err, errNotOpened)
	assert.ErrorIs(t, store.ClearSession(ctx, "default"), errNotOpened)
	assert.NoError(t, store.Close())
}

func TestSQLiteStore_Submissions(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	ok := &Submission{Session: "default", Label: "<stdin>", Source: "2 + 3", Value: "5", Kind: "int"}
	require.NoError(t, store.RecordSubmission(ctx, ok))
	assert.NotEmpty(t, ok.ID, "ID is generated")
	assert.False(t, ok.CreatedAt.IsZero(), "CreatedAt is stamped")

	failed := &Submission{
		Session:      "default",
		Label:        "<stdin>",
		Source:       "1 / 0",
		ErrorKind:    "runtime",
		ErrorMessage: "Division by zero",
	}
	require.NoError(t, store.RecordSubmission(ctx, failed))
	require.NoError(t, store.RecordSubmission(ctx, &Submission{Session: "other", Label: "f", Source: "1"}))

	subs, err := store.ListSubmissions(ctx, "default", 0)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, failed.ID, subs[0].ID, "newest first")
	assert.False(t, subs[0].Succeeded())
	assert.Equal(t, "Division by zero", subs[0].ErrorMessage)
	assert.Empty(t, subs[0].Value)
	assert.True(t, subs[1].Succeeded())
	assert.Equal(t, "5", subs[1].Value)

	limited, err := store.ListSubmissions(ctx, "default", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	got, err := store.GetSubmission(ctx, ok.ID)
	require.NoError(t, err)
	assert.Equal(t, "2 + 3", got.Source)
	assert.WithinDuration(t, ok.CreatedAt, got.CreatedAt, time.Millisecond)

	_, err = store.GetSubmission(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_Bindings(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveBinding(ctx, &Binding{Session: "default", Name: "y", Kind: "float", Value: "2.5"}))
	require.NoError(t, store.SaveBinding(ctx, &Binding{Session: "default", Name: "x", Kind: "int", Value: "1"}))
	require.NoError(t, store.SaveBinding(ctx, &Binding{Session: "default", Name: "x", Kind: "int", Value: "2"}))
	require.NoError(t, store.SaveBinding(ctx, &Binding{Session: "other", Name: "x", Kind: "int", Value: "9"}))

	bindings, err := store.LoadBindings(ctx, "default")
	require.NoError(t, err)
	require.Len(t, bindings, 2)
	assert.Equal(t, "x", bindings[0].Name, "ordered by name")
	assert.Equal(t, "2", bindings[0].Value, "upsert replaces the value")
	assert.Equal(t, "y", bindings[1].Name)
	assert.Equal(t, "float", bindings[1].Kind)
}

func TestSQLiteStore_ClearSession(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordSubmission(ctx, &Submission{Session: "default", Label: "l", Source: "VAR x = 1", Value: "1", Kind: "int"}))
	require.NoError(t, store.SaveBinding(ctx, &Binding{Session: "default", Name: "x", Kind: "int", Value: "1"}))
	require.NoError(t, store.SaveBinding(ctx, &Binding{Session: "keep", Name: "x", Kind: "int", Value: "1"}))

	require.NoError(t, store.ClearSession(ctx, "default"))

	subs, err := store.ListSubmissions(ctx, "default", 0)
	require.NoError(t, err)
	assert.Empty(t, subs)
	bindings, err := store.LoadBindings(ctx, "default")
	require.NoError(t, err)
	assert.Empty(t, bindings)

	kept, err := store.LoadBindings(ctx, "keep")
	require.NoError(t, err)
	assert.Len(t, kept, 1, "other sessions are untouched")
}

func newMockStore(t *testing.T) (*SQLiteStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLiteStoreWithDB(db, testutil.NewTestLogger(t)), mock
}

func TestSQLiteStore_FailurePaths(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		run       func(s *SQLiteStore) error
		errMsg    string
	}{
		{
			name: "record submission insert fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INSERT INTO submissions").WillReturnError(assert.AnError)
			},
			run: func(s *SQLiteStore) error {
				return s.RecordSubmission(ctx, &Submission{Session: "default"})
			},
			errMsg: "failed to record submission",
		},
		{
			name: "list submissions query fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT .+ FROM submissions").WillReturnError(assert.AnError)
			},
			run: func(s *SQLiteStore) error {
				_, err := s.ListSubmissions(ctx, "default", 10)
				return err
			},
			errMsg: "failed to list submissions",
		},
		{
			name: "stored timestamp is corrupt",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "session", "label", "source", "value", "kind", "error_kind", "error_message", "created_at"}).
					AddRow("id-1", "default", "l", "1", "1", "int", nil, nil, "yesterday")
				mock.ExpectQuery("SELECT .+ FROM submissions").WillReturnRows(rows)
			},
			run: func(s *SQLiteStore) error {
				_, err := s.GetSubmission(ctx, "id-1")
				return err
			},
			errMsg: "invalid timestamp",
		},
		{
			name: "save binding fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INSERT INTO bindings").WillReturnError(assert.AnError)
			},
			run: func(s *SQLiteStore) error {
				return s.SaveBinding(ctx, &Binding{Session: "default", Name: "x"})
			},
			errMsg: "failed to save binding x",
		},
		{
			name: "clear session rolls back",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("DELETE FROM submissions").WillReturnResult(sqlmock.NewResult(0, 3))
				mock.ExpectExec("DELETE FROM bindings").WillReturnError(assert.AnError)
				mock.ExpectRollback()
			},
			run: func(s *SQLiteStore) error {
				return s.ClearSession(ctx, "default")
			},
			errMsg: "failed to clear bindings",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMockStore(t)
			tt.setupMock(mock)

			err := tt.run(store)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSQLiteStore_GetSubmissionNotFoundMock(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("SELECT .+ FROM submissions WHERE id").
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.GetSubmission(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
