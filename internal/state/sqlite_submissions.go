package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const submissionColumns = `id, session, label, source, value, kind, error_kind, error_message, created_at`

// RecordSubmission journals sub. An empty ID is replaced with a new UUID and
// a zero CreatedAt with the current time; both are written back to sub.
func (s *SQLiteStore) RecordSubmission(ctx context.Context, sub *Submission) error {
	if s.db == nil {
		return errNotOpened
	}
	if sub.ID == "" {
		sub.ID = generateID()
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}

	s.logger.Debug("recording submission",
		slog.String("id", sub.ID),
		slog.String("session", sub.Session),
		slog.String("label", sub.Label))

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO submissions (`+submissionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.Session, sub.Label, sub.Source,
		nullString(sub.Value), nullString(sub.Kind),
		nullString(sub.ErrorKind), nullString(sub.ErrorMessage),
		formatTime(sub.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to record submission: %w", err)
	}
	return nil
}

// ListSubmissions returns the most recent submissions of session, newest
// first. A limit of zero or less returns all of them.
func (s *SQLiteStore) ListSubmissions(ctx context.Context, session string, limit int) ([]*Submission, error) {
	if s.db == nil {
		return nil, errNotOpened
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE session = ? ORDER BY seq DESC LIMIT ?`,
		session, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var subs []*Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return subs, nil
}

// GetSubmission retrieves a submission by ID.
func (s *SQLiteStore) GetSubmission(ctx context.Context, id string) (*Submission, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE id = ?`, id)
	sub, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("submission %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row scanner) (*Submission, error) {
	var (
		sub                          Submission
		value, kind, errKind, errMsg sql.NullString
		createdAt                    string
	)
	err := row.Scan(&sub.ID, &sub.Session, &sub.Label, &sub.Source,
		&value, &kind, &errKind, &errMsg, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan submission: %w", err)
	}

	sub.Value = value.String
	sub.Kind = kind.String
	sub.ErrorKind = errKind.String
	sub.ErrorMessage = errMsg.String
	if sub.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &sub, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
