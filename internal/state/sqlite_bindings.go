package state

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// SaveBinding inserts or replaces the binding b.Name of b.Session.
func (s *SQLiteStore) SaveBinding(ctx context.Context, b *Binding) error {
	if s.db == nil {
		return errNotOpened
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bindings (session, name, kind, value, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (session, name) DO UPDATE SET
			kind = excluded.kind,
			value = excluded.value,
			updated_at = excluded.updated_at`,
		b.Session, b.Name, b.Kind, b.Value, formatTime(b.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save binding %s: %w", b.Name, err)
	}
	return nil
}

// LoadBindings returns every binding of session ordered by name.
func (s *SQLiteStore) LoadBindings(ctx context.Context, session string) ([]*Binding, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT session, name, kind, value, updated_at FROM bindings WHERE session = ? ORDER BY name`,
		session,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load bindings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var bindings []*Binding
	for rows.Next() {
		var (
			b         Binding
			updatedAt string
		)
		if err := rows.Scan(&b.Session, &b.Name, &b.Kind, &b.Value, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan binding: %w", err)
		}
		if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		bindings = append(bindings, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load bindings: %w", err)
	}
	return bindings, nil
}

// ClearSession deletes the journal and bindings of session.
func (s *SQLiteStore) ClearSession(ctx context.Context, session string) error {
	if s.db == nil {
		return errNotOpened
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM submissions WHERE session = ?`, session); err != nil {
		return fmt.Errorf("failed to clear submissions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM bindings WHERE session = ?`, session); err != nil {
		return fmt.Errorf("failed to clear bindings: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	s.logger.Debug("cleared session", slog.String("session", session))
	return nil
}
