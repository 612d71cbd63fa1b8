// Package state persists Tally sessions in SQLite: a journal of every
// submission and a snapshot of each session's variable bindings.
package state

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Submission is one journaled evaluation.
type Submission struct {
	ID      string
	Session string
	Label   string
	Source  string
	// Value and Kind are set when evaluation succeeded.
	Value string
	Kind  string
	// ErrorKind and ErrorMessage are set when it failed.
	ErrorKind    string
	ErrorMessage string
	CreatedAt    time.Time
}

// Succeeded reports whether the submission produced a value.
func (s *Submission) Succeeded() bool {
	return s.ErrorKind == ""
}

// Binding is a persisted variable of a session.
type Binding struct {
	Session   string
	Name      string
	Kind      string
	Value     string
	UpdatedAt time.Time
}

// Store is the persistence interface used by the engine.
type Store interface {
	Open(path string) error
	Close() error
	Migrate() error

	RecordSubmission(ctx context.Context, sub *Submission) error
	ListSubmissions(ctx context.Context, session string, limit int) ([]*Submission, error)
	GetSubmission(ctx context.Context, id string) (*Submission, error)

	SaveBinding(ctx context.Context, b *Binding) error
	LoadBindings(ctx context.Context, session string) ([]*Binding, error)
	ClearSession(ctx context.Context, session string) error
}
