// Package engine runs Tally sessions for the command-line tools. It adds
// what a bare tally.Session leaves to its caller: serialized access, a
// journal of submissions and persisted bindings.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/leapstack-labs/tally/internal/state"
	"github.com/leapstack-labs/tally/pkg/tally"
	"github.com/leapstack-labs/tally/pkg/value"
)

// DefaultSession names the session used when none is configured.
const DefaultSession = "default"

// Engine evaluates submissions against one named session.
type Engine struct {
	mu      sync.Mutex
	session *tally.Session
	name    string

	store     state.Store
	ownsStore bool

	logger *slog.Logger
}

// Config holds engine configuration.
type Config struct {
	// Session names the session whose journal and bindings are used.
	Session string
	// StatePath is the path to the SQLite state database. Empty disables
	// the journal unless Store is set.
	StatePath string
	// Store overrides StatePath with an already migrated store. The engine
	// does not close it.
	Store state.Store
	// MaxDepth limits expression nesting; zero keeps the parser default.
	MaxDepth int
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// Binding is a variable visible in the session.
type Binding struct {
	Name  string
	Value value.Number
}

// New creates an engine. When a state path is configured the database is
// opened and migrated.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	name := cfg.Session
	if name == "" {
		name = DefaultSession
	}

	e := &Engine{
		name:   name,
		store:  cfg.Store,
		logger: logger,
		session: tally.NewSession(
			tally.WithMaxDepth(cfg.MaxDepth),
			tally.WithLogger(logger),
		),
	}

	if e.store == nil && cfg.StatePath != "" {
		store, err := openStore(cfg.StatePath, logger)
		if err != nil {
			return nil, err
		}
		e.store = store
		e.ownsStore = true
	}

	logger.Debug("initialized engine",
		slog.String("session", name),
		slog.Bool("journal", e.store != nil))
	return e, nil
}

func openStore(path string, logger *slog.Logger) (*state.SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" && path != ":memory:" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	store := state.NewSQLiteStore(logger)
	if err := store.Open(path); err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize state schema: %w", err)
	}
	return store, nil
}

// Close releases the state store if the engine opened it.
func (e *Engine) Close() error {
	if e.ownsStore && e.store != nil {
		return e.store.Close()
	}
	return nil
}

// Session returns the session name.
func (e *Engine) Session() string {
	return e.name
}

// Journaled reports whether submissions are persisted.
func (e *Engine) Journaled() bool {
	return e.store != nil
}

// Bindings lists the variables of the global environment, sorted by name.
func (e *Engine) Bindings() []Binding {
	e.mu.Lock()
	defer e.mu.Unlock()

	env := e.session.Env()
	names := env.Names()
	bindings := make([]Binding, 0, len(names))
	for _, name := range names {
		v, _ := env.Get(name)
		bindings = append(bindings, Binding{Name: name, Value: v})
	}
	return bindings
}

// Restore loads the persisted bindings of the session into the
// environment and returns how many were restored.
func (e *Engine) Restore(ctx context.Context) (int, error) {
	if e.store == nil {
		return 0, nil
	}

	stored, err := e.store.LoadBindings(ctx, e.name)
	if err != nil {
		return 0, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	env := e.session.Env()
	for _, b := range stored {
		v, err := decodeBinding(b)
		if err != nil {
			return 0, fmt.Errorf("failed to restore %s: %w", b.Name, err)
		}
		env.Set(b.Name, v)
	}

	e.logger.Debug("restored bindings", slog.String("session", e.name), slog.Int("count", len(stored)))
	return len(stored), nil
}

// Reset discards the environment and, when journaled, the session's
// stored journal and bindings.
func (e *Engine) Reset(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.session.Reset()
	if e.store == nil {
		return nil
	}
	return e.store.ClearSession(ctx, e.name)
}

// History returns the most recent journaled submissions, newest first.
func (e *Engine) History(ctx context.Context, limit int) ([]*state.Submission, error) {
	if e.store == nil {
		return nil, nil
	}
	return e.store.ListSubmissions(ctx, e.name, limit)
}

func decodeBinding(b *state.Binding) (value.Number, error) {
	kind, ok := value.ParseKind(b.Kind)
	if !ok {
		return value.Number{}, fmt.Errorf("unknown kind %q", b.Kind)
	}
	return value.Parse(kind, b.Value)
}
