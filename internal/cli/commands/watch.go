package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/leapstack-labs/tally/internal/cli/output"
	"github.com/leapstack-labs/tally/internal/engine"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// WatchOptions holds options for the watch command.
type WatchOptions struct {
	Debounce time.Duration
}

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	opts := &WatchOptions{}

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-evaluate a file whenever it changes",
		Long: `Evaluate a file and evaluate it again every time it is saved.

Each run starts from a fresh environment, so removed assignments do not
linger. Watch mode never writes to the journal. Press Ctrl+C to stop.`,
		Example: `  tally watch budget.tl
  tally watch --debounce 500ms budget.tl`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args[0], opts)
		},
	}

	cmd.Flags().DurationVar(&opts.Debounce, "debounce", 0, "Delay before re-evaluating after a change (default from config)")

	return cmd
}

func runWatch(cmd *cobra.Command, path string, opts *WatchOptions) error {
	cmdCtx := NewCommandContextWithoutEngine(cmd)

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = cmdCtx.Cfg.Watch.Debounce
	}

	eng, err := createEngine(cmdCtx.Cfg, cmdCtx.Logger, false)
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := &fileWatcher{
		path:     path,
		debounce: debounce,
		eng:      eng,
		r:        cmdCtx.Renderer,
		logger:   cmdCtx.Logger,
	}
	return w.Run(ctx)
}

// fileWatcher evaluates a file once and again after every change to it.
type fileWatcher struct {
	path     string
	debounce time.Duration
	eng      *engine.Engine
	r        *output.Renderer
	logger   *slog.Logger

	// ran is signaled after each evaluation when set.
	ran chan<- int
}

// Run blocks until ctx is canceled.
func (w *fileWatcher) Run(ctx context.Context) error {
	abs, err := filepath.Abs(w.path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(abs); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Editors often replace files on save, so the directory is watched.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	trigger := make(chan struct{}, 1)
	trigger <- struct{}{}

	eg, egctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return w.watchLoop(egctx, watcher, abs, trigger)
	})

	eg.Go(func() error {
		for {
			select {
			case <-egctx.Done():
				return nil
			case <-trigger:
				w.evaluate(egctx)
			}
		}
	})

	err = eg.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// watchLoop turns file events for target into debounced triggers.
func (w *fileWatcher) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, target string, trigger chan<- struct{}) error {
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, func() {
				select {
				case trigger <- struct{}{}:
				default:
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

func (w *fileWatcher) evaluate(ctx context.Context) {
	if err := w.eng.Reset(ctx); err != nil {
		w.logger.Warn("failed to reset session", "error", err)
	}

	w.r.Info("==> %s (%s)", w.path, time.Now().Format(time.TimeOnly))
	failed, err := runFile(ctx, w.eng, w.r, w.path)
	if err != nil {
		// The file may be mid-rename; the next event triggers another run.
		w.logger.Warn("failed to evaluate file", "path", w.path, "error", err)
		failed = -1
	}

	if w.ran != nil {
		select {
		case w.ran <- failed:
		case <-ctx.Done():
		}
	}
}
