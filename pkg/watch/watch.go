// Package watch reruns table generation when a board file changes.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pterm/pterm"
)

// DefaultDebounce collapses the burst of events an editor save produces
const DefaultDebounce = 200 * time.Millisecond

const relevant = fsnotify.Write | fsnotify.Create | fsnotify.Rename

// Options configure a watch loop
type Options struct {
	Debounce time.Duration
	Logger   *pterm.Logger
}

// Run calls onChange each time path is written, until ctx is cancelled. The
// parent directory is watched so that editors replacing the file by rename
// keep triggering. A failing onChange is logged and the loop continues.
func Run(ctx context.Context, path string, opts Options, onChange func(context.Context) error) error {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	logger := opts.Logger
	if logger == nil {
		logger = pterm.DefaultLogger.WithLevel(pterm.LogLevelDisabled)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	target := filepath.Clean(path)
	if err := w.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	logger.Debug("watching", logger.Args("path", target))

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || ev.Op&relevant == 0 {
				continue
			}
			logger.Trace("event", logger.Args("op", ev.Op.String()))
			fire = time.After(opts.Debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", logger.Args("error", err))

		case <-fire:
			fire = nil
			if err := onChange(ctx); err != nil {
				logger.Error("regeneration failed", logger.Args("path", target, "error", err))
			}
		}
	}
}
