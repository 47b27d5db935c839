// Package watch republishes an artifact whenever the orchestrator rewrites it.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/fwpublish/internal/logfields"
)

// Watcher monitors a single artifact file and invokes onChange after writes settle.
type Watcher struct {
	artifact string
	debounce time.Duration
	onChange func()
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
}

// New creates a watcher for artifact. The containing directory is watched
// because toolchains commonly replace the file rather than write it in place.
func New(artifact string, debounce time.Duration, onChange func(), logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	absPath, err := filepath.Abs(artifact)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve artifact path: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(absPath)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to watch directory %s: %w", filepath.Dir(absPath), err)
	}
	return &Watcher{
		artifact: absPath,
		debounce: debounce,
		onChange: onChange,
		watcher:  fw,
		logger:   logger,
	}, nil
}

// Run blocks until ctx is done, calling onChange once per burst of events.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() {
		if err := w.watcher.Close(); err != nil {
			w.logger.Error("Error closing file watcher", logfields.Error(err))
		}
	}()

	w.logger.Info("Watching artifact", logfields.Path(w.artifact))

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("Artifact event", logfields.Path(event.Name), slog.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			w.onChange()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Artifact watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.artifact {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}
