// Package watch re-runs a callback when a dataset file changes on disk.
package watch

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/turtacn/hivscreen/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/hivscreen/pkg/errors"
)

// DefaultDebounce collapses the burst of events a single save produces.
const DefaultDebounce = 300 * time.Millisecond

// FileWatcher watches one file.  The parent directory is watched rather than
// the file itself so that editors which save by rename are still seen.
type FileWatcher struct {
	path     string
	debounce time.Duration
	logger   logging.Logger
}

// NewFileWatcher returns a watcher for path.  A non-positive debounce uses
// DefaultDebounce.
func NewFileWatcher(path string, debounce time.Duration, logger logging.Logger) *FileWatcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &FileWatcher{path: filepath.Clean(path), debounce: debounce, logger: logger}
}

// Run blocks until ctx is done, calling onChange once per settled burst of
// writes, creates or renames of the file.  Calls are serialised on the
// watcher goroutine; an error from onChange is logged and watching continues.
// Run returns nil when ctx is cancelled.
func (w *FileWatcher) Run(ctx context.Context, onChange func(context.Context) error) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to create file watcher")
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to watch directory").WithDetail("dir=" + dir)
	}
	w.logger.Info("watching dataset for changes", logging.String("path", w.path))

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Debug("dataset event", logging.String("op", ev.Op.String()))
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", logging.Err(err))

		case <-timer.C:
			if err := onChange(ctx); err != nil {
				w.logger.Error("re-run after change failed", logging.String("path", w.path), logging.Err(err))
			}
		}
	}
}

//Personal.AI order the ending
