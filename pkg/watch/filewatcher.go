// Package watch reruns a conversion whenever its source document changes.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/fsnotify.v1"

	"github.com/coolbeans/rulebook/pkg/logging"
)

// DefaultDebounce is the quiet period after the last change before a run.
const DefaultDebounce = 500 * time.Millisecond

// ChangeFunc is invoked once per settled change of the watched file.
type ChangeFunc func(ctx context.Context, path string) error

// Status reports what the watcher has done so far.
type Status struct {
	Path      string    `json:"path"`
	Runs      int       `json:"runs"`
	Failures  int       `json:"failures"`
	LastRun   time.Time `json:"last_run,omitempty"`
	LastError string    `json:"last_error,omitempty"`
}

// FileWatcher watches a single file through its parent directory, so that
// editors which replace the file on save are still seen.
type FileWatcher struct {
	path     string
	dir      string
	debounce time.Duration
	onChange ChangeFunc

	mu     sync.Mutex
	status Status
}

// NewFileWatcher creates a watcher for path. A zero debounce uses
// DefaultDebounce.
func NewFileWatcher(path string, debounce time.Duration, onChange ChangeFunc) (*FileWatcher, error) {
	if onChange == nil {
		return nil, errors.New("watch: nil change callback")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &FileWatcher{
		path:     abs,
		dir:      filepath.Dir(abs),
		debounce: debounce,
		onChange: onChange,
		status:   Status{Path: abs},
	}, nil
}

// Path returns the absolute path being watched.
func (w *FileWatcher) Path() string {
	return w.path
}

// Status returns a snapshot of the watcher's counters.
func (w *FileWatcher) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Run watches until ctx is cancelled. Callback errors are logged and
// counted; they do not stop the watcher.
func (w *FileWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watching directory %s: %w", w.dir, err)
	}

	logger := logging.LoggerFromContext(ctx)
	logger.Info("watch_started", "path", w.path, "debounce", w.debounce.String())

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("watch_stopped", "path", w.path)
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			logger.Debug("watch_event", "path", event.Name, "op", event.Op.String())
			timer.Reset(w.debounce)

		case <-timer.C:
			w.fire(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch_error", "error", err.Error())
		}
	}
}

// relevant reports whether event changes the watched file's content.
func (w *FileWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

func (w *FileWatcher) fire(ctx context.Context) {
	err := w.onChange(ctx, w.path)

	w.mu.Lock()
	w.status.Runs++
	w.status.LastRun = time.Now()
	if err != nil {
		w.status.Failures++
		w.status.LastError = err.Error()
	} else {
		w.status.LastError = ""
	}
	w.mu.Unlock()

	if err != nil {
		logging.LoggerFromContext(ctx).Error("watch_run_failed", "path", w.path, "error", err.Error())
	}
}
