package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"gopkg.in/fsnotify.v1"
)

func noop(context.Context, string) error { return nil }

func TestNewFileWatcher(t *testing.T) {
	if _, err := NewFileWatcher("rules.html", 0, nil); err == nil {
		t.Error("Expected an error for a nil callback")
	}

	w, err := NewFileWatcher("rules.html", 0, noop)
	if err != nil {
		t.Fatalf("NewFileWatcher failed: %v", err)
	}
	if !filepath.IsAbs(w.Path()) {
		t.Errorf("Expected an absolute path, got %q", w.Path())
	}
	if w.debounce != DefaultDebounce {
		t.Errorf("Expected default debounce, got %v", w.debounce)
	}
	if w.Status().Path != w.Path() {
		t.Errorf("Expected status path %q, got %q", w.Path(), w.Status().Path)
	}
}

func TestFileWatcher_Relevant(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.html")
	w, err := NewFileWatcher(path, time.Millisecond, noop)
	if err != nil {
		t.Fatalf("NewFileWatcher failed: %v", err)
	}

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write", fsnotify.Event{Name: path, Op: fsnotify.Write}, true},
		{"create", fsnotify.Event{Name: path, Op: fsnotify.Create}, true},
		{"rename", fsnotify.Event{Name: path, Op: fsnotify.Rename}, true},
		{"chmod", fsnotify.Event{Name: path, Op: fsnotify.Chmod}, false},
		{"remove", fsnotify.Event{Name: path, Op: fsnotify.Remove}, false},
		{"sibling", fsnotify.Event{Name: filepath.Join(dir, "other.html"), Op: fsnotify.Write}, false},
		{"unclean path", fsnotify.Event{Name: dir + "/./rules.html", Op: fsnotify.Write}, true},
	}

	for _, tc := range tests {
		if got := w.relevant(tc.event); got != tc.want {
			t.Errorf("%s: relevant = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestFileWatcher_RunDebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.html")
	if err := os.WriteFile(path, []byte("<html></html>"), 0644); err != nil {
		t.Fatalf("Failed to write source: %v", err)
	}

	var runs atomic.Int32
	fired := make(chan struct{}, 10)
	w, err := NewFileWatcher(path, 100*time.Millisecond, func(ctx context.Context, p string) error {
		runs.Add(1)
		fired <- struct{}{}
		return nil
	})
	if err != nil {
		t.Fatalf("NewFileWatcher failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte("<html>change</html>"), 0644); err != nil {
			t.Fatalf("Failed to rewrite source: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err := os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to write sibling: %v", err)
	}

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("Timed out waiting for the change callback")
	}

	// Wait past another debounce window to catch a second, unwanted run.
	time.Sleep(300 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}

	if got := runs.Load(); got != 1 {
		t.Errorf("Expected 1 debounced run, got %d", got)
	}
	if status := w.Status(); status.Runs != 1 || status.LastRun.IsZero() {
		t.Errorf("Unexpected status %+v", status)
	}
}

func TestFileWatcher_FireRecordsFailures(t *testing.T) {
	calls := 0
	w, err := NewFileWatcher(filepath.Join(t.TempDir(), "rules.html"), time.Millisecond, func(ctx context.Context, p string) error {
		calls++
		if calls == 1 {
			return errors.New("section 3 unreadable")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("NewFileWatcher failed: %v", err)
	}

	w.fire(context.Background())
	status := w.Status()
	if status.Failures != 1 || status.LastError != "section 3 unreadable" {
		t.Errorf("Expected a recorded failure, got %+v", status)
	}

	w.fire(context.Background())
	status = w.Status()
	if status.Runs != 2 || status.Failures != 1 || status.LastError != "" {
		t.Errorf("Expected the error to clear after a good run, got %+v", status)
	}
}

func TestFileWatcher_RunMissingDirectory(t *testing.T) {
	w, err := NewFileWatcher(filepath.Join(t.TempDir(), "missing", "rules.html"), 0, noop)
	if err != nil {
		t.Fatalf("NewFileWatcher failed: %v", err)
	}
	if err := w.Run(context.Background()); err == nil {
		t.Error("Expected an error watching a missing directory")
	}
}
