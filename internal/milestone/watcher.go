package milestone

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"milestones/pkg/logging"

	"github.com/fsnotify/fsnotify"
)

const (
	// DefaultDebounceInterval is the time to wait after the last change to
	// the projects file before reloading it.
	DefaultDebounceInterval = 200 * time.Millisecond

	// DefaultPollInterval is the fallback polling interval when fsnotify is
	// not available.
	DefaultPollInterval = 2 * time.Second
)

// FileWatcher reloads a file-backed MemoryStore when its file is changed by
// another process and then notifies OnChange. It uses fsnotify with a fallback
// to polling the file's modification time.
type FileWatcher struct {
	store    *MemoryStore
	onChange func()

	debounce time.Duration
	poll     time.Duration

	debounceMu    sync.Mutex
	debounceTimer *time.Timer

	// reloadMu keeps timer callbacks from running reload and onChange
	// concurrently.
	reloadMu sync.Mutex
}

// NewFileWatcher creates a watcher for store. onChange runs after every
// successful reload; calls never overlap.
func NewFileWatcher(store *MemoryStore, onChange func()) *FileWatcher {
	return &FileWatcher{
		store:    store,
		onChange: onChange,
		debounce: DefaultDebounceInterval,
		poll:     DefaultPollInterval,
	}
}

// Run watches until ctx is cancelled.
func (w *FileWatcher) Run(ctx context.Context) error {
	defer w.stopTimer()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logging.Warn("FileWatcher", "fsnotify not available, falling back to polling: %v", err)
		w.pollForChanges(ctx)
		return nil
	}
	defer watcher.Close()

	// Watch the directory: editors and our own atomic rename replace the
	// file, which would drop a watch on the file itself.
	dir := filepath.Dir(w.store.Path())
	if err := watcher.Add(dir); err != nil {
		logging.Warn("FileWatcher", "Failed to watch directory %s, falling back to polling: %v", dir, err)
		w.pollForChanges(ctx)
		return nil
	}

	logging.Info("FileWatcher", "Watching %s for changes", w.store.Path())
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Error("FileWatcher", err, "fsnotify error")
		}
	}
}

func (w *FileWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != filepath.Clean(w.store.Path()) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}
	logging.Debug("FileWatcher", "Projects file changed: %s", event)
	w.triggerReloadDebounced()
}

// triggerReloadDebounced collapses bursts of events into one reload.
func (w *FileWatcher) triggerReloadDebounced() {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounce, w.reload)
}

func (w *FileWatcher) stopTimer() {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
}

func (w *FileWatcher) reload() {
	w.reloadMu.Lock()
	defer w.reloadMu.Unlock()

	if err := w.store.Reload(); err != nil {
		logging.Error("FileWatcher", err, "Failed to reload %s", w.store.Path())
		return
	}
	if w.onChange != nil {
		w.onChange()
	}
}

// pollForChanges implements fallback polling when fsnotify is not available.
func (w *FileWatcher) pollForChanges(ctx context.Context) {
	ticker := time.NewTicker(w.poll)
	defer ticker.Stop()

	last := w.modTime()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			current := w.modTime()
			if current.After(last) {
				logging.Debug("FileWatcher", "Projects file change detected via polling")
				last = current
				w.triggerReloadDebounced()
			}
		}
	}
}

func (w *FileWatcher) modTime() time.Time {
	info, err := os.Stat(w.store.Path())
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}
