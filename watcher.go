package voiper

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ManifestWatcher keeps a BundleRegistry in sync with manifest files on disk. The parent
// directories are watched so that editors replacing a file by rename are picked up.
type ManifestWatcher struct {
	registry *BundleRegistry
	paths    map[string]bool
	logger   Logger

	mu       sync.Mutex
	running  bool
	onReload func(path string, err error)
}

// NewManifestWatcher creates a watcher for paths. Call Run to start it.
func NewManifestWatcher(registry *BundleRegistry, paths ...string) *ManifestWatcher {
	w := &ManifestWatcher{
		registry: registry,
		paths:    make(map[string]bool, len(paths)),
		logger:   registry.logger,
	}
	for _, path := range paths {
		w.paths[filepath.Clean(path)] = true
	}
	return w
}

// OnReload sets a callback invoked after every load attempt, with the load error if any.
func (w *ManifestWatcher) OnReload(fn func(path string, err error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onReload = fn
}

// Run loads every manifest once, then reloads a manifest whenever it is written, created or
// renamed into place. A manifest that fails to load is reported and the registry keeps its
// previous entries. Run blocks until ctx is done.
func (w *ManifestWatcher) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return ErrWatcherAlreadyRunning
	}
	w.running = true
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create manifest watcher: %w", err)
	}
	defer watcher.Close()

	dirs := make(map[string]bool)
	for path := range w.paths {
		dirs[filepath.Dir(path)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	for path := range w.paths {
		w.reload(ctx, path)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			path := filepath.Clean(event.Name)
			if !w.paths[path] {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.reload(ctx, path)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Manifest watcher error", "error", err)
		}
	}
}

func (w *ManifestWatcher) reload(ctx context.Context, path string) {
	err := w.registry.LoadManifest(ctx, path)
	if err != nil {
		w.logger.Warn("Manifest reload skipped", "path", path, "error", err)
	} else {
		w.logger.Debug("Manifest reloaded", "path", path)
	}

	w.mu.Lock()
	fn := w.onReload
	w.mu.Unlock()
	if fn != nil {
		fn(path, err)
	}
}
