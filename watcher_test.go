package voiper

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reloadLog struct {
	mu      sync.Mutex
	results []error
}

func (l *reloadLog) record(_ string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.results = append(l.results, err)
}

func (l *reloadLog) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.results)
}

func (l *reloadLog) last() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.results[len(l.results)-1]
}

func TestManifestWatcher_ReloadsOnChange(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bundles.yaml")
	writeManifest := func(identifier string) {
		content := "bundles:\n  - name: Main\n    surfaces:\n      - identifier: " + identifier + "\n        type: loginView\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	writeManifest("First")

	logger := &recordingLogger{}
	registry := newTestRegistry(t, WithRegistryLogger(logger))
	watcher := NewManifestWatcher(registry, path)
	reloads := &reloadLog{}
	watcher.OnReload(reloads.record)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watcher.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	require.Eventually(t, func() bool { return reloads.count() >= 1 }, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, reloads.last())
	_, err := registry.Resolve("Main", "First")
	require.NoError(t, err)

	writeManifest("Second")
	require.Eventually(t, func() bool {
		_, err := registry.Resolve("Main", "Second")
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)

	_, err = registry.Resolve("Main", "First")
	assert.ErrorIs(t, err, ErrIdentifierNotFound)
}

func TestManifestWatcher_KeepsEntriesOnBrokenManifest(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bundles.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bundles:\n  - name: Main\n    surfaces:\n      - identifier: Login\n        type: loginView\n"), 0o600))

	logger := &recordingLogger{}
	registry := newTestRegistry(t, WithRegistryLogger(logger))
	watcher := NewManifestWatcher(registry, path)
	reloads := &reloadLog{}
	watcher.OnReload(reloads.record)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watcher.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	require.Eventually(t, func() bool { return reloads.count() >= 1 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("bundles:\n  - name: Main\n    surfaces:\n      - identifier: Login\n        type: missingView\n"), 0o600))
	require.Eventually(t, func() bool {
		return reloads.count() >= 2 && reloads.last() != nil
	}, 5*time.Second, 10*time.Millisecond)

	assert.ErrorIs(t, reloads.last(), ErrSurfaceTypeNotRegistered)
	_, err := registry.Resolve("Main", "Login")
	assert.NoError(t, err, "previous entries survive a failed reload")
	assert.Contains(t, logger.messages("WARN"), "Manifest reload skipped")
}

func TestManifestWatcher_RunTwice(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bundles.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"bundles": []}`), 0o600))

	watcher := NewManifestWatcher(newTestRegistry(t), path)
	reloads := &reloadLog{}
	watcher.OnReload(reloads.record)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watcher.Run(ctx) }()

	require.Eventually(t, func() bool { return reloads.count() >= 1 }, 5*time.Second, 10*time.Millisecond)
	assert.ErrorIs(t, watcher.Run(ctx), ErrWatcherAlreadyRunning)

	cancel()
	assert.NoError(t, <-done)
}
