// Package filesystem provides file system implementations of the core ports:
// writing rendered output to disk and watching local-scheme component
// directories for changes during a development "watch" loop.
package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rustgen-dev/rustgen/internal/core/entities"
	"github.com/rustgen-dev/rustgen/internal/core/usecases"
)

var _ usecases.ComponentWatcher = (*Watcher)(nil)

// Watcher monitors one or more local component directories for changes and
// emits the affected ComponentURI so the caller can invalidate its cache
// entry and re-resolve.
type Watcher struct {
	watcher *fsnotify.Watcher
	events  chan entities.ComponentURI
	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	stopped bool

	// roots maps a watched root directory (as passed to Watch) to the
	// ComponentURI reported when something under it changes.
	roots map[string]entities.ComponentURI
}

// NewWatcher creates a new component directory watcher.
func NewWatcher() (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		watcher: w,
		events:  make(chan entities.ComponentURI, 10),
		done:    make(chan struct{}),
		roots:   make(map[string]entities.ComponentURI),
	}, nil
}

// Watch starts monitoring the given local component paths for changes.
// Each path becomes a root: any change beneath it is reported as the
// path: ComponentURI for that root. The returned channel is closed when
// Stop is called.
func (w *Watcher) Watch(ctx context.Context, paths []string) (<-chan entities.ComponentURI, error) {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil, fmt.Errorf("watcher already stopped")
	}
	w.mu.Unlock()

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("invalid component path %q: %w", p, err)
		}

		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("invalid component path %q: %w", p, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("component path %q is not a directory", p)
		}

		if err := w.addRecursive(abs); err != nil {
			return nil, fmt.Errorf("failed to watch %q: %w", p, err)
		}

		w.roots[abs] = entities.ComponentURI{Scheme: entities.SchemePath, LocalPath: p}
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.processEvents(ctx)
	}()

	return w.events, nil
}

// Stop halts watching and closes the event channel.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	w.mu.Unlock()

	close(w.done)
	err := w.watcher.Close()
	w.wg.Wait()
	close(w.events)

	if err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

// addRecursive adds rootPath and all its subdirectories to the underlying
// fsnotify watcher, skipping directories that are never component sources.
func (w *Watcher) addRecursive(rootPath string) error {
	return filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if shouldIgnoreDir(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return nil
		}
		return nil
	})
}

// shouldIgnoreDir reports whether a directory is never part of a
// component's own source tree and so should not be watched.
func shouldIgnoreDir(path string) bool {
	base := filepath.Base(path)
	ignoredDirs := map[string]bool{
		".git":         true,
		"node_modules": true,
		".rustgen":     true,
		"dist":         true,
		"build":        true,
		"target":       true,
	}
	return ignoredDirs[base]
}

// rootFor returns the watched root that contains path, preferring the
// longest (most specific) matching root when component paths nest.
func (w *Watcher) rootFor(path string) (string, bool) {
	var best string
	for root := range w.roots {
		if root == path || strings.HasPrefix(path, root+string(filepath.Separator)) {
			if len(root) > len(best) {
				best = root
			}
		}
	}
	return best, best != ""
}

// processEvents reads from fsnotify and emits one debounced ComponentURI
// per root with pending changes, batching rapid edits within 100ms.
func (w *Watcher) processEvents(ctx context.Context) {
	debounceTimer := time.NewTimer(0)
	<-debounceTimer.C

	pending := make(map[string]struct{})
	var mu sync.Mutex

	for {
		select {
		case <-w.done:
			return

		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !shouldIgnoreDir(event.Name) {
					_ = w.watcher.Add(event.Name)
				}
			}

			root, ok := w.rootFor(event.Name)
			if !ok {
				continue
			}

			mu.Lock()
			pending[root] = struct{}{}
			mu.Unlock()

			debounceTimer.Reset(100 * time.Millisecond)

		case <-debounceTimer.C:
			mu.Lock()
			for root := range pending {
				uri := w.roots[root]
				select {
				case w.events <- uri:
				case <-w.done:
					mu.Unlock()
					return
				case <-ctx.Done():
					mu.Unlock()
					return
				}
			}
			pending = make(map[string]struct{})
			mu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			_ = err
		}
	}
}
