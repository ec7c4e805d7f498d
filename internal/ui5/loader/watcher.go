package loader

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/albertocavalcante/ui5ls/internal/ui5/model"
)

// ReloadEvent reports the outcome of reloading one framework version.
type ReloadEvent struct {
	Key   Key
	Model *model.Model
	Err   error
}

// Watcher reloads cached models when their metadata files change.
type Watcher struct {
	cache     *Cache
	fsWatcher *fsnotify.Watcher

	// Events receives one event per reload.
	Events chan ReloadEvent

	// Debounce collapses bursts of writes to the same version.
	Debounce time.Duration

	mu      sync.Mutex
	pending map[Key]*time.Timer

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewWatcher watches the metadata paths of every version registered in c.
// Directories are watched rather than files so that files replaced by a
// rename are still seen.
func NewWatcher(c *Cache) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	dirs := make(map[string]bool)
	for _, k := range c.Keys() {
		for _, src := range c.Sources(k) {
			dir := src
			if info, err := os.Stat(src); err == nil && !info.IsDir() {
				dir = filepath.Dir(src)
			}
			dirs[dir] = true
		}
	}
	for dir := range dirs {
		if err := fsWatcher.Add(dir); err != nil {
			_ = fsWatcher.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		cache:     c,
		fsWatcher: fsWatcher,
		Events:    make(chan ReloadEvent, 16),
		Debounce:  100 * time.Millisecond,
		pending:   make(map[Key]*time.Timer),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	w.cancel()
	err := w.fsWatcher.Close()
	<-w.done

	w.mu.Lock()
	for _, t := range w.pending {
		t.Stop()
	}
	w.mu.Unlock()
	return err
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 || !isAPIJSON(event.Name) {
				continue
			}
			for _, k := range w.cache.KeysFor(event.Name) {
				w.schedule(k)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Printf("metadata watcher: %v", err)
		}
	}
}

func (w *Watcher) schedule(k Key) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t := w.pending[k]; t != nil {
		t.Reset(w.Debounce)
		return
	}
	w.pending[k] = time.AfterFunc(w.Debounce, func() {
		w.mu.Lock()
		delete(w.pending, k)
		w.mu.Unlock()
		if w.ctx.Err() != nil {
			return
		}

		m, err := w.cache.Reload(w.ctx, k)
		if err != nil {
			log.Printf("reloading %s: %v", k, err)
		} else {
			log.Printf("reloaded %s: %s", k, m)
		}
		select {
		case w.Events <- ReloadEvent{Key: k, Model: m, Err: err}:
		case <-w.ctx.Done():
		}
	})
}
