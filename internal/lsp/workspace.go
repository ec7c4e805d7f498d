package lsp

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/albertocavalcante/ui5ls/internal/quickfix"
	"github.com/albertocavalcante/ui5ls/internal/xmldoc"
)

// Workspace tracks the ids declared by every view and fragment under a
// root directory, so that generated ids are unique across the project.
type Workspace struct {
	root  string
	match func(path string) bool

	mu     sync.RWMutex
	ids    map[string][]string // absolute path -> literal ids
	closed bool

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewWorkspace creates a workspace index for the files under root that
// match.
func NewWorkspace(root string, match func(path string) bool) *Workspace {
	return &Workspace{
		root:  root,
		match: match,
		ids:   make(map[string][]string),
	}
}

// skipDir reports whether a directory is never part of the sources.
func skipDir(root, path, name string) bool {
	if path == root {
		return false
	}
	return strings.HasPrefix(name, ".") || name == "node_modules" || name == "dist"
}

// Scan indexes all matching files under the root. Files are parsed
// concurrently; unreadable files are logged and skipped.
func (w *Workspace) Scan(ctx context.Context) error {
	var files []string
	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipDir(w.root, path, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if w.match(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("scanning %s: %w", w.root, err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			w.load(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	log.Printf("workspace: indexed %d files under %s", len(files), w.root)
	return nil
}

func (w *Workspace) load(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("workspace: %v", err)
		w.Remove(path)
		return
	}
	w.Update(path, xmldoc.Parse(string(data)))
}

// Update replaces the ids recorded for path.
func (w *Workspace) Update(path string, doc *xmldoc.Document) {
	ids := quickfix.IDs(doc)
	w.mu.Lock()
	w.ids[path] = ids
	w.mu.Unlock()
}

// Remove forgets path.
func (w *Workspace) Remove(path string) {
	w.mu.Lock()
	delete(w.ids, path)
	w.mu.Unlock()
}

// Files returns the indexed paths in sorted order.
func (w *Workspace) Files() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	files := make([]string, 0, len(w.ids))
	for path := range w.ids {
		files = append(files, path)
	}
	slices.Sort(files)
	return files
}

// Registry returns a registry of the ids of all indexed files except
// those in exclude, whose current content the caller adds itself.
func (w *Workspace) Registry(exclude ...string) *quickfix.IDRegistry {
	r := quickfix.NewIDRegistry()
	w.mu.RLock()
	defer w.mu.RUnlock()
	for path, ids := range w.ids {
		if slices.Contains(exclude, path) {
			continue
		}
		for _, id := range ids {
			r.Add(id)
		}
	}
	return r
}

// Watch keeps the index current as files change on disk, until Close.
func (w *Workspace) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}

	err = filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if skipDir(w.root, path, d.Name()) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
	if err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watching %s: %w", w.root, err)
	}

	w.mu.Lock()
	if w.closed || w.watcher != nil {
		w.mu.Unlock()
		return watcher.Close()
	}
	w.watcher = watcher
	w.done = make(chan struct{})
	w.mu.Unlock()

	go w.run(watcher, w.done)
	return nil
}

func (w *Workspace) run(watcher *fsnotify.Watcher, done chan struct{}) {
	defer close(done)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			w.handle(watcher, event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("workspace watcher: %v", err)
		}
	}
}

func (w *Workspace) handle(watcher *fsnotify.Watcher, event fsnotify.Event) {
	switch {
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		w.Remove(event.Name)
	case event.Has(fsnotify.Create):
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !skipDir(w.root, event.Name, info.Name()) {
				if err := watcher.Add(event.Name); err != nil {
					log.Printf("workspace watcher: %v", err)
				}
			}
			return
		}
		if w.match(event.Name) {
			w.load(event.Name)
		}
	case event.Has(fsnotify.Write):
		if w.match(event.Name) {
			w.load(event.Name)
		}
	}
}

// Close stops watching. The index stays readable.
func (w *Workspace) Close() error {
	w.mu.Lock()
	w.closed = true
	watcher, done := w.watcher, w.done
	w.watcher = nil
	w.mu.Unlock()

	if watcher == nil {
		return nil
	}
	err := watcher.Close()
	<-done
	return err
}
