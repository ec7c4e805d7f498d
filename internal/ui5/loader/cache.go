package loader

import (
	"cmp"
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/albertocavalcante/ui5ls/internal/ui5/model"
)

// Key identifies a framework version.
type Key struct {
	Framework string
	Version   string
}

func (k Key) String() string {
	return k.Framework + "@" + k.Version
}

// Cache holds one model per registered framework version. Models are
// loaded on first use and replaced as a whole on reload, so callers may
// keep using a model they already obtained.
type Cache struct {
	mu      sync.RWMutex
	sources map[Key][]string
	models  map[Key]*model.Model

	group singleflight.Group
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		sources: make(map[Key][]string),
		models:  make(map[Key]*model.Model),
	}
}

// Register sets the metadata paths of a framework version and drops any
// model loaded from the previous paths.
func (c *Cache) Register(key Key, paths ...string) {
	abs := make([]string, 0, len(paths))
	for _, p := range paths {
		if a, err := filepath.Abs(p); err == nil {
			p = a
		}
		abs = append(abs, p)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sources[key] = abs
	delete(c.models, key)
}

// Keys returns the registered framework versions.
func (c *Cache) Keys() []Key {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]Key, 0, len(c.sources))
	for k := range c.sources {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b Key) int {
		return cmp.Or(cmp.Compare(a.Framework, b.Framework), cmp.Compare(a.Version, b.Version))
	})
	return keys
}

// Sources returns the metadata paths registered for key.
func (c *Cache) Sources(key Key) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.sources[key])
}

// Get returns the model for key, loading it if needed. Concurrent calls
// for the same key share one load.
func (c *Cache) Get(ctx context.Context, key Key) (*model.Model, error) {
	c.mu.RLock()
	m := c.models[key]
	c.mu.RUnlock()
	if m != nil {
		return m, nil
	}
	return c.load(ctx, key)
}

// Reload loads the model for key again and replaces the cached one. The
// cached model is kept when loading fails.
func (c *Cache) Reload(ctx context.Context, key Key) (*model.Model, error) {
	return c.load(ctx, key)
}

// Invalidate drops the cached model for key.
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	delete(c.models, key)
	c.mu.Unlock()
}

// KeysFor returns the framework versions that read the given file,
// directly or through its directory.
func (c *Cache) KeysFor(path string) []Key {
	if a, err := filepath.Abs(path); err == nil {
		path = a
	}
	dir := filepath.Dir(path)
	var out []Key
	for _, k := range c.Keys() {
		for _, src := range c.Sources(k) {
			if src == path || src == dir {
				out = append(out, k)
				break
			}
		}
	}
	return out
}

func (c *Cache) load(ctx context.Context, key Key) (*model.Model, error) {
	v, err, _ := c.group.Do(key.String(), func() (any, error) {
		paths := c.Sources(key)
		if len(paths) == 0 {
			return nil, fmt.Errorf("no metadata registered for %s", key)
		}
		m, err := Load(ctx, key.Framework, key.Version, paths...)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.models[key] = m
		c.mu.Unlock()
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Model), nil
}
