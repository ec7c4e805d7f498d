// Package quickfix computes text edits that repair validation findings,
// most notably generating stable ids for controls that lack one.
package quickfix

import (
	"strings"
	"sync"

	"github.com/albertocavalcante/ui5ls/internal/xmldoc"
)

// IDRegistry counts the ids in use across a set of documents. It is safe
// for concurrent use.
type IDRegistry struct {
	mu     sync.RWMutex
	counts map[string]int
}

// NewIDRegistry returns an empty registry.
func NewIDRegistry() *IDRegistry {
	return &IDRegistry{counts: make(map[string]int)}
}

// Collect registers every literal id attribute of the documents.
func (r *IDRegistry) Collect(docs ...*xmldoc.Document) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, doc := range docs {
		for _, id := range IDs(doc) {
			r.counts[id]++
		}
	}
}

// IDs returns the literal id attribute values of doc in document order.
// Binding expressions are not ids.
func IDs(doc *xmldoc.Document) []string {
	if doc == nil {
		return nil
	}
	var ids []string
	doc.Walk(func(e *xmldoc.Element) bool {
		if id := e.ID(); id != "" && !strings.HasPrefix(strings.TrimSpace(id), "{") {
			ids = append(ids, id)
		}
		return true
	})
	return ids
}

// Add registers one occurrence of id.
func (r *IDRegistry) Add(id string) {
	r.mu.Lock()
	r.counts[id]++
	r.mu.Unlock()
}

// Has reports whether id is in use.
func (r *IDRegistry) Has(id string) bool {
	if r == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.counts[id] > 0
}

// Count returns the number of occurrences of id.
func (r *IDRegistry) Count(id string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.counts[id]
}

// Clone returns an independent copy of the registry.
func (r *IDRegistry) Clone() *IDRegistry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c := NewIDRegistry()
	for id, n := range r.counts {
		c.counts[id] = n
	}
	return c
}
