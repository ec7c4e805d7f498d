package quickfix

import (
	"fmt"
	"strconv"

	"github.com/albertocavalcante/ui5ls/internal/xmldoc"
)

// DefaultIDPrefix is prepended to the local tag name of generated ids.
const DefaultIDPrefix = "_IDGen"

// Edit replaces the bytes of Span with NewText.
type Edit struct {
	Span    xmldoc.Span `json:"span"`
	NewText string      `json:"newText"`
}

// StableIDFixes returns one edit per element whose tag name span is in
// spans, giving the element a new id that is unique in registry. Each
// generated id is registered before the next one is chosen, so a batch
// never produces duplicates. A nil registry starts empty.
func StableIDFixes(doc *xmldoc.Document, spans []xmldoc.Span, registry *IDRegistry, prefix string) []Edit {
	if doc == nil || len(spans) == 0 {
		return nil
	}
	if registry == nil {
		registry = NewIDRegistry()
	}
	if prefix == "" {
		prefix = DefaultIDPrefix
	}
	byName := make(map[xmldoc.Span]*xmldoc.Element)
	doc.Walk(func(e *xmldoc.Element) bool {
		byName[e.NameSpan] = e
		return true
	})

	var edits []Edit
	for _, span := range spans {
		e := byName[span]
		if e == nil || e.LocalName() == "" {
			continue
		}
		id := NextID(registry, prefix+e.LocalName())
		registry.Add(id)
		edits = append(edits, idEdit(e, id))
	}
	return edits
}

// NextID returns base if it is free in registry. Otherwise it strips the
// trailing digits of the candidate and increments the number until a free
// id is found: _IDGenText, _IDGenText1, _IDGenText2, ... Every id is free
// in a nil registry.
func NextID(registry *IDRegistry, base string) string {
	id := base
	for registry.Has(id) {
		stem, n := splitCounter(id)
		id = stem + strconv.Itoa(n+1)
	}
	return id
}

// splitCounter splits the trailing run of ASCII digits off s.
func splitCounter(s string) (string, int) {
	i := len(s)
	for i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
		i--
	}
	n, err := strconv.Atoi(s[i:])
	if err != nil {
		return s, 0
	}
	return s[:i], n
}

func idEdit(e *xmldoc.Element, id string) Edit {
	attr := fmt.Sprintf(`id=%q`, id)
	if a := e.Attribute("id"); a != nil {
		return Edit{Span: a.Span, NewText: attr}
	}
	if len(e.Attributes) == 0 {
		return Edit{Span: xmldoc.Span{Start: e.NameSpan.End, End: e.NameSpan.End}, NewText: " " + attr}
	}
	at := e.Attributes[0].Span.Start
	return Edit{Span: xmldoc.Span{Start: at, End: at}, NewText: attr + " "}
}
