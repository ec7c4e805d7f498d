package completion

import (
	"fmt"

	"github.com/albertocavalcante/ui5ls/internal/ui5/model"
	"github.com/albertocavalcante/ui5ls/internal/ui5/resolver"
	"github.com/albertocavalcante/ui5ls/internal/xmldoc"
)

// Edit replaces the bytes of Span with NewText.
type Edit struct {
	Span    xmldoc.Span
	NewText string
}

// Item is a suggestion rendered into text edits.
type Item struct {
	Suggestion Suggestion
	Label      string

	// Edit replaces the whole token under the cursor.
	Edit Edit
	// Insert covers the token only up to the cursor, for clients that
	// distinguish inserting from replacing.
	Insert xmldoc.Span

	// Additional holds edits elsewhere in the document, such as the
	// declaration of a namespace the suggestion uses.
	Additional []Edit
}

// Render turns a suggestion into edits for the document at offset.
func Render(doc *xmldoc.Document, offset int, s Suggestion) Item {
	item := Item{Suggestion: s, Label: s.Label()}
	switch s.Kind {
	case KindClassInTagName:
		c := s.Node.(*model.Class)
		name, decl := qualify(doc, s.Element, c.Namespace, c.Name)
		item.Edit = Edit{Span: s.Element.NameSpan, NewText: name}
		if decl != nil {
			item.Additional = append(item.Additional, *decl)
		}
	case KindAggregationInTagName:
		name := s.Node.Metadata().Name
		if p := s.Element.Parent.Prefix(); p != "" {
			name = p + ":" + name
		}
		item.Edit = Edit{Span: s.Element.NameSpan, NewText: name}
	case KindPropEventAssocInAttributeKey:
		text := s.Node.Metadata().Name
		if !s.Attribute.HasValue {
			text += `=""`
		}
		item.Edit = Edit{Span: s.Attribute.KeySpan, NewText: text}
	case KindNamespaceInAttributeKey:
		ns := s.Node.(*model.Namespace)
		alias, _ := resolver.PrefixFor(ns.FQN, resolver.ScopeOf(s.Element))
		text := "xmlns:" + alias
		if !s.Attribute.HasValue {
			text += fmt.Sprintf(`=%q`, ns.FQN)
		}
		item.Edit = Edit{Span: s.Attribute.KeySpan, NewText: text}
	default:
		item.Edit = Edit{Span: s.Attribute.ValueRange(), NewText: item.Label}
	}
	item.Insert = xmldoc.Span{Start: item.Edit.Span.Start, End: max(item.Edit.Span.Start, min(offset, item.Edit.Span.End))}
	return item
}

// qualify returns the tag name for local in namespace as seen from e and,
// when the namespace is not declared yet, the edit that declares it on the
// root element.
func qualify(doc *xmldoc.Document, e *xmldoc.Element, namespace, local string) (string, *Edit) {
	alias, declared := resolver.PrefixFor(namespace, resolver.ScopeOf(e))
	name := local
	if alias != "" {
		name = alias + ":" + local
	}
	if declared || doc.Root == nil {
		return name, nil
	}
	return name, &Edit{Span: insertionPoint(doc.Root), NewText: fmt.Sprintf(` xmlns:%s=%q`, alias, namespace)}
}

// insertionPoint returns the empty span after the last attribute of e, or
// after its name when it has none.
func insertionPoint(e *xmldoc.Element) xmldoc.Span {
	off := e.NameSpan.End
	if n := len(e.Attributes); n > 0 {
		off = e.Attributes[n-1].Span.End
	}
	return xmldoc.Span{Start: off, End: off}
}
