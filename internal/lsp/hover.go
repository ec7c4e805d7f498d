package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"go.lsp.dev/protocol"

	"github.com/albertocavalcante/ui5ls/internal/ui5/model"
	"github.com/albertocavalcante/ui5ls/internal/ui5/resolver"
	"github.com/albertocavalcante/ui5ls/internal/xmldoc"
)

func (s *Server) handleHover(ctx context.Context, params json.RawMessage) (any, error) {
	var p protocol.HoverParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, err
	}

	doc := s.document(p.TextDocument.URI)
	m := s.model.Load()
	if doc == nil || m == nil {
		return nil, nil
	}

	markdown, span, ok := hoverAt(doc.XML, m, toOffset(doc.XML, p.Position))
	log.Printf("hover: %s @ %d:%d -> %t", doc.URI, p.Position.Line, p.Position.Character, ok)
	if !ok {
		return nil, nil
	}

	rng := toRange(doc.XML, span)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.Markdown,
			Value: markdown,
		},
		Range: &rng,
	}, nil
}

// hoverAt returns the documentation for the token at off and the span it
// covers.
func hoverAt(doc *xmldoc.Document, m *model.Model, off int) (string, xmldoc.Span, bool) {
	loc := doc.Locate(off)
	switch loc.Kind {
	case xmldoc.ContextElementName:
		e := loc.Element
		if c := resolver.ClassOf(e, m); c != nil {
			return formatClassHover(m, c), e.NameSpan, true
		}
		if agg := resolver.AggregationOf(e, m); agg != nil {
			return formatMemberHover(agg), e.NameSpan, true
		}

	case xmldoc.ContextAttributeKey:
		a := loc.Attribute
		if loc.Synthetic() {
			return "", xmldoc.Span{}, false
		}
		if xmldoc.IsXMLNSKey(a.Key) {
			if ns := m.Namespace(a.Value); ns != nil {
				return formatNamespaceHover(ns), a.KeySpan, true
			}
			return "", xmldoc.Span{}, false
		}
		if n := resolver.MemberOf(a, m); n != nil {
			return formatMemberHover(n), a.KeySpan, true
		}

	case xmldoc.ContextAttributeValue:
		a := loc.Attribute
		if xmldoc.IsXMLNSKey(a.Key) {
			if ns := m.Namespace(a.Value); ns != nil {
				return formatNamespaceHover(ns), a.ValueSpan, true
			}
			return "", xmldoc.Span{}, false
		}
		p := resolver.PropertyOf(a, m)
		if p == nil || p.Type.Kind != model.TypeEnum {
			return "", xmldoc.Span{}, false
		}
		if enum := m.Enum(p.Type.Name); enum != nil {
			for _, v := range enum.Values {
				if v.Name == a.Value {
					return formatEnumValueHover(v), a.ValueSpan, true
				}
			}
		}
	}
	return "", xmldoc.Span{}, false
}

// formatClassHover formats a class as markdown.
func formatClassHover(m *model.Model, c *model.Class) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**class** `%s`", c.FQN)
	if c.Extends != "" {
		fmt.Fprintf(&b, " extends `%s`", c.Extends)
	}
	b.WriteString("\n\n")
	writeMeta(&b, &c.Meta)
	if agg := m.DefaultAggregation(c); agg != nil {
		fmt.Fprintf(&b, "\n\nDefault aggregation: `%s`", agg.Name)
	}
	return strings.TrimSpace(b.String())
}

// formatMemberHover formats an aggregation, property, event or
// association as markdown.
func formatMemberHover(n model.Node) string {
	var b strings.Builder
	meta := n.Metadata()
	fmt.Fprintf(&b, "**%s** `%s`", strings.ToLower(n.Kind().String()), meta.Name)
	switch n := n.(type) {
	case *model.Aggregation:
		fmt.Fprintf(&b, ": `%s` (%s)", n.Type, n.Cardinality)
	case *model.Association:
		fmt.Fprintf(&b, ": `%s` (%s)", n.Type, n.Cardinality)
	case *model.Property:
		fmt.Fprintf(&b, ": `%s`", n.Type)
		if n.Default != "" {
			fmt.Fprintf(&b, " = `%s`", n.Default)
		}
	}
	b.WriteString("\n\n")
	writeMeta(&b, meta)
	return strings.TrimSpace(b.String())
}

func formatEnumValueHover(v *model.EnumValue) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**enum value** `%s` of `%s`\n\n", v.Name, v.Enum)
	writeMeta(&b, &v.Meta)
	return strings.TrimSpace(b.String())
}

func formatNamespaceHover(ns *model.Namespace) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**namespace** `%s`\n\n", ns.FQN)
	writeMeta(&b, &ns.Meta)
	return strings.TrimSpace(b.String())
}

// writeMeta appends the status notes and the description.
func writeMeta(b *strings.Builder, meta *model.Meta) {
	if d := meta.Deprecated; d != nil {
		b.WriteString("**Deprecated**")
		if d.Since != "" {
			fmt.Fprintf(b, " since %s", d.Since)
		}
		b.WriteString(".")
		if d.Text != "" {
			b.WriteString(" " + d.Text)
		}
		b.WriteString("\n\n")
	}
	if x := meta.Experimental; x != nil {
		b.WriteString("**Experimental**")
		if x.Since != "" {
			fmt.Fprintf(b, " since %s", x.Since)
		}
		b.WriteString(".")
		if x.Text != "" {
			b.WriteString(" " + x.Text)
		}
		b.WriteString("\n\n")
	}
	if meta.Description != "" {
		b.WriteString(meta.Description + "\n\n")
	}
	if meta.Since != "" {
		fmt.Fprintf(b, "Since %s", meta.Since)
	}
}
