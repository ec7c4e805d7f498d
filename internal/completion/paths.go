package completion

import (
	"strings"

	"github.com/albertocavalcante/ui5ls/internal/odata"
	"github.com/albertocavalcante/ui5ls/internal/ui5/macros"
	"github.com/albertocavalcante/ui5ls/internal/ui5/model"
	"github.com/albertocavalcante/ui5ls/internal/ui5/resolver"
	"github.com/albertocavalcante/ui5ls/internal/xmldoc"
)

// AnnotationPaths suggests metadata paths for the contextPath and
// metaPath properties of building blocks. metaPath is relative to the
// element's contextPath when one is set and absolute otherwise.
func AnnotationPaths(ctx Context) []Suggestion {
	if ctx.Service == nil || ctx.Service.Container == nil || ctx.Attribute == nil || isBinding(ctx.Prefix) {
		return nil
	}
	bb, ok := macros.Of(ctx.Element, ctx.Model)
	if !ok {
		return nil
	}

	var paths []odata.Path
	switch ctx.Attribute.Key {
	case "contextPath":
		paths = odata.CollectPaths(ctx.Service, ctx.Service.Container, bb.ContextPathOptions(), macros.MaxPathSegments)
	case "metaPath":
		start := odata.Node(ctx.Service.Container)
		if cp := ctx.Element.Attribute("contextPath"); cp != nil && cp.Value != "" {
			res := odata.ResolvePathTarget(ctx.Service, cp.Value, nil)
			if res.Target == nil {
				return nil
			}
			start = res.Target
		}
		paths = odata.CollectPaths(ctx.Service, start, bb.MetaPathOptions(), macros.MaxPathSegments)
	default:
		return nil
	}

	var out []Suggestion
	for _, p := range paths {
		if !strings.HasPrefix(p.Text, ctx.Prefix) {
			continue
		}
		out = append(out, Suggestion{
			Kind:      KindAnnotationPathInAttributeValue,
			Node:      &PathValue{Meta: model.Meta{Name: p.Text}, Path: p},
			Element:   ctx.Element,
			Attribute: ctx.Attribute,
		})
	}
	return out
}

// FilterBarIDs suggests the ids of the filter bars in the document for
// the filterBar property of building blocks.
func FilterBarIDs(ctx Context) []Suggestion {
	if ctx.Attribute == nil || ctx.Attribute.Key != "filterBar" {
		return nil
	}
	c := resolver.ClassOf(ctx.Element, ctx.Model)
	if c == nil || ctx.Model.FindProperty(c, "filterBar") == nil {
		return nil
	}

	var out []Suggestion
	ctx.Document.Walk(func(e *xmldoc.Element) bool {
		if e == ctx.Element {
			return true
		}
		fb := resolver.ClassOf(e, ctx.Model)
		if fb == nil || fb.FQN != macros.FilterBarFQN {
			return true
		}
		id := e.ID()
		if id == "" || !strings.Contains(id, ctx.Prefix) {
			return true
		}
		out = append(out, Suggestion{
			Kind:      KindFilterBarIDInAttributeValue,
			Node:      &IDValue{Meta: model.Meta{Name: id}, Element: e},
			Element:   ctx.Element,
			Attribute: ctx.Attribute,
		})
		return true
	})
	return out
}
