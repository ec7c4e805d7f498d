package completion

import (
	"strings"

	"github.com/albertocavalcante/ui5ls/internal/ui5/model"
	"github.com/albertocavalcante/ui5ls/internal/ui5/resolver"
	"github.com/albertocavalcante/ui5ls/internal/xmldoc"
)

// ClassesInTagName suggests the concrete classes that may be instantiated
// at the element whose name is being typed.
func ClassesInTagName(ctx Context) []Suggestion {
	parts, ok := resolver.PrefixParts(ctx.Prefix, ctx.Scope)
	if !ok {
		return nil
	}
	allowed, ok := allowedType(ctx.Element, ctx.Model)
	if !ok {
		return nil
	}

	var out []Suggestion
	for _, c := range ctx.Model.AssignableClasses(allowed) {
		if c.Abstract {
			continue
		}
		if parts.HasNamespace && c.Namespace != parts.Namespace {
			continue
		}
		if !strings.Contains(c.Name, parts.Base) {
			continue
		}
		out = append(out, Suggestion{Kind: KindClassInTagName, Node: c, Element: ctx.Element})
	}
	return out
}

// allowedType returns the type a child at e must satisfy. It reports false
// when no class may be placed there, including when e would occupy a 0..1
// aggregation that already has a child.
func allowedType(e *xmldoc.Element, m *model.Model) (model.TypeRef, bool) {
	parent := e.Parent
	if parent == nil {
		return model.TypeRef{Kind: model.TypeClass, Name: model.ControlFQN}, true
	}

	if c := resolver.ClassOf(parent, m); c != nil {
		agg := m.DefaultAggregation(c)
		if agg == nil {
			return model.TypeRef{}, false
		}
		if agg.Cardinality == model.CardinalitySingle {
			for _, sib := range parent.SubElements {
				if sib != e && resolver.AggregationOf(sib, m) == nil {
					return model.TypeRef{}, false
				}
			}
		}
		return agg.Type, true
	}

	if agg := resolver.AggregationOf(parent, m); agg != nil {
		if agg.Cardinality == model.CardinalitySingle {
			for _, sib := range parent.SubElements {
				if sib != e {
					return model.TypeRef{}, false
				}
			}
		}
		return agg.Type, true
	}
	return model.TypeRef{}, false
}

// AggregationsInTagName suggests the aggregations of the parent's class.
// Aggregations are never namespace-qualified, so a typed prefix disables
// this provider.
func AggregationsInTagName(ctx Context) []Suggestion {
	if strings.Contains(ctx.Prefix, ":") {
		return nil
	}
	parent := ctx.Element.Parent
	if parent == nil {
		return nil
	}
	c := resolver.ClassOf(parent, ctx.Model)
	if c == nil {
		return nil
	}

	present := make(map[string]bool)
	for _, sib := range parent.SubElements {
		if sib != ctx.Element {
			present[sib.LocalName()] = true
		}
	}

	var out []Suggestion
	seen := make(map[string]bool)
	for _, agg := range ctx.Model.FlattenAggregations(c) {
		if seen[agg.Name] || present[agg.Name] || !strings.Contains(agg.Name, ctx.Prefix) {
			continue
		}
		seen[agg.Name] = true
		out = append(out, Suggestion{Kind: KindAggregationInTagName, Node: agg, Element: ctx.Element})
	}
	return out
}
