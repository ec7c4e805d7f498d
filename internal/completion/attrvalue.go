package completion

import (
	"slices"
	"strings"

	"github.com/albertocavalcante/ui5ls/internal/ui5/model"
	"github.com/albertocavalcante/ui5ls/internal/ui5/resolver"
	"github.com/albertocavalcante/ui5ls/internal/xmldoc"
)

// isBinding reports whether an attribute value is a binding expression.
// Bindings are resolved at runtime and never completed as literals.
func isBinding(value string) bool {
	return strings.HasPrefix(strings.TrimSpace(value), "{")
}

var booleanValues = []*BooleanValue{
	{Meta: model.Meta{Name: "true"}, Value: true},
	{Meta: model.Meta{Name: "false"}, Value: false},
}

// BooleanValues suggests true and false for Boolean properties.
func BooleanValues(ctx Context) []Suggestion {
	if isBinding(ctx.Prefix) {
		return nil
	}
	p := resolver.PropertyOf(ctx.Attribute, ctx.Model)
	if p == nil || !p.Type.IsBoolean() {
		return nil
	}
	var out []Suggestion
	for _, v := range booleanValues {
		if strings.Contains(v.Name, ctx.Prefix) {
			out = append(out, Suggestion{Kind: KindBooleanValueInAttributeValue, Node: v, Element: ctx.Element, Attribute: ctx.Attribute})
		}
	}
	return out
}

// EnumValues suggests the fields of an enum-typed property.
func EnumValues(ctx Context) []Suggestion {
	if isBinding(ctx.Prefix) {
		return nil
	}
	p := resolver.PropertyOf(ctx.Attribute, ctx.Model)
	if p == nil || p.Type.Kind != model.TypeEnum {
		return nil
	}
	enum := ctx.Model.Enum(p.Type.Name)
	if enum == nil {
		return nil
	}
	var out []Suggestion
	for _, v := range enum.Values {
		if strings.Contains(v.Name, ctx.Prefix) {
			out = append(out, Suggestion{Kind: KindEnumValueInAttributeValue, Node: v, Element: ctx.Element, Attribute: ctx.Attribute})
		}
	}
	return out
}

// NamespacesInAttributeValue suggests namespace names for xmlns
// attributes. A value ending in '.' explores the children of that
// namespace. Otherwise every applicable namespace containing the value is
// offered, narrowed to those whose last segment equals the declared prefix
// when any such namespace exists.
func NamespacesInAttributeValue(ctx Context) []Suggestion {
	if ctx.Attribute == nil || !xmldoc.IsXMLNSKey(ctx.Attribute.Key) {
		return nil
	}

	var candidates []*model.Namespace
	if parent, ok := strings.CutSuffix(ctx.Prefix, "."); ok {
		for _, ns := range ctx.Model.ChildNamespaces(parent) {
			if ctx.Model.IsExplorableNamespace(ns.FQN) {
				candidates = append(candidates, ns)
			}
		}
	} else {
		for _, ns := range ctx.Model.ApplicableNamespaces() {
			if strings.Contains(ns.FQN, ctx.Prefix) {
				candidates = append(candidates, ns)
			}
		}
		if alias := xmldoc.DeclaredPrefix(ctx.Attribute.Key); alias != "" {
			matching := slices.DeleteFunc(slices.Clone(candidates), func(ns *model.Namespace) bool {
				return model.LastSegment(ns.FQN) != alias
			})
			if len(matching) > 0 {
				candidates = matching
			}
		}
	}

	out := make([]Suggestion, 0, len(candidates))
	for _, ns := range candidates {
		out = append(out, Suggestion{Kind: KindNamespaceInAttributeValue, Node: ns, Element: ctx.Element, Attribute: ctx.Attribute})
	}
	return out
}
