package completion

import (
	"strings"

	"github.com/albertocavalcante/ui5ls/internal/ui5/model"
	"github.com/albertocavalcante/ui5ls/internal/ui5/resolver"
	"github.com/albertocavalcante/ui5ls/internal/xmldoc"
)

// MembersInAttributeKey suggests the properties, events and associations of
// the element's class, excluding attributes already set on the element.
// The attribute under the cursor stays eligible.
func MembersInAttributeKey(ctx Context) []Suggestion {
	if strings.Contains(ctx.Prefix, ":") {
		return nil
	}
	c := resolver.ClassOf(ctx.Element, ctx.Model)
	if c == nil {
		return nil
	}

	present := make(map[string]bool)
	for _, a := range ctx.Element.Attributes {
		if a != ctx.Attribute {
			present[a.Key] = true
		}
	}

	var out []Suggestion
	seen := make(map[string]bool)
	add := func(n model.Node) {
		name := n.Metadata().Name
		if seen[name] || present[name] || !strings.Contains(name, ctx.Prefix) {
			return
		}
		seen[name] = true
		out = append(out, Suggestion{Kind: KindPropEventAssocInAttributeKey, Node: n, Element: ctx.Element, Attribute: ctx.Attribute})
	}
	for _, p := range ctx.Model.FlattenProperties(c) {
		add(p)
	}
	for _, e := range ctx.Model.FlattenEvents(c) {
		add(e)
	}
	for _, a := range ctx.Model.FlattenAssociations(c) {
		add(a)
	}
	return out
}

// isRootView reports whether e is the root view or fragment definition,
// the only place namespaces are declared.
func isRootView(e *xmldoc.Element, m *model.Model) bool {
	if e == nil || !e.IsRoot() {
		return false
	}
	c := resolver.ClassOf(e, m)
	if c == nil {
		return false
	}
	return m.IsSubclassOf(c, model.ViewFQN) || c.FQN == model.FragmentDefinitionFQN
}

// NamespacesInAttributeKey suggests xmlns declarations for the applicable
// namespaces that are not declared on the root element yet.
func NamespacesInAttributeKey(ctx Context) []Suggestion {
	if !isRootView(ctx.Element, ctx.Model) {
		return nil
	}
	filter, ok := xmlnsKeyFilter(ctx.Prefix)
	if !ok {
		return nil
	}

	declared := make(map[string]bool)
	for _, a := range ctx.Element.Attributes {
		if a != ctx.Attribute && xmldoc.IsXMLNSKey(a.Key) && a.Value != "" {
			declared[a.Value] = true
		}
	}

	var out []Suggestion
	for _, ns := range ctx.Model.ApplicableNamespaces() {
		if declared[ns.FQN] || !strings.Contains(model.LastSegment(ns.FQN), filter) {
			continue
		}
		out = append(out, Suggestion{Kind: KindNamespaceInAttributeKey, Node: ns, Element: ctx.Element, Attribute: ctx.Attribute})
	}
	return out
}

// xmlnsKeyFilter checks that prefix can still become an xmlns key and
// returns the part typed after "xmlns:".
func xmlnsKeyFilter(prefix string) (string, bool) {
	if strings.HasPrefix("xmlns:", prefix) {
		return "", true
	}
	rest, ok := strings.CutPrefix(prefix, "xmlns:")
	if !ok || strings.ContainsAny(rest, ":= ") {
		return "", false
	}
	return rest, true
}
