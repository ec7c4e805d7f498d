// Package resolver maps XML elements and attributes of a view to framework
// names, and chooses namespace prefixes for namespaces that are not yet
// declared.
package resolver

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/albertocavalcante/ui5ls/internal/ui5/model"
	"github.com/albertocavalcante/ui5ls/internal/xmldoc"
)

// Scope is the set of namespace declarations visible at an element.
type Scope struct {
	bindings map[string]string
}

// ScopeOf returns the resolved scope of e. The parser has already merged
// the declarations of all ancestors, so no walking is needed.
func ScopeOf(e *xmldoc.Element) Scope {
	if e == nil {
		return Scope{}
	}
	return Scope{bindings: e.Namespaces}
}

// Lookup returns the namespace bound to prefix. The empty prefix is the
// default namespace.
func (s Scope) Lookup(prefix string) (string, bool) {
	ns, ok := s.bindings[prefix]
	return ns, ok
}

// Prefixes returns the bound prefixes in sorted order.
func (s Scope) Prefixes() []string {
	out := make([]string, 0, len(s.bindings))
	for p := range s.bindings {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// NamespaceOf returns the namespace URI an element's prefix resolves to.
// Unprefixed elements resolve to the default namespace.
func NamespaceOf(e *xmldoc.Element) (string, bool) {
	return ScopeOf(e).Lookup(e.Prefix())
}

// ResolveName resolves a qualified name against a scope: the namespace
// followed by '.' and the local name. An unresolved prefix yields the
// local name alone.
func ResolveName(name string, scope Scope) string {
	prefix, local := xmldoc.SplitName(name)
	if ns, ok := scope.Lookup(prefix); ok && ns != "" {
		return ns + "." + local
	}
	return local
}

// ResolveFQN returns the fully-qualified name of an element's tag.
func ResolveFQN(e *xmldoc.Element) string {
	return ResolveName(e.Name, ScopeOf(e))
}

// ResolveAttributeFQN resolves a prefixed attribute key. Unprefixed keys do
// not take the default namespace and are returned unchanged.
func ResolveAttributeFQN(a *xmldoc.Attribute) string {
	prefix, local := xmldoc.SplitName(a.Key)
	if prefix == "" {
		return local
	}
	if ns, ok := ScopeOf(a.Parent).Lookup(prefix); ok && ns != "" {
		return ns + "." + local
	}
	return local
}

// Parts is the result of splitting an in-progress tag name.
type Parts struct {
	// Namespace is the URI of the typed prefix, empty when no prefix was
	// typed.
	Namespace    string
	HasNamespace bool
	// Base is the local-name filter.
	Base string
}

var prefixPattern = regexp.MustCompile(`^(\w+):(\w+)?$`)

// PrefixParts splits an in-progress tag name of the form prefix:base. It
// returns false when the text has a prefix that is not bound in scope or
// is otherwise malformed. Text without a colon is a pure base-name filter;
// the namespace is deliberately left open so that callers can offer
// classes from every namespace and import the chosen one.
func PrefixParts(text string, scope Scope) (Parts, bool) {
	if !strings.Contains(text, ":") {
		return Parts{Base: text}, true
	}
	m := prefixPattern.FindStringSubmatch(text)
	if m == nil {
		return Parts{}, false
	}
	ns, ok := scope.Lookup(m[1])
	if !ok {
		return Parts{}, false
	}
	return Parts{Namespace: ns, HasNamespace: true, Base: m[2]}, true
}

// PrefixFor returns the prefix to use for namespace in scope. If the
// namespace is already bound, its prefix is returned with declared set,
// preferring the default namespace. Otherwise the last dotted segment is
// proposed, suffixed with 2, 3, ... while it is bound to something else.
func PrefixFor(namespace string, scope Scope) (alias string, declared bool) {
	if ns, ok := scope.Lookup(""); ok && ns == namespace {
		return "", true
	}
	for _, p := range scope.Prefixes() {
		if p != "" && scope.bindings[p] == namespace {
			return p, true
		}
	}
	base := model.LastSegment(namespace)
	alias = base
	for i := 2; ; i++ {
		if _, taken := scope.Lookup(alias); !taken {
			return alias, false
		}
		alias = base + strconv.Itoa(i)
	}
}

// ClassOf returns the class an element instantiates, or nil.
func ClassOf(e *xmldoc.Element, m *model.Model) *model.Class {
	if e == nil || m == nil {
		return nil
	}
	return m.Class(ResolveFQN(e))
}

// AggregationOf returns the aggregation an element stands for: an
// aggregation of the parent's class written in the parent's namespace.
func AggregationOf(e *xmldoc.Element, m *model.Model) *model.Aggregation {
	if e == nil || e.Parent == nil {
		return nil
	}
	parent := ClassOf(e.Parent, m)
	if parent == nil {
		return nil
	}
	ns, _ := NamespaceOf(e)
	parentNS, _ := NamespaceOf(e.Parent)
	if ns != parentNS {
		return nil
	}
	return m.FindAggregation(parent, e.LocalName())
}

// PropertyOf returns the property an attribute sets, or nil.
func PropertyOf(a *xmldoc.Attribute, m *model.Model) *model.Property {
	if a == nil {
		return nil
	}
	c := ClassOf(a.Parent, m)
	if c == nil {
		return nil
	}
	return m.FindProperty(c, a.Key)
}

// MemberOf returns the property, event or association an attribute
// refers to, or nil.
func MemberOf(a *xmldoc.Attribute, m *model.Model) model.Node {
	if a == nil {
		return nil
	}
	c := ClassOf(a.Parent, m)
	if c == nil {
		return nil
	}
	return m.FindAttribute(c, a.Key)
}
