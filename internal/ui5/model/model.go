package model

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Well-known framework classes.
const (
	ElementFQN            = "sap.ui.core.Element"
	ControlFQN            = "sap.ui.core.Control"
	ViewFQN               = "sap.ui.core.mvc.View"
	FragmentDefinitionFQN = "sap.ui.core.FragmentDefinition"
)

// ErrCyclicExtends is returned by Build when the extends graph has a cycle.
var ErrCyclicExtends = errors.New("cyclic extends chain")

// ErrDuplicateSymbol is returned by Build when two symbols share an FQN.
var ErrDuplicateSymbol = errors.New("duplicate symbol")

// Model is an immutable snapshot of the framework metadata for one
// (framework, version) pair. It is safe for concurrent use.
type Model struct {
	Framework string
	Version   string

	namespaces map[string]*Namespace
	classes    map[string]*Class
	interfaces map[string]*Interface
	enums      map[string]*Enum
	typedefs   map[string]*Typedef

	classOrder     []string
	namespaceOrder []string

	directSubclasses   map[string][]string
	directImplementers map[string][]string
	classesByNamespace map[string][]string
	childNamespaces    map[string][]string

	// applicable holds namespaces that directly contain a concrete element class.
	applicable map[string]bool
	// explorable holds applicable namespaces and all of their ancestors.
	explorable map[string]bool
}

// Class returns the class with the given FQN, or nil.
func (m *Model) Class(fqn string) *Class { return m.classes[fqn] }

// Interface returns the interface with the given FQN, or nil.
func (m *Model) Interface(fqn string) *Interface { return m.interfaces[fqn] }

// Enum returns the enum with the given FQN, or nil.
func (m *Model) Enum(fqn string) *Enum { return m.enums[fqn] }

// Typedef returns the typedef with the given FQN, or nil.
func (m *Model) Typedef(fqn string) *Typedef { return m.typedefs[fqn] }

// Namespace returns the namespace with the given FQN, or nil.
func (m *Model) Namespace(fqn string) *Namespace { return m.namespaces[fqn] }

// Classes returns all classes ordered by FQN.
func (m *Model) Classes() []*Class {
	out := make([]*Class, 0, len(m.classOrder))
	for _, fqn := range m.classOrder {
		out = append(out, m.classes[fqn])
	}
	return out
}

// Namespaces returns all namespaces ordered by FQN.
func (m *Model) Namespaces() []*Namespace {
	out := make([]*Namespace, 0, len(m.namespaceOrder))
	for _, fqn := range m.namespaceOrder {
		out = append(out, m.namespaces[fqn])
	}
	return out
}

// ClassesIn returns the classes directly owned by a namespace.
func (m *Model) ClassesIn(namespace string) []*Class {
	fqns := m.classesByNamespace[namespace]
	out := make([]*Class, 0, len(fqns))
	for _, fqn := range fqns {
		out = append(out, m.classes[fqn])
	}
	return out
}

// ChildNamespaces returns the namespaces whose parent is the given namespace.
func (m *Model) ChildNamespaces(namespace string) []*Namespace {
	fqns := m.childNamespaces[namespace]
	out := make([]*Namespace, 0, len(fqns))
	for _, fqn := range fqns {
		out = append(out, m.namespaces[fqn])
	}
	return out
}

// Superclass returns the class c extends, or nil at the root of the
// hierarchy or when the superclass is not part of the model.
func (m *Model) Superclass(c *Class) *Class {
	if c == nil || c.Extends == "" {
		return nil
	}
	return m.classes[c.Extends]
}

// IsSubclassOf reports whether c is the class fqn or inherits from it.
func (m *Model) IsSubclassOf(c *Class, fqn string) bool {
	for cur := c; cur != nil; cur = m.Superclass(cur) {
		if cur.FQN == fqn {
			return true
		}
	}
	return false
}

// Implements reports whether c or one of its superclasses implements the
// interface fqn.
func (m *Model) Implements(c *Class, fqn string) bool {
	for cur := c; cur != nil; cur = m.Superclass(cur) {
		if slices.Contains(cur.Implements, fqn) {
			return true
		}
	}
	return false
}

// IsElementClass reports whether c is a sap.ui.core.Element subclass, i.e.
// something that can be instantiated in an XML view.
func (m *Model) IsElementClass(c *Class) bool {
	return m.IsSubclassOf(c, ElementFQN)
}

// IsAssignable reports whether an instance of c satisfies the type t.
func (m *Model) IsAssignable(c *Class, t TypeRef) bool {
	if c == nil {
		return false
	}
	switch t.Kind {
	case TypeClass:
		return m.IsSubclassOf(c, t.Name)
	case TypeInterface:
		return m.Implements(c, t.Name)
	case TypePrimitive:
		return t.Name == PrimitiveAny || t.Name == PrimitiveObject
	default:
		return false
	}
}

// Subclasses returns all transitive subclasses of the class fqn, excluding
// the class itself, ordered by FQN.
func (m *Model) Subclasses(fqn string) []*Class {
	seen := make(map[string]bool)
	queue := slices.Clone(m.directSubclasses[fqn])
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if seen[cur] {
			continue
		}
		seen[cur] = true
		queue = append(queue, m.directSubclasses[cur]...)
	}
	return m.sortedClasses(seen)
}

// Implementers returns every class implementing the interface fqn, either
// directly or through a superclass, ordered by FQN.
func (m *Model) Implementers(fqn string) []*Class {
	seen := make(map[string]bool)
	for _, direct := range m.directImplementers[fqn] {
		seen[direct] = true
		for _, sub := range m.Subclasses(direct) {
			seen[sub.FQN] = true
		}
	}
	return m.sortedClasses(seen)
}

// AssignableClasses returns every class assignable to t: for a class type
// the class and its subclasses, for an interface type its implementers.
func (m *Model) AssignableClasses(t TypeRef) []*Class {
	switch t.Kind {
	case TypeClass:
		subs := m.Subclasses(t.Name)
		if c := m.classes[t.Name]; c != nil {
			subs = append([]*Class{c}, subs...)
		}
		return subs
	case TypeInterface:
		return m.Implementers(t.Name)
	case TypePrimitive:
		if t.Name == PrimitiveAny || t.Name == PrimitiveObject {
			return m.Classes()
		}
	}
	return nil
}

// IsApplicableNamespace reports whether the namespace directly owns at least
// one concrete element class.
func (m *Model) IsApplicableNamespace(fqn string) bool {
	return m.applicable[fqn]
}

// IsExplorableNamespace reports whether the namespace is applicable or is an
// ancestor of an applicable namespace.
func (m *Model) IsExplorableNamespace(fqn string) bool {
	return m.explorable[fqn]
}

// ApplicableNamespaces returns all applicable namespaces ordered by FQN.
func (m *Model) ApplicableNamespaces() []*Namespace {
	var out []*Namespace
	for _, fqn := range m.namespaceOrder {
		if m.applicable[fqn] {
			out = append(out, m.namespaces[fqn])
		}
	}
	return out
}

// ResolveType returns the node a TypeRef points to, or nil for primitives
// and unresolved references.
func (m *Model) ResolveType(t TypeRef) Node {
	switch t.Kind {
	case TypeClass:
		if c := m.classes[t.Name]; c != nil {
			return c
		}
	case TypeInterface:
		if i := m.interfaces[t.Name]; i != nil {
			return i
		}
	case TypeEnum:
		if e := m.enums[t.Name]; e != nil {
			return e
		}
	case TypeTypedef:
		if td := m.typedefs[t.Name]; td != nil {
			return td
		}
	}
	return nil
}

// FQNOf returns the fully-qualified name of a node. Members are qualified
// with their owning class.
func FQNOf(n Node) string {
	switch n := n.(type) {
	case *Namespace:
		return n.FQN
	case *Class:
		return n.FQN
	case *Interface:
		return n.FQN
	case *Enum:
		return n.FQN
	case *Typedef:
		return n.FQN
	case *EnumValue:
		return n.Enum + "." + n.Name
	case *Aggregation:
		return n.Owner + "." + n.Name
	case *Property:
		return n.Owner + "." + n.Name
	case *Event:
		return n.Owner + "." + n.Name
	case *Association:
		return n.Owner + "." + n.Name
	case nil:
		return ""
	default:
		return n.Metadata().Name
	}
}

func (m *Model) sortedClasses(set map[string]bool) []*Class {
	fqns := make([]string, 0, len(set))
	for fqn := range set {
		if m.classes[fqn] != nil {
			fqns = append(fqns, fqn)
		}
	}
	slices.Sort(fqns)
	out := make([]*Class, 0, len(fqns))
	for _, fqn := range fqns {
		out = append(out, m.classes[fqn])
	}
	return out
}

// ParseType converts a type name as written in the metadata ("boolean",
// "sap.m.ButtonType", "sap.ui.core.Control[]") into a TypeRef. Non-primitive
// names are returned unresolved; Build resolves them against the model.
func ParseType(name string) TypeRef {
	name = strings.TrimSpace(name)
	array := strings.HasSuffix(name, "[]")
	name = strings.TrimSuffix(name, "[]")
	if p, ok := primitiveNames[strings.ToLower(name)]; ok {
		return TypeRef{Kind: TypePrimitive, Name: p, Array: array}
	}
	return TypeRef{Kind: TypeUnresolved, Name: name, Array: array}
}

var primitiveNames = map[string]string{
	"string":  PrimitiveString,
	"boolean": PrimitiveBoolean,
	"int":     PrimitiveInteger,
	"integer": PrimitiveInteger,
	"float":   PrimitiveFloat,
	"number":  PrimitiveNumber,
	"object":  PrimitiveObject,
	"any":     PrimitiveAny,
}

func (m *Model) String() string {
	return fmt.Sprintf("%s %s (%d classes, %d namespaces)", m.Framework, m.Version, len(m.classes), len(m.namespaces))
}
