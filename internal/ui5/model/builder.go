package model

import (
	"fmt"
	"slices"
	"strings"
)

// Builder assembles a Model. Symbols may be added in any order; references
// between them are resolved by Build.
type Builder struct {
	m   *Model
	err error
}

// NewBuilder returns a Builder for the given framework version.
func NewBuilder(framework, version string) *Builder {
	return &Builder{m: &Model{
		Framework:          framework,
		Version:            version,
		namespaces:         make(map[string]*Namespace),
		classes:            make(map[string]*Class),
		interfaces:         make(map[string]*Interface),
		enums:              make(map[string]*Enum),
		typedefs:           make(map[string]*Typedef),
		directSubclasses:   make(map[string][]string),
		directImplementers: make(map[string][]string),
		classesByNamespace: make(map[string][]string),
		childNamespaces:    make(map[string][]string),
		applicable:         make(map[string]bool),
		explorable:         make(map[string]bool),
	}}
}

func (b *Builder) claim(fqn string) bool {
	if b.err != nil {
		return false
	}
	m := b.m
	if m.classes[fqn] != nil || m.interfaces[fqn] != nil || m.enums[fqn] != nil || m.typedefs[fqn] != nil {
		b.err = fmt.Errorf("%w: %s", ErrDuplicateSymbol, fqn)
		return false
	}
	return true
}

// AddNamespace registers an explicitly declared namespace. Namespaces that
// are only implied by the FQNs of other symbols are created by Build.
func (b *Builder) AddNamespace(ns *Namespace) *Builder {
	if b.err != nil {
		return b
	}
	if ns.Name == "" {
		ns.Name = LastSegment(ns.FQN)
	}
	if ns.Parent == "" {
		ns.Parent = ParentFQN(ns.FQN)
	}
	b.m.namespaces[ns.FQN] = ns
	return b
}

// AddClass registers a class.
func (b *Builder) AddClass(c *Class) *Builder {
	if !b.claim(c.FQN) {
		return b
	}
	if c.Name == "" {
		c.Name = LastSegment(c.FQN)
	}
	if c.Namespace == "" {
		c.Namespace = ParentFQN(c.FQN)
	}
	for _, a := range c.Aggregations {
		a.Owner = c.FQN
	}
	for _, p := range c.Properties {
		p.Owner = c.FQN
	}
	for _, e := range c.Events {
		e.Owner = c.FQN
	}
	for _, a := range c.Associations {
		a.Owner = c.FQN
	}
	b.m.classes[c.FQN] = c
	return b
}

// AddInterface registers an interface.
func (b *Builder) AddInterface(i *Interface) *Builder {
	if !b.claim(i.FQN) {
		return b
	}
	if i.Name == "" {
		i.Name = LastSegment(i.FQN)
	}
	if i.Namespace == "" {
		i.Namespace = ParentFQN(i.FQN)
	}
	b.m.interfaces[i.FQN] = i
	return b
}

// AddEnum registers an enum.
func (b *Builder) AddEnum(e *Enum) *Builder {
	if !b.claim(e.FQN) {
		return b
	}
	if e.Name == "" {
		e.Name = LastSegment(e.FQN)
	}
	if e.Namespace == "" {
		e.Namespace = ParentFQN(e.FQN)
	}
	for _, v := range e.Values {
		v.Enum = e.FQN
	}
	b.m.enums[e.FQN] = e
	return b
}

// AddTypedef registers a typedef.
func (b *Builder) AddTypedef(t *Typedef) *Builder {
	if !b.claim(t.FQN) {
		return b
	}
	if t.Name == "" {
		t.Name = LastSegment(t.FQN)
	}
	if t.Namespace == "" {
		t.Namespace = ParentFQN(t.FQN)
	}
	b.m.typedefs[t.FQN] = t
	return b
}

// Build validates the collected symbols, resolves type references and
// computes the lookup indexes. The Builder must not be used afterwards.
func (b *Builder) Build() (*Model, error) {
	if b.err != nil {
		return nil, b.err
	}
	m := b.m
	b.m = nil

	for fqn := range m.classes {
		if err := checkExtendsChain(m, fqn); err != nil {
			return nil, err
		}
	}

	for _, c := range m.classes {
		ensureNamespace(m, c.Namespace)
	}
	for _, i := range m.interfaces {
		ensureNamespace(m, i.Namespace)
	}
	for _, e := range m.enums {
		ensureNamespace(m, e.Namespace)
	}
	for _, t := range m.typedefs {
		ensureNamespace(m, t.Namespace)
	}
	for fqn := range m.namespaces {
		ensureNamespace(m, ParentFQN(fqn))
	}

	for _, c := range m.classes {
		for _, a := range c.Aggregations {
			a.Type = resolveType(m, a.Type)
			for i := range a.AltTypes {
				a.AltTypes[i] = resolveType(m, a.AltTypes[i])
			}
		}
		for _, p := range c.Properties {
			p.Type = resolveType(m, p.Type)
		}
		for _, a := range c.Associations {
			a.Type = resolveType(m, a.Type)
		}
	}

	for fqn, c := range m.classes {
		m.classOrder = append(m.classOrder, fqn)
		if c.Extends != "" {
			m.directSubclasses[c.Extends] = append(m.directSubclasses[c.Extends], fqn)
		}
		for _, iface := range c.Implements {
			m.directImplementers[iface] = append(m.directImplementers[iface], fqn)
		}
		m.classesByNamespace[c.Namespace] = append(m.classesByNamespace[c.Namespace], fqn)
	}
	slices.Sort(m.classOrder)
	for _, list := range m.classesByNamespace {
		slices.Sort(list)
	}

	for fqn, ns := range m.namespaces {
		m.namespaceOrder = append(m.namespaceOrder, fqn)
		if fqn != "" {
			m.childNamespaces[ns.Parent] = append(m.childNamespaces[ns.Parent], fqn)
		}
	}
	slices.Sort(m.namespaceOrder)
	for _, list := range m.childNamespaces {
		slices.Sort(list)
	}

	for _, c := range m.classes {
		if c.Abstract || !m.IsElementClass(c) {
			continue
		}
		m.applicable[c.Namespace] = true
		for ns := c.Namespace; ns != ""; ns = ParentFQN(ns) {
			m.explorable[ns] = true
		}
	}
	return m, nil
}

func checkExtendsChain(m *Model, fqn string) error {
	seen := make(map[string]bool)
	for cur := m.classes[fqn]; cur != nil; cur = m.classes[cur.Extends] {
		if seen[cur.FQN] {
			return fmt.Errorf("%w: %s", ErrCyclicExtends, fqn)
		}
		seen[cur.FQN] = true
		if cur.Extends == "" {
			break
		}
	}
	return nil
}

func ensureNamespace(m *Model, fqn string) {
	for fqn != "" {
		if _, ok := m.namespaces[fqn]; ok {
			return
		}
		m.namespaces[fqn] = &Namespace{
			Meta:   Meta{Name: LastSegment(fqn)},
			FQN:    fqn,
			Parent: ParentFQN(fqn),
		}
		fqn = ParentFQN(fqn)
	}
}

func resolveType(m *Model, t TypeRef) TypeRef {
	if t.Kind != TypeUnresolved || t.Name == "" {
		return t
	}
	// Some metadata spells primitives in lower case.
	if p := ParseType(t.Name); p.Kind == TypePrimitive {
		p.Array = p.Array || t.Array
		return p
	}
	name := strings.TrimSpace(t.Name)
	switch {
	case m.classes[name] != nil:
		t.Kind = TypeClass
	case m.interfaces[name] != nil:
		t.Kind = TypeInterface
	case m.enums[name] != nil:
		t.Kind = TypeEnum
	case m.typedefs[name] != nil:
		t.Kind = TypeTypedef
	}
	t.Name = name
	return t
}
