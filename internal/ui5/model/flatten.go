package model

// MemberKind selects one of the member lists of a class.
type MemberKind int

const (
	MemberAggregations MemberKind = iota
	MemberProperties
	MemberEvents
	MemberAssociations
)

// FlattenAggregations returns the aggregations of c followed by those of
// its ancestors, nearest first. Overridden names are not deduplicated.
func (m *Model) FlattenAggregations(c *Class) []*Aggregation {
	return flatten(m, c, func(c *Class) []*Aggregation { return c.Aggregations })
}

// FlattenProperties is FlattenAggregations for properties.
func (m *Model) FlattenProperties(c *Class) []*Property {
	return flatten(m, c, func(c *Class) []*Property { return c.Properties })
}

// FlattenEvents is FlattenAggregations for events.
func (m *Model) FlattenEvents(c *Class) []*Event {
	return flatten(m, c, func(c *Class) []*Event { return c.Events })
}

// FlattenAssociations is FlattenAggregations for associations.
func (m *Model) FlattenAssociations(c *Class) []*Association {
	return flatten(m, c, func(c *Class) []*Association { return c.Associations })
}

// FlattenMembers returns the flattened member list of the given kind as
// generic nodes.
func (m *Model) FlattenMembers(c *Class, kind MemberKind) []Node {
	var out []Node
	switch kind {
	case MemberAggregations:
		for _, a := range m.FlattenAggregations(c) {
			out = append(out, a)
		}
	case MemberProperties:
		for _, p := range m.FlattenProperties(c) {
			out = append(out, p)
		}
	case MemberEvents:
		for _, e := range m.FlattenEvents(c) {
			out = append(out, e)
		}
	case MemberAssociations:
		for _, a := range m.FlattenAssociations(c) {
			out = append(out, a)
		}
	}
	return out
}

func flatten[T any](m *Model, c *Class, own func(*Class) []T) []T {
	var out []T
	for cur := c; cur != nil; cur = m.Superclass(cur) {
		out = append(out, own(cur)...)
	}
	return out
}

// FindAggregation returns the nearest aggregation of c with the given name.
func (m *Model) FindAggregation(c *Class, name string) *Aggregation {
	for _, a := range m.FlattenAggregations(c) {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// FindProperty returns the nearest property of c with the given name.
func (m *Model) FindProperty(c *Class, name string) *Property {
	for _, p := range m.FlattenProperties(c) {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// FindEvent returns the nearest event of c with the given name.
func (m *Model) FindEvent(c *Class, name string) *Event {
	for _, e := range m.FlattenEvents(c) {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// FindAssociation returns the nearest association of c with the given name.
func (m *Model) FindAssociation(c *Class, name string) *Association {
	for _, a := range m.FlattenAssociations(c) {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// FindAttribute resolves an attribute key of an element of class c to a
// property, event or association, in that order.
func (m *Model) FindAttribute(c *Class, name string) Node {
	if p := m.FindProperty(c, name); p != nil {
		return p
	}
	if e := m.FindEvent(c, name); e != nil {
		return e
	}
	if a := m.FindAssociation(c, name); a != nil {
		return a
	}
	return nil
}

// DefaultAggregation returns the default aggregation of c, which may be
// declared by an ancestor.
func (m *Model) DefaultAggregation(c *Class) *Aggregation {
	for cur := c; cur != nil; cur = m.Superclass(cur) {
		if cur.DefaultAggregation != "" {
			return m.FindAggregation(c, cur.DefaultAggregation)
		}
	}
	return nil
}
