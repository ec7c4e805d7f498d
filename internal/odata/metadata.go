// Package odata models the entity metadata of an OData V4 service and
// resolves annotation and metadata paths against it.
//
// The navigation graph may contain cycles (an entity navigating back to
// itself or to an ancestor); every traversal in this package carries a
// visited set and a depth budget.
package odata

import (
	"slices"
	"strings"
)

// Kind identifies the type of a metadata node.
type Kind int

const (
	KindEntityContainer Kind = iota
	KindEntitySet
	KindSingleton
	KindEntityType
	KindNavigationProperty
	KindProperty
	KindAnnotation
)

func (k Kind) String() string {
	switch k {
	case KindEntityContainer:
		return "EntityContainer"
	case KindEntitySet:
		return "EntitySet"
	case KindSingleton:
		return "Singleton"
	case KindEntityType:
		return "EntityType"
	case KindNavigationProperty:
		return "NavigationProperty"
	case KindProperty:
		return "Property"
	case KindAnnotation:
		return "Annotation"
	default:
		return "Unknown"
	}
}

// Node is implemented by every node of the entity graph.
type Node interface {
	Kind() Kind
	// Name is the path segment that addresses the node.
	Name() string
}

// Metadata is the entity graph of one service.
type Metadata struct {
	// Namespace of the schema that holds the entity container.
	Namespace string
	Container *EntityContainer

	// EntityTypes is keyed by fully-qualified name.
	EntityTypes map[string]*EntityType

	// Aliases maps namespace aliases (schema and vocabulary) to namespaces.
	Aliases map[string]string

	// Annotations is keyed by vocabulary alias, then by target path.
	Annotations map[string]map[string][]*Annotation
}

// EntityContainer owns the entity sets and singletons of a service.
type EntityContainer struct {
	FQN        string
	name       string
	EntitySets []*EntitySet
	Singletons []*Singleton
}

func (*EntityContainer) Kind() Kind     { return KindEntityContainer }
func (c *EntityContainer) Name() string { return c.name }

// EntitySet is a collection of entities of one type.
type EntitySet struct {
	name       string
	EntityType string
}

func (*EntitySet) Kind() Kind     { return KindEntitySet }
func (s *EntitySet) Name() string { return s.name }

// Singleton is a single addressable entity.
type Singleton struct {
	name       string
	EntityType string
}

func (*Singleton) Kind() Kind     { return KindSingleton }
func (s *Singleton) Name() string { return s.name }

// EntityType is a structured type with properties and navigation.
type EntityType struct {
	FQN                  string
	name                 string
	Keys                 []string
	Properties           []*Property
	NavigationProperties []*NavigationProperty
}

func (*EntityType) Kind() Kind     { return KindEntityType }
func (t *EntityType) Name() string { return t.name }

// Property is a structural property of an entity type.
type Property struct {
	name  string
	Type  string
	Owner string
}

func (*Property) Kind() Kind     { return KindProperty }
func (p *Property) Name() string { return p.name }

// NavigationProperty is an edge of the navigation graph. TargetType is a
// handle (FQN) rather than a pointer since the graph may be cyclic.
type NavigationProperty struct {
	name         string
	Owner        string
	TargetType   string
	IsCollection bool
	Partner      string
}

func (*NavigationProperty) Kind() Kind     { return KindNavigationProperty }
func (n *NavigationProperty) Name() string { return n.name }

// Annotation is a vocabulary term applied to a target.
type Annotation struct {
	// Term is the fully-qualified term, e.g. com.sap.vocabularies.UI.v1.LineItem.
	Term      string
	Qualifier string
	Target    string
}

func (*Annotation) Kind() Kind { return KindAnnotation }

// Name returns the path segment addressing the annotation: @Term#Qualifier.
func (a *Annotation) Name() string {
	if a.Qualifier != "" {
		return "@" + a.Term + "#" + a.Qualifier
	}
	return "@" + a.Term
}

// Well-known UI vocabulary terms.
const (
	UIVocabulary                     = "com.sap.vocabularies.UI.v1"
	TermLineItem                     = UIVocabulary + ".LineItem"
	TermChart                        = UIVocabulary + ".Chart"
	TermPresentationVariant          = UIVocabulary + ".PresentationVariant"
	TermSelectionPresentationVariant = UIVocabulary + ".SelectionPresentationVariant"
	TermSelectionFields              = UIVocabulary + ".SelectionFields"
	TermFieldGroup                   = UIVocabulary + ".FieldGroup"
)

// New returns empty metadata ready to be populated.
func New(namespace string) *Metadata {
	return &Metadata{
		Namespace:   namespace,
		EntityTypes: make(map[string]*EntityType),
		Aliases:     make(map[string]string),
		Annotations: make(map[string]map[string][]*Annotation),
	}
}

// NewContainer returns an entity container in the metadata's namespace and
// installs it.
func (md *Metadata) NewContainer(name string) *EntityContainer {
	md.Container = &EntityContainer{FQN: md.Namespace + "." + name, name: name}
	return md.Container
}

// AddEntitySet adds an entity set of the given entity type FQN.
func (c *EntityContainer) AddEntitySet(name, entityType string) *EntitySet {
	s := &EntitySet{name: name, EntityType: entityType}
	c.EntitySets = append(c.EntitySets, s)
	return s
}

// AddSingleton adds a singleton of the given entity type FQN.
func (c *EntityContainer) AddSingleton(name, entityType string) *Singleton {
	s := &Singleton{name: name, EntityType: entityType}
	c.Singletons = append(c.Singletons, s)
	return s
}

// AddEntityType registers an entity type under namespace.name.
func (md *Metadata) AddEntityType(namespace, name string) *EntityType {
	t := &EntityType{FQN: namespace + "." + name, name: name}
	md.EntityTypes[t.FQN] = t
	return t
}

// AddProperty adds a structural property.
func (t *EntityType) AddProperty(name, typ string) *Property {
	p := &Property{name: name, Type: typ, Owner: t.FQN}
	t.Properties = append(t.Properties, p)
	return p
}

// AddNavigation adds a navigation property to the entity type target.
func (t *EntityType) AddNavigation(name, target string, collection bool) *NavigationProperty {
	n := &NavigationProperty{name: name, Owner: t.FQN, TargetType: target, IsCollection: collection}
	t.NavigationProperties = append(t.NavigationProperties, n)
	return n
}

// Annotate records an annotation. The term may use an alias; it is
// expanded to the fully-qualified term.
func (md *Metadata) Annotate(target, term, qualifier string) *Annotation {
	alias, fullTerm := md.splitTerm(term)
	a := &Annotation{Term: fullTerm, Qualifier: qualifier, Target: md.normalizeTarget(target)}
	byTarget := md.Annotations[alias]
	if byTarget == nil {
		byTarget = make(map[string][]*Annotation)
		md.Annotations[alias] = byTarget
	}
	byTarget[a.Target] = append(byTarget[a.Target], a)
	return a
}

// splitTerm returns the vocabulary alias and the fully-qualified term.
func (md *Metadata) splitTerm(term string) (alias, full string) {
	i := strings.LastIndexByte(term, '.')
	if i < 0 {
		return "", term
	}
	vocab, name := term[:i], term[i+1:]
	if ns, ok := md.Aliases[vocab]; ok {
		return vocab, ns + "." + name
	}
	for a, ns := range md.Aliases {
		if ns == vocab {
			return a, term
		}
	}
	return vocab, term
}

// normalizeTarget replaces a leading schema alias by its namespace.
func (md *Metadata) normalizeTarget(target string) string {
	head, rest, _ := strings.Cut(target, "/")
	i := strings.LastIndexByte(head, '.')
	if i < 0 {
		return target
	}
	if ns, ok := md.Aliases[head[:i]]; ok {
		head = ns + head[i:]
	}
	if rest != "" {
		return head + "/" + rest
	}
	return head
}

// AnnotationsOf returns every annotation whose target is the given path,
// across all vocabularies.
func (md *Metadata) AnnotationsOf(target string) []*Annotation {
	var out []*Annotation
	for _, byTarget := range md.Annotations {
		out = append(out, byTarget[target]...)
	}
	slices.SortFunc(out, func(a, b *Annotation) int {
		if c := strings.Compare(a.Term, b.Term); c != 0 {
			return c
		}
		return strings.Compare(a.Qualifier, b.Qualifier)
	})
	return out
}

// EntityTypeOf returns the entity type a node addresses: the type of an
// entity set or singleton, the target of a navigation property, or the
// entity type itself.
func (md *Metadata) EntityTypeOf(n Node) *EntityType {
	switch n := n.(type) {
	case *EntityType:
		return n
	case *EntitySet:
		return md.EntityTypes[n.EntityType]
	case *Singleton:
		return md.EntityTypes[n.EntityType]
	case *NavigationProperty:
		return md.EntityTypes[n.TargetType]
	}
	return nil
}

// HasAnnotation reports whether the entity type carries at least one of
// the terms. An empty term list matches everything.
func (md *Metadata) HasAnnotation(t *EntityType, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	for _, a := range md.AnnotationsOf(t.FQN) {
		for _, term := range terms {
			if a.Term == term {
				return true
			}
		}
	}
	return false
}

func (c *EntityContainer) lookup(name string) Node {
	for _, s := range c.EntitySets {
		if s.name == name {
			return s
		}
	}
	for _, s := range c.Singletons {
		if s.name == name {
			return s
		}
	}
	return nil
}

func (t *EntityType) navigation(name string) *NavigationProperty {
	for _, n := range t.NavigationProperties {
		if n.name == name {
			return n
		}
	}
	return nil
}

func (t *EntityType) property(name string) *Property {
	for _, p := range t.Properties {
		if p.name == name {
			return p
		}
	}
	return nil
}
