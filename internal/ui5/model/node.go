// Package model is the in-memory representation of the UI5 framework metadata:
// namespaces, classes with their aggregations, properties, events and
// associations, interfaces, enums and typedefs.
//
// A Model is built once per framework version and is immutable afterwards.
// Nodes reference each other by fully-qualified name (FQN) rather than by
// pointer; the Model acts as the arena that resolves those handles.
package model

import "strings"

// Kind identifies the type of a metadata node.
type Kind int

const (
	KindNamespace Kind = iota
	KindClass
	KindInterface
	KindEnum
	KindEnumValue
	KindTypedef
	KindAggregation
	KindProperty
	KindEvent
	KindAssociation
	// KindValue is used by synthetic nodes that stand for literal values
	// (booleans, metadata paths) in completion results.
	KindValue
)

func (k Kind) String() string {
	switch k {
	case KindNamespace:
		return "namespace"
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	case KindEnum:
		return "enum"
	case KindEnumValue:
		return "enum value"
	case KindTypedef:
		return "typedef"
	case KindAggregation:
		return "aggregation"
	case KindProperty:
		return "property"
	case KindEvent:
		return "event"
	case KindAssociation:
		return "association"
	case KindValue:
		return "value"
	default:
		return "unknown"
	}
}

// Visibility is the API visibility of a node.
type Visibility int

const (
	VisibilityPublic Visibility = iota
	VisibilityProtected
	VisibilityRestricted
	VisibilityPrivate
	VisibilityHidden
)

// ParseVisibility converts the metadata representation of a visibility.
// Unknown or empty values are treated as public.
func ParseVisibility(s string) Visibility {
	switch strings.ToLower(s) {
	case "protected":
		return VisibilityProtected
	case "restricted":
		return VisibilityRestricted
	case "private":
		return VisibilityPrivate
	case "hidden":
		return VisibilityHidden
	default:
		return VisibilityPublic
	}
}

func (v Visibility) String() string {
	switch v {
	case VisibilityPublic:
		return "public"
	case VisibilityProtected:
		return "protected"
	case VisibilityRestricted:
		return "restricted"
	case VisibilityPrivate:
		return "private"
	case VisibilityHidden:
		return "hidden"
	default:
		return "unknown"
	}
}

// Offered reports whether nodes of this visibility may be offered to users.
func (v Visibility) Offered() bool {
	return v == VisibilityPublic || v == VisibilityProtected
}

// Status describes a deprecation or experimental marker.
type Status struct {
	Since string
	Text  string
}

// Meta holds the attributes shared by all metadata nodes.
type Meta struct {
	// Name is the simple (unqualified) name.
	Name        string
	Description string
	Since       string
	Library     string
	Visibility  Visibility

	// Deprecated is non-nil when the node is deprecated.
	Deprecated *Status

	// Experimental is non-nil when the node is experimental.
	Experimental *Status
}

// Metadata returns the shared attributes. Every node embeds Meta, so this
// method is promoted to all node types.
func (m *Meta) Metadata() *Meta { return m }

// Node is implemented by every metadata node.
type Node interface {
	Kind() Kind
	Metadata() *Meta
}

// Cardinality of an aggregation or association.
type Cardinality string

const (
	CardinalitySingle   Cardinality = "0..1"
	CardinalityMultiple Cardinality = "0..n"
)

// TypeKind discriminates the TypeRef variant.
type TypeKind int

const (
	TypeUnresolved TypeKind = iota
	TypePrimitive
	TypeClass
	TypeInterface
	TypeEnum
	TypeTypedef
)

// Primitive type names.
const (
	PrimitiveString  = "String"
	PrimitiveBoolean = "Boolean"
	PrimitiveInteger = "Integer"
	PrimitiveFloat   = "Float"
	PrimitiveNumber  = "Number"
	PrimitiveObject  = "Object"
	PrimitiveAny     = "any"
)

// TypeRef is a reference to the declared type of a member. For class,
// interface, enum and typedef references Name is the FQN of the target.
type TypeRef struct {
	Kind  TypeKind
	Name  string
	Array bool
}

// IsBoolean reports whether the type is the primitive Boolean.
func (t TypeRef) IsBoolean() bool {
	return t.Kind == TypePrimitive && t.Name == PrimitiveBoolean && !t.Array
}

func (t TypeRef) String() string {
	if t.Array {
		return t.Name + "[]"
	}
	return t.Name
}

// Namespace is a dotted namespace such as "sap.m".
type Namespace struct {
	Meta
	FQN    string
	Parent string
}

func (*Namespace) Kind() Kind { return KindNamespace }

// Class is a UI5 class.
type Class struct {
	Meta
	FQN       string
	Namespace string

	// Extends is the FQN of the superclass, empty for hierarchy roots.
	Extends    string
	Implements []string
	Abstract   bool

	// DefaultAggregation names one of the class's (possibly inherited)
	// aggregations.
	DefaultAggregation string

	Aggregations []*Aggregation
	Properties   []*Property
	Events       []*Event
	Associations []*Association
}

func (*Class) Kind() Kind { return KindClass }

// Interface is a UI5 interface.
type Interface struct {
	Meta
	FQN       string
	Namespace string
}

func (*Interface) Kind() Kind { return KindInterface }

// Enum is a UI5 enumeration.
type Enum struct {
	Meta
	FQN       string
	Namespace string
	Values    []*EnumValue
}

func (*Enum) Kind() Kind { return KindEnum }

// EnumValue is a single field of an Enum.
type EnumValue struct {
	Meta
	Enum string
}

func (*EnumValue) Kind() Kind { return KindEnumValue }

// Typedef is a named simple type such as sap.ui.core.CSSSize.
type Typedef struct {
	Meta
	FQN       string
	Namespace string
}

func (*Typedef) Kind() Kind { return KindTypedef }

// Aggregation is a named containment slot of a class.
type Aggregation struct {
	Meta
	Owner       string
	Type        TypeRef
	AltTypes    []TypeRef
	Cardinality Cardinality
}

func (*Aggregation) Kind() Kind { return KindAggregation }

// Property is a class property.
type Property struct {
	Meta
	Owner   string
	Type    TypeRef
	Default string
}

func (*Property) Kind() Kind { return KindProperty }

// Event is a class event.
type Event struct {
	Meta
	Owner string
}

func (*Event) Kind() Kind { return KindEvent }

// Association is a non-containment reference to other controls.
type Association struct {
	Meta
	Owner       string
	Type        TypeRef
	Cardinality Cardinality
}

func (*Association) Kind() Kind { return KindAssociation }

// ParentFQN returns the FQN without its last dotted segment.
func ParentFQN(fqn string) string {
	if i := strings.LastIndexByte(fqn, '.'); i >= 0 {
		return fqn[:i]
	}
	return ""
}

// LastSegment returns the last dotted segment of an FQN.
func LastSegment(fqn string) string {
	if i := strings.LastIndexByte(fqn, '.'); i >= 0 {
		return fqn[i+1:]
	}
	return fqn
}
