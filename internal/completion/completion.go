// Package completion computes context-sensitive suggestions for UI5 XML
// views and fragments.
//
// Each provider is a pure function of a Context. The Engine classifies the
// cursor position, runs the providers registered for that position and
// filters the combined result by visibility and by the deprecated and
// experimental settings.
package completion

import (
	"github.com/albertocavalcante/ui5ls/internal/odata"
	"github.com/albertocavalcante/ui5ls/internal/ui5/model"
	"github.com/albertocavalcante/ui5ls/internal/ui5/resolver"
	"github.com/albertocavalcante/ui5ls/internal/xmldoc"
)

// Kind tags a suggestion with the category that produced it.
type Kind int

const (
	KindClassInTagName Kind = iota
	KindAggregationInTagName
	KindPropEventAssocInAttributeKey
	KindNamespaceInAttributeKey
	KindBooleanValueInAttributeValue
	KindEnumValueInAttributeValue
	KindNamespaceInAttributeValue
	KindAnnotationPathInAttributeValue
	KindFilterBarIDInAttributeValue
)

func (k Kind) String() string {
	switch k {
	case KindClassInTagName:
		return "ClassInTagName"
	case KindAggregationInTagName:
		return "AggregationInTagName"
	case KindPropEventAssocInAttributeKey:
		return "PropEventAssocInAttributeKey"
	case KindNamespaceInAttributeKey:
		return "NamespaceInAttributeKey"
	case KindBooleanValueInAttributeValue:
		return "BooleanValueInAttributeValue"
	case KindEnumValueInAttributeValue:
		return "EnumValueInAttributeValue"
	case KindNamespaceInAttributeValue:
		return "NamespaceInAttributeValue"
	case KindAnnotationPathInAttributeValue:
		return "AnnotationPathInAttributeValue"
	case KindFilterBarIDInAttributeValue:
		return "FilterBarIDInAttributeValue"
	default:
		return "Unknown"
	}
}

// Suggestion is one completion candidate.
type Suggestion struct {
	Kind Kind

	// Node is the suggested metadata node, or a synthetic value node for
	// literals and paths.
	Node model.Node

	// Element is the element the suggestion applies to.
	Element *xmldoc.Element

	// Attribute is set for attribute key and value suggestions. It may be
	// a synthetic attribute that is not part of Element.Attributes.
	Attribute *xmldoc.Attribute
}

// Label returns the text shown for the suggestion.
func (s Suggestion) Label() string {
	switch n := s.Node.(type) {
	case *model.Namespace:
		return n.FQN
	case *model.Class:
		return n.Name
	}
	return s.Node.Metadata().Name
}

// BooleanValue is a synthetic node for the literals true and false.
type BooleanValue struct {
	model.Meta
	Value bool
}

func (*BooleanValue) Kind() model.Kind { return model.KindValue }

// PathValue is a synthetic node for a metadata path.
type PathValue struct {
	model.Meta
	Path odata.Path
}

func (*PathValue) Kind() model.Kind { return model.KindValue }

// IDValue is a synthetic node for the id of another element in the
// document.
type IDValue struct {
	model.Meta
	Element *xmldoc.Element
}

func (*IDValue) Kind() model.Kind { return model.KindValue }

// Settings are the user-configurable options of code assist.
type Settings struct {
	// Deprecated offers deprecated symbols.
	Deprecated bool
	// Experimental offers experimental symbols.
	Experimental bool
}

// Context is the input of a provider.
type Context struct {
	Document  *xmldoc.Document
	Element   *xmldoc.Element
	Attribute *xmldoc.Attribute

	// Scope holds the namespace declarations visible at Element.
	Scope resolver.Scope

	Offset int

	// Prefix is the text of the token under the cursor up to the cursor.
	Prefix string

	Model *model.Model

	// Service is the OData metadata of the application, if any.
	Service *odata.Metadata

	Settings Settings
}

// Request is a completion request.
type Request struct {
	Document *xmldoc.Document
	Offset   int
	Model    *model.Model
	Service  *odata.Metadata
	Settings Settings
}
