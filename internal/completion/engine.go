package completion

import (
	"github.com/albertocavalcante/ui5ls/internal/ui5/model"
	"github.com/albertocavalcante/ui5ls/internal/ui5/resolver"
	"github.com/albertocavalcante/ui5ls/internal/xmldoc"
)

// Provider computes suggestions for one category.
type Provider func(Context) []Suggestion

// Engine dispatches requests to the providers registered for the cursor
// position.
type Engine struct {
	ElementName    []Provider
	AttributeKey   []Provider
	AttributeValue []Provider
}

// NewEngine returns an engine with every built-in provider.
func NewEngine() *Engine {
	return &Engine{
		ElementName: []Provider{
			ClassesInTagName,
			AggregationsInTagName,
		},
		AttributeKey: []Provider{
			MembersInAttributeKey,
			NamespacesInAttributeKey,
		},
		AttributeValue: []Provider{
			BooleanValues,
			EnumValues,
			NamespacesInAttributeValue,
			AnnotationPaths,
			FilterBarIDs,
		},
	}
}

// Suggest returns the suggestions for the cursor at req.Offset.
func (e *Engine) Suggest(req Request) []Suggestion {
	if req.Document == nil || req.Model == nil {
		return nil
	}
	loc := req.Document.Locate(req.Offset)
	var providers []Provider
	switch loc.Kind {
	case xmldoc.ContextElementName:
		providers = e.ElementName
	case xmldoc.ContextAttributeKey:
		providers = e.AttributeKey
	case xmldoc.ContextAttributeValue:
		providers = e.AttributeValue
	default:
		return nil
	}

	ctx := Context{
		Document:  req.Document,
		Element:   loc.Element,
		Attribute: loc.Attribute,
		Scope:     resolver.ScopeOf(loc.Element),
		Offset:    req.Offset,
		Prefix:    loc.Prefix,
		Model:     req.Model,
		Service:   req.Service,
		Settings:  req.Settings,
	}
	var out []Suggestion
	for _, p := range providers {
		out = append(out, p(ctx)...)
	}
	return Filter(out, req.Settings)
}

// Filter drops suggestions whose node is not offered under settings:
// hidden, private and restricted nodes always, deprecated and experimental
// nodes unless enabled.
func Filter(suggestions []Suggestion, settings Settings) []Suggestion {
	out := suggestions[:0:0]
	for _, s := range suggestions {
		if Offered(s.Node, settings) {
			out = append(out, s)
		}
	}
	return out
}

// Offered reports whether n may be suggested under settings.
func Offered(n model.Node, settings Settings) bool {
	if n == nil {
		return false
	}
	meta := n.Metadata()
	if !meta.Visibility.Offered() {
		return false
	}
	if meta.Deprecated != nil && !settings.Deprecated {
		return false
	}
	if meta.Experimental != nil && !settings.Experimental {
		return false
	}
	return true
}
