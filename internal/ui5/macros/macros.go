// Package macros describes the sap.fe.macros building blocks: which
// service metadata their contextPath and metaPath properties may address.
package macros

import (
	"github.com/albertocavalcante/ui5ls/internal/odata"
	"github.com/albertocavalcante/ui5ls/internal/ui5/model"
	"github.com/albertocavalcante/ui5ls/internal/ui5/resolver"
	"github.com/albertocavalcante/ui5ls/internal/xmldoc"
)

// MaxPathSegments bounds the metadata paths offered for building block
// properties: the direct target and up to two navigation hops.
const MaxPathSegments = 3

// FilterBarFQN is the class whose ids the filterBar property refers to.
const FilterBarFQN = "sap.fe.macros.FilterBar"

// BuildingBlock describes the metadata a building block can be bound to.
type BuildingBlock struct {
	// Terms are the annotation terms metaPath may point at.
	Terms []string
	// Collection requires contextPath to address a collection.
	Collection bool
	// PropertyPath makes metaPath address a property instead of an
	// annotation.
	PropertyPath bool
}

// BuildingBlocks maps building block classes to their metadata
// requirements.
var BuildingBlocks = map[string]BuildingBlock{
	"sap.fe.macros.Chart":      {Terms: []string{odata.TermChart}},
	"sap.fe.macros.MicroChart": {Terms: []string{odata.TermChart}},
	"sap.fe.macros.Table": {
		Terms:      []string{odata.TermLineItem, odata.TermPresentationVariant, odata.TermSelectionPresentationVariant},
		Collection: true,
	},
	FilterBarFQN:          {Terms: []string{odata.TermSelectionFields}},
	"sap.fe.macros.Field": {PropertyPath: true},
}

// Of returns the building block an element instantiates.
func Of(e *xmldoc.Element, m *model.Model) (BuildingBlock, bool) {
	c := resolver.ClassOf(e, m)
	if c == nil {
		return BuildingBlock{}, false
	}
	bb, ok := BuildingBlocks[c.FQN]
	return bb, ok
}

// ContextPathOptions returns the path options for the contextPath of bb.
func (bb BuildingBlock) ContextPathOptions() odata.Options {
	opts := odata.Options{
		AllowedTargets: []odata.Kind{odata.KindEntitySet, odata.KindSingleton, odata.KindNavigationProperty},
		AllowedTerms:   bb.Terms,
	}
	if bb.Collection {
		collection := true
		opts.IsCollection = &collection
	}
	return opts
}

// MetaPathOptions returns the path options for the metaPath of bb.
func (bb BuildingBlock) MetaPathOptions() odata.Options {
	if bb.PropertyPath {
		return odata.Options{AllowedTargets: []odata.Kind{odata.KindProperty}, IsPropertyPath: true}
	}
	return odata.Options{AllowedTargets: []odata.Kind{odata.KindAnnotation}, AllowedTerms: bb.Terms}
}
