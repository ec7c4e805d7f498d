package validation

import (
	"fmt"

	"github.com/albertocavalcante/ui5ls/internal/ui5/model"
	"github.com/albertocavalcante/ui5ls/internal/ui5/resolver"
	"github.com/albertocavalcante/ui5ls/internal/xmldoc"
)

// CardinalityValidator reports surplus content of 0..1 aggregations.
var CardinalityValidator = &Validator{
	Name: "aggregation-cardinality",
	Doc:  "Reports more than one element in an aggregation of cardinality 0..1",
	Run: func(pass *Pass) {
		for _, s := range slots(pass.Document, pass.Model) {
			if s.agg.Cardinality != model.CardinalitySingle || len(s.children) < 2 {
				continue
			}
			for _, extra := range s.children[1:] {
				pass.Report(newDiagnostic(InvalidAggregationCardinality, SeverityError, extra.NameSpan,
					fmt.Sprintf("The %q aggregation has a cardinality of 0..1 and may only contain one element", s.agg.Name)))
			}
		}
	},
}

// AggregationTypeValidator reports classes placed in an aggregation whose
// type they are not assignable to.
var AggregationTypeValidator = &Validator{
	Name: "aggregation-type",
	Doc:  "Reports aggregation content that does not match the aggregation type",
	Run: func(pass *Pass) {
		m := pass.Model
		for _, s := range slots(pass.Document, m) {
			if !checkable(m, s.agg.Type) {
				continue
			}
			for _, child := range s.children {
				c := resolver.ClassOf(child, m)
				if c == nil || assignable(m, c, s.agg) {
					continue
				}
				pass.Report(newDiagnostic(InvalidAggregationType, SeverityError, child.NameSpan,
					fmt.Sprintf("The %q class cannot be used in the %q aggregation, which expects %q", c.FQN, s.agg.Name, s.agg.Type)))
			}
		}
	},
}

// slot is the content an element places in one aggregation of its class.
type slot struct {
	agg      *model.Aggregation
	children []*xmldoc.Element
}

// slots returns the aggregation content of every class element: one slot
// per explicit aggregation element and one for the children that go to
// the default aggregation.
func slots(doc *xmldoc.Document, m *model.Model) []slot {
	var out []slot
	doc.Walk(func(e *xmldoc.Element) bool {
		c := resolver.ClassOf(e, m)
		if c == nil {
			return true
		}
		def := slot{agg: m.DefaultAggregation(c)}
		for _, child := range e.SubElements {
			if agg := resolver.AggregationOf(child, m); agg != nil {
				out = append(out, slot{agg: agg, children: child.SubElements})
				continue
			}
			def.children = append(def.children, child)
		}
		if def.agg != nil && len(def.children) > 0 {
			out = append(out, def)
		}
		return true
	})
	return out
}

// checkable reports whether t names a type the model can check against.
func checkable(m *model.Model, t model.TypeRef) bool {
	switch t.Kind {
	case model.TypeClass, model.TypeInterface:
		return m.ResolveType(t) != nil
	}
	return false
}

func assignable(m *model.Model, c *model.Class, agg *model.Aggregation) bool {
	if m.IsAssignable(c, agg.Type) {
		return true
	}
	for _, alt := range agg.AltTypes {
		if m.IsAssignable(c, alt) {
			return true
		}
	}
	return false
}
