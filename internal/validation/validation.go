package validation

import (
	"slices"
	"strings"

	"github.com/albertocavalcante/ui5ls/internal/odata"
	"github.com/albertocavalcante/ui5ls/internal/ui5/model"
	"github.com/albertocavalcante/ui5ls/internal/xmldoc"
)

// Options configures a validation run.
type Options struct {
	// FlexEnabled turns on the checks required by SAPUI5 flexibility, which
	// needs a stable id on every control.
	FlexEnabled bool

	// Service is the OData metadata annotation paths are checked against.
	// Path checks are skipped when it is nil.
	Service *odata.Metadata
}

// Validator is a single check over a document.
type Validator struct {
	// Name is the unique kebab-case identifier (e.g., "unknown-tag").
	Name string

	// Doc is a one-line description of what this validator checks.
	Doc string

	// Run inspects the document and reports diagnostics via Pass.Report.
	Run func(*Pass)
}

// Pass provides context to a running validator.
type Pass struct {
	Document *xmldoc.Document
	Model    *model.Model
	Options  Options

	// Report is called to report a diagnostic.
	Report func(Diagnostic)
}

// Validators returns every validator in the order they run.
func Validators() []*Validator {
	return []*Validator{
		UnknownTagValidator,
		CardinalityValidator,
		AggregationTypeValidator,
		UniqueIDValidator,
		StableIDValidator,
		EnumValueValidator,
		BooleanValueValidator,
		XMLNSValueValidator,
		DeprecationValidator,
		AnnotationPathValidator,
	}
}

// Validate runs every validator over doc and returns the diagnostics
// sorted by position.
func Validate(doc *xmldoc.Document, m *model.Model, opts Options) []Diagnostic {
	if doc == nil || m == nil {
		return nil
	}
	var diags []Diagnostic
	pass := &Pass{
		Document: doc,
		Model:    m,
		Options:  opts,
		Report:   func(d Diagnostic) { diags = append(diags, d) },
	}
	for _, v := range Validators() {
		v.Run(pass)
	}
	slices.SortStableFunc(diags, func(a, b Diagnostic) int {
		if a.Span.Start != b.Span.Start {
			return a.Span.Start - b.Span.Start
		}
		return a.Code - b.Code
	})
	return diags
}

// isBinding reports whether an attribute value is a binding expression.
func isBinding(value string) bool {
	return strings.HasPrefix(strings.TrimSpace(value), "{")
}

// isUpper reports whether a local name starts with an upper case letter,
// which by convention names a class rather than an aggregation.
func isUpper(name string) bool {
	return name != "" && name[0] >= 'A' && name[0] <= 'Z'
}

// walkAttributes calls fn for every attribute of every element.
func walkAttributes(doc *xmldoc.Document, fn func(*xmldoc.Element, *xmldoc.Attribute)) {
	doc.Walk(func(e *xmldoc.Element) bool {
		for _, a := range e.Attributes {
			fn(e, a)
		}
		return true
	})
}
