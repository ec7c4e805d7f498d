package validation

import (
	"fmt"

	"github.com/albertocavalcante/ui5ls/internal/ui5/resolver"
	"github.com/albertocavalcante/ui5ls/internal/xmldoc"
)

// UnknownTagValidator reports tags that are neither a class of the model
// nor an aggregation of the parent class.
var UnknownTagValidator = &Validator{
	Name: "unknown-tag",
	Doc:  "Reports tag names that match no class and no aggregation",
	Run:  runUnknownTag,
}

func runUnknownTag(pass *Pass) {
	m := pass.Model
	pass.Document.Walk(func(e *xmldoc.Element) bool {
		if e.LocalName() == "" || resolver.ClassOf(e, m) != nil || resolver.AggregationOf(e, m) != nil {
			return true
		}
		ns, declared := resolver.NamespaceOf(e)
		if e.Prefix() != "" && !declared {
			return true
		}
		// Tags from namespaces the model does not describe (xhtml, custom
		// libraries, templating) are out of reach.
		if ns != "" && m.Namespace(ns) == nil {
			return true
		}
		if d, ok := unknownTag(pass, e, ns); ok {
			pass.Report(d)
		}
		return true
	})
}

func unknownTag(pass *Pass, e *xmldoc.Element, ns string) (Diagnostic, bool) {
	name := e.LocalName()
	report := func(kind Kind, msg string, args ...any) (Diagnostic, bool) {
		return newDiagnostic(kind, SeverityError, e.NameSpan, fmt.Sprintf(msg, args...)), true
	}

	if isUpper(name) {
		if ns != "" {
			return report(UnknownClassInNamespace, "The %q class does not exist in the %q namespace", name, ns)
		}
		return report(UnknownClassWithoutNamespace, "The %q class does not exist; add a namespace to the tag", name)
	}

	parent := resolver.ClassOf(e.Parent, pass.Model)
	if parent == nil {
		if ns != "" {
			return report(UnknownTagNameInNamespace, "The %q name is neither a class nor an aggregation in the %q namespace", name, ns)
		}
		return report(UnknownTagNameNoNamespace, "The %q name is neither a class nor an aggregation", name)
	}

	parentNS, _ := resolver.NamespaceOf(e.Parent)
	switch {
	case pass.Model.FindAggregation(parent, name) != nil:
		return report(UnknownAggregationInClassDiffNamespace, "The %q aggregation must be in the %q namespace of its parent", name, parentNS)
	case ns == parentNS:
		return report(UnknownAggregationInClass, "The %q aggregation does not exist in the %q class", name, parent.FQN)
	case ns != "":
		return report(UnknownTagNameInNamespaceUnderClass, "The %q name is neither a class in the %q namespace nor an aggregation of the %q class", name, ns, parent.FQN)
	default:
		return report(UnknownTagNameInClass, "The %q name is neither a class nor an aggregation of the %q class", name, parent.FQN)
	}
}
