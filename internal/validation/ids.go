package validation

import (
	"fmt"

	"github.com/albertocavalcante/ui5ls/internal/ui5/resolver"
	"github.com/albertocavalcante/ui5ls/internal/xmldoc"
)

// Namespaces whose elements never create controls and are exempt from id
// checks.
var idExemptNamespaces = map[string]bool{
	"http://www.w3.org/1999/xhtml":                                        true,
	"http://www.w3.org/2000/svg":                                          true,
	"http://schemas.sap.com/sapui5/extension/sap.ui.core.template/1":      true,
	"http://schemas.sap.com/sapui5/extension/sap.ui.core.CustomData/1":    true,
	"http://schemas.sap.com/sapui5/extension/sap.ui.core.Internal/1":      true,
	"http://schemas.sap.com/sapui5/preprocessorextension/sap.ui.core.xml": true,
}

// idCandidate reports whether e can carry a control id: a class-like tag
// outside the exempt namespaces.
func idCandidate(e *xmldoc.Element) bool {
	if !isUpper(e.LocalName()) {
		return false
	}
	ns, _ := resolver.NamespaceOf(e)
	return !idExemptNamespaces[ns]
}

// UniqueIDValidator reports ids used by more than one element.
var UniqueIDValidator = &Validator{
	Name: "unique-id",
	Doc:  "Reports ids used more than once in a document",
	Run:  runUniqueID,
}

func runUniqueID(pass *Pass) {
	var order []string
	byID := make(map[string][]*xmldoc.Attribute)
	pass.Document.Walk(func(e *xmldoc.Element) bool {
		if !idCandidate(e) {
			return true
		}
		a := e.Attribute("id")
		if a == nil || !a.HasValue || a.Value == "" || isBinding(a.Value) {
			return true
		}
		if _, seen := byID[a.Value]; !seen {
			order = append(order, a.Value)
		}
		byID[a.Value] = append(byID[a.Value], a)
		return true
	})

	for _, id := range order {
		attrs := byID[id]
		if len(attrs) < 2 {
			continue
		}
		for i, a := range attrs {
			d := newDiagnostic(NonUniqueID, SeverityError, a.ValueSpan,
				fmt.Sprintf("Select a unique ID. The current %q ID has already been used.", id))
			for j, other := range attrs {
				if i != j {
					d.Related = append(d.Related, Related{Span: other.ValueSpan, Message: "An identical ID is also used here."})
				}
			}
			pass.Report(d)
		}
	}
}

// StableIDValidator reports controls without an id when flexibility is
// enabled.
var StableIDValidator = &Validator{
	Name: "stable-id",
	Doc:  "Reports controls without a stable id in flexibility-enabled projects",
	Run: func(pass *Pass) {
		if !pass.Options.FlexEnabled {
			return
		}
		pass.Document.Walk(func(e *xmldoc.Element) bool {
			if e.IsRoot() || !idCandidate(e) {
				return true
			}
			c := resolver.ClassOf(e, pass.Model)
			if c == nil || !pass.Model.IsElementClass(c) {
				return true
			}
			if a := e.Attribute("id"); a != nil && a.HasValue && a.Value != "" {
				return true
			}
			pass.Report(newDiagnostic(NonStableID, SeverityError, e.NameSpan,
				fmt.Sprintf("The %q element has no stable ID, which flexibility requires", e.LocalName())))
			return true
		})
	},
}
