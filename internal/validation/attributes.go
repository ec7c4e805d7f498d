package validation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/albertocavalcante/ui5ls/internal/odata"
	"github.com/albertocavalcante/ui5ls/internal/ui5/macros"
	"github.com/albertocavalcante/ui5ls/internal/ui5/model"
	"github.com/albertocavalcante/ui5ls/internal/ui5/resolver"
	"github.com/albertocavalcante/ui5ls/internal/xmldoc"
)

// literal reports whether a has a value worth checking as a literal.
func literal(a *xmldoc.Attribute) bool {
	return a.HasValue && a.Value != "" && !isBinding(a.Value)
}

// EnumValueValidator reports enum-typed properties set to unknown values.
var EnumValueValidator = &Validator{
	Name: "enum-value",
	Doc:  "Reports enum properties set to a value the enum does not define",
	Run: func(pass *Pass) {
		walkAttributes(pass.Document, func(_ *xmldoc.Element, a *xmldoc.Attribute) {
			if !literal(a) {
				return
			}
			p := resolver.PropertyOf(a, pass.Model)
			if p == nil || p.Type.Kind != model.TypeEnum {
				return
			}
			enum := pass.Model.Enum(p.Type.Name)
			if enum == nil {
				return
			}
			if slices.ContainsFunc(enum.Values, func(v *model.EnumValue) bool { return v.Name == a.Value }) {
				return
			}
			pass.Report(newDiagnostic(UnknownEnumValue, SeverityError, a.ValueSpan,
				fmt.Sprintf("The %q value is not a field of the %q enum", a.Value, enum.FQN)))
		})
	},
}

// BooleanValueValidator reports Boolean properties set to anything but
// true or false.
var BooleanValueValidator = &Validator{
	Name: "boolean-value",
	Doc:  "Reports Boolean properties set to a value other than true or false",
	Run: func(pass *Pass) {
		walkAttributes(pass.Document, func(_ *xmldoc.Element, a *xmldoc.Attribute) {
			if !literal(a) || a.Value == "true" || a.Value == "false" {
				return
			}
			p := resolver.PropertyOf(a, pass.Model)
			if p == nil || !p.Type.IsBoolean() {
				return
			}
			pass.Report(newDiagnostic(InvalidBooleanValue, SeverityError, a.ValueSpan,
				fmt.Sprintf("The %q value is not a valid Boolean; use \"true\" or \"false\"", a.Value)))
		})
	},
}

// XMLNSValueValidator reports xmlns declarations of framework namespaces
// that the model does not know.
var XMLNSValueValidator = &Validator{
	Name: "xmlns-value",
	Doc:  "Reports unknown sap.* namespaces in xmlns declarations",
	Run: func(pass *Pass) {
		walkAttributes(pass.Document, func(_ *xmldoc.Element, a *xmldoc.Attribute) {
			if !xmldoc.IsXMLNSKey(a.Key) || !literal(a) || !strings.HasPrefix(a.Value, "sap.") {
				return
			}
			if pass.Model.Namespace(a.Value) != nil {
				return
			}
			pass.Report(newDiagnostic(UnknownNamespaceInXmlnsValue, SeverityWarning, a.ValueSpan,
				fmt.Sprintf("The %q namespace does not exist", a.Value)))
		})
	},
}

// DeprecationValidator reports uses of deprecated classes and attributes.
var DeprecationValidator = &Validator{
	Name: "deprecation",
	Doc:  "Reports deprecated classes and deprecated properties, events and associations",
	Run: func(pass *Pass) {
		pass.Document.Walk(func(e *xmldoc.Element) bool {
			if c := resolver.ClassOf(e, pass.Model); c != nil && c.Deprecated != nil {
				d := newDiagnostic(UseOfDeprecatedClass, SeverityWarning, e.NameSpan, deprecationMessage("class", c.FQN, c.Deprecated))
				d.Deprecated = true
				pass.Report(d)
			}
			for _, a := range e.Attributes {
				n := resolver.MemberOf(a, pass.Model)
				if n == nil || n.Metadata().Deprecated == nil {
					continue
				}
				d := newDiagnostic(UseOfDeprecatedAttribute, SeverityWarning, a.KeySpan,
					deprecationMessage(strings.ToLower(n.Kind().String()), a.Key, n.Metadata().Deprecated))
				d.Deprecated = true
				pass.Report(d)
			}
			return true
		})
	},
}

func deprecationMessage(what, name string, s *model.Status) string {
	msg := fmt.Sprintf("The %q %s is deprecated", name, what)
	if s.Since != "" {
		msg += " since version " + s.Since
	}
	msg += "."
	if s.Text != "" {
		msg += " " + s.Text
	}
	return msg
}

// AnnotationPathValidator reports building block paths that do not
// resolve in the service metadata.
var AnnotationPathValidator = &Validator{
	Name: "annotation-path",
	Doc:  "Reports contextPath and metaPath values that do not resolve in the service metadata",
	Run: func(pass *Pass) {
		md := pass.Options.Service
		if md == nil || md.Container == nil {
			return
		}
		pass.Document.Walk(func(e *xmldoc.Element) bool {
			if _, ok := macros.Of(e, pass.Model); !ok {
				return true
			}
			base := odata.Node(md.Container)
			cp := e.Attribute("contextPath")
			if cp != nil && isBinding(cp.Value) {
				return true
			}
			if cp != nil && literal(cp) {
				res := odata.ResolvePathTarget(md, cp.Value, md.Container)
				if res.Target == nil {
					pass.Report(unknownPath(cp))
					// metaPath is relative to an unknown target.
					return true
				}
				base = res.Target
			}
			if mp := e.Attribute("metaPath"); mp != nil && literal(mp) {
				if odata.ResolvePathTarget(md, mp.Value, base).Target == nil {
					pass.Report(unknownPath(mp))
				}
			}
			return true
		})
	},
}

func unknownPath(a *xmldoc.Attribute) Diagnostic {
	return newDiagnostic(UnknownAnnotationPath, SeverityError, a.ValueSpan,
		fmt.Sprintf("The %q path does not resolve in the service metadata", a.Value))
}
