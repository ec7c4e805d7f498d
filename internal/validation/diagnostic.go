// Package validation checks UI5 XML views and fragments against the
// framework metadata and reports diagnostics with stable numeric codes.
package validation

import (
	"github.com/albertocavalcante/ui5ls/internal/xmldoc"
)

// Severity represents the severity of a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
	SeverityHint
)

// String returns the string representation of the Severity.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	case SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Kind names the check that produced a diagnostic.
type Kind string

const (
	UnknownClassInNamespace                Kind = "UnknownClassInNamespace"
	UnknownClassWithoutNamespace           Kind = "UnknownClassWithoutNamespace"
	UnknownAggregationInClass              Kind = "UnknownAggregationInClass"
	UnknownAggregationInClassDiffNamespace Kind = "UnknownAggregationInClassDiffNamespace"
	UnknownTagNameInClass                  Kind = "UnknownTagNameInClass"
	UnknownTagNameInNamespaceUnderClass    Kind = "UnknownTagNameInNamespaceUnderClass"
	UnknownTagNameInNamespace              Kind = "UnknownTagNameInNamespace"
	UnknownTagNameNoNamespace              Kind = "UnknownTagNameNoNamespace"
	InvalidAggregationCardinality          Kind = "InvalidAggregationCardinality"
	InvalidAggregationType                 Kind = "InvalidAggregationType"
	NonUniqueID                            Kind = "NonUniqueID"
	NonStableID                            Kind = "NonStableID"
	UnknownEnumValue                       Kind = "UnknownEnumValue"
	InvalidBooleanValue                    Kind = "InvalidBooleanValue"
	UnknownNamespaceInXmlnsValue           Kind = "UnknownNamespaceInXmlnsValue"
	UseOfDeprecatedClass                   Kind = "UseOfDeprecatedClass"
	UseOfDeprecatedAttribute               Kind = "UseOfDeprecatedAttribute"
	UnknownAnnotationPath                  Kind = "UnknownAnnotationPath"
)

var codes = map[Kind]int{
	UnknownClassInNamespace:                1001,
	UnknownClassWithoutNamespace:           1002,
	UnknownAggregationInClass:              1003,
	UnknownAggregationInClassDiffNamespace: 1004,
	UnknownTagNameInClass:                  1005,
	UnknownTagNameInNamespaceUnderClass:    1006,
	UnknownTagNameInNamespace:              1007,
	UnknownTagNameNoNamespace:              1008,
	InvalidAggregationCardinality:          1009,
	InvalidAggregationType:                 1010,
	NonUniqueID:                            1011,
	NonStableID:                            1012,
	UnknownEnumValue:                       1013,
	InvalidBooleanValue:                    1014,
	UnknownNamespaceInXmlnsValue:           1015,
	UseOfDeprecatedClass:                   1016,
	UseOfDeprecatedAttribute:               1017,
	UnknownAnnotationPath:                  1018,
}

// Code returns the stable numeric code of the kind.
func (k Kind) Code() int { return codes[k] }

// Related points at another location relevant to a diagnostic.
type Related struct {
	Span    xmldoc.Span `json:"span"`
	Message string      `json:"message"`
}

// Diagnostic is a validation finding.
type Diagnostic struct {
	Kind     Kind     `json:"kind"`
	Code     int      `json:"code"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`

	// Span covers the text responsible for the finding: the tag name, the
	// attribute key or the attribute value.
	Span xmldoc.Span `json:"span"`

	Related []Related `json:"related,omitempty"`

	// Deprecated marks findings about the use of deprecated symbols.
	Deprecated bool `json:"deprecated,omitempty"`
}

// IsError returns true if this diagnostic is an error.
func (d Diagnostic) IsError() bool {
	return d.Severity == SeverityError
}

func newDiagnostic(kind Kind, sev Severity, span xmldoc.Span, msg string) Diagnostic {
	return Diagnostic{Kind: kind, Code: kind.Code(), Severity: sev, Message: msg, Span: span}
}
