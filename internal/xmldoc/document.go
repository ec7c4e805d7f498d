// Package xmldoc is a syntax-tolerant XML parser for UI5 views and
// fragments. It never fails: unterminated tags, missing close tags and
// unclosed attribute values all produce a best-effort tree in which every
// node carries exact byte spans, so that editors can complete and validate
// documents that are still being typed.
//
// Each element carries its effective namespace map (prefix to URI, the
// default namespace under the empty prefix) with the declarations of all
// ancestors already applied.
package xmldoc

import "strings"

// Span is a half-open byte range [Start, End) into the document text.
type Span struct {
	Start int
	End   int
}

// Contains reports whether off lies within the span. The end offset is
// inclusive so that a cursor placed right after a token still touches it.
func (s Span) Contains(off int) bool {
	return s.Start <= off && off <= s.End
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int { return s.End - s.Start }

// Document is a parsed XML document.
type Document struct {
	Text string

	// Root is the first top-level element, or nil for a document
	// without elements.
	Root *Element

	// Elements holds all top-level elements. Well-formed views have one.
	Elements []*Element

	lines []int
}

// Element is an XML element.
type Element struct {
	// Name is the qualified tag name as written, possibly empty while the
	// user is still typing it.
	Name   string
	Parent *Element

	Attributes  []*Attribute
	SubElements []*Element

	// Namespaces maps prefixes to namespace URIs, including inherited
	// declarations. The default namespace uses the empty prefix.
	Namespaces map[string]string

	// Span covers the whole element, from '<' to the end of the close tag.
	Span Span
	// NameSpan covers the tag name of the open tag.
	NameSpan Span
	// OpenEnd is the offset just after the '>' of the open tag, or -1
	// when the open tag is not terminated.
	OpenEnd int
	// CloseNameSpan covers the tag name of the close tag, if any.
	CloseNameSpan *Span

	SelfClosing bool

	// Incomplete is set when the open tag is not terminated. Incomplete
	// elements never have children.
	Incomplete bool
}

// Attribute is an attribute of an element.
type Attribute struct {
	Key   string
	Value string

	// HasValue is set when the attribute has a quoted value, even an
	// unterminated one.
	HasValue bool
	// Closed is set when the value's closing quote is present.
	Closed bool

	Parent *Element

	Span      Span
	KeySpan   Span
	ValueSpan Span // includes the quotes
}

// SplitName splits a qualified name into its prefix and local part.
func SplitName(name string) (prefix, local string) {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}

// Prefix returns the namespace prefix of the tag name.
func (e *Element) Prefix() string {
	p, _ := SplitName(e.Name)
	return p
}

// LocalName returns the tag name without its prefix.
func (e *Element) LocalName() string {
	_, l := SplitName(e.Name)
	return l
}

// Attribute returns the first attribute with the given key, or nil.
func (e *Element) Attribute(key string) *Attribute {
	for _, a := range e.Attributes {
		if a.Key == key {
			return a
		}
	}
	return nil
}

// ID returns the value of the id attribute, or the empty string.
func (e *Element) ID() string {
	if a := e.Attribute("id"); a != nil && a.HasValue {
		return a.Value
	}
	return ""
}

// IsRoot reports whether e is a top-level element.
func (e *Element) IsRoot() bool { return e.Parent == nil }

// OpenTagSpan covers the open tag from '<' to its closing '>' or, for
// incomplete tags, to the last consumed byte.
func (e *Element) OpenTagSpan() Span {
	if e.OpenEnd >= 0 {
		return Span{Start: e.Span.Start, End: e.OpenEnd}
	}
	return e.Span
}

// ValueRange returns the span of the value text without quotes.
func (a *Attribute) ValueRange() Span {
	if !a.HasValue {
		return Span{Start: a.KeySpan.End, End: a.KeySpan.End}
	}
	end := a.ValueSpan.End
	if a.Closed {
		end--
	}
	return Span{Start: a.ValueSpan.Start + 1, End: end}
}

// Walk calls fn for every element in document order. Returning false from
// fn skips the children of that element.
func (d *Document) Walk(fn func(*Element) bool) {
	for _, e := range d.Elements {
		walk(e, fn)
	}
}

func walk(e *Element, fn func(*Element) bool) {
	if !fn(e) {
		return
	}
	for _, c := range e.SubElements {
		walk(c, fn)
	}
}
