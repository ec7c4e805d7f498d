package xmldoc

// ContextKind classifies the syntactic position of a cursor.
type ContextKind int

const (
	ContextNone ContextKind = iota
	ContextElementName
	ContextAttributeKey
	ContextAttributeValue
	ContextElementContent
)

func (k ContextKind) String() string {
	switch k {
	case ContextElementName:
		return "element name"
	case ContextAttributeKey:
		return "attribute key"
	case ContextAttributeValue:
		return "attribute value"
	case ContextElementContent:
		return "element content"
	default:
		return "none"
	}
}

// Context describes what the cursor is on.
type Context struct {
	Kind    ContextKind
	Element *Element

	// Attribute is set for ContextAttributeKey and ContextAttributeValue.
	// On whitespace inside an open tag it is a synthetic attribute with an
	// empty key that is not part of Element.Attributes.
	Attribute *Attribute

	// Prefix is the text between the start of the token and the cursor.
	Prefix string
}

// Synthetic reports whether the context attribute is a placeholder for an
// attribute that does not exist yet.
func (c Context) Synthetic() bool {
	if c.Attribute == nil || c.Element == nil {
		return false
	}
	for _, a := range c.Element.Attributes {
		if a == c.Attribute {
			return false
		}
	}
	return true
}

func (e *Element) unclosed() bool {
	return !e.SelfClosing && e.CloseNameSpan == nil
}

func (e *Element) contains(off int) bool {
	if off <= e.Span.Start {
		return false
	}
	return off < e.Span.End || (e.unclosed() && off == e.Span.End)
}

// ElementAt returns the innermost element containing off, or nil.
func (d *Document) ElementAt(off int) *Element {
	var found *Element
	candidates := d.Elements
	for {
		var next *Element
		for _, e := range candidates {
			if e.contains(off) {
				next = e
				break
			}
		}
		if next == nil {
			return found
		}
		found = next
		candidates = next.SubElements
	}
}

// Locate classifies the cursor at byte offset off.
func (d *Document) Locate(off int) Context {
	e := d.ElementAt(off)
	if e == nil {
		return Context{Kind: ContextNone}
	}
	text := d.Text

	if e.NameSpan.Contains(off) {
		return Context{Kind: ContextElementName, Element: e, Prefix: text[e.NameSpan.Start:off]}
	}
	if e.CloseNameSpan != nil && off > e.CloseNameSpan.Start-2 {
		return Context{Kind: ContextNone, Element: e}
	}

	inOpenTag := off > e.NameSpan.End && (off < e.OpenEnd || (e.OpenEnd < 0 && off <= e.Span.End))
	if !inOpenTag {
		return Context{Kind: ContextElementContent, Element: e}
	}

	for _, a := range e.Attributes {
		if a.KeySpan.Contains(off) {
			return Context{Kind: ContextAttributeKey, Element: e, Attribute: a, Prefix: text[a.KeySpan.Start:off]}
		}
		if a.HasValue && a.ValueSpan.Start < off && (off < a.ValueSpan.End || (!a.Closed && off <= a.ValueSpan.End)) {
			return Context{Kind: ContextAttributeValue, Element: e, Attribute: a, Prefix: text[a.ValueSpan.Start+1 : off]}
		}
		if a.Span.Start < off && off < a.Span.End {
			// Between key and value, e.g. on the '='.
			return Context{Kind: ContextNone, Element: e}
		}
	}
	dummy := &Attribute{
		Parent:  e,
		Span:    Span{Start: off, End: off},
		KeySpan: Span{Start: off, End: off},
	}
	return Context{Kind: ContextAttributeKey, Element: e, Attribute: dummy}
}
