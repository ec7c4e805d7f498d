package xmldoc

import (
	"maps"
	"strings"
)

// Parse parses text into a Document. It never fails.
func Parse(text string) *Document {
	p := &parser{text: text}
	p.run()
	d := &Document{Text: text, Elements: p.top, lines: lineStarts(text)}
	if len(p.top) > 0 {
		d.Root = p.top[0]
	}
	return d
}

type parser struct {
	text  string
	pos   int
	stack []*Element
	top   []*Element
}

func (p *parser) current() *Element {
	if len(p.stack) == 0 {
		return nil
	}
	return p.stack[len(p.stack)-1]
}

func (p *parser) run() {
	text := p.text
	for p.pos < len(text) {
		i := strings.IndexByte(text[p.pos:], '<')
		if i < 0 {
			break
		}
		p.pos += i
		rest := text[p.pos:]
		switch {
		case strings.HasPrefix(rest, "<!--"):
			p.skipPast("-->")
		case strings.HasPrefix(rest, "<![CDATA["):
			p.skipPast("]]>")
		case strings.HasPrefix(rest, "<!"):
			p.skipPast(">")
		case strings.HasPrefix(rest, "<?"):
			p.skipPast("?>")
		case strings.HasPrefix(rest, "</"):
			p.closeTag()
		default:
			p.openTag()
		}
	}
	// Elements still open at EOF extend to the end of the text.
	for _, e := range p.stack {
		e.Span.End = len(text)
	}
	p.stack = nil
}

func (p *parser) skipPast(marker string) {
	if i := strings.Index(p.text[p.pos:], marker); i >= 0 {
		p.pos += i + len(marker)
		return
	}
	p.pos = len(p.text)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isNameByte(c byte) bool {
	switch c {
	case '<', '>', '/', '=', '"', '\'':
		return false
	}
	return !isSpace(c)
}

func (p *parser) scanName(from int) int {
	j := from
	for j < len(p.text) && isNameByte(p.text[j]) {
		j++
	}
	return j
}

func (p *parser) skipSpace(from int) int {
	j := from
	for j < len(p.text) && isSpace(p.text[j]) {
		j++
	}
	return j
}

func (p *parser) openTag() {
	text := p.text
	start := p.pos
	nameEnd := p.scanName(start + 1)
	parent := p.current()
	e := &Element{
		Name:     text[start+1 : nameEnd],
		Parent:   parent,
		Span:     Span{Start: start},
		NameSpan: Span{Start: start + 1, End: nameEnd},
		OpenEnd:  -1,
	}

	j := nameEnd
	for {
		j = p.skipSpace(j)
		if j >= len(text) || text[j] == '<' {
			e.Incomplete = true
			break
		}
		if text[j] == '>' {
			e.OpenEnd = j + 1
			break
		}
		if strings.HasPrefix(text[j:], "/>") {
			e.OpenEnd = j + 2
			e.SelfClosing = true
			break
		}
		keyEnd := p.scanName(j)
		if keyEnd == j {
			// Stray '/', '=' or quote.
			j++
			continue
		}
		j = p.attribute(e, j, keyEnd)
	}

	e.Namespaces = scopeOf(e)
	if parent != nil {
		parent.SubElements = append(parent.SubElements, e)
	} else {
		p.top = append(p.top, e)
	}

	switch {
	case e.Incomplete:
		// Trailing whitespace belongs to the tag while it is being typed.
		e.Span.End = j
		p.pos = j
	case e.SelfClosing:
		e.Span.End = e.OpenEnd
		p.pos = e.OpenEnd
	default:
		p.stack = append(p.stack, e)
		p.pos = e.OpenEnd
	}
}

// attribute parses one attribute whose key spans [start, keyEnd) and
// returns the offset after it.
func (p *parser) attribute(e *Element, start, keyEnd int) int {
	text := p.text
	a := &Attribute{
		Key:     text[start:keyEnd],
		Parent:  e,
		KeySpan: Span{Start: start, End: keyEnd},
	}
	e.Attributes = append(e.Attributes, a)
	end := keyEnd

	j := p.skipSpace(keyEnd)
	if j < len(text) && text[j] == '=' {
		end = j + 1
		j = p.skipSpace(j + 1)
		if j < len(text) && (text[j] == '"' || text[j] == '\'') {
			quote := text[j]
			a.HasValue = true
			k := j + 1
			for k < len(text) && text[k] != quote && text[k] != '<' {
				k++
			}
			if k < len(text) && text[k] == quote {
				a.Closed = true
				a.Value = text[j+1 : k]
				end = k + 1
			} else {
				a.Value = text[j+1 : k]
				end = k
			}
			a.ValueSpan = Span{Start: j, End: end}
		}
	}
	a.Span = Span{Start: start, End: end}
	return end
}

func scopeOf(e *Element) map[string]string {
	var inherited map[string]string
	if e.Parent != nil {
		inherited = e.Parent.Namespaces
	}
	var scope map[string]string
	for _, a := range e.Attributes {
		prefix, ok := xmlnsPrefix(a.Key)
		if !ok || !a.HasValue {
			continue
		}
		if scope == nil {
			scope = maps.Clone(inherited)
			if scope == nil {
				scope = make(map[string]string)
			}
		}
		scope[prefix] = a.Value
	}
	if scope != nil {
		return scope
	}
	if inherited != nil {
		return inherited
	}
	return map[string]string{}
}

// xmlnsPrefix returns the prefix declared by a namespace attribute key:
// "" for xmlns and "p" for xmlns:p.
func xmlnsPrefix(key string) (string, bool) {
	if key == "xmlns" {
		return "", true
	}
	if p, ok := strings.CutPrefix(key, "xmlns:"); ok {
		return p, true
	}
	return "", false
}

// IsXMLNSKey reports whether key declares a namespace.
func IsXMLNSKey(key string) bool {
	_, ok := xmlnsPrefix(key)
	return ok
}

// DeclaredPrefix returns the prefix a namespace attribute key declares.
func DeclaredPrefix(key string) string {
	p, _ := xmlnsPrefix(key)
	return p
}

func (p *parser) closeTag() {
	text := p.text
	start := p.pos
	nameEnd := p.scanName(start + 2)
	name := text[start+2 : nameEnd]
	end := p.skipSpace(nameEnd)
	if end < len(text) && text[end] == '>' {
		end++
	}
	p.pos = end
	if name == "" {
		return
	}

	for k := len(p.stack) - 1; k >= 0; k-- {
		if p.stack[k].Name != name {
			continue
		}
		for _, unclosed := range p.stack[k+1:] {
			unclosed.Span.End = start
		}
		matched := p.stack[k]
		matched.Span.End = end
		matched.CloseNameSpan = &Span{Start: start + 2, End: nameEnd}
		p.stack = p.stack[:k]
		return
	}
}
