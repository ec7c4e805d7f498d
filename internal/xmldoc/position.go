package xmldoc

import (
	"sort"
	"unicode/utf16"
	"unicode/utf8"
)

// Position is a 0-based line and UTF-16 column, as used by LSP.
type Position struct {
	Line      int
	Character int
}

func lineStarts(text string) []int {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// Position converts a byte offset to a line and UTF-16 column. Offsets
// outside the text are clamped.
func (d *Document) Position(off int) Position {
	off = max(0, min(off, len(d.Text)))
	line := sort.Search(len(d.lines), func(i int) bool { return d.lines[i] > off }) - 1
	start := d.lines[line]
	col := 0
	for _, r := range d.Text[start:off] {
		col += utf16.RuneLen(r)
	}
	return Position{Line: line, Character: col}
}

// Offset converts a line and UTF-16 column to a byte offset. Columns past
// the end of the line are clamped to the line end.
func (d *Document) Offset(pos Position) int {
	if pos.Line < 0 {
		return 0
	}
	if pos.Line >= len(d.lines) {
		return len(d.Text)
	}
	off := d.lines[pos.Line]
	end := len(d.Text)
	if pos.Line+1 < len(d.lines) {
		end = d.lines[pos.Line+1] - 1
	}
	col := 0
	for off < end && col < pos.Character {
		r, size := utf8.DecodeRuneInString(d.Text[off:])
		col += utf16.RuneLen(r)
		off += size
	}
	return off
}

// Range converts a span to start and end positions.
func (d *Document) Range(s Span) (Position, Position) {
	return d.Position(s.Start), d.Position(s.End)
}
