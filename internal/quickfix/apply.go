package quickfix

import (
	"slices"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Result represents the result of applying edits to a file.
type Result struct {
	// Path is the file path.
	Path string

	Original string
	Fixed    string

	// Applied is the number of edits that were applied.
	Applied int

	// Skipped is the number of edits skipped due to overlaps.
	Skipped int
}

// HasChanges returns true if edits changed the text.
func (r *Result) HasChanges() bool {
	return r.Original != r.Fixed
}

// Diff returns a unified diff between the original and fixed text.
func (r *Result) Diff() string {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(r.Original),
		B:        difflib.SplitLines(r.Fixed),
		FromFile: r.Path,
		ToFile:   r.Path,
		Context:  3,
	}
	text, _ := difflib.GetUnifiedDiffString(diff)
	return text
}

// Fix applies edits to the text of the file at path.
func Fix(path, text string, edits []Edit) Result {
	fixed, applied, skipped := Apply(text, edits)
	return Result{Path: path, Original: text, Fixed: fixed, Applied: applied, Skipped: skipped}
}

// Apply applies edits whose spans refer to the original text. Edits
// outside the text are dropped. When edits overlap, the one that starts
// first wins and the others are skipped. Insertions at the same offset are
// all applied, in the given order.
func Apply(text string, edits []Edit) (string, int, int) {
	var valid []Edit
	for _, e := range edits {
		if e.Span.Start >= 0 && e.Span.End >= e.Span.Start && e.Span.End <= len(text) {
			valid = append(valid, e)
		}
	}
	if len(valid) == 0 {
		return text, 0, 0
	}

	slices.SortStableFunc(valid, func(a, b Edit) int { return a.Span.Start - b.Span.Start })

	var accepted []Edit
	skipped := 0
	lastEnd := 0
	for _, e := range valid {
		if e.Span.Start < lastEnd {
			skipped++
			continue
		}
		accepted = append(accepted, e)
		lastEnd = e.Span.End
	}

	var b strings.Builder
	b.Grow(len(text))
	pos := 0
	for _, e := range accepted {
		b.WriteString(text[pos:e.Span.Start])
		b.WriteString(e.NewText)
		pos = e.Span.End
	}
	b.WriteString(text[pos:])
	return b.String(), len(accepted), skipped
}
