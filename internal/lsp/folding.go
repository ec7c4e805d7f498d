package lsp

import (
	"context"
	"encoding/json"

	"go.lsp.dev/protocol"

	"github.com/albertocavalcante/ui5ls/internal/xmldoc"
)

// handleFoldingRange returns folding ranges for the document.
func (s *Server) handleFoldingRange(ctx context.Context, params json.RawMessage) (any, error) {
	var p protocol.FoldingRangeParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, err
	}

	doc := s.document(p.TextDocument.URI)
	if doc == nil {
		return []protocol.FoldingRange{}, nil
	}
	return foldingRanges(doc.XML), nil
}

// foldingRanges folds every element that spans several lines. The line of
// the close tag stays visible.
func foldingRanges(doc *xmldoc.Document) []protocol.FoldingRange {
	ranges := []protocol.FoldingRange{}
	doc.Walk(func(e *xmldoc.Element) bool {
		start := doc.Position(e.Span.Start).Line
		end := doc.Position(e.Span.End).Line
		if e.CloseNameSpan != nil {
			end = doc.Position(e.CloseNameSpan.Start).Line - 1
		}
		if end > start {
			ranges = append(ranges, protocol.FoldingRange{
				StartLine: uint32(start),
				EndLine:   uint32(end),
				Kind:      "region",
			})
		}
		return true
	})
	return ranges
}
