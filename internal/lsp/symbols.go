package lsp

import (
	"context"
	"encoding/json"
	"log"

	"go.lsp.dev/protocol"

	"github.com/albertocavalcante/ui5ls/internal/ui5/model"
	"github.com/albertocavalcante/ui5ls/internal/ui5/resolver"
	"github.com/albertocavalcante/ui5ls/internal/xmldoc"
)

func (s *Server) handleDocumentSymbol(ctx context.Context, params json.RawMessage) (any, error) {
	var p protocol.DocumentSymbolParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, err
	}

	doc := s.document(p.TextDocument.URI)
	if doc == nil {
		return []protocol.DocumentSymbol{}, nil
	}

	log.Printf("documentSymbol: %s", doc.URI)
	return documentSymbols(doc.XML, s.model.Load(), doc.XML.Elements), nil
}

// documentSymbols builds the element outline. Elements without a name are
// replaced by their children.
func documentSymbols(doc *xmldoc.Document, m *model.Model, elements []*xmldoc.Element) []protocol.DocumentSymbol {
	symbols := []protocol.DocumentSymbol{}
	for _, e := range elements {
		children := documentSymbols(doc, m, e.SubElements)
		if e.Name == "" {
			symbols = append(symbols, children...)
			continue
		}

		sym := protocol.DocumentSymbol{
			Name:           e.Name,
			Kind:           protocol.SymbolKindObject,
			Range:          toRange(doc, e.Span),
			SelectionRange: toRange(doc, e.NameSpan),
			Children:       children,
		}
		if c := resolver.ClassOf(e, m); c != nil {
			sym.Kind = protocol.SymbolKindClass
			sym.Detail = c.FQN
			sym.Deprecated = c.Deprecated != nil
		} else if agg := resolver.AggregationOf(e, m); agg != nil {
			sym.Kind = protocol.SymbolKindField
			sym.Detail = agg.Type.String()
		}
		if id := e.ID(); id != "" {
			sym.Detail = "#" + id
		}
		symbols = append(symbols, sym)
	}
	return symbols
}
