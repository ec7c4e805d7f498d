package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"go.lsp.dev/protocol"

	"github.com/albertocavalcante/ui5ls/internal/completion"
	"github.com/albertocavalcante/ui5ls/internal/ui5/model"
	"github.com/albertocavalcante/ui5ls/internal/xmldoc"
)

func (s *Server) handleCompletion(ctx context.Context, params json.RawMessage) (any, error) {
	var p protocol.CompletionParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("parsing completion params: %w", err)
	}

	doc := s.document(p.TextDocument.URI)
	if doc == nil {
		return &protocol.CompletionList{Items: []protocol.CompletionItem{}}, nil
	}

	offset := toOffset(doc.XML, p.Position)
	suggestions := s.engine.Suggest(completion.Request{
		Document: doc.XML,
		Offset:   offset,
		Model:    s.model.Load(),
		Service:  s.service.Load(),
		Settings: s.settings(),
	})

	rendered := make([]completion.Item, 0, len(suggestions))
	for _, sug := range suggestions {
		rendered = append(rendered, completion.Render(doc.XML, offset, sug))
	}

	log.Printf("completion: %s @ %d:%d -> %d items", doc.URI, p.Position.Line, p.Position.Character, len(rendered))

	s.mu.RLock()
	insertReplace := s.insertReplace
	s.mu.RUnlock()

	if insertReplace {
		list := &insertReplaceList{Items: make([]insertReplaceItem, 0, len(rendered))}
		for _, it := range rendered {
			list.Items = append(list.Items, toInsertReplaceItem(doc.XML, it))
		}
		return list, nil
	}

	items := make([]protocol.CompletionItem, 0, len(rendered))
	for _, it := range rendered {
		items = append(items, toCompletionItem(doc.XML, it))
	}
	return &protocol.CompletionList{
		IsIncomplete: false,
		Items:        items,
	}, nil
}

// insertReplaceList is a completion list whose items carry
// InsertReplaceEdits, which protocol v0.12.0 cannot express in
// CompletionItem.TextEdit.
type insertReplaceList struct {
	IsIncomplete bool                `json:"isIncomplete"`
	Items        []insertReplaceItem `json:"items"`
}

type insertReplaceItem struct {
	protocol.CompletionItem
	TextEdit *protocol.InsertReplaceEdit `json:"textEdit,omitempty"`
}

// toInsertReplaceItem converts a rendered suggestion into an item whose
// edit either inserts up to the cursor or replaces the whole token.
func toInsertReplaceItem(doc *xmldoc.Document, it completion.Item) insertReplaceItem {
	item := toCompletionItem(doc, it)
	item.TextEdit = nil
	return insertReplaceItem{
		CompletionItem: item,
		TextEdit: &protocol.InsertReplaceEdit{
			NewText: it.Edit.NewText,
			Insert:  toRange(doc, it.Insert),
			Replace: toRange(doc, it.Edit.Span),
		},
	}
}

// toCompletionItem converts a rendered suggestion into an LSP item.
func toCompletionItem(doc *xmldoc.Document, it completion.Item) protocol.CompletionItem {
	node := it.Suggestion.Node
	item := protocol.CompletionItem{
		Label:  it.Label,
		Kind:   completionKind(it.Suggestion),
		Detail: completionDetail(node),
		// Clients filter against the replaced range, which holds the
		// qualified name rather than the label.
		FilterText: it.Edit.NewText,
		TextEdit: &protocol.TextEdit{
			Range:   toRange(doc, it.Edit.Span),
			NewText: it.Edit.NewText,
		},
	}
	if doc := node.Metadata().Description; doc != "" {
		item.Documentation = protocol.MarkupContent{Kind: protocol.Markdown, Value: doc}
	}
	if node.Metadata().Deprecated != nil {
		item.Tags = []protocol.CompletionItemTag{protocol.CompletionItemTagDeprecated}
	}
	for _, e := range it.Additional {
		item.AdditionalTextEdits = append(item.AdditionalTextEdits, protocol.TextEdit{
			Range:   toRange(doc, e.Span),
			NewText: e.NewText,
		})
	}
	return item
}

func completionKind(s completion.Suggestion) protocol.CompletionItemKind {
	switch s.Kind {
	case completion.KindClassInTagName:
		return protocol.CompletionItemKindClass
	case completion.KindAggregationInTagName:
		return protocol.CompletionItemKindField
	case completion.KindPropEventAssocInAttributeKey:
		switch s.Node.Kind() {
		case model.KindEvent:
			return protocol.CompletionItemKindEvent
		case model.KindAssociation:
			return protocol.CompletionItemKindReference
		default:
			return protocol.CompletionItemKindProperty
		}
	case completion.KindNamespaceInAttributeKey, completion.KindNamespaceInAttributeValue:
		return protocol.CompletionItemKindModule
	case completion.KindEnumValueInAttributeValue:
		return protocol.CompletionItemKindEnumMember
	case completion.KindBooleanValueInAttributeValue:
		return protocol.CompletionItemKindConstant
	default:
		return protocol.CompletionItemKindValue
	}
}

// completionDetail is the one-line summary shown next to an item.
func completionDetail(n model.Node) string {
	switch n := n.(type) {
	case *model.Class:
		return n.FQN
	case *model.Aggregation:
		return fmt.Sprintf("%s (%s)", n.Type, n.Cardinality)
	case *model.Property:
		return n.Type.String()
	case *model.Association:
		return fmt.Sprintf("%s (%s)", n.Type, n.Cardinality)
	case *model.Event:
		return "event"
	case *model.EnumValue:
		return n.Enum
	case *model.Namespace:
		return "namespace"
	case *completion.PathValue:
		return "metadata path"
	case *completion.IDValue:
		return "id"
	}
	return ""
}
