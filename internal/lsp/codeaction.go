package lsp

import (
	"context"
	"encoding/json"
	"log"

	"go.lsp.dev/protocol"

	"github.com/albertocavalcante/ui5ls/internal/quickfix"
	"github.com/albertocavalcante/ui5ls/internal/validation"
	"github.com/albertocavalcante/ui5ls/internal/xmldoc"
)

const quickFix protocol.CodeActionKind = "quickfix"

// handleCodeAction returns stable id fixes for the non-stable id
// diagnostics in the requested range, plus a file-wide fix when the file
// has more than one.
func (s *Server) handleCodeAction(ctx context.Context, params json.RawMessage) (any, error) {
	var p protocol.CodeActionParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, err
	}

	doc := s.document(p.TextDocument.URI)
	if doc == nil {
		return []protocol.CodeAction{}, nil
	}

	var nonStable []validation.Diagnostic
	for _, d := range s.validate(doc) {
		if d.Kind == validation.NonStableID {
			nonStable = append(nonStable, d)
		}
	}
	if len(nonStable) == 0 {
		return []protocol.CodeAction{}, nil
	}

	s.mu.RLock()
	prefix := s.opts.IDPrefix
	s.mu.RUnlock()
	registry := s.idRegistry(doc)

	actions := []protocol.CodeAction{}
	for _, d := range nonStable {
		diag := toDiagnostic(doc, d)
		if !rangesIntersect(diag.Range, p.Range) {
			continue
		}
		edits := quickfix.StableIDFixes(doc.XML, []xmldoc.Span{d.Span}, registry.Clone(), prefix)
		action := newCodeAction("Generate ID", doc, []protocol.Diagnostic{diag}, edits)
		action.IsPreferred = true
		actions = append(actions, action)
	}

	if len(actions) > 0 && len(nonStable) > 1 {
		spans := make([]xmldoc.Span, 0, len(nonStable))
		diags := make([]protocol.Diagnostic, 0, len(nonStable))
		for _, d := range nonStable {
			spans = append(spans, d.Span)
			diags = append(diags, toDiagnostic(doc, d))
		}
		edits := quickfix.StableIDFixes(doc.XML, spans, registry.Clone(), prefix)
		actions = append(actions, newCodeAction("Generate IDs for the entire file", doc, diags, edits))
	}

	log.Printf("codeAction: %s range=%v -> %d actions", doc.URI, p.Range, len(actions))
	return actions, nil
}

// idRegistry returns the ids in use across the workspace, with open
// documents taking precedence over their saved content.
func (s *Server) idRegistry(doc *Document) *quickfix.IDRegistry {
	open := s.openDocuments()
	registry := quickfix.NewIDRegistry()
	if ws := s.currentWorkspace(); ws != nil {
		paths := make([]string, 0, len(open)+1)
		paths = append(paths, doc.Path())
		for _, o := range open {
			paths = append(paths, o.Path())
		}
		registry = ws.Registry(paths...)
	}
	for _, o := range open {
		if o.URI != doc.URI {
			registry.Collect(o.XML)
		}
	}
	registry.Collect(doc.XML)
	return registry
}

func newCodeAction(title string, doc *Document, diags []protocol.Diagnostic, edits []quickfix.Edit) protocol.CodeAction {
	textEdits := make([]protocol.TextEdit, 0, len(edits))
	for _, e := range edits {
		textEdits = append(textEdits, protocol.TextEdit{
			Range:   toRange(doc.XML, e.Span),
			NewText: e.NewText,
		})
	}
	return protocol.CodeAction{
		Title:       title,
		Kind:        quickFix,
		Diagnostics: diags,
		Edit: &protocol.WorkspaceEdit{
			Changes: map[protocol.DocumentURI][]protocol.TextEdit{
				doc.URI: textEdits,
			},
		},
	}
}

// rangesIntersect returns true if two ranges overlap or touch, so that a
// cursor placed at either end of a diagnostic still selects it.
func rangesIntersect(a, b protocol.Range) bool {
	return !positionBefore(a.End, b.Start) && !positionBefore(b.End, a.Start)
}

func positionBefore(a, b protocol.Position) bool {
	return a.Line < b.Line || (a.Line == b.Line && a.Character < b.Character)
}
