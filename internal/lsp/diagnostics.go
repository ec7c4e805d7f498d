package lsp

import (
	"context"
	"log"

	"go.lsp.dev/protocol"

	"github.com/albertocavalcante/ui5ls/internal/validation"
)

const diagnosticSource = "ui5ls"

// validate runs the validators over a document snapshot.
func (s *Server) validate(doc *Document) []validation.Diagnostic {
	s.mu.RLock()
	flex := s.opts.FlexEnabled
	s.mu.RUnlock()

	return validation.Validate(doc.XML, s.model.Load(), validation.Options{
		FlexEnabled: flex,
		Service:     s.service.Load(),
	})
}

// publishDiagnostics validates a document and publishes the results.
func (s *Server) publishDiagnostics(ctx context.Context, doc *Document) {
	// Guard against nil connection (e.g., in tests)
	if s.conn == nil {
		return
	}

	// Skip snapshots that a newer change already replaced.
	if cur := s.document(doc.URI); cur != nil && cur != doc {
		return
	}

	found := s.validate(doc)
	diagnostics := make([]protocol.Diagnostic, 0, len(found))
	for _, d := range found {
		diagnostics = append(diagnostics, toDiagnostic(doc, d))
	}

	s.notify(ctx, "textDocument/publishDiagnostics", protocol.PublishDiagnosticsParams{
		URI:         doc.URI,
		Diagnostics: diagnostics,
	})

	log.Printf("published %d diagnostics for %s", len(diagnostics), doc.URI)
}

// toDiagnostic converts a validation finding to an LSP diagnostic.
func toDiagnostic(doc *Document, d validation.Diagnostic) protocol.Diagnostic {
	diag := protocol.Diagnostic{
		Range:    toRange(doc.XML, d.Span),
		Severity: toSeverity(d.Severity),
		Code:     d.Code,
		Source:   diagnosticSource,
		Message:  d.Message,
	}
	if d.Deprecated {
		diag.Tags = []protocol.DiagnosticTag{protocol.DiagnosticTagDeprecated}
	}
	for _, r := range d.Related {
		diag.RelatedInformation = append(diag.RelatedInformation, protocol.DiagnosticRelatedInformation{
			Location: protocol.Location{URI: doc.URI, Range: toRange(doc.XML, r.Span)},
			Message:  r.Message,
		})
	}
	return diag
}

func toSeverity(s validation.Severity) protocol.DiagnosticSeverity {
	switch s {
	case validation.SeverityError:
		return protocol.DiagnosticSeverityError
	case validation.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	case validation.SeverityInfo:
		return protocol.DiagnosticSeverityInformation
	default:
		return protocol.DiagnosticSeverityHint
	}
}
