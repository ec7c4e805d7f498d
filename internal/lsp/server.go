package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"github.com/albertocavalcante/ui5ls/internal/completion"
	"github.com/albertocavalcante/ui5ls/internal/odata"
	"github.com/albertocavalcante/ui5ls/internal/ui5/loader"
	"github.com/albertocavalcante/ui5ls/internal/ui5/model"
	"github.com/albertocavalcante/ui5ls/internal/version"
	"github.com/albertocavalcante/ui5ls/internal/xmldoc"
)

// Options configure a Server.
type Options struct {
	// Settings are the initial code assist settings. Clients may change
	// them with workspace/didChangeConfiguration.
	Settings completion.Settings

	// FlexEnabled reports controls without stable ids.
	FlexEnabled bool

	// IDPrefix is prepended to generated ids.
	IDPrefix string

	// Match selects the view and fragment files of the workspace. When
	// nil the server does not scan the workspace and only knows the ids
	// of open documents.
	Match func(path string) bool
}

// Server handles LSP requests for UI5 XML views and fragments.
type Server struct {
	conn *Conn

	// State
	mu          sync.RWMutex
	initialized bool
	shutdown    bool
	documents   map[protocol.DocumentURI]*Document
	rootURI     protocol.DocumentURI
	opts        Options
	workspace   *Workspace

	// insertReplace is set when the client accepts InsertReplaceEdit
	// completion edits.
	insertReplace bool

	// The model and service metadata are replaced as a whole on reload
	// and never mutated.
	model   atomic.Pointer[model.Model]
	service atomic.Pointer[odata.Metadata]

	engine *completion.Engine

	// Callbacks
	onExit func()
}

// Document is a snapshot of an open text document. Snapshots are
// immutable; every change stores a new one.
type Document struct {
	URI     protocol.DocumentURI
	Version int32
	Content string
	XML     *xmldoc.Document
}

func newDocument(u protocol.DocumentURI, version int32, content string) *Document {
	return &Document{URI: u, Version: version, Content: content, XML: xmldoc.Parse(content)}
}

// Path returns the file system path of the document.
func (d *Document) Path() string {
	return uriToPath(d.URI)
}

// NewServer creates a new LSP server. The framework model must be set with
// SetModel before requests can be answered meaningfully; until then
// completion and validation return empty results.
func NewServer(onExit func(), opts Options) *Server {
	if opts.IDPrefix == "" {
		opts.IDPrefix = "_IDGen"
	}
	return &Server{
		documents: make(map[protocol.DocumentURI]*Document),
		opts:      opts,
		engine:    completion.NewEngine(),
		onExit:    onExit,
	}
}

// SetConn sets the connection for sending notifications.
func (s *Server) SetConn(conn *Conn) {
	s.conn = conn
}

// SetModel installs the framework model used by all requests.
func (s *Server) SetModel(m *model.Model) {
	s.model.Store(m)
}

// Model returns the current framework model, or nil.
func (s *Server) Model() *model.Model {
	return s.model.Load()
}

// SetService installs the OData metadata of the application.
func (s *Server) SetService(md *odata.Metadata) {
	s.service.Store(md)
}

// WatchReloads swaps in models reloaded by a loader.Watcher and
// revalidates the open documents, until events is closed or ctx is done.
func (s *Server) WatchReloads(ctx context.Context, events <-chan loader.ReloadEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Err != nil {
				log.Printf("metadata reload failed for %s: %v", ev.Key, ev.Err)
				continue
			}
			s.SetModel(ev.Model)
			log.Printf("model reloaded: %s", ev.Model)
			for _, doc := range s.openDocuments() {
				s.publishDiagnostics(ctx, doc)
			}
		}
	}
}

// Handle implements Handler interface - routes requests to methods.
func (s *Server) Handle(ctx context.Context, req *Request) (any, error) {
	s.mu.RLock()
	shutdown := s.shutdown
	initialized := s.initialized
	s.mu.RUnlock()

	// Check shutdown state - only allow exit after shutdown
	if shutdown && req.Method != "exit" {
		return nil, &ResponseError{
			Code:    CodeInvalidRequest,
			Message: "server is shutting down",
		}
	}

	// Check initialization - only lifecycle methods allowed before initialize
	if !initialized {
		switch req.Method {
		case "initialize", "initialized", "shutdown", "exit":
			// Allowed before initialization
		default:
			return nil, &ResponseError{
				Code:    CodeInvalidRequest,
				Message: "server not initialized",
			}
		}
	}

	switch req.Method {
	// Lifecycle
	case "initialize":
		return s.handleInitialize(ctx, req.Params)
	case "initialized":
		return s.handleInitialized(ctx, req.Params)
	case "shutdown":
		return s.handleShutdown(ctx)
	case "exit":
		return s.handleExit(ctx)

	// Text document sync
	case "textDocument/didOpen":
		return s.handleDidOpen(ctx, req.Params)
	case "textDocument/didChange":
		return s.handleDidChange(ctx, req.Params)
	case "textDocument/didClose":
		return s.handleDidClose(ctx, req.Params)
	case "textDocument/didSave":
		return s.handleDidSave(ctx, req.Params)

	// Language features
	case "textDocument/completion":
		return s.handleCompletion(ctx, req.Params)
	case "textDocument/hover":
		return s.handleHover(ctx, req.Params)
	case "textDocument/codeAction":
		return s.handleCodeAction(ctx, req.Params)
	case "textDocument/foldingRange":
		return s.handleFoldingRange(ctx, req.Params)
	case "textDocument/documentSymbol":
		return s.handleDocumentSymbol(ctx, req.Params)

	// Workspace
	case "workspace/didChangeConfiguration":
		return s.handleDidChangeConfiguration(ctx, req.Params)

	default:
		if req.IsNotification() {
			// $/cancelRequest, $/setTrace and friends need no answer.
			return nil, nil
		}
		log.Printf("unhandled method: %s", req.Method)
		return nil, ErrMethodNotFound
	}
}

// --- Lifecycle methods ---

func (s *Server) handleInitialize(ctx context.Context, params json.RawMessage) (any, error) {
	var p protocol.InitializeParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("parsing initialize params: %w", err)
	}

	s.mu.Lock()
	if len(p.WorkspaceFolders) > 0 {
		s.rootURI = protocol.DocumentURI(p.WorkspaceFolders[0].URI)
	} else if p.RootURI != "" {
		s.rootURI = p.RootURI
	}
	if c := p.Capabilities.TextDocument; c != nil && c.Completion != nil && c.Completion.CompletionItem != nil {
		s.insertReplace = c.Completion.CompletionItem.InsertReplaceSupport
	}
	root := s.rootURI
	if root != "" && s.opts.Match != nil && s.workspace == nil {
		s.workspace = NewWorkspace(uriToPath(root), s.opts.Match)
	}
	s.mu.Unlock()

	log.Printf("initialize: root=%s", root)

	// Server returns map[string]any to support LSP fields not in protocol v0.12.0
	return map[string]any{
		"capabilities": map[string]any{
			"textDocumentSync": map[string]any{
				"openClose": true,
				"change":    protocol.TextDocumentSyncKindFull,
				"save":      map[string]any{"includeText": true},
			},
			"completionProvider": map[string]any{
				"triggerCharacters": []string{"<", ":", " ", "\"", "/"},
			},
			"hoverProvider": true,
			"codeActionProvider": map[string]any{
				"codeActionKinds": []protocol.CodeActionKind{quickFix},
			},
			"foldingRangeProvider":   true,
			"documentSymbolProvider": true,
		},
		"serverInfo": map[string]string{
			"name":    "ui5ls",
			"version": version.Version,
		},
	}, nil
}

func (s *Server) handleInitialized(ctx context.Context, params json.RawMessage) (any, error) {
	s.mu.Lock()
	s.initialized = true
	ws := s.workspace
	s.mu.Unlock()

	log.Printf("initialized")

	if ws != nil {
		go func() {
			if err := ws.Scan(context.WithoutCancel(ctx)); err != nil {
				log.Printf("workspace scan: %v", err)
			}
			if err := ws.Watch(); err != nil {
				log.Printf("workspace watch: %v", err)
			}
		}()
	}
	return nil, nil
}

func (s *Server) handleShutdown(ctx context.Context) (any, error) {
	s.mu.Lock()
	s.shutdown = true
	ws := s.workspace
	s.mu.Unlock()

	if ws != nil {
		if err := ws.Close(); err != nil {
			log.Printf("closing workspace: %v", err)
		}
	}

	log.Printf("shutdown")
	return nil, nil
}

func (s *Server) handleExit(ctx context.Context) (any, error) {
	log.Printf("exit")
	if s.onExit != nil {
		s.onExit()
	}
	return nil, nil
}

// --- Text document sync ---

func (s *Server) handleDidOpen(ctx context.Context, params json.RawMessage) (any, error) {
	var p protocol.DidOpenTextDocumentParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, err
	}

	doc := newDocument(p.TextDocument.URI, p.TextDocument.Version, p.TextDocument.Text)
	s.mu.Lock()
	s.documents[doc.URI] = doc
	s.mu.Unlock()

	log.Printf("didOpen: %s", doc.URI)

	s.publishDiagnostics(ctx, doc)
	return nil, nil
}

func (s *Server) handleDidChange(ctx context.Context, params json.RawMessage) (any, error) {
	var p protocol.DidChangeTextDocumentParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, err
	}
	if len(p.ContentChanges) == 0 {
		return nil, nil
	}

	// Full sync - take the last change
	doc := newDocument(p.TextDocument.URI, p.TextDocument.Version, p.ContentChanges[len(p.ContentChanges)-1].Text)

	s.mu.Lock()
	prev, ok := s.documents[doc.URI]
	if ok && prev.Version > doc.Version {
		s.mu.Unlock()
		return nil, nil
	}
	s.documents[doc.URI] = doc
	s.mu.Unlock()

	log.Printf("didChange: %s v%d", doc.URI, doc.Version)

	s.publishDiagnostics(ctx, doc)
	return nil, nil
}

func (s *Server) handleDidClose(ctx context.Context, params json.RawMessage) (any, error) {
	var p protocol.DidCloseTextDocumentParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, err
	}

	s.mu.Lock()
	delete(s.documents, p.TextDocument.URI)
	s.mu.Unlock()

	log.Printf("didClose: %s", p.TextDocument.URI)

	// Clear diagnostics for closed document
	s.notify(ctx, "textDocument/publishDiagnostics", protocol.PublishDiagnosticsParams{
		URI:         p.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil, nil
}

func (s *Server) handleDidSave(ctx context.Context, params json.RawMessage) (any, error) {
	var p protocol.DidSaveTextDocumentParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, err
	}

	log.Printf("didSave: %s", p.TextDocument.URI)

	doc := s.document(p.TextDocument.URI)
	if p.Text != "" && (doc == nil || doc.Content != p.Text) {
		var version int32
		if doc != nil {
			version = doc.Version
		}
		doc = newDocument(p.TextDocument.URI, version, p.Text)
		s.mu.Lock()
		s.documents[doc.URI] = doc
		s.mu.Unlock()
	}
	if doc == nil {
		return nil, nil
	}

	if ws := s.currentWorkspace(); ws != nil {
		ws.Update(doc.Path(), doc.XML)
	}
	s.publishDiagnostics(ctx, doc)
	return nil, nil
}

// --- Workspace ---

// configurationSettings mirrors the "ui5ls" section of the client
// settings.
type configurationSettings struct {
	UI5LS *struct {
		CodeAssist *struct {
			Deprecated   *bool `json:"deprecated"`
			Experimental *bool `json:"experimental"`
		} `json:"codeAssist"`
	} `json:"ui5ls"`
}

func (s *Server) handleDidChangeConfiguration(ctx context.Context, params json.RawMessage) (any, error) {
	var p struct {
		Settings configurationSettings `json:"settings"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}
	if p.Settings.UI5LS == nil || p.Settings.UI5LS.CodeAssist == nil {
		return nil, nil
	}
	ca := p.Settings.UI5LS.CodeAssist

	s.mu.Lock()
	if ca.Deprecated != nil {
		s.opts.Settings.Deprecated = *ca.Deprecated
	}
	if ca.Experimental != nil {
		s.opts.Settings.Experimental = *ca.Experimental
	}
	settings := s.opts.Settings
	s.mu.Unlock()

	log.Printf("didChangeConfiguration: deprecated=%t experimental=%t", settings.Deprecated, settings.Experimental)
	return nil, nil
}

// --- Helpers ---

func (s *Server) document(u protocol.DocumentURI) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.documents[u]
}

func (s *Server) openDocuments() []*Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]*Document, 0, len(s.documents))
	for _, d := range s.documents {
		docs = append(docs, d)
	}
	return docs
}

func (s *Server) settings() completion.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.opts.Settings
}

func (s *Server) currentWorkspace() *Workspace {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.workspace
}

func (s *Server) notify(ctx context.Context, method string, params any) {
	// Guard against nil connection (e.g., in tests)
	if s.conn == nil {
		return
	}
	if err := s.conn.Notify(ctx, method, params); err != nil {
		log.Printf("failed to send %s: %v", method, err)
	}
}

// uriToPath converts a document URI to a file path. Non-file URIs are
// returned unchanged.
func uriToPath(u protocol.DocumentURI) string {
	if !strings.HasPrefix(string(u), uri.FileScheme+"://") {
		return string(u)
	}
	return uri.URI(u).Filename()
}

// pathToURI converts a file path to a document URI.
func pathToURI(path string) protocol.DocumentURI {
	return protocol.DocumentURI(uri.File(path))
}

// toRange converts a byte span of doc to an LSP range.
func toRange(doc *xmldoc.Document, span xmldoc.Span) protocol.Range {
	start, end := doc.Range(span)
	return protocol.Range{Start: toPosition(start), End: toPosition(end)}
}

func toPosition(p xmldoc.Position) protocol.Position {
	return protocol.Position{Line: uint32(p.Line), Character: uint32(p.Character)}
}

// toOffset converts an LSP position to a byte offset of doc.
func toOffset(doc *xmldoc.Document, p protocol.Position) int {
	return doc.Offset(xmldoc.Position{Line: int(p.Line), Character: int(p.Character)})
}
