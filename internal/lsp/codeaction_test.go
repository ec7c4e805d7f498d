package lsp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.lsp.dev/protocol"

	"github.com/albertocavalcante/ui5ls/internal/ui5config"
)

const flexView = "<mvc:View xmlns:mvc=\"sap.ui.core.mvc\" xmlns=\"sap.m\">\n  <Button text=\"a\"/>\n  <Button id=\"_IDGenButton1\"/>\n  <Text/>\n</mvc:View>"

func codeActions(t *testing.T, server *Server, rng protocol.Range) []protocol.CodeAction {
	t.Helper()
	result := call(t, server, "textDocument/codeAction", protocol.CodeActionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
		Range:        rng,
	})
	actions, ok := result.([]protocol.CodeAction)
	if !ok {
		t.Fatalf("result is not []protocol.CodeAction: %T", result)
	}
	return actions
}

// newTexts returns the text of every edit an action makes to testURI.
func newTexts(action protocol.CodeAction) []string {
	var out []string
	if action.Edit == nil {
		return out
	}
	for _, e := range action.Edit.Changes[testURI] {
		out = append(out, e.NewText)
	}
	return out
}

func TestCodeActionGenerateID(t *testing.T) {
	server := newTestServer(t, Options{FlexEnabled: true})
	openDocument(t, server, testURI, flexView)

	cursor := positionOf(t, flexView, `<Button text`, 3)
	actions := codeActions(t, server, protocol.Range{Start: cursor, End: cursor})
	if len(actions) != 2 {
		t.Fatalf("got %d actions, want 2: %+v", len(actions), actions)
	}

	single := actions[0]
	if single.Title != "Generate ID" || single.Kind != quickFix || !single.IsPreferred {
		t.Errorf("first action = %q kind %q preferred %v", single.Title, single.Kind, single.IsPreferred)
	}
	if len(single.Diagnostics) != 1 {
		t.Errorf("first action carries %d diagnostics, want 1", len(single.Diagnostics))
	}
	edits := single.Edit.Changes[testURI]
	if len(edits) != 1 {
		t.Fatalf("got %d edits, want 1", len(edits))
	}
	at := positionOf(t, flexView, `text="a"`, 0)
	want := protocol.TextEdit{Range: protocol.Range{Start: at, End: at}, NewText: `id="_IDGenButton" `}
	if diff := cmp.Diff(want, edits[0]); diff != "" {
		t.Errorf("edit mismatch (-want +got):\n%s", diff)
	}

	all := actions[1]
	if all.Title != "Generate IDs for the entire file" {
		t.Errorf("second action = %q", all.Title)
	}
	if diff := cmp.Diff([]string{`id="_IDGenButton" `, ` id="_IDGenText"`}, newTexts(all)); diff != "" {
		t.Errorf("file-wide edits mismatch (-want +got):\n%s", diff)
	}
}

func TestCodeActionOutsideDiagnostics(t *testing.T) {
	server := newTestServer(t, Options{FlexEnabled: true})
	openDocument(t, server, testURI, flexView)

	cursor := positionOf(t, flexView, `_IDGenButton1`, 0)
	if actions := codeActions(t, server, protocol.Range{Start: cursor, End: cursor}); len(actions) != 0 {
		t.Errorf("got %d actions away from diagnostics, want 0", len(actions))
	}
}

func TestCodeActionWithoutFlex(t *testing.T) {
	server := newTestServer(t, Options{})
	openDocument(t, server, testURI, flexView)

	cursor := positionOf(t, flexView, `<Button text`, 3)
	if actions := codeActions(t, server, protocol.Range{Start: cursor, End: cursor}); len(actions) != 0 {
		t.Errorf("got %d actions without flexibility, want 0", len(actions))
	}
}

func TestCodeActionUsesWorkspaceIDs(t *testing.T) {
	dir := t.TempDir()
	other := `<mvc:View xmlns:mvc="sap.ui.core.mvc" xmlns="sap.m"><Button id="_IDGenButton"/></mvc:View>`
	if err := os.WriteFile(filepath.Join(dir, "Other.view.xml"), []byte(other), 0o644); err != nil {
		t.Fatal(err)
	}

	server := newTestServer(t, Options{FlexEnabled: true, IDPrefix: "_IDGen"})
	ws := NewWorkspace(dir, ui5config.DefaultConfig().Matches)
	if err := ws.Scan(context.Background()); err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	server.mu.Lock()
	server.workspace = ws
	server.mu.Unlock()

	openDocument(t, server, testURI, flexView)
	cursor := positionOf(t, flexView, `<Button text`, 3)
	actions := codeActions(t, server, protocol.Range{Start: cursor, End: cursor})
	if len(actions) == 0 {
		t.Fatal("no actions")
	}
	if diff := cmp.Diff([]string{`id="_IDGenButton2" `}, newTexts(actions[0])); diff != "" {
		t.Errorf("edits mismatch (-want +got):\n%s", diff)
	}
}

func TestCodeActionOpenBufferReplacesSavedIDs(t *testing.T) {
	dir := t.TempDir()
	otherPath := filepath.Join(dir, "Other.view.xml")
	saved := `<mvc:View xmlns:mvc="sap.ui.core.mvc" xmlns="sap.m"><Button id="_IDGenButton"/></mvc:View>`
	if err := os.WriteFile(otherPath, []byte(saved), 0o644); err != nil {
		t.Fatal(err)
	}

	server := newTestServer(t, Options{FlexEnabled: true, IDPrefix: "_IDGen"})
	ws := NewWorkspace(dir, ui5config.DefaultConfig().Matches)
	if err := ws.Scan(context.Background()); err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	server.mu.Lock()
	server.workspace = ws
	server.mu.Unlock()

	// The unsaved buffer no longer uses _IDGenButton.
	openDocument(t, server, pathToURI(otherPath),
		`<mvc:View xmlns:mvc="sap.ui.core.mvc" xmlns="sap.m"><Button id="renamed"/></mvc:View>`)
	openDocument(t, server, testURI, flexView)

	cursor := positionOf(t, flexView, `<Button text`, 3)
	actions := codeActions(t, server, protocol.Range{Start: cursor, End: cursor})
	if len(actions) == 0 {
		t.Fatal("no actions")
	}
	if diff := cmp.Diff([]string{`id="_IDGenButton" `}, newTexts(actions[0])); diff != "" {
		t.Errorf("edits mismatch (-want +got):\n%s", diff)
	}
}

func TestCodeActionUsesOpenDocumentIDs(t *testing.T) {
	server := newTestServer(t, Options{FlexEnabled: true})
	openDocument(t, server, "file:///app/webapp/view/Other.view.xml",
		`<mvc:View xmlns:mvc="sap.ui.core.mvc" xmlns="sap.m"><Text id="_IDGenText"/></mvc:View>`)
	openDocument(t, server, testURI, flexView)

	cursor := positionOf(t, flexView, `<Text`, 1)
	actions := codeActions(t, server, protocol.Range{Start: cursor, End: cursor})
	if len(actions) == 0 {
		t.Fatal("no actions")
	}
	if diff := cmp.Diff([]string{` id="_IDGenText1"`}, newTexts(actions[0])); diff != "" {
		t.Errorf("edits mismatch (-want +got):\n%s", diff)
	}
}

func TestRangesIntersect(t *testing.T) {
	pos := func(line, char uint32) protocol.Position { return protocol.Position{Line: line, Character: char} }
	rng := func(a, b protocol.Position) protocol.Range { return protocol.Range{Start: a, End: b} }

	tests := []struct {
		name string
		a, b protocol.Range
		want bool
	}{
		{"overlap", rng(pos(1, 0), pos(1, 10)), rng(pos(1, 5), pos(1, 15)), true},
		{"contained", rng(pos(0, 0), pos(5, 0)), rng(pos(2, 3), pos(2, 3)), true},
		{"touching end", rng(pos(1, 2), pos(1, 8)), rng(pos(1, 8), pos(1, 8)), true},
		{"touching start", rng(pos(1, 2), pos(1, 8)), rng(pos(1, 2), pos(1, 2)), true},
		{"before", rng(pos(1, 2), pos(1, 8)), rng(pos(1, 0), pos(1, 1)), false},
		{"other line", rng(pos(1, 2), pos(1, 8)), rng(pos(2, 0), pos(2, 4)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rangesIntersect(tt.a, tt.b); got != tt.want {
				t.Errorf("rangesIntersect() = %v, want %v", got, tt.want)
			}
			if got := rangesIntersect(tt.b, tt.a); got != tt.want {
				t.Errorf("rangesIntersect() swapped = %v, want %v", got, tt.want)
			}
		})
	}
}
