package lsp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"testing"
)

func frame(body string) string {
	return fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(body), body)
}

// readMessages splits framed output back into message bodies.
func readMessages(t *testing.T, data []byte) []map[string]any {
	t.Helper()
	conn := NewConn(&mockConn{Reader: bytes.NewReader(data), Writer: io.Discard}, nil)
	var out []map[string]any
	for {
		line, err := conn.reader.ReadString('\n')
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("reading header: %v", err)
		}
		var n int
		if _, err := fmt.Sscanf(line, "Content-Length: %d", &n); err != nil {
			t.Fatalf("bad header %q: %v", line, err)
		}
		if _, err := conn.reader.ReadString('\n'); err != nil {
			t.Fatalf("reading separator: %v", err)
		}
		body := make([]byte, n)
		if _, err := io.ReadFull(conn.reader, body); err != nil {
			t.Fatalf("reading body: %v", err)
		}
		var msg map[string]any
		if err := json.Unmarshal(body, &msg); err != nil {
			t.Fatalf("decoding %s: %v", body, err)
		}
		out = append(out, msg)
	}
}

func TestReadRequest(t *testing.T) {
	body := `{"jsonrpc":"2.0","id":1,"method":"test"}`
	tests := []struct {
		name  string
		input string
	}{
		{"canonical", frame(`{"jsonrpc":"2.0","id":1,"method":"test","params":{}}`)},
		{"extra headers", fmt.Sprintf("Content-Type: application/vscode-jsonrpc; charset=utf-8\r\ncontent-length: %d\r\n\r\n%s", len(body), body)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := NewConn(&mockConn{
				Reader: strings.NewReader(tt.input),
				Writer: io.Discard,
			}, nil)

			req, err := conn.readRequest()
			if err != nil {
				t.Fatalf("readRequest failed: %v", err)
			}
			if req.Method != "test" {
				t.Errorf("Method = %q, want %q", req.Method, "test")
			}
			if req.IsNotification() {
				t.Error("ID should not be nil")
			}
		})
	}
}

func TestReadRequestMissingLength(t *testing.T) {
	conn := NewConn(&mockConn{
		Reader: strings.NewReader("X-Header: 1\r\n\r\n{}"),
		Writer: io.Discard,
	}, nil)
	if _, err := conn.readRequest(); err == nil {
		t.Fatal("expected error for missing Content-Length")
	}
}

func TestWriteResponse(t *testing.T) {
	var buf bytes.Buffer
	conn := NewConn(&mockConn{
		Reader: bytes.NewReader(nil),
		Writer: &buf,
	}, nil)

	id := json.RawMessage(`1`)
	resp := &Response{
		JSONRPC: "2.0",
		ID:      &id,
		Result:  map[string]string{"status": "ok"},
	}

	if err := conn.writeResponse(resp); err != nil {
		t.Fatalf("writeResponse failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "Content-Length:") {
		t.Error("output should contain Content-Length header")
	}
	if !strings.Contains(output, `"result"`) {
		t.Error("output should contain result field")
	}
}

func TestRunDispatchesRequests(t *testing.T) {
	input := frame(`{"jsonrpc":"2.0","id":1,"method":"echo","params":"hi"}`) +
		frame(`{"jsonrpc":"2.0","method":"note"}`) +
		frame(`{"jsonrpc":"2.0","id":2,"method":"nothing"}`) +
		frame(`{"jsonrpc":"2.0","id":3,"method":"fail"}`)

	var out bytes.Buffer
	handler := HandlerFunc(func(ctx context.Context, req *Request) (any, error) {
		switch req.Method {
		case "echo":
			var s string
			_ = json.Unmarshal(req.Params, &s)
			return s, nil
		case "fail":
			return nil, ErrMethodNotFound
		}
		return nil, nil
	})
	conn := NewConn(&mockConn{Reader: strings.NewReader(input), Writer: &out}, handler)
	if err := conn.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	byID := make(map[float64]map[string]any)
	for _, msg := range readMessages(t, out.Bytes()) {
		id, ok := msg["id"].(float64)
		if !ok {
			t.Fatalf("unexpected message without id: %v", msg)
		}
		byID[id] = msg
	}
	if len(byID) != 3 {
		t.Fatalf("got %d responses, want 3", len(byID))
	}
	if byID[1]["result"] != "hi" {
		t.Errorf("echo result = %v, want hi", byID[1]["result"])
	}
	if result, ok := byID[2]["result"]; !ok || result != nil {
		t.Errorf("empty result = %v (present %v), want null", result, ok)
	}
	errObj, ok := byID[3]["error"].(map[string]any)
	if !ok || errObj["code"] != float64(CodeMethodNotFound) {
		t.Errorf("fail error = %v, want code %d", byID[3]["error"], CodeMethodNotFound)
	}
}

func TestRunSurvivesMalformedBody(t *testing.T) {
	input := frame(`{not json`) + frame(`{"jsonrpc":"2.0","id":7,"method":"ok"}`)

	var out bytes.Buffer
	handler := HandlerFunc(func(ctx context.Context, req *Request) (any, error) {
		return "done", nil
	})
	conn := NewConn(&mockConn{Reader: strings.NewReader(input), Writer: &out}, handler)
	if err := conn.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	msgs := readMessages(t, out.Bytes())
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	errObj, ok := msgs[0]["error"].(map[string]any)
	if !ok || errObj["code"] != float64(CodeParseError) {
		t.Errorf("first message = %v, want parse error", msgs[0])
	}
	if msgs[1]["result"] != "done" {
		t.Errorf("second message = %v, want result done", msgs[1])
	}
}

func TestNotify(t *testing.T) {
	var buf bytes.Buffer
	conn := NewConn(&mockConn{Reader: bytes.NewReader(nil), Writer: &buf}, nil)

	if err := conn.Notify(context.Background(), "window/logMessage", map[string]any{"type": 3, "message": "hello"}); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	msgs := readMessages(t, buf.Bytes())
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	if msgs[0]["method"] != "window/logMessage" {
		t.Errorf("method = %v", msgs[0]["method"])
	}
	if _, ok := msgs[0]["id"]; ok {
		t.Error("notification must not carry an id")
	}
}

func TestResponseError(t *testing.T) {
	err := &ResponseError{
		Code:    CodeMethodNotFound,
		Message: "method not found",
	}

	if err.Error() != "jsonrpc error -32601: method not found" {
		t.Errorf("Error() = %q, want %q", err.Error(), "jsonrpc error -32601: method not found")
	}
}

func TestHandlerFunc(t *testing.T) {
	called := false
	h := HandlerFunc(func(ctx context.Context, req *Request) (any, error) {
		called = true
		return "ok", nil
	})

	result, err := h.Handle(context.Background(), &Request{Method: "test"})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !called {
		t.Error("handler was not called")
	}
	if result != "ok" {
		t.Errorf("result = %v, want %q", result, "ok")
	}
}

type mockConn struct {
	io.Reader
	io.Writer
}

func (m *mockConn) Close() error {
	return nil
}
