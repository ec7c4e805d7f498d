// Package lsp implements a Language Server Protocol server for UI5 XML
// views and fragments.
//
// The server speaks JSON-RPC 2.0 over stdio and serves completion,
// hover, diagnostics, code actions, folding ranges and document symbols
// on top of the framework model loaded by internal/ui5/loader.
package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
)

// JSON-RPC 2.0 message types

// Request is a JSON-RPC request or notification.
type Request struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id,omitempty"` // nil for notifications
	Method  string           `json:"method"`
	Params  json.RawMessage  `json:"params,omitempty"`
}

// IsNotification reports whether the request expects no response.
func (r *Request) IsNotification() bool {
	return r.ID == nil
}

// Response is a JSON-RPC response.
type Response struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id"`
	Result  any              `json:"result,omitempty"`
	Error   *ResponseError   `json:"error,omitempty"`
}

// ResponseError is a JSON-RPC error.
type ResponseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *ResponseError) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

// Standard JSON-RPC error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603

	// LSP-specific error codes
	CodeRequestCancelled = -32800
	CodeContentModified  = -32801
)

// nullResult is sent for successful requests without a result, since
// the protocol requires the result member to be present.
var nullResult = json.RawMessage("null")

// errMalformed marks a message whose framing was intact but whose body
// could not be decoded. The connection survives it.
var errMalformed = errors.New("malformed message")

// Conn handles JSON-RPC communication over an io.ReadWriteCloser.
type Conn struct {
	rwc     io.ReadWriteCloser
	reader  *bufio.Reader
	writeMu sync.Mutex

	handler Handler
	wg      sync.WaitGroup
}

// Handler processes incoming requests.
type Handler interface {
	Handle(ctx context.Context, req *Request) (result any, err error)
}

// HandlerFunc is an adapter to use functions as Handler.
type HandlerFunc func(ctx context.Context, req *Request) (any, error)

func (f HandlerFunc) Handle(ctx context.Context, req *Request) (any, error) {
	return f(ctx, req)
}

// NewConn creates a new JSON-RPC connection.
func NewConn(rwc io.ReadWriteCloser, handler Handler) *Conn {
	return &Conn{
		rwc:     rwc,
		reader:  bufio.NewReader(rwc),
		handler: handler,
	}
}

// Run reads and handles messages until EOF or error. Requests other than
// initialize and shutdown are served concurrently; Run waits for them
// before returning.
func (c *Conn) Run(ctx context.Context) error {
	defer c.wg.Wait()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		req, err := c.readRequest()
		if errors.Is(err, errMalformed) {
			_ = c.writeMessage(&Response{
				JSONRPC: "2.0",
				Error:   &ResponseError{Code: CodeParseError, Message: err.Error()},
			})
			continue
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("reading request: %w", err)
		}

		// Notifications and lifecycle requests are handled in order so
		// that document state and server state follow the client.
		if req.IsNotification() || req.Method == "initialize" || req.Method == "shutdown" {
			c.handleRequest(ctx, req)
			continue
		}

		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.handleRequest(ctx, req)
		}()
	}
}

func (c *Conn) readRequest() (*Request, error) {
	var contentLength int
	for {
		line, err := c.reader.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break // End of headers
		}

		name, value, ok := strings.Cut(line, ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("invalid Content-Length: %w", err)
		}
		contentLength = n
	}

	if contentLength <= 0 {
		return nil, fmt.Errorf("missing Content-Length header")
	}

	body := make([]byte, contentLength)
	if _, err := io.ReadFull(c.reader, body); err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformed, err)
	}
	return &req, nil
}

func (c *Conn) handleRequest(ctx context.Context, req *Request) {
	result, err := c.handler.Handle(ctx, req)

	// Notifications don't get responses
	if req.IsNotification() {
		return
	}

	resp := Response{
		JSONRPC: "2.0",
		ID:      req.ID,
	}
	switch {
	case err != nil:
		var rpcErr *ResponseError
		if errors.As(err, &rpcErr) {
			resp.Error = rpcErr
		} else {
			resp.Error = &ResponseError{Code: CodeInternalError, Message: err.Error()}
		}
	case result == nil:
		resp.Result = nullResult
	default:
		resp.Result = result
	}

	_ = c.writeResponse(&resp)
}

func (c *Conn) writeResponse(resp *Response) error {
	if err := c.writeMessage(resp); err != nil {
		return fmt.Errorf("writing response: %w", err)
	}
	return nil
}

// Notify sends a notification to the client (no response expected).
func (c *Conn) Notify(ctx context.Context, method string, params any) error {
	req := Request{
		JSONRPC: "2.0",
		Method:  method,
	}
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("marshaling params: %w", err)
		}
		req.Params = data
	}
	if err := c.writeMessage(&req); err != nil {
		return fmt.Errorf("sending %s: %w", method, err)
	}
	return nil
}

// writeMessage frames v with a Content-Length header. Writes are
// serialized so that concurrent handlers never interleave messages.
func (c *Conn) writeMessage(v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling message: %w", err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	header := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(body))
	if _, err := io.WriteString(c.rwc, header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if _, err := c.rwc.Write(body); err != nil {
		return fmt.Errorf("writing body: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.rwc.Close()
}

// ErrMethodNotFound is returned when a method is not implemented.
var ErrMethodNotFound = &ResponseError{
	Code:    CodeMethodNotFound,
	Message: "method not found",
}
