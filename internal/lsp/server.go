// Package lsp is a syntax-only Language Server Protocol driver: it
// serves stdio JSON-RPC, tracks open documents, and republishes
// diagnostics through an injected AnalyzeFunc whenever a document
// changes. Syntax-only scope: no completion, hover, or
// go-to-definition, since those need a real type checker behind the
// AST boundary.
package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"c11c/internal/diag"
	"c11c/internal/source"
)

// ErrExit signals a graceful shutdown after receiving "exit".
var ErrExit = errors.New("lsp exit")

// AnalyzeFunc compiles one document's current content and returns the
// diagnostics to publish for it, alongside the FileSet used to resolve
// their spans back to line/column. The server calls this synchronously
// on didOpen/didChange; callers needing debouncing wrap it.
type AnalyzeFunc func(ctx context.Context, uri string, content string) (*diag.Bag, *source.FileSet)

// ServerOptions configures Server construction.
type ServerOptions struct {
	Analyze AnalyzeFunc
}

// Server serves one stdio LSP session.
type Server struct {
	in  *bufio.Reader
	out io.Writer

	sendMu sync.Mutex
	mu     sync.Mutex

	openDocs map[string]string // uri -> content

	analyze           AnalyzeFunc
	shutdownRequested bool
}

// NewServer constructs a Server reading requests from in and writing
// responses/notifications to out.
func NewServer(in io.Reader, out io.Writer, opts ServerOptions) *Server {
	analyze := opts.Analyze
	if analyze == nil {
		analyze = func(context.Context, string, string) (*diag.Bag, *source.FileSet) {
			return diag.NewBag(0), source.NewFileSet()
		}
	}
	return &Server{
		in:       bufio.NewReader(in),
		out:      out,
		openDocs: make(map[string]string),
		analyze:  analyze,
	}
}

// Run serves requests until "exit" or the input stream closes.
func (s *Server) Run(ctx context.Context) error {
	for {
		payload, err := readMessage(s.in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			continue // malformed frame: drop it, keep serving
		}
		if err := s.dispatch(ctx, msg); err != nil {
			if errors.Is(err, ErrExit) {
				return nil
			}
			return err
		}
	}
}

func (s *Server) dispatch(ctx context.Context, msg rpcMessage) error {
	switch msg.Method {
	case "initialize":
		return s.reply(msg.ID, initializeResult{
			Capabilities: serverCapabilities{
				TextDocumentSync: 1, // full-document sync, simplest correct option
			},
		})
	case "initialized":
		return nil
	case "shutdown":
		s.shutdownRequested = true
		return s.reply(msg.ID, nil)
	case "exit":
		return ErrExit
	case "textDocument/didOpen":
		var p didOpenParams
		if err := json.Unmarshal(msg.Params, &p); err != nil {
			return nil
		}
		s.setDoc(p.TextDocument.URI, p.TextDocument.Text)
		return s.publish(ctx, p.TextDocument.URI)
	case "textDocument/didChange":
		var p didChangeParams
		if err := json.Unmarshal(msg.Params, &p); err != nil {
			return nil
		}
		if len(p.ContentChanges) == 0 {
			return nil
		}
		// Full-sync mode: the last change event carries the whole text.
		s.setDoc(p.TextDocument.URI, p.ContentChanges[len(p.ContentChanges)-1].Text)
		return s.publish(ctx, p.TextDocument.URI)
	case "textDocument/didClose":
		var p didCloseParams
		if err := json.Unmarshal(msg.Params, &p); err != nil {
			return nil
		}
		s.dropDoc(p.TextDocument.URI)
		return s.publishEmpty(p.TextDocument.URI)
	default:
		if msg.ID != nil {
			return s.replyError(msg.ID, -32601, fmt.Sprintf("method not found: %s", msg.Method))
		}
		return nil
	}
}

func (s *Server) setDoc(uri, content string) {
	s.mu.Lock()
	s.openDocs[uri] = content
	s.mu.Unlock()
}

func (s *Server) dropDoc(uri string) {
	s.mu.Lock()
	delete(s.openDocs, uri)
	s.mu.Unlock()
}

func (s *Server) publish(ctx context.Context, uri string) error {
	s.mu.Lock()
	content := s.openDocs[uri]
	s.mu.Unlock()

	bag, fs := s.analyze(ctx, uri, content)
	return s.notify("textDocument/publishDiagnostics", publishDiagnosticsParams{
		URI:         uri,
		Diagnostics: toLSPDiagnostics(bag, fs),
	})
}

func (s *Server) publishEmpty(uri string) error {
	return s.notify("textDocument/publishDiagnostics", publishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []lspDiagnostic{},
	})
}

func (s *Server) reply(id *rpcID, result any) error {
	if id == nil {
		return nil
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return s.send(rpcMessage{JSONRPC: "2.0", ID: id, Result: payload})
}

func (s *Server) replyError(id *rpcID, code int, message string) error {
	return s.send(rpcMessage{JSONRPC: "2.0", ID: id, Error: &rpcError{Code: code, Message: message}})
}

func (s *Server) notify(method string, params any) error {
	payload, err := json.Marshal(params)
	if err != nil {
		return err
	}
	return s.send(rpcMessage{JSONRPC: "2.0", Method: method, Params: payload})
}

func (s *Server) send(msg rpcMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	return writeMessage(s.out, body)
}

// toLSPDiagnostics renders a diag.Bag into the LSP wire shape. Every
// diagnostic carries only its own span (internal/diag doesn't track
// multi-range notes as distinct positions worth exposing here), sorted
// by position for a stable publish order.
func toLSPDiagnostics(bag *diag.Bag, fs *source.FileSet) []lspDiagnostic {
	if bag == nil {
		return []lspDiagnostic{}
	}
	items := bag.Items()
	out := make([]lspDiagnostic, 0, len(items))
	for _, d := range items {
		out = append(out, lspDiagnostic{
			Range:    rangeFromSpan(fs, d.Primary),
			Severity: lspSeverity(d.Severity),
			Code:     d.Code.String(),
			Source:   "c11c",
			Message:  d.Message,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Range.Start.Line != out[j].Range.Start.Line {
			return out[i].Range.Start.Line < out[j].Range.Start.Line
		}
		return out[i].Range.Start.Character < out[j].Range.Start.Character
	})
	return out
}

func lspSeverity(sev diag.Severity) int {
	switch sev {
	case diag.SevError:
		return 1
	case diag.SevWarning:
		return 2
	default:
		return 3 // information
	}
}
