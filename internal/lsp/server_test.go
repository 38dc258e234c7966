package lsp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"c11c/internal/diag"
	"c11c/internal/source"
)

func writeRequest(t *testing.T, buf *bytes.Buffer, id int, method string, params any) {
	t.Helper()
	msg := map[string]any{"jsonrpc": "2.0", "id": id, "method": method}
	if params != nil {
		msg["params"] = params
	}
	body, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	buf.WriteString("Content-Length: ")
	buf.WriteString(strconv.Itoa(len(body)))
	buf.WriteString("\r\n\r\n")
	buf.Write(body)
}

func writeNotification(t *testing.T, buf *bytes.Buffer, method string, params any) {
	t.Helper()
	msg := map[string]any{"jsonrpc": "2.0", "method": method, "params": params}
	body, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	buf.WriteString("Content-Length: ")
	buf.WriteString(strconv.Itoa(len(body)))
	buf.WriteString("\r\n\r\n")
	buf.Write(body)
}

func fakeAnalyze(ctx context.Context, uri, content string) (*diag.Bag, *source.FileSet) {
	bag := diag.NewBag(10)
	fs := source.NewFileSet()
	id := fs.AddContent(uri, []byte(content))
	if strings.Contains(content, "bad") {
		bag.Add(diag.New(diag.InternalInvariant, source.Span{File: id, Start: 0, End: 3}, "saw 'bad'"))
	}
	return bag, fs
}

func readAllMessages(t *testing.T, r *bufio.Reader) []rpcMessage {
	t.Helper()
	var out []rpcMessage
	for {
		payload, err := readMessage(r)
		if err != nil {
			break
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			t.Fatalf("unmarshal response: %v", err)
		}
		out = append(out, msg)
	}
	return out
}

func TestServerPublishesDiagnosticsOnDidOpen(t *testing.T) {
	var in bytes.Buffer
	writeRequest(t, &in, 1, "initialize", map[string]any{})
	writeNotification(t, &in, "textDocument/didOpen", didOpenParams{
		TextDocument: textDocumentItem{URI: "file:///a.c", Text: "int bad(void){}", Version: 1},
	})
	writeNotification(t, &in, "exit", nil)

	var out bytes.Buffer
	server := NewServer(&in, &out, ServerOptions{Analyze: fakeAnalyze})
	if err := server.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	msgs := readAllMessages(t, bufio.NewReader(&out))
	var sawPublish bool
	for _, m := range msgs {
		if m.Method == "textDocument/publishDiagnostics" {
			var p publishDiagnosticsParams
			if err := json.Unmarshal(m.Params, &p); err != nil {
				t.Fatalf("unmarshal params: %v", err)
			}
			if len(p.Diagnostics) == 1 {
				sawPublish = true
			}
		}
	}
	if !sawPublish {
		t.Fatalf("expected a publishDiagnostics notification with 1 diagnostic, got %+v", msgs)
	}
}

func TestServerRepliesToInitialize(t *testing.T) {
	var in bytes.Buffer
	writeRequest(t, &in, 1, "initialize", map[string]any{})
	writeNotification(t, &in, "exit", nil)

	var out bytes.Buffer
	server := NewServer(&in, &out, ServerOptions{Analyze: fakeAnalyze})
	if err := server.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	msgs := readAllMessages(t, bufio.NewReader(&out))
	if len(msgs) == 0 {
		t.Fatalf("expected at least one reply")
	}
	if msgs[0].ID == nil || msgs[0].ID.Num != 1 {
		t.Fatalf("expected reply to request id 1, got %+v", msgs[0].ID)
	}
}
