package lsp

import (
	"unicode/utf16"

	"c11c/internal/source"
)

// position/range/diagnostic mirror the subset of the LSP 3.17 wire
// format this syntax-only server needs: no hover/completion/definition
// shapes, since those need a real type checker this compiler core
// doesn't have.

type lspPosition struct {
	Line      int `json:"line"`      // 0-based, per the LSP spec
	Character int `json:"character"` // 0-based UTF-16 code unit offset
}

type lspRange struct {
	Start lspPosition `json:"start"`
	End   lspPosition `json:"end"`
}

type lspDiagnostic struct {
	Range    lspRange `json:"range"`
	Severity int      `json:"severity"`
	Code     string   `json:"code,omitempty"`
	Source   string   `json:"source,omitempty"`
	Message  string   `json:"message"`
}

type textDocumentIdentifier struct {
	URI string `json:"uri"`
}

type textDocumentItem struct {
	URI     string `json:"uri"`
	Text    string `json:"text"`
	Version int    `json:"version"`
}

type didOpenParams struct {
	TextDocument textDocumentItem `json:"textDocument"`
}

type contentChange struct {
	Text string `json:"text"`
}

type didChangeParams struct {
	TextDocument   textDocumentIdentifier `json:"textDocument"`
	ContentChanges []contentChange        `json:"contentChanges"`
}

type didCloseParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
}

type publishDiagnosticsParams struct {
	URI         string          `json:"uri"`
	Diagnostics []lspDiagnostic `json:"diagnostics"`
}

type serverCapabilities struct {
	TextDocumentSync int `json:"textDocumentSync"`
}

type initializeResult struct {
	Capabilities serverCapabilities `json:"capabilities"`
}

// rangeFromSpan resolves a source.Span's byte offsets into an LSP
// line/character range via fs. A nil fs or unresolvable file yields the
// zero range rather than panicking — this is best-effort positioning
// for a syntax-only server, not a load-bearing invariant.
func rangeFromSpan(fs *source.FileSet, span source.Span) lspRange {
	if fs == nil {
		return lspRange{}
	}
	f := fs.File(span.File)
	if f == nil {
		return lspRange{}
	}
	// character counts the UTF-16 code units between the line start and offset.
	character := func(offset uint32, pos source.Position) int {
		if int(offset) > len(f.Content) {
			return pos.Column - 1
		}
		lineStart := offset - uint32(pos.Column-1)
		return len(utf16.Encode([]rune(string(f.Content[lineStart:offset]))))
	}
	start := fs.Position(span.File, span.Start)
	end := fs.Position(span.File, span.End)
	return lspRange{
		Start: lspPosition{Line: start.Line - 1, Character: character(span.Start, start)},
		End:   lspPosition{Line: end.Line - 1, Character: character(span.End, end)},
	}
}
