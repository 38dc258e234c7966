package diag

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/width"

	"c11c/internal/source"
)

// FormatGolden renders diagnostics into a stable, single-line-per-entry
// representation suitable for golden-file tests and "-fdiagnostics-sink="
// plain output. Fields are separated by single spaces and are not padded
// or aligned into columns.
func FormatGolden(diags []*Diagnostic, fs *source.FileSet) string {
	if len(diags) == 0 {
		return ""
	}
	type rendered struct {
		path    string
		line    int
		col     int
		sev     string
		code    string
		message string
	}
	out := make([]rendered, 0, len(diags))
	for _, d := range diags {
		path := "<unknown>"
		line, col := 0, 0
		if fs != nil {
			if f := fs.File(d.Primary.File); f != nil {
				path = f.Path
				pos := fs.Position(d.Primary.File, d.Primary.Start)
				line, col = pos.Line, pos.Column
			}
		}
		out = append(out, rendered{
			path: path, line: line, col: col,
			sev: d.Severity.String(), code: d.Code.String(), message: d.Message,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.path != b.path {
			return a.path < b.path
		}
		if a.line != b.line {
			return a.line < b.line
		}
		return a.col < b.col
	})

	var b strings.Builder
	for i, r := range out {
		col := visualWidth(r.path)
		_ = col
		fmt.Fprintf(&b, "%s: %s %s:%d:%d: %s", r.sev, r.code, r.path, r.line, r.col, r.message)
		if i < len(out)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// visualWidth measures the display width of s, counting East-Asian wide
// runes as two columns. FormatGolden computes it but does not use it.
func visualWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}
