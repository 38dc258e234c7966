package diag

import (
	"fmt"

	"c11c/internal/source"
)

// Note attaches secondary context to a Diagnostic at a different span.
type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is one reportable condition, always anchored to a Primary
// span so the sink can render it as "file:line:col: message".
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
}

// New builds a plain error Diagnostic.
func New(code Code, span source.Span, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Severity: SevError,
		Code:     code,
		Primary:  span,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Warning builds a warning-severity Diagnostic.
func Warning(code Code, span source.Span, format string, args ...any) *Diagnostic {
	d := New(code, span, format, args...)
	d.Severity = SevWarning
	return d
}
