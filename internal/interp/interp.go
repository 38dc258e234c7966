// Package interp is a direct IR interpreter: it walks one ir.Unit's basic
// blocks and ops and executes them against a flat simulated address space,
// with no target codegen involved: an injectable Runtime, stable trap
// codes, a call-stack of frames. There is no separate backend
// representation to interpret.
package interp

import (
	"fmt"

	"c11c/internal/ir"
)

// TrapCode identifies the kind of runtime fault Run can report.
type TrapCode int

const (
	TrapDivByZero       TrapCode = 1001
	TrapOutOfBounds     TrapCode = 1002
	TrapUndefinedSymbol TrapCode = 1003
	TrapUnsupportedOp   TrapCode = 1004
	TrapStackOverflow   TrapCode = 1005
)

func (c TrapCode) String() string {
	return fmt.Sprintf("TRAP%d", c)
}

// Trap is a runtime fault raised while interpreting.
type Trap struct {
	Code    TrapCode
	Message string
	Func    string
}

func (t *Trap) Error() string {
	return fmt.Sprintf("%s in %s: %s", t.Code, t.Func, t.Message)
}

func trap(fn string, code TrapCode, format string, args ...any) *Trap {
	return &Trap{Code: code, Func: fn, Message: fmt.Sprintf(format, args...)}
}

// maxCallDepth bounds recursion in the interpreted program itself, distinct
// from the Go call stack this interpreter's own recursive call method uses.
const maxCallDepth = 4096

// Run interprets entryName (typically "main") to completion and returns its
// process exit status: the truncated i32 return value of entryName, or the
// code passed to a host exit() builtin.
func Run(unit *ir.Unit, entryName string, argv []string, rt Runtime) (int, error) {
	g, ok := unit.LookupGlobal(entryName)
	if !ok || g.Kind != ir.GlobalFunc || g.Func == nil {
		return 1, fmt.Errorf("interp: no defined function %q in unit", entryName)
	}
	m := newMachine(unit, rt)
	args := m.materializeArgv(g.Func, argv)
	ret, err := m.call(g.Func, args, 0)
	if exit, ok := err.(*exitSignal); ok {
		return exit.code, nil
	}
	if err != nil {
		return 1, err
	}
	return int(int32(ret.I)), nil
}

// exitSignal unwinds the Go call stack when the interpreted program calls
// the host exit() builtin; it is never surfaced to Run's caller as an error.
type exitSignal struct{ code int }

func (e *exitSignal) Error() string { return fmt.Sprintf("exit(%d)", e.code) }
