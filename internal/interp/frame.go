package interp

import "c11c/internal/ir"

// frame is one interpreted call's live state: its SSA register file
// (every op that produced a value, keyed by OpID) and the addresses its
// locals were allocated at in the machine's flat memory.
type frame struct {
	fn        *ir.Function
	regs      map[ir.OpID]Value
	localAddr map[ir.LocalID]int64
	vaCursor  map[int64]int // va_list address -> next vararg index
	varargs   []Value
	varargTy  []int // byte widths, for width-correct va_arg reads
}

func newFrame(fn *ir.Function) *frame {
	return &frame{
		fn:        fn,
		regs:      make(map[ir.OpID]Value, len(fn.Locals)+16),
		localAddr: make(map[ir.LocalID]int64, len(fn.Locals)),
		vaCursor:  make(map[int64]int),
	}
}
