package interp

import (
	"math"
	"math/bits"

	"c11c/internal/ir"
	"c11c/internal/types"
)

// call interprets one invocation of fn with args already bound to its
// declared parameters (and, for a variadic callee, any extra trailing
// arguments available through frame.varargs).
func (m *machine) call(fn *ir.Function, args []Value, depth int) (Value, error) {
	if depth+1 > maxCallDepth {
		return Value{}, trap(fn.Name, TrapStackOverflow, "max interpreted call depth %d exceeded", maxCallDepth)
	}
	fr := newFrame(fn)
	for _, l := range fn.Locals {
		fr.localAddr[l.ID] = m.alloc(int64(m.tin.SizeOf(l.Type, m.ptrSize())))
	}
	m.bindParams(fr, args)

	var prev ir.BlockID = ir.NoBlockID
	cur := fn.Block(fn.Entry)
	for {
		if cur == nil {
			return Value{}, trap(fn.Name, TrapUnsupportedOp, "control fell into a detached or missing block")
		}
		for _, phiOp := range cur.Phis() {
			fr.regs[phiOp.ID] = selectPhi(phiOp, prev, fr.regs)
		}
		var term *ir.Op
		for _, stmt := range cur.Stmts {
			for _, op := range stmt.Ops {
				if op.Kind == ir.OpPhi {
					continue
				}
				if op.Kind.IsTerminator() {
					term = op
					break
				}
				v, err := m.execOp(fr, op, depth)
				if err != nil {
					return Value{}, err
				}
				fr.regs[op.ID] = v
			}
			if term != nil {
				break
			}
		}
		if term == nil {
			return Value{}, trap(fn.Name, TrapUnsupportedOp, "block %d falls through without a terminator", cur.ID)
		}
		next, retVal, isReturn, err := m.execTerminator(fr, term, depth)
		if err != nil {
			return Value{}, err
		}
		if isReturn {
			return retVal, nil
		}
		prev = cur.ID
		cur = fn.Block(next)
	}
}

// bindParams binds the leading OpMov/OpFlagParam ops of the entry block's
// params statement to args, in declaration order, and stashes any extra
// trailing arguments of a variadic call as frame.varargs.
func (m *machine) bindParams(fr *frame, args []Value) {
	entry := fr.fn.Block(fr.fn.Entry)
	if entry == nil || len(entry.Stmts) == 0 {
		return
	}
	stmt := entry.Stmts[0]
	i := 0
	for _, op := range stmt.Ops {
		if op.Kind != ir.OpMov || op.Flags&ir.OpFlagParam == 0 {
			break
		}
		if i < len(args) {
			fr.regs[op.ID] = args[i]
		}
		i++
	}
	if i < len(args) {
		fr.varargs = append(fr.varargs, args[i:]...)
	}
}

func selectPhi(phiOp *ir.Op, prev ir.BlockID, regs map[ir.OpID]Value) Value {
	for _, e := range phiOp.Phi.Entries {
		if e.Pred == prev {
			return regs[e.Value]
		}
	}
	return Value{}
}

// findOp resolves id back to its *ir.Op within fn, building and caching a
// reverse index on first use per function — the same O(1)-amortized
// fallback irbuilder's own findOp uses (see DESIGN.md's known
// simplifications), needed here to recover an operand's width/floatness
// from its defining op's Type.
func (m *machine) findOp(fn *ir.Function, id ir.OpID) *ir.Op {
	idx, ok := m.opIndex[fn]
	if !ok {
		idx = make(map[ir.OpID]*ir.Op)
		fn.ForEachOp(func(op *ir.Op) { idx[op.ID] = op })
		m.opIndex[fn] = idx
	}
	return idx[id]
}

func (m *machine) typeOf(fn *ir.Function, id ir.OpID) types.TypeID {
	if op := m.findOp(fn, id); op != nil {
		return op.Type
	}
	return types.NoTypeID
}

func (m *machine) isFloatType(t types.TypeID) bool {
	ty, ok := m.tin.Lookup(t)
	return ok && ty.Kind == types.KindPrimitive && ty.Prim.IsFloat()
}

func (m *machine) widthOf(t types.TypeID) uint32 {
	w := m.tin.SizeOf(t, m.ptrSize())
	if w == 0 {
		return uint32(m.ptrSize())
	}
	return w
}

func signExtend(bits64 uint64, width uint32) int64 {
	if width == 0 || width >= 8 {
		return int64(bits64)
	}
	shift := 64 - width*8
	return int64(bits64<<shift) >> shift
}

func maskUnsigned(v uint64, width uint32) uint64 {
	if width == 0 || width >= 8 {
		return v
	}
	return v & ((uint64(1) << (width * 8)) - 1)
}

func (m *machine) execOp(fr *frame, op *ir.Op, depth int) (Value, error) {
	switch op.Kind {
	case ir.OpConstInt:
		return intValue(op.Const.Int), nil
	case ir.OpConstFloat:
		return floatValue(op.Const.Float), nil
	case ir.OpConstZero, ir.OpUndef:
		return Value{}, nil
	case ir.OpAddrOf:
		addr, err := m.resolveAddr(fr, op.AddrOf.Base, op.AddrOf.Local, op.AddrOf.Global, ir.NoOpID)
		return intValue(addr), err
	case ir.OpAddrOffset:
		return m.execAddrOffset(fr, op)
	case ir.OpLoad:
		addr, err := m.resolveAddr(fr, op.Load.Base, op.Load.Local, op.Load.Global, op.Load.Addr)
		if err != nil {
			return Value{}, err
		}
		return m.readValue(fr.fn.Name, addr, op.Type)
	case ir.OpStore:
		addr, err := m.resolveAddr(fr, op.Store.Base, op.Store.Local, op.Store.Global, op.Store.Addr)
		if err != nil {
			return Value{}, err
		}
		valType := m.typeOf(fr.fn, op.Store.Value)
		return Value{}, m.writeValue(fr.fn.Name, addr, valType, fr.regs[op.Store.Value])
	case ir.OpBitfieldLoad:
		return m.execBitfieldLoad(fr, op)
	case ir.OpBitfieldStore:
		return Value{}, m.execBitfieldStore(fr, op)
	case ir.OpUnary:
		return m.execUnary(fr, op)
	case ir.OpBinary:
		return m.execBinary(fr, op)
	case ir.OpCast:
		return m.execCast(fr, op)
	case ir.OpCall:
		return m.execCall(fr, op, depth)
	case ir.OpMov:
		return fr.regs[op.ID], nil // already bound by bindParams
	case ir.OpMemSet:
		return m.execMemSet(fr, op)
	case ir.OpMemCopy, ir.OpMemMove:
		return m.execMemCopy(fr, op)
	case ir.OpMemCmp:
		return m.execMemCmp(fr, op)
	case ir.OpVaStart:
		return m.execVaStart(fr, op)
	case ir.OpVaArg:
		return m.execVaArg(fr, op)
	default:
		return Value{}, trap(fr.fn.Name, TrapUnsupportedOp, "op kind %s not supported by the interpreter", op.Kind)
	}
}

func (m *machine) resolveAddr(fr *frame, base ir.AddrBase, local ir.LocalID, global ir.GlobalID, addrOp ir.OpID) (int64, error) {
	switch base {
	case ir.AddrBaseLocal:
		a, ok := fr.localAddr[local]
		if !ok {
			return 0, trap(fr.fn.Name, TrapUnsupportedOp, "reference to unknown local %d", local)
		}
		return a, nil
	case ir.AddrBaseGlobal:
		a, ok := m.globalAddr[global]
		if !ok {
			return 0, trap(fr.fn.Name, TrapUnsupportedOp, "reference to unknown global %d", global)
		}
		return a, nil
	case ir.AddrBaseOp:
		return fr.regs[addrOp].asInt(), nil
	default:
		return 0, trap(fr.fn.Name, TrapUnsupportedOp, "invalid address base %d", base)
	}
}

func (m *machine) execAddrOffset(fr *frame, op *ir.Op) (Value, error) {
	o := op.AddrOffset
	base := fr.regs[o.Base].asInt()
	var idx int64
	if o.Index != ir.NoOpID {
		idx = fr.regs[o.Index].asInt()
	}
	return intValue(base + idx*o.Scale + o.Disp), nil
}

func (m *machine) execUnary(fr *frame, op *ir.Op) (Value, error) {
	x := fr.regs[op.Unary.X]
	isFloat := m.isFloatType(op.Type)
	width := m.widthOf(op.Type)
	switch op.Unary.Kind {
	case ir.UnNeg:
		if isFloat {
			return floatValue(-x.F), nil
		}
		return intValue(-x.asInt()), nil
	case ir.UnNot:
		return Value{I: maskUnsigned(^x.I, width)}, nil
	case ir.UnLNot:
		if x.truthy(m.isFloatType(m.typeOf(fr.fn, op.Unary.X))) {
			return intValue(0), nil
		}
		return intValue(1), nil
	case ir.UnFAbs:
		return floatValue(math.Abs(x.F)), nil
	case ir.UnFSqrt:
		return floatValue(math.Sqrt(x.F)), nil
	case ir.UnPopcount:
		return intValue(int64(bits.OnesCount64(maskUnsigned(x.I, width)))), nil
	case ir.UnClz:
		if width >= 8 {
			return intValue(int64(bits.LeadingZeros64(x.I))), nil
		}
		return intValue(int64(bits.LeadingZeros64(maskUnsigned(x.I, width) << ((8 - width) * 8)))), nil
	case ir.UnCtz:
		v := maskUnsigned(x.I, width)
		if v == 0 {
			return intValue(int64(width * 8)), nil
		}
		return intValue(int64(bits.TrailingZeros64(v))), nil
	case ir.UnByteReverse:
		return Value{I: maskUnsigned(bits.ReverseBytes64(x.I)>>((8-width)*8), width)}, nil
	default:
		return Value{}, trap(fr.fn.Name, TrapUnsupportedOp, "unknown unary kind %d", op.Unary.Kind)
	}
}

func (m *machine) execBinary(fr *frame, op *ir.Op) (Value, error) {
	b := op.Binary
	x, y := fr.regs[b.X], fr.regs[b.Y]
	width := m.widthOf(m.typeOf(fr.fn, b.X))
	switch b.Kind {
	case ir.BinAddI:
		return Value{I: maskUnsigned(x.I+y.I, width)}, nil
	case ir.BinSubI:
		return Value{I: maskUnsigned(x.I-y.I, width)}, nil
	case ir.BinMulI:
		return Value{I: maskUnsigned(x.I*y.I, width)}, nil
	case ir.BinDivS:
		yv := signExtend(y.I, width)
		if yv == 0 {
			return Value{}, trap(fr.fn.Name, TrapDivByZero, "signed division by zero")
		}
		return Value{I: maskUnsigned(uint64(signExtend(x.I, width)/yv), width)}, nil
	case ir.BinDivU:
		yv := maskUnsigned(y.I, width)
		if yv == 0 {
			return Value{}, trap(fr.fn.Name, TrapDivByZero, "unsigned division by zero")
		}
		return Value{I: maskUnsigned(maskUnsigned(x.I, width)/yv, width)}, nil
	case ir.BinRemS:
		yv := signExtend(y.I, width)
		if yv == 0 {
			return Value{}, trap(fr.fn.Name, TrapDivByZero, "signed remainder by zero")
		}
		return Value{I: maskUnsigned(uint64(signExtend(x.I, width)%yv), width)}, nil
	case ir.BinRemU:
		yv := maskUnsigned(y.I, width)
		if yv == 0 {
			return Value{}, trap(fr.fn.Name, TrapDivByZero, "unsigned remainder by zero")
		}
		return Value{I: maskUnsigned(maskUnsigned(x.I, width)%yv, width)}, nil
	case ir.BinAnd:
		return Value{I: maskUnsigned(x.I&y.I, width)}, nil
	case ir.BinOr:
		return Value{I: maskUnsigned(x.I|y.I, width)}, nil
	case ir.BinXor:
		return Value{I: maskUnsigned(x.I^y.I, width)}, nil
	case ir.BinShl:
		return Value{I: maskUnsigned(x.I<<uint(y.I&63), width)}, nil
	case ir.BinShrS:
		return Value{I: maskUnsigned(uint64(signExtend(x.I, width)>>uint(y.I&63)), width)}, nil
	case ir.BinShrU:
		return Value{I: maskUnsigned(maskUnsigned(x.I, width)>>uint(y.I&63), width)}, nil
	case ir.BinEq:
		return boolValue(maskUnsigned(x.I, width) == maskUnsigned(y.I, width)), nil
	case ir.BinNe:
		return boolValue(maskUnsigned(x.I, width) != maskUnsigned(y.I, width)), nil
	case ir.BinLtS:
		return boolValue(signExtend(x.I, width) < signExtend(y.I, width)), nil
	case ir.BinLeS:
		return boolValue(signExtend(x.I, width) <= signExtend(y.I, width)), nil
	case ir.BinGtS:
		return boolValue(signExtend(x.I, width) > signExtend(y.I, width)), nil
	case ir.BinGeS:
		return boolValue(signExtend(x.I, width) >= signExtend(y.I, width)), nil
	case ir.BinLtU:
		return boolValue(maskUnsigned(x.I, width) < maskUnsigned(y.I, width)), nil
	case ir.BinLeU:
		return boolValue(maskUnsigned(x.I, width) <= maskUnsigned(y.I, width)), nil
	case ir.BinGtU:
		return boolValue(maskUnsigned(x.I, width) > maskUnsigned(y.I, width)), nil
	case ir.BinGeU:
		return boolValue(maskUnsigned(x.I, width) >= maskUnsigned(y.I, width)), nil
	case ir.BinAddF:
		return floatValue(x.F + y.F), nil
	case ir.BinSubF:
		return floatValue(x.F - y.F), nil
	case ir.BinMulF:
		return floatValue(x.F * y.F), nil
	case ir.BinDivF:
		return floatValue(x.F / y.F), nil
	case ir.BinEqF:
		return boolValue(x.F == y.F), nil
	case ir.BinNeF:
		return boolValue(x.F != y.F), nil
	case ir.BinLtF:
		return boolValue(x.F < y.F), nil
	case ir.BinLeF:
		return boolValue(x.F <= y.F), nil
	case ir.BinGtF:
		return boolValue(x.F > y.F), nil
	case ir.BinGeF:
		return boolValue(x.F >= y.F), nil
	default:
		return Value{}, trap(fr.fn.Name, TrapUnsupportedOp, "unknown binary kind %d", b.Kind)
	}
}

func boolValue(b bool) Value {
	if b {
		return intValue(1)
	}
	return intValue(0)
}
