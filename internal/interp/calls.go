package interp

import "c11c/internal/ir"

func (m *machine) execCall(fr *frame, op *ir.Op, depth int) (Value, error) {
	c := op.Call
	target := fr.regs[c.Target].asInt()
	args := make([]Value, len(c.Args))
	for i, a := range c.Args {
		args[i] = fr.regs[a]
	}
	if callee := m.addrToFunc[target]; callee != nil {
		return m.call(callee, args, depth+1)
	}
	name, ok := m.addrToCalleeName[target]
	if !ok {
		return Value{}, trap(fr.fn.Name, TrapUndefinedSymbol, "call through an address with no known function")
	}
	return m.callHost(fr, name, args, c.ArgTypes)
}

// execTerminator runs a block-ending op and reports where control goes
// next: (nextBlock, returnValue, isReturn, error). Exactly one of
// nextBlock/returnValue is meaningful, selected by isReturn.
func (m *machine) execTerminator(fr *frame, op *ir.Op, depth int) (ir.BlockID, Value, bool, error) {
	switch op.Kind {
	case ir.OpRet:
		if !op.Ret.HasValue {
			return ir.NoBlockID, Value{}, true, nil
		}
		return ir.NoBlockID, fr.regs[op.Ret.Value], true, nil
	case ir.OpBranch:
		return op.Branch.Target, Value{}, false, nil
	case ir.OpCondBranch:
		cond := fr.regs[op.CondBranch.Cond]
		if cond.I != 0 {
			return op.CondBranch.Then, Value{}, false, nil
		}
		return op.CondBranch.Else, Value{}, false, nil
	case ir.OpSwitch:
		v := fr.regs[op.Switch.Value].asInt()
		for _, c := range op.Switch.Cases {
			if c.Value == v {
				return c.Target, Value{}, false, nil
			}
		}
		return op.Switch.Default, Value{}, false, nil
	default:
		return ir.NoBlockID, Value{}, false, trap(fr.fn.Name, TrapUnsupportedOp, "op kind %s is not a terminator", op.Kind)
	}
}

func (m *machine) execMemSet(fr *frame, op *ir.Op) (Value, error) {
	dst := fr.regs[op.Mem.Dst].asInt()
	n := fr.regs[op.Mem.Len].asInt()
	fill := byte(fr.regs[op.Mem.FillByte].I)
	if err := m.checkRange(fr.fn.Name, dst, uint32(n)); err != nil {
		return Value{}, err
	}
	buf := m.mem[dst : dst+n]
	for i := range buf {
		buf[i] = fill
	}
	return intValue(dst), nil
}

func (m *machine) execMemCopy(fr *frame, op *ir.Op) (Value, error) {
	dst := fr.regs[op.Mem.Dst].asInt()
	src := fr.regs[op.Mem.Src].asInt()
	n := fr.regs[op.Mem.Len].asInt()
	if err := m.checkRange(fr.fn.Name, dst, uint32(n)); err != nil {
		return Value{}, err
	}
	if err := m.checkRange(fr.fn.Name, src, uint32(n)); err != nil {
		return Value{}, err
	}
	copy(m.mem[dst:dst+n], m.mem[src:src+n]) // Go's copy is memmove-safe on overlap
	return intValue(dst), nil
}

func (m *machine) execMemCmp(fr *frame, op *ir.Op) (Value, error) {
	a := fr.regs[op.Mem.Dst].asInt()
	b := fr.regs[op.Mem.Src].asInt()
	n := fr.regs[op.Mem.Len].asInt()
	if err := m.checkRange(fr.fn.Name, a, uint32(n)); err != nil {
		return Value{}, err
	}
	if err := m.checkRange(fr.fn.Name, b, uint32(n)); err != nil {
		return Value{}, err
	}
	for i := int64(0); i < n; i++ {
		ba, bb := m.mem[a+i], m.mem[b+i]
		if ba != bb {
			return intValue(int64(ba) - int64(bb)), nil
		}
	}
	return intValue(0), nil
}

// execVaStart and execVaArg implement a simplified va_list: the list
// "address" doubles as a key into the frame's cursor map rather than
// pointing at a real in-memory iterator struct, since this interpreter
// never hands variadic frames to unaudited foreign code (documented in
// DESIGN.md's interpreter section).
func (m *machine) execVaStart(fr *frame, op *ir.Op) (Value, error) {
	addr := fr.regs[op.VaArg.ListAddr].asInt()
	fr.vaCursor[addr] = 0
	return Value{}, nil
}

func (m *machine) execVaArg(fr *frame, op *ir.Op) (Value, error) {
	addr := fr.regs[op.VaArg.ListAddr].asInt()
	i := fr.vaCursor[addr]
	var v Value
	if i < len(fr.varargs) {
		v = fr.varargs[i]
	}
	fr.vaCursor[addr] = i + 1
	return v, nil
}
