package ir

import "fmt"

// Validate re-checks the dominance and phi-shape invariants plus block
// termination after a function has been fully built. It assumes blocks
// appear in the order the builder allocated them, which for this
// recursive-descent builder is always a valid topological (dominance
// respecting) order: every construct allocates and fills a predecessor
// block before the blocks it branches to.
func Validate(f *Function) error {
	if f == nil {
		return nil
	}
	defined := make(map[OpID]bool)

	var lastLive *Block
	for _, b := range f.Blocks {
		if b.Detached {
			continue
		}
		lastLive = b
		if err := validateBlockShape(f, b); err != nil {
			return err
		}
		if err := validateDefUse(b, defined); err != nil {
			return err
		}
	}
	if lastLive == nil {
		return fmt.Errorf("ir: function %q has no blocks", f.Name)
	}
	if term := lastLive.Terminator(); term == nil || term.Kind != OpRet {
		return fmt.Errorf("ir: function %q's last block does not end in ret", f.Name)
	}
	return nil
}

// validateBlockShape checks termination and phi shape: exactly one
// terminator, phis only at block head, one phi entry per predecessor.
func validateBlockShape(f *Function, b *Block) error {
	term := b.Terminator()
	if term == nil {
		return fmt.Errorf("ir: block %d in %q is not terminated", b.ID, f.Name)
	}
	for si, s := range b.Stmts {
		for oi, op := range s.Ops {
			if op.Kind != OpPhi {
				continue
			}
			if si != 0 || oi >= len(b.Phis()) {
				return fmt.Errorf("ir: phi %d in block %d appears outside the entry run", op.ID, b.ID)
			}
			if len(op.Phi.Entries) != len(b.Preds) {
				return fmt.Errorf("ir: phi %d in block %d has %d entries, want %d (one per predecessor)",
					op.ID, b.ID, len(op.Phi.Entries), len(b.Preds))
			}
			predSet := make(map[BlockID]bool, len(b.Preds))
			for _, p := range b.Preds {
				predSet[p] = true
			}
			for _, e := range op.Phi.Entries {
				if !predSet[e.Pred] {
					return fmt.Errorf("ir: phi %d in block %d has entry for non-predecessor block %d", op.ID, b.ID, e.Pred)
				}
			}
		}
	}
	return nil
}

// validateDefUse checks that every operand of every op in b was already
// defined along the path, except for phi entries which reference values
// live at the end of their named predecessor and are checked separately
// by validateBlockShape.
func validateDefUse(b *Block, defined map[OpID]bool) error {
	for _, s := range b.Stmts {
		for _, op := range s.Ops {
			for _, use := range operandsOf(op) {
				if use == NoOpID {
					continue
				}
				if op.Kind == OpPhi {
					continue // phi operands are checked structurally, not by dominance
				}
				if !defined[use] {
					return fmt.Errorf("ir: op %d (%s) in block %d uses undefined op %d", op.ID, op.Kind, b.ID, use)
				}
			}
			defined[op.ID] = true
		}
	}
	return nil
}

// operandsOf returns the operand OpIDs of op's payload, used by both the
// validator and CFG use-walker.
func operandsOf(op *Op) []OpID {
	switch op.Kind {
	case OpAddrOffset:
		return []OpID{op.AddrOffset.Base, op.AddrOffset.Index}
	case OpLoad:
		if op.Load.Base == AddrBaseOp {
			return []OpID{op.Load.Addr}
		}
	case OpStore:
		ops := []OpID{op.Store.Value}
		if op.Store.Base == AddrBaseOp {
			ops = append(ops, op.Store.Addr)
		}
		return ops
	case OpBitfieldLoad:
		return []OpID{op.Bitfield.Addr}
	case OpBitfieldStore:
		return []OpID{op.Bitfield.Addr, op.Bitfield.Value}
	case OpUnary:
		return []OpID{op.Unary.X}
	case OpBinary:
		return []OpID{op.Binary.X, op.Binary.Y}
	case OpCast:
		return []OpID{op.Cast.X}
	case OpCall:
		ops := append([]OpID{op.Call.Target}, op.Call.Args...)
		return ops
	case OpCondBranch:
		return []OpID{op.CondBranch.Cond}
	case OpSwitch:
		return []OpID{op.Switch.Value}
	case OpMemSet:
		return []OpID{op.Mem.Dst, op.Mem.FillByte, op.Mem.Len}
	case OpMemCopy, OpMemMove, OpMemCmp:
		return []OpID{op.Mem.Dst, op.Mem.Src, op.Mem.Len}
	case OpVaArg:
		return []OpID{op.VaArg.ListAddr}
	case OpRet:
		if op.Ret.HasValue {
			return []OpID{op.Ret.Value}
		}
	}
	return nil
}

// ForEachUse visits every operand OpID of op exactly once.
func ForEachUse(op *Op, visit func(OpID)) {
	for _, id := range operandsOf(op) {
		if id != NoOpID {
			visit(id)
		}
	}
	if op.Kind == OpPhi {
		for _, e := range op.Phi.Entries {
			if e.Value != NoOpID {
				visit(e.Value)
			}
		}
	}
}
