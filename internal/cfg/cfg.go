// Package cfg implements control-flow-graph maintenance utilities:
// dead-block pruning and phi simplification. Edge wiring itself
// lives on ir.Block/ir.Function (the mutators that must stay atomic with
// terminator construction); this package is the "after the fact" cleanup
// the builder runs once a function body is complete.
package cfg

import "c11c/internal/ir"

// Prune removes blocks whose statement/op list is empty and which have no
// incoming edges by setting their Detached bit rather than physically
// deleting them from the function's block slice.
func Prune(f *ir.Function) {
	changed := true
	for changed {
		changed = false
		for _, b := range f.Blocks {
			if b.Detached {
				continue
			}
			if len(b.Preds) > 0 || b.ID == f.Entry {
				continue
			}
			if !isEmpty(b) {
				continue
			}
			detach(f, b)
			changed = true
		}
	}
}

func isEmpty(b *ir.Block) bool {
	for _, s := range b.Stmts {
		if len(s.Ops) > 0 {
			return false
		}
	}
	return true
}

func detach(f *ir.Function, b *ir.Block) {
	b.Detached = true
	for _, succID := range b.Succs {
		if succ := f.Block(succID); succ != nil {
			succ.Preds = removeBlockID(succ.Preds, b.ID)
		}
	}
	b.Succs = nil
}

func removeBlockID(ids []ir.BlockID, target ir.BlockID) []ir.BlockID {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

// SimplifyPhis finds phis whose entries all resolve to a single
// non-self value and replaces every use of such a phi with that value.
// The phi op itself is left in its block; it is not removed.
func SimplifyPhis(f *ir.Function) {
	replacement := make(map[ir.OpID]ir.OpID)
	changed := true
	for changed {
		changed = false
		for _, b := range f.Blocks {
			if b.Detached {
				continue
			}
			for _, phi := range b.Phis() {
				if _, done := replacement[phi.ID]; done {
					continue
				}
				if same, ok := singleValue(phi, replacement); ok {
					replacement[phi.ID] = same
					changed = true
				}
			}
		}
	}
	if len(replacement) == 0 {
		return
	}
	resolve := func(id ir.OpID) ir.OpID {
		for {
			r, ok := replacement[id]
			if !ok {
				return id
			}
			id = r
		}
	}
	f.ForEachOp(func(op *ir.Op) {
		rewriteOperands(op, resolve)
	})
}

// singleValue reports whether every entry of phi resolves (transitively,
// through other simplified phis) to the same op other than phi itself.
func singleValue(phi *ir.Op, replacement map[ir.OpID]ir.OpID) (ir.OpID, bool) {
	var uniq ir.OpID = ir.NoOpID
	for _, e := range phi.Phi.Entries {
		v := e.Value
		if r, ok := replacement[v]; ok {
			v = r
		}
		if v == phi.ID {
			continue // self-reference, ignore per "non-self value"
		}
		if uniq == ir.NoOpID {
			uniq = v
		} else if uniq != v {
			return ir.NoOpID, false
		}
	}
	if uniq == ir.NoOpID {
		return ir.NoOpID, false
	}
	return uniq, true
}

func rewriteOperands(op *ir.Op, resolve func(ir.OpID) ir.OpID) {
	switch op.Kind {
	case ir.OpBinary:
		op.Binary.X, op.Binary.Y = resolve(op.Binary.X), resolve(op.Binary.Y)
	case ir.OpUnary:
		op.Unary.X = resolve(op.Unary.X)
	case ir.OpCast:
		op.Cast.X = resolve(op.Cast.X)
	case ir.OpAddrOffset:
		op.AddrOffset.Base = resolve(op.AddrOffset.Base)
		if op.AddrOffset.Index != ir.NoOpID {
			op.AddrOffset.Index = resolve(op.AddrOffset.Index)
		}
	case ir.OpStore:
		op.Store.Value = resolve(op.Store.Value)
		if op.Store.Base == ir.AddrBaseOp {
			op.Store.Addr = resolve(op.Store.Addr)
		}
	case ir.OpLoad:
		if op.Load.Base == ir.AddrBaseOp {
			op.Load.Addr = resolve(op.Load.Addr)
		}
	case ir.OpCondBranch:
		op.CondBranch.Cond = resolve(op.CondBranch.Cond)
	case ir.OpSwitch:
		op.Switch.Value = resolve(op.Switch.Value)
	case ir.OpCall:
		op.Call.Target = resolve(op.Call.Target)
		for i, a := range op.Call.Args {
			op.Call.Args[i] = resolve(a)
		}
	case ir.OpRet:
		if op.Ret.HasValue {
			op.Ret.Value = resolve(op.Ret.Value)
		}
	case ir.OpPhi:
		for i, e := range op.Phi.Entries {
			op.Phi.Entries[i].Value = resolve(e.Value)
		}
	}
}
