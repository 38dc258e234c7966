package ir

import "c11c/internal/types"

// InsertPhi places a phi at the block's head so phis stay a leading
// run. Its entries are left empty for the phi back-patcher to fill.
func InsertPhi(b *Block, t types.TypeID) *Op {
	op := b.Func.NewOp(OpPhi, t)
	if len(b.Stmts) == 0 {
		b.NewStmt()
	}
	head := b.Stmts[0]
	op.Stmt = head
	head.Ops = append(head.Ops, nil)
	copy(head.Ops[1:], head.Ops)
	head.Ops[0] = op
	return op
}

// MakeBranch terminates b with an unconditional jump to target, wiring the
// CFG edge atomically.
func MakeBranch(b *Block, target *Block) *Op {
	op := b.Func.NewOp(OpBranch, types.NoTypeID)
	op.Branch = Branch{Target: target.ID}
	b.NewStmt().Append(op)
	b.addSucc(target)
	return op
}

// MakeCondBranch terminates b with a two-way conditional branch.
func MakeCondBranch(b *Block, cond *Op, then, els *Block) *Op {
	op := b.Func.NewOp(OpCondBranch, types.NoTypeID)
	op.CondBranch = CondBranch{Cond: cond.ID, Then: then.ID, Else: els.ID}
	b.NewStmt().Append(op)
	b.addSucc(then)
	b.addSucc(els)
	return op
}

// MakeSwitch terminates b with a multi-way switch over value.
func MakeSwitch(b *Block, value *Op, cases []SwitchCase, def *Block) *Op {
	op := b.Func.NewOp(OpSwitch, types.NoTypeID)
	op.Switch = Switch{Value: value.ID, Cases: append([]SwitchCase(nil), cases...), Default: def.ID}
	b.NewStmt().Append(op)
	seen := make(map[BlockID]bool)
	for _, c := range cases {
		if !seen[c.Target] {
			seen[c.Target] = true
			if target := b.Func.Block(c.Target); target != nil {
				b.addSucc(target)
			}
		}
	}
	if !seen[def.ID] {
		b.addSucc(def)
	}
	return op
}

// MakeRet terminates b with a return, with or without a value.
func MakeRet(b *Block, value *Op) *Op {
	op := b.Func.NewOp(OpRet, types.NoTypeID)
	if value != nil {
		op.Ret = Ret{HasValue: true, Value: value.ID}
	}
	b.NewStmt().Append(op)
	return op
}
