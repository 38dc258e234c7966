package irbuilder

import (
	"c11c/internal/ast"
	"c11c/internal/intrinsics"
	"c11c/internal/ir"
	"c11c/internal/types"
	"c11c/internal/varref"
)

func (bd *Builder) lowerUnary(e *ast.Expr) *ir.Op {
	if e.UnaryOp == ast.UnaryAddr {
		return bd.lvalue(e.X)
	}
	if e.UnaryOp == ast.UnaryDeref {
		addr := bd.lowerExpr(e.X)
		op := bd.fn.NewOp(ir.OpLoad, e.ResultType)
		op.Load = ir.Load{Base: ir.AddrBaseOp, Addr: addr.ID}
		bd.emit(op)
		return op
	}
	x := bd.lowerExpr(e.X)
	if e.UnaryOp == ast.UnaryPlus {
		return x
	}
	kind, ok := unaryOpKind(e.UnaryOp)
	if !ok {
		bd.reportInternal(nil, "unhandled unary operator %d", e.UnaryOp)
		return x
	}
	if e.UnaryOp == ast.UnaryLogicalNot {
		x = bd.toBool(x)
	}
	op := bd.fn.NewOp(ir.OpUnary, e.ResultType)
	op.Unary = ir.Unary{Kind: kind, X: x.ID}
	bd.emit(op)
	return op
}

func unaryOpKind(op ast.UnaryOp) (ir.UnaryKind, bool) {
	switch op {
	case ast.UnaryMinus:
		return ir.UnNeg, true
	case ast.UnaryBitNot:
		return ir.UnNot, true
	case ast.UnaryLogicalNot:
		return ir.UnLNot, true
	case ast.UnaryPlus:
		return 0, false // a no-op; lowerUnary returns the operand as-is
	default:
		return 0, false
	}
}

// lowerBinary lowers short-circuiting && / || via control flow and every
// other binary operator as a single OpBinary, picking the float variant
// for a floating-point operand type and the signed integer variant
// otherwise. The unsigned variants (BinDivU, BinRemU, BinShrU, BinLtU,
// ...) are never selected: the operand's signedness is not consulted.
func (bd *Builder) lowerBinary(e *ast.Expr) *ir.Op {
	if e.BinOp == ast.BinLAnd || e.BinOp == ast.BinLOr {
		return bd.lowerShortCircuit(e)
	}
	x := bd.lowerExpr(e.L)
	y := bd.lowerExpr(e.R)
	kind := bd.selectBinaryKind(e.BinOp, e.L.ResultType)
	resultTy := e.ResultType
	if kind.IsCompare() {
		resultTy = bd.tin.Builtins().Bool
	}
	op := bd.fn.NewOp(ir.OpBinary, resultTy)
	op.Binary = ir.Binary{Kind: kind, X: x.ID, Y: y.ID}
	bd.emit(op)
	return op
}

func (bd *Builder) selectBinaryKind(op ast.BinaryOp, operandType types.TypeID) ir.BinaryKind {
	ty, _ := bd.tin.Lookup(operandType)
	isFloat := ty.Kind == types.KindPrimitive && ty.Prim.IsFloat()
	isUnsigned := false // signedness beyond float/int is tracked by the checker upstream of this boundary
	switch op {
	case ast.BinAdd:
		if isFloat {
			return ir.BinAddF
		}
		return ir.BinAddI
	case ast.BinSub:
		if isFloat {
			return ir.BinSubF
		}
		return ir.BinSubI
	case ast.BinMul:
		if isFloat {
			return ir.BinMulF
		}
		return ir.BinMulI
	case ast.BinDiv:
		if isFloat {
			return ir.BinDivF
		}
		if isUnsigned {
			return ir.BinDivU
		}
		return ir.BinDivS
	case ast.BinMod:
		if isUnsigned {
			return ir.BinRemU
		}
		return ir.BinRemS
	case ast.BinAnd:
		return ir.BinAnd
	case ast.BinOr:
		return ir.BinOr
	case ast.BinXor:
		return ir.BinXor
	case ast.BinShl:
		return ir.BinShl
	case ast.BinShr:
		if isUnsigned {
			return ir.BinShrU
		}
		return ir.BinShrS
	case ast.BinEq:
		if isFloat {
			return ir.BinEqF
		}
		return ir.BinEq
	case ast.BinNe:
		if isFloat {
			return ir.BinNeF
		}
		return ir.BinNe
	case ast.BinLt:
		if isFloat {
			return ir.BinLtF
		}
		if isUnsigned {
			return ir.BinLtU
		}
		return ir.BinLtS
	case ast.BinLe:
		if isFloat {
			return ir.BinLeF
		}
		if isUnsigned {
			return ir.BinLeU
		}
		return ir.BinLeS
	case ast.BinGt:
		if isFloat {
			return ir.BinGtF
		}
		if isUnsigned {
			return ir.BinGtU
		}
		return ir.BinGtS
	case ast.BinGe:
		if isFloat {
			return ir.BinGeF
		}
		if isUnsigned {
			return ir.BinGeU
		}
		return ir.BinGeS
	default:
		bd.reportInternal(nil, "unhandled binary operator %d", op)
		return ir.BinAddI
	}
}

// lowerShortCircuit lowers && and || as a diamond with a result phi,
// since C requires the right operand to be skipped when the left one
// already determines the result.
func (bd *Builder) lowerShortCircuit(e *ast.Expr) *ir.Op {
	lhs := bd.toBool(bd.lowerExpr(e.L))
	rhsBlock := bd.newBlock()
	joinBlock := bd.newBlock()

	shortCircuitEntry := bd.cur
	// The value seen at the join when the right operand is skipped; it
	// belongs to the branching block, ahead of its terminator.
	shortOp := bd.fn.NewOp(ir.OpConstInt, bd.tin.Builtins().Bool)
	bd.emit(shortOp)
	if e.BinOp == ast.BinLAnd {
		ir.MakeCondBranch(bd.cur, lhs, rhsBlock, joinBlock)
	} else {
		shortOp.Const.Int = 1
		ir.MakeCondBranch(bd.cur, lhs, joinBlock, rhsBlock)
	}
	bd.vars.SealBlock(rhsBlock.ID)

	bd.cur = rhsBlock
	rhs := bd.toBool(bd.lowerExpr(e.R))
	rhsEnd := bd.cur
	ir.MakeBranch(rhsEnd, joinBlock)
	bd.vars.SealBlock(joinBlock.ID)

	bd.cur = joinBlock
	phi := ir.InsertPhi(joinBlock, bd.tin.Builtins().Bool)
	phi.Phi.Entries = []ir.PhiEntry{
		{Pred: shortCircuitEntry.ID, Value: shortOp.ID},
		{Pred: rhsEnd.ID, Value: rhs.ID},
	}
	return phi
}

func (bd *Builder) lowerAssign(e *ast.Expr) *ir.Op {
	value := bd.lowerExpr(e.Value)
	value = bd.coerce(value, e.Assignee.ResultType)
	bd.assignTo(e.Assignee, value)
	return value
}

func (bd *Builder) lowerCompoundAssign(e *ast.Expr) *ir.Op {
	cur := bd.lowerExpr(e.Assignee)
	rhs := bd.lowerExpr(e.Value)
	kind := bd.selectBinaryKind(e.BinOp, e.Assignee.ResultType)
	op := bd.fn.NewOp(ir.OpBinary, e.Assignee.ResultType)
	op.Binary = ir.Binary{Kind: kind, X: cur.ID, Y: rhs.ID}
	bd.emit(op)
	bd.assignTo(e.Assignee, op)
	return op
}

// assignTo routes a store to either a promoted local's SSA slot (via
// varref.WriteVariable, no memory op at all) or an address-based store.
func (bd *Builder) assignTo(target *ast.Expr, value *ir.Op) {
	if target.Kind == ast.ExprIdent {
		v := bd.vars.Resolve(target.Ident, target.Scope)
		if v == varref.NoVarID {
			if g, ok := bd.unit.LookupGlobal(target.Ident); ok {
				op := bd.fn.NewOp(ir.OpAddrOf, bd.pointerType())
				op.AddrOf = ir.AddrOf{Base: ir.AddrBaseGlobal, Global: g.ID}
				bd.emit(op)
				bd.store(op, target, value)
				return
			}
			bd.reportInternal(nil, "assignment to unresolved identifier %q", target.Ident)
			return
		}
		if local, ok := bd.vars.IsPromoted(v); ok {
			op := bd.fn.NewOp(ir.OpStore, types.NoTypeID)
			op.Store = ir.Store{Base: ir.AddrBaseLocal, Local: local, Value: value.ID}
			bd.emit(op)
			return
		}
		bd.vars.WriteVariable(v, bd.cur.ID, value.ID)
		return
	}
	addr := bd.lvalue(target)
	bd.store(addr, target, value)
}

func (bd *Builder) lowerTernary(e *ast.Expr) *ir.Op {
	cond := bd.toBool(bd.lowerExpr(e.X))
	thenB := bd.newBlock()
	elseB := bd.newBlock()
	joinB := bd.newBlock()

	entry := bd.cur
	ir.MakeCondBranch(entry, cond, thenB, elseB)
	bd.vars.SealBlock(thenB.ID)
	bd.vars.SealBlock(elseB.ID)

	bd.cur = thenB
	var thenVal *ir.Op
	if e.TwoOperandForm {
		thenVal = cond // GNU `cond ?: else` reuses the condition's value
	} else {
		thenVal = bd.coerce(bd.lowerExpr(e.CondTrue), e.ResultType)
	}
	thenEnd := bd.cur
	ir.MakeBranch(thenEnd, joinB)

	bd.cur = elseB
	elseVal := bd.coerce(bd.lowerExpr(e.CondFalse), e.ResultType)
	elseEnd := bd.cur
	ir.MakeBranch(elseEnd, joinB)

	bd.vars.SealBlock(joinB.ID)
	bd.cur = joinB
	phi := ir.InsertPhi(joinB, e.ResultType)
	phi.Phi.Entries = []ir.PhiEntry{
		{Pred: thenEnd.ID, Value: thenVal.ID},
		{Pred: elseEnd.ID, Value: elseVal.ID},
	}
	return phi
}

func (bd *Builder) lowerCall(e *ast.Expr) *ir.Op {
	if e.Callee.Kind == ast.ExprIdent {
		if d, ok := intrinsics.Lookup(e.Callee.Ident); ok {
			return bd.lowerIntrinsic(e, d)
		}
	}
	target := bd.lowerExpr(e.Callee)
	args := make([]ir.OpID, len(e.Args))
	argTypes := make([]types.TypeID, len(e.Args))
	for i, a := range e.Args {
		v := bd.lowerExpr(a)
		args[i] = v.ID
		argTypes[i] = v.Type
	}
	op := bd.fn.NewOp(ir.OpCall, e.ResultType)
	op.Call = ir.Call{Target: target.ID, FuncType: e.Callee.ResultType, Args: args, ArgTypes: argTypes, Variadic: e.Variadic}
	bd.emit(op)
	return op
}

func (bd *Builder) lowerCompoundLiteral(e *ast.Expr) *ir.Op {
	local := bd.fn.NewLocal(e.ResultType, 0, "")
	addr := bd.fn.NewOp(ir.OpAddrOf, bd.pointerType())
	addr.AddrOf = ir.AddrOf{Base: ir.AddrBaseLocal, Local: local.ID}
	bd.emit(addr)
	bd.emitMemsetZero(local.ID, e.ResultType)
	bd.flattenLocalInit(addr, e.ResultType, e.CompoundInit)
	op := bd.fn.NewOp(ir.OpLoad, e.ResultType)
	op.Load = ir.Load{Base: ir.AddrBaseLocal, Local: local.ID}
	bd.emit(op)
	return op
}

// emitMemsetZero zeroes a memory-backed local aggregate in full before
// its explicit initializer leaves are stored, so padding and omitted
// fields are defined without gap analysis. A later pass may drop the
// memset when every byte is proven stored.
func (bd *Builder) emitMemsetZero(local ir.LocalID, t types.TypeID) {
	addr := bd.fn.NewOp(ir.OpAddrOf, bd.pointerType())
	addr.AddrOf = ir.AddrOf{Base: ir.AddrBaseLocal, Local: local}
	bd.emit(addr)
	fill := bd.fn.NewOp(ir.OpConstInt, bd.tin.Builtins().Char)
	bd.emit(fill)
	size := bd.fn.NewOp(ir.OpConstInt, bd.tin.Builtins().Long)
	size.Const.Int = int64(bd.tin.SizeOf(t, bd.target.PtrSize))
	bd.emit(size)
	op := bd.fn.NewOp(ir.OpMemSet, types.NoTypeID)
	op.Mem = ir.Mem{Dst: addr.ID, FillByte: fill.ID, Len: size.ID}
	bd.emit(op)
}

func (bd *Builder) lowerIncDec(e *ast.Expr) *ir.Op {
	old := bd.lowerExpr(e.X)
	one := bd.fn.NewOp(ir.OpConstInt, e.ResultType)
	one.Const.Int = 1
	bd.emit(one)
	kind := ir.BinAddI
	if !e.IncDecIsInc {
		kind = ir.BinSubI
	}
	ty, _ := bd.tin.Lookup(e.ResultType)
	if ty.Kind == types.KindPrimitive && ty.Prim.IsFloat() {
		if e.IncDecIsInc {
			kind = ir.BinAddF
		} else {
			kind = ir.BinSubF
		}
	}
	updated := bd.fn.NewOp(ir.OpBinary, e.ResultType)
	updated.Binary = ir.Binary{Kind: kind, X: old.ID, Y: one.ID}
	bd.emit(updated)
	bd.assignTo(e.X, updated)
	if e.IncDecPost {
		return old
	}
	return updated
}
