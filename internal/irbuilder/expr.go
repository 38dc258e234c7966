package irbuilder

import (
	"c11c/internal/ast"
	"c11c/internal/ir"
	"c11c/internal/varref"
)

// lowerExpr lowers e to a single SSA value holding its r-value.
func (bd *Builder) lowerExpr(e *ast.Expr) *ir.Op {
	if e == nil {
		return nil
	}
	switch e.Kind {
	case ast.ExprIntLit:
		op := bd.fn.NewOp(ir.OpConstInt, e.ResultType)
		op.Const.Int = e.IntVal
		bd.emit(op)
		return op
	case ast.ExprFloatLit:
		op := bd.fn.NewOp(ir.OpConstFloat, e.ResultType)
		op.Const.Float = e.FloatVal
		bd.emit(op)
		return op
	case ast.ExprStringLit:
		return bd.lowerStringLit(e)
	case ast.ExprIdent:
		return bd.lowerIdent(e)
	case ast.ExprUnary:
		return bd.lowerUnary(e)
	case ast.ExprBinary:
		return bd.lowerBinary(e)
	case ast.ExprAssign:
		return bd.lowerAssign(e)
	case ast.ExprCompoundAssign:
		return bd.lowerCompoundAssign(e)
	case ast.ExprTernary:
		return bd.lowerTernary(e)
	case ast.ExprCall:
		return bd.lowerCall(e)
	case ast.ExprMember:
		return bd.load(bd.lowerMemberAddr(e), e)
	case ast.ExprIndex:
		return bd.load(bd.lowerIndexAddr(e), e)
	case ast.ExprCast:
		x := bd.lowerExpr(e.X)
		return bd.coerce(x, e.CastType)
	case ast.ExprCompoundLiteral:
		return bd.lowerCompoundLiteral(e)
	case ast.ExprComma:
		bd.lowerExpr(e.L)
		return bd.lowerExpr(e.R)
	case ast.ExprIncDec:
		return bd.lowerIncDec(e)
	default:
		bd.reportInternal(nil, "unhandled expression kind %d", e.Kind)
		undef := bd.fn.NewOp(ir.OpUndef, e.ResultType)
		bd.emit(undef)
		return undef
	}
}

func (bd *Builder) emit(op *ir.Op) {
	bd.cur.NewStmt().Append(op)
	bd.opByID[op.ID] = op
}

func (bd *Builder) lowerStringLit(e *ast.Expr) *ir.Op {
	g := bd.internString(e.StringVal, e.ResultType)
	op := bd.fn.NewOp(ir.OpAddrOf, bd.pointerType())
	op.AddrOf = ir.AddrOf{Base: ir.AddrBaseGlobal, Global: g}
	bd.emit(op)
	return op
}

func (bd *Builder) lowerIdent(e *ast.Expr) *ir.Op {
	v := bd.vars.Resolve(e.Ident, e.Scope)
	if v == varref.NoVarID {
		if op := bd.lowerGlobalIdent(e); op != nil {
			return op
		}
		bd.reportInternal(nil, "unresolved identifier %q", e.Ident)
		undef := bd.fn.NewOp(ir.OpUndef, e.ResultType)
		bd.emit(undef)
		return undef
	}
	if local, ok := bd.vars.IsPromoted(v); ok {
		op := bd.fn.NewOp(ir.OpLoad, e.ResultType)
		op.Load = ir.Load{Base: ir.AddrBaseLocal, Local: local}
		bd.emit(op)
		return op
	}
	valID := bd.vars.ReadVariable(v, bd.cur.ID)
	return bd.findOp(valID)
}

// lowerGlobalIdent resolves e against the unit's global table when it
// isn't a local variable at all — a reference to another function, or to
// a file-scope variable this function never promoted to a local (e.g. an
// `extern` declaration). Each function builds its own fresh varref.Table
// , so file-scope names are never in that table to begin with; the
// unit's global table is the only place they live. Returns nil if name
// isn't a global either, leaving the caller to report the real error.
func (bd *Builder) lowerGlobalIdent(e *ast.Expr) *ir.Op {
	g, ok := bd.unit.LookupGlobal(e.Ident)
	if !ok {
		return nil
	}
	if g.Kind == ir.GlobalFunc {
		op := bd.fn.NewOp(ir.OpAddrOf, bd.pointerType())
		op.AddrOf = ir.AddrOf{Base: ir.AddrBaseGlobal, Global: g.ID}
		bd.emit(op)
		return op
	}
	op := bd.fn.NewOp(ir.OpLoad, e.ResultType)
	op.Load = ir.Load{Base: ir.AddrBaseGlobal, Global: g.ID}
	bd.emit(op)
	return op
}

// findOp resolves an OpID minted earlier in this function back to its
// *ir.Op. The common case is served by opByID, populated as every op
// passes through emit; phi nodes are inserted directly via ir.InsertPhi
// (by varref and the ternary/short-circuit lowerings) and so fall back to
// a one-time scan, cached for next time.
func (bd *Builder) findOp(id ir.OpID) *ir.Op {
	if op, ok := bd.opByID[id]; ok {
		return op
	}
	var found *ir.Op
	bd.fn.ForEachOp(func(op *ir.Op) {
		if op.ID == id {
			found = op
		}
	})
	if found != nil {
		bd.opByID[id] = found
	}
	return found
}
