package irbuilder

import (
	"c11c/internal/ast"
	"c11c/internal/ir"
	"c11c/internal/types"
	"c11c/internal/varref"
)

// lvalue computes the address of an expression that denotes storage
// (identifier, member access, index, dereference). Every caller that
// needs to read or write through an lvalue goes through here so address
// computation is expressed exactly once.
func (bd *Builder) lvalue(e *ast.Expr) *ir.Op {
	switch e.Kind {
	case ast.ExprIdent:
		return bd.identAddr(e)
	case ast.ExprUnary:
		if e.UnaryOp == ast.UnaryDeref {
			return bd.lowerExpr(e.X)
		}
	case ast.ExprMember:
		return bd.lowerMemberAddr(e)
	case ast.ExprIndex:
		return bd.lowerIndexAddr(e)
	}
	bd.reportInternal(nil, "expression kind %d is not an lvalue", e.Kind)
	undef := bd.fn.NewOp(ir.OpUndef, bd.pointerType())
	bd.emit(undef)
	return undef
}

func (bd *Builder) identAddr(e *ast.Expr) *ir.Op {
	v := bd.vars.Resolve(e.Ident, e.Scope)
	if v == varref.NoVarID {
		if g, ok := bd.unit.LookupGlobal(e.Ident); ok {
			op := bd.fn.NewOp(ir.OpAddrOf, bd.pointerType())
			op.AddrOf = ir.AddrOf{Base: ir.AddrBaseGlobal, Global: g.ID}
			bd.emit(op)
			return op
		}
		bd.reportInternal(nil, "taking the address of unresolved identifier %q", e.Ident)
		undef := bd.fn.NewOp(ir.OpUndef, bd.pointerType())
		bd.emit(undef)
		return undef
	}
	local, ok := bd.vars.IsPromoted(v)
	if !ok {
		local = bd.promoteToLocal(v, e.Ident)
	}
	op := bd.fn.NewOp(ir.OpAddrOf, bd.pointerType())
	op.AddrOf = ir.AddrOf{Base: ir.AddrBaseLocal, Local: local}
	bd.emit(op)
	return op
}

// promoteToLocal spills an SSA-only variable into a fresh stack slot the
// first time its address is needed: the current SSA value is stored into
// the slot and the variable-reference entry is rewritten, so every later
// read and write of the variable goes through memory instead.
func (bd *Builder) promoteToLocal(v varref.VarID, name string) ir.LocalID {
	cur := bd.vars.ReadVariable(v, bd.cur.ID)
	local := bd.fn.NewLocal(bd.vars.DeclaredType(v), ir.LocalFlagAddressTaken, name)
	bd.vars.Promote(v, local.ID)
	st := bd.fn.NewOp(ir.OpStore, types.NoTypeID)
	st.Store = ir.Store{Base: ir.AddrBaseLocal, Local: local.ID, Value: cur}
	bd.emit(st)
	return local.ID
}

func (bd *Builder) lowerMemberAddr(e *ast.Expr) *ir.Op {
	var base *ir.Op
	var aggType types.TypeID
	if e.Arrow {
		base = bd.lowerExpr(e.Object)
		ptrTy, _ := bd.tin.Lookup(e.Object.ResultType)
		aggType = ptrTy.Elem
	} else {
		base = bd.lvalue(e.Object)
		aggType = e.Object.ResultType
	}
	disp := bd.fieldOffset(aggType, e.FieldIdx)
	off := bd.fn.NewOp(ir.OpAddrOffset, bd.pointerType())
	off.AddrOffset = ir.AddrOffset{Base: base.ID, Index: ir.NoOpID, Scale: 1, Disp: disp, ElemType: e.ResultType}
	bd.emit(off)
	return off
}

// fieldOffset looks up the byte offset of field index idx within the
// struct/union type t, the same aggregate layout the initializer
// flattener reads.
func (bd *Builder) fieldOffset(t types.TypeID, idx int) int64 {
	ty, ok := bd.tin.Lookup(t)
	if !ok || idx < 0 || idx >= len(ty.Fields) {
		bd.reportInternal(nil, "member index %d out of range for aggregate", idx)
		return 0
	}
	return int64(ty.Fields[idx].Offset)
}

func (bd *Builder) lowerIndexAddr(e *ast.Expr) *ir.Op {
	base := bd.lowerExpr(e.Object)
	idx := bd.lowerExpr(e.Index)
	elemTy := e.ResultType
	elemSize := int64(bd.tin.SizeOf(elemTy, bd.target.PtrSize))
	off := bd.fn.NewOp(ir.OpAddrOffset, bd.pointerType())
	off.AddrOffset = ir.AddrOffset{Base: base.ID, Index: idx.ID, Scale: elemSize, ElemType: elemTy}
	bd.emit(off)
	return off
}

// load emits a read through addr, choosing the bitfield form when e
// denotes a bitfield member.
func (bd *Builder) load(addr *ir.Op, e *ast.Expr) *ir.Op {
	if e.Kind == ast.ExprMember && e.Bitfield {
		op := bd.fn.NewOp(ir.OpBitfieldLoad, e.ResultType)
		op.Bitfield = ir.Bitfield{Addr: addr.ID, Width: e.BitWidth, BitOffset: e.BitOffset}
		bd.emit(op)
		return op
	}
	op := bd.fn.NewOp(ir.OpLoad, e.ResultType)
	op.Load = ir.Load{Base: ir.AddrBaseOp, Addr: addr.ID}
	bd.emit(op)
	return op
}

func (bd *Builder) store(addr *ir.Op, e *ast.Expr, value *ir.Op) {
	if e.Kind == ast.ExprMember && e.Bitfield {
		op := bd.fn.NewOp(ir.OpBitfieldStore, types.NoTypeID)
		op.Bitfield = ir.Bitfield{Addr: addr.ID, Width: e.BitWidth, BitOffset: e.BitOffset, Value: value.ID}
		bd.emit(op)
		return
	}
	op := bd.fn.NewOp(ir.OpStore, types.NoTypeID)
	op.Store = ir.Store{Base: ir.AddrBaseOp, Addr: addr.ID, Value: value.ID}
	bd.emit(op)
}
