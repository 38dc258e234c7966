package irbuilder

import (
	"c11c/internal/ast"
	"c11c/internal/intrinsics"
	"c11c/internal/ir"
	"c11c/internal/types"
)

// lowerIntrinsic dispatches a recognized builtin call to its IR form
// instead of an ordinary OpCall.
func (bd *Builder) lowerIntrinsic(e *ast.Expr, d intrinsics.Descriptor) *ir.Op {
	switch d.Form {
	case intrinsics.FormUnary:
		x := bd.lowerExpr(e.Args[0])
		op := bd.fn.NewOp(ir.OpUnary, e.ResultType)
		op.Unary = ir.Unary{Kind: d.Unary, X: x.ID}
		bd.emit(op)
		return op
	case intrinsics.FormMem:
		return bd.lowerMemIntrinsic(e, d)
	case intrinsics.FormVarArgs:
		return bd.lowerVarArgsIntrinsic(e, d)
	case intrinsics.FormUnreachable:
		undef := bd.fn.NewOp(ir.OpUndef, bd.tin.Builtins().Void)
		bd.emit(undef)
		// __builtin_unreachable asserts control never reaches here; the
		// block still needs a terminator, so it is closed with a plain
		// value-less return rather than left open.
		ir.MakeRet(bd.cur, nil)
		return undef
	default:
		bd.reportInternal(nil, "unhandled intrinsic form %d for %q", d.Form, e.Callee.Ident)
		undef := bd.fn.NewOp(ir.OpUndef, e.ResultType)
		bd.emit(undef)
		return undef
	}
}

func (bd *Builder) lowerMemIntrinsic(e *ast.Expr, d intrinsics.Descriptor) *ir.Op {
	dst := bd.lowerExpr(e.Args[0])
	var kind ir.OpKind
	var mem ir.Mem
	switch d.Mem {
	case intrinsics.MemSet:
		fill := bd.lowerExpr(e.Args[1])
		length := bd.lowerExpr(e.Args[2])
		kind = ir.OpMemSet
		mem = ir.Mem{Dst: dst.ID, FillByte: fill.ID, Len: length.ID}
	case intrinsics.MemCpy:
		src := bd.lowerExpr(e.Args[1])
		length := bd.lowerExpr(e.Args[2])
		kind = ir.OpMemCopy
		mem = ir.Mem{Dst: dst.ID, Src: src.ID, Len: length.ID}
	case intrinsics.MemMove:
		src := bd.lowerExpr(e.Args[1])
		length := bd.lowerExpr(e.Args[2])
		kind = ir.OpMemMove
		mem = ir.Mem{Dst: dst.ID, Src: src.ID, Len: length.ID}
	case intrinsics.MemCmp:
		src := bd.lowerExpr(e.Args[1])
		length := bd.lowerExpr(e.Args[2])
		kind = ir.OpMemCmp
		mem = ir.Mem{Dst: dst.ID, Src: src.ID, Len: length.ID}
	}
	op := bd.fn.NewOp(kind, e.ResultType)
	op.Mem = mem
	bd.emit(op)
	return op
}

func (bd *Builder) lowerVarArgsIntrinsic(e *ast.Expr, d intrinsics.Descriptor) *ir.Op {
	switch d.VarArgs {
	case intrinsics.VaStart:
		listAddr := bd.lvalue(e.Args[0])
		op := bd.fn.NewOp(ir.OpVaStart, types.NoTypeID)
		op.VaArg = ir.VaArg{ListAddr: listAddr.ID}
		bd.emit(op)
		return op
	case intrinsics.VaArg:
		listAddr := bd.lvalue(e.Args[0])
		op := bd.fn.NewOp(ir.OpVaArg, e.ResultType)
		op.VaArg = ir.VaArg{ListAddr: listAddr.ID, Type: e.ResultType}
		bd.emit(op)
		return op
	case intrinsics.VaCopy:
		dstAddr := bd.lvalue(e.Args[0])
		srcAddr := bd.lvalue(e.Args[1])
		size := bd.fn.NewOp(ir.OpConstInt, bd.tin.Builtins().Long)
		size.Const.Int = int64(bd.target.PtrSize)
		bd.emit(size)
		op := bd.fn.NewOp(ir.OpMemCopy, types.NoTypeID)
		op.Mem = ir.Mem{Dst: dstAddr.ID, Src: srcAddr.ID, Len: size.ID}
		bd.emit(op)
		return op
	default: // VaEnd: no-op on every target this compiler supports
		undef := bd.fn.NewOp(ir.OpUndef, bd.tin.Builtins().Void)
		bd.emit(undef)
		return undef
	}
}
