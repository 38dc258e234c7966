package irbuilder

import (
	"c11c/internal/ir"
	"c11c/internal/types"
)

// coerce emits whatever cast (if any) is needed to bring val to type
// to. A no-op when the types already
// match (Interner equality is structural, so this also collapses
// differently-spelled-but-identical struct/union types).
func (bd *Builder) coerce(val *ir.Op, to types.TypeID) *ir.Op {
	return bd.coerceSigned(val, to, false)
}

// coerceSigned is coerce with an explicit source-signedness override for
// widening integer casts, since the IR's integer types carry no sign of
// their own.
func (bd *Builder) coerceSigned(val *ir.Op, to types.TypeID, sourceUnsigned bool) *ir.Op {
	if val == nil || val.Type == to {
		return val
	}
	kind, ok := bd.selectCast(val.Type, to, sourceUnsigned)
	if !ok {
		return val
	}
	op := bd.fn.NewOp(ir.OpCast, to)
	op.Cast = ir.Cast{Kind: kind, X: val.ID}
	bd.emit(op)
	return op
}

// selectCast picks the runtime cast form for from->to.
func (bd *Builder) selectCast(from, to types.TypeID, sourceUnsigned bool) (ir.CastKind, bool) {
	fromTy, fromOK := bd.tin.Lookup(from)
	toTy, toOK := bd.tin.Lookup(to)
	if !fromOK || !toOK {
		return 0, false
	}

	switch {
	case fromTy.Kind == types.KindPrimitive && toTy.Kind == types.KindPrimitive:
		return bd.selectPrimCast(fromTy.Prim, toTy.Prim, sourceUnsigned)
	case (fromTy.Kind == types.KindPointer || fromTy.Kind == types.KindArray) &&
		(toTy.Kind == types.KindPointer || toTy.Kind == types.KindArray):
		return ir.CastBitcast, true
	case fromTy.Kind == types.KindArray && toTy.Kind == types.KindPointer:
		// Array-to-pointer decay: the value
		// is already the array's base address once addressed, so this is
		// a reinterpretation, not a new computation.
		return ir.CastBitcast, true
	case (fromTy.Kind == types.KindPointer) && toTy.Kind == types.KindPrimitive && toTy.Prim.IsInt():
		if toTy.Prim == types.PrimI1 {
			return ir.CastCompareNotZero, true
		}
		return ir.CastBitcast, true
	case fromTy.Kind == types.KindPrimitive && fromTy.Prim.IsInt() && toTy.Kind == types.KindPointer:
		return ir.CastBitcast, true
	default:
		return 0, false
	}
}

func (bd *Builder) selectPrimCast(from, to types.Prim, sourceUnsigned bool) (ir.CastKind, bool) {
	fromBits, toBits := primBits(from), primBits(to)
	switch {
	case to == types.PrimI1:
		// Any conversion into _Bool is compare-not-zero, never a
		// truncation: (_Bool)2 is 1, not 0.
		if from == types.PrimI1 {
			return ir.CastBitcast, true
		}
		return ir.CastCompareNotZero, true
	case from.IsInt() && to.IsInt():
		switch {
		case toBits < fromBits:
			return ir.CastTrunc, true
		case toBits > fromBits:
			if sourceUnsigned {
				return ir.CastZExt, true
			}
			return ir.CastSExt, true
		default:
			return ir.CastBitcast, true
		}
	case from.IsInt() && to.IsFloat():
		if sourceUnsigned {
			return ir.CastUIToFP, true
		}
		return ir.CastSIToFP, true
	case from.IsFloat() && to.IsInt():
		if sourceUnsigned {
			return ir.CastFPToUI, true
		}
		return ir.CastFPToSI, true
	case from.IsFloat() && to.IsFloat():
		return ir.CastFloatConv, true
	default:
		return ir.CastBitcast, true
	}
}

// primBits returns the bit width of a primitive, used only to order
// widening vs. narrowing integer casts.
func primBits(p types.Prim) int {
	switch p {
	case types.PrimI1:
		return 1
	case types.PrimI8:
		return 8
	case types.PrimI16:
		return 16
	case types.PrimI32:
		return 32
	case types.PrimI64:
		return 64
	case types.PrimI128:
		return 128
	case types.PrimF16:
		return 16
	case types.PrimF32:
		return 32
	case types.PrimF64:
		return 64
	default:
		return 0
	}
}

// toBool emits the canonical i1 compare-not-zero form of a scalar
// value, used by every branching construct.
func (bd *Builder) toBool(val *ir.Op) *ir.Op {
	boolTy := bd.tin.Builtins().Bool
	if val.Type == boolTy {
		return val
	}
	ty, _ := bd.tin.Lookup(val.Type)
	if ty.Kind == types.KindPrimitive && ty.Prim == types.PrimI1 {
		return val
	}
	op := bd.fn.NewOp(ir.OpCast, boolTy)
	op.Cast = ir.Cast{Kind: ir.CastCompareNotZero, X: val.ID}
	bd.emit(op)
	return op
}
