package interp

import "c11c/internal/ir"

// execCast reinterprets op.Cast.X's bit pattern per the cast kind the
// builder's selection rules already chose; the interpreter only needs
// to carry out the conversion, not pick it.
func (m *machine) execCast(fr *frame, op *ir.Op) (Value, error) {
	x := fr.regs[op.Cast.X]
	srcType := m.typeOf(fr.fn, op.Cast.X)
	srcWidth := m.widthOf(srcType)
	dstWidth := m.widthOf(op.Type)

	switch op.Cast.Kind {
	case ir.CastTrunc, ir.CastZExt, ir.CastBitcast:
		return Value{I: maskUnsigned(x.I, dstWidth)}, nil
	case ir.CastSExt:
		return Value{I: maskUnsigned(uint64(signExtend(x.I, srcWidth)), dstWidth)}, nil
	case ir.CastFloatConv:
		if dstWidth == 4 {
			return floatValue(float64(float32(x.F))), nil
		}
		return floatValue(x.F), nil
	case ir.CastSIToFP:
		return floatValue(float64(signExtend(x.I, srcWidth))), nil
	case ir.CastUIToFP:
		return floatValue(float64(maskUnsigned(x.I, srcWidth))), nil
	case ir.CastFPToSI:
		return Value{I: maskUnsigned(uint64(int64(x.F)), dstWidth)}, nil
	case ir.CastFPToUI:
		return Value{I: maskUnsigned(uint64(x.F), dstWidth)}, nil
	case ir.CastCompareNotZero:
		if m.isFloatType(srcType) {
			return boolValue(x.F != 0), nil
		}
		return boolValue(maskUnsigned(x.I, srcWidth) != 0), nil
	default:
		return Value{}, trap(fr.fn.Name, TrapUnsupportedOp, "unknown cast kind %d", op.Cast.Kind)
	}
}
