package interp

// Value is one SSA op's result: either the integer/pointer bit pattern in
// I (addresses are plain integers into the machine's flat memory) or the
// float payload in F, selected by the op's own types.TypeID rather than by
// a tag on Value itself. An Op's Type is the only place width and
// floatness are recorded.
type Value struct {
	I uint64
	F float64
}

func intValue(v int64) Value { return Value{I: uint64(v)} }

func floatValue(v float64) Value { return Value{F: v} }

func (v Value) asInt() int64 { return int64(v.I) }

func (v Value) truthy(isFloat bool) bool {
	if isFloat {
		return v.F != 0
	}
	return v.I != 0
}
