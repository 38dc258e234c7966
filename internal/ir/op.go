package ir

import "c11c/internal/types"

// OpKind is the closed ~25-variant tag of an Op's payload.
type OpKind uint8

const (
	OpInvalid OpKind = iota

	OpConstInt
	OpConstFloat
	OpConstZero

	OpAddrOf     // address-of a local or global
	OpAddrOffset // base + index*scale + disp

	OpLoad
	OpStore
	OpBitfieldLoad
	OpBitfieldStore

	OpUnary
	OpBinary
	OpCast

	OpCall

	OpBranch
	OpCondBranch
	OpSwitch

	OpPhi
	OpMov // parameter materialisation

	OpMemSet
	OpMemCopy
	OpMemMove
	OpMemCmp

	OpVaStart
	OpVaArg

	OpRet
	OpUndef
)

func (k OpKind) String() string {
	names := [...]string{
		"invalid", "const.int", "const.float", "const.zero",
		"addr.of", "addr.offset",
		"load", "store", "bf.load", "bf.store",
		"unary", "binary", "cast",
		"call",
		"br", "br.cond", "br.switch",
		"phi", "mov",
		"memset", "memcpy", "memmove", "memcmp",
		"va.start", "va.arg",
		"ret", "undef",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "OpKind(?)"
}

// IsTerminator reports whether k closes a basic block.
func (k OpKind) IsTerminator() bool {
	switch k {
	case OpRet, OpBranch, OpCondBranch, OpSwitch:
		return true
	default:
		return false
	}
}

// OpFlags records per-op bits (spilled, variadic-arg, param, ...).
type OpFlags uint16

const (
	OpFlagSpilled OpFlags = 1 << iota
	OpFlagVariadicArg
	OpFlagParam
)

// AddrBase distinguishes what AddrOf/AddrOffset ultimately root at.
type AddrBase uint8

const (
	AddrBaseLocal AddrBase = iota
	AddrBaseGlobal
	AddrBaseOp // an existing pointer-valued op (e.g. chained offsets)
)

// UnaryKind enumerates unary operators.
type UnaryKind uint8

const (
	UnNeg  UnaryKind = iota
	UnNot            // bitwise not
	UnLNot           // logical not, canonicalised to i1
	UnFAbs
	UnFSqrt
	UnPopcount
	UnClz
	UnCtz
	UnByteReverse
)

// BinaryKind enumerates binary operators; integer variants are split
// signed/unsigned and float variants are distinct opcodes.
type BinaryKind uint8

const (
	BinAddI BinaryKind = iota
	BinSubI
	BinMulI
	BinDivS
	BinDivU
	BinRemS
	BinRemU
	BinAnd
	BinOr
	BinXor
	BinShl
	BinShrS
	BinShrU
	BinEq
	BinNe
	BinLtS
	BinLeS
	BinGtS
	BinGeS
	BinLtU
	BinLeU
	BinGtU
	BinGeU

	BinAddF
	BinSubF
	BinMulF
	BinDivF
	BinEqF
	BinNeF
	BinLtF
	BinLeF
	BinGtF
	BinGeF
)

// IsCompare reports whether k produces a boolean (i1) result.
func (k BinaryKind) IsCompare() bool {
	switch k {
	case BinEq, BinNe, BinLtS, BinLeS, BinGtS, BinGeS, BinLtU, BinLeU, BinGtU, BinGeU,
		BinEqF, BinNeF, BinLtF, BinLeF, BinGtF, BinGeF:
		return true
	default:
		return false
	}
}

// CastKind enumerates the run-time cast forms.
type CastKind uint8

const (
	CastTrunc CastKind = iota
	CastSExt
	CastZExt
	CastFloatConv
	CastSIToFP
	CastUIToFP
	CastFPToSI
	CastFPToUI
	CastCompareNotZero // "->i1"
	CastBitcast        // no-op reinterpretation (pointer<->pointer, etc.)
)

// Const holds the payload of OpConstInt / OpConstFloat.
type Const struct {
	Int   int64
	Float float64
}

// AddrOf describes the payload of OpAddrOf.
type AddrOf struct {
	Base   AddrBase
	Local  LocalID
	Global GlobalID
}

// AddrOffset describes base + index*scale + disp.
type AddrOffset struct {
	Base     OpID // the pointer-valued op being offset
	Index    OpID // NoOpID if there is no dynamic index
	Scale    int64
	Disp     int64
	ElemType types.TypeID // the element type the scale/offset are sized in
}

// Load describes OpLoad's three addressing modes.
type Load struct {
	Base   AddrBase
	Local  LocalID
	Global GlobalID
	Addr   OpID // AddrBaseOp
}

// Store mirrors Load but adds the value being stored.
type Store struct {
	Base   AddrBase
	Local  LocalID
	Global GlobalID
	Addr   OpID
	Value  OpID
}

// Bitfield carries the width+offset metadata both bitfield ops need.
type Bitfield struct {
	Addr      OpID
	Width     uint8
	BitOffset uint8
	Value     OpID // only meaningful for OpBitfieldStore
}

// Unary is the payload of OpUnary.
type Unary struct {
	Kind UnaryKind
	X    OpID
}

// Binary is the payload of OpBinary.
type Binary struct {
	Kind BinaryKind
	X, Y OpID
}

// Cast is the payload of OpCast.
type Cast struct {
	Kind CastKind
	X    OpID
}

// Call is the payload of OpCall.
type Call struct {
	Target   OpID // the callee, evaluated as a function-pointer value
	FuncType types.TypeID
	Args     []OpID
	ArgTypes []types.TypeID
	Variadic bool
}

// Branch is the payload of OpBranch (unconditional jump).
type Branch struct {
	Target BlockID
}

// CondBranch is the payload of OpCondBranch.
type CondBranch struct {
	Cond OpID
	Then BlockID
	Else BlockID
}

// SwitchCase maps one constant value to a target block.
type SwitchCase struct {
	Value  int64
	Target BlockID
}

// Switch is the payload of OpSwitch.
type Switch struct {
	Value   OpID
	Cases   []SwitchCase
	Default BlockID
}

// PhiEntry is one (predecessor, value) pair of a Phi.
type PhiEntry struct {
	Pred  BlockID
	Value OpID
}

// Phi is the payload of OpPhi.
type Phi struct {
	Entries []PhiEntry
}

// Mem is the shared payload of OpMemSet/Copy/Move/Cmp.
type Mem struct {
	Dst, Src OpID // Src unused by MemSet (use FillByte instead)
	FillByte OpID
	Len      OpID
}

// VaArg is the payload of OpVaArg (and carries nothing extra for
// OpVaStart beyond the ListAddr below, reusing this struct for symmetry).
type VaArg struct {
	ListAddr OpID
	Type     types.TypeID
}

// Ret is the payload of OpRet.
type Ret struct {
	HasValue bool
	Value    OpID
}

// Op is a single tagged operation.
type Op struct {
	ID    OpID
	Kind  OpKind
	Type  types.TypeID
	Flags OpFlags
	Stmt  *Stmt // owning statement back-pointer

	Const      Const
	AddrOf     AddrOf
	AddrOffset AddrOffset
	Load       Load
	Store      Store
	Bitfield   Bitfield
	Unary      Unary
	Binary     Binary
	Cast       Cast
	Call       Call
	Branch     Branch
	CondBranch CondBranch
	Switch     Switch
	Phi        Phi
	Mem        Mem
	VaArg      VaArg
	Ret        Ret
}
