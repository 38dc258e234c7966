// Package intrinsics implements the builtin registry: the fixed
// set of compiler-recognized function names (va_* macros and the
// __builtin_* family) that the IR builder lowers directly to a single
// op or a short op sequence instead of emitting an ordinary OpCall.
package intrinsics

import "c11c/internal/ir"

// Form tags how a call to a recognized builtin lowers.
type Form uint8

const (
	// FormUnary lowers to a single OpUnary with the given UnaryKind.
	FormUnary Form = iota
	// FormMem lowers to one of the OpMemSet/Copy/Move/Cmp family.
	FormMem
	// FormVarArgs lowers to OpVaStart/OpVaArg/OpVaEnd-shaped handling;
	// va_end has no runtime effect on this target family and is dropped.
	FormVarArgs
	// FormUnreachable lowers to a control-flow terminator, not a value.
	FormUnreachable
)

// VarArgsOp distinguishes which of the va_* macros a FormVarArgs entry is.
type VarArgsOp uint8

const (
	VaStart VarArgsOp = iota
	VaArg
	VaCopy
	VaEnd
)

// MemOp distinguishes which of the mem* builtins a FormMem entry is.
type MemOp uint8

const (
	MemSet MemOp = iota
	MemCpy
	MemMove
	MemCmp
)

// Descriptor is one recognized builtin's lowering recipe.
type Descriptor struct {
	Name     string
	Form     Form
	Unary    ir.UnaryKind // FormUnary
	Mem      MemOp        // FormMem
	VarArgs  VarArgsOp    // FormVarArgs
	Variants []string     // e.g. "__builtin_clz"/"__builtin_clzl"/"__builtin_clzll"
}

var registry = buildRegistry()

func buildRegistry() map[string]Descriptor {
	entries := []Descriptor{
		{Name: "__builtin_popcount", Form: FormUnary, Unary: ir.UnPopcount,
			Variants: []string{"__builtin_popcountl", "__builtin_popcountll"}},
		{Name: "__builtin_clz", Form: FormUnary, Unary: ir.UnClz,
			Variants: []string{"__builtin_clzl", "__builtin_clzll"}},
		{Name: "__builtin_ctz", Form: FormUnary, Unary: ir.UnCtz,
			Variants: []string{"__builtin_ctzl", "__builtin_ctzll"}},
		{Name: "__builtin_bswap16", Form: FormUnary, Unary: ir.UnByteReverse},
		{Name: "__builtin_bswap32", Form: FormUnary, Unary: ir.UnByteReverse},
		{Name: "__builtin_bswap64", Form: FormUnary, Unary: ir.UnByteReverse},
		{Name: "fabs", Form: FormUnary, Unary: ir.UnFAbs, Variants: []string{"fabsf", "fabsl"}},
		{Name: "sqrt", Form: FormUnary, Unary: ir.UnFSqrt, Variants: []string{"sqrtf", "sqrtl"}},

		{Name: "memset", Form: FormMem, Mem: MemSet},
		{Name: "memcpy", Form: FormMem, Mem: MemCpy},
		{Name: "memmove", Form: FormMem, Mem: MemMove},
		{Name: "memcmp", Form: FormMem, Mem: MemCmp},

		{Name: "__builtin_va_start", Form: FormVarArgs, VarArgs: VaStart},
		{Name: "__builtin_va_arg", Form: FormVarArgs, VarArgs: VaArg},
		{Name: "__builtin_va_copy", Form: FormVarArgs, VarArgs: VaCopy},
		{Name: "__builtin_va_end", Form: FormVarArgs, VarArgs: VaEnd},

		{Name: "__builtin_unreachable", Form: FormUnreachable},
	}
	m := make(map[string]Descriptor, len(entries)*2)
	for _, e := range entries {
		m[e.Name] = e
		for _, v := range e.Variants {
			alias := e
			alias.Name = v
			m[v] = alias
		}
	}
	return m
}

// Lookup reports whether name is a recognized builtin and, if so, its
// lowering descriptor. The IR builder consults this before falling back
// to an ordinary call lowering for every callee identifier.
func Lookup(name string) (Descriptor, bool) {
	d, ok := registry[name]
	return d, ok
}
