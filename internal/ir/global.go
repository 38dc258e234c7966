package ir

import "c11c/internal/types"

// Linkage records a global's linker visibility.
type Linkage uint8

const (
	LinkageExternal Linkage = iota
	LinkageInternal
	LinkageNone
)

// DefState tracks whether a global has been defined yet, distinguishing a
// tentative definition from a real one.
type DefState uint8

const (
	DefUndefined DefState = iota
	DefTentative
	DefDefined
)

// GlobalKind distinguishes the three global shapes: function, data,
// string literal.
type GlobalKind uint8

const (
	GlobalFunc GlobalKind = iota
	GlobalData
	GlobalString
)

// InitEntry is one flattened (offset, value) record of a global's
// initializer.
type InitEntry struct {
	Offset uint32
	Type   types.TypeID // the leaf's own type, for width/reinterpretation
	// Exactly one of the following is meaningful, selected by Kind.
	Kind  InitEntryKind
	Int   int64
	Float float64
	Sym   GlobalID // InitEntryAddr: address of another global (+ Int as disp)
	Str   string   // InitEntryString: the raw bytes of a nested string literal
}

// InitEntryKind tags an InitEntry's payload.
type InitEntryKind uint8

const (
	InitEntryInt InitEntryKind = iota
	InitEntryFloat
	InitEntryAddr
	InitEntryString
)

// Global is a linker-visible symbol: a function, data object, or string
// literal.
type Global struct {
	ID       GlobalID
	Name     string
	Kind     GlobalKind
	Linkage  Linkage
	DefState DefState
	Type     types.TypeID

	Func *Function // GlobalFunc

	// GlobalData / GlobalString initializer, as a flattened value list.
	Init     []InitEntry
	ZeroFill bool // no explicit Init; the object is entirely zero
	StrData  string
}
