// Package ir implements the compiler's intermediate representation: a
// function-level control-flow graph of basic blocks holding near-SSA
// operations with explicit phi nodes, typed operands, addresses, locals,
// and globals.
package ir

// BlockID identifies a basic block within one Function.
type BlockID int32

// NoBlockID marks the absence of a block (an unresolved branch target).
const NoBlockID BlockID = -1

// DetachedBlockID is the distinguished sentinel block id. Blocks pruned by
// the CFG maintenance pass keep their own id and are marked with
// Block.Detached instead of being physically removed from the slice.
const DetachedBlockID BlockID = -2

// OpID identifies an operation within one Function, unique across all of
// that function's blocks.
type OpID int32

// NoOpID marks the absence of a defining operation.
const NoOpID OpID = -1

// LocalID identifies an anonymous stack slot owned by a Function.
type LocalID int32

// NoLocalID marks the absence of a local.
const NoLocalID LocalID = -1

// GlobalID identifies a linker-visible symbol within a Unit.
type GlobalID int32

// NoGlobalID marks the absence of a global.
const NoGlobalID GlobalID = -1
