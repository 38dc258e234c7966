package ir

import "c11c/internal/types"

// LocalFlags records properties of a Local.
type LocalFlags uint8

const (
	// LocalFlagParam marks a local materialised to receive an aggregate
	// (or address-taken scalar) parameter; the code generator copies the
	// ABI argument into it.
	LocalFlagParam LocalFlags = 1 << iota
	// LocalFlagAddressTaken marks a local created by promote_to_local
	// because a scalar variable had its address taken.
	LocalFlagAddressTaken
)

// Local is an anonymous stack slot owned by exactly one Function.
type Local struct {
	ID    LocalID
	Type  types.TypeID
	Flags LocalFlags
	Name  string // for debug info / dumps only, not semantically significant
}
