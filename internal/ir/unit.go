package ir

import (
	"c11c/internal/arena"
	"c11c/internal/target"
	"c11c/internal/types"
)

// Unit owns an arena, a target descriptor, and every global produced while
// lowering one translation unit.
type Unit struct {
	Arena  *arena.Arena
	Target target.Descriptor
	Types  *types.Interner

	globals []*Global
	byName  map[string]GlobalID
}

// NewUnit creates an empty Unit for the given target, with its own arena
// and type interner.
func NewUnit(t target.Descriptor) *Unit {
	longPrim := types.PrimI64
	if t.LongSize == 4 {
		longPrim = types.PrimI32
	}
	return &Unit{
		Arena:  arena.New(0),
		Target: t,
		Types:  types.NewInterner(longPrim),
		byName: make(map[string]GlobalID),
	}
}

// DeclareGlobal returns the existing global named name, or creates a new
// undefined one of the given kind/type.
func (u *Unit) DeclareGlobal(name string, kind GlobalKind, t types.TypeID, linkage Linkage) *Global {
	if id, ok := u.byName[name]; ok {
		return u.globals[id]
	}
	id := GlobalID(len(u.globals))
	name = u.Arena.String(name)
	g := &Global{ID: id, Name: name, Kind: kind, Type: t, Linkage: linkage, DefState: DefUndefined}
	u.globals = append(u.globals, g)
	u.byName[name] = id
	return g
}

// Global resolves a GlobalID.
func (u *Unit) Global(id GlobalID) *Global {
	if id < 0 || int(id) >= len(u.globals) {
		return nil
	}
	return u.globals[id]
}

// LookupGlobal finds a global by name.
func (u *Unit) LookupGlobal(name string) (*Global, bool) {
	id, ok := u.byName[name]
	if !ok {
		return nil, false
	}
	return u.globals[id], true
}

// Globals returns every global in declaration order.
func (u *Unit) Globals() []*Global { return u.globals }

// InternString interns a string literal as a defined internal-linkage
// global, deduplicating by content so identical literals share storage.
func (u *Unit) InternString(content string) *Global {
	name := ".Lstr." + content
	if id, ok := u.byName[name]; ok {
		return u.globals[id]
	}
	elemType := u.Types.Primitive(types.PrimI8)
	arrType := u.Types.Array(elemType, uint32(len(content))+1)
	g := u.DeclareGlobal(name, GlobalString, arrType, LinkageInternal)
	g.DefState = DefDefined
	g.StrData = u.Arena.String(content)
	return g
}

// ResolveTentativeDefinitions promotes every DefTentative global with no
// stronger definition to a zero-initialised DefDefined one, matching the
// C tentative-definition rule.
func (u *Unit) ResolveTentativeDefinitions() {
	for _, g := range u.globals {
		if g.DefState == DefTentative {
			g.DefState = DefDefined
			g.ZeroFill = true
		}
	}
}
