// Package varref implements the variable-reference table: the
// mapping from a source identifier at a given scope to its current SSA
// value, and the on-demand phi insertion that keeps that mapping correct
// across merging control flow (Braun et al.'s "Simple and Efficient
// Construction of Static Single Assignment Form").
//
// Lookup order for an identifier resolves (name, scope, block) first,
// then walks the declaring scope's ancestors, and finally falls back to
// (name, GLOBAL, *) for file-scope declarations — C's ordinary lexical
// shadowing rule. A block's own SSA definition always wins over any
// value read from an enclosing scope or a stale per-block cache: this
// package has no cache separate from the def table itself, which is
// the resolution to Open Question 1.
package varref

import (
	"c11c/internal/ast"
	"c11c/internal/ir"
	"c11c/internal/types"
)

// VarID identifies one declared variable for the lifetime of a function
// build. It is distinct from ir.LocalID: a variable that never escapes to
// memory has no LocalID at all, only a chain of SSA values.
type VarID uint32

// NoVarID marks the absence of a declared variable.
const NoVarID VarID = 0

type declKey struct {
	name  string
	scope ast.Scope
}

// decl records one declaration's static information: its owning scope,
// the enclosing scope to fall back to, and whether it was ultimately
// promoted to a memory-backed local.
type decl struct {
	name     string
	scope    ast.Scope
	parent   ast.Scope
	global   bool
	cType    types.TypeID // the variable's C type, known at Declare time
	local    ir.LocalID   // valid only once Promote has been called
	promoted bool
}

// Table tracks declarations and their live SSA values across a function
// build. One Table is created per ir.Function.
type Table struct {
	fn *ir.Function

	byKey       map[declKey]VarID
	decls       []decl // index 0 unused, so VarID 0 stays NoVarID
	scopeParent map[ast.Scope]ast.Scope

	// defs[v][b] is the SSA value of variable v at the end of block b.
	defs map[VarID]map[ir.BlockID]ir.OpID

	sealed        map[ir.BlockID]bool
	incompletePhi map[ir.BlockID]map[VarID]*ir.Op // phi placeholder awaiting predecessors
}

// New creates an empty reference table bound to fn.
func New(fn *ir.Function) *Table {
	return &Table{
		fn:            fn,
		byKey:         make(map[declKey]VarID),
		decls:         []decl{{}}, // reserve index 0
		scopeParent:   make(map[ast.Scope]ast.Scope),
		defs:          make(map[VarID]map[ir.BlockID]ir.OpID),
		sealed:        make(map[ir.BlockID]bool),
		incompletePhi: make(map[ir.BlockID]map[VarID]*ir.Op),
	}
}

// SetScopeParent records that inner falls back to outer when a name is
// not found in inner's own declarations. Call once per nested scope as
// the builder enters it.
func (t *Table) SetScopeParent(inner, outer ast.Scope) {
	t.scopeParent[inner] = outer
}

// Declare registers a new variable at scope and returns its VarID. Redeclaring
// the same (name, scope) pair (a C block-scope shadow of an outer variable
// with the same spelling) yields a fresh VarID, matching C's shadowing rule.
func (t *Table) Declare(name string, scope ast.Scope, global bool, cType types.TypeID) VarID {
	id := VarID(len(t.decls))
	t.decls = append(t.decls, decl{name: name, scope: scope, global: global, cType: cType})
	t.byKey[declKey{name, scope}] = id
	return id
}

// Promote marks v as memory-backed, recording the ir.LocalID that now
// holds its address. Reads and writes to a
// promoted variable go through explicit load/store ops built by the
// caller, not through WriteVariable/ReadVariable.
func (t *Table) Promote(v VarID, local ir.LocalID) {
	t.decls[v].promoted = true
	t.decls[v].local = local
}

// IsPromoted reports whether v was memory-promoted, and its LocalID if so.
func (t *Table) IsPromoted(v VarID) (ir.LocalID, bool) {
	d := t.decls[v]
	return d.local, d.promoted
}

// Resolve finds the VarID visible for name at scope, walking scope's
// ancestors and finally the global scope, per the file's documented
// lookup order. It returns NoVarID if no declaration is visible.
func (t *Table) Resolve(name string, scope ast.Scope) VarID {
	for s := scope; ; {
		if id, ok := t.byKey[declKey{name, s}]; ok {
			return id
		}
		parent, ok := t.scopeParent[s]
		if !ok || parent == s {
			break
		}
		s = parent
	}
	if id, ok := t.byKey[declKey{name, ast.FileScope}]; ok {
		return id
	}
	return NoVarID
}

// WriteVariable records v's SSA value at the end of block b.
func (t *Table) WriteVariable(v VarID, b ir.BlockID, value ir.OpID) {
	m, ok := t.defs[v]
	if !ok {
		m = make(map[ir.BlockID]ir.OpID)
		t.defs[v] = m
	}
	m[b] = value
}

// ReadVariable returns v's current SSA value at the end of block b,
// inserting phis on demand across merging predecessors (Braun et al.
// section 2.2). Sealed blocks (all predecessors known) resolve directly;
// unsealed blocks record an incomplete phi that SealBlock later fills in.
func (t *Table) ReadVariable(v VarID, b ir.BlockID) ir.OpID {
	if m, ok := t.defs[v]; ok {
		if val, ok := m[b]; ok {
			return val
		}
	}
	return t.readVariableRecursive(v, b)
}

func (t *Table) readVariableRecursive(v VarID, b ir.BlockID) ir.OpID {
	block := t.fn.Block(b)
	var val ir.OpID
	if !t.sealed[b] {
		phi := ir.InsertPhi(block, t.DeclaredType(v))
		if t.incompletePhi[b] == nil {
			t.incompletePhi[b] = make(map[VarID]*ir.Op)
		}
		t.incompletePhi[b][v] = phi
		val = phi.ID
	} else if len(block.Preds) == 1 {
		val = t.ReadVariable(v, block.Preds[0])
	} else {
		phi := ir.InsertPhi(block, t.DeclaredType(v))
		t.WriteVariable(v, b, phi.ID)
		val = t.addPhiOperands(v, phi, block)
	}
	t.WriteVariable(v, b, val)
	return val
}

func (t *Table) addPhiOperands(v VarID, phi *ir.Op, block *ir.Block) ir.OpID {
	entries := make([]ir.PhiEntry, 0, len(block.Preds))
	for _, pred := range block.Preds {
		entries = append(entries, ir.PhiEntry{Pred: pred, Value: t.ReadVariable(v, pred)})
	}
	phi.Phi.Entries = entries
	return tryRemoveTrivialPhi(phi)
}

// tryRemoveTrivialPhi returns the single value a phi's entries all agree
// on (ignoring self-references), or the phi's own id when they merge
// distinct values. It applies cfg.SimplifyPhis's test eagerly, for the
// read that triggered it; the phi op stays in its block, the variable's
// recorded definition is not updated, and existing uses are left for
// cfg.SimplifyPhis to rewrite.
func tryRemoveTrivialPhi(phi *ir.Op) ir.OpID {
	var same ir.OpID = ir.NoOpID
	for _, e := range phi.Phi.Entries {
		if e.Value == phi.ID || e.Value == same {
			continue
		}
		if same != ir.NoOpID {
			return phi.ID // genuinely merges distinct values, keep it
		}
		same = e.Value
	}
	if same == ir.NoOpID {
		return phi.ID
	}
	return same
}

// DeclaredType returns the C type v was declared with, used to type the
// phis and spill slots minted on v's behalf.
func (t *Table) DeclaredType(v VarID) types.TypeID {
	return t.decls[v].cType
}

// SealBlock declares that block b's predecessor set is now final: every
// branch that can reach b has already been wired. Once sealed, any
// incomplete phis recorded for b during earlier reads get their operands
// filled in.
func (t *Table) SealBlock(b ir.BlockID) {
	if t.sealed[b] {
		return
	}
	block := t.fn.Block(b)
	for v, phi := range t.incompletePhi[b] {
		t.addPhiOperands(v, phi, block)
	}
	delete(t.incompletePhi, b)
	t.sealed[b] = true
}
