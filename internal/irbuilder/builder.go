// Package irbuilder lowers a typed AST (internal/ast) into the IR data
// model (internal/ir) with a recursive-descent walk. Variable
// reads/writes go through internal/varref for on-the-fly SSA
// construction; control-flow constructs wire block edges directly on
// internal/ir and rely on internal/cfg to clean up afterward.
package irbuilder

import (
	"fmt"

	"c11c/internal/ast"
	"c11c/internal/cfg"
	"c11c/internal/diag"
	"c11c/internal/initlayout"
	"c11c/internal/ir"
	"c11c/internal/source"
	"c11c/internal/target"
	"c11c/internal/types"
	"c11c/internal/varref"
)

// Builder holds the state threaded through one function's lowering.
type Builder struct {
	unit   *ir.Unit
	tin    *types.Interner
	target target.Descriptor
	diags  *diag.Bag

	fn   *ir.Function
	vars *varref.Table
	cur  *ir.Block

	opByID map[ir.OpID]*ir.Op // populated as ops are emitted, for findOp

	// loop/switch context stacks for break/continue.
	loops  []loopCtx
	labels map[string]*ir.Block // forward/backward goto targets, sealed at finalize
	defers []*ast.Stmt          // pending defers, innermost (most recent) last
}

type loopCtx struct {
	continueTarget *ir.Block
	breakTarget    *ir.Block
	deferMark      int // len(defers) when the construct was entered
}

// New creates a Builder for one translation unit's lowering session,
// backed by unit for its type interner, target descriptor, and global
// symbol table (string pooling, in particular).
func New(unit *ir.Unit, diags *diag.Bag) *Builder {
	return &Builder{unit: unit, tin: unit.Types, target: unit.Target, diags: diags}
}

// internString delegates to the unit's deduplicating string pool and
// returns its GlobalID.
func (bd *Builder) internString(content string, _ types.TypeID) ir.GlobalID {
	return bd.unit.InternString(content).ID
}

// BuildFunction lowers one function definition into an ir.Function.
// It returns nil, err if lowering hit an internal invariant violation;
// ordinary user-visible errors are reported through diags instead
// and lowering continues best-effort so the driver can report multiple
// errors in one pass.
func (bd *Builder) BuildFunction(fd *ast.FuncDecl) (*ir.Function, error) {
	paramTypes := make([]types.TypeID, len(fd.Params))
	for i, p := range fd.Params {
		paramTypes[i] = p.Type
	}
	bd.fn = ir.NewFunction(fd.Name, fd.Type, paramTypes)
	bd.vars = varref.New(bd.fn)
	bd.labels = make(map[string]*ir.Block)
	bd.loops = nil
	bd.defers = nil
	bd.opByID = make(map[ir.OpID]*ir.Op)

	entry := bd.fn.NewBlock()
	bd.cur = entry

	bd.materializeParams(fd)
	bd.lowerStmt(fd.Body)
	bd.finalize(fd)

	for _, lbl := range bd.labels {
		bd.vars.SealBlock(lbl.ID)
	}
	cfg.Prune(bd.fn)
	cfg.SimplifyPhis(bd.fn)
	if err := ir.Validate(bd.fn); err != nil {
		return nil, fmt.Errorf("irbuilder: %s: %w", fd.Name, err)
	}
	return bd.fn, nil
}

// materializeParams binds each parameter name to a fresh OpMov value
// carrying OpFlagParam; the code generator binds those to ABI slots.
func (bd *Builder) materializeParams(fd *ast.FuncDecl) {
	stmt := bd.cur.NewStmt()
	stmt.Params = true
	for i, p := range fd.Params {
		mov := bd.fn.NewOp(ir.OpMov, p.Type)
		mov.Flags |= ir.OpFlagParam
		stmt.Append(mov)
		v := bd.vars.Declare(p.Name, ast.Scope(i+1), false, p.Type)
		bd.vars.WriteVariable(v, bd.cur.ID, mov.ID)
	}
	bd.vars.SealBlock(bd.cur.ID)
}

// finalize ensures the function's last live block ends in a return,
// synthesizing an implicit `return;` for a void function whose body
// falls off the end (C11 6.9.1p12).
func (bd *Builder) finalize(fd *ast.FuncDecl) {
	if bd.cur == nil || bd.cur.Terminated() {
		return
	}
	retTy, _ := bd.tin.Lookup(fd.Type)
	if retTy.Ret == types.NoTypeID {
		ir.MakeRet(bd.cur, nil)
		return
	}
	zero := bd.fn.NewOp(ir.OpConstZero, retTy.Ret)
	bd.cur.NewStmt().Append(zero)
	ir.MakeRet(bd.cur, zero)
}

// newBlock allocates a fresh block. Wiring it as a successor is left to
// the caller (via MakeBranch/MakeCondBranch/MakeSwitch), as is sealing
// once all its predecessors are known.
func (bd *Builder) newBlock() *ir.Block {
	return bd.fn.NewBlock()
}

// reportInternal records an internal-invariant diagnostic: a
// condition the type-checked AST should never produce, surfaced instead
// of panicking so the driver can still report every function's errors
// in one pass. span is currently unused pending threading real spans
// through every call site; NoSpan renders as the synthetic origin.
func (bd *Builder) reportInternal(span any, format string, args ...any) {
	_ = span
	bd.diags.Add(diag.New(diag.InternalInvariant, source.NoSpan, format, args...))
}

// labelBlock returns (creating if necessary) the block a named label
// resolves to. The block is left unsealed until BuildFunction's finalize
// step, since a goto anywhere in the function (forward or backward) may
// still need to be wired as a predecessor.
func (bd *Builder) labelBlock(name string) *ir.Block {
	if b, ok := bd.labels[name]; ok {
		return b
	}
	b := bd.newBlock()
	bd.labels[name] = b
	return b
}

// flattenLocalInit lowers a local's flattened initializer as stores against
// a memory address, after the zeroing memset; global initializers are
// assembled in unit.go, not here.
func (bd *Builder) flattenLocalInit(addr *ir.Op, t types.TypeID, item *ast.InitItem) {
	leaves, err := initlayout.FlattenLocal(bd.tin, bd.target.PtrSize, t, item)
	if err != nil {
		bd.reportInternal(nil, "initializer layout: %v", err)
		return
	}
	for _, leaf := range leaves {
		val := bd.lowerExpr(leaf.Expr)
		val = bd.coerce(val, leaf.Type)
		bd.storeAt(addr, leaf.Offset, leaf.Type, val)
	}
}

// storeAt emits an address computation (if offset != 0) plus a store
// through it.
func (bd *Builder) storeAt(base *ir.Op, offset uint32, t types.TypeID, value *ir.Op) {
	addr := base
	if offset != 0 {
		off := bd.fn.NewOp(ir.OpAddrOffset, bd.pointerType())
		off.AddrOffset = ir.AddrOffset{Base: base.ID, Index: ir.NoOpID, Scale: 1, Disp: int64(offset), ElemType: t}
		bd.cur.NewStmt().Append(off)
		addr = off
	}
	st := bd.fn.NewOp(ir.OpStore, types.NoTypeID)
	st.Store = ir.Store{Base: ir.AddrBaseOp, Addr: addr.ID, Value: value.ID}
	bd.cur.NewStmt().Append(st)
}

func (bd *Builder) pointerType() types.TypeID {
	return bd.tin.Pointer(bd.tin.Builtins().Char)
}
