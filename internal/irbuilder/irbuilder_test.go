package irbuilder

import (
	"testing"

	"c11c/internal/ast"
	"c11c/internal/diag"
	"c11c/internal/ir"
	"c11c/internal/target"
	"c11c/internal/types"
)

// TestBuildAddOneReturn lowers int f(int x){ return x+1; } and checks
// the single-block add/ret shape.
func TestBuildAddOneReturn(t *testing.T) {
	unit := ir.NewUnit(target.X86_64Linux())
	i32 := unit.Types.Primitive(types.PrimI32)

	x := &ast.Expr{Kind: ast.ExprIdent, Ident: "x", Scope: 1, ResultType: i32}
	one := &ast.Expr{Kind: ast.ExprIntLit, IntVal: 1, ResultType: i32}
	sum := &ast.Expr{Kind: ast.ExprBinary, BinOp: ast.BinAdd, L: x, R: one, ResultType: i32}
	body := &ast.Stmt{Kind: ast.StmtBlock, Body: []*ast.Stmt{{Kind: ast.StmtReturn, Expr: sum}}}

	fd := &ast.FuncDecl{
		Name:   "f",
		Type:   unit.Types.Func(i32, []types.TypeID{i32}, false),
		Params: []ast.Param{{Name: "x", Type: i32}},
		Body:   body,
	}

	bd := New(unit, diag.NewBag(16))
	fn, err := bd.BuildFunction(fd)
	if err != nil {
		t.Fatalf("BuildFunction: %v", err)
	}
	if err := ir.Validate(fn); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

// TestBuildMaxTernary lowers int max(int a, int b){ return a>b?a:b; }
// and checks the split/merge CFG with a two-entry result phi.
func TestBuildMaxTernary(t *testing.T) {
	unit := ir.NewUnit(target.X86_64Linux())
	i32 := unit.Types.Primitive(types.PrimI32)

	a := &ast.Expr{Kind: ast.ExprIdent, Ident: "a", Scope: 1, ResultType: i32}
	b := &ast.Expr{Kind: ast.ExprIdent, Ident: "b", Scope: 2, ResultType: i32}
	cmp := &ast.Expr{Kind: ast.ExprBinary, BinOp: ast.BinGt, L: a, R: b, ResultType: i32}
	ternary := &ast.Expr{Kind: ast.ExprTernary, X: cmp, CondTrue: a, CondFalse: b, ResultType: i32}
	body := &ast.Stmt{Kind: ast.StmtBlock, Body: []*ast.Stmt{{Kind: ast.StmtReturn, Expr: ternary}}}

	fd := &ast.FuncDecl{
		Name:   "max",
		Type:   unit.Types.Func(i32, []types.TypeID{i32, i32}, false),
		Params: []ast.Param{{Name: "a", Type: i32}, {Name: "b", Type: i32}},
		Body:   body,
	}

	bd := New(unit, diag.NewBag(16))
	fn, err := bd.BuildFunction(fd)
	if err != nil {
		t.Fatalf("BuildFunction: %v", err)
	}
	if err := ir.Validate(fn); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	var sawPhi bool
	fn.ForEachOp(func(op *ir.Op) {
		if op.Kind == ir.OpPhi {
			sawPhi = true
		}
	})
	if !sawPhi {
		t.Fatalf("expected the ternary's join block to carry a result phi")
	}
}

// TestBuildIfElseMergesAssignedVariable covers an if/else that assigns
// the same local on both arms, exercising varref's on-demand phi
// insertion across a non-expression merge point.
func TestBuildIfElseMergesAssignedVariable(t *testing.T) {
	unit := ir.NewUnit(target.X86_64Linux())
	i32 := unit.Types.Primitive(types.PrimI32)

	cond := &ast.Expr{Kind: ast.ExprIdent, Ident: "c", Scope: 1, ResultType: unit.Types.Builtins().Bool}
	rIdent := &ast.Expr{Kind: ast.ExprIdent, Ident: "r", Scope: 2, ResultType: i32}
	one := &ast.Expr{Kind: ast.ExprIntLit, IntVal: 1, ResultType: i32}
	two := &ast.Expr{Kind: ast.ExprIntLit, IntVal: 2, ResultType: i32}
	assignThen := &ast.Stmt{Kind: ast.StmtExpr, Expr: &ast.Expr{Kind: ast.ExprAssign, Assignee: rIdent, Value: one, ResultType: i32}}
	assignElse := &ast.Stmt{Kind: ast.StmtExpr, Expr: &ast.Expr{Kind: ast.ExprAssign, Assignee: rIdent, Value: two, ResultType: i32}}
	ifStmt := &ast.Stmt{Kind: ast.StmtIf, Cond: cond,
		Then: &ast.Stmt{Kind: ast.StmtBlock, Body: []*ast.Stmt{assignThen}},
		Else: &ast.Stmt{Kind: ast.StmtBlock, Body: []*ast.Stmt{assignElse}},
	}
	ret := &ast.Stmt{Kind: ast.StmtReturn, Expr: rIdent}
	body := &ast.Stmt{Kind: ast.StmtBlock, Body: []*ast.Stmt{
		{Kind: ast.StmtDecl, Decls: []*ast.VarDecl{{Name: "r", Type: i32, Scope: 2}}},
		ifStmt, ret,
	}}

	fd := &ast.FuncDecl{
		Name:   "pick",
		Type:   unit.Types.Func(i32, []types.TypeID{unit.Types.Builtins().Bool}, false),
		Params: []ast.Param{{Name: "c", Type: unit.Types.Builtins().Bool}},
		Body:   body,
	}

	bd := New(unit, diag.NewBag(16))
	fn, err := bd.BuildFunction(fd)
	if err != nil {
		t.Fatalf("BuildFunction: %v", err)
	}
	if err := ir.Validate(fn); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

// TestAddressOfScalarPromotesToLocal lowers
// int f(void){ int x = 1; int *p = &x; return x; }
// checking that &x of an SSA-only scalar spills it into a fresh
// address-taken local instead of being rejected.
func TestAddressOfScalarPromotesToLocal(t *testing.T) {
	unit := ir.NewUnit(target.X86_64Linux())
	i32 := unit.Types.Primitive(types.PrimI32)
	pi32 := unit.Types.Pointer(i32)

	xIdent := &ast.Expr{Kind: ast.ExprIdent, Ident: "x", Scope: 1, ResultType: i32}
	addrX := &ast.Expr{Kind: ast.ExprUnary, UnaryOp: ast.UnaryAddr, X: xIdent, ResultType: pi32}
	body := &ast.Stmt{Kind: ast.StmtBlock, Body: []*ast.Stmt{
		{Kind: ast.StmtDecl, Decls: []*ast.VarDecl{{Name: "x", Type: i32, Scope: 1,
			Init: &ast.InitItem{Scalar: &ast.Expr{Kind: ast.ExprIntLit, IntVal: 1, ResultType: i32}}}}},
		{Kind: ast.StmtDecl, Decls: []*ast.VarDecl{{Name: "p", Type: pi32, Scope: 1,
			Init: &ast.InitItem{Scalar: addrX}}}},
		{Kind: ast.StmtReturn, Expr: xIdent},
	}}

	fd := &ast.FuncDecl{
		Name: "f",
		Type: unit.Types.Func(i32, nil, false),
		Body: body,
	}

	diags := diag.NewBag(16)
	bd := New(unit, diags)
	fn, err := bd.BuildFunction(fd)
	if err != nil {
		t.Fatalf("BuildFunction: %v", err)
	}
	if diags.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags.Items())
	}
	var promoted *ir.Local
	for _, l := range fn.Locals {
		if l.Flags&ir.LocalFlagAddressTaken != 0 {
			promoted = l
		}
	}
	if promoted == nil {
		t.Fatalf("expected &x to mint an address-taken local")
	}
	var sawSpill, sawLoad bool
	fn.ForEachOp(func(op *ir.Op) {
		switch op.Kind {
		case ir.OpStore:
			if op.Store.Base == ir.AddrBaseLocal && op.Store.Local == promoted.ID {
				sawSpill = true
			}
		case ir.OpLoad:
			if op.Load.Base == ir.AddrBaseLocal && op.Load.Local == promoted.ID {
				sawLoad = true
			}
		}
	})
	if !sawSpill {
		t.Fatalf("expected the current SSA value to be spilled into the promoted local")
	}
	if !sawLoad {
		t.Fatalf("expected the read of x after promotion to load from the local")
	}
}

// TestDeferRunsOnLoopBreak lowers
//
//	int f(int c){ int n = 0; while (c) { defer n = 1; break; } return n; }
//
// checking that the deferred assignment replays before the break's
// branch: without it, n could only ever be 0 at the return.
func TestDeferRunsOnLoopBreak(t *testing.T) {
	unit := ir.NewUnit(target.X86_64Linux())
	i32 := unit.Types.Primitive(types.PrimI32)

	nIdent := &ast.Expr{Kind: ast.ExprIdent, Ident: "n", Scope: 2, ResultType: i32}
	cIdent := &ast.Expr{Kind: ast.ExprIdent, Ident: "c", Scope: 1, ResultType: i32}
	one := &ast.Expr{Kind: ast.ExprIntLit, IntVal: 1, ResultType: i32}
	deferAssign := &ast.Stmt{Kind: ast.StmtDefer, Defer: &ast.Stmt{Kind: ast.StmtExpr,
		Expr: &ast.Expr{Kind: ast.ExprAssign, Assignee: nIdent, Value: one, ResultType: i32}}}
	loop := &ast.Stmt{Kind: ast.StmtWhile, Cond: cIdent,
		Loop: &ast.Stmt{Kind: ast.StmtBlock, Body: []*ast.Stmt{deferAssign, {Kind: ast.StmtBreak}}}}
	body := &ast.Stmt{Kind: ast.StmtBlock, Body: []*ast.Stmt{
		{Kind: ast.StmtDecl, Decls: []*ast.VarDecl{{Name: "n", Type: i32, Scope: 2}}},
		loop,
		{Kind: ast.StmtReturn, Expr: nIdent},
	}}

	fd := &ast.FuncDecl{
		Name:   "f",
		Type:   unit.Types.Func(i32, []types.TypeID{i32}, false),
		Params: []ast.Param{{Name: "c", Type: i32}},
		Body:   body,
	}

	diags := diag.NewBag(16)
	bd := New(unit, diags)
	fn, err := bd.BuildFunction(fd)
	if err != nil {
		t.Fatalf("BuildFunction: %v", err)
	}
	if diags.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags.Items())
	}
	var sawOne bool
	fn.ForEachOp(func(op *ir.Op) {
		if op.Kind == ir.OpConstInt && op.Const.Int == 1 {
			sawOne = true
		}
	})
	if !sawOne {
		t.Fatalf("expected the deferred n = 1 to be lowered on the break path")
	}
	var sawPhi bool
	fn.ForEachOp(func(op *ir.Op) {
		if op.Kind == ir.OpPhi {
			sawPhi = true
		}
	})
	if !sawPhi {
		t.Fatalf("expected a phi merging n's loop-break and no-iteration values")
	}
}

// TestCastToBoolIsCompareNotZero lowers the initializer of
// _Bool b = (_Bool)x; for an i32 x and checks the cast comes out as
// compare-not-zero rather than a truncation: (_Bool)2 is 1, not 0.
func TestCastToBoolIsCompareNotZero(t *testing.T) {
	unit := ir.NewUnit(target.X86_64Linux())
	i32 := unit.Types.Primitive(types.PrimI32)
	boolTy := unit.Types.Builtins().Bool

	xIdent := &ast.Expr{Kind: ast.ExprIdent, Ident: "x", Scope: 1, ResultType: i32}
	cast := &ast.Expr{Kind: ast.ExprCast, X: xIdent, CastType: boolTy, ResultType: boolTy}
	body := &ast.Stmt{Kind: ast.StmtBlock, Body: []*ast.Stmt{
		{Kind: ast.StmtDecl, Decls: []*ast.VarDecl{{Name: "b", Type: boolTy, Scope: 1,
			Init: &ast.InitItem{Scalar: cast}}}},
		{Kind: ast.StmtReturn, Expr: &ast.Expr{Kind: ast.ExprIntLit, IntVal: 0, ResultType: i32}},
	}}

	fd := &ast.FuncDecl{
		Name:   "f",
		Type:   unit.Types.Func(i32, []types.TypeID{i32}, false),
		Params: []ast.Param{{Name: "x", Type: i32}},
		Body:   body,
	}

	bd := New(unit, diag.NewBag(16))
	fn, err := bd.BuildFunction(fd)
	if err != nil {
		t.Fatalf("BuildFunction: %v", err)
	}
	var kinds []ir.CastKind
	fn.ForEachOp(func(op *ir.Op) {
		if op.Kind == ir.OpCast {
			kinds = append(kinds, op.Cast.Kind)
		}
	})
	if len(kinds) != 1 || kinds[0] != ir.CastCompareNotZero {
		t.Fatalf("expected exactly one compare-not-zero cast, got %v", kinds)
	}
}

// TestGlobalInitializerAddressLeaves builds a unit holding
//
//	int g = 7;
//	int *p = &g;
//	int *q = &(int){10};
//
// checking that p's initializer folds to the address of g and q's
// compound literal materialises as a fresh defined internal global.
func TestGlobalInitializerAddressLeaves(t *testing.T) {
	unit := ir.NewUnit(target.X86_64Linux())
	i32 := unit.Types.Primitive(types.PrimI32)
	pi32 := unit.Types.Pointer(i32)

	gDecl := &ast.VarDecl{Name: "g", Type: i32, IsGlobal: true,
		Init: &ast.InitItem{Scalar: &ast.Expr{Kind: ast.ExprIntLit, IntVal: 7, ResultType: i32}}}
	pDecl := &ast.VarDecl{Name: "p", Type: pi32, IsGlobal: true,
		Init: &ast.InitItem{Scalar: &ast.Expr{Kind: ast.ExprUnary, UnaryOp: ast.UnaryAddr,
			X:          &ast.Expr{Kind: ast.ExprIdent, Ident: "g", ResultType: i32},
			ResultType: pi32}}}
	qDecl := &ast.VarDecl{Name: "q", Type: pi32, IsGlobal: true,
		Init: &ast.InitItem{Scalar: &ast.Expr{Kind: ast.ExprUnary, UnaryOp: ast.UnaryAddr,
			X: &ast.Expr{Kind: ast.ExprCompoundLiteral, ResultType: i32,
				CompoundInit: &ast.InitItem{Scalar: &ast.Expr{Kind: ast.ExprIntLit, IntVal: 10, ResultType: i32}}},
			ResultType: pi32}}}

	diags := diag.NewBag(16)
	BuildUnit(unit, &ast.Unit{Globals: []*ast.VarDecl{gDecl, pDecl, qDecl}}, diags)
	if diags.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags.Items())
	}

	g, ok := unit.LookupGlobal("g")
	if !ok {
		t.Fatalf("global g not declared")
	}
	p, _ := unit.LookupGlobal("p")
	if len(p.Init) != 1 || p.Init[0].Kind != ir.InitEntryAddr || p.Init[0].Sym != g.ID {
		t.Fatalf("p's initializer should be the address of g, got %+v", p.Init)
	}

	q, _ := unit.LookupGlobal("q")
	if len(q.Init) != 1 || q.Init[0].Kind != ir.InitEntryAddr {
		t.Fatalf("q's initializer should be an address entry, got %+v", q.Init)
	}
	lit := unit.Global(q.Init[0].Sym)
	if lit == nil || lit.DefState != ir.DefDefined || lit.Linkage != ir.LinkageInternal {
		t.Fatalf("compound literal should be a defined internal global, got %+v", lit)
	}
	if len(lit.Init) != 1 || lit.Init[0].Kind != ir.InitEntryInt || lit.Init[0].Int != 10 {
		t.Fatalf("compound literal should be initialised to 10, got %+v", lit.Init)
	}
}
