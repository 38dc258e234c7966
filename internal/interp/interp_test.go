package interp_test

import (
	"bytes"
	"testing"

	"c11c/internal/ast"
	"c11c/internal/diag"
	"c11c/internal/interp"
	"c11c/internal/ir"
	"c11c/internal/irbuilder"
	"c11c/internal/target"
	"c11c/internal/types"
)

// buildAndRun lowers astUnit through the real irbuilder pipeline (rather
// than hand-rolled ir.Function values) so these tests exercise the actual
// builder/interpreter seam, the same fixture style irbuilder's own tests
// use for ast.Unit construction.
func buildAndRun(t *testing.T, unit *ir.Unit, astUnit *ast.Unit, entry string, rt interp.Runtime) (int, error) {
	t.Helper()
	diags := diag.NewBag(16)
	irbuilder.BuildUnit(unit, astUnit, diags)
	if diags.HasErrors() {
		t.Fatalf("BuildUnit reported diagnostics: %v", diags.Items())
	}
	return interp.Run(unit, entry, nil, rt)
}

// TestRunCrossFunctionCall lowers and interprets:
//
//	int add(int a, int b) { return a + b; }
//	int main(void) { return add(2, 3); }
//
// exercising a call to a function defined elsewhere in the same unit.
func TestRunCrossFunctionCall(t *testing.T) {
	unit := ir.NewUnit(target.X86_64Linux())
	i32 := unit.Types.Primitive(types.PrimI32)

	a := &ast.Expr{Kind: ast.ExprIdent, Ident: "a", Scope: 1, ResultType: i32}
	b := &ast.Expr{Kind: ast.ExprIdent, Ident: "b", Scope: 2, ResultType: i32}
	sum := &ast.Expr{Kind: ast.ExprBinary, BinOp: ast.BinAdd, L: a, R: b, ResultType: i32}
	addFn := &ast.FuncDecl{
		Name:   "add",
		Type:   unit.Types.Func(i32, []types.TypeID{i32, i32}, false),
		Params: []ast.Param{{Name: "a", Type: i32}, {Name: "b", Type: i32}},
		Body:   &ast.Stmt{Kind: ast.StmtBlock, Body: []*ast.Stmt{{Kind: ast.StmtReturn, Expr: sum}}},
	}

	callee := &ast.Expr{Kind: ast.ExprIdent, Ident: "add", ResultType: addFn.Type}
	two := &ast.Expr{Kind: ast.ExprIntLit, IntVal: 2, ResultType: i32}
	three := &ast.Expr{Kind: ast.ExprIntLit, IntVal: 3, ResultType: i32}
	call := &ast.Expr{Kind: ast.ExprCall, Callee: callee, Args: []*ast.Expr{two, three}, ResultType: i32}
	mainFn := &ast.FuncDecl{
		Name: "main",
		Type: unit.Types.Func(i32, nil, false),
		Body: &ast.Stmt{Kind: ast.StmtBlock, Body: []*ast.Stmt{{Kind: ast.StmtReturn, Expr: call}}},
	}

	astUnit := &ast.Unit{Funcs: []*ast.FuncDecl{addFn, mainFn}}
	code, err := buildAndRun(t, unit, astUnit, "main", interp.NewCapturingRuntime(&bytes.Buffer{}))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if code != 5 {
		t.Fatalf("add(2,3): got exit code %d, want 5", code)
	}
}

// TestRunGlobalReadWrite lowers and interprets:
//
//	int counter;
//	int bump(void) { counter = counter + 1; return counter; }
//	int main(void) { bump(); return bump(); }
//
// exercising a non-promoted file-scope variable read and write from two
// different function bodies.
func TestRunGlobalReadWrite(t *testing.T) {
	unit := ir.NewUnit(target.X86_64Linux())
	i32 := unit.Types.Primitive(types.PrimI32)

	counterDecl := &ast.VarDecl{Name: "counter", Type: i32, Scope: ast.FileScope, IsGlobal: true}

	counterRead := &ast.Expr{Kind: ast.ExprIdent, Ident: "counter", ResultType: i32}
	one := &ast.Expr{Kind: ast.ExprIntLit, IntVal: 1, ResultType: i32}
	incr := &ast.Expr{Kind: ast.ExprBinary, BinOp: ast.BinAdd, L: counterRead, R: one, ResultType: i32}
	counterWrite := &ast.Expr{Kind: ast.ExprIdent, Ident: "counter", ResultType: i32}
	assign := &ast.Expr{Kind: ast.ExprAssign, Assignee: counterWrite, Value: incr, ResultType: i32}
	counterRet := &ast.Expr{Kind: ast.ExprIdent, Ident: "counter", ResultType: i32}

	bumpFn := &ast.FuncDecl{
		Name: "bump",
		Type: unit.Types.Func(i32, nil, false),
		Body: &ast.Stmt{Kind: ast.StmtBlock, Body: []*ast.Stmt{
			{Kind: ast.StmtExpr, Expr: assign},
			{Kind: ast.StmtReturn, Expr: counterRet},
		}},
	}

	callBump := func() *ast.Expr {
		return &ast.Expr{Kind: ast.ExprCall, Callee: &ast.Expr{Kind: ast.ExprIdent, Ident: "bump", ResultType: bumpFn.Type}, ResultType: i32}
	}
	mainFn := &ast.FuncDecl{
		Name: "main",
		Type: unit.Types.Func(i32, nil, false),
		Body: &ast.Stmt{Kind: ast.StmtBlock, Body: []*ast.Stmt{
			{Kind: ast.StmtExpr, Expr: callBump()},
			{Kind: ast.StmtReturn, Expr: callBump()},
		}},
	}

	astUnit := &ast.Unit{Globals: []*ast.VarDecl{counterDecl}, Funcs: []*ast.FuncDecl{bumpFn, mainFn}}
	code, err := buildAndRun(t, unit, astUnit, "main", interp.NewCapturingRuntime(&bytes.Buffer{}))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if code != 2 {
		t.Fatalf("two bumps of a zero-initialised global: got exit code %d, want 2", code)
	}
}

// TestRunPutcharBuiltin calls an externally-declared putchar and checks
// the byte lands in the captured runtime's stdout.
func TestRunPutcharBuiltin(t *testing.T) {
	unit := ir.NewUnit(target.X86_64Linux())
	i32 := unit.Types.Primitive(types.PrimI32)
	putcharType := unit.Types.Func(i32, []types.TypeID{i32}, false)
	unit.DeclareGlobal("putchar", ir.GlobalFunc, putcharType, ir.LinkageExternal)

	callee := &ast.Expr{Kind: ast.ExprIdent, Ident: "putchar", ResultType: putcharType}
	arg := &ast.Expr{Kind: ast.ExprIntLit, IntVal: 'A', ResultType: i32}
	call := &ast.Expr{Kind: ast.ExprCall, Callee: callee, Args: []*ast.Expr{arg}, ResultType: i32}
	zero := &ast.Expr{Kind: ast.ExprIntLit, IntVal: 0, ResultType: i32}

	mainFn := &ast.FuncDecl{
		Name: "main",
		Type: unit.Types.Func(i32, nil, false),
		Body: &ast.Stmt{Kind: ast.StmtBlock, Body: []*ast.Stmt{
			{Kind: ast.StmtExpr, Expr: call},
			{Kind: ast.StmtReturn, Expr: zero},
		}},
	}

	astUnit := &ast.Unit{Funcs: []*ast.FuncDecl{mainFn}}
	var out bytes.Buffer
	code, err := buildAndRun(t, unit, astUnit, "main", interp.NewCapturingRuntime(&out))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if code != 0 {
		t.Fatalf("got exit code %d, want 0", code)
	}
	if out.String() != "A" {
		t.Fatalf("captured stdout = %q, want %q", out.String(), "A")
	}
}

// TestRunPrintfFormatsIntAndString exercises the host printf bridge's %d
// and %s conversions together, including reading a string literal global
// back out of simulated memory.
func TestRunPrintfFormatsIntAndString(t *testing.T) {
	unit := ir.NewUnit(target.X86_64Linux())
	i32 := unit.Types.Primitive(types.PrimI32)
	charPtr := unit.Types.Pointer(unit.Types.Builtins().Char)
	printfType := unit.Types.Func(i32, []types.TypeID{charPtr}, true)
	unit.DeclareGlobal("printf", ir.GlobalFunc, printfType, ir.LinkageExternal)

	callee := &ast.Expr{Kind: ast.ExprIdent, Ident: "printf", ResultType: printfType}
	format := &ast.Expr{Kind: ast.ExprStringLit, StringVal: "count=%d name=%s\n", ResultType: charPtr}
	count := &ast.Expr{Kind: ast.ExprIntLit, IntVal: 7, ResultType: i32}
	name := &ast.Expr{Kind: ast.ExprStringLit, StringVal: "ok", ResultType: charPtr}
	call := &ast.Expr{Kind: ast.ExprCall, Callee: callee, Args: []*ast.Expr{format, count, name}, Variadic: true, ResultType: i32}
	zero := &ast.Expr{Kind: ast.ExprIntLit, IntVal: 0, ResultType: i32}

	mainFn := &ast.FuncDecl{
		Name: "main",
		Type: unit.Types.Func(i32, nil, false),
		Body: &ast.Stmt{Kind: ast.StmtBlock, Body: []*ast.Stmt{
			{Kind: ast.StmtExpr, Expr: call},
			{Kind: ast.StmtReturn, Expr: zero},
		}},
	}

	astUnit := &ast.Unit{Funcs: []*ast.FuncDecl{mainFn}}
	var out bytes.Buffer
	code, err := buildAndRun(t, unit, astUnit, "main", interp.NewCapturingRuntime(&out))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if code != 0 {
		t.Fatalf("got exit code %d, want 0", code)
	}
	want := "count=7 name=ok\n"
	if out.String() != want {
		t.Fatalf("captured stdout = %q, want %q", out.String(), want)
	}
}

// TestRunDivByZeroTraps checks that a signed integer division by zero
// surfaces as a *interp.Trap rather than a Go panic.
func TestRunDivByZeroTraps(t *testing.T) {
	unit := ir.NewUnit(target.X86_64Linux())
	i32 := unit.Types.Primitive(types.PrimI32)

	zero := &ast.Expr{Kind: ast.ExprIntLit, IntVal: 0, ResultType: i32}
	one := &ast.Expr{Kind: ast.ExprIntLit, IntVal: 1, ResultType: i32}
	div := &ast.Expr{Kind: ast.ExprBinary, BinOp: ast.BinDiv, L: one, R: zero, ResultType: i32}
	mainFn := &ast.FuncDecl{
		Name: "main",
		Type: unit.Types.Func(i32, nil, false),
		Body: &ast.Stmt{Kind: ast.StmtBlock, Body: []*ast.Stmt{{Kind: ast.StmtReturn, Expr: div}}},
	}

	astUnit := &ast.Unit{Funcs: []*ast.FuncDecl{mainFn}}
	_, err := buildAndRun(t, unit, astUnit, "main", interp.NewCapturingRuntime(&bytes.Buffer{}))
	if err == nil {
		t.Fatalf("expected a trap, got nil error")
	}
	trap, ok := err.(*interp.Trap)
	if !ok {
		t.Fatalf("expected *interp.Trap, got %T (%v)", err, err)
	}
	if trap.Code != interp.TrapDivByZero {
		t.Fatalf("trap code = %v, want %v", trap.Code, interp.TrapDivByZero)
	}
}
