package driver

import (
	"context"
	"testing"

	"c11c/internal/ast"
	"c11c/internal/cache"
	"c11c/internal/target"
	"c11c/internal/types"
)

type fakeFrontend struct {
	unit *ast.Unit
	err  error
}

func (f fakeFrontend) Parse(ctx context.Context, path string) (*ast.Unit, error) {
	return f.unit, f.err
}

func emptyMainUnit(tin *types.Interner) *ast.Unit {
	i32 := tin.Primitive(types.PrimI32)
	body := &ast.Stmt{Kind: ast.StmtBlock, Body: []*ast.Stmt{
		{Kind: ast.StmtReturn, Expr: &ast.Expr{Kind: ast.ExprIntLit, IntVal: 0, ResultType: i32}},
	}}
	fd := &ast.FuncDecl{
		Name:   "main",
		Type:   tin.Func(i32, nil, false),
		Body:   body,
		IsMain: true,
	}
	return &ast.Unit{Funcs: []*ast.FuncDecl{fd}}
}

func TestClassifyDropsNonCSources(t *testing.T) {
	in := []string{"a.c", "b.h", "c.c", "readme.md"}
	got := classify(in)
	if len(got) != 2 || got[0] != "a.c" || got[1] != "c.c" {
		t.Fatalf("classify(%v) = %v", in, got)
	}
}

func TestRunCompilesEachSource(t *testing.T) {
	tgt := target.X86_64Linux()
	tin := types.NewInterner(types.PrimI64)
	unit := emptyMainUnit(tin)

	events := make(chan Event, 64)
	opts := Options{
		Files:    []string{"a.c", "b.c"},
		Target:   tgt,
		Frontend: fakeFrontend{unit: unit},
		Progress: events,
	}

	results, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if r.Err != nil {
			t.Fatalf("file %s: %v", r.File, r.Err)
		}
	}
	if ExitCode(results) != 0 {
		t.Fatalf("expected exit code 0")
	}

	var sawDone bool
	for ev := range events {
		if ev.Stage == StageIRBuild && ev.Status == StatusDone {
			sawDone = true
		}
	}
	if !sawDone {
		t.Fatalf("expected at least one StageIRBuild/StatusDone event")
	}
}

func TestRunReportsFrontendError(t *testing.T) {
	opts := Options{
		Files:    []string{"broken.c"},
		Target:   target.X86_64Linux(),
		Frontend: fakeFrontend{err: errFrontend{}},
	}
	results, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 1 || results[0].Err == nil {
		t.Fatalf("expected a per-file frontend error")
	}
	if ExitCode(results) != 1 {
		t.Fatalf("expected exit code 1")
	}
}

type errFrontend struct{}

func (errFrontend) Error() string { return "parse failed" }

// countingFrontend records how many times Parse was invoked, so the
// cache test can assert a hit skipped the frontend entirely.
type countingFrontend struct {
	unit  *ast.Unit
	calls *int
}

func (f countingFrontend) Parse(ctx context.Context, path string) (*ast.Unit, error) {
	*f.calls++
	return f.unit, nil
}

func TestRunSecondPassHitsCache(t *testing.T) {
	tin := types.NewInterner(types.PrimI64)
	unit := emptyMainUnit(tin)
	disk, err := cache.OpenAt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenAt: %v", err)
	}
	calls := 0
	readSource := func(path string) ([]byte, error) { return []byte("int main(void){return 0;}"), nil }

	opts := Options{
		Files:      []string{"a.c"},
		Target:     target.X86_64Linux(),
		Frontend:   countingFrontend{unit: unit, calls: &calls},
		Cache:      disk,
		ReadSource: readSource,
	}

	if _, err := Run(context.Background(), opts); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 frontend call on a cold cache, got %d", calls)
	}

	results, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected frontend NOT called again on a warm cache, got %d total calls", calls)
	}
	if results[0].Err != nil {
		t.Fatalf("unexpected error on cache hit: %v", results[0].Err)
	}
}
