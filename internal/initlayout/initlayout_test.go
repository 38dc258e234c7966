package initlayout

import (
	"testing"

	"c11c/internal/ast"
	"c11c/internal/types"
)

func TestFlattenLocalStructWithDesignator(t *testing.T) {
	tin := types.NewInterner(types.PrimI64)
	i32 := tin.Primitive(types.PrimI32)
	st := tin.Struct("point", []types.Field{
		{Name: "x", Type: i32, Offset: 0},
		{Name: "y", Type: i32, Offset: 4},
	})

	yVal := &ast.Expr{Kind: ast.ExprIntLit, IntVal: 7, ResultType: i32}
	item := &ast.InitItem{List: []*ast.InitItem{
		{Designator: ast.InitDesignator{FieldName: "y"}, Scalar: yVal},
	}}

	leaves, err := FlattenLocal(tin, 8, st, item)
	if err != nil {
		t.Fatalf("FlattenLocal: %v", err)
	}
	if len(leaves) != 1 || leaves[0].Offset != 4 || leaves[0].Expr != yVal {
		t.Fatalf("unexpected leaves: %+v", leaves)
	}
}

func TestFlattenGlobalArrayZeroFillsTail(t *testing.T) {
	tin := types.NewInterner(types.PrimI64)
	i32 := tin.Primitive(types.PrimI32)
	arr := tin.Array(i32, 4)

	first := &ast.Expr{Kind: ast.ExprIntLit, IntVal: 1, ResultType: i32}
	item := &ast.InitItem{List: []*ast.InitItem{{Scalar: first}}}

	leaves, err := FlattenGlobal(tin, 8, arr, item)
	if err != nil {
		t.Fatalf("FlattenGlobal: %v", err)
	}
	if len(leaves) != 4 {
		t.Fatalf("expected 4 dense leaves, got %d", len(leaves))
	}
	if leaves[0].Expr != first {
		t.Fatalf("expected leaf 0 to keep the explicit expression")
	}
	for i := 1; i < 4; i++ {
		if leaves[i].Expr.IntVal != 0 {
			t.Fatalf("expected leaf %d to be zero-filled", i)
		}
	}
}

func TestFlattenUnionTakesFirstMemberOnly(t *testing.T) {
	tin := types.NewInterner(types.PrimI64)
	i32 := tin.Primitive(types.PrimI32)
	f32 := tin.Primitive(types.PrimF32)
	un := tin.Union("u", []types.Field{
		{Name: "i", Type: i32, Offset: 0},
		{Name: "f", Type: f32, Offset: 0},
	})

	val := &ast.Expr{Kind: ast.ExprIntLit, IntVal: 42, ResultType: i32}
	item := &ast.InitItem{List: []*ast.InitItem{{Scalar: val}}}

	leaves, err := FlattenLocal(tin, 8, un, item)
	if err != nil {
		t.Fatalf("FlattenLocal: %v", err)
	}
	if len(leaves) != 1 || leaves[0].Type != i32 {
		t.Fatalf("expected exactly one i32 leaf, got %+v", leaves)
	}
}
