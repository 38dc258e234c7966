package intrinsics

import (
	"testing"

	"c11c/internal/ir"
)

func TestLookupVariantsShareForm(t *testing.T) {
	base, ok := Lookup("__builtin_clz")
	if !ok {
		t.Fatalf("expected __builtin_clz to be recognized")
	}
	variant, ok := Lookup("__builtin_clzll")
	if !ok {
		t.Fatalf("expected __builtin_clzll to be recognized")
	}
	if base.Unary != ir.UnClz || variant.Unary != ir.UnClz {
		t.Fatalf("expected both clz variants to lower to UnClz")
	}
}

func TestLookupUnknownName(t *testing.T) {
	if _, ok := Lookup("printf"); ok {
		t.Fatalf("printf should not be an intrinsic")
	}
}

func TestMemsetForm(t *testing.T) {
	d, ok := Lookup("memset")
	if !ok || d.Form != FormMem || d.Mem != MemSet {
		t.Fatalf("expected memset to be a FormMem/MemSet descriptor, got %+v ok=%v", d, ok)
	}
}
