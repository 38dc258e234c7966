package diag

import (
	"testing"

	"c11c/internal/source"
)

func TestBagCapacity(t *testing.T) {
	b := NewBag(2)
	sp := source.Span{File: 1, Start: 0, End: 1}
	if !b.Add(New(ArgBadFlag, sp, "one")) {
		t.Fatalf("expected first add to succeed")
	}
	if !b.Add(New(ArgBadFlag, sp, "two")) {
		t.Fatalf("expected second add to succeed")
	}
	if b.Add(New(ArgBadFlag, sp, "three")) {
		t.Fatalf("expected third add to be rejected at capacity")
	}
	if b.Len() != 2 {
		t.Fatalf("len = %d, want 2", b.Len())
	}
}

func TestBagHasErrors(t *testing.T) {
	b := NewBag(10)
	sp := source.Span{}
	b.Add(Warning(ArgBadFlag, sp, "warn"))
	if b.HasErrors() {
		t.Fatalf("warning-only bag should not report errors")
	}
	b.Add(New(ArgBadFlag, sp, "err"))
	if !b.HasErrors() {
		t.Fatalf("expected HasErrors true once an error is present")
	}
}

func TestBagSortOrdersByFileThenOffsetThenSeverity(t *testing.T) {
	b := NewBag(10)
	b.Add(New(ArgBadFlag, source.Span{File: 2, Start: 0}, "z"))
	b.Add(New(ArgBadFlag, source.Span{File: 1, Start: 5}, "b"))
	b.Add(Warning(ArgBadFlag, source.Span{File: 1, Start: 5}, "a-warn"))
	b.Add(New(ArgBadFlag, source.Span{File: 1, Start: 0}, "a"))
	b.Sort()
	items := b.Items()
	want := []string{"a", "b", "a-warn", "z"}
	for i, msg := range want {
		if items[i].Message != msg {
			t.Fatalf("item %d = %q, want %q", i, items[i].Message, msg)
		}
	}
}
