package cache

import (
	"testing"

	"c11c/internal/project"
)

func TestPutGetRoundTrip(t *testing.T) {
	d := &Disk{dir: t.TempDir()}
	key := project.HashBytes([]byte("int main(void){return 0;}"))
	entry := &Entry{SourcePath: "main.c", ContentHash: key, Diagnostics: []string{"note: ok"}}

	if err := d.Put(key, entry); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := d.Get(key)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if got.SourcePath != "main.c" || len(got.Diagnostics) != 1 {
		t.Fatalf("unexpected entry: %+v", got)
	}
}

func TestGetMissReturnsFalse(t *testing.T) {
	d := &Disk{dir: t.TempDir()}
	_, ok, err := d.Get(project.HashBytes([]byte("nope")))
	if err != nil || ok {
		t.Fatalf("expected a clean miss, got ok=%v err=%v", ok, err)
	}
}

func TestDropAllRemovesEntries(t *testing.T) {
	d := &Disk{dir: t.TempDir()}
	key := project.HashBytes([]byte("x"))
	if err := d.Put(key, &Entry{SourcePath: "x.c", ContentHash: key}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := d.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	_, ok, err := d.Get(key)
	if err != nil || ok {
		t.Fatalf("expected entry gone after DropAll, ok=%v err=%v", ok, err)
	}
}
