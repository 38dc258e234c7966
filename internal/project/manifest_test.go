package project

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "c11c.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestLoadRequiresPackageName(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "[build]\nsources = [\"a.c\"]\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for missing [package].name")
	}
}

func TestLoadDefaultsOutputName(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "[package]\nname = \"demo\"\n")
	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Build.Output != "a.out" {
		t.Fatalf("expected default output a.out, got %q", m.Build.Output)
	}
}

func TestResolveSourcesJoinsRelativeToManifestDir(t *testing.T) {
	m := Manifest{Build: BuildSpec{Sources: []string{"main.c", "util.c"}}}
	got := ResolveSources("/proj", m)
	want := []string{"/proj/main.c", "/proj/util.c"}
	for i, g := range got {
		if g != want[i] {
			t.Fatalf("ResolveSources[%d] = %q, want %q", i, g, want[i])
		}
	}
}

func TestResolveTargetDefaultsToX86_64Linux(t *testing.T) {
	d, err := ResolveTarget(Manifest{})
	if err != nil {
		t.Fatalf("ResolveTarget: %v", err)
	}
	if d.PtrSize != 8 {
		t.Fatalf("unexpected default descriptor: %+v", d)
	}
}

func TestFindManifestWalksUpward(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "[package]\nname = \"demo\"\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	path, ok, err := FindManifest(nested)
	if err != nil || !ok {
		t.Fatalf("FindManifest: ok=%v err=%v", ok, err)
	}
	if filepath.Dir(path) != root {
		t.Fatalf("FindManifest found %q, want dir %q", path, root)
	}
}
