// Package project loads the optional c11c.toml project manifest: an
// upward directory walk to find the manifest, and a toml
// decode-with-metadata pass to tell an absent section apart from an
// empty one.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"c11c/internal/target"
)

// Manifest is the decoded shape of c11c.toml.
type Manifest struct {
	Package PackageSpec `toml:"package"`
	Build   BuildSpec   `toml:"build"`
}

// PackageSpec is the [package] table: project identity.
type PackageSpec struct {
	Name string `toml:"name"`
}

// BuildSpec is the [build] table: default sources, output name, target.
type BuildSpec struct {
	Sources []string `toml:"sources"`
	Output  string   `toml:"output"`
	Target  string   `toml:"target"` // e.g. "x86_64-linux", "aarch64-linux"
	Jobs    int      `toml:"jobs"`
}

var (
	// ErrPackageSectionMissing reports a manifest with no [package] table.
	ErrPackageSectionMissing = errors.New("missing [package]")
	// ErrPackageNameMissing reports a [package] table with no name.
	ErrPackageNameMissing = errors.New("missing [package].name")
)

// FindManifest walks upward from startDir looking for c11c.toml.
func FindManifest(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "c11c.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load parses path into a Manifest, requiring [package].name to be set.
func Load(path string) (Manifest, error) {
	var m Manifest
	meta, err := toml.DecodeFile(path, &m)
	if err != nil {
		return Manifest{}, fmt.Errorf("%s: parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return Manifest{}, fmt.Errorf("%s: %w", path, ErrPackageSectionMissing)
	}
	m.Package.Name = strings.TrimSpace(m.Package.Name)
	if !meta.IsDefined("package", "name") || m.Package.Name == "" {
		return Manifest{}, fmt.Errorf("%s: %w", path, ErrPackageNameMissing)
	}
	if m.Build.Output == "" {
		m.Build.Output = "a.out"
	}
	return m, nil
}

// ResolveTarget maps the manifest's [build].target string to a
// target.Descriptor, defaulting to x86_64-linux when unset.
func ResolveTarget(m Manifest) (target.Descriptor, error) {
	triple := strings.TrimSpace(m.Build.Target)
	if triple == "" {
		return target.X86_64Linux(), nil
	}
	return target.ParseTriple(triple)
}

// ResolveSources expands Build.Sources against dir, which should be the
// manifest's containing directory, so relative entries in c11c.toml
// resolve the same way regardless of the caller's working directory.
func ResolveSources(dir string, m Manifest) []string {
	out := make([]string, 0, len(m.Build.Sources))
	for _, s := range m.Build.Sources {
		if filepath.IsAbs(s) {
			out = append(out, s)
			continue
		}
		out = append(out, filepath.Join(dir, s))
	}
	return out
}
