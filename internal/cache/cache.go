// Package cache is a small on-disk object cache keyed by source hash,
// letting the driver skip re-running the frontend and IR builder on an
// unchanged translation unit. XDG-style cache directory, atomic
// write-temp-then-rename, msgpack-encoded payloads.
package cache

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"c11c/internal/project"
)

// schemaVersion guards the on-disk payload shape; bump when Entry
// changes so stale caches are invalidated rather than misdecoded.
const schemaVersion uint16 = 1

// Entry is what gets cached per translation unit: enough to skip
// reporting the same diagnostics and to know the unit compiled clean,
// without re-running the frontend or IR builder.
type Entry struct {
	Schema      uint16
	SourcePath  string
	ContentHash project.Digest
	Broken      bool
	Diagnostics []string // diagnostic messages recorded with the entry
}

// Disk is a thread-safe on-disk cache rooted at one directory.
type Disk struct {
	mu  sync.RWMutex
	dir string
}

// Open initializes a Disk cache under the standard XDG cache location
// for app (e.g. "c11c"), creating it if absent.
func Open(app string) (*Disk, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenAt(filepath.Join(base, app))
}

// OpenAt initializes a Disk cache rooted at an explicit directory,
// creating it if absent. Open delegates here; callers that need a
// non-XDG location (tests, an explicit --cache-dir flag) use this
// directly.
func OpenAt(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Disk{dir: dir}, nil
}

func (d *Disk) pathFor(key project.Digest) string {
	return filepath.Join(d.dir, "units", hex.EncodeToString(key[:])+".mp")
}

// Put serializes and atomically writes entry under key.
func (d *Disk) Put(key project.Digest, entry *Entry) error {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	entry.Schema = schemaVersion
	p := d.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmpName := f.Name()
	defer os.Remove(tmpName)

	if err := msgpack.NewEncoder(f).Encode(entry); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, p)
}

// Get reads and deserializes the entry stored under key, if any.
func (d *Disk) Get(key project.Digest) (*Entry, bool, error) {
	if d == nil {
		return nil, false, nil
	}
	d.mu.RLock()
	defer d.mu.RUnlock()

	f, err := os.Open(d.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var entry Entry
	if err := msgpack.NewDecoder(f).Decode(&entry); err != nil {
		return nil, false, err
	}
	if entry.Schema != schemaVersion {
		return nil, false, nil
	}
	return &entry, true, nil
}

// DropAll invalidates every cached entry by removing the cache directory.
// Entries written under an older schemaVersion need no DropAll: Get
// already reports them as misses.
func (d *Disk) DropAll() error {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return os.RemoveAll(d.dir)
}
