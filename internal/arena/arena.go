// Package arena implements a bump allocator used to own all IR, AST, and
// string storage created during one compilation.
//
// Objects allocated from an Arena are never individually freed; the whole
// region is released en-masse when a function finishes building or the
// owning Unit is torn down.
package arena

const defaultChunkSize = 64 * 1024

// Arena is a growable set of byte chunks handed out in increasing offsets.
// It is not safe for concurrent use; each compilation owns exactly one.
type Arena struct {
	chunks    [][]byte
	chunkSize int
	cur       int // index into chunks of the chunk currently being filled
	off       int // next free offset within chunks[cur]

	// counters let callers mint stable, arena-scoped ids without storing
	// them anywhere else.
	counters map[string]uint32
}

// New creates an Arena whose chunks grow in units of chunkSize bytes.
// A chunkSize <= 0 selects a reasonable default.
func New(chunkSize int) *Arena {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	a := &Arena{chunkSize: chunkSize, counters: make(map[string]uint32)}
	a.grow(chunkSize)
	return a
}

func (a *Arena) grow(want int) {
	size := a.chunkSize
	if want > size {
		size = want
	}
	a.chunks = append(a.chunks, make([]byte, size))
	a.cur = len(a.chunks) - 1
	a.off = 0
}

// Alloc returns n zeroed bytes with no particular alignment guarantee beyond
// the natural alignment of a byte slice.
func (a *Arena) Alloc(n int) []byte {
	if n <= 0 {
		return nil
	}
	chunk := a.chunks[a.cur]
	if a.off+n > len(chunk) {
		a.grow(n)
		chunk = a.chunks[a.cur]
	}
	b := chunk[a.off : a.off+n : a.off+n]
	a.off += n
	return b
}

// String copies s into arena-owned storage and returns the copy. Use this
// whenever a string crosses from a transient buffer (e.g. a lexer token)
// into long-lived IR/AST storage.
func (a *Arena) String(s string) string {
	if s == "" {
		return ""
	}
	b := a.Alloc(len(s))
	copy(b, s)
	return string(b)
}

// Bytes copies b into arena-owned storage.
func (a *Arena) Bytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := a.Alloc(len(b))
	copy(out, b)
	return out
}

// NextID returns successive 1-based ids for the named counter, scoped to
// this arena. Counters never reset until the Arena itself is discarded.
func (a *Arena) NextID(counter string) uint32 {
	a.counters[counter]++
	return a.counters[counter]
}

// Reset discards all chunks and counters, releasing the arena's storage for
// reuse. Any slices previously handed out must not be touched afterward.
func (a *Arena) Reset() {
	a.chunks = nil
	a.cur = 0
	a.off = 0
	a.counters = make(map[string]uint32)
	a.grow(a.chunkSize)
}
