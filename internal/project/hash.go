package project

import "crypto/sha256"

// Digest is a fixed 256-bit content hash, the cache key currency shared
// between internal/project and internal/cache.
type Digest [32]byte

// HashBytes hashes one source file's content.
func HashBytes(content []byte) Digest {
	return sha256.Sum256(content)
}

// Combine folds a translation unit's source hash together with the
// target triple and any compiler flags that affect codegen, so a cache
// entry invalidates itself when either changes.
func Combine(content Digest, extra ...string) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, e := range extra {
		_, _ = h.Write([]byte(e))
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}
