package project

import (
	"crypto/sha256"
)

// Digest is a SHA-256 value, the same shape as source.File.Hash.
type Digest [32]byte

// Combine hashes content followed by each of parts, in order.
func Combine(content Digest, parts ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, d := range parts {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// HashString digests s.
func HashString(s string) Digest {
	return sha256.Sum256([]byte(s))
}
