package table

import (
	"hash/maphash"

	"github.com/cespare/xxhash/v2"
)

// Hasher is the pluggable hash function a Table is built around. The map
// requires that the same Hasher instance is shared by both of its buffer
// tables, so that a key hashes identically no matter which side it's looked
// up on. Sharing one instance, rather than minting two that are supposed to
// agree, removes the disagreement hazard entirely.
type Hasher[K any] interface {
	Hash(k K) uint64

	// Clone returns a hasher that agrees with this one on every key's hash.
	// It backs Builder.HasherFrom, which lets a caller supply a prototype
	// hasher instead of an instance or a factory func.
	Clone() Hasher[K]
}

// comparableHasher is the default Hasher for any comparable key type. It's
// backed by hash/maphash.Comparable, which is deterministic for a fixed
// seed: the `comparable` constraint already guarantees deterministic
// equality, and a fixed seed gives deterministic hashing to match.
type comparableHasher[K comparable] struct {
	seed maphash.Seed
}

func (h comparableHasher[K]) Hash(k K) uint64 {
	return maphash.Comparable(h.seed, k)
}

// Clone returns a hasher sharing the same seed, so it agrees with h on
// every key's hash.
func (h comparableHasher[K]) Clone() Hasher[K] {
	return comparableHasher[K]{seed: h.seed}
}

// NewHasher returns the default Hasher for comparable key type K.
func NewHasher[K comparable]() Hasher[K] {
	return comparableHasher[K]{seed: maphash.MakeSeed()}
}

// stringHasher backs NewXXHashStringHasher for the common string-keyed
// case with xxhash instead of maphash. Being seed-free, it hashes a key to
// the same value in every process, which matters to anyone comparing or
// sharding on hash values across map instances.
type stringHasher struct{}

func (stringHasher) Hash(k string) uint64 { return xxhash.Sum64String(k) }

// Clone returns stringHasher itself: xxhash is seed-free, so every instance
// already agrees with every other.
func (h stringHasher) Clone() Hasher[string] { return h }

// NewXXHashStringHasher returns an xxhash-backed Hasher[string].
func NewXXHashStringHasher() Hasher[string] { return stringHasher{} }
