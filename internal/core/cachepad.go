package core

import (
	"github.com/arrenbrecht/flashmap/internal/alias"
	"github.com/arrenbrecht/flashmap/internal/table"
)

// cacheLineSize is conservative for both common x86-64 (64 byte lines) and
// Apple silicon (128 byte lines).
const cacheLineSize = 128

// paddedBufferSlot holds one side of the buffer pair. It's padded to its
// own cache line so that a writer mutating buffers[1-side] never evicts the
// cache line a reader is concurrently scanning in buffers[side]; Go's type
// parameters can't size a padding array off a type parameter's width, so
// unlike RefCount (which pads a single known-width uint64) this pads a
// pointer-sized field directly.
type paddedBufferSlot[K comparable, V any] struct {
	table *table.Table[K, alias.Value[V]]
	_     [cacheLineSize - 8]byte
}
