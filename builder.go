// Package flashmap is a concurrent, single-writer/many-reader key-value
// map. Readers observe wait-free snapshots through a ReadHandle; the single
// writer mutates its own private buffer through a WriteHandle and exposes
// bulk changes to readers atomically by publishing.
package flashmap

import (
	"go.uber.org/zap"

	"github.com/arrenbrecht/flashmap/internal/core"
	"github.com/arrenbrecht/flashmap/internal/table"
)

// Builder configures and constructs a map. The zero value is ready to use
// and produces the same map New would.
type Builder[K comparable, V any] struct {
	capacity int
	hasher   table.Hasher[K]
	logger   *zap.Logger
}

// NewBuilder returns a Builder with no options set.
func NewBuilder[K comparable, V any]() *Builder[K, V] {
	return &Builder[K, V]{}
}

// Capacity pre-sizes both buffers to hold n entries without growing.
func (b *Builder[K, V]) Capacity(n int) *Builder[K, V] {
	b.capacity = n
	return b
}

// Hasher sets the exact Hasher instance both buffers will share.
func (b *Builder[K, V]) Hasher(h table.Hasher[K]) *Builder[K, V] {
	b.hasher = h
	return b
}

// HasherFunc calls f once and shares the result between both buffers.
func (b *Builder[K, V]) HasherFunc(f func() table.Hasher[K]) *Builder[K, V] {
	b.hasher = f()
	return b
}

// HasherFrom clones proto and shares the clone between both buffers. Use
// this when a prototype hasher is already configured elsewhere (a shared
// seed, a pre-warmed xxhash instance) and cloning it is cheaper or more
// convenient than calling Hasher or HasherFunc directly.
func (b *Builder[K, V]) HasherFrom(proto table.Hasher[K]) *Builder[K, V] {
	b.hasher = proto.Clone()
	return b
}

// Logger sets the *zap.Logger the writer uses for lifecycle events
// (synchronize parking/waking, publish residual counts). Never called on
// the reader hot path. Defaults to a no-op logger.
func (b *Builder[K, V]) Logger(l *zap.Logger) *Builder[K, V] {
	b.logger = l
	return b
}

// Build constructs the map, returning its single WriteHandle and an initial
// ReadHandle. Additional readers are registered via ReadHandle.Clone.
func (b *Builder[K, V]) Build() (*WriteHandle[K, V], *ReadHandle[K, V]) {
	hasher := b.hasher
	if hasher == nil {
		hasher = table.NewHasher[K]()
	}
	c := core.NewCore[K, V](hasher, b.capacity, b.logger)
	return newWriteHandle[K, V](c), newReadHandle[K, V](c)
}

// New constructs a map with default settings.
func New[K comparable, V any]() (*WriteHandle[K, V], *ReadHandle[K, V]) {
	return NewBuilder[K, V]().Build()
}

// NewWithCapacity constructs a map with both buffers pre-sized to hold n
// entries without growing.
func NewWithCapacity[K comparable, V any](n int) (*WriteHandle[K, V], *ReadHandle[K, V]) {
	return NewBuilder[K, V]().Capacity(n).Build()
}
