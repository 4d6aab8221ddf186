package core

import (
	"github.com/arrenbrecht/flashmap/internal/alias"
	"github.com/arrenbrecht/flashmap/internal/table"
)

// Store owns the two buffer tables. Both halves exist for the lifetime of
// the Store; only Core ever chooses which half is "writer side" vs "reader
// side" at a given moment, and only the writer's single goroutine ever
// mutates either table.
type Store[K comparable, V any] struct {
	buffers [2]paddedBufferSlot[K, V]
}

// NewStore allocates both buffer tables up front sharing the one hasher, so
// that they're guaranteed to agree on every key's hash. A key must land in
// the same slot chain on both sides or replay would diverge the buffers.
func NewStore[K comparable, V any](hasher table.Hasher[K], capacity int) *Store[K, V] {
	s := &Store[K, V]{}
	s.buffers[0].table = table.NewWithCapacity[K, alias.Value[V]](capacity, hasher)
	s.buffers[1].table = table.NewWithCapacity[K, alias.Value[V]](capacity, hasher)
	return s
}

// Get returns the table backing the given side.
func (s *Store[K, V]) Get(idx MapIndex) *table.Table[K, alias.Value[V]] {
	return s.buffers[idx].table
}
