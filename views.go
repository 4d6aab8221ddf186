package flashmap

import (
	"github.com/arrenbrecht/flashmap/internal/alias"
	"github.com/arrenbrecht/flashmap/internal/table"
)

// bufferView is the read-only surface shared by ReadGuard and WriteGuard: a
// write guard can always do everything a read guard can, against the same
// underlying table type.
type bufferView[K comparable, V any] struct {
	buf *table.Table[K, alias.Value[V]]
}

// Len returns the number of entries visible through this guard.
func (v bufferView[K, V]) Len() int {
	return v.buf.Len()
}

// IsEmpty reports whether the guard sees no entries.
func (v bufferView[K, V]) IsEmpty() bool {
	return v.buf.IsEmpty()
}

// ContainsKey reports whether key is present.
func (v bufferView[K, V]) ContainsKey(key K) bool {
	_, ok := v.buf.Get(key)
	return ok
}

// Get returns the value stored for key, if present.
func (v bufferView[K, V]) Get(key K) (V, bool) {
	a, ok := v.buf.Get(key)
	if !ok {
		var zero V
		return zero, false
	}
	return a.Get(), true
}

// Iter calls fn for every key/value pair in unspecified order, stopping
// early if fn returns false.
func (v bufferView[K, V]) Iter(fn func(K, V) bool) {
	v.buf.Iter(func(k K, a alias.Value[V]) bool {
		return fn(k, a.Get())
	})
}

// Keys calls fn for every key in unspecified order, stopping early if fn
// returns false.
func (v bufferView[K, V]) Keys(fn func(K) bool) {
	v.buf.Iter(func(k K, _ alias.Value[V]) bool {
		return fn(k)
	})
}

// Values calls fn for every value in unspecified order, stopping early if
// fn returns false.
func (v bufferView[K, V]) Values(fn func(V) bool) {
	v.buf.Iter(func(_ K, a alias.Value[V]) bool {
		return fn(a.Get())
	})
}
