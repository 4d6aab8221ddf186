package oplog

import "github.com/arrenbrecht/flashmap/internal/alias"

// entryType indicates which kind of mutation an oplog entry replays. These
// mirror exactly the edits a write guard can make to the map.
type entryType uint8

const (
	entryTypeInsertUnique entryType = iota
	entryTypeReplace
	entryTypeRemove
	entryTypeDrop
)

// Entry is one recorded mutation, replayed against the other buffer at the
// writer's next guard acquisition. Leaky is set when the value this entry
// would otherwise drop was handed to the caller as a Leaked value instead -
// replay must then skip destroying it, since ownership has moved to user
// code.
type Entry[K comparable, V any] struct {
	t     entryType
	k     K
	v     alias.Value[V]
	leaky bool
}

// InsertUnique records a brand-new key/value pair.
func InsertUnique[K comparable, V any](key K, value alias.Value[V]) Entry[K, V] {
	return Entry[K, V]{t: entryTypeInsertUnique, k: key, v: value}
}

// Replace records an update to an existing key; value is the new value
// that should be planted into the other buffer once this entry replays
// there.
func Replace[K comparable, V any](key K, value alias.Value[V]) Entry[K, V] {
	return Entry[K, V]{t: entryTypeReplace, k: key, v: value}
}

// Remove records a key's removal.
func Remove[K comparable, V any](key K) Entry[K, V] {
	return Entry[K, V]{t: entryTypeRemove, k: key}
}

// DropEntry records a deferred drop of a value that was leaked earlier and
// is now being returned to the map via DropLazily.
func DropEntry[K comparable, V any](value alias.Value[V]) Entry[K, V] {
	return Entry[K, V]{t: entryTypeDrop, v: value}
}

// MarkLeaky flags this entry's value as having been leaked to user code, so
// a future replay skips destroying it.
func (e *Entry[K, V]) MarkLeaky() {
	e.leaky = true
}

// Leaky reports whether MarkLeaky has been called on this entry.
func (e *Entry[K, V]) Leaky() bool {
	return e.leaky
}
