// Package oplog is the writer's operation log: the ordered record of
// mutations applied to one buffer, replayed against the other buffer the
// next time the writer acquires a guard, so that both buffers eventually
// converge on the same content.
package oplog

import "github.com/arrenbrecht/flashmap/internal/alias"

// Buffer is the narrow slice of the table collaborator the log needs to
// replay entries against.
type Buffer[K comparable, V any] interface {
	InsertUnique(key K, value alias.Value[V])
	Replace(key K, value alias.Value[V]) (alias.Value[V], bool)
	RemoveEntry(key K) (alias.Value[V], bool)
}

// shrinkCap bounds how large the log's backing array is allowed to remain
// after a replay, so that one unusually large burst of writes doesn't
// permanently inflate every future guard's log allocation.
const shrinkCap = 64

// Log records mutations made on the writer's current side. It is not
// thread-safe; the write guard that owns it is the only thing that ever
// touches it, which the core's single-writer discipline guarantees.
//
// Entries are stored as pointers, not values, so that Evicted can hold a
// pointer to the entry it came from (to flip its leaky bit on Leak)
// without that pointer being invalidated by a later append growing the
// backing slice.
type Log[K comparable, V any] struct {
	entries []*Entry[K, V]
}

// NewLog creates an empty Log.
func NewLog[K comparable, V any]() *Log[K, V] {
	return &Log[K, V]{}
}

// Push appends e and returns a stable pointer to it.
func (l *Log[K, V]) Push(e Entry[K, V]) *Entry[K, V] {
	p := &e
	l.entries = append(l.entries, p)
	return p
}

// Len returns the number of recorded entries.
func (l *Log[K, V]) Len() int {
	return len(l.entries)
}

// Replay applies every recorded entry to buf (the buffer now being brought
// up to date after a publish) and then empties the log. For Replace and
// Remove entries, the value buf held for that key before this replay is
// dropped unless the entry has been marked leaky - meaning the evicted
// value was handed to user code as a Leaked value instead, and destroying
// it here would be a use-after-drop from the user's perspective.
func (l *Log[K, V]) Replay(buf Buffer[K, V]) {
	for _, e := range l.entries {
		switch e.t {
		case entryTypeInsertUnique:
			buf.InsertUnique(e.k, e.v)
		case entryTypeReplace:
			old, ok := buf.Replace(e.k, e.v)
			if ok && !e.leaky {
				old.Drop()
			}
		case entryTypeRemove:
			old, ok := buf.RemoveEntry(e.k)
			if ok && !e.leaky {
				old.Drop()
			}
		case entryTypeDrop:
			if !e.leaky {
				e.v.Drop()
			}
		}
	}
	l.clear()
}

func (l *Log[K, V]) clear() {
	if cap(l.entries) > shrinkCap {
		l.entries = make([]*Entry[K, V], 0, shrinkCap)
		return
	}
	l.entries = l.entries[:0]
}
