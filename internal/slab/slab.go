// Package slab is the stable-address allocator the core uses to hand each
// reader its own refcount cell. A slice would relocate on growth and
// invalidate every reader's pointer into it; a slab gives O(1) insert and
// remove plus a stable pointer per live entry, at the cost of one free-list
// indirection, which is exactly the tradeoff the core needs since readers
// hold a direct pointer to their cell for the lifetime of their handle.
package slab

// Key identifies a slot handed out by Insert. It remains valid until the
// corresponding Remove call.
type Key int

// entry is heap-allocated individually and only ever referenced through a
// pointer stored in Slab.entries; growing that slice of pointers never
// moves an entry itself, which is what keeps the *T returned by Insert
// valid for as long as the slot is live.
type entry[T any] struct {
	value  T
	inUse  bool
	nextFr Key
}

// Slab is not safe for concurrent use; callers (the core) serialize access
// with their own lock.
type Slab[T any] struct {
	entries []*entry[T]
	free    Key
	len     int
}

const noFree = Key(-1)

// New creates an empty Slab.
func New[T any]() *Slab[T] {
	return &Slab[T]{free: noFree}
}

// Insert stores value in a free slot (or a freshly appended one) and
// returns its stable Key plus a pointer to the stored value that remains
// valid until the slot is removed.
func (s *Slab[T]) Insert(value T) (Key, *T) {
	s.len++
	if s.free != noFree {
		k := s.free
		e := s.entries[k]
		s.free = e.nextFr
		e.value = value
		e.inUse = true
		return k, &e.value
	}
	e := &entry[T]{value: value, inUse: true}
	s.entries = append(s.entries, e)
	k := Key(len(s.entries) - 1)
	return k, &e.value
}

// Reserve allocates a zeroed slot and returns its stable Key plus a pointer
// to it, for element types that must be initialized in place rather than
// copied in (anything carrying an atomic or a lock).
func (s *Slab[T]) Reserve() (Key, *T) {
	s.len++
	if s.free != noFree {
		k := s.free
		e := s.entries[k]
		s.free = e.nextFr
		e.inUse = true
		return k, &e.value
	}
	e := &entry[T]{inUse: true}
	s.entries = append(s.entries, e)
	return Key(len(s.entries) - 1), &e.value
}

// Get returns the stable pointer for a live key.
func (s *Slab[T]) Get(k Key) *T {
	e := s.entries[k]
	if !e.inUse {
		panic("slab: get of removed key")
	}
	return &e.value
}

// Remove frees the slot at k, making it eligible for reuse.
func (s *Slab[T]) Remove(k Key) {
	e := s.entries[k]
	if !e.inUse {
		panic("slab: double remove")
	}
	var zero T
	e.value = zero
	e.inUse = false
	e.nextFr = s.free
	s.free = k
	s.len--
}

// Len returns the number of live entries.
func (s *Slab[T]) Len() int {
	return s.len
}

// Each calls fn for every live entry's key and stable pointer.
func (s *Slab[T]) Each(fn func(Key, *T)) {
	for i, e := range s.entries {
		if e.inUse {
			fn(Key(i), &e.value)
		}
	}
}
