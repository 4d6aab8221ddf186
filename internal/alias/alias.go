// Package alias provides the aliased-value wrapper that lets the same
// logical value live in both of the map's buffers at once.
//
// In a language with manual memory management this wrapper would have to
// stop the optimizer from assuming the wrapped value is uniquely
// referenced, since two copies of the same bytes exist at once and freeing
// through both would be a double-free. Go values carry no such uniqueness
// assumption and the runtime owns reclamation, so the wrapper here only
// marks where a value is aliased. It does not track alias family
// membership: for values that need deterministic cleanup, the caller makes
// sure at most one member of the family ever runs it.
package alias

// Dropper is implemented by values that need deterministic cleanup once the
// map discards the last alias referencing them (an open file, a pooled
// buffer, a registered callback). Most V types don't implement it, and
// Value.Drop is then a no-op beyond letting the garbage collector do its
// job.
type Dropper interface {
	Drop()
}

// Value wraps a T that may simultaneously be reachable from both of the
// map's buffers. Copy produces another alias of the same logical value, not
// an independent one; Drop or IntoOwned may be called on at most one member
// of the resulting alias family, never on more than one.
type Value[T any] struct {
	v T
}

// New creates a fresh alias family rooted at v.
func New[T any](v T) Value[T] {
	return Value[T]{v: v}
}

// Get is the safe, shared-borrow accessor: reading an alias never requires
// exclusive access.
func (a Value[T]) Get() T {
	return a.v
}

// Copy creates another member of a's alias family. The caller is
// responsible for the contract that at most one member of the family ever
// has Drop or IntoOwned called on it.
func (a Value[T]) Copy() Value[T] {
	return Value[T]{v: a.v}
}

// IntoOwned consumes the alias and returns the owned value, signalling that
// this member of the family is now responsible for it.
func (a Value[T]) IntoOwned() T {
	return a.v
}

// Drop destroys this member of the alias family. If T implements Dropper,
// its Drop method runs exactly once; otherwise this is a no-op and the
// garbage collector reclaims the value whenever the last reference goes
// away.
func (a Value[T]) Drop() {
	if d, ok := any(a.v).(Dropper); ok {
		d.Drop()
	}
}
