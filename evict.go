package flashmap

import (
	"github.com/arrenbrecht/flashmap/internal/alias"
	"github.com/arrenbrecht/flashmap/internal/core"
	"github.com/arrenbrecht/flashmap/pkg/oplog"
)

// Evicted wraps a value just displaced from the map by Insert, Replace, or
// Remove. It's only valid for the lifetime of the WriteGuard that produced
// it: unless leaked, the underlying value is dropped at the next replay,
// once no guard can still reach the buffer it was displaced into.
type Evicted[K comparable, V any] struct {
	guard *WriteGuard[K, V]
	entry *oplog.Entry[K, V]
	value V
}

// Value returns the evicted value.
func (e Evicted[K, V]) Value() V {
	return e.value
}

// Leak extends the evicted value's lifetime past the write guard that
// produced it. The next replay will no longer drop it; the caller becomes
// responsible for it, via ReclaimOne/Reclaimer or DropLazily.
func (e Evicted[K, V]) Leak() Leaked[V] {
	e.entry.MarkLeaky()
	return Leaked[V]{value: alias.New(e.value), uid: e.guard.handle.uid}
}

// Leaked owns a value whose lifetime has been extended past the write guard
// that evicted it. It must eventually be consumed via the owning map's
// WriteHandle.ReclaimOne/Reclaimer, or explicitly discarded via
// WriteGuard.DropLazily; simply letting it go out of scope leaks whatever
// resource the value holds.
type Leaked[V any] struct {
	value alias.Value[V]
	uid   core.WriterUID
}

// Value returns the leaked value without consuming it.
func (l Leaked[V]) Value() V {
	return l.value.Get()
}

// IntoInner returns the raw aliased cell, for advanced use after a manual
// Synchronize call on the owning WriteHandle.
func (l Leaked[V]) IntoInner() alias.Value[V] {
	return l.value
}

// reclaim returns l's owned value, panicking if l didn't come from the map
// identified by uid.
func reclaim[V any](uid core.WriterUID, l Leaked[V]) V {
	if l.uid != uid {
		panic("flashmap: leaked value reclaimed through a different map's write handle")
	}
	return l.value.IntoOwned()
}
