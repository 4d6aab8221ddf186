package flashmap

import (
	"runtime"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arrenbrecht/flashmap/internal/alias"
	"github.com/arrenbrecht/flashmap/internal/core"
	"github.com/arrenbrecht/flashmap/pkg/oplog"
)

// WriteHandle is the map's single writer. It owns the operation log
// recording every mutation made since the last flush, and is responsible
// for the publish/synchronize handshake that brings the two buffers back
// into agreement.
type WriteHandle[K comparable, V any] struct {
	core *core.Core[K, V]
	log  *oplog.Log[K, V]
	uid  core.WriterUID
	done atomic.Bool
}

func newWriteHandle[K comparable, V any](c *core.Core[K, V]) *WriteHandle[K, V] {
	h := &WriteHandle[K, V]{core: c, log: oplog.NewLog[K, V](), uid: c.UID()}
	runtime.SetFinalizer(h, (*WriteHandle[K, V]).finalize)
	return h
}

func (h *WriteHandle[K, V]) finalize() {
	if h.done.CompareAndSwap(false, true) {
		h.core.StashReplay(h.log)
	}
}

// Close stashes this handle's unflushed operation log with the core for
// replay at final teardown. It's idempotent; a finalizer does the same
// automatically if the handle is simply dropped.
func (h *WriteHandle[K, V]) Close() {
	h.finalize()
}

// Collector returns a prometheus.Collector exposing this map's live reader
// count, residual, entry count, and publish/park counters. It's never
// registered automatically; callers that want metrics register it with
// their own registry.
func (h *WriteHandle[K, V]) Collector() prometheus.Collector {
	return h.core
}

// Synchronize blocks until every reader still pinning the writer's previous
// side has released its guard. Guard calls this itself; it's exposed
// directly for ReclaimOne/Reclaimer, which need the same guarantee without
// wanting a full guard/publish cycle around it.
func (h *WriteHandle[K, V]) Synchronize() {
	h.core.Synchronize()
}

// Guard synchronizes, replays the operation log accumulated since the last
// guard into the now-idle buffer, and returns a WriteGuard exposing that
// buffer for direct mutation.
func (h *WriteHandle[K, V]) Guard() *WriteGuard[K, V] {
	h.core.Synchronize()
	buf := h.core.WriterSideBuffer()
	h.log.Replay(buf)
	return &WriteGuard[K, V]{bufferView: bufferView[K, V]{buf: buf}, handle: h}
}

// ReclaimOne synchronizes and returns l's owned value. It panics if l was
// leaked from a different map's write handle.
func (h *WriteHandle[K, V]) ReclaimOne(l Leaked[V]) V {
	h.core.Synchronize()
	return reclaim(h.uid, l)
}

// Reclaimer synchronizes once and returns a closure that reclaims any
// number of Leaked values from this map without repeating the
// synchronization per call - useful when draining a batch of leaked values
// collected earlier.
func (h *WriteHandle[K, V]) Reclaimer() func(Leaked[V]) V {
	h.core.Synchronize()
	uid := h.uid
	return func(l Leaked[V]) V { return reclaim(uid, l) }
}

// WriteGuard exposes the buffer currently private to the writer for direct
// mutation. Every mutating call both edits the buffer and appends an
// operation log entry describing the same edit, to be replayed into the
// other buffer the next time Guard is called.
type WriteGuard[K comparable, V any] struct {
	bufferView[K, V]
	handle *WriteHandle[K, V]
}

// Insert stores value under key, returning the value it displaced, if any.
func (g *WriteGuard[K, V]) Insert(key K, value V) (Evicted[K, V], bool) {
	a := alias.New(value)
	if old, present := g.buf.Replace(key, a); present {
		entry := g.handle.log.Push(oplog.Replace(key, a.Copy()))
		return g.evict(entry, old), true
	}
	g.buf.InsertUnique(key, a)
	g.handle.log.Push(oplog.InsertUnique(key, a.Copy()))
	var zero Evicted[K, V]
	return zero, false
}

// Replace recomputes the value stored for an already-present key by calling
// f with the current value, returning the value it displaced. It's a no-op
// returning (zero, false) if key is absent.
func (g *WriteGuard[K, V]) Replace(key K, f func(V) V) (Evicted[K, V], bool) {
	current, ok := g.buf.Get(key)
	if !ok {
		var zero Evicted[K, V]
		return zero, false
	}
	a := alias.New(f(current.Get()))
	old, _ := g.buf.Replace(key, a)
	entry := g.handle.log.Push(oplog.Replace(key, a.Copy()))
	return g.evict(entry, old), true
}

// Remove deletes key, returning the value it held, if present.
func (g *WriteGuard[K, V]) Remove(key K) (Evicted[K, V], bool) {
	old, ok := g.buf.RemoveEntry(key)
	if !ok {
		var zero Evicted[K, V]
		return zero, false
	}
	entry := g.handle.log.Push(oplog.Remove[K, V](key))
	return g.evict(entry, old), true
}

func (g *WriteGuard[K, V]) evict(entry *oplog.Entry[K, V], old alias.Value[V]) Evicted[K, V] {
	return Evicted[K, V]{guard: g, entry: entry, value: old.Get()}
}

// DropLazily schedules value for deferred destruction the next time this
// map's buffers are replayed, rather than dropping it immediately. It
// panics if value was leaked from a different map's write handle.
func (g *WriteGuard[K, V]) DropLazily(value Leaked[V]) {
	if value.uid != g.handle.uid {
		panic("flashmap: leaked value dropped through a different map's write handle")
	}
	g.handle.log.Push(oplog.DropEntry[K](value.value))
}

// Publish records an approximate entry count for metrics and hands the
// buffer to Core.Publish to swap sides and fold outstanding guards into the
// residual count. It does not itself drop anything: every Insert/Replace/
// Remove this guard made already appended a log entry describing the
// displaced value, and the next Guard() call replays that log into the
// other buffer, dropping each displaced value there - unless Evicted.Leak
// flipped its entry's leaky bit first. That's the only point where no guard
// can still reach the other buffer, so it's the only safe, single place a
// drop can happen. Go has no destructor to call this automatically when a
// WriteGuard goes out of scope; callers must call it explicitly.
func (g *WriteGuard[K, V]) Publish() {
	g.handle.core.RecordLen(g.buf.Len())
	g.handle.core.Publish()
}
