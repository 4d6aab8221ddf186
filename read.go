package flashmap

import (
	"runtime"
	"sync/atomic"

	"github.com/arrenbrecht/flashmap/internal/core"
	"github.com/arrenbrecht/flashmap/internal/slab"
)

// readHandleState carries a ReadHandle's registration with the core. It
// exists separately from ReadHandle so the handle's finalizer can be
// attached to the outer pointer while closing over the state alone; a
// finalizer closure that captured the handle itself would keep it reachable
// forever. Each ReadHandle (and each Clone of one) has its own state - the
// struct is never shared between handles.
type readHandleState[K comparable, V any] struct {
	core   *core.Core[K, V]
	key    slab.Key
	rc     *core.RefCount
	closed atomic.Bool
}

func (s *readHandleState[K, V]) close() {
	if s.closed.CompareAndSwap(false, true) {
		s.core.ReleaseRefcount(s.key)
	}
}

// ReadHandle registers a reader with the map. It may be cloned to register
// additional independent readers (e.g. one per goroutine), and should be
// closed once no longer needed; a finalizer reclaims it automatically if
// the caller forgets, since forgetting to close a handle only delays the
// writer, it never corrupts anything.
type ReadHandle[K comparable, V any] struct {
	inner *readHandleState[K, V]
}

func newReadHandle[K comparable, V any](c *core.Core[K, V]) *ReadHandle[K, V] {
	key, rc := c.NewReader()
	h := &ReadHandle[K, V]{inner: &readHandleState[K, V]{core: c, key: key, rc: rc}}
	runtime.SetFinalizer(h, func(h *ReadHandle[K, V]) { h.inner.close() })
	return h
}

// Clone registers a brand-new reader against the same map and returns a
// handle to it. The returned handle is independent: closing one does not
// affect the other.
func (h *ReadHandle[K, V]) Clone() *ReadHandle[K, V] {
	return newReadHandle[K, V](h.inner.core)
}

// Close deregisters this reader. It's idempotent and safe to call multiple
// times; it's also optional, since a finalizer calls it if the handle is
// simply dropped.
func (h *ReadHandle[K, V]) Close() {
	h.inner.close()
}

// Guard begins a wait-free read session: one fetch-add on the reader's
// refcount, no locks, no waiting. The guard must be closed before the
// reader can be considered "caught up" by a writer's Synchronize.
func (h *ReadHandle[K, V]) Guard() *ReadGuard[K, V] {
	idx := h.inner.rc.Increment()
	buf := h.inner.core.Store().Get(idx)
	return &ReadGuard[K, V]{bufferView: bufferView[K, V]{buf: buf}, state: h.inner, idx: idx}
}

// ReadGuard is a scoped read session against one snapshot of the map.
// Unlike ReadHandle, a ReadGuard must be explicitly closed (no finalizer
// backs it): attaching one to every guard would put a GC registration on
// the hot path this type exists to keep wait-free.
type ReadGuard[K comparable, V any] struct {
	bufferView[K, V]
	state  *readHandleState[K, V]
	idx    core.MapIndex
	closed bool
}

// Close releases the guard: a release fetch-sub on the reader's refcount,
// plus, if the writer moved on while this guard was open, one call to
// release the accumulated residual.
func (g *ReadGuard[K, V]) Close() {
	if g.closed {
		return
	}
	g.closed = true
	post := g.state.rc.Decrement()
	if post != g.idx {
		g.state.core.ReleaseResidual()
	}
}
