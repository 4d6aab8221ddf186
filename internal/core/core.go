// Package core implements the synchronization engine shared by every
// flashmap instance: the double-buffered store, the packed per-reader
// refcount, and the publish/synchronize handshake that lets the writer
// reclaim a buffer once every reader still pinning it has moved on.
package core

import (
	"math"
	"runtime"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/arrenbrecht/flashmap/internal/alias"
	"github.com/arrenbrecht/flashmap/internal/slab"
	"github.com/arrenbrecht/flashmap/internal/table"
	"github.com/arrenbrecht/flashmap/pkg/oplog"
)

// WriterUID distinguishes one map's writer from another's, so an Evicted
// value leaked from one map can't be reclaimed or dropped through a
// different map's handle.
type WriterUID uint64

var nextWriterUID atomic.Uint64

// NextWriterUID returns a process-wide unique, monotonically increasing id.
func NextWriterUID() WriterUID {
	return WriterUID(nextWriterUID.Add(1))
}

// Core owns the two buffers, the slab of reader refcounts, and the
// publish/synchronize state machine. The flashmap package's ReadHandle and
// WriteHandle are thin wrappers around it; Core itself has no notion of
// "evicted" or "leaked" values, those are a write-guard concern layered on
// top in the flashmap package.
type Core[K comparable, V any] struct {
	store *Store[K, V]

	// mu serializes access to refcounts and writerSide. Readers only take
	// it for handle construction/teardown (NewReader, ReleaseRefcount);
	// the hot increment/decrement path never touches it, which is what
	// keeps the read path wait-free.
	mu         sync.Mutex
	refcounts  *slab.Slab[RefCount]
	writerSide MapIndex

	// residual dual-encodes the outstanding-residual-reader count and the
	// "writer parked" flag; see Synchronize/ReleaseResidual.
	residual atomic.Int64
	parker   *parker

	// pendingReplay is stashed by the WriteHandle's finalizer so that this
	// Core's own finalizer can replay it during final teardown, in case the
	// write handle went away with operations still unflushed.
	pendingReplay *oplog.Log[K, V]

	uid    WriterUID
	logger *zap.Logger

	publishes atomic.Uint64
	parks     atomic.Uint64
	approxLen atomic.Int64
}

// NewCore builds a Core with both buffers pre-sized to capacity and sharing
// hasher. logger may be nil, in which case writer-lifecycle events are
// discarded.
func NewCore[K comparable, V any](hasher table.Hasher[K], capacity int, logger *zap.Logger) *Core[K, V] {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Core[K, V]{
		store: NewStore[K, V](hasher, capacity),
		// The writer starts owning Second so that a fresh RefCount's side
		// bit (derived from writerSide.Other() in NewReader) is zero,
		// pointing readers at First.
		writerSide: Second,
		refcounts:  slab.New[RefCount](),
		parker:     newParker(),
		uid:        NextWriterUID(),
		logger:     logger,
	}
	runtime.SetFinalizer(c, (*Core[K, V]).finalize)
	return c
}

// UID identifies this Core's writer for cross-map misuse detection.
func (c *Core[K, V]) UID() WriterUID {
	return c.uid
}

// Store returns the buffer store backing this Core.
func (c *Core[K, V]) Store() *Store[K, V] {
	return c.store
}

// NewReader registers a new reader, returning its stable refcount key and a
// pointer to its cell. The reader's first guard will observe whichever
// side is not currently the writer's.
func (c *Core[K, V]) NewReader() (slab.Key, *RefCount) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key, rc := c.refcounts.Reserve()
	rc.Init(c.writerSide.Other())
	return key, rc
}

// ReleaseRefcount deregisters a reader whose handle is going away. The
// reader must hold no outstanding guard.
func (c *Core[K, V]) ReleaseRefcount(key slab.Key) {
	c.mu.Lock()
	c.refcounts.Remove(key)
	c.mu.Unlock()
}

// ReleaseResidual is called by a reader whose guard release observed that
// the writer had moved on since the guard was acquired (a "residual"
// reader). It's the reader-side half of the synchronize handshake.
func (c *Core[K, V]) ReleaseResidual() {
	newVal := c.residual.Add(-1)
	old := newVal + 1
	if old != math.MinInt64+1 {
		return
	}
	c.residual.Store(0)
	c.parker.Unpark()
}

// Synchronize blocks the writer until every residual reader from the
// previous publish has released its guard. It's a no-op when there are
// none.
func (c *Core[K, V]) Synchronize() {
	if c.residual.Load() == 0 {
		return
	}
	newVal := c.residual.Add(math.MinInt64)
	old := newVal - math.MinInt64
	if old == 0 {
		c.residual.Store(0)
		return
	}
	c.parks.Add(1)
	c.logger.Debug("writer parked", zap.Int64("residual", old))
	for {
		c.parker.Park()
		if c.residual.Load() == 0 {
			break
		}
	}
	c.logger.Debug("writer resumed")
}

// WriterSide returns the buffer index currently private to the writer.
func (c *Core[K, V]) WriterSide() MapIndex {
	return c.writerSide
}

// WriterSideBuffer returns the table the writer may freely mutate. Callers
// must have already called Synchronize since the last Publish.
func (c *Core[K, V]) WriterSideBuffer() *table.Table[K, alias.Value[V]] {
	return c.store.Get(c.writerSide)
}

// Publish flips the writer's notion of which side is private, flips every
// reader's side bit, and folds the outstanding guard counts observed during
// that flip into residual. Preconditions: residual == 0 (established by the
// Synchronize that must precede every guard acquisition).
func (c *Core[K, V]) Publish() {
	c.mu.Lock()
	c.writerSide = c.writerSide.Other()
	var total int64
	c.refcounts.Each(func(_ slab.Key, rc *RefCount) {
		total += int64(rc.SwapSide())
	})
	c.mu.Unlock()

	if total < 0 {
		abortProcess("flashmap: residual overflow: total live reader guards exceeds the representable range")
	}
	c.residual.Add(total)
	c.publishes.Add(1)
	c.logger.Debug("publish", zap.Int64("residual", total))
}

// StashReplay records a write handle's still-unflushed operation log so
// that final teardown (Core.finalize) can apply it before the writer-side
// buffer is drained. Called by WriteHandle's finalizer.
func (c *Core[K, V]) StashReplay(log *oplog.Log[K, V]) {
	c.mu.Lock()
	c.pendingReplay = log
	c.mu.Unlock()
}

// RecordLen stashes an approximate entry count for metrics purposes. It's
// only ever called from the single writer goroutine, at a point where it
// still has exclusive access to the buffer being measured, so the stored
// value never reflects a table being concurrently mutated.
func (c *Core[K, V]) RecordLen(n int) {
	c.approxLen.Store(int64(n))
}

// finalize runs once no ReadHandle or WriteHandle referencing this Core is
// reachable anymore. Go has no deterministic destructor to hook this to a
// guaranteed point in time, so this is a best-effort reclamation path run by
// the garbage collector: it replays whatever operations a write handle left
// unflushed into the (now long-stale) writer-side buffer, then drains the
// other buffer, dropping every value still aliased there.
func (c *Core[K, V]) finalize() {
	c.mu.Lock()
	log := c.pendingReplay
	c.pendingReplay = nil
	writerSide := c.writerSide
	c.mu.Unlock()

	if log != nil {
		log.Replay(c.store.Get(writerSide))
	}
	c.store.Get(writerSide.Other()).Drain(func(_ K, v alias.Value[V]) {
		v.Drop()
	})
}
