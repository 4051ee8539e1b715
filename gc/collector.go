// ABOUTME: Mark-sweep collector for tree nodes with trail-based undo
// ABOUTME: Owns the heap, root set, handle tables, weak maps, and the trail

package gc

import (
	"fmt"
	"log/slog"
	"time"
)

// Collector is a single-goroutine garbage collector for tree nodes.
// It is not safe for concurrent use; give each goroutine its own.
type Collector struct {
	cfg     Config
	heap    *Heap
	logger  *slog.Logger
	metrics *Metrics
	now     func() time.Time
	names   map[NodeID]string

	lockCount  int
	collecting bool

	// sense is the mark-bit value meaning "reached" in the current cycle.
	sense bool

	threshold      int
	timeoutCounter int
	forcePending   bool
	lastCycle      time.Time

	roots   rootTable
	strong  handleTable
	weak    handleTable
	maps    registry[*WeakNodeMap]
	strings map[string]Ref
	trail   Trail

	stats    Stats
	allocs   int // allocations since last cycle
	lastLive int // live bytes reported to metrics
}

// Stats summarises collector activity.
type Stats struct {
	Cycles       int
	ForcedCycles int
	Allocations  int
	FreedObjects int
	FreedBytes   int
	LiveObjects  int
	LiveBytes    int
	MaxBytes     int
}

// Option configures a Collector.
type Option func(*Collector)

// WithConfig replaces DefaultConfig. New panics if cfg does not validate.
func WithConfig(cfg Config) Option {
	return func(c *Collector) { c.cfg = cfg }
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Collector) { c.logger = l }
}

// WithMetrics records cycles into m.
func WithMetrics(m *Metrics) Option {
	return func(c *Collector) { c.metrics = m }
}

// WithClock replaces time.Now for timeout accounting.
func WithClock(now func() time.Time) Option {
	return func(c *Collector) { c.now = now }
}

// WithKindNames names tree-node kinds in snapshots.
func WithKindNames(names map[NodeID]string) Option {
	return func(c *Collector) { c.names = names }
}

// New creates a Collector with an empty heap.
func New(opts ...Option) *Collector {
	c := &Collector{
		cfg:     DefaultConfig(),
		logger:  slog.Default(),
		now:     time.Now,
		strings: make(map[string]Ref),
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.cfg.Validate(); err != nil {
		panic(err)
	}
	c.heap = newHeap(c.cfg.InitialSlots)
	c.threshold = c.cfg.ThresholdBytes
	c.timeoutCounter = c.cfg.TimeoutCheckEvery
	c.lastCycle = c.now()
	c.SetTimeout(c.cfg.Timeout)
	return c
}

// Heap exposes the collector's heap for diagnostics.
func (c *Collector) Heap() *Heap { return c.heap }

// SetTimeout forces a cycle once d has elapsed since the previous one,
// checked every Config.TimeoutCheckEvery allocations. Zero disables it.
func (c *Collector) SetTimeout(d time.Duration) {
	if d < 0 {
		d = 0
	}
	c.cfg.Timeout = d
	c.timeoutCounter = c.cfg.TimeoutCheckEvery
	c.forcePending = false
	c.lastCycle = c.now()
}

// MaxMem returns the heap's high-water mark in bytes.
func (c *Collector) MaxMem() int { return c.heap.max }

// Stats returns a copy of the activity counters.
func (c *Collector) Stats() Stats {
	s := c.stats
	s.LiveObjects = c.heap.objects
	s.LiveBytes = c.heap.live
	s.MaxBytes = c.heap.max
	return s
}

// Allocate returns a new zeroed object of the given shape.
// If the collector is unlocked, a cycle may run first; objects the caller
// has not yet rooted are only safe across Allocate while a LockGuard is held.
func (c *Collector) Allocate(s Shape) Ref {
	if err := s.validate(); err != nil {
		panic(err)
	}
	if c.collecting {
		panic(ErrCollecting)
	}
	size := footprint(s)
	c.beforeAlloc(size)

	if limit := c.cfg.MaxHeapBytes; limit > 0 && c.heap.live+size > limit {
		if c.lockCount == 0 {
			c.collect(reasonExhausted)
		}
		if c.heap.live+size > limit {
			panic(fmt.Errorf("%w: %d live + %d requested > %d", ErrHeapExhausted, c.heap.live, size, limit))
		}
	}

	c.allocs++
	c.stats.Allocations++
	return c.heap.alloc(s, !c.sense)
}

// beforeAlloc runs the timeout and threshold heuristics.
func (c *Collector) beforeAlloc(size int) {
	if c.cfg.Timeout > 0 {
		c.timeoutCounter--
		if c.timeoutCounter <= 0 {
			c.timeoutCounter = c.cfg.TimeoutCheckEvery
			if c.now().Sub(c.lastCycle) >= c.cfg.Timeout {
				c.forcePending = true
			}
		}
	}
	if c.lockCount > 0 {
		return
	}
	if c.forcePending {
		c.collect(reasonTimeout)
		return
	}
	if c.heap.sinceCycle+size > c.threshold {
		c.collect(reasonThreshold)
	}
}

// Trigger runs one full mark-sweep cycle unless the collector is locked.
func (c *Collector) Trigger() {
	if c.lockCount > 0 || c.collecting {
		return
	}
	c.collect(reasonManual)
}

func (c *Collector) collect(reason string) {
	start := time.Now()
	c.collecting = true
	done := false
	defer func() {
		if !done {
			c.clearMarks()
		}
		c.collecting = false
	}()

	m := &Marker{c: c}
	c.markRoots(m)
	freed, freedBytes := c.sweep()
	c.sense = !c.sense
	done = true

	live := c.heap.live
	c.threshold = max(c.cfg.ThresholdBytes, int(float64(live)*c.cfg.GrowthFactor))
	c.heap.sinceCycle = 0
	c.lastCycle = c.now()
	c.timeoutCounter = c.cfg.TimeoutCheckEvery
	c.forcePending = false

	c.stats.Cycles++
	c.stats.FreedObjects += freed
	c.stats.FreedBytes += freedBytes
	elapsed := time.Since(start)
	c.metrics.observeCycle(reason, c.allocs, freed, freedBytes, live-c.lastLive, elapsed)
	c.allocs = 0
	c.lastLive = live

	if reason == reasonTimeout {
		c.stats.ForcedCycles++
		c.logger.Warn("gc: timeout forced cycle",
			slog.Duration("timeout", c.cfg.Timeout),
			slog.Int("freed", freed))
	}
	c.logger.Debug("gc: cycle complete",
		slog.String("reason", reason),
		slog.Int("freed", freed),
		slog.Int("freed_bytes", freedBytes),
		slog.Int("live_objects", c.heap.objects),
		slog.Int("live_bytes", live),
		slog.Int("next_threshold", c.threshold),
		slog.Duration("duration", elapsed))
}

// markRoots sets the mark bit on everything reachable from root
// participants, strong handles, and open trail entries.
func (c *Collector) markRoots(m *Marker) {
	c.roots.each(func(r Root) {
		r.Mark(m)
		m.drain()
	})
	c.strong.each(func(h *handleSlot) {
		m.Mark(h.ref)
	})
	if c.trail.Depth() > 0 {
		c.trail.each(func(loc Loc, prev Ref) {
			m.Mark(loc.Node)
			m.Mark(prev)
		})
	}
	m.drain()
}

// clearMarks resets every object to unreached under the current sense.
// It runs when a mark phase is abandoned by a panic, so that the next cycle
// traverses the children of objects the abandoned phase had already marked.
func (c *Collector) clearMarks() {
	h := c.heap
	for i := range h.slots {
		sl := &h.slots[i]
		if sl.hdr.ID() != KindFree {
			sl.hdr.setMark(!c.sense)
		}
	}
}

// sweep reclaims every object whose mark bit does not match the current
// sense, then drops weak references to reclaimed objects.
func (c *Collector) sweep() (freed, freedBytes int) {
	h := c.heap
	// Walk downwards so the free list hands out low slots first.
	for i := len(h.slots) - 1; i >= 0; i-- {
		sl := &h.slots[i]
		if sl.hdr.ID() == KindFree || sl.hdr.marked(c.sense) {
			continue
		}
		freed++
		freedBytes += sl.size
		h.release(uint32(i))
	}
	if freed == 0 {
		return 0, 0
	}

	c.weak.each(func(hs *handleSlot) {
		if hs.valid && !h.valid(hs.ref) {
			hs.valid = false
		}
	})
	c.maps.each(func(wm *WeakNodeMap) {
		wm.purge(h)
	})
	for s, r := range c.strings {
		if !h.valid(r) {
			delete(c.strings, s)
		}
	}
	return freed, freedBytes
}

// Marker is handed to Root.Mark during the mark phase.
type Marker struct {
	c     *Collector
	stack []uint32
	// record, when set, collects the refs passed to Mark without marking.
	record func(Ref)
}

// Mark makes r and everything reachable from it survive the current cycle.
// Nil is ignored.
func (m *Marker) Mark(r Ref) {
	if r == Nil {
		return
	}
	if m.record != nil {
		m.record(r)
		return
	}
	sl := m.c.heap.get(r)
	if sl.hdr.marked(m.c.sense) {
		return
	}
	sl.hdr.setMark(m.c.sense)
	if len(sl.kids) > 0 {
		m.stack = append(m.stack, r.index())
	}
}

func (m *Marker) drain() {
	slots := m.c.heap.slots
	for len(m.stack) > 0 {
		idx := m.stack[len(m.stack)-1]
		m.stack = m.stack[:len(m.stack)-1]
		for _, k := range slots[idx].kids {
			m.Mark(k)
		}
	}
}
