// ABOUTME: Strong and weak handles that track individual nodes outside the heap
// ABOUTME: Strong handles keep referents alive; weak handles read Nil once collected

package gc

// handleSlot is one registered handle. valid is only meaningful for weak handles.
type handleSlot struct {
	ref   Ref
	valid bool
}

type handleTable struct {
	slots registry[*handleSlot]
}

func (t *handleTable) add(r Ref) (*handleSlot, int) {
	hs := &handleSlot{ref: r, valid: r != Nil}
	return hs, t.slots.add(hs)
}

func (t *handleTable) each(fn func(*handleSlot)) { t.slots.each(fn) }

func (t *handleTable) remove(hs *handleSlot, idx int) {
	if idx >= 0 && idx < len(t.slots.items) && t.slots.items[idx] == hs {
		t.slots.remove(idx)
	}
}

func (t *handleTable) len() int { return t.slots.len() }

// handle is the shared registration logic of StrongHandle and WeakHandle.
type handle struct {
	c     *Collector
	table *handleTable
	hs    *handleSlot
	idx   int
}

func (c *Collector) newHandle(t *handleTable, r Ref) handle {
	if c.collecting {
		panic(ErrCollecting)
	}
	if r != Nil {
		c.heap.get(r)
	}
	hs, idx := t.add(r)
	return handle{c: c, table: t, hs: hs, idx: idx}
}

func (h *handle) set(r Ref) {
	if h.hs == nil {
		panic(ErrClosed)
	}
	if r != Nil {
		h.c.heap.get(r)
	}
	h.hs.ref = r
	h.hs.valid = r != Nil
}

func (h *handle) release() {
	if h.hs == nil {
		return
	}
	h.table.remove(h.hs, h.idx)
	h.hs = nil
}

// StrongHandle keeps its referent reachable until Release or Set.
// Copying the struct value shares one registration; use Clone for an
// independent one.
type StrongHandle struct {
	handle
}

// Strong registers a strong handle on r, which may be Nil.
func (c *Collector) Strong(r Ref) *StrongHandle {
	return &StrongHandle{c.newHandle(&c.strong, r)}
}

// Get returns the referent, or Nil after Release.
func (h *StrongHandle) Get() Ref {
	if h == nil || h.hs == nil {
		return Nil
	}
	return h.hs.ref
}

// Set retargets the handle. The previous referent is no longer kept alive by it.
func (h *StrongHandle) Set(r Ref) { h.set(r) }

// Clone registers a new handle on the same referent.
func (h *StrongHandle) Clone() *StrongHandle { return h.c.Strong(h.Get()) }

// Release deregisters the handle. It is safe to call more than once.
func (h *StrongHandle) Release() {
	if h != nil {
		h.release()
	}
}

// WeakHandle observes a node without keeping it alive. Once the referent is
// reclaimed, Get returns Nil until the handle is Set again.
type WeakHandle struct {
	handle
}

// Weak registers a weak handle on r, which may be Nil.
func (c *Collector) Weak(r Ref) *WeakHandle {
	return &WeakHandle{c.newHandle(&c.weak, r)}
}

// Get returns the referent, or Nil if it was collected or the handle released.
func (h *WeakHandle) Get() Ref {
	if h == nil || h.hs == nil || !h.hs.valid {
		return Nil
	}
	return h.hs.ref
}

// Alive reports whether Get would return a non-Nil reference.
func (h *WeakHandle) Alive() bool { return h.Get() != Nil }

// Set retargets the handle and revalidates it.
func (h *WeakHandle) Set(r Ref) { h.set(r) }

// Clone registers a new weak handle observing the same referent.
func (h *WeakHandle) Clone() *WeakHandle { return h.c.Weak(h.Get()) }

// Release deregisters the handle. It is safe to call more than once.
func (h *WeakHandle) Release() {
	if h != nil {
		h.release()
	}
}

// NumStrong returns the number of registered strong handles.
func (c *Collector) NumStrong() int { return c.strong.len() }

// NumWeak returns the number of registered weak handles.
func (c *Collector) NumWeak() int { return c.weak.len() }
