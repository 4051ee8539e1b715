// ABOUTME: Slot-table heap that stores every collector-managed object
// ABOUTME: Bump allocation with slot reuse, footprint accounting, and high-water mark

package gc

import (
	"fmt"
	"math"
)

// slot is one heap object. Free slots keep their buffers so that the next
// allocation landing in the slot can reuse them.
type slot struct {
	hdr  Header
	gen  uint32
	size int
	data []byte
	kids []Ref
}

// Heap owns the storage for one Collector. Objects are appended at the end
// or placed into slots reclaimed by an earlier sweep.
type Heap struct {
	slots []slot
	free  []uint32

	live       int // bytes held by allocated objects
	max        int // high-water mark of live
	objects    int
	sinceCycle int // bytes allocated since the last cycle
}

func newHeap(capacity int) *Heap {
	return &Heap{slots: make([]slot, 0, capacity)}
}

// LiveBytes returns the footprint of all allocated objects.
func (h *Heap) LiveBytes() int { return h.live }

// MaxBytes returns the largest LiveBytes value ever observed.
func (h *Heap) MaxBytes() int { return h.max }

// Objects returns the number of allocated objects.
func (h *Heap) Objects() int { return h.objects }

// Slots returns the number of slots, allocated or free.
func (h *Heap) Slots() int { return len(h.slots) }

// alloc places a new object whose mark bit is set to markBit.
func (h *Heap) alloc(s Shape, markBit bool) Ref {
	var idx uint32
	if n := len(h.free); n > 0 {
		idx = h.free[n-1]
		h.free = h.free[:n-1]
	} else {
		if uint64(len(h.slots)) >= math.MaxUint32-1 {
			panic(fmt.Errorf("%w: slot table full", ErrHeapExhausted))
		}
		h.slots = append(h.slots, slot{})
		idx = uint32(len(h.slots) - 1)
	}

	sl := &h.slots[idx]
	sl.hdr = makeHeader(s.ID, s.SecondaryID)
	sl.hdr.setMark(markBit)
	sl.size = footprint(s)
	sl.data = resize(sl.data, s.Bytes)
	sl.kids = resize(sl.kids, s.Children)

	h.objects++
	h.live += sl.size
	h.sinceCycle += sl.size
	if h.live > h.max {
		h.max = h.live
	}
	return makeRef(idx, sl.gen)
}

// release returns slot idx to the free list and bumps its generation so
// that outstanding Refs to it become stale.
func (h *Heap) release(idx uint32) {
	sl := &h.slots[idx]
	h.objects--
	h.live -= sl.size
	sl.hdr = makeHeader(KindFree, 0)
	sl.gen++
	sl.size = 0
	clear(sl.kids)
	sl.kids = sl.kids[:0]
	sl.data = sl.data[:0]
	h.free = append(h.free, idx)
}

// lookup returns the slot for r, or nil when r is Nil, out of range, or stale.
func (h *Heap) lookup(r Ref) *slot {
	if r == Nil {
		return nil
	}
	idx := r.index()
	if int(idx) >= len(h.slots) {
		return nil
	}
	sl := &h.slots[idx]
	if sl.gen != r.gen() || sl.hdr.ID() == KindFree {
		return nil
	}
	return sl
}

// get is lookup for callers that hold a Ref they believe is live.
func (h *Heap) get(r Ref) *slot {
	if r == Nil {
		panic(ErrNilRef)
	}
	sl := h.lookup(r)
	if sl == nil {
		panic(fmt.Errorf("%w: %v", ErrStaleRef, r))
	}
	return sl
}

func (h *Heap) valid(r Ref) bool { return h.lookup(r) != nil }

func resize[T any](buf []T, n int) []T {
	if cap(buf) >= n {
		buf = buf[:n]
		clear(buf)
		return buf
	}
	return make([]T, n)
}
