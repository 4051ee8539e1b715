// ABOUTME: Node-to-node map that does not keep keys or values alive
// ABOUTME: Entries whose key or value is reclaimed are purged during the sweep

package gc

import "fmt"

// WeakNodeMap maps nodes to nodes without extending either side's lifetime.
// It is typically used to remember copies while rewriting a tree.
type WeakNodeMap struct {
	c   *Collector
	idx int
	m   map[Ref]Ref
}

// NewWeakNodeMap creates a map registered with the collector's sweep.
func (c *Collector) NewWeakNodeMap() *WeakNodeMap {
	if c.collecting {
		panic(ErrCollecting)
	}
	wm := &WeakNodeMap{c: c, m: make(map[Ref]Ref)}
	wm.idx = c.maps.add(wm)
	return wm
}

// Insert maps key to value. Both must be live.
func (wm *WeakNodeMap) Insert(key, value Ref) {
	if wm.m == nil {
		panic(fmt.Errorf("%w: weak node map", ErrClosed))
	}
	wm.c.heap.get(key)
	wm.c.heap.get(value)
	wm.m[key] = value
}

// Find returns the value stored for key. A key or value reclaimed by an
// earlier cycle is never found.
func (wm *WeakNodeMap) Find(key Ref) (Ref, bool) {
	v, ok := wm.m[key]
	return v, ok
}

// Remove deletes the entry for key, if any.
func (wm *WeakNodeMap) Remove(key Ref) { delete(wm.m, key) }

// Len returns the number of entries.
func (wm *WeakNodeMap) Len() int { return len(wm.m) }

// Clear drops all entries.
func (wm *WeakNodeMap) Clear() { clear(wm.m) }

// Close deregisters the map and drops its entries. Later inserts panic.
func (wm *WeakNodeMap) Close() {
	if wm.m == nil {
		return
	}
	if wm.c.maps.items[wm.idx] == wm {
		wm.c.maps.remove(wm.idx)
	}
	wm.m = nil
}

func (wm *WeakNodeMap) purge(h *Heap) {
	for k, v := range wm.m {
		if !h.valid(k) || !h.valid(v) {
			delete(wm.m, k)
		}
	}
}
