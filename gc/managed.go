// ABOUTME: Root-registered map keyed by nodes that keeps its keys alive
// ABOUTME: The Ref-valued variant also keeps its values alive

package gc

import "iter"

// ManagedMap is a key->value table that participates in the root set and
// marks every key on every cycle. Keys are usually interned strings.
type ManagedMap[V any] struct {
	c         *Collector
	id        RootID
	m         map[Ref]V
	markValue func(*Marker, V)
}

// NewManagedMap creates a map whose keys stay alive until Close.
func NewManagedMap[V any](c *Collector) *ManagedMap[V] {
	mm := &ManagedMap[V]{c: c, m: make(map[Ref]V)}
	mm.id = c.AddRoot(mm)
	return mm
}

// NewManagedRefMap creates a map whose keys and node values stay alive.
func NewManagedRefMap(c *Collector) *ManagedMap[Ref] {
	mm := &ManagedMap[Ref]{c: c, m: make(map[Ref]Ref), markValue: (*Marker).Mark}
	mm.id = c.AddRoot(mm)
	return mm
}

// Mark implements Root.
func (mm *ManagedMap[V]) Mark(m *Marker) {
	for k, v := range mm.m {
		m.Mark(k)
		if mm.markValue != nil {
			mm.markValue(m, v)
		}
	}
}

// Set stores v under key, which must be live.
func (mm *ManagedMap[V]) Set(key Ref, v V) {
	if mm.m == nil {
		panic(ErrClosed)
	}
	mm.c.heap.get(key)
	mm.m[key] = v
}

// Get returns the value stored under key.
func (mm *ManagedMap[V]) Get(key Ref) (V, bool) {
	v, ok := mm.m[key]
	return v, ok
}

// Delete removes key. Its node is no longer kept alive by the map.
func (mm *ManagedMap[V]) Delete(key Ref) { delete(mm.m, key) }

// Len returns the number of entries.
func (mm *ManagedMap[V]) Len() int { return len(mm.m) }

// All iterates over the entries in unspecified order.
func (mm *ManagedMap[V]) All() iter.Seq2[Ref, V] {
	return func(yield func(Ref, V) bool) {
		for k, v := range mm.m {
			if !yield(k, v) {
				return
			}
		}
	}
}

// Close removes the map from the root set and drops its entries.
func (mm *ManagedMap[V]) Close() {
	if mm.m == nil {
		return
	}
	mm.c.RemoveRoot(mm.id)
	mm.m = nil
}
