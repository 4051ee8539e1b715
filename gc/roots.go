// ABOUTME: Root set registration for long-lived structures that own nodes
// ABOUTME: Roots enumerate their outgoing references once per mark phase

package gc

// Root is a long-lived structure (typically a whole model) that can
// enumerate the nodes it owns. Mark is called once per cycle and must not
// allocate or mutate the heap.
type Root interface {
	Mark(m *Marker)
}

// RootID identifies a registration in the root set. The zero value is unused.
type RootID uint32

// AddRoot registers r so that it seeds every mark phase until RemoveRoot.
func (c *Collector) AddRoot(r Root) RootID {
	if c.collecting {
		panic(ErrCollecting)
	}
	return RootID(c.roots.add(r) + 1)
}

// RemoveRoot deregisters a root. Unknown or already removed ids are ignored.
func (c *Collector) RemoveRoot(id RootID) {
	if c.collecting {
		panic(ErrCollecting)
	}
	if id == 0 {
		return
	}
	c.roots.remove(int(id - 1))
}

// NumRoots returns the number of registered roots.
func (c *Collector) NumRoots() int { return c.roots.len() }

type rootTable = registry[Root]

// registry is a slot table with a free list. Iteration visits slots in
// index order; removed slots are skipped and later reused.
type registry[T comparable] struct {
	items []T
	free  []int
	n     int
}

func (r *registry[T]) add(v T) int {
	r.n++
	if k := len(r.free); k > 0 {
		i := r.free[k-1]
		r.free = r.free[:k-1]
		r.items[i] = v
		return i
	}
	r.items = append(r.items, v)
	return len(r.items) - 1
}

func (r *registry[T]) remove(i int) {
	var zero T
	if i < 0 || i >= len(r.items) || r.items[i] == zero {
		return
	}
	r.items[i] = zero
	r.free = append(r.free, i)
	r.n--
}

func (r *registry[T]) len() int { return r.n }

func (r *registry[T]) each(fn func(T)) {
	var zero T
	for _, v := range r.items {
		if v != zero {
			fn(v)
		}
	}
}
