// ABOUTME: Exports the live heap as an analysis graph
// ABOUTME: Roots are labelled by where the collector found them

package gc

import "github.com/prateek/astgc/graph"

// Root labels used in snapshots.
const (
	RootLabelRoot   = "root"
	RootLabelStrong = "strong"
	RootLabelTrail  = "trail"
)

// Snapshot copies every allocated object and the current root set into a
// graph. Object ids are the numeric values of their Refs. The heap is not
// collected or modified.
func (c *Collector) Snapshot() *graph.MemGraph {
	if c.collecting {
		panic(ErrCollecting)
	}
	g := graph.NewMemGraph()
	h := c.heap
	for i := range h.slots {
		sl := &h.slots[i]
		if sl.hdr.ID() == KindFree {
			continue
		}
		obj := &graph.Object{
			ID:   graph.ObjID(makeRef(uint32(i), sl.gen)),
			Type: c.KindName(sl.hdr.ID()),
			Size: uint64(sl.size),
		}
		for _, k := range sl.kids {
			if k != Nil {
				obj.Ptrs = append(obj.Ptrs, graph.ObjID(k))
			}
		}
		g.AddObject(obj)
	}

	roots := graph.Roots{Labels: make(map[graph.ObjID]string)}
	add := func(label string) func(Ref) {
		return func(r Ref) {
			if r == Nil || !h.valid(r) {
				return
			}
			id := graph.ObjID(r)
			if _, seen := roots.Labels[id]; seen {
				return
			}
			roots.IDs = append(roots.IDs, id)
			roots.Labels[id] = label
		}
	}

	m := &Marker{c: c, record: add(RootLabelRoot)}
	c.roots.each(func(r Root) { r.Mark(m) })
	m.record = add(RootLabelStrong)
	c.strong.each(func(hs *handleSlot) { m.Mark(hs.ref) })
	if c.trail.Depth() > 0 {
		m.record = add(RootLabelTrail)
		c.trail.each(func(loc Loc, prev Ref) {
			m.Mark(loc.Node)
			m.Mark(prev)
		})
	}
	g.SetRoots(roots)
	return g
}
