// ABOUTME: Constructors and accessors for chunks, vectors, and tree nodes
// ABOUTME: All node reads and writes go through the collector that owns the node

package gc

import "fmt"

// NewChunk allocates a chunk holding a copy of data.
func (c *Collector) NewChunk(data []byte) Ref {
	r := c.Allocate(Shape{ID: KindChunk, Bytes: len(data)})
	copy(c.heap.get(r).data, data)
	return r
}

// NewString allocates a string chunk holding s. Use Intern to share equal strings.
func (c *Collector) NewString(s string) Ref {
	r := c.Allocate(Shape{ID: KindString, Bytes: len(s)})
	copy(c.heap.get(r).data, s)
	return r
}

// NewVector allocates a vector holding elems. Elements may be Nil.
// Elements must already be reachable or the collector locked, since the
// allocation may start a cycle before they are stored.
func (c *Collector) NewVector(elems ...Ref) Ref {
	r := c.Allocate(Shape{ID: KindVector, Children: len(elems)})
	c.storeChildren(r, elems)
	return r
}

// NewNode allocates a tree node of kind id with the given children.
func (c *Collector) NewNode(id NodeID, children ...Ref) Ref {
	if id < KindUser {
		panic(fmt.Errorf("%w: %v is not a tree-node kind", ErrBadShape, id))
	}
	r := c.Allocate(Shape{ID: id, Children: len(children)})
	c.storeChildren(r, children)
	return r
}

func (c *Collector) storeChildren(r Ref, kids []Ref) {
	for _, k := range kids {
		if k != Nil {
			c.heap.get(k)
		}
	}
	copy(c.heap.get(r).kids, kids)
}

// Live reports whether r names an object that has not been reclaimed.
func (c *Collector) Live(r Ref) bool { return c.heap.valid(r) }

// Header returns the header of r.
func (c *Collector) Header(r Ref) Header { return c.heap.get(r).hdr }

// Kind returns the node kind of r.
func (c *Collector) Kind(r Ref) NodeID { return c.heap.get(r).hdr.ID() }

// Size returns the accounted footprint of r in bytes.
func (c *Collector) Size(r Ref) int { return c.heap.get(r).size }

// Bytes returns the inline payload of r. Callers may modify the contents
// but not the length.
func (c *Collector) Bytes(r Ref) []byte { return c.heap.get(r).data }

// Text returns the payload of r as a string.
func (c *Collector) Text(r Ref) string { return string(c.heap.get(r).data) }

// NumChildren returns the number of child fields of r.
func (c *Collector) NumChildren(r Ref) int { return len(c.heap.get(r).kids) }

// Child returns the i'th child of r.
func (c *Collector) Child(r Ref, i int) Ref {
	sl := c.heap.get(r)
	checkChild(sl, Loc{Node: r, Index: i})
	return sl.kids[i]
}

func checkChild(sl *slot, loc Loc) {
	if loc.Index < 0 || loc.Index >= len(sl.kids) {
		panic(fmt.Errorf("%w: child %v out of range", ErrBadShape, loc))
	}
}

// Children returns a copy of r's child fields.
func (c *Collector) Children(r Ref) []Ref {
	return append([]Ref(nil), c.heap.get(r).kids...)
}

// SetChild overwrites the i'th child of r without trailing. Use Assign for
// writes that must be undone by Untrail.
func (c *Collector) SetChild(r Ref, i int, v Ref) {
	sl := c.heap.get(r)
	checkChild(sl, Loc{Node: r, Index: i})
	if v != Nil {
		c.heap.get(v)
	}
	sl.kids[i] = v
}

// SetFlags sets the two generic header flags of r.
func (c *Collector) SetFlags(r Ref, flag1, flag2 bool) {
	sl := c.heap.get(r)
	sl.hdr.setFlag(hdrFlag1, flag1)
	sl.hdr.setFlag(hdrFlag2, flag2)
}

// SetSecondaryID sets the subtype discriminator of r.
func (c *Collector) SetSecondaryID(r Ref, sec uint8) {
	if sec > uint8(hdrField) {
		panic(fmt.Errorf("%w: secondary id %d", ErrBadShape, sec))
	}
	sl := c.heap.get(r)
	sl.hdr = sl.hdr&^(hdrField<<hdrSecShift) | Header(sec)<<hdrSecShift
}

// KindName returns the display name of a node kind.
func (c *Collector) KindName(id NodeID) string {
	if name, ok := c.names[id]; ok {
		return name
	}
	return id.String()
}
