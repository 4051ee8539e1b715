// ABOUTME: Undo log for in-place child-pointer writes with nested checkpoints
// ABOUTME: Untrail restores trailed locations in reverse order of recording

package gc

import "fmt"

// Loc is a child-reference field: the Index'th child of Node.
type Loc struct {
	Node  Ref
	Index int
}

func (l Loc) String() string { return fmt.Sprintf("%v[%d]", l.Node, l.Index) }

type trailEntry struct {
	loc  Loc
	prev Ref
}

// Trail is a stack of (location, previous value) pairs partitioned by
// checkpoints. The zero value is an empty trail.
type Trail struct {
	entries []trailEntry
	marks   []int
}

// Mark opens a checkpoint at the current trail length.
func (t *Trail) Mark() { t.marks = append(t.marks, len(t.entries)) }

// Record notes that loc held prev before a write. Without an open
// checkpoint there is nothing to roll back to and the entry is dropped.
func (t *Trail) Record(loc Loc, prev Ref) {
	if len(t.marks) == 0 {
		return
	}
	t.entries = append(t.entries, trailEntry{loc: loc, prev: prev})
}

// Untrail passes every entry recorded since the innermost checkpoint to
// restore, newest first, then closes that checkpoint.
func (t *Trail) Untrail(restore func(Loc, Ref)) {
	n := len(t.marks)
	if n == 0 {
		panic(ErrNoCheckpoint)
	}
	start := t.marks[n-1]
	for i := len(t.entries) - 1; i >= start; i-- {
		e := t.entries[i]
		restore(e.loc, e.prev)
		t.entries[i] = trailEntry{}
	}
	t.entries = t.entries[:start]
	t.marks = t.marks[:n-1]
}

// Depth returns the number of open checkpoints.
func (t *Trail) Depth() int { return len(t.marks) }

// Len returns the number of recorded entries.
func (t *Trail) Len() int { return len(t.entries) }

func (t *Trail) each(fn func(Loc, Ref)) {
	for _, e := range t.entries {
		fn(e.loc, e.prev)
	}
}

// Mark opens a trail checkpoint.
func (c *Collector) Mark() { c.trail.Mark() }

// Trail records that loc held prev. Call it before overwriting loc whenever
// a checkpoint is open. The trail keeps both loc's node and prev alive
// until the checkpoint is closed.
func (c *Collector) Trail(loc Loc, prev Ref) {
	checkChild(c.heap.get(loc.Node), loc)
	if prev != Nil {
		c.heap.get(prev)
	}
	c.trail.Record(loc, prev)
}

// Untrail undoes every trailed write since the innermost open checkpoint
// and closes it. It panics with ErrNoCheckpoint if none is open.
func (c *Collector) Untrail() {
	if c.collecting {
		panic(ErrCollecting)
	}
	c.trail.Untrail(func(loc Loc, prev Ref) {
		c.heap.get(loc.Node).kids[loc.Index] = prev
	})
}

// TrailDepth returns the number of open trail checkpoints.
func (c *Collector) TrailDepth() int { return c.trail.Depth() }

// Assign writes v into loc, trailing the old value first when a
// checkpoint is open.
func (c *Collector) Assign(loc Loc, v Ref) {
	if c.trail.Depth() > 0 {
		c.Trail(loc, c.Child(loc.Node, loc.Index))
	}
	c.SetChild(loc.Node, loc.Index, v)
}
