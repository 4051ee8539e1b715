// ABOUTME: Tests for trail checkpoints, rollback order, and trail liveness
// ABOUTME: Covers nesting, misuse panics, and entries kept alive across cycles

package gc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrailUnit(t *testing.T) {
	var tr Trail
	tr.Record(Loc{Node: 1, Index: 0}, 10)
	assert.Equal(t, 0, tr.Len(), "no checkpoint, nothing recorded")

	tr.Mark()
	tr.Record(Loc{Node: 1, Index: 0}, 10)
	tr.Record(Loc{Node: 1, Index: 0}, 11)
	tr.Record(Loc{Node: 2, Index: 3}, 20)

	var got []Ref
	tr.Untrail(func(_ Loc, prev Ref) { got = append(got, prev) })
	assert.Equal(t, []Ref{20, 11, 10}, got)
	assert.Equal(t, 0, tr.Depth())
	assert.Equal(t, 0, tr.Len())

	assert.PanicsWithValue(t, ErrNoCheckpoint, func() {
		tr.Untrail(func(Loc, Ref) {})
	})
}

// trailFixture is a rooted vector of n string children.
func trailFixture(t *testing.T, n int) (*Collector, Ref, []Ref) {
	t.Helper()
	c := newTestCollector(t)
	defer c.Lock().Release()
	orig := make([]Ref, n)
	for i := range orig {
		orig[i] = c.NewString(string(rune('a' + i)))
	}
	vec := c.NewVector(orig...)
	c.AddRoot(&sliceRoot{refs: []Ref{vec}})
	return c, vec, orig
}

func TestTrailRoundTrip(t *testing.T) {
	c, vec, orig := trailFixture(t, 5)

	c.Mark()
	for i := range 4 {
		c.Assign(Loc{Node: vec, Index: i}, c.NewString("new"))
	}
	untrailed := c.NewString("untrailed")
	c.SetChild(vec, 4, untrailed)
	c.Trigger()

	c.Untrail()

	got := c.Children(vec)
	assert.Equal(t, orig[:4], got[:4])
	assert.Equal(t, untrailed, got[4], "writes that were not trailed are unaffected")
	for _, r := range orig[:4] {
		assert.True(t, c.Live(r))
	}
}

func TestTrailSameLocationRestoresCheckpointValue(t *testing.T) {
	c, vec, orig := trailFixture(t, 1)
	loc := Loc{Node: vec, Index: 0}

	c.Mark()
	c.Assign(loc, c.NewString("first"))
	c.Assign(loc, c.NewString("second"))
	c.Assign(loc, Nil)
	c.Untrail()

	assert.Equal(t, orig[0], c.Child(vec, 0))
}

func TestTrailNesting(t *testing.T) {
	c, vec, orig := trailFixture(t, 2)
	outer := c.NewString("outer")
	inner := c.NewString("inner")
	c.AddRoot(&sliceRoot{refs: []Ref{outer, inner}})

	c.Mark()
	c.Assign(Loc{Node: vec, Index: 0}, outer)
	c.Mark()
	c.Assign(Loc{Node: vec, Index: 1}, inner)
	c.Assign(Loc{Node: vec, Index: 0}, inner)
	require.Equal(t, 2, c.TrailDepth())

	c.Untrail()
	assert.Equal(t, []Ref{outer, orig[1]}, c.Children(vec))
	assert.Equal(t, 1, c.TrailDepth())

	c.Untrail()
	assert.Equal(t, orig, c.Children(vec))
	assert.Equal(t, 0, c.TrailDepth())
}

func TestUntrailWithoutCheckpointPanics(t *testing.T) {
	c := newTestCollector(t)
	assert.PanicsWithValue(t, ErrNoCheckpoint, c.Untrail)

	c.Mark()
	c.Untrail()
	assert.PanicsWithValue(t, ErrNoCheckpoint, c.Untrail)
}

func TestTrailKeepsEntriesAlive(t *testing.T) {
	c, vec, orig := trailFixture(t, 1)
	loc := Loc{Node: vec, Index: 0}

	c.Mark()
	c.Assign(loc, Nil)
	c.Trigger()
	require.True(t, c.Live(orig[0]), "previous value is only reachable through the trail")

	// The owner of the trailed location is kept too.
	detached := c.NewNode(kindNeg, Nil)
	c.Assign(Loc{Node: detached, Index: 0}, vec)
	c.Trigger()
	require.True(t, c.Live(detached))

	c.Untrail()
	assert.Equal(t, orig[0], c.Child(vec, 0))
	assert.Equal(t, Nil, c.Child(detached, 0))

	c.Assign(loc, Nil)
	c.Trigger()
	assert.False(t, c.Live(orig[0]), "closed checkpoints no longer keep values alive")
	assert.False(t, c.Live(detached))
}

func TestTrailWithoutCheckpoint(t *testing.T) {
	c, vec, _ := trailFixture(t, 1)
	c.Trail(Loc{Node: vec, Index: 0}, Nil)
	assert.Equal(t, 0, c.trail.Len())

	s := c.NewString("x")
	c.Assign(Loc{Node: vec, Index: 0}, s)
	assert.Equal(t, s, c.Child(vec, 0))
	assert.Equal(t, 0, c.trail.Len())
}

func TestTrailValidatesLocation(t *testing.T) {
	c, vec, _ := trailFixture(t, 1)
	c.Mark()
	defer c.Untrail()

	requirePanicsWith(t, ErrBadShape, func() { c.Trail(Loc{Node: vec, Index: 1}, Nil) })
	requirePanicsWith(t, ErrBadShape, func() { c.Trail(Loc{Node: vec, Index: -1}, Nil) })
	requirePanicsWith(t, ErrNilRef, func() { c.Trail(Loc{Index: 0}, Nil) })
}

func TestAssignOutOfRange(t *testing.T) {
	c, vec, orig := trailFixture(t, 1)

	requirePanicsWith(t, ErrBadShape, func() { c.Assign(Loc{Node: vec, Index: 1}, Nil) })

	c.Mark()
	requirePanicsWith(t, ErrBadShape, func() { c.Assign(Loc{Node: vec, Index: 2}, Nil) })
	assert.Equal(t, 0, c.trail.Len())
	c.Untrail()
	assert.Equal(t, orig[0], c.Child(vec, 0))
}
