// ABOUTME: Tests for exporting the live heap as an analysis graph
// ABOUTME: Checks object ids, edges, root labels, and agreement with the sweep

package gc

import (
	"testing"

	"github.com/prateek/astgc/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot(t *testing.T) {
	c := newTestCollector(t, WithKindNames(map[NodeID]string{kindAdd: "add"}))
	top, nodes := buildTree(c)
	c.AddRoot(&sliceRoot{refs: []Ref{top}})
	extra := c.NewString("extra")
	h := c.Strong(extra)
	defer h.Release()

	g := c.Snapshot()
	require.Equal(t, c.Heap().Objects(), g.NumObjects())

	w := g.GetObject(graph.ObjID(nodes["w"]))
	require.NotNil(t, w)
	assert.Equal(t, "add", w.Type)
	assert.Equal(t, uint64(c.Size(nodes["w"])), w.Size)
	assert.Equal(t, []graph.ObjID{graph.ObjID(nodes["z"]), graph.ObjID(nodes["e"])}, w.Ptrs)
	assert.Equal(t, "string", g.GetObject(graph.ObjID(nodes["a"])).Type)

	roots := g.GetRoots()
	assert.ElementsMatch(t, []graph.ObjID{graph.ObjID(top), graph.ObjID(extra)}, roots.IDs)
	assert.Equal(t, RootLabelRoot, roots.Labels[graph.ObjID(top)])
	assert.Equal(t, RootLabelStrong, roots.Labels[graph.ObjID(extra)])

	retained := graph.RetainedSize(g)
	assert.Equal(t, uint64(c.Heap().LiveBytes()-c.Size(extra)), retained[graph.ObjID(top)],
		"the tree root retains every tree node")
}

func TestSnapshotMatchesSweep(t *testing.T) {
	c := newTestCollector(t)
	top, nodes := buildTree(c)
	c.AddRoot(&sliceRoot{refs: []Ref{top}})
	c.NewChunk(make([]byte, 100))

	g := c.Snapshot()
	retained := graph.RetainedSize(g)

	// Cutting z off from w frees exactly what z retains.
	want := int(retained[graph.ObjID(nodes["z"])])
	c.Trigger()
	before := c.Heap().LiveBytes()
	c.SetChild(nodes["w"], 0, Nil)
	c.Trigger()
	assert.Equal(t, want, before-c.Heap().LiveBytes())
}

func TestSnapshotTrailRoots(t *testing.T) {
	c, vec, orig := trailFixture(t, 1)
	c.Mark()
	c.Assign(Loc{Node: vec, Index: 0}, Nil)

	g := c.Snapshot()
	roots := g.GetRoots()
	assert.Equal(t, RootLabelTrail, roots.Labels[graph.ObjID(orig[0])])
	assert.Equal(t, RootLabelRoot, roots.Labels[graph.ObjID(vec)], "first label wins")
	c.Untrail()

	g = c.Snapshot()
	_, ok := g.GetRoots().Labels[graph.ObjID(orig[0])]
	assert.False(t, ok)
}
