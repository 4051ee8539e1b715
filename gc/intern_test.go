// ABOUTME: Tests for the weak string table and root-registered managed maps
// ABOUTME: Checks which keys and values each map variant keeps alive

package gc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntern(t *testing.T) {
	c := newTestCollector(t)
	x := c.Intern("x")
	assert.Equal(t, x, c.Intern("x"))
	assert.NotEqual(t, x, c.Intern("y"))
	assert.Equal(t, KindString, c.Kind(x))
	assert.Equal(t, 2, c.NumInterned())

	h := c.Strong(x)
	defer h.Release()
	c.Trigger()

	assert.Equal(t, 1, c.NumInterned(), "unrooted y is dropped from the table")
	assert.Equal(t, x, c.Intern("x"))
	y := c.Intern("y")
	assert.True(t, c.Live(y))
	assert.Equal(t, "y", c.Text(y))
}

func TestManagedMap(t *testing.T) {
	c := newTestCollector(t)
	mm := NewManagedMap[int](c)
	require.Equal(t, 1, c.NumRoots())

	k1, k2 := c.Intern("k1"), c.Intern("k2")
	mm.Set(k1, 1)
	mm.Set(k2, 2)
	c.Trigger()
	assert.True(t, c.Live(k1))
	assert.True(t, c.Live(k2))

	v, ok := mm.Get(k2)
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	mm.Delete(k2)
	c.Trigger()
	assert.False(t, c.Live(k2))
	assert.Equal(t, 1, mm.Len())

	seen := map[Ref]int{}
	for k, v := range mm.All() {
		seen[k] = v
	}
	assert.Equal(t, map[Ref]int{k1: 1}, seen)

	mm.Close()
	mm.Close()
	assert.Equal(t, 0, c.NumRoots())
	c.Trigger()
	assert.False(t, c.Live(k1))
	requirePanicsWith(t, ErrClosed, func() { mm.Set(c.Intern("k3"), 3) })
}

func TestManagedRefMap(t *testing.T) {
	c := newTestCollector(t)
	mm := NewManagedRefMap(c)
	defer mm.Close()

	var key, val, tree Ref
	c.WithLock(func() {
		key = c.Intern("f")
		val = c.NewString("body")
		tree = c.NewNode(kindNeg, val)
	})
	mm.Set(key, tree)
	c.Trigger()

	assert.True(t, c.Live(key))
	assert.True(t, c.Live(tree))
	assert.True(t, c.Live(val), "values are marked transitively")

	plain := NewManagedMap[Ref](c)
	defer plain.Close()
	other := c.NewString("other")
	plain.Set(key, other)
	c.Trigger()
	assert.False(t, c.Live(other), "plain managed maps do not mark values")
}
