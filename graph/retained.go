// ABOUTME: Calculates retained memory sizes using dominator tree analysis
// ABOUTME: Answers how many bytes a sweep would free if one object became unreachable
package graph

import (
	"cmp"
	"slices"
)

// RetainedSize computes the retained size of every reachable object: its own
// size plus the sizes of all objects it dominates. That is exactly what the
// next cycle would reclaim if the object lost its last incoming reference.
func RetainedSize(g Graph) map[ObjID]uint64 {
	tree := DominatorTree(Dominators(g))
	retained := make(map[ObjID]uint64, len(tree))

	type frame struct {
		id       ObjID
		expanded bool
	}
	stack := []frame{{id: 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !f.expanded {
			stack = append(stack, frame{id: f.id, expanded: true})
			for _, child := range tree[f.id] {
				stack = append(stack, frame{id: child})
			}
			continue
		}
		var size uint64
		if f.id != 0 {
			if obj := g.GetObject(f.id); obj != nil {
				size = obj.Size
			}
		}
		for _, child := range tree[f.id] {
			size += retained[child]
		}
		retained[f.id] = size
	}

	delete(retained, 0)
	return retained
}

// Retained pairs an object with its retained size.
type Retained struct {
	ID   ObjID
	Type string
	Size uint64
}

// TopRetained returns the k objects with the largest retained size,
// largest first; ties are broken by ID. k <= 0 returns all of them.
func TopRetained(g Graph, k int) []Retained {
	sizes := RetainedSize(g)
	out := make([]Retained, 0, len(sizes))
	for id, size := range sizes {
		r := Retained{ID: id, Size: size}
		if obj := g.GetObject(id); obj != nil {
			r.Type = obj.Type
		}
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b Retained) int {
		if c := cmp.Compare(b.Size, a.Size); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out
}
