// ABOUTME: Computes immediate dominators over the snapshot's reachable objects
// ABOUTME: Iterative Cooper-Harvey-Kennedy algorithm on a dense index space
package graph

// Dominators computes the immediate dominator of each object reachable from
// the roots. The super-root (ID 0) points to every root and is the immediate
// dominator of any object reachable from two roots independently.
// Unreachable objects are absent from the result.
func Dominators(g Graph) map[ObjID]ObjID {
	type frame struct {
		v    int
		ts   []ObjID
		next int
	}

	// Dense numbering: index 0 is the super-root.
	nodes := []ObjID{0}
	index := map[ObjID]int{0: 0}
	preds := [][]int{nil}
	postNum := []int{-1}
	var order []int // postorder

	stack := []frame{{v: 0, ts: g.GetRoots().IDs}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next < len(top.ts) {
			id := top.ts[top.next]
			top.next++
			v := top.v
			if id == 0 {
				continue
			}
			obj := g.GetObject(id)
			if obj == nil {
				continue
			}
			w, seen := index[id]
			if !seen {
				w = len(nodes)
				index[id] = w
				nodes = append(nodes, id)
				preds = append(preds, nil)
				postNum = append(postNum, -1)
				stack = append(stack, frame{v: w, ts: obj.Ptrs})
			}
			preds[w] = append(preds[w], v)
			continue
		}
		postNum[top.v] = len(order)
		order = append(order, top.v)
		stack = stack[:len(stack)-1]
	}

	idom := make([]int, len(nodes))
	for i := range idom {
		idom[i] = -1
	}
	idom[0] = 0

	intersect := func(a, b int) int {
		for a != b {
			for postNum[a] < postNum[b] {
				a = idom[a]
			}
			for postNum[b] < postNum[a] {
				b = idom[b]
			}
		}
		return a
	}

	for changed := true; changed; {
		changed = false
		// Reverse postorder, skipping the super-root which finishes last.
		for i := len(order) - 2; i >= 0; i-- {
			v := order[i]
			candidate := -1
			for _, p := range preds[v] {
				if idom[p] == -1 {
					continue
				}
				if candidate == -1 {
					candidate = p
				} else {
					candidate = intersect(p, candidate)
				}
			}
			if candidate != idom[v] {
				idom[v] = candidate
				changed = true
			}
		}
	}

	result := make(map[ObjID]ObjID, len(nodes)-1)
	for v := 1; v < len(nodes); v++ {
		result[nodes[v]] = nodes[idom[v]]
	}
	return result
}

// DominatorTree inverts immediate dominators into parent -> children lists.
// The super-root is always present.
func DominatorTree(idom map[ObjID]ObjID) map[ObjID][]ObjID {
	tree := map[ObjID][]ObjID{0: {}}
	for node, dom := range idom {
		tree[dom] = append(tree[dom], node)
	}
	return tree
}
