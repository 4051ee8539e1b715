// ABOUTME: Queries over immediate dominators
// ABOUTME: Finds the chain of objects whose removal alone would free a target
package graph

// DominatorPath returns node followed by its dominators, nearest first,
// ending at the root that dominates it. The super-root is omitted.
// It returns nil when node is unreachable.
func DominatorPath(idom map[ObjID]ObjID, node ObjID) []ObjID {
	if _, ok := idom[node]; !ok {
		return nil
	}
	path := []ObjID{node}
	for cur := idom[node]; cur != 0; cur = idom[cur] {
		path = append(path, cur)
	}
	return path
}

// IsDominated reports whether every path from the roots to node passes
// through dominator. An object dominates itself, and the super-root (ID 0)
// dominates every reachable object.
func IsDominated(idom map[ObjID]ObjID, node, dominator ObjID) bool {
	if _, ok := idom[node]; !ok {
		return false
	}
	for cur := node; ; cur = idom[cur] {
		if cur == dominator {
			return true
		}
		if cur == 0 {
			return false
		}
	}
}
