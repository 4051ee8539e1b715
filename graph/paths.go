// ABOUTME: BFS search for the reference chains that keep an object alive
// ABOUTME: Returns up to K shortest paths from an object back to a root

package graph

import "slices"

// Path is a chain of object IDs from a target back to a root
type Path struct {
	IDs []ObjID // target first, root last
}

// ReverseEdges maps each object to the objects that point to it
type ReverseEdges map[ObjID][]ObjID

// BuildReverseEdges creates a map of reverse edges
func BuildReverseEdges(g Graph) ReverseEdges {
	reverse := make(ReverseEdges)
	g.ForEachObject(func(obj *Object) {
		for _, target := range obj.Ptrs {
			reverse[target] = append(reverse[target], obj.ID)
		}
	})
	return reverse
}

// PathsToRoots explains why from is still alive: it returns at most
// maxPaths referrer chains, shortest first, each ending at a root.
// A chain never visits the same object twice.
func PathsToRoots(g Graph, from ObjID, maxPaths int) []Path {
	if maxPaths <= 0 {
		return nil
	}

	isRoot := make(map[ObjID]bool)
	for _, id := range g.GetRoots().IDs {
		isRoot[id] = true
	}
	if isRoot[from] {
		return []Path{{IDs: []ObjID{from}}}
	}

	reverse := BuildReverseEdges(g)
	var result []Path
	queue := [][]ObjID{{from}}
	for len(queue) > 0 && len(result) < maxPaths {
		path := queue[0]
		queue = queue[1:]

		for _, referrer := range reverse[path[len(path)-1]] {
			if slices.Contains(path, referrer) {
				continue
			}
			next := append(slices.Clip(path), referrer)
			if isRoot[referrer] {
				result = append(result, Path{IDs: next})
				if len(result) >= maxPaths {
					break
				}
				continue
			}
			queue = append(queue, next)
		}
	}
	return result
}
