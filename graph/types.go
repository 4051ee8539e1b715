// ABOUTME: Core data types for a snapshot of the collector's object graph
// ABOUTME: Defines Object, ObjID, and the Roots that seeded the snapshot

package graph

// ObjID identifies an object in a snapshot. Zero is reserved for the
// synthetic super-root that points at every root.
type ObjID uint64

// Object is one heap object at snapshot time.
type Object struct {
	ID   ObjID   // Unique identifier
	Type string  // Node kind name (e.g. "vector", "string", "call")
	Size uint64  // Accounted footprint in bytes
	Ptrs []ObjID // Child references, Nil children omitted
}

// Roots is the set of objects the collector treats as reachable.
type Roots struct {
	IDs []ObjID
	// Labels names where each root came from ("root", "strong", "trail").
	Labels map[ObjID]string
}
