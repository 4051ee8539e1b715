// Package gc is a mark-sweep garbage collector for the nodes of
// dynamically built expression trees.
//
// A Collector owns a heap of objects addressed by Ref. Objects survive a
// cycle when they are reachable from a registered Root, a StrongHandle, or
// an entry on the trail while a checkpoint is open. WeakHandle,
// WeakNodeMap, and the intern table observe objects without keeping them
// alive; their entries are dropped by the sweep that reclaims the object.
//
// Cycles start when Allocate crosses the byte threshold, when the timeout
// elapses, when MaxHeapBytes would be exceeded, or on Trigger. Holding a
// LockGuard suppresses all of them, so a caller building a tree bottom-up
// can keep unrooted intermediate nodes safe:
//
//	func build(c *gc.Collector) gc.Ref {
//		defer c.Lock().Release()
//		lhs := c.NewString("x")
//		rhs := c.NewString("y")
//		return c.NewNode(opAdd, lhs, rhs)
//	}
//
// The trail records the previous values of overwritten child fields.
// Mark opens a checkpoint, Assign writes through the trail, and Untrail
// restores everything written since the innermost checkpoint.
//
// A Collector and its objects belong to one goroutine. Run one collector
// per worker; only a shared *Metrics may cross goroutines.
package gc
