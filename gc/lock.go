// ABOUTME: Scoped collector lock that suppresses collection while held
// ABOUTME: Guards nest; each guard releases exactly once

package gc

// LockGuard holds the collector lock until Release. While any guard is held,
// Trigger does nothing and Allocate never starts a cycle.
type LockGuard struct {
	c        *Collector
	released bool
}

// Lock acquires the reentrant collector lock. The intended pattern is
//
//	defer c.Lock().Release()
func (c *Collector) Lock() *LockGuard {
	c.lockCount++
	return &LockGuard{c: c}
}

// Release drops this guard's hold on the lock. Extra calls are no-ops.
func (g *LockGuard) Release() {
	if g == nil || g.released {
		return
	}
	g.released = true
	g.c.lockCount--
}

// Locked reports whether any guard is held.
func (c *Collector) Locked() bool { return c.lockCount > 0 }

// WithLock runs fn with the lock held, releasing it even if fn panics.
func (c *Collector) WithLock(fn func()) {
	defer c.Lock().Release()
	fn()
}
