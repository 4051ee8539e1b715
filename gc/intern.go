// ABOUTME: Weak string table that shares one string node per distinct value
// ABOUTME: Entries disappear when the sweep reclaims their node

package gc

// Intern returns the live string node holding s, allocating one if needed.
// The table does not keep strings alive; callers root interned strings the
// same way as any other node.
func (c *Collector) Intern(s string) Ref {
	if r, ok := c.strings[s]; ok && c.heap.valid(r) {
		return r
	}
	r := c.NewString(s)
	c.strings[s] = r
	return r
}

// NumInterned returns the number of strings in the intern table.
func (c *Collector) NumInterned() int { return len(c.strings) }
