package machine

// Cell is a shared, mutable box around a Value. A local starts out as a
// plain stack/scope value (Owned); the moment a nested function literal
// captures it, the variable table upgrades that one slot to a Cell (Shared)
// so writes through either the outer scope or the closure's captured
// reference are visible to both. The upgrade is monotonic and permanent for
// the lifetime of the slot: once shared, a slot is never turned back into a
// plain value.
type Cell struct {
	v Value
}

// NewCell boxes v.
func NewCell(v Value) *Cell { return &Cell{v: v} }

func (c *Cell) Get() Value  { return c.v }
func (c *Cell) Set(v Value) { c.v = v }
