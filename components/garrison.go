package components

// Garrison is the runtime occupancy state provisioned by the garrison
// capability.
type Garrison struct {
	Capacity   int
	EnterRange float64

	Units []uint32 // IDs of garrisoned units
}

// Full reports whether the garrison is at capacity.
func (g *Garrison) Full() bool { return len(g.Units) >= g.Capacity }

// Holds reports whether the given unit is inside.
func (g *Garrison) Holds(id uint32) bool {
	for _, u := range g.Units {
		if u == id {
			return true
		}
	}
	return false
}

// Construction marks an entity as an unfinished structure. A site becomes
// operational when Progress reaches Required.
type Construction struct {
	Required float64 // build points needed for completion
	Progress float64
}

// Done reports whether construction is complete.
func (c *Construction) Done() bool { return c.Progress >= c.Required }
