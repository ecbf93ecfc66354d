package components

// Mobility is the runtime movement state provisioned by the mobility
// capability.
type Mobility struct {
	Speed        float64
	ArriveRadius float64
}

// MoveOrder is the unit's current movement request, written by the
// interaction movement adapter and consumed by the movement system.
type MoveOrder struct {
	Active  bool
	X, Y    float64
	Reached bool
}

// Set points the order at a destination. Re-issuing the same destination is
// a no-op so callers may refresh orders cheaply.
func (m *MoveOrder) Set(x, y float64) {
	if m.Active && m.X == x && m.Y == y {
		return
	}
	m.Active = true
	m.X = x
	m.Y = y
	m.Reached = false
}

// Stop clears the order, halting the unit in its current position.
func (m *MoveOrder) Stop() {
	m.Active = false
	m.Reached = false
}
