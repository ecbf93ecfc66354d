package systems

import (
	"math"

	"github.com/calegria/outpost/components"
)

// UpdateMovement integrates one unit's position toward its current move
// order by dt seconds. Straight-line kinematics with an arrival radius:
// this is deliberately not a pathfinder. The task framework only talks to
// the movement adapter interface, so a navigation mesh could replace this
// without touching any task.
func UpdateMovement(pos *components.Position, mob *components.Mobility, order *components.MoveOrder, dt float64) {
	if order == nil || !order.Active || order.Reached {
		return
	}
	dx := order.X - pos.X
	dy := order.Y - pos.Y
	dist := math.Hypot(dx, dy)

	if dist <= mob.ArriveRadius {
		order.Reached = true
		return
	}

	step := mob.Speed * dt
	if step >= dist {
		pos.X = order.X
		pos.Y = order.Y
		order.Reached = true
		return
	}
	pos.X += dx / dist * step
	pos.Y += dy / dist * step
}
