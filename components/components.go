// Package components defines ECS components for the unit simulation.
package components

import "github.com/calegria/outpost/caps"

// PlayerID identifies an owning player. Zero means unowned.
type PlayerID uint8

// Position represents an entity's world position.
type Position struct {
	X, Y float64
}

// Unit holds core unit state shared by every spawned entity.
// The capability set is the template's registry: immutable configuration,
// looked up by kind far more often than attached.
type Unit struct {
	ID          uint32
	Template    string
	Owner       PlayerID
	Operational bool // gates production and combat behaviors

	Caps *caps.Set
}

// Owned reports whether the unit has an owner.
func (u *Unit) Owned() bool { return u.Owner != 0 }
