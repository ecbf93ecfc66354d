package sim

import (
	"math"

	"github.com/calegria/outpost/components"
	"github.com/calegria/outpost/tasks"
)

// The adapter types below present ECS-backed units to the task framework
// through its reference interfaces. They hold only the unit ID; every call
// resolves through the entity index so a vanished unit reads as dead rather
// than stale.

// unitRef implements tasks.UnitRef.
type unitRef struct {
	s  *Sim
	id uint32
}

func (r unitRef) ID() uint32 { return r.id }

func (r unitRef) Alive() bool {
	_, ok := r.s.entityOf(r.id)
	return ok
}

func (r unitRef) Operational() bool {
	u := r.s.unitComp(r.id)
	return u != nil && u.Operational
}

func (r unitRef) Owner() components.PlayerID {
	u := r.s.unitComp(r.id)
	if u == nil {
		return 0
	}
	return u.Owner
}

// moverAdapter implements tasks.Mover over the unit's move order. Tasks talk
// destinations; the movement system does the walking.
type moverAdapter struct {
	s  *Sim
	id uint32
}

func (m moverAdapter) order() *components.MoveOrder {
	e, ok := m.s.entityOf(m.id)
	if !ok {
		return nil
	}
	return m.s.moveMap.Get(e)
}

func (m moverAdapter) SetInteractionTarget(t tasks.TargetRef) {
	o := m.order()
	if o == nil || t == nil {
		return
	}
	x, y := t.Position()
	o.Set(x, y)
}

func (m moverAdapter) RemoveInteractionTarget(t tasks.TargetRef) {
	if o := m.order(); o != nil {
		o.Stop()
	}
}

func (m moverAdapter) HasReachedDestination() bool {
	o := m.order()
	return o != nil && o.Reached
}

func (m moverAdapter) StopInCurrentPosition() {
	if o := m.order(); o != nil {
		o.Stop()
	}
}

// structRef provides the shared TargetRef behavior for structure adapters.
type structRef struct {
	s  *Sim
	id uint32
}

func (r structRef) Alive() bool {
	_, ok := r.s.entityOf(r.id)
	return ok
}

func (r structRef) Position() (float64, float64) {
	e, ok := r.s.entityOf(r.id)
	if !ok {
		return 0, 0
	}
	p := r.s.posMap.Get(e)
	return p.X, p.Y
}

func (r structRef) Mobile() bool {
	e, ok := r.s.entityOf(r.id)
	if !ok {
		return false
	}
	return r.s.mobMap.Get(e) != nil
}

func (r structRef) Owner() components.PlayerID {
	u := r.s.unitComp(r.id)
	if u == nil {
		return 0
	}
	return u.Owner
}

func (r structRef) distanceTo(u tasks.UnitRef) float64 {
	e, ok := r.s.entityOf(r.id)
	if !ok {
		return math.Inf(1)
	}
	ue, ok := r.s.entityOf(u.ID())
	if !ok {
		return math.Inf(1)
	}
	a := r.s.posMap.Get(e)
	b := r.s.posMap.Get(ue)
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// garrisonRef implements tasks.GarrisonRef.
type garrisonRef struct {
	structRef
}

func (r garrisonRef) ID() uint32 { return r.id }

func (r garrisonRef) garrison() *components.Garrison {
	e, ok := r.s.entityOf(r.id)
	if !ok {
		return nil
	}
	return r.s.garMap.Get(e)
}

// EligibleToEnter checks admission without distance: the structure exists,
// is operational, has room, and does not already hold the unit.
func (r garrisonRef) EligibleToEnter(u tasks.UnitRef) bool {
	g := r.garrison()
	if g == nil || g.Full() || g.Holds(u.ID()) {
		return false
	}
	su := r.s.unitComp(r.id)
	return su != nil && su.Operational
}

func (r garrisonRef) InRangeToEnter(u tasks.UnitRef) bool {
	g := r.garrison()
	if g == nil {
		return false
	}
	return r.distanceTo(u) <= g.EnterRange
}

// AddUnit registers the unit inside the garrison. Admission is re-checked:
// the slot may have filled since eligibility was tested.
func (r garrisonRef) AddUnit(u tasks.UnitRef) bool {
	if !r.EligibleToEnter(u) {
		return false
	}
	g := r.garrison()
	g.Units = append(g.Units, u.ID())
	return true
}

// siteRef implements tasks.SiteRef over a construction component.
type siteRef struct {
	structRef
}

func (r siteRef) ID() uint32 { return r.id }

func (r siteRef) construction() *components.Construction {
	e, ok := r.s.entityOf(r.id)
	if !ok {
		return nil
	}
	return r.s.conMap.Get(e)
}

func (r siteRef) InBuildRange(u tasks.UnitRef) bool {
	return r.distanceTo(u) <= DefaultBuildRange
}

func (r siteRef) Started() bool {
	c := r.construction()
	return c != nil && c.Progress > 0
}

func (r siteRef) Done() bool {
	c := r.construction()
	return c != nil && c.Done()
}

func (r siteRef) ProgressState() (progress, required float64) {
	c := r.construction()
	if c == nil {
		return 0, 0
	}
	return c.Progress, c.Required
}

func (r siteRef) AddProgress(points float64) bool {
	c := r.construction()
	if c == nil {
		return false
	}
	c.Progress += points
	if c.Progress > c.Required {
		c.Progress = c.Required
	}
	return c.Done()
}
