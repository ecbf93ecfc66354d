package sim

import (
	"log/slog"
	"math"

	"github.com/calegria/outpost/caps"
	"github.com/calegria/outpost/components"
	"github.com/calegria/outpost/config"
	"github.com/calegria/outpost/events"
)

// Spawn creates a unit from a template at a world position. Returns the new
// unit's ID, or 0 and false if the template does not exist. Capability
// configuration errors degrade to warnings: a duplicate kind keeps the first
// declaration and drops the rest.
func (s *Sim) Spawn(template string, owner components.PlayerID, x, y float64) (uint32, bool) {
	tmpl, ok := s.cfg.Template(template)
	if !ok {
		slog.Warn("spawn rejected: unknown template", "template", template)
		return 0, false
	}

	set := buildCapSet(tmpl)

	id := s.nextID
	s.nextID++

	unit := components.Unit{
		ID:          id,
		Template:    template,
		Owner:       owner,
		Operational: tmpl.Construction == nil,
		Caps:        set,
	}
	pos := components.Position{X: x, Y: y}

	entity := s.unitMapper.NewEntity(&unit, &pos)
	s.entities[id] = entity

	// Provision runtime state in capability declaration order.
	for _, c := range set.All() {
		switch cap := c.(type) {
		case *caps.Production:
			s.prodMap.Add(entity, components.NewProduction(cap, s.policy))
		case *caps.Garrison:
			s.garMap.Add(entity, &components.Garrison{
				Capacity:   cap.Capacity,
				EnterRange: cap.EnterRange,
			})
		case *caps.Mobility:
			s.mobMap.Add(entity, &components.Mobility{
				Speed:        cap.Speed,
				ArriveRadius: cap.ArriveRadius,
			})
			s.moveMap.Add(entity, &components.MoveOrder{})
		}
		// Refund and research carry no runtime state; they are read from
		// the capability set when needed.
	}

	if tmpl.Construction != nil {
		s.conMap.Add(entity, &components.Construction{Required: tmpl.Construction.Required})
	}

	s.bus.Publish(events.UnitSpawned{UnitID: id, Template: template, Owner: uint8(owner)})
	slog.Debug("unit spawned", "id", id, "template", template, "owner", owner, "x", x, "y", y)

	return id, true
}

// Despawn removes a unit from the simulation: its active task is force-ended,
// its refund (if any) is credited to its owner, and it is released from any
// garrison holding it.
func (s *Sim) Despawn(id uint32) bool {
	e, ok := s.entityOf(id)
	if !ok {
		return false
	}
	unit := s.unitMap.Get(e)

	s.runner.ForceEnd(id)
	s.applyRefund(unit)
	s.releaseFromGarrisons(id)

	s.bus.Publish(events.UnitDespawned{UnitID: id, Template: unit.Template})
	slog.Debug("unit despawned", "id", id, "template", unit.Template)

	s.world.RemoveEntity(e)
	delete(s.entities, id)
	return true
}

// applyRefund credits the configured fraction of the unit's cost back to its
// owner. Quantities round down; a refund that rounds to zero credits nothing.
func (s *Sim) applyRefund(unit *components.Unit) {
	c := unit.Caps.ByKind(caps.KindRefund)
	if c == nil {
		return
	}
	r := c.(*caps.Refund)
	store := s.players.Get(unit.Owner)
	if store == nil {
		return
	}
	for _, cost := range r.Costs {
		qty := int(math.Floor(r.Percent * float64(cost.Quantity)))
		if qty > 0 {
			store.AddResource(cost.Resource, qty)
		}
	}
}

// releaseFromGarrisons removes the unit's registration from every garrison.
func (s *Sim) releaseFromGarrisons(id uint32) {
	query := s.garFilter.Query()
	for query.Next() {
		_, g := query.Get()
		for i, held := range g.Units {
			if held == id {
				g.Units = append(g.Units[:i], g.Units[i+1:]...)
				break
			}
		}
	}
}

// buildCapSet converts template capability configuration into a validated
// capability set. Duplicate kinds are reported and dropped, keeping the first
// declaration; an invalid entry never aborts the spawn.
func buildCapSet(tmpl *config.TemplateConfig) *caps.Set {
	var list []caps.Capability
	seen := make(map[caps.Kind]bool)
	for _, cc := range tmpl.Capabilities {
		c := capFromConfig(cc)
		if c == nil {
			slog.Warn("capability ignored: no configuration for kind",
				"template", tmpl.Name, "kind", cc.Kind)
			continue
		}
		if seen[c.Kind()] {
			slog.Warn("capability ignored: duplicate kind",
				"template", tmpl.Name, "kind", c.Kind().String())
			continue
		}
		seen[c.Kind()] = true
		c.SetDefaults()
		list = append(list, c)
	}
	set, err := caps.NewSet(list...)
	if err != nil {
		// Unreachable after de-duplication, but degrade anyway.
		slog.Warn("capability set rejected", "template", tmpl.Name, "error", err)
		set, _ = caps.NewSet()
	}
	return set
}

// capFromConfig builds one capability record from its configuration section.
func capFromConfig(cc config.CapabilityConfig) caps.Capability {
	switch cc.Kind {
	case "production":
		if cc.Production == nil {
			return nil
		}
		p := &caps.Production{Threshold: cc.Production.Threshold}
		for _, out := range cc.Production.Outputs {
			p.Outputs = append(p.Outputs, caps.Output{
				Resource: caps.Resource(out.Resource),
				Rate:     out.Rate,
			})
		}
		return p
	case "garrison":
		if cc.Garrison == nil {
			return nil
		}
		return &caps.Garrison{
			Capacity:   cc.Garrison.Capacity,
			EnterRange: cc.Garrison.EnterRange,
		}
	case "mobility":
		if cc.Mobility == nil {
			return nil
		}
		return &caps.Mobility{
			Speed:        cc.Mobility.Speed,
			ArriveRadius: cc.Mobility.ArriveRadius,
		}
	case "refund":
		if cc.Refund == nil {
			return nil
		}
		r := &caps.Refund{Percent: cc.Refund.Percent}
		for _, cost := range cc.Refund.Costs {
			r.Costs = append(r.Costs, caps.Cost{
				Resource: caps.Resource(cost.Resource),
				Quantity: cost.Quantity,
			})
		}
		return r
	case "research":
		if cc.Research == nil {
			return nil
		}
		return &caps.Research{SpeedFactor: cc.Research.SpeedFactor}
	}
	return nil
}
