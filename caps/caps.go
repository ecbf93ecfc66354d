// Package caps defines unit capabilities and their per-template sets.
//
// A capability is declarative configuration granting a unit a behavior
// (passive production, garrisoning, mobility, destruction refund, research).
// Capabilities are data, never runtime state: per-unit mutable state lives in
// companion components provisioned at spawn time, one per capability kind
// that needs it.
package caps

import "fmt"

// Resource identifies a stockpiled resource. Identifiers are unique within a
// simulation run.
type Resource string

// Kind identifies a capability. At most one capability per kind may be
// attached to a unit template.
type Kind uint8

const (
	KindProduction Kind = iota
	KindGarrison
	KindMobility
	KindRefund
	KindResearch

	numKinds
)

// String returns the kind name for logs and diagnostics.
func (k Kind) String() string {
	switch k {
	case KindProduction:
		return "production"
	case KindGarrison:
		return "garrison"
	case KindMobility:
		return "mobility"
	case KindRefund:
		return "refund"
	case KindResearch:
		return "research"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Capability is an immutable configuration record attached to a unit
// template. SetDefaults populates factory defaults before any explicit
// configuration overrides it; it is used at definition-authoring time only.
type Capability interface {
	Kind() Kind
	SetDefaults()
}

// Output declares one passive production stream.
type Output struct {
	Resource Resource
	Rate     float64 // units per second
}

// Production grants continuous resource generation while the unit is
// operational and owned. Accumulated fractions deposit into owner storage
// once they reach Threshold.
type Production struct {
	Outputs   []Output
	Threshold float64
}

func (*Production) Kind() Kind { return KindProduction }

// SetDefaults applies factory defaults for unset fields.
func (p *Production) SetDefaults() {
	if p.Threshold <= 0 {
		p.Threshold = 10
	}
}

// Garrison grants the ability to hold other units.
type Garrison struct {
	Capacity   int
	EnterRange float64 // distance at which a unit may step inside
}

func (*Garrison) Kind() Kind { return KindGarrison }

func (g *Garrison) SetDefaults() {
	if g.Capacity <= 0 {
		g.Capacity = 4
	}
	if g.EnterRange <= 0 {
		g.EnterRange = 2.0
	}
}

// Mobility grants movement through the movement provider.
type Mobility struct {
	Speed        float64 // world units per second
	ArriveRadius float64 // destination considered reached inside this radius
}

func (*Mobility) Kind() Kind { return KindMobility }

func (m *Mobility) SetDefaults() {
	if m.Speed <= 0 {
		m.Speed = 30
	}
	if m.ArriveRadius <= 0 {
		m.ArriveRadius = 1.0
	}
}

// Cost is a (resource, quantity) pair used for refunds.
type Cost struct {
	Resource Resource
	Quantity int
}

// Refund returns a fraction of the unit's cost to its owner when the unit is
// removed from the simulation.
type Refund struct {
	Percent float64 // 0..1 fraction of each cost entry refunded
	Costs   []Cost
}

func (*Refund) Kind() Kind { return KindRefund }

func (r *Refund) SetDefaults() {
	if r.Percent <= 0 {
		r.Percent = 0.5
	}
}

// Research grants the ability to run research tasks.
type Research struct {
	SpeedFactor float64 // multiplier on research progress (1.0 = nominal)
}

func (*Research) Kind() Kind { return KindResearch }

func (r *Research) SetDefaults() {
	if r.SpeedFactor <= 0 {
		r.SpeedFactor = 1.0
	}
}

// Set is the ordered capability list of a unit template. Attach order is
// preserved because provisioning runs in declaration order.
type Set struct {
	ordered []Capability
	byKind  [numKinds]Capability
}

// NewSet builds a validated set. A duplicate kind is a configuration error:
// the set is rejected rather than silently merged.
func NewSet(list ...Capability) (*Set, error) {
	s := &Set{}
	for _, c := range list {
		if err := s.add(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Set) add(c Capability) error {
	k := c.Kind()
	if int(k) >= len(s.byKind) {
		return fmt.Errorf("caps: unknown capability kind %d", k)
	}
	if s.byKind[k] != nil {
		return fmt.Errorf("caps: duplicate capability kind %q", k)
	}
	s.byKind[k] = c
	s.ordered = append(s.ordered, c)
	return nil
}

// ByKind returns the capability of the given kind, or nil.
func (s *Set) ByKind(k Kind) Capability {
	if s == nil || int(k) >= len(s.byKind) {
		return nil
	}
	return s.byKind[k]
}

// Has reports whether the set contains the given kind.
func (s *Set) Has(k Kind) bool { return s.ByKind(k) != nil }

// All returns the capabilities in declaration order.
func (s *Set) All() []Capability {
	if s == nil {
		return nil
	}
	return s.ordered
}

// Len returns the number of capabilities in the set.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ordered)
}
