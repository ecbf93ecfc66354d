package components

import "github.com/calegria/outpost/caps"

// DepositPolicy controls what happens to the accumulation buffer when a
// deposit fires.
type DepositPolicy uint8

const (
	// DepositZero resets the whole buffer to zero on deposit. Fractional
	// production beyond the threshold is forfeited. This is the historical
	// behavior and the default.
	DepositZero DepositPolicy = iota
	// DepositCarry keeps the sub-integer remainder in the buffer.
	DepositCarry
)

// Production is the runtime accumulation state provisioned by the production
// capability. Slot i of Produced tracks fractional output of Resources[i].
// Produced values are always >= 0.
type Production struct {
	Resources []caps.Resource
	Rates     []float64 // per-resource units per second
	Threshold float64
	Policy    DepositPolicy

	Produced []float64
}

// NewProduction builds runtime state from a production capability record.
func NewProduction(c *caps.Production, policy DepositPolicy) *Production {
	p := &Production{
		Resources: make([]caps.Resource, len(c.Outputs)),
		Rates:     make([]float64, len(c.Outputs)),
		Threshold: c.Threshold,
		Policy:    policy,
		Produced:  make([]float64, len(c.Outputs)),
	}
	for i, out := range c.Outputs {
		p.Resources[i] = out.Resource
		p.Rates[i] = out.Rate
	}
	return p
}

// ResetAll zeroes every accumulation slot.
func (p *Production) ResetAll() {
	for i := range p.Produced {
		p.Produced[i] = 0
	}
}
