// Package systems contains the per-tick simulation systems. Systems are
// plain functions over component data; orchestration and ordering live in
// the sim package.
package systems

import (
	"math"

	"github.com/calegria/outpost/caps"
	"github.com/calegria/outpost/components"
)

// Storage is the owner-side resource sink. Implemented by player state.
type Storage interface {
	AddResource(res caps.Resource, qty int)
}

// Deposit records one threshold-triggered transfer into owner storage.
type Deposit struct {
	Resource caps.Resource
	Quantity int
}

// TickProduction advances one unit's passive production by dt seconds and
// deposits into store when a slot crosses the threshold. Returns the
// deposits made this tick, in slot order.
//
// Units that are non-operational or unowned accumulate nothing: their
// buffers are zeroed so production resumes from scratch, with no backlog
// credit for the inactive period. The threshold check uses >= to tolerate
// variable tick lengths.
func TickProduction(p *components.Production, operational bool, store Storage, dt float64) []Deposit {
	if p == nil {
		return nil
	}
	if !operational || store == nil {
		p.ResetAll()
		return nil
	}

	var deposits []Deposit
	for i := range p.Produced {
		p.Produced[i] += p.Rates[i] * dt
		if p.Produced[i] < p.Threshold {
			continue
		}
		qty := int(math.Floor(p.Produced[i]))
		if qty > 0 {
			store.AddResource(p.Resources[i], qty)
			deposits = append(deposits, Deposit{Resource: p.Resources[i], Quantity: qty})
		}
		switch p.Policy {
		case components.DepositCarry:
			p.Produced[i] -= float64(qty)
		default:
			// Historical behavior: the whole buffer is zeroed, forfeiting
			// any fraction beyond the deposited amount.
			p.Produced[i] = 0
		}
	}
	return deposits
}
