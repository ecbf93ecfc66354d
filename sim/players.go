package sim

import (
	"github.com/calegria/outpost/caps"
	"github.com/calegria/outpost/components"
	"github.com/calegria/outpost/config"
	"github.com/calegria/outpost/systems"
)

// Player holds one player's resource stockpile and diplomatic team.
type Player struct {
	ID        components.PlayerID
	Team      int
	Resources map[caps.Resource]int
}

// AddResource credits the player's stockpile. Implements systems.Storage.
func (p *Player) AddResource(res caps.Resource, qty int) {
	p.Resources[res] += qty
}

// Amount returns the stockpiled quantity of a resource.
func (p *Player) Amount(res caps.Resource) int {
	return p.Resources[res]
}

// Players is the roster of declared players. It answers diplomatic queries
// for the task framework and provides per-owner storage for production.
type Players struct {
	byID map[components.PlayerID]*Player
}

// NewPlayers builds the roster from configuration.
func NewPlayers(cfgs []config.PlayerConfig) *Players {
	ps := &Players{byID: make(map[components.PlayerID]*Player, len(cfgs))}
	for _, pc := range cfgs {
		id := components.PlayerID(pc.ID)
		ps.byID[id] = &Player{
			ID:        id,
			Team:      pc.Team,
			Resources: make(map[caps.Resource]int),
		}
	}
	return ps
}

// Get returns the player by ID, or nil.
func (ps *Players) Get(id components.PlayerID) *Player {
	return ps.byID[id]
}

// Storage returns the deposit sink for an owner, or nil for unowned or
// undeclared players. Production against a nil sink accumulates nothing.
func (ps *Players) Storage(id components.PlayerID) systems.Storage {
	p, ok := ps.byID[id]
	if !ok {
		return nil
	}
	return p
}

// IsEnemy reports whether two players are on opposing teams. The unowned
// player is neutral to everyone. Implements tasks.Relations.
func (ps *Players) IsEnemy(a, b components.PlayerID) bool {
	if a == 0 || b == 0 || a == b {
		return false
	}
	pa, pb := ps.byID[a], ps.byID[b]
	if pa == nil || pb == nil {
		return false
	}
	return pa.Team != pb.Team
}
