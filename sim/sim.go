// Package sim orchestrates the unit simulation: entity storage, spawning,
// task assignment, and the fixed-timestep step loop that drives tasks,
// production, movement, and telemetry.
package sim

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/calegria/outpost/components"
	"github.com/calegria/outpost/config"
	"github.com/calegria/outpost/doctrine"
	"github.com/calegria/outpost/events"
	"github.com/calegria/outpost/tasks"
	"github.com/calegria/outpost/telemetry"
)

// DefaultBuildRange is the distance within which a builder applies progress
// to a construction site.
const DefaultBuildRange = 3.0

// Sim holds the complete simulation state.
type Sim struct {
	cfg   *config.Config
	world *ecs.World
	rng   *rand.Rand

	bus     *events.Bus
	runner  *tasks.Runner
	gates   *doctrine.Gates
	players *Players

	// Entity creation and iteration
	unitMapper *ecs.Map2[components.Unit, components.Position]
	unitFilter *ecs.Filter2[components.Unit, components.Position]
	prodFilter *ecs.Filter2[components.Unit, components.Production]
	garFilter  *ecs.Filter2[components.Unit, components.Garrison]
	conFilter  *ecs.Filter2[components.Unit, components.Construction]
	moveFilter *ecs.Filter3[components.Position, components.Mobility, components.MoveOrder]

	// Individual component mappers for lookups
	unitMap *ecs.Map1[components.Unit]
	posMap  *ecs.Map1[components.Position]
	prodMap *ecs.Map1[components.Production]
	garMap  *ecs.Map1[components.Garrison]
	mobMap  *ecs.Map1[components.Mobility]
	moveMap *ecs.Map1[components.MoveOrder]
	conMap  *ecs.Map1[components.Construction]

	// Unit ID to entity index
	entities map[uint32]ecs.Entity

	// Task descriptors, shared across assignments
	taskEnterGarrison *tasks.EnterGarrison
	taskMoveTo        *tasks.MoveTo
	taskBuild         *tasks.Build
	taskResearch      *tasks.Research

	policy components.DepositPolicy

	// Telemetry (optional)
	collector *telemetry.Collector
	output    *telemetry.OutputManager
	perf      *telemetry.PerfCollector

	tick   int32
	nextID uint32
}

// New creates a simulation from configuration. The bus is injected so
// callers can subscribe observers before any unit spawns.
func New(cfg *config.Config, bus *events.Bus) *Sim {
	world := ecs.NewWorld()

	s := &Sim{
		cfg:     cfg,
		world:   world,
		rng:     rand.New(rand.NewSource(cfg.Sim.Seed)),
		bus:     bus,
		runner:  tasks.NewRunner(bus),
		gates:   doctrine.Compile(cfg.Doctrine.Gates),
		players: NewPlayers(cfg.Players),

		unitMapper: ecs.NewMap2[components.Unit, components.Position](world),
		unitFilter: ecs.NewFilter2[components.Unit, components.Position](world),
		prodFilter: ecs.NewFilter2[components.Unit, components.Production](world),
		garFilter:  ecs.NewFilter2[components.Unit, components.Garrison](world),
		conFilter:  ecs.NewFilter2[components.Unit, components.Construction](world),
		moveFilter: ecs.NewFilter3[components.Position, components.Mobility, components.MoveOrder](world),

		unitMap: ecs.NewMap1[components.Unit](world),
		posMap:  ecs.NewMap1[components.Position](world),
		prodMap: ecs.NewMap1[components.Production](world),
		garMap:  ecs.NewMap1[components.Garrison](world),
		mobMap:  ecs.NewMap1[components.Mobility](world),
		moveMap: ecs.NewMap1[components.MoveOrder](world),
		conMap:  ecs.NewMap1[components.Construction](world),

		entities: make(map[uint32]ecs.Entity),

		taskMoveTo:   &tasks.MoveTo{},
		taskResearch: &tasks.Research{},

		nextID: 1,
	}

	s.taskEnterGarrison = tasks.NewEnterGarrison()
	if cfg.Tasks.RefreshInterval > 0 {
		s.taskEnterGarrison.RefreshInterval = cfg.Tasks.RefreshInterval
	}
	s.taskBuild = tasks.NewBuild(cfg.Tasks.BuildRate)

	if cfg.Production.Policy == "carry" {
		s.policy = components.DepositCarry
	}

	return s
}

// AttachTelemetry wires optional telemetry into the step loop. Any argument
// may be nil.
func (s *Sim) AttachTelemetry(c *telemetry.Collector, om *telemetry.OutputManager, perf *telemetry.PerfCollector) {
	s.collector = c
	s.output = om
	s.perf = perf
}

// SpawnScenario spawns the configured scenario units.
func (s *Sim) SpawnScenario() {
	for _, sc := range s.cfg.Scenario {
		n := sc.Count
		if n < 1 {
			n = 1
		}
		for i := 0; i < n; i++ {
			// Scatter multiples so they do not stack exactly.
			dx := s.rng.Float64()*4 - 2
			dy := s.rng.Float64()*4 - 2
			s.Spawn(sc.Template, components.PlayerID(sc.Owner), sc.X+dx, sc.Y+dy)
		}
	}
}

// Tick returns the current simulation tick.
func (s *Sim) Tick() int32 { return s.tick }

// Bus returns the simulation event bus.
func (s *Sim) Bus() *events.Bus { return s.bus }

// Player returns the player state by ID, or nil.
func (s *Sim) Player(id components.PlayerID) *Player { return s.players.Get(id) }

// Counts returns the number of living units and how many are operational.
func (s *Sim) Counts() (units, operational int) {
	query := s.unitFilter.Query()
	for query.Next() {
		u, _ := query.Get()
		units++
		if u.Operational {
			operational++
		}
	}
	return units, operational
}

// ActiveTask returns the name of the unit's running task, or "" if idle.
func (s *Sim) ActiveTask(unitID uint32) string {
	return s.runner.ActiveTask(unitID)
}

// unitComp resolves a unit ID to its component, or nil if the unit is gone.
func (s *Sim) unitComp(id uint32) *components.Unit {
	e, ok := s.entities[id]
	if !ok || !s.world.Alive(e) {
		return nil
	}
	return s.unitMap.Get(e)
}

func (s *Sim) entityOf(id uint32) (ecs.Entity, bool) {
	e, ok := s.entities[id]
	if !ok || !s.world.Alive(e) {
		return ecs.Entity{}, false
	}
	return e, true
}
