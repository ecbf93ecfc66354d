package main

import (
	"log"

	"github.com/calegria/outpost/components"
	"github.com/calegria/outpost/config"
	"github.com/calegria/outpost/events"
	"github.com/calegria/outpost/sim"
)

// Targets are the pacing goals the search optimizes toward.
type Targets struct {
	GoldPerMin   float64
	LumberPerMin float64
	TowerSeconds float64
}

// Metrics are the pacing figures measured from one evaluation run.
type Metrics struct {
	GoldPerMin   float64
	LumberPerMin float64
	TowerSeconds float64
}

// FitnessEvaluator runs headless simulations and scores parameter vectors
// against the targets. Lower is better.
type FitnessEvaluator struct {
	params     *ParamVector
	configPath string
	simSeconds float64
	seeds      []int64
	targets    Targets

	lastMetrics Metrics
}

// NewFitnessEvaluator creates an evaluator.
func NewFitnessEvaluator(params *ParamVector, configPath string, simSeconds float64, seeds []int64, targets Targets) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		configPath: configPath,
		simSeconds: simSeconds,
		seeds:      seeds,
		targets:    targets,
	}
}

// LastMetrics returns the metrics of the most recent evaluation, averaged
// over its seeds.
func (fe *FitnessEvaluator) LastMetrics() Metrics {
	return fe.lastMetrics
}

// Evaluate runs one simulation per seed with the given raw parameter values
// and returns the averaged fitness.
func (fe *FitnessEvaluator) Evaluate(raw []float64) float64 {
	clamped := fe.params.Clamp(raw)

	var fitnessSum float64
	var avg Metrics
	for _, seed := range fe.seeds {
		m := fe.runOnce(clamped, seed)
		fitnessSum += fe.score(m)
		avg.GoldPerMin += m.GoldPerMin
		avg.LumberPerMin += m.LumberPerMin
		avg.TowerSeconds += m.TowerSeconds
	}
	n := float64(len(fe.seeds))
	fe.lastMetrics = Metrics{
		GoldPerMin:   avg.GoldPerMin / n,
		LumberPerMin: avg.LumberPerMin / n,
		TowerSeconds: avg.TowerSeconds / n,
	}
	return fitnessSum / n
}

// score turns measured pacing into a scalar: the sum of squared relative
// errors against the targets. A tower that never finishes scores as if it
// took the whole run.
func (fe *FitnessEvaluator) score(m Metrics) float64 {
	relErr := func(got, want float64) float64 {
		if want == 0 {
			return 0
		}
		e := (got - want) / want
		return e * e
	}
	return relErr(m.GoldPerMin, fe.targets.GoldPerMin) +
		relErr(m.LumberPerMin, fe.targets.LumberPerMin) +
		relErr(m.TowerSeconds, fe.targets.TowerSeconds)
}

// runOnce runs a single headless evaluation scenario: a producing base plus
// one worker ordered to build the watchtower.
func (fe *FitnessEvaluator) runOnce(values []float64, seed int64) Metrics {
	cfg, err := config.Load(fe.configPath)
	if err != nil {
		log.Fatalf("failed to reload config: %v", err)
	}
	fe.params.ApplyToConfig(cfg, values)
	cfg.Sim.Seed = seed
	cfg.Scenario = nil

	bus := events.NewBus()

	var towerDone bool
	bus.Subscribe(func(e events.Event) {
		if _, ok := e.(events.BuildCompleted); ok {
			towerDone = true
		}
	})

	s := sim.New(cfg, bus)

	const owner components.PlayerID = 1
	s.Spawn("gold_mine", owner, 100, 100)
	s.Spawn("gold_mine", owner, 104, 100)
	s.Spawn("lumber_camp", owner, 100, 110)
	tower, _ := s.Spawn("watchtower", owner, 110, 100)
	worker, _ := s.Spawn("worker", owner, 108, 100)
	s.AssignBuild(worker, tower)

	dt := cfg.Sim.DT
	ticks := int(fe.simSeconds / dt)
	var towerDoneAt float64 = -1
	for i := 0; i < ticks; i++ {
		s.Step(dt)
		if towerDone && towerDoneAt < 0 {
			towerDoneAt = float64(s.Tick()) * dt
		}
	}

	minutes := fe.simSeconds / 60.0
	p := s.Player(owner)
	m := Metrics{
		GoldPerMin:   float64(p.Amount("gold")) / minutes,
		LumberPerMin: float64(p.Amount("lumber")) / minutes,
		TowerSeconds: fe.simSeconds,
	}
	if towerDoneAt >= 0 {
		m.TowerSeconds = towerDoneAt
	}
	return m
}
