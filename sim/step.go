package sim

import (
	"log/slog"

	"github.com/calegria/outpost/events"
	"github.com/calegria/outpost/systems"
	"github.com/calegria/outpost/telemetry"
)

// Step runs a single tick of the simulation.
func (s *Sim) Step(dt float64) {
	if s.perf != nil {
		s.perf.StartTick()
	}
	if s.collector != nil {
		s.collector.SetTick(s.tick)
	}

	// 1. Tick active task handlers
	s.startPhase(telemetry.PhaseTasks)
	s.runner.Update(dt)

	// 2. Advance passive production and deposit across thresholds
	s.startPhase(telemetry.PhaseProduction)
	s.updateProduction(dt)

	// 3. Integrate movement toward current orders
	s.startPhase(telemetry.PhaseMovement)
	s.updateMovement(dt)

	// 4. Promote completed construction sites
	s.startPhase(telemetry.PhaseLifecycle)
	s.updateConstruction()

	// 5. Flush telemetry windows
	s.startPhase(telemetry.PhaseTelemetry)
	s.flushTelemetry()

	s.tick++
	if s.perf != nil {
		s.perf.EndTick()
	}
}

func (s *Sim) startPhase(name string) {
	if s.perf != nil {
		s.perf.StartPhase(name)
	}
}

// updateProduction ticks every producing unit. Deposits publish to the bus
// as they happen; unowned units get no storage and so accumulate nothing.
func (s *Sim) updateProduction(dt float64) {
	query := s.prodFilter.Query()
	for query.Next() {
		u, p := query.Get()

		store := s.players.Storage(u.Owner)
		deposits := systems.TickProduction(p, u.Operational, store, dt)
		for _, d := range deposits {
			s.bus.Publish(events.ResourceDeposited{
				UnitID:   u.ID,
				Owner:    uint8(u.Owner),
				Resource: d.Resource,
				Quantity: d.Quantity,
			})
		}
	}
}

// updateMovement integrates every mobile unit with an active order.
func (s *Sim) updateMovement(dt float64) {
	query := s.moveFilter.Query()
	for query.Next() {
		pos, mob, order := query.Get()
		systems.UpdateMovement(pos, mob, order, dt)
	}
}

// updateConstruction flips sites operational once their requirement is met.
// Build tasks publish the completion event; this pass applies the state
// change so it holds even if the finishing builder despawned mid-tick.
func (s *Sim) updateConstruction() {
	query := s.conFilter.Query()
	for query.Next() {
		u, c := query.Get()
		if !u.Operational && c.Done() {
			u.Operational = true
			slog.Info("construction complete", "id", u.ID, "template", u.Template)
		}
	}
}

// flushTelemetry closes the current stats window when due and writes CSV
// output. All telemetry is optional; missing pieces are skipped.
func (s *Sim) flushTelemetry() {
	if s.collector == nil || !s.collector.ShouldFlush(s.tick) {
		return
	}
	units, operational := s.Counts()
	stats := s.collector.Flush(s.tick, units, operational)
	stats.LogStats()

	if err := s.output.WriteTelemetry(stats); err != nil {
		slog.Error("writing telemetry", "error", err)
	}
	if err := s.output.WriteDeposits(s.collector.DrainDeposits()); err != nil {
		slog.Error("writing deposits", "error", err)
	}
	if s.perf != nil {
		if err := s.output.WritePerf(s.perf.Stats(), stats.WindowEndTick); err != nil {
			slog.Error("writing perf", "error", err)
		}
	}
}
