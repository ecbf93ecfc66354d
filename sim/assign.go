package sim

import (
	"log/slog"

	"github.com/calegria/outpost/caps"
	"github.com/calegria/outpost/doctrine"
	"github.com/calegria/outpost/tasks"
)

// researchProvider exposes a unit's research capability to the task.
type researchProvider struct {
	c *caps.Research
}

func (r researchProvider) SpeedFactor() float64 { return r.c.SpeedFactor }

// contextFor assembles the standard task context for a unit. Collaborators
// the unit's capability set does not grant are left nil; tasks treat a
// missing collaborator as ineligibility.
func (s *Sim) contextFor(unitID uint32) (tasks.UnitContext, bool) {
	u := s.unitComp(unitID)
	if u == nil {
		return tasks.UnitContext{}, false
	}
	ctx := tasks.UnitContext{
		Unit:       unitRef{s: s, id: unitID},
		Relations:  s.players,
		Bus:        s.bus,
		ActiveTask: s.runner.ActiveTask(unitID),
	}
	if u.Caps.Has(caps.KindMobility) {
		ctx.Mover = moverAdapter{s: s, id: unitID}
	}
	if c := u.Caps.ByKind(caps.KindResearch); c != nil {
		ctx.Research = researchProvider{c: c.(*caps.Research)}
	}
	return ctx, true
}

// gateAllows consults the doctrine gate for a task. targetID 0 means no
// target.
func (s *Sim) gateAllows(task string, unitID, targetID uint32) bool {
	u := s.unitComp(unitID)
	if u == nil {
		return false
	}
	env := doctrine.GateEnv{
		Task: task,
		Unit: doctrine.UnitFacts{
			Template:    u.Template,
			Owner:       int(u.Owner),
			Operational: u.Operational,
		},
	}
	if t := s.unitComp(targetID); t != nil {
		env.Target = doctrine.TargetFacts{
			Present: true,
			Enemy:   s.players.IsEnemy(u.Owner, t.Owner),
		}
	}
	if !s.gates.Allow(env) {
		slog.Debug("assignment gated out", "task", task, "unit", unitID, "target", targetID)
		return false
	}
	return true
}

// AssignEnterGarrison orders a unit to enter a garrison structure. Returns
// false when the assignment is not eligible.
func (s *Sim) AssignEnterGarrison(unitID, targetID uint32) bool {
	if !s.gateAllows(s.taskEnterGarrison.Name(), unitID, targetID) {
		return false
	}
	ctx, ok := s.contextFor(unitID)
	if !ok {
		return false
	}
	in := tasks.GarrisonInput{Target: garrisonRef{structRef{s: s, id: targetID}}}
	return s.runner.Assign(unitID, s.taskEnterGarrison, ctx, in)
}

// AssignMove orders a unit to a world position.
func (s *Sim) AssignMove(unitID uint32, x, y float64) bool {
	if !s.gateAllows(s.taskMoveTo.Name(), unitID, 0) {
		return false
	}
	ctx, ok := s.contextFor(unitID)
	if !ok {
		return false
	}
	return s.runner.Assign(unitID, s.taskMoveTo, ctx, tasks.MoveInput{X: x, Y: y})
}

// AssignBuild orders a unit to construct a site.
func (s *Sim) AssignBuild(unitID, siteID uint32) bool {
	if !s.gateAllows(s.taskBuild.Name(), unitID, siteID) {
		return false
	}
	ctx, ok := s.contextFor(unitID)
	if !ok {
		return false
	}
	in := tasks.BuildInput{Site: siteRef{structRef{s: s, id: siteID}}}
	return s.runner.Assign(unitID, s.taskBuild, ctx, in)
}

// AssignResearch orders a unit to run a research project.
func (s *Sim) AssignResearch(unitID uint32, tech string, duration float64) bool {
	if !s.gateAllows(s.taskResearch.Name(), unitID, 0) {
		return false
	}
	ctx, ok := s.contextFor(unitID)
	if !ok {
		return false
	}
	return s.runner.Assign(unitID, s.taskResearch, ctx, tasks.ResearchInput{Tech: tech, Duration: duration})
}
