package sim

import (
	"testing"

	"github.com/calegria/outpost/components"
	"github.com/calegria/outpost/config"
	"github.com/calegria/outpost/events"
)

// newTestSim builds a simulation from embedded defaults with the scenario
// cleared, so tests spawn exactly what they need.
func newTestSim(t *testing.T) (*Sim, *events.Bus, *recorder) {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	cfg.Scenario = nil
	bus := events.NewBus()
	rec := &recorder{}
	bus.Subscribe(rec.handle)
	return New(cfg, bus), bus, rec
}

type recorder struct {
	evs []events.Event
}

func (r *recorder) handle(e events.Event) { r.evs = append(r.evs, e) }

func (r *recorder) count(match func(events.Event) bool) int {
	n := 0
	for _, e := range r.evs {
		if match(e) {
			n++
		}
	}
	return n
}

// ---------- Spawning ----------

func TestSim_SpawnAndCounts(t *testing.T) {
	s, _, rec := newTestSim(t)

	id, ok := s.Spawn("worker", 1, 0, 0)
	if !ok || id == 0 {
		t.Fatal("worker spawn should succeed")
	}
	if _, ok := s.Spawn("dragon", 1, 0, 0); ok {
		t.Error("unknown template spawn must fail")
	}

	units, operational := s.Counts()
	if units != 1 || operational != 1 {
		t.Errorf("expected 1 operational unit, got %d/%d", operational, units)
	}
	if rec.count(func(e events.Event) bool { _, ok := e.(events.UnitSpawned); return ok }) != 1 {
		t.Error("expected one spawn event")
	}
}

func TestSim_SpawnSiteStartsNonOperational(t *testing.T) {
	s, _, _ := newTestSim(t)

	s.Spawn("watchtower", 1, 0, 0)
	units, operational := s.Counts()
	if units != 1 || operational != 0 {
		t.Errorf("unfinished site must not be operational, got %d/%d", operational, units)
	}
}

// ---------- Production ----------

func TestSim_ProductionDepositsIntoOwnerStorage(t *testing.T) {
	s, _, rec := newTestSim(t)

	// gold_mine: rate 5/s, threshold 10.
	s.Spawn("gold_mine", 1, 0, 0)

	s.Step(1.0)
	if got := s.Player(1).Amount("gold"); got != 0 {
		t.Errorf("no deposit expected after 1s, got %d", got)
	}
	s.Step(1.0)
	if got := s.Player(1).Amount("gold"); got != 10 {
		t.Errorf("expected 10 gold after 2s, got %d", got)
	}
	if rec.count(func(e events.Event) bool { _, ok := e.(events.ResourceDeposited); return ok }) != 1 {
		t.Error("expected exactly one deposit event")
	}
}

func TestSim_UnownedUnitProducesNothing(t *testing.T) {
	s, _, rec := newTestSim(t)

	s.Spawn("gold_mine", 0, 0, 0)
	for i := 0; i < 10; i++ {
		s.Step(1.0)
	}
	if rec.count(func(e events.Event) bool { _, ok := e.(events.ResourceDeposited); return ok }) != 0 {
		t.Error("unowned unit must never deposit")
	}
}

// ---------- Movement ----------

func TestSim_MoveToArrives(t *testing.T) {
	s, _, rec := newTestSim(t)

	id, _ := s.Spawn("worker", 1, 0, 0)
	if !s.AssignMove(id, 10, 0) {
		t.Fatal("move assignment should succeed")
	}
	if s.ActiveTask(id) != "move_to" {
		t.Fatalf("expected move_to active, got %q", s.ActiveTask(id))
	}

	for i := 0; i < 200 && s.ActiveTask(id) != ""; i++ {
		s.Step(0.1)
	}
	if s.ActiveTask(id) != "" {
		t.Fatal("move task should have finished")
	}
	finished := rec.count(func(e events.Event) bool {
		tf, ok := e.(events.TaskFinished)
		return ok && tf.Task == "move_to" && !tf.Forced
	})
	if finished != 1 {
		t.Errorf("expected one unforced task-finished event, got %d", finished)
	}
}

func TestSim_ImmobileUnitCannotMove(t *testing.T) {
	s, _, _ := newTestSim(t)

	id, _ := s.Spawn("gold_mine", 1, 0, 0)
	if s.AssignMove(id, 10, 0) {
		t.Error("a unit without mobility must not accept move orders")
	}
}

func TestSim_ReassignPreemptsActiveTask(t *testing.T) {
	s, _, rec := newTestSim(t)

	id, _ := s.Spawn("worker", 1, 0, 0)
	s.AssignMove(id, 100, 0)
	if !s.AssignMove(id, 0, 100) {
		t.Fatal("reassignment should succeed")
	}
	forced := rec.count(func(e events.Event) bool {
		tf, ok := e.(events.TaskFinished)
		return ok && tf.Forced
	})
	if forced != 1 {
		t.Errorf("preemption should force-end the old handler once, got %d", forced)
	}
}

// ---------- Garrison ----------

func TestSim_EnterGarrisonEndToEnd(t *testing.T) {
	s, _, _ := newTestSim(t)

	keep, _ := s.Spawn("keep", 1, 0, 0)
	footman, _ := s.Spawn("footman", 1, 20, 0)

	if !s.AssignEnterGarrison(footman, keep) {
		t.Fatal("garrison assignment should succeed")
	}
	for i := 0; i < 400 && s.ActiveTask(footman) != ""; i++ {
		s.Step(0.1)
	}

	e, _ := s.entityOf(keep)
	g := s.garMap.Get(e)
	if !g.Holds(footman) {
		t.Error("footman should be registered in the keep")
	}
}

func TestSim_GarrisonConflictingAssignmentRejected(t *testing.T) {
	s, _, _ := newTestSim(t)

	keep, _ := s.Spawn("keep", 1, 0, 0)
	footman, _ := s.Spawn("footman", 1, 20, 0)

	if !s.AssignEnterGarrison(footman, keep) {
		t.Fatal("first assignment should succeed")
	}
	if s.AssignEnterGarrison(footman, keep) {
		t.Error("same task already active must be a conflicting assignment")
	}
}

func TestSim_DoctrineGateBlocksWorkers(t *testing.T) {
	// Default doctrine forbids workers from garrisoning.
	s, _, _ := newTestSim(t)

	keep, _ := s.Spawn("keep", 1, 0, 0)
	worker, _ := s.Spawn("worker", 1, 5, 0)

	if s.AssignEnterGarrison(worker, keep) {
		t.Error("doctrine gate should block workers from garrisons")
	}
}

func TestSim_EnemyGarrisonRejected(t *testing.T) {
	s, _, _ := newTestSim(t)

	keep, _ := s.Spawn("keep", 2, 0, 0) // player 2, opposing team
	footman, _ := s.Spawn("footman", 1, 5, 0)

	if s.AssignEnterGarrison(footman, keep) {
		t.Error("enemy garrison must be rejected")
	}
}

// ---------- Construction ----------

func TestSim_BuildSiteToCompletion(t *testing.T) {
	s, _, rec := newTestSim(t)

	// Shrink the requirement so the build finishes quickly.
	i := s.cfg.Derived.TemplateIndex["watchtower"]
	s.cfg.Templates[i].Construction.Required = 5

	site, _ := s.Spawn("watchtower", 1, 0, 0)
	worker, _ := s.Spawn("worker", 1, 1, 0)

	if !s.AssignBuild(worker, site) {
		t.Fatal("build assignment should succeed")
	}
	for i := 0; i < 100 && s.ActiveTask(worker) != ""; i++ {
		s.Step(0.1)
	}

	u := s.unitComp(site)
	if u == nil || !u.Operational {
		t.Fatal("completed site should be operational")
	}
	if rec.count(func(e events.Event) bool { _, ok := e.(events.BuildStarted); return ok }) != 1 {
		t.Error("expected one build-started event")
	}
	if rec.count(func(e events.Event) bool { _, ok := e.(events.BuildCompleted); return ok }) != 1 {
		t.Error("expected one build-completed event")
	}
	if rec.count(func(e events.Event) bool { _, ok := e.(events.BuildCanceled); return ok }) != 0 {
		t.Error("a completed build must not report canceled")
	}
}

func TestSim_BuildCanceledOnDespawn(t *testing.T) {
	s, _, rec := newTestSim(t)

	site, _ := s.Spawn("watchtower", 1, 0, 0)
	worker, _ := s.Spawn("worker", 1, 1, 0)

	s.AssignBuild(worker, site)
	s.Step(0.1) // applies some progress
	s.Despawn(worker)

	if rec.count(func(e events.Event) bool { _, ok := e.(events.BuildCanceled); return ok }) != 1 {
		t.Error("despawning mid-build should cancel the build")
	}
}

// ---------- Research ----------

func TestSim_ResearchFinishes(t *testing.T) {
	s, _, rec := newTestSim(t)

	keep, _ := s.Spawn("keep", 1, 0, 0)
	if !s.AssignResearch(keep, "masonry", 1.0) {
		t.Fatal("research assignment should succeed")
	}
	for i := 0; i < 30 && s.ActiveTask(keep) != ""; i++ {
		s.Step(0.1)
	}

	done := rec.count(func(e events.Event) bool {
		rf, ok := e.(events.ResearchFinished)
		return ok && rf.Tech == "masonry"
	})
	if done != 1 {
		t.Errorf("expected one research-finished event, got %d", done)
	}
}

func TestSim_ResearchNeedsCapability(t *testing.T) {
	s, _, _ := newTestSim(t)

	worker, _ := s.Spawn("worker", 1, 0, 0)
	if s.AssignResearch(worker, "masonry", 1.0) {
		t.Error("units without the research capability must not research")
	}
}

// ---------- Despawn ----------

func TestSim_DespawnRefundsOwner(t *testing.T) {
	s, _, _ := newTestSim(t)

	// worker refunds 50% of 50 gold.
	id, _ := s.Spawn("worker", 1, 0, 0)
	s.Despawn(id)

	if got := s.Player(1).Amount("gold"); got != 25 {
		t.Errorf("expected refund of 25 gold, got %d", got)
	}
	units, _ := s.Counts()
	if units != 0 {
		t.Error("despawned unit should be gone")
	}
}

func TestSim_DespawnForceEndsTask(t *testing.T) {
	s, _, rec := newTestSim(t)

	id, _ := s.Spawn("worker", 1, 0, 0)
	s.AssignMove(id, 100, 100)
	s.Despawn(id)

	forced := rec.count(func(e events.Event) bool {
		tf, ok := e.(events.TaskFinished)
		return ok && tf.Forced
	})
	if forced != 1 {
		t.Errorf("despawn should force-end the active task, got %d", forced)
	}
	if s.ActiveTask(id) != "" {
		t.Error("no task should remain active")
	}
}

func TestSim_DespawnReleasesGarrisonSlot(t *testing.T) {
	s, _, _ := newTestSim(t)

	keep, _ := s.Spawn("keep", 1, 0, 0)
	footman, _ := s.Spawn("footman", 1, 1, 0)

	s.AssignEnterGarrison(footman, keep)
	for i := 0; i < 100 && s.ActiveTask(footman) != ""; i++ {
		s.Step(0.1)
	}

	e, _ := s.entityOf(keep)
	if !s.garMap.Get(e).Holds(footman) {
		t.Fatal("footman should be inside before despawn")
	}
	s.Despawn(footman)
	if s.garMap.Get(e).Holds(footman) {
		t.Error("despawn must release the garrison slot")
	}
}

// ---------- Capability configuration errors ----------

func TestSim_DuplicateCapabilityKindDegrades(t *testing.T) {
	s, _, _ := newTestSim(t)

	s.cfg.Templates = append(s.cfg.Templates, config.TemplateConfig{
		Name: "twin_mine",
		Capabilities: []config.CapabilityConfig{
			{Kind: "production", Production: &config.ProductionCapConfig{
				Threshold: 10,
				Outputs:   []config.OutputConfig{{Resource: "gold", Rate: 5}},
			}},
			{Kind: "production", Production: &config.ProductionCapConfig{
				Threshold: 10,
				Outputs:   []config.OutputConfig{{Resource: "lumber", Rate: 5}},
			}},
		},
	})
	s.cfg.Derived.TemplateIndex["twin_mine"] = len(s.cfg.Templates) - 1

	id, ok := s.Spawn("twin_mine", 1, 0, 0)
	if !ok {
		t.Fatal("spawn should still succeed with the duplicate dropped")
	}
	u := s.unitComp(id)
	if u.Caps.Len() != 1 {
		t.Errorf("duplicate kind should be dropped, got %d capabilities", u.Caps.Len())
	}

	// The surviving declaration is the first one: gold production.
	s.Step(2.0)
	if got := s.Player(1).Amount("gold"); got == 0 {
		t.Error("first declaration should survive and produce gold")
	}
	if got := s.Player(1).Amount("lumber"); got != 0 {
		t.Error("dropped duplicate must not produce")
	}
}

func TestSim_ScenarioSpawn(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	bus := events.NewBus()
	s := New(cfg, bus)
	s.SpawnScenario()

	var want int
	for _, sc := range cfg.Scenario {
		n := sc.Count
		if n < 1 {
			n = 1
		}
		want += n
	}
	units, _ := s.Counts()
	if units != want {
		t.Errorf("expected %d scenario units, got %d", want, units)
	}
}

// ---------- Deposit policy ----------

func TestSim_CarryPolicyFromConfig(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Scenario = nil
	cfg.Production.Policy = "carry"
	s := New(cfg, events.NewBus())

	id, _ := s.Spawn("gold_mine", 1, 0, 0)
	e, _ := s.entityOf(id)
	if s.prodMap.Get(e).Policy != components.DepositCarry {
		t.Error("carry policy should propagate into provisioned production state")
	}
}
