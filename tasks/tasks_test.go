package tasks

import (
	"testing"

	"github.com/calegria/outpost/events"
)

// ---------- MoveTo ----------

func TestMoveTo_FinishesOnArrival(t *testing.T) {
	m := &fakeMover{}
	task := &MoveTo{}
	ctx := UnitContext{Unit: readyUnit(), Mover: m}

	if !task.CanExecute(ctx, MoveInput{X: 50, Y: 50}) {
		t.Fatal("expected eligible")
	}

	h := task.NewHandler()
	h.Start(ctx, MoveInput{X: 50, Y: 50})
	if m.setCalls != 1 {
		t.Errorf("expected one movement request, got %d", m.setCalls)
	}

	h.Update(0.1)
	if h.Finished() {
		t.Error("should not finish before arrival")
	}

	m.reached = true
	h.Update(0.1)
	if !h.Finished() {
		t.Error("should finish once destination reached")
	}

	h.End()
	if m.removeCalls != 1 {
		t.Errorf("expected interaction target released, got %d removals", m.removeCalls)
	}
}

func TestMoveTo_RequiresMoverAndShape(t *testing.T) {
	task := &MoveTo{}
	if task.CanExecute(UnitContext{Unit: readyUnit()}, MoveInput{}) {
		t.Error("unit without movement provider should not be eligible")
	}
	if task.CanExecute(UnitContext{Unit: readyUnit(), Mover: &fakeMover{}}, GarrisonInput{}) {
		t.Error("wrong input shape should fail eligibility")
	}
}

// ---------- Research ----------

func TestResearch_FinishesAfterDuration(t *testing.T) {
	bus := events.NewBus()
	var done []events.ResearchFinished
	bus.Subscribe(func(e events.Event) {
		if rf, ok := e.(events.ResearchFinished); ok {
			done = append(done, rf)
		}
	})

	task := &Research{}
	ctx := UnitContext{Unit: readyUnit(), Bus: bus, Research: &fakeResearch{speed: 1.0}}
	in := ResearchInput{Tech: "masonry", Duration: 1.0}

	if !task.CanExecute(ctx, in) {
		t.Fatal("expected eligible")
	}

	h := task.NewHandler()
	h.Start(ctx, in)
	for i := 0; i < 9; i++ {
		h.Update(0.1)
	}
	if h.Finished() {
		t.Error("should not finish before duration elapses")
	}
	h.Update(0.1)
	if !h.Finished() {
		t.Error("should finish after full duration")
	}
	if len(done) != 1 || done[0].Tech != "masonry" {
		t.Errorf("expected one ResearchFinished for masonry, got %+v", done)
	}
}

func TestResearch_SpeedFactorScalesProgress(t *testing.T) {
	task := &Research{}
	ctx := UnitContext{Unit: readyUnit(), Bus: nil, Research: &fakeResearch{speed: 2.0}}
	h := task.NewHandler()
	h.Start(ctx, ResearchInput{Tech: "masonry", Duration: 1.0})

	for i := 0; i < 5; i++ {
		h.Update(0.1)
	}
	if !h.Finished() {
		t.Error("doubled speed should halve research time")
	}
}

func TestResearch_PausesWhileInoperative(t *testing.T) {
	task := &Research{}
	u := readyUnit()
	h := task.NewHandler()
	h.Start(UnitContext{Unit: u, Research: &fakeResearch{speed: 1.0}}, ResearchInput{Tech: "masonry", Duration: 0.5})

	u.operational = false
	for i := 0; i < 100; i++ {
		h.Update(0.1)
	}
	if h.Finished() {
		t.Error("research should halt while the lab is inoperative")
	}

	u.operational = true
	for i := 0; i < 5; i++ {
		h.Update(0.1)
	}
	if !h.Finished() {
		t.Error("research should resume when the lab is operational again")
	}
}

func TestResearch_RequiresCapability(t *testing.T) {
	task := &Research{}
	ctx := UnitContext{Unit: readyUnit()}
	if task.CanExecute(ctx, ResearchInput{Tech: "masonry", Duration: 1}) {
		t.Error("unit without research capability should not be eligible")
	}
}
