package tasks

import "github.com/calegria/outpost/events"

// activeTask is one unit's running handler.
type activeTask struct {
	unitID uint32
	name   string
	h      Handler
}

// Runner owns every unit's active-handler slot. It enforces the framework
// invariants: at most one handler per unit, Start before Update, End exactly
// once per handler, and preemption through the same End path as natural
// completion. Update order is stable insertion order across ticks.
type Runner struct {
	bus    *events.Bus
	active map[uint32]*activeTask
	order  []uint32
}

// NewRunner creates a runner publishing lifecycle transitions to bus.
// A nil bus is allowed; transitions are then unobserved.
func NewRunner(bus *events.Bus) *Runner {
	return &Runner{
		bus:    bus,
		active: make(map[uint32]*activeTask),
	}
}

// Assign tests eligibility and, if eligible, starts a fresh handler for the
// unit. An existing handler is always ended before the new handler starts.
// Returns false when the task is not eligible; that is a normal negative
// result, not an error.
func (r *Runner) Assign(unitID uint32, t Task, ctx Context, in Input) bool {
	if t == nil || !t.CanExecute(ctx, in) {
		return false
	}
	r.ForceEnd(unitID)

	h := t.NewHandler()
	h.Start(ctx, in)
	r.active[unitID] = &activeTask{unitID: unitID, name: t.Name(), h: h}
	r.order = append(r.order, unitID)
	return true
}

// Update ticks every active handler once, in stable insertion order, then
// tears down handlers that report finished. Teardown happens after the full
// update pass so sibling handlers never observe a half-removed slot.
func (r *Runner) Update(dt float64) {
	for _, id := range r.order {
		if a := r.active[id]; a != nil {
			a.h.Update(dt)
		}
	}

	var done []uint32
	for _, id := range r.order {
		if a := r.active[id]; a != nil && a.h.Finished() {
			done = append(done, id)
		}
	}
	for _, id := range done {
		r.end(id, false)
	}
}

// ForceEnd ends the unit's active handler, if any, without waiting for it to
// finish. Used for preemption and unit removal. Returns true if a handler
// was ended.
func (r *Runner) ForceEnd(unitID uint32) bool {
	if _, ok := r.active[unitID]; !ok {
		return false
	}
	r.end(unitID, true)
	return true
}

// end runs phase four exactly once and releases the slot.
func (r *Runner) end(unitID uint32, forced bool) {
	a := r.active[unitID]
	if a == nil {
		return
	}
	delete(r.active, unitID)
	r.removeFromOrder(unitID)
	a.h.End()
	r.bus.Publish(events.TaskFinished{UnitID: unitID, Task: a.name, Forced: forced})
}

func (r *Runner) removeFromOrder(unitID uint32) {
	for i, id := range r.order {
		if id == unitID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}

// ActiveTask returns the name of the unit's running task, or "" if idle.
func (r *Runner) ActiveTask(unitID uint32) string {
	if a := r.active[unitID]; a != nil {
		return a.name
	}
	return ""
}

// HasActive reports whether the unit has a running handler.
func (r *Runner) HasActive(unitID uint32) bool {
	_, ok := r.active[unitID]
	return ok
}

// Len returns the number of active handlers.
func (r *Runner) Len() int { return len(r.active) }
