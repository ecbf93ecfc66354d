package tasks

// EnterGarrison sends a unit toward a garrison structure and registers it on
// arrival. The task is stateless; per-execution state lives in the handler.
type EnterGarrison struct {
	// RefreshInterval bounds how often the handler re-issues a movement
	// request while the target itself is moving.
	RefreshInterval float64
}

// NewEnterGarrison creates the task with the default refresh interval.
func NewEnterGarrison() *EnterGarrison {
	return &EnterGarrison{RefreshInterval: DefaultRefreshInterval}
}

func (t *EnterGarrison) Name() string { return "enter_garrison" }

// CanExecute checks context and input shape, relationship eligibility, unit
// flags, garrison admission, and absence of a conflicting assignment.
func (t *EnterGarrison) CanExecute(ctx Context, in Input) bool {
	uc, ok := ctx.(UnitContext)
	if !ok {
		return false
	}
	gi, ok := in.(GarrisonInput)
	if !ok || gi.Target == nil {
		return false
	}
	u := uc.Unit
	if u == nil || !u.Alive() || !u.Operational() {
		return false
	}
	if uc.Mover == nil {
		return false
	}
	if uc.ActiveTask == t.Name() {
		return false
	}
	if !gi.Target.Alive() {
		return false
	}
	if uc.Relations != nil && uc.Relations.IsEnemy(u.Owner(), gi.Target.Owner()) {
		return false
	}
	return gi.Target.EligibleToEnter(u)
}

func (t *EnterGarrison) NewHandler() Handler {
	return &enterGarrisonHandler{refresh: t.RefreshInterval}
}

type enterGarrisonHandler struct {
	refresh float64

	unit   UnitRef
	mover  Mover
	target GarrisonRef

	sinceRefresh float64
	finished     bool
}

// Start caches references from context and input and requests movement
// toward the target. Target validity is re-checked every update; nothing
// cached here is assumed to persist.
func (h *enterGarrisonHandler) Start(ctx Context, in Input) {
	uc, ok := ctx.(UnitContext)
	if !ok {
		h.finished = true
		return
	}
	gi, ok := in.(GarrisonInput)
	if !ok {
		h.finished = true
		return
	}
	h.unit = uc.Unit
	h.mover = uc.Mover
	h.target = gi.Target
	if h.mover != nil && h.target != nil {
		h.mover.SetInteractionTarget(h.target)
	}
}

func (h *enterGarrisonHandler) Update(dt float64) {
	if h.finished {
		return
	}
	// Target destroyed or removed: stop and finish in the same tick.
	if h.target == nil || !h.target.Alive() {
		h.target = nil
		h.mover.StopInCurrentPosition()
		h.finished = true
		return
	}
	// Arrived: attempt the terminal action. A rejected registration rolls
	// back to "no target"; the structure is treated as gone.
	if h.target.InRangeToEnter(h.unit) {
		h.finished = true
		h.mover.StopInCurrentPosition()
		if !h.target.AddUnit(h.unit) {
			h.target = nil
		}
		return
	}
	// Following a moving structure: re-issue the movement request at the
	// configured interval, not every tick.
	if h.target.Mobile() {
		h.sinceRefresh += dt
		if h.sinceRefresh >= h.refresh {
			h.sinceRefresh = 0
			h.mover.SetInteractionTarget(h.target)
		}
	}
}

func (h *enterGarrisonHandler) Finished() bool { return h.finished }

// End releases the interaction-target registration. The runner guarantees
// this runs exactly once, even when the handler was force-ended.
func (h *enterGarrisonHandler) End() {
	if h.mover != nil && h.target != nil {
		h.mover.RemoveInteractionTarget(h.target)
	}
}
