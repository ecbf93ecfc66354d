package tasks

import "github.com/calegria/outpost/events"

// Research runs a timed technology project on a unit with the research
// capability. No movement is involved; the handler is a timer scaled by the
// capability's speed factor.
type Research struct{}

func (t *Research) Name() string { return "research" }

func (t *Research) CanExecute(ctx Context, in Input) bool {
	uc, ok := ctx.(UnitContext)
	if !ok {
		return false
	}
	ri, ok := in.(ResearchInput)
	if !ok || ri.Tech == "" || ri.Duration <= 0 {
		return false
	}
	u := uc.Unit
	if u == nil || !u.Alive() || !u.Operational() {
		return false
	}
	return uc.Research != nil
}

func (t *Research) NewHandler() Handler {
	return &researchHandler{}
}

type researchHandler struct {
	unit     UnitRef
	bus      *events.Bus
	tech     string
	duration float64
	speed    float64

	elapsed  float64
	finished bool
}

func (h *researchHandler) Start(ctx Context, in Input) {
	uc, ok := ctx.(UnitContext)
	if !ok {
		h.finished = true
		return
	}
	ri, ok := in.(ResearchInput)
	if !ok {
		h.finished = true
		return
	}
	h.unit = uc.Unit
	h.bus = uc.Bus
	h.tech = ri.Tech
	h.duration = ri.Duration
	h.speed = 1.0
	if uc.Research != nil {
		h.speed = uc.Research.SpeedFactor()
	}
}

func (h *researchHandler) Update(dt float64) {
	if h.finished {
		return
	}
	// Research halts while the lab is inoperative, it does not cancel.
	if !h.unit.Operational() {
		return
	}
	h.elapsed += dt * h.speed
	if h.elapsed >= h.duration {
		h.finished = true
		h.bus.Publish(events.ResearchFinished{
			UnitID: h.unit.ID(),
			Owner:  uint8(h.unit.Owner()),
			Tech:   h.tech,
		})
	}
}

func (h *researchHandler) Finished() bool { return h.finished }

func (h *researchHandler) End() {}
