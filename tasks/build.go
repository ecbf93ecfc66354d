package tasks

import "github.com/calegria/outpost/events"

// Build walks a unit to a construction site and applies build progress while
// in range. Lifecycle transitions are published to the event bus: started on
// the first progress applied to an untouched site, updated per progress
// application, completed when the site reaches its requirement, canceled
// when the handler ends with the site still unfinished.
type Build struct {
	// Rate is build points applied per second while in range.
	Rate float64
}

// NewBuild creates the task with a nominal build rate.
func NewBuild(rate float64) *Build {
	if rate <= 0 {
		rate = 10
	}
	return &Build{Rate: rate}
}

func (t *Build) Name() string { return "build" }

func (t *Build) CanExecute(ctx Context, in Input) bool {
	uc, ok := ctx.(UnitContext)
	if !ok {
		return false
	}
	bi, ok := in.(BuildInput)
	if !ok || bi.Site == nil {
		return false
	}
	u := uc.Unit
	if u == nil || !u.Alive() {
		return false
	}
	if uc.Mover == nil {
		return false
	}
	if !bi.Site.Alive() || bi.Site.Done() {
		return false
	}
	if uc.Relations != nil && uc.Relations.IsEnemy(u.Owner(), bi.Site.Owner()) {
		return false
	}
	return true
}

func (t *Build) NewHandler() Handler {
	return &buildHandler{rate: t.Rate}
}

type buildHandler struct {
	rate float64

	unit  UnitRef
	mover Mover
	site  SiteRef
	bus   *events.Bus

	applied  bool // this handler contributed progress
	finished bool
}

func (h *buildHandler) Start(ctx Context, in Input) {
	uc, ok := ctx.(UnitContext)
	if !ok {
		h.finished = true
		return
	}
	bi, ok := in.(BuildInput)
	if !ok {
		h.finished = true
		return
	}
	h.unit = uc.Unit
	h.mover = uc.Mover
	h.site = bi.Site
	h.bus = uc.Bus
	if h.mover != nil && h.site != nil {
		h.mover.SetInteractionTarget(h.site)
	}
}

func (h *buildHandler) Update(dt float64) {
	if h.finished {
		return
	}
	if h.site == nil || !h.site.Alive() {
		h.site = nil
		h.mover.StopInCurrentPosition()
		h.finished = true
		return
	}
	// Another builder may have completed the site since last tick.
	if h.site.Done() {
		h.mover.StopInCurrentPosition()
		h.finished = true
		return
	}
	if !h.site.InBuildRange(h.unit) {
		return
	}
	if !h.applied && !h.site.Started() {
		h.bus.Publish(events.BuildStarted{UnitID: h.unit.ID(), SiteID: h.site.ID()})
	}
	h.applied = true
	done := h.site.AddProgress(h.rate * dt)
	progress, required := h.site.ProgressState()
	h.bus.Publish(events.BuildUpdated{UnitID: h.unit.ID(), SiteID: h.site.ID(), Progress: progress, Required: required})
	if done {
		h.bus.Publish(events.BuildCompleted{UnitID: h.unit.ID(), SiteID: h.site.ID()})
		h.finished = true
	}
}

func (h *buildHandler) Finished() bool { return h.finished }

func (h *buildHandler) End() {
	if h.mover != nil && h.site != nil {
		h.mover.RemoveInteractionTarget(h.site)
	}
	// A build this handler worked on but did not finish counts as canceled.
	if h.applied && h.site != nil && h.site.Alive() && !h.site.Done() {
		h.bus.Publish(events.BuildCanceled{UnitID: h.unit.ID(), SiteID: h.site.ID()})
	}
}
