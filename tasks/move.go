package tasks

// MoveTo walks a unit to a fixed world position and finishes when the
// movement provider reports the destination reached.
type MoveTo struct{}

func (t *MoveTo) Name() string { return "move_to" }

func (t *MoveTo) CanExecute(ctx Context, in Input) bool {
	uc, ok := ctx.(UnitContext)
	if !ok {
		return false
	}
	if _, ok := in.(MoveInput); !ok {
		return false
	}
	if uc.Unit == nil || !uc.Unit.Alive() {
		return false
	}
	return uc.Mover != nil
}

func (t *MoveTo) NewHandler() Handler {
	return &moveToHandler{}
}

type moveToHandler struct {
	mover    Mover
	dest     Point
	finished bool
}

func (h *moveToHandler) Start(ctx Context, in Input) {
	uc, ok := ctx.(UnitContext)
	if !ok {
		h.finished = true
		return
	}
	mi, ok := in.(MoveInput)
	if !ok {
		h.finished = true
		return
	}
	h.mover = uc.Mover
	h.dest = Point{X: mi.X, Y: mi.Y}
	if h.mover != nil {
		h.mover.SetInteractionTarget(h.dest)
	}
}

func (h *moveToHandler) Update(dt float64) {
	if h.finished {
		return
	}
	if h.mover.HasReachedDestination() {
		h.finished = true
	}
}

func (h *moveToHandler) Finished() bool { return h.finished }

func (h *moveToHandler) End() {
	if h.mover != nil {
		h.mover.RemoveInteractionTarget(h.dest)
	}
}
