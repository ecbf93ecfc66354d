package tasks

import "github.com/calegria/outpost/components"

// Shared fakes for task tests.

type fakeUnit struct {
	id          uint32
	alive       bool
	operational bool
	owner       components.PlayerID
}

func (u *fakeUnit) ID() uint32                   { return u.id }
func (u *fakeUnit) Alive() bool                  { return u.alive }
func (u *fakeUnit) Operational() bool            { return u.operational }
func (u *fakeUnit) Owner() components.PlayerID   { return u.owner }

type fakeMover struct {
	setCalls    int
	removeCalls int
	stopCalls   int
	reached     bool
	lastTarget  TargetRef
}

func (m *fakeMover) SetInteractionTarget(t TargetRef) {
	m.setCalls++
	m.lastTarget = t
}

func (m *fakeMover) RemoveInteractionTarget(t TargetRef) {
	m.removeCalls++
}

func (m *fakeMover) HasReachedDestination() bool { return m.reached }

func (m *fakeMover) StopInCurrentPosition() { m.stopCalls++ }

type fakeGarrison struct {
	id        uint32
	alive     bool
	mobile    bool
	owner     components.PlayerID
	x, y      float64
	eligible  bool
	inRange   bool
	accept    bool
	addCalls  int
}

func (g *fakeGarrison) Alive() bool                        { return g.alive }
func (g *fakeGarrison) Position() (float64, float64)       { return g.x, g.y }
func (g *fakeGarrison) Mobile() bool                       { return g.mobile }
func (g *fakeGarrison) Owner() components.PlayerID         { return g.owner }
func (g *fakeGarrison) ID() uint32                         { return g.id }
func (g *fakeGarrison) EligibleToEnter(UnitRef) bool       { return g.eligible }
func (g *fakeGarrison) InRangeToEnter(UnitRef) bool        { return g.inRange }
func (g *fakeGarrison) AddUnit(UnitRef) bool {
	g.addCalls++
	return g.accept
}

type fakeSite struct {
	id       uint32
	alive    bool
	owner    components.PlayerID
	inRange  bool
	progress float64
	required float64
}

func (s *fakeSite) Alive() bool                  { return s.alive }
func (s *fakeSite) Position() (float64, float64) { return 0, 0 }
func (s *fakeSite) Mobile() bool                 { return false }
func (s *fakeSite) Owner() components.PlayerID   { return s.owner }
func (s *fakeSite) ID() uint32                   { return s.id }
func (s *fakeSite) InBuildRange(UnitRef) bool    { return s.inRange }
func (s *fakeSite) Started() bool                { return s.progress > 0 }
func (s *fakeSite) Done() bool                   { return s.progress >= s.required }
func (s *fakeSite) ProgressState() (float64, float64) {
	return s.progress, s.required
}
func (s *fakeSite) AddProgress(points float64) bool {
	s.progress += points
	return s.progress >= s.required
}

type fakeRelations struct {
	enemies map[[2]components.PlayerID]bool
}

func (r *fakeRelations) IsEnemy(a, b components.PlayerID) bool {
	if r.enemies == nil {
		return false
	}
	return r.enemies[[2]components.PlayerID{a, b}]
}

func enemies(pairs ...[2]components.PlayerID) *fakeRelations {
	m := make(map[[2]components.PlayerID]bool)
	for _, p := range pairs {
		m[p] = true
		m[[2]components.PlayerID{p[1], p[0]}] = true
	}
	return &fakeRelations{enemies: m}
}

type fakeResearch struct {
	speed float64
}

func (r *fakeResearch) SpeedFactor() float64 { return r.speed }

// recordingHandler tracks lifecycle calls for runner tests.
type recordingHandler struct {
	started  int
	updated  int
	ended    int
	finished bool
}

func (h *recordingHandler) Start(Context, Input) { h.started++ }
func (h *recordingHandler) Update(float64)       { h.updated++ }
func (h *recordingHandler) Finished() bool       { return h.finished }
func (h *recordingHandler) End()                 { h.ended++ }

// stubTask returns a fixed handler and eligibility result.
type stubTask struct {
	name     string
	eligible bool
	handler  Handler
}

func (t *stubTask) Name() string { return t.name }

func (t *stubTask) CanExecute(Context, Input) bool { return t.eligible }

func (t *stubTask) NewHandler() Handler {
	if t.handler != nil {
		return t.handler
	}
	return &recordingHandler{}
}
