// Package tasks implements the unit task framework: stateless task
// descriptors with pure eligibility checks, stateful per-execution handlers
// with a fixed four-phase lifecycle, and the runner that guarantees at most
// one active handler per unit.
//
// Splitting eligibility from execution lets planning logic test a task
// speculatively without committing resources, and lets the runner enforce
// the single-handler invariant by construction: assigning a new task always
// tears down the previous handler through the same End path.
package tasks

import (
	"github.com/calegria/outpost/components"
	"github.com/calegria/outpost/events"
)

// DefaultRefreshInterval is the default seconds between movement re-requests
// while following a moving interaction target. Re-issuing every tick would
// churn the movement provider for no benefit.
const DefaultRefreshInterval = 0.5

// Task is a stateless, shareable descriptor of an assignable activity.
type Task interface {
	// Name identifies the task kind in events and logs.
	Name() string

	// CanExecute is a pure predicate: no side effects, no errors. Any
	// invalid combination — wrong context or input shape, ineligible
	// relationship, missing collaborator — is a normal "not eligible"
	// result, never a fault.
	CanExecute(ctx Context, in Input) bool

	// NewHandler builds a fresh handler parameterized by the task's own
	// configuration. Handlers share no mutable state.
	NewHandler() Handler
}

// Handler executes one task instance for one unit. The runner drives the
// four phases in strict order: Start once, Update every tick until Finished
// reports true, then End exactly once. End is also invoked exactly once when
// the handler is force-ended externally (unit removed, task preempted).
type Handler interface {
	Start(ctx Context, in Input)
	Update(dt float64)
	Finished() bool
	End()
}

// Context carries per-assignment collaborators. Tasks resolve the concrete
// variant they expect with a type assertion and fail eligibility on
// mismatch.
type Context interface {
	taskContext()
}

// Input carries task-specific parameters.
type Input interface {
	taskInput()
}

// UnitContext is the standard context for unit tasks.
type UnitContext struct {
	Unit      UnitRef
	Mover     Mover      // nil when the unit lacks the mobility capability
	Relations Relations  // nil means no relationship restrictions
	Bus       *events.Bus
	Research  ResearchProvider // nil when the unit lacks the research capability

	// ActiveTask names the unit's currently running task, empty if idle.
	// A task already running for the unit is a conflicting assignment.
	ActiveTask string
}

func (UnitContext) taskContext() {}

// GarrisonInput targets a garrison structure to enter.
type GarrisonInput struct {
	Target GarrisonRef
}

// MoveInput targets a world position.
type MoveInput struct {
	X, Y float64
}

// BuildInput targets a construction site.
type BuildInput struct {
	Site SiteRef
}

// ResearchInput names a technology and its nominal duration in seconds.
type ResearchInput struct {
	Tech     string
	Duration float64
}

func (GarrisonInput) taskInput() {}
func (MoveInput) taskInput()     {}
func (BuildInput) taskInput()    {}
func (ResearchInput) taskInput() {}

// UnitRef exposes the acting unit's facts to tasks.
type UnitRef interface {
	ID() uint32
	Alive() bool
	Operational() bool
	Owner() components.PlayerID
}

// TargetRef is an interaction target: the object a task's movement is
// currently directed toward. Alive must be re-checked every tick; targets
// may vanish between updates.
type TargetRef interface {
	Alive() bool
	Position() (x, y float64)
	Mobile() bool
	Owner() components.PlayerID
}

// GarrisonRef is a garrison structure viewed as an interaction target.
// AddUnit returning false means the registration was rejected and the caller
// must treat the target as gone.
type GarrisonRef interface {
	TargetRef
	ID() uint32
	EligibleToEnter(u UnitRef) bool
	InRangeToEnter(u UnitRef) bool
	AddUnit(u UnitRef) bool
}

// SiteRef is a construction site viewed as an interaction target.
type SiteRef interface {
	TargetRef
	ID() uint32
	InBuildRange(u UnitRef) bool
	Started() bool
	Done() bool
	// ProgressState returns current and required build points.
	ProgressState() (progress, required float64)
	// AddProgress applies build points and reports completion.
	AddProgress(points float64) bool
}

// Mover is the interaction movement adapter for one unit. Tasks treat it as
// an abstract capability and never touch pathfinding internals. Repeated
// SetInteractionTarget calls for the same position are cheap no-ops at the
// adapter's discretion.
type Mover interface {
	SetInteractionTarget(t TargetRef)
	RemoveInteractionTarget(t TargetRef)
	HasReachedDestination() bool
	StopInCurrentPosition()
}

// Relations answers diplomatic queries between players.
type Relations interface {
	IsEnemy(a, b components.PlayerID) bool
}

// ResearchProvider exposes the unit's research capability to tasks.
type ResearchProvider interface {
	SpeedFactor() float64
}

// Point is a static interaction target at a fixed world position.
type Point struct {
	X, Y float64
}

func (Point) Alive() bool                      { return true }
func (p Point) Position() (float64, float64)   { return p.X, p.Y }
func (Point) Mobile() bool                     { return false }
func (Point) Owner() components.PlayerID       { return 0 }
