// Package events provides the simulation's publish/subscribe event bus.
//
// The bus is an explicitly constructed instance injected into components
// that publish or subscribe; there is no package-level singleton. Publishing
// is synchronous and fire-and-forget: the core's only obligation is to
// publish each lifecycle transition exactly once. Consumers (telemetry,
// presentation) decide what to do with them.
package events

import "github.com/calegria/outpost/caps"

// Event is implemented by all bus event types.
type Event interface {
	event()
}

// TaskFinished fires when a task handler is torn down, whether it ran to
// completion or was force-ended.
type TaskFinished struct {
	UnitID uint32
	Task   string
	Forced bool // ended externally (preempted or unit removed)
}

// UnitSpawned fires when a unit enters the simulation.
type UnitSpawned struct {
	UnitID   uint32
	Template string
	Owner    uint8
}

// UnitDespawned fires when a unit is removed from the simulation.
type UnitDespawned struct {
	UnitID   uint32
	Template string
}

// ResourceDeposited fires when accumulated production is transferred into
// owner storage.
type ResourceDeposited struct {
	UnitID   uint32
	Owner    uint8
	Resource caps.Resource
	Quantity int
}

// BuildStarted fires once when a builder first applies progress to a site.
type BuildStarted struct {
	UnitID uint32
	SiteID uint32
}

// BuildUpdated fires when build progress advances.
type BuildUpdated struct {
	UnitID   uint32
	SiteID   uint32
	Progress float64
	Required float64
}

// BuildCanceled fires when a build task ends before the site is complete.
type BuildCanceled struct {
	UnitID uint32
	SiteID uint32
}

// BuildCompleted fires when a site reaches its required progress.
type BuildCompleted struct {
	UnitID uint32
	SiteID uint32
}

// ResearchFinished fires when a research task runs to completion.
type ResearchFinished struct {
	UnitID uint32
	Owner  uint8
	Tech   string
}

func (TaskFinished) event()      {}
func (UnitSpawned) event()       {}
func (UnitDespawned) event()     {}
func (ResourceDeposited) event() {}
func (BuildStarted) event()      {}
func (BuildUpdated) event()      {}
func (BuildCanceled) event()     {}
func (BuildCompleted) event()    {}
func (ResearchFinished) event()  {}

// Handler receives published events.
type Handler func(Event)

// Bus delivers events to subscribers in subscription order. The simulation
// is single-threaded per tick, so the bus does no locking.
type Bus struct {
	handlers []Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a handler for all events.
func (b *Bus) Subscribe(h Handler) {
	b.handlers = append(b.handlers, h)
}

// Publish delivers the event to every subscriber. A nil bus drops events,
// so publishers need no nil checks.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	for _, h := range b.handlers {
		h(e)
	}
}
