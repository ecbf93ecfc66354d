package telemetry

import "github.com/calegria/outpost/events"

// DepositRow is one deposit event for deposits.csv.
type DepositRow struct {
	Tick     int32  `csv:"tick"`
	UnitID   uint32 `csv:"unit"`
	Owner    uint8  `csv:"owner"`
	Resource string `csv:"resource"`
	Quantity int    `csv:"quantity"`
}

// Collector accumulates events within time windows and produces WindowStats.
// It subscribes to the simulation event bus; the simulation only has to set
// the current tick before stepping.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float64

	currentTick     int32
	windowStartTick int32

	// Event counters for current window
	spawns           int
	despawns         int
	tasksFinished    int
	tasksForced      int
	depositQtys      []float64
	depositRows      []DepositRow
	buildsStarted    int
	buildsCompleted  int
	buildsCanceled   int
	researchFinished int

	// Running totals per resource across the whole run
	totals map[string]int
}

// NewCollector creates a stats collector and subscribes it to the bus.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(bus *events.Bus, windowDurationSec float64, dt float64) *Collector {
	ticksPerWindow := int32(windowDurationSec / dt)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	c := &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
		totals:              make(map[string]int),
	}
	if bus != nil {
		bus.Subscribe(c.handle)
	}
	return c
}

// SetTick updates the collector's notion of the current tick. Deposit rows
// recorded after this call are stamped with it.
func (c *Collector) SetTick(tick int32) {
	c.currentTick = tick
}

func (c *Collector) handle(e events.Event) {
	switch ev := e.(type) {
	case events.UnitSpawned:
		c.spawns++
	case events.UnitDespawned:
		c.despawns++
	case events.TaskFinished:
		c.tasksFinished++
		if ev.Forced {
			c.tasksForced++
		}
	case events.ResourceDeposited:
		c.depositQtys = append(c.depositQtys, float64(ev.Quantity))
		c.depositRows = append(c.depositRows, DepositRow{
			Tick:     c.currentTick,
			UnitID:   ev.UnitID,
			Owner:    uint8(ev.Owner),
			Resource: string(ev.Resource),
			Quantity: ev.Quantity,
		})
		c.totals[string(ev.Resource)] += ev.Quantity
	case events.BuildStarted:
		c.buildsStarted++
	case events.BuildCompleted:
		c.buildsCompleted++
	case events.BuildCanceled:
		c.buildsCanceled++
	case events.ResearchFinished:
		c.researchFinished++
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// DrainDeposits returns the deposit rows recorded since the last drain.
func (c *Collector) DrainDeposits() []DepositRow {
	rows := c.depositRows
	c.depositRows = nil
	return rows
}

// Totals returns the running per-resource deposit totals for the whole run.
func (c *Collector) Totals() map[string]int {
	return c.totals
}

// Flush produces a WindowStats and resets counters for the next window.
// unitCount and operationalCount are current population figures provided
// by the caller.
func (c *Collector) Flush(currentTick int32, unitCount, operationalCount int) WindowStats {
	var total int
	for _, q := range c.depositQtys {
		total += int(q)
	}
	mean, p10, p50, p90 := ComputeSummary(c.depositQtys)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		UnitCount:        unitCount,
		OperationalCount: operationalCount,

		Spawns:   c.spawns,
		Despawns: c.despawns,

		TasksFinished: c.tasksFinished,
		TasksForced:   c.tasksForced,

		Deposits:       len(c.depositQtys),
		DepositedTotal: total,
		DepositMean:    mean,
		DepositP10:     p10,
		DepositP50:     p50,
		DepositP90:     p90,

		BuildsStarted:   c.buildsStarted,
		BuildsCompleted: c.buildsCompleted,
		BuildsCanceled:  c.buildsCanceled,

		ResearchFinished: c.researchFinished,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.spawns = 0
	c.despawns = 0
	c.tasksFinished = 0
	c.tasksForced = 0
	c.depositQtys = c.depositQtys[:0]
	c.buildsStarted = 0
	c.buildsCompleted = 0
	c.buildsCanceled = 0
	c.researchFinished = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
