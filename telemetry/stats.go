package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population counts at window end
	UnitCount        int `csv:"units"`
	OperationalCount int `csv:"operational"`

	// Lifecycle events during window
	Spawns   int `csv:"spawns"`
	Despawns int `csv:"despawns"`

	// Task activity
	TasksFinished int `csv:"tasks_finished"`
	TasksForced   int `csv:"tasks_forced"`

	// Production
	Deposits       int     `csv:"deposits"`
	DepositedTotal int     `csv:"deposited_total"`
	DepositMean    float64 `csv:"deposit_mean"`
	DepositP10     float64 `csv:"deposit_p10"`
	DepositP50     float64 `csv:"deposit_p50"`
	DepositP90     float64 `csv:"deposit_p90"`

	// Construction
	BuildsStarted   int `csv:"builds_started"`
	BuildsCompleted int `csv:"builds_completed"`
	BuildsCanceled  int `csv:"builds_canceled"`

	// Research
	ResearchFinished int `csv:"research_finished"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// ComputeSummary calculates mean and percentiles from sample values.
func ComputeSummary(values []float64) (mean, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("units", s.UnitCount),
		slog.Int("operational", s.OperationalCount),
		slog.Int("spawns", s.Spawns),
		slog.Int("despawns", s.Despawns),
		slog.Int("tasks_finished", s.TasksFinished),
		slog.Int("tasks_forced", s.TasksForced),
		slog.Int("deposits", s.Deposits),
		slog.Int("deposited_total", s.DepositedTotal),
		slog.Float64("deposit_mean", s.DepositMean),
		slog.Int("builds_started", s.BuildsStarted),
		slog.Int("builds_completed", s.BuildsCompleted),
		slog.Int("builds_canceled", s.BuildsCanceled),
		slog.Int("research_finished", s.ResearchFinished),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"units", s.UnitCount,
		"operational", s.OperationalCount,
		"spawns", s.Spawns,
		"despawns", s.Despawns,
		"tasks_finished", s.TasksFinished,
		"tasks_forced", s.TasksForced,
		"deposits", s.Deposits,
		"deposited_total", s.DepositedTotal,
		"deposit_mean", s.DepositMean,
		"builds_started", s.BuildsStarted,
		"builds_completed", s.BuildsCompleted,
		"builds_canceled", s.BuildsCanceled,
		"research_finished", s.ResearchFinished,
	)
}
