package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/calegria/outpost/config"
	"github.com/calegria/outpost/events"
	"github.com/calegria/outpost/sim"
	"github.com/calegria/outpost/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 36000, "Stop after N ticks")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *seed != 0 {
		cfg.Sim.Seed = *seed
	}
	if cfg.Sim.Seed == 0 {
		cfg.Sim.Seed = time.Now().UnixNano()
	}

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Use config stats window if not overridden by CLI
	statsWindowSec := cfg.Telemetry.StatsWindow
	if *statsWindow > 0 {
		statsWindowSec = *statsWindow
	}

	output, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to initialize output", "error", err)
		os.Exit(1)
	}
	defer output.Close()
	if err := output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	bus := events.NewBus()
	collector := telemetry.NewCollector(bus, statsWindowSec, cfg.Sim.DT)
	perf := telemetry.NewPerfCollector(int(collector.WindowDurationTicks()))

	s := sim.New(cfg, bus)
	s.AttachTelemetry(collector, output, perf)
	s.SpawnScenario()

	units, operational := s.Counts()
	slog.Info("starting simulation",
		"seed", cfg.Sim.Seed,
		"dt", cfg.Sim.DT,
		"units", units,
		"operational", operational,
		"stats_window", statsWindowSec,
		"max_ticks", *maxTicks,
	)

	for *maxTicks <= 0 || int(s.Tick()) < *maxTicks {
		s.Step(cfg.Sim.DT)
	}

	units, operational = s.Counts()
	attrs := []any{
		"tick", s.Tick(),
		"units", units,
		"operational", operational,
	}
	for res, total := range collector.Totals() {
		attrs = append(attrs, "total_"+res, total)
	}
	slog.Info("simulation finished", attrs...)
}
