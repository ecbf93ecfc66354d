// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Sim        SimConfig        `yaml:"sim"`
	Production ProductionConfig `yaml:"production"`
	Tasks      TasksConfig      `yaml:"tasks"`
	Resources  []string         `yaml:"resources"`
	Players    []PlayerConfig   `yaml:"players"`
	Templates  []TemplateConfig `yaml:"templates"`
	Scenario   []SpawnConfig    `yaml:"scenario"`
	Doctrine   DoctrineConfig   `yaml:"doctrine"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// SimConfig holds core simulation parameters.
type SimConfig struct {
	DT          float64 `yaml:"dt"`           // seconds per tick
	Seed        int64   `yaml:"seed"`         // RNG seed (0 = time-based)
	WorldWidth  float64 `yaml:"world_width"`  // world extent in world units
	WorldHeight float64 `yaml:"world_height"`
}

// ProductionConfig holds passive-production parameters.
type ProductionConfig struct {
	// Policy selects what happens to the accumulation buffer on deposit:
	// "zero" (historical: whole buffer reset) or "carry" (keep fraction).
	Policy string `yaml:"policy"`
}

// TasksConfig holds task framework parameters.
type TasksConfig struct {
	RefreshInterval float64 `yaml:"refresh_interval"` // seconds between movement re-requests for moving targets
	BuildRate       float64 `yaml:"build_rate"`       // build points per second per builder
}

// PlayerConfig declares a player and its team. Players on different teams
// are enemies.
type PlayerConfig struct {
	ID   int `yaml:"id"`
	Team int `yaml:"team"`
}

// TemplateConfig defines a unit template: the full set of capabilities that
// define unit behavior, plus optional construction requirements.
type TemplateConfig struct {
	Name         string             `yaml:"name"`
	Capabilities []CapabilityConfig `yaml:"capabilities"`
	Construction *ConstructionConfig `yaml:"construction"` // present = spawns as an unfinished site
}

// CapabilityConfig declares one capability on a template. Exactly one of
// the kind-specific sections should be set, matching Kind.
type CapabilityConfig struct {
	Kind       string               `yaml:"kind"`
	Production *ProductionCapConfig `yaml:"production"`
	Garrison   *GarrisonCapConfig   `yaml:"garrison"`
	Mobility   *MobilityCapConfig   `yaml:"mobility"`
	Refund     *RefundCapConfig     `yaml:"refund"`
	Research   *ResearchCapConfig   `yaml:"research"`
}

// OutputConfig declares one passive production stream.
type OutputConfig struct {
	Resource string  `yaml:"resource"`
	Rate     float64 `yaml:"rate"` // units per second
}

// ProductionCapConfig configures the production capability.
type ProductionCapConfig struct {
	Outputs   []OutputConfig `yaml:"outputs"`
	Threshold float64        `yaml:"threshold"`
}

// GarrisonCapConfig configures the garrison capability.
type GarrisonCapConfig struct {
	Capacity   int     `yaml:"capacity"`
	EnterRange float64 `yaml:"enter_range"`
}

// MobilityCapConfig configures the mobility capability.
type MobilityCapConfig struct {
	Speed        float64 `yaml:"speed"`
	ArriveRadius float64 `yaml:"arrive_radius"`
}

// CostConfig is one (resource, quantity) cost entry.
type CostConfig struct {
	Resource string `yaml:"resource"`
	Quantity int    `yaml:"quantity"`
}

// RefundCapConfig configures the destruction-refund capability.
type RefundCapConfig struct {
	Percent float64      `yaml:"percent"`
	Costs   []CostConfig `yaml:"costs"`
}

// ResearchCapConfig configures the research capability.
type ResearchCapConfig struct {
	SpeedFactor float64 `yaml:"speed_factor"`
}

// ConstructionConfig marks a template as requiring construction before it
// becomes operational.
type ConstructionConfig struct {
	Required float64 `yaml:"required"` // build points
}

// SpawnConfig places units at scenario start.
type SpawnConfig struct {
	Template string  `yaml:"template"`
	Owner    int     `yaml:"owner"`
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Count    int     `yaml:"count"`
}

// DoctrineConfig holds optional task gate expressions keyed by task name.
type DoctrineConfig struct {
	Gates map[string]string `yaml:"gates"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // seconds per stats window
	LogInterval float64 `yaml:"log_interval"` // seconds between world-state logs (0 = off)
}

// DerivedConfig holds values computed from loaded config.
type DerivedConfig struct {
	TemplateIndex map[string]int  // name -> index for template lookup
	ResourceSet   map[string]bool // declared resource identifiers
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.TemplateIndex = make(map[string]int, len(c.Templates))
	for i, t := range c.Templates {
		c.Derived.TemplateIndex[t.Name] = i
	}
	c.Derived.ResourceSet = make(map[string]bool, len(c.Resources))
	for _, r := range c.Resources {
		c.Derived.ResourceSet[r] = true
	}
}

// validKinds is the closed set of capability kind names.
var validKinds = map[string]bool{
	"production": true,
	"garrison":   true,
	"mobility":   true,
	"refund":     true,
	"research":   true,
}

// Validate checks structural consistency. Behavioral configuration errors
// (duplicate capability kinds on a template) are handled later, at spawn
// time, where they degrade to a no-op instead of failing the load.
func (c *Config) Validate() error {
	if c.Sim.DT <= 0 {
		return fmt.Errorf("config: sim.dt must be positive, got %f", c.Sim.DT)
	}
	if c.Production.Policy != "" && c.Production.Policy != "zero" && c.Production.Policy != "carry" {
		return fmt.Errorf("config: production.policy must be \"zero\" or \"carry\", got %q", c.Production.Policy)
	}
	for _, t := range c.Templates {
		for _, cap := range t.Capabilities {
			if !validKinds[cap.Kind] {
				return fmt.Errorf("config: template %q: unknown capability kind %q", t.Name, cap.Kind)
			}
			if cap.Production != nil {
				for _, out := range cap.Production.Outputs {
					if !c.Derived.ResourceSet[out.Resource] {
						return fmt.Errorf("config: template %q: undeclared resource %q", t.Name, out.Resource)
					}
				}
			}
			if cap.Refund != nil {
				for _, cost := range cap.Refund.Costs {
					if !c.Derived.ResourceSet[cost.Resource] {
						return fmt.Errorf("config: template %q: undeclared resource %q", t.Name, cost.Resource)
					}
				}
			}
		}
	}
	for _, s := range c.Scenario {
		if _, ok := c.Derived.TemplateIndex[s.Template]; !ok {
			return fmt.Errorf("config: scenario references unknown template %q", s.Template)
		}
	}
	return nil
}

// WriteYAML saves the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Template returns the template config by name.
func (c *Config) Template(name string) (*TemplateConfig, bool) {
	i, ok := c.Derived.TemplateIndex[name]
	if !ok {
		return nil, false
	}
	return &c.Templates[i], true
}
