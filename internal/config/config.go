package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"mibel-dam/internal/clearing"
	"mibel-dam/internal/model"
)

// Config is the on-disk configuration shape (YAML). Absent keys keep
// their defaults.
type Config struct {
	// Tolerance is the numerical tolerance for solution post-checks.
	Tolerance float64 `yaml:"tolerance"`

	// Workers bounds the per-hour clearing pool (1..24).
	Workers int `yaml:"workers"`

	SolveTimeoutMS int `yaml:"solve_timeout_ms"`

	// MandatoryPriceEURMWh is the price-taking demand threshold.
	// Set negative to disable; 0 falls back to the default.
	MandatoryPriceEURMWh float64 `yaml:"mandatory_price_eur_mwh"`

	TieBreak TieBreakConfig `yaml:"tie_break"`
	Capacity CapacityConfig `yaml:"capacity"`
}

// TieBreakConfig controls the seeded price jitter applied at load time so
// equal-priced bids clear in a deterministic order.
type TieBreakConfig struct {
	EpsilonEURMWh float64 `yaml:"epsilon_eur_mwh"`
	Seed          int64   `yaml:"seed"`
}

// CapacityConfig points at an hourly capacities CSV, or supplies the
// uniform default used when no file is given.
type CapacityConfig struct {
	File            string  `yaml:"file"`
	DefaultPTToESMW float64 `yaml:"default_pt_to_es_mw"`
	DefaultESToPTMW float64 `yaml:"default_es_to_pt_mw"`
}

func Default() Config {
	return Config{
		Tolerance:            1e-6,
		Workers:              8,
		SolveTimeoutMS:       5000,
		MandatoryPriceEURMWh: 3880,
		TieBreak: TieBreakConfig{
			EpsilonEURMWh: 0.001,
			Seed:          42,
		},
		Capacity: CapacityConfig{
			DefaultPTToESMW: 3800,
			DefaultESToPTMW: 3800,
		},
	}
}

// Load reads a YAML config over the defaults and validates it.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if c.MandatoryPriceEURMWh == 0 {
		c.MandatoryPriceEURMWh = Default().MandatoryPriceEURMWh
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Tolerance <= 0 {
		return errors.New("tolerance must be > 0")
	}
	if c.Workers < 1 || c.Workers > model.HoursPerDay {
		return fmt.Errorf("workers must be in [1,%d]", model.HoursPerDay)
	}
	if c.SolveTimeoutMS <= 0 {
		return errors.New("solve_timeout_ms must be > 0")
	}
	if c.TieBreak.EpsilonEURMWh < 0 {
		return errors.New("tie_break.epsilon_eur_mwh must be ≥ 0")
	}
	pair := model.InterconnectorCapacity{
		PTToESMW: c.Capacity.DefaultPTToESMW,
		ESToPTMW: c.Capacity.DefaultESToPTMW,
	}
	if err := pair.Validate(); err != nil {
		return fmt.Errorf("capacity defaults invalid: %w", err)
	}
	return nil
}

// EngineParams maps the config onto clearing engine parameters.
func (c *Config) EngineParams() clearing.Params {
	return clearing.Params{
		Tolerance:            c.Tolerance,
		MandatoryPriceEURMWh: c.MandatoryPriceEURMWh,
		SolveTimeout:         time.Duration(c.SolveTimeoutMS) * time.Millisecond,
	}
}

// DefaultCapacities expands the uniform capacity default over 24 hours.
func (c *Config) DefaultCapacities() model.DayCapacities {
	return model.UniformCapacities(model.InterconnectorCapacity{
		PTToESMW: c.Capacity.DefaultPTToESMW,
		ESToPTMW: c.Capacity.DefaultESToPTMW,
	})
}
