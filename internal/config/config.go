// Package config loads and validates model.toml: structural
// parameters, run controls, directories, and the run registry.
package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/pjwilcoxen/modeling-expectations/internal/model"
)

// RollSpec is one rolling run's registry entry.
type RollSpec struct {
	Base string   `toml:"base"` // stem of the baseline run
	Year int      `toml:"year"` // join period
	Cap0 *float64 `toml:"cap0"` // optional capital override
}

// Config is the full contents of model.toml.
type Config struct {
	// Structural parameters.
	R     float64 `toml:"r"`
	Delta float64 `toml:"delta"`
	W     float64 `toml:"w"`
	Pk    float64 `toml:"pk"`
	Elast float64 `toml:"elast"`
	Scale float64 `toml:"scale"`

	// Defaults applied to every run.
	P    float64 `toml:"p"`    // initial price guess
	Cap0 float64 `toml:"cap0"` // initial capital stock

	// Run controls.
	EndogP   bool `toml:"endog_p"`
	BaseOnly bool `toml:"base_only"`
	Force    bool `toml:"force"`

	// Files and directories.
	InDir string `toml:"in"`
	OutEn string `toml:"out_en"`
	OutEx string `toml:"out_ex"`

	// Run registry.
	Roll     map[string]RollSpec `toml:"roll"`
	Inertial []string            `toml:"inertial"`

	// Summary reporting.
	Legend   map[string]string `toml:"legend"`
	LastYear int               `toml:"last_year"`
}

// requiredKeys must appear in the file; there are no sensible
// defaults for the economics.
var requiredKeys = []string{"r", "delta", "w", "pk", "elast", "scale", "p", "cap0", "endog_p"}

func Default() Config {
	return Config{
		InDir:    "input",
		OutEn:    "output-en",
		OutEx:    "output-ex",
		LastYear: 100,
	}
}

// Load reads, defaults, and validates a configuration file.
func Load(path string) (Config, error) {
	cfg := Default()

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	for _, key := range requiredKeys {
		if !meta.IsDefined(key) {
			return Config{}, fmt.Errorf("config (%s) missing required key %q", path, key)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

// Validate checks parameter sanity and the run registry once, at load
// time, so later registry lookups cannot fail.
func (c Config) Validate() error {
	if c.W <= 0 {
		return fmt.Errorf("adjustment cost w must be positive, got %g", c.W)
	}
	if c.Scale <= 0 {
		return fmt.Errorf("demand scale must be positive, got %g", c.Scale)
	}
	if c.Elast == 0 {
		return fmt.Errorf("demand elasticity must be nonzero")
	}
	if c.Delta <= 0 || c.Delta > 1 {
		return fmt.Errorf("depreciation rate must be in (0,1], got %g", c.Delta)
	}
	if c.P <= 0 {
		return fmt.Errorf("initial price must be positive, got %g", c.P)
	}
	if strings.TrimSpace(c.InDir) == "" {
		return fmt.Errorf("input directory required")
	}
	if strings.TrimSpace(c.OutEn) == "" || strings.TrimSpace(c.OutEx) == "" {
		return fmt.Errorf("output directories required")
	}
	for run, spec := range c.Roll {
		if strings.TrimSpace(spec.Base) == "" {
			return fmt.Errorf("roll[%s]: base run required", run)
		}
		if spec.Year < 0 {
			return fmt.Errorf("roll[%s]: join year must be non-negative, got %d", run, spec.Year)
		}
	}
	for i, run := range c.Inertial {
		if strings.TrimSpace(run) == "" {
			return fmt.Errorf("inertial[%d]: empty run id", i)
		}
	}
	return nil
}

// Params builds the evaluator parameters with the default initial
// capital; the runner overrides Cap0 for rolling runs.
func (c Config) Params() model.Params {
	return model.Params{
		R:     c.R,
		Delta: c.Delta,
		W:     c.W,
		Pk:    c.Pk,
		Elast: c.Elast,
		Scale: c.Scale,
		Cap0:  c.Cap0,
	}
}

// OutDir is the output directory for the configured price closure.
func (c Config) OutDir() string {
	if c.EndogP {
		return c.OutEn
	}
	return c.OutEx
}

// IsInertial reports whether a run uses the first-period-only closure.
func (c Config) IsInertial(run string) bool {
	for _, r := range c.Inertial {
		if r == run {
			return true
		}
	}
	return false
}
