// Package config loads geoqa settings from geoqa.toml and the environment.
//
// Precedence, lowest first: built-in defaults, the TOML file, environment
// variables (including those from .env.local), command-line flags. Flags are
// applied by the cli package after Load returns.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/diagnose"
	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/fix"
)

// FileName is the config file looked up by Find.
const FileName = "geoqa.toml"

// Environment variable names.
const (
	EnvTolerance = "GEOQA_TOLERANCE"
	EnvMinLength = "GEOQA_MIN_LENGTH"
	EnvWorkers   = "GEOQA_WORKERS"
	EnvAuditDB   = "GEOQA_AUDIT_DB"
)

// Config is the full settings tree.
type Config struct {
	Diagnose Diagnose `toml:"diagnose"`
	Fix      Fix      `toml:"fix"`
	Audit    Audit    `toml:"audit"`

	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-"`
}

// Diagnose holds the diagnostics thresholds.
type Diagnose struct {
	Tolerance float64 `toml:"tolerance"`
	MinLength float64 `toml:"min_length"`
	Workers   int     `toml:"workers"`
}

// Fix holds the default strategy parameters.
type Fix struct {
	SnapTolerance     float64 `toml:"snap_tolerance"`
	SimplifyTolerance float64 `toml:"simplify_tolerance"`
	DensifyInterval   float64 `toml:"densify_interval"`
}

// Audit configures the SQLite fix journal. An empty DB disables it.
type Audit struct {
	DB string `toml:"db"`
}

// Default returns the built-in settings.
func Default() Config {
	d := diagnose.DefaultOptions()
	f := fix.DefaultSettings()
	return Config{
		Diagnose: Diagnose{Tolerance: d.Tolerance, MinLength: d.MinLength, Workers: d.Workers},
		Fix: Fix{
			SnapTolerance:     f.SnapTolerance,
			SimplifyTolerance: f.SimplifyTolerance,
			DensifyInterval:   f.DensifyInterval,
		},
	}
}

// Find walks up from startDir looking for geoqa.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load builds the config. When path is empty the file is discovered from the
// working directory and its absence is not an error; an explicit path must
// exist. Environment overrides are applied and the result validated.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		found, ok, err := Find(".")
		if err != nil {
			return cfg, err
		}
		if ok {
			path = found
		}
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("%s: parse TOML: %w", path, err)
		}
		cfg.Path = path
	}

	// .env.local is optional.
	_ = godotenv.Load(".env.local")
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from environment variables read through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvTolerance); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTolerance, err)
		}
		c.Diagnose.Tolerance = f
	}
	if v, ok := lookup(EnvMinLength); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMinLength, err)
		}
		c.Diagnose.MinLength = f
	}
	if v, ok := lookup(EnvWorkers); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWorkers, err)
		}
		c.Diagnose.Workers = n
	}
	if v, ok := lookup(EnvAuditDB); ok {
		c.Audit.DB = v
	}
	return nil
}

// Validate rejects settings no component can run with.
func (c Config) Validate() error {
	checks := []struct {
		name string
		v    float64
	}{
		{"diagnose.tolerance", c.Diagnose.Tolerance},
		{"diagnose.min_length", c.Diagnose.MinLength},
		{"fix.snap_tolerance", c.Fix.SnapTolerance},
		{"fix.simplify_tolerance", c.Fix.SimplifyTolerance},
	}
	for _, chk := range checks {
		if chk.v < 0 || math.IsNaN(chk.v) || math.IsInf(chk.v, 0) {
			return fmt.Errorf("%s must be a non-negative number, got %g", chk.name, chk.v)
		}
	}
	if !(c.Fix.DensifyInterval > 0) || math.IsInf(c.Fix.DensifyInterval, 0) {
		return fmt.Errorf("fix.densify_interval must be positive, got %g", c.Fix.DensifyInterval)
	}
	if c.Diagnose.Workers < 0 {
		return fmt.Errorf("diagnose.workers must be non-negative, got %d", c.Diagnose.Workers)
	}
	return nil
}

// DiagnoseOptions converts the [diagnose] section.
func (c Config) DiagnoseOptions() diagnose.Options {
	return diagnose.Options{
		Tolerance: c.Diagnose.Tolerance,
		MinLength: c.Diagnose.MinLength,
		Workers:   c.Diagnose.Workers,
	}
}

// FixSettings converts the [fix] section.
func (c Config) FixSettings() fix.Settings {
	return fix.Settings{
		SnapTolerance:     c.Fix.SnapTolerance,
		SimplifyTolerance: c.Fix.SimplifyTolerance,
		DensifyInterval:   c.Fix.DensifyInterval,
	}
}
