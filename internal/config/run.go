// Package config holds the refinement run parameters, the named presets, and
// the application configuration loaded from flags, file and environment.
package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidConfiguration is returned for run parameters the orchestrator
// cannot work with.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// RunConfig holds the parameters of one refinement run.
type RunConfig struct {
	// MaxPasses bounds the number of pipeline invocations. Must be >= 1.
	MaxPasses int `json:"max_passes" yaml:"max_passes" mapstructure:"max_passes"`

	// ConvergenceThreshold is the minimum quality gain per pass, after the
	// first, that keeps the loop going. Range: (0, 1).
	ConvergenceThreshold float64 `json:"convergence_threshold" yaml:"convergence_threshold" mapstructure:"convergence_threshold"`

	// MinQualityThreshold is the quality at which the loop stops early.
	// Range: (0, 1).
	MinQualityThreshold float64 `json:"min_quality_threshold" yaml:"min_quality_threshold" mapstructure:"min_quality_threshold"`
}

// Validate checks the ranges of every field.
func (c RunConfig) Validate() error {
	if c.MaxPasses < 1 {
		return fmt.Errorf("%w: max_passes must be at least 1 (got %d)", ErrInvalidConfiguration, c.MaxPasses)
	}
	if c.ConvergenceThreshold <= 0 || c.ConvergenceThreshold >= 1 {
		return fmt.Errorf("%w: convergence_threshold must be in (0, 1) (got %g)", ErrInvalidConfiguration, c.ConvergenceThreshold)
	}
	if c.MinQualityThreshold <= 0 || c.MinQualityThreshold >= 1 {
		return fmt.Errorf("%w: min_quality_threshold must be in (0, 1) (got %g)", ErrInvalidConfiguration, c.MinQualityThreshold)
	}
	return nil
}

// Mode is a named preset.
type Mode struct {
	Name        string
	Description string
	Run         RunConfig
}

const DefaultMode = "balanced"

var modes = map[string]Mode{
	"conservative": {
		Name:        "conservative",
		Description: "Fewer passes, lower quality bar. Minimal rewriting.",
		Run:         RunConfig{MaxPasses: 2, ConvergenceThreshold: 0.10, MinQualityThreshold: 0.75},
	},
	"balanced": {
		Name:        "balanced",
		Description: "Default trade-off between edits and preservation of the original wording.",
		Run:         RunConfig{MaxPasses: 3, ConvergenceThreshold: 0.05, MinQualityThreshold: 0.85},
	},
	"aggressive": {
		Name:        "aggressive",
		Description: "More passes and a high quality bar. Expect substantial rewriting.",
		Run:         RunConfig{MaxPasses: 5, ConvergenceThreshold: 0.02, MinQualityThreshold: 0.95},
	},
}

// Preset returns the RunConfig of the named mode. Names are case-insensitive.
func Preset(name string) (RunConfig, error) {
	m, ok := modes[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return RunConfig{}, fmt.Errorf("%w: unknown mode %q (available: %s)",
			ErrInvalidConfiguration, name, strings.Join(ModeNames(), ", "))
	}
	return m.Run, nil
}

// Modes returns all presets ordered by MaxPasses.
func Modes() []Mode {
	out := make([]Mode, 0, len(modes))
	for _, m := range modes {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Run.MaxPasses < out[j].Run.MaxPasses })
	return out
}

// ModeNames returns the preset names ordered by MaxPasses.
func ModeNames() []string {
	var names []string
	for _, m := range Modes() {
		names = append(names, m.Name)
	}
	return names
}
