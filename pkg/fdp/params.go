package fdp

import (
	"math"
	"time"

	"github.com/matzehuels/forcelayout/pkg/errors"
)

// Mode selects the stop policy of a run.
type Mode string

const (
	// ModeEquilibrium steps until every vertex's net force is at most
	// Criterion, or MaxIterations is reached.
	ModeEquilibrium Mode = "equilibrium"

	// ModeIterations steps exactly Criterion times.
	ModeIterations Mode = "iterations"
)

const (
	// ScaleConstant multiplies the characteristic distance
	// k = C·sqrt(min(w², h²)/|V|). The same value is used by single runs and
	// by cooling-rate sweeps.
	ScaleConstant = 0.4

	// MinTemperature is the floor of the cooling schedule, so vertices can
	// always move at least one unit per step.
	MinTemperature = 1.0

	// DefaultMaxIterations caps equilibrium-seeking runs.
	DefaultMaxIterations = 1000

	// DefaultThreshold is the default equilibrium net-force threshold.
	DefaultThreshold = 15.0

	// DefaultIterations is the default step count in iteration mode.
	DefaultIterations = 100

	// MaxIterationSteps bounds the step count of iteration mode.
	MaxIterationSteps = 10_000_000

	// DefaultCoolingRate is the default fractional temperature decay per step.
	DefaultCoolingRate = 0.01

	// DefaultWidth and DefaultHeight are the default frame size.
	DefaultWidth  = 800
	DefaultHeight = 600
)

// Parameters configures one simulation run. It is immutable for the
// duration of the run.
type Parameters struct {
	// Width and Height bound vertex positions to [0,Width]×[0,Height].
	Width  int `json:"width" toml:"width" yaml:"width" validate:"gt=0"`
	Height int `json:"height" toml:"height" yaml:"height" validate:"gt=0"`

	// Attractive and Repulsive are force expressions over d and k.
	// Empty selects the built-in d²/k and k²/d.
	Attractive string `json:"attractive,omitempty" toml:"attractive" yaml:"attractive,omitempty"`
	Repulsive  string `json:"repulsive,omitempty" toml:"repulsive" yaml:"repulsive,omitempty"`

	// Mode is the stop policy; Criterion is the net-force threshold in
	// equilibrium mode and the step count in iteration mode.
	Mode      Mode    `json:"mode" toml:"mode" yaml:"mode" validate:"oneof=equilibrium iterations"`
	Criterion float64 `json:"criterion" toml:"criterion" yaml:"criterion" validate:"gte=0"`

	// CoolingRate is the fractional temperature decay applied every step.
	CoolingRate float64 `json:"cooling_rate" toml:"cooling_rate" yaml:"cooling_rate" validate:"gt=0,lt=1"`

	// Delay paces interactive animation. It has no effect on the numeric
	// result and is ignored by Run.
	Delay time.Duration `json:"delay,omitempty" toml:"delay" yaml:"delay,omitempty" validate:"gte=0"`

	// MaxIterations is the hard cap of equilibrium mode (0 = default).
	MaxIterations int `json:"max_iterations,omitempty" toml:"max_iterations" yaml:"max_iterations,omitempty" validate:"gte=0"`

	// Seed makes the initial placement reproducible (0 = random).
	Seed uint64 `json:"seed,omitempty" toml:"seed" yaml:"seed,omitempty"`
}

// DefaultParameters returns parameters matching the interactive defaults:
// equilibrium mode, threshold 15, cooling rate 0.01, built-in forces.
func DefaultParameters() Parameters {
	return Parameters{
		Width:         DefaultWidth,
		Height:        DefaultHeight,
		Mode:          ModeEquilibrium,
		Criterion:     DefaultThreshold,
		CoolingRate:   DefaultCoolingRate,
		MaxIterations: DefaultMaxIterations,
	}
}

// SetDefaults fills zero-valued optional fields.
func (p *Parameters) SetDefaults() {
	if p.Mode == "" {
		p.Mode = ModeEquilibrium
	}
	if p.MaxIterations == 0 {
		p.MaxIterations = DefaultMaxIterations
	}
}

// Validate reports the first invalid field as an INVALID_PARAMETER error.
// Zero-valued optional fields are treated as their defaults.
func (p Parameters) Validate() error {
	p.SetDefaults()
	if err := errors.ValidateStruct(errors.ErrCodeInvalidParameter, p); err != nil {
		return err
	}

	switch p.Mode {
	case ModeEquilibrium:
		if !(p.Criterion > 0) {
			return errors.Field(errors.ErrCodeInvalidParameter, "criterion",
				"equilibrium threshold must be > 0, got %g", p.Criterion)
		}
	case ModeIterations:
		if !(p.Criterion <= MaxIterationSteps) {
			return errors.Field(errors.ErrCodeInvalidParameter, "criterion",
				"iteration count must be at most %d, got %g", MaxIterationSteps, p.Criterion)
		}
	}
	return nil
}

// Iterations returns the step count of iteration mode. A fractional
// criterion rounds up.
func (p Parameters) Iterations() int {
	return int(math.Ceil(p.Criterion))
}

// CharacteristicDistance returns k = C·sqrt(min(w², h²)/n) for n vertices.
func (p Parameters) CharacteristicDistance(n int) float64 {
	w, h := float64(p.Width), float64(p.Height)
	area := math.Min(w*w, h*h)
	return ScaleConstant * math.Sqrt(area/float64(n))
}

// InitialTemperature returns the starting temperature, a tenth of the width.
func (p Parameters) InitialTemperature() float64 {
	return float64(p.Width) / 10
}
