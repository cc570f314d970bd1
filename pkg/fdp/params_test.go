package fdp

import (
	"math"
	"testing"

	"github.com/matzehuels/forcelayout/pkg/errors"
)

func TestParametersValidate(t *testing.T) {
	valid := func(mut func(*Parameters)) Parameters {
		p := DefaultParameters()
		mut(&p)
		return p
	}

	tests := []struct {
		name      string
		params    Parameters
		wantField string
	}{
		{"defaults", DefaultParameters(), ""},
		{"zero width", valid(func(p *Parameters) { p.Width = 0 }), "width"},
		{"negative height", valid(func(p *Parameters) { p.Height = -5 }), "height"},
		{"cooling rate zero", valid(func(p *Parameters) { p.CoolingRate = 0 }), "cooling_rate"},
		{"cooling rate one", valid(func(p *Parameters) { p.CoolingRate = 1 }), "cooling_rate"},
		{"cooling rate NaN", valid(func(p *Parameters) { p.CoolingRate = math.NaN() }), "cooling_rate"},
		{"zero threshold", valid(func(p *Parameters) { p.Criterion = 0 }), "criterion"},
		{"negative threshold", valid(func(p *Parameters) { p.Criterion = -1 }), "criterion"},
		{"infinite threshold", valid(func(p *Parameters) { p.Criterion = math.Inf(1) }), ""},
		{"unknown mode", valid(func(p *Parameters) { p.Mode = "forever" }), "mode"},
		{"empty mode defaults", valid(func(p *Parameters) { p.Mode = "" }), ""},
		{"zero iterations", valid(func(p *Parameters) { p.Mode = ModeIterations; p.Criterion = 0 }), ""},
		{"infinite iterations", valid(func(p *Parameters) { p.Mode = ModeIterations; p.Criterion = math.Inf(1) }), "criterion"},
		{"iterations past int", valid(func(p *Parameters) { p.Mode = ModeIterations; p.Criterion = 1e19 }), "criterion"},
		{"iterations just over cap", valid(func(p *Parameters) { p.Mode = ModeIterations; p.Criterion = MaxIterationSteps + 0.5 }), "criterion"},
		{"iterations at cap", valid(func(p *Parameters) { p.Mode = ModeIterations; p.Criterion = MaxIterationSteps }), ""},
		{"negative delay", valid(func(p *Parameters) { p.Delay = -1 }), "delay"},
		{"negative cap", valid(func(p *Parameters) { p.MaxIterations = -1 }), "max_iterations"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, errors.ErrCodeInvalidParameter) {
				t.Fatalf("Validate() = %v, want INVALID_PARAMETER", err)
			}
			if got := errors.GetField(err); got != tt.wantField {
				t.Errorf("field = %q, want %q", got, tt.wantField)
			}
		})
	}
}

func TestParametersDerived(t *testing.T) {
	p := Parameters{Width: 100, Height: 400, Criterion: 2.2}

	if got := p.Iterations(); got != 3 {
		t.Errorf("Iterations() = %d, want 3", got)
	}
	if got := p.InitialTemperature(); got != 10 {
		t.Errorf("InitialTemperature() = %g, want 10", got)
	}
	// min(w², h²) = 100², so k = 0.4·sqrt(10000/4) = 20.
	if got := p.CharacteristicDistance(4); math.Abs(got-20) > 1e-12 {
		t.Errorf("CharacteristicDistance(4) = %g, want 20", got)
	}
}

func TestSetDefaults(t *testing.T) {
	var p Parameters
	p.SetDefaults()
	if p.Mode != ModeEquilibrium {
		t.Errorf("Mode = %q, want %q", p.Mode, ModeEquilibrium)
	}
	if p.MaxIterations != DefaultMaxIterations {
		t.Errorf("MaxIterations = %d, want %d", p.MaxIterations, DefaultMaxIterations)
	}
}
