package fdp

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/forcelayout/pkg/force"
)

// StepConfig holds the per-run constants of a physics step.
type StepConfig struct {
	K           float64 // characteristic distance
	Width       float64
	Height      float64
	Criterion   float64 // equilibrium net-force threshold
	CoolingRate float64
}

// Advance performs one physics step over s at temperature t.
//
// Every vertex accumulates repulsion from every other vertex and attraction
// along its edges, then moves along its net force by at most t and is
// clamped back into the frame. Advance returns the cooled temperature
// (never below MinTemperature) and whether every vertex's net force was at
// most cfg.Criterion before moving.
//
// Coincident vertices exert no force on each other and non-finite force
// values contribute nothing, so positions always stay finite.
func Advance(s *State, m force.Model, cfg StepConfig, t float64) (float64, bool) {
	vs := s.Vertices

	for v := range vs {
		s.ResetDisplacement(v)
		for u := range vs {
			if u == v {
				continue
			}
			delta := r2.Sub(vs[v].Pos, vs[u].Pos)
			d := r2.Norm(delta)
			if d == 0 {
				continue
			}
			f := m.Repulsive(d, cfg.K)
			if !finite(f) {
				continue
			}
			s.AccumulateDisplacement(v, r2.Scale(f, unit(delta)))
		}
	}

	for _, e := range s.Edges {
		v, u := e[0], e[1]
		delta := r2.Sub(vs[v].Pos, vs[u].Pos)
		d := r2.Norm(delta)
		if d == 0 {
			continue
		}
		f := m.Attractive(d, cfg.K)
		if !finite(f) {
			continue
		}
		pull := r2.Scale(f, unit(delta))
		s.AccumulateDisplacement(v, r2.Scale(-1, pull))
		s.AccumulateDisplacement(u, pull)
	}

	equilibrium := true
	for v := range vs {
		disp := vs[v].Disp
		length := r2.Norm(disp)
		if !(length <= cfg.Criterion) {
			equilibrium = false
		}
		if finite(length) && length > 0 {
			vs[v].Pos = r2.Add(vs[v].Pos, r2.Scale(math.Min(length, t)/length, disp))
		}
		s.ClampToFrame(v, cfg.Width, cfg.Height)
	}

	return math.Max(t*(1-cfg.CoolingRate), MinTemperature), equilibrium
}

// unit returns v scaled to length 1, or the zero vector for a zero v.
func unit(v r2.Vec) r2.Vec {
	n := r2.Norm(v)
	if n == 0 {
		return r2.Vec{}
	}
	return r2.Scale(1/n, v)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
