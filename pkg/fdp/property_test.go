package fdp

import (
	"context"
	"math"
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/forcelayout/pkg/graph"
)

// randomGraph builds a graph of n vertices whose edges are drawn from the
// seed, so every property input is reproducible.
func randomGraph(n int, seed uint64) *graph.Graph {
	rng := NewRand(seed)
	g := graph.New()
	for i := range n {
		g.AddNode(strconv.Itoa(i))
	}
	for range n {
		a, b := rng.IntN(n), rng.IntN(n)
		if a != b {
			g.AddEdge(strconv.Itoa(a), strconv.Itoa(b))
		}
	}
	return g
}

func TestSimulationProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	if testing.Short() {
		parameters.MinSuccessfulTests = 10
	}

	properties := gopter.NewProperties(parameters)

	properties.Property("positions stay inside the frame", prop.ForAll(
		func(n, w, h int, seed uint64) bool {
			p := Parameters{
				Width: w, Height: h,
				Mode: ModeIterations, Criterion: 40,
				CoolingRate: 0.02,
				Seed:        seed,
			}
			sim, err := New(randomGraph(n, seed), p)
			if err != nil {
				return false
			}
			for !sim.Done() {
				sim.Step()
				for _, pos := range sim.Frame().Positions {
					if math.IsNaN(pos.X) || math.IsNaN(pos.Y) ||
						pos.X < 0 || pos.X > float64(w) || pos.Y < 0 || pos.Y > float64(h) {
						return false
					}
				}
			}
			return true
		},
		gen.IntRange(1, 12),
		gen.IntRange(1, 400),
		gen.IntRange(1, 400),
		gen.UInt64Range(1, math.MaxUint64),
	))

	properties.Property("temperature never increases and never drops below one", prop.ForAll(
		func(n int, rate float64, seed uint64) bool {
			p := Parameters{
				Width: 300, Height: 300,
				Mode: ModeIterations, Criterion: 60,
				CoolingRate: rate,
				Seed:        seed,
			}
			sim, err := New(randomGraph(n, seed), p)
			if err != nil {
				return false
			}
			prev := sim.Temperature()
			for !sim.Done() {
				res := sim.Step()
				if res.Temperature > prev || res.Temperature < MinTemperature {
					return false
				}
				prev = res.Temperature
			}
			return true
		},
		gen.IntRange(1, 8),
		gen.Float64Range(0.001, 0.999),
		gen.UInt64Range(1, math.MaxUint64),
	))

	properties.Property("equilibrium runs stop within the cap", prop.ForAll(
		func(n int, threshold float64, seed uint64) bool {
			p := Parameters{
				Width: 200, Height: 200,
				Mode: ModeEquilibrium, Criterion: threshold,
				CoolingRate: 0.05,
				MaxIterations: 300,
				Seed:          seed,
			}
			sim, err := New(randomGraph(n, seed), p)
			if err != nil {
				return false
			}
			iters, err := sim.Run(context.Background())
			if err != nil || iters < 1 || iters > 300 {
				return false
			}
			return sim.Converged() || iters == 300
		},
		gen.IntRange(1, 10),
		gen.Float64Range(0.5, 50),
		gen.UInt64Range(1, math.MaxUint64),
	))

	properties.Property("coincident vertices never produce NaN", prop.ForAll(
		func(n int, x, y float64) bool {
			g := randomGraph(n, 99)
			sim, err := New(g, Parameters{
				Width: 100, Height: 100,
				Mode: ModeIterations, Criterion: 20,
				CoolingRate: 0.1, Seed: 1,
			})
			if err != nil {
				return false
			}
			for i := range sim.state.Vertices {
				sim.state.SetPosition(i, r2.Vec{X: x, Y: y})
			}
			if _, err := sim.Run(context.Background()); err != nil {
				return false
			}
			for _, pos := range sim.Frame().Positions {
				if math.IsNaN(pos.X) || math.IsNaN(pos.Y) {
					return false
				}
			}
			return true
		},
		gen.IntRange(2, 8),
		gen.Float64Range(0, 100),
		gen.Float64Range(0, 100),
	))

	properties.TestingRun(t)
}
