package fdp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/forcelayout/pkg/force"
	"github.com/matzehuels/forcelayout/pkg/graph"
)

func pairState(a, b r2.Vec, linked bool) *State {
	g := graph.New()
	g.AddNode("a")
	g.AddNode("b")
	if linked {
		g.AddEdge("a", "b")
	}
	s := NewState(g)
	s.SetPosition(0, a)
	s.SetPosition(1, b)
	return s
}

func TestUnit(t *testing.T) {
	assert.Equal(t, r2.Vec{}, unit(r2.Vec{}))

	u := unit(r2.Vec{X: 3, Y: 4})
	assert.InDelta(t, 0.6, u.X, 1e-12)
	assert.InDelta(t, 0.8, u.Y, 1e-12)
}

func TestAdvanceRepulsionOnly(t *testing.T) {
	s := pairState(r2.Vec{X: 40, Y: 50}, r2.Vec{X: 60, Y: 50}, false)
	cfg := StepConfig{K: 20, Width: 100, Height: 100, Criterion: 1, CoolingRate: 0.1}

	next, eq := Advance(s, force.Default(), cfg, 5)

	// repulsion k²/d = 20 per vertex exceeds the threshold and is capped by t.
	assert.False(t, eq)
	assert.InDelta(t, 4.5, next, 1e-12)
	assert.InDelta(t, -20, s.Vertices[0].Disp.X, 1e-9)
	assert.InDelta(t, 20, s.Vertices[1].Disp.X, 1e-9)
	assert.InDelta(t, 35, s.Vertices[0].Pos.X, 1e-9)
	assert.InDelta(t, 65, s.Vertices[1].Pos.X, 1e-9)
	assert.InDelta(t, 50, s.Vertices[0].Pos.Y, 1e-9)
}

func TestAdvanceBalancedEdge(t *testing.T) {
	// At distance k attraction d²/k and repulsion k²/d cancel.
	s := pairState(r2.Vec{X: 40, Y: 50}, r2.Vec{X: 60, Y: 50}, true)
	cfg := StepConfig{K: 20, Width: 100, Height: 100, Criterion: 1, CoolingRate: 0.5}

	next, eq := Advance(s, force.Default(), cfg, 10)

	assert.True(t, eq)
	assert.InDelta(t, 5, next, 1e-12)
	assert.InDelta(t, 20, r2.Norm(r2.Sub(s.Vertices[1].Pos, s.Vertices[0].Pos)), 1e-9)
}

func TestAdvanceTemperatureFloor(t *testing.T) {
	s := pairState(r2.Vec{X: 10, Y: 10}, r2.Vec{X: 90, Y: 90}, false)
	cfg := StepConfig{K: 1, Width: 100, Height: 100, Criterion: 1, CoolingRate: 0.9}

	next, _ := Advance(s, force.Default(), cfg, 1.05)
	assert.Equal(t, MinTemperature, next)
}

func TestAdvanceClampsToFrame(t *testing.T) {
	s := pairState(r2.Vec{X: 1, Y: 1}, r2.Vec{X: 2, Y: 1}, false)
	cfg := StepConfig{K: 50, Width: 100, Height: 100, Criterion: 1, CoolingRate: 0.1}

	Advance(s, force.Default(), cfg, 30)

	for _, v := range s.Vertices {
		assert.GreaterOrEqual(t, v.Pos.X, 0.0)
		assert.LessOrEqual(t, v.Pos.X, 100.0)
		assert.GreaterOrEqual(t, v.Pos.Y, 0.0)
		assert.LessOrEqual(t, v.Pos.Y, 100.0)
	}
	assert.Equal(t, 0.0, s.Vertices[0].Pos.X)
}

func TestAdvanceCoincidentVertices(t *testing.T) {
	p := r2.Vec{X: 50, Y: 50}
	s := pairState(p, p, true)
	cfg := StepConfig{K: 20, Width: 100, Height: 100, Criterion: 1, CoolingRate: 0.1}

	_, eq := Advance(s, force.Default(), cfg, 10)

	assert.True(t, eq)
	for _, v := range s.Vertices {
		require.False(t, math.IsNaN(v.Pos.X) || math.IsNaN(v.Pos.Y))
		assert.Equal(t, p, v.Pos)
	}
}

func TestAdvanceNonFiniteForce(t *testing.T) {
	inf := func(d, k float64) float64 { return math.Inf(1) }
	nan := func(d, k float64) float64 { return math.NaN() }
	s := pairState(r2.Vec{X: 30, Y: 50}, r2.Vec{X: 70, Y: 50}, true)
	cfg := StepConfig{K: 20, Width: 100, Height: 100, Criterion: 1, CoolingRate: 0.1}

	_, eq := Advance(s, force.Model{Attractive: nan, Repulsive: inf}, cfg, 10)

	assert.True(t, eq)
	assert.Equal(t, r2.Vec{X: 30, Y: 50}, s.Vertices[0].Pos)
	assert.Equal(t, r2.Vec{X: 70, Y: 50}, s.Vertices[1].Pos)
}

func TestStateOperations(t *testing.T) {
	s := pairState(r2.Vec{X: -5, Y: 200}, r2.Vec{X: 1, Y: 1}, true)
	require.Equal(t, [][2]int{{0, 1}}, s.Edges)

	s.AccumulateDisplacement(0, r2.Vec{X: 1, Y: 2})
	s.AccumulateDisplacement(0, r2.Vec{X: 1, Y: 2})
	assert.Equal(t, r2.Vec{X: 2, Y: 4}, s.Vertices[0].Disp)
	s.ResetDisplacement(0)
	assert.Equal(t, r2.Vec{}, s.Vertices[0].Disp)

	s.ClampToFrame(0, 100, 100)
	assert.Equal(t, r2.Vec{X: 0, Y: 100}, s.Vertices[0].Pos)

	pos := s.Positions()
	pos[0].X = 42
	assert.Equal(t, 0.0, s.Vertices[0].Pos.X, "Positions must return a copy")
	assert.Equal(t, "b", pos[1].ID)
}
