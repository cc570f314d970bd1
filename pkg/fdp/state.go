package fdp

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/forcelayout/pkg/graph"
)

// Vertex is the mutable per-vertex simulation data.
type Vertex struct {
	ID   string
	Pos  r2.Vec
	Disp r2.Vec
}

// State holds the graph being laid out. It is a passive data holder; all
// force computation happens in Advance.
type State struct {
	Vertices []Vertex
	Edges    [][2]int
}

// NewState builds a State from a validated graph. All positions start at
// the origin; call RandomizePositions before stepping.
func NewState(g *graph.Graph) *State {
	idx := g.Index()
	s := &State{
		Vertices: make([]Vertex, len(g.Nodes)),
		Edges:    make([][2]int, 0, len(g.Edges)),
	}
	for i, n := range g.Nodes {
		s.Vertices[i].ID = n.ID
	}
	for _, e := range g.Edges {
		s.Edges = append(s.Edges, [2]int{idx[e.From], idx[e.To]})
	}
	return s
}

// RandomizePositions places every vertex uniformly at random in the frame.
func (s *State) RandomizePositions(w, h float64, rng *rand.Rand) {
	for i := range s.Vertices {
		s.Vertices[i].Pos = r2.Vec{X: rng.Float64() * w, Y: rng.Float64() * h}
	}
}

// ResetDisplacement zeroes vertex i's displacement accumulator.
func (s *State) ResetDisplacement(i int) {
	s.Vertices[i].Disp = r2.Vec{}
}

// AccumulateDisplacement adds delta to vertex i's displacement.
func (s *State) AccumulateDisplacement(i int, delta r2.Vec) {
	s.Vertices[i].Disp = r2.Add(s.Vertices[i].Disp, delta)
}

// ClampToFrame moves vertex i back inside [0,w]×[0,h].
func (s *State) ClampToFrame(i int, w, h float64) {
	p := &s.Vertices[i].Pos
	p.X = min(w, max(0, p.X))
	p.Y = min(h, max(0, p.Y))
}

// SetPosition places vertex i at pos without clamping.
func (s *State) SetPosition(i int, pos r2.Vec) {
	s.Vertices[i].Pos = pos
}

// Positions returns a copy of all vertex positions.
func (s *State) Positions() []graph.Position {
	out := make([]graph.Position, len(s.Vertices))
	for i, v := range s.Vertices {
		out[i] = graph.Position{ID: v.ID, X: v.Pos.X, Y: v.Pos.Y}
	}
	return out
}
