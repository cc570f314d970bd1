package fdp

import (
	"context"
	"math/rand/v2"
	"sync/atomic"

	"github.com/matzehuels/forcelayout/pkg/errors"
	"github.com/matzehuels/forcelayout/pkg/force"
	"github.com/matzehuels/forcelayout/pkg/graph"
)

// StepResult describes the outcome of one step.
type StepResult struct {
	Iteration   int     // steps performed so far, including this one
	Temperature float64 // temperature for the next step
	Equilibrium bool    // every net force was within the threshold
}

// Frame is an immutable snapshot of a simulation, published after every
// step. Readers must not modify Positions.
type Frame struct {
	Iteration   int
	Temperature float64
	Equilibrium bool
	Width       float64
	Height      float64
	Positions   []graph.Position
}

// Simulation is one force-directed placement run over a graph.
//
// A Simulation is not safe for concurrent stepping; only Frame may be called
// from other goroutines.
type Simulation struct {
	params Parameters
	model  force.Model
	state  *State
	edges  []graph.Edge
	cfg    StepConfig

	temperature float64
	iteration   int
	equilibrium bool

	frame atomic.Pointer[Frame]
}

// New validates p, compiles its force expressions and places the vertices
// of g at random inside the frame. Configuration problems are returned as
// coded errors before any step runs; g is not retained.
func New(g *graph.Graph, p Parameters) (*Simulation, error) {
	p.SetDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	model, err := force.NewModel(p.Attractive, p.Repulsive)
	if err != nil {
		return nil, err
	}

	s := &Simulation{
		params: p,
		model:  model,
		state:  NewState(g),
		edges:  append([]graph.Edge(nil), g.Edges...),
		cfg: StepConfig{
			K:           p.CharacteristicDistance(g.NodeCount()),
			Width:       float64(p.Width),
			Height:      float64(p.Height),
			Criterion:   p.Criterion,
			CoolingRate: p.CoolingRate,
		},
		temperature: p.InitialTemperature(),
	}
	s.state.RandomizePositions(s.cfg.Width, s.cfg.Height, NewRand(p.Seed))
	s.publish()
	return s, nil
}

// NewRand returns a PCG source for seed. A zero seed draws a random one.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Step performs one physics step and publishes a new frame.
func (s *Simulation) Step() StepResult {
	s.temperature, s.equilibrium = Advance(s.state, s.model, s.cfg, s.temperature)
	s.iteration++
	s.publish()
	return StepResult{
		Iteration:   s.iteration,
		Temperature: s.temperature,
		Equilibrium: s.equilibrium,
	}
}

// Done reports whether the stop policy is satisfied: the step count has
// been reached in iteration mode, or equilibrium or the cap in equilibrium
// mode.
func (s *Simulation) Done() bool {
	if s.params.Mode == ModeIterations {
		return s.iteration >= s.params.Iterations()
	}
	return s.equilibrium || s.iteration >= s.params.MaxIterations
}

// Run steps until Done and returns the number of steps performed.
// Cancellation is checked before every step; on cancellation Run returns
// the steps completed so far together with ctx.Err().
func (s *Simulation) Run(ctx context.Context) (int, error) {
	for !s.Done() {
		if err := ctx.Err(); err != nil {
			return s.iteration, err
		}
		s.Step()
	}
	return s.iteration, nil
}

// Converged reports whether the run stopped on its own criterion. In
// equilibrium mode that means equilibrium was reached rather than the cap;
// in iteration mode it means all steps were performed.
func (s *Simulation) Converged() bool {
	if s.params.Mode == ModeIterations {
		return s.iteration >= s.params.Iterations()
	}
	return s.equilibrium
}

// Iteration returns the number of steps performed.
func (s *Simulation) Iteration() int { return s.iteration }

// Temperature returns the current temperature.
func (s *Simulation) Temperature() float64 { return s.temperature }

// K returns the characteristic distance of this run.
func (s *Simulation) K() float64 { return s.cfg.K }

// Params returns the effective parameters, defaults applied.
func (s *Simulation) Params() Parameters { return s.params }

// Frame returns the latest published snapshot. Safe for concurrent use.
func (s *Simulation) Frame() Frame {
	return *s.frame.Load()
}

// Layout converts the latest frame into a serializable layout.
func (s *Simulation) Layout() graph.Layout {
	f := s.Frame()
	return graph.Layout{
		Width:      f.Width,
		Height:     f.Height,
		Iterations: f.Iteration,
		Converged:  s.Converged(),
		Nodes:      f.Positions,
		Edges:      s.edges,
	}
}

func (s *Simulation) publish() {
	s.frame.Store(&Frame{
		Iteration:   s.iteration,
		Temperature: s.temperature,
		Equilibrium: s.equilibrium,
		Width:       s.cfg.Width,
		Height:      s.cfg.Height,
		Positions:   s.state.Positions(),
	})
}

// errNotRunnable is returned by Animate for a nil simulation.
var errNotRunnable = errors.New(errors.ErrCodeInvalidInput, "nil simulation")
