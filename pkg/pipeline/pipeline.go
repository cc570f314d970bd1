// Package pipeline runs layouts and cooling-rate sweeps with caching.
//
// Both the CLI and the HTTP API go through a [Runner], so graph resolution,
// cache keys, hooks and logging behave the same for every entry point.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//
//	// One layout of a generated ring
//	g, _ := pipeline.GraphSource{Topology: "ring", Size: 6}.Build(nil)
//	res, err := runner.Layout(ctx, g, fdp.Parameters{Width: 800, Height: 600, Criterion: 15, CoolingRate: 0.01, Seed: 42})
//
//	// A sweep over the same family
//	sweep, err := runner.Sweep(ctx, pipeline.SweepRequest{
//	    Source: pipeline.GraphSource{Topology: "ring", Size: 6},
//	    Params: params,
//	    Range:  optimize.Range{From: 0.01, To: 0.05, Step: 0.01, SampleSize: 10},
//	    Seed:   42,
//	})
package pipeline

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/matzehuels/forcelayout/pkg/cache"
	"github.com/matzehuels/forcelayout/pkg/errors"
	"github.com/matzehuels/forcelayout/pkg/fdp"
	"github.com/matzehuels/forcelayout/pkg/graph"
	"github.com/matzehuels/forcelayout/pkg/optimize"
	"github.com/matzehuels/forcelayout/pkg/topology"
)

// =============================================================================
// Graph sources
// =============================================================================

// GraphSource names the graph to lay out: either a generated topology or an
// explicit graph, never both.
type GraphSource struct {
	Topology string       `json:"topology,omitempty"`
	Size     int          `json:"size,omitempty"`
	Graph    *graph.Graph `json:"graph,omitempty"`
}

// Validate checks that exactly one source is set and that it is usable.
func (s GraphSource) Validate() error {
	switch {
	case s.Graph != nil && s.Topology != "":
		return errors.Field(errors.ErrCodeInvalidInput, "graph", "set either graph or topology, not both")
	case s.Graph != nil:
		return s.Graph.Validate()
	case s.Topology != "":
		_, err := topology.ParseKind(s.Topology)
		return err
	}
	return errors.Field(errors.ErrCodeInvalidInput, "topology", "a graph or a topology is required")
}

// Spec identifies the source in cache keys: "ring:6" for topologies, the
// content hash for explicit graphs.
func (s GraphSource) Spec() string {
	if s.Graph != nil {
		data, _ := graph.MarshalGraph(s.Graph)
		return "graph:" + cache.Hash(data)
	}
	return fmt.Sprintf("%s:%d", s.Topology, s.Size)
}

// Build returns a graph for the source. rng feeds random topologies; nil
// uses a fresh random source. Explicit graphs are cloned.
func (s GraphSource) Build(rng *rand.Rand) (*graph.Graph, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if s.Graph != nil {
		return s.Graph.Clone(), nil
	}
	if rng == nil {
		rng = fdp.NewRand(0)
	}
	return topology.Generate(topology.Kind(s.Topology), s.Size, rng)
}

// Factory returns a graph factory for sweeps.
func (s GraphSource) Factory() (optimize.GraphFactory, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if s.Graph != nil {
		g := s.Graph
		return func(*rand.Rand) (*graph.Graph, error) { return g.Clone(), nil }, nil
	}
	return topology.Factory(topology.Kind(s.Topology), s.Size), nil
}

// =============================================================================
// Requests and results
// =============================================================================

// SweepRequest describes one cooling-rate sweep.
type SweepRequest struct {
	Source GraphSource    `json:"source"`
	Params fdp.Parameters `json:"params"`
	Range  optimize.Range `json:"range"`
	Seed   uint64         `json:"seed,omitempty"`

	// Refresh skips the cache lookup but still stores the result.
	Refresh bool `json:"refresh,omitempty"`

	// Progress is forwarded to optimize.Options; it is not called for
	// cached results.
	Progress func(optimize.Point) `json:"-"`
}

// LayoutResult is the outcome of Runner.Layout.
type LayoutResult struct {
	Layout    graph.Layout
	GraphHash string
	Duration  time.Duration
	CacheHit  bool
}

// SweepResult is the outcome of Runner.Sweep.
type SweepResult struct {
	*optimize.Result
	Duration time.Duration
	CacheHit bool
}

// LayoutKeyOpts returns the cache key options for p.
func LayoutKeyOpts(p fdp.Parameters) cache.LayoutKeyOpts {
	p.SetDefaults()
	return cache.LayoutKeyOpts{
		Width:         p.Width,
		Height:        p.Height,
		Attractive:    p.Attractive,
		Repulsive:     p.Repulsive,
		Mode:          string(p.Mode),
		Criterion:     p.Criterion,
		CoolingRate:   p.CoolingRate,
		MaxIterations: p.MaxIterations,
		Seed:          p.Seed,
	}
}

// SweepKeyOpts returns the cache key options for req.
func SweepKeyOpts(req SweepRequest) cache.SweepKeyOpts {
	p := req.Params
	p.SetDefaults()
	return cache.SweepKeyOpts{
		Width:         p.Width,
		Height:        p.Height,
		Attractive:    p.Attractive,
		Repulsive:     p.Repulsive,
		Criterion:     p.Criterion,
		MaxIterations: p.MaxIterations,
		From:          req.Range.From,
		To:            req.Range.To,
		Step:          req.Range.Step,
		SampleSize:    req.Range.SampleSize,
		Seed:          req.Seed,
	}
}
