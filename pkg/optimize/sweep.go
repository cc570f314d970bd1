package optimize

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/forcelayout/pkg/errors"
	"github.com/matzehuels/forcelayout/pkg/fdp"
	"github.com/matzehuels/forcelayout/pkg/force"
	"github.com/matzehuels/forcelayout/pkg/graph"
	"github.com/matzehuels/forcelayout/pkg/observability"
)

// GraphFactory produces a fresh graph for one sample. Random topologies draw
// from rng; every call must return a graph the caller may mutate.
type GraphFactory func(rng *rand.Rand) (*graph.Graph, error)

// Point is the outcome of one cooling rate.
type Point struct {
	Rate           float64 `json:"rate"`
	MeanIterations float64 `json:"mean_iterations"`
	Converged      int     `json:"converged"` // samples that reached equilibrium before the cap
	Samples        int     `json:"samples"`
}

// Result is the performance curve of a sweep and its best point.
type Result struct {
	Points []Point `json:"points"`
	Best   Point   `json:"best"`
}

// Map returns the curve as rate → mean iterations.
func (r *Result) Map() map[float64]float64 {
	m := make(map[float64]float64, len(r.Points))
	for _, p := range r.Points {
		m[p.Rate] = p.MeanIterations
	}
	return m
}

// Options tunes a sweep.
type Options struct {
	// Progress is called on the sweeping goroutine after each rate completes.
	Progress func(Point)

	// Seed makes the sweep reproducible (0 = random).
	Seed uint64

	// Logger receives per-rate debug output. Nil discards it.
	Logger *log.Logger
}

// Sweep evaluates every rate of r with base's frame, forces and equilibrium
// threshold. Mode is forced to equilibrium and Delay to zero.
//
// Configuration errors are returned before any simulation runs. If ctx is
// cancelled, in-flight simulations stop at their next step and Sweep returns
// a CANCELLED error wrapping ctx.Err().
func Sweep(ctx context.Context, factory GraphFactory, base fdp.Parameters, r Range, opts Options) (*Result, error) {
	if factory == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "graph factory is required")
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	base.Mode = fdp.ModeEquilibrium
	base.Delay = 0
	base.SetDefaults()
	first := base
	first.CoolingRate = r.From
	if err := first.Validate(); err != nil {
		return nil, err
	}
	if _, err := force.NewModel(base.Attractive, base.Repulsive); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	seed := opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	rates := r.Rates()
	hooks := observability.Simulation()
	hooks.OnSweepStart(ctx, len(rates), r.SampleSize)
	start := time.Now()
	logger.Debug("sweep started", "rates", len(rates), "samples", r.SampleSize, "seed", seed)

	res := &Result{Points: make([]Point, 0, len(rates))}
	for i, rate := range rates {
		pt, err := sweepRate(ctx, factory, base, rate, r.SampleSize, seed+uint64(i)*uint64(r.SampleSize))
		if err != nil {
			if ctx.Err() != nil {
				err = errors.Wrap(errors.ErrCodeCancelled, ctx.Err(), "sweep cancelled at rate %g", rate)
			}
			hooks.OnSweepComplete(ctx, 0, time.Since(start), err)
			return nil, err
		}

		res.Points = append(res.Points, pt)
		if i == 0 || pt.MeanIterations < res.Best.MeanIterations {
			res.Best = pt
		}

		logger.Debug("rate done", "rate", pt.Rate, "mean", pt.MeanIterations, "converged", pt.Converged)
		hooks.OnSweepRate(ctx, pt.Rate, pt.MeanIterations, pt.Converged, pt.Samples)
		if opts.Progress != nil {
			opts.Progress(pt)
		}
	}

	hooks.OnSweepComplete(ctx, res.Best.Rate, time.Since(start), nil)
	logger.Debug("sweep finished", "best", res.Best.Rate, "mean", res.Best.MeanIterations, "elapsed", time.Since(start))
	return res, nil
}

// sweepRate runs n samples at one rate concurrently and waits for all of
// them. Sample s draws its graph and placement from splitmix(seed+s).
func sweepRate(ctx context.Context, factory GraphFactory, base fdp.Parameters, rate float64, n int, seed uint64) (Point, error) {
	iterations := make([]int, n)
	converged := make([]bool, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n)
	for s := range n {
		g.Go(func() error {
			rng := fdp.NewRand(splitmix(seed + uint64(s)))
			gr, err := factory(rng)
			if err != nil {
				return fmt.Errorf("rate %g sample %d: %w", rate, s, err)
			}

			p := base
			p.CoolingRate = rate
			p.Seed = rng.Uint64() | 1
			sim, err := fdp.New(gr, p)
			if err != nil {
				return fmt.Errorf("rate %g sample %d: %w", rate, s, err)
			}
			it, err := sim.Run(gctx)
			if err != nil {
				return err
			}
			iterations[s] = it
			converged[s] = sim.Converged()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Point{}, err
	}

	pt := Point{Rate: rate, Samples: n}
	total := 0
	for s := range n {
		total += iterations[s]
		if converged[s] {
			pt.Converged++
		}
	}
	pt.MeanIterations = float64(total) / float64(n)
	return pt, nil
}

// splitmix scrambles x so neighbouring seeds give unrelated streams.
func splitmix(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	if x == 0 {
		x = 1
	}
	return x
}
