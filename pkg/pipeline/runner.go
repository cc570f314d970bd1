package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/forcelayout/pkg/cache"
	"github.com/matzehuels/forcelayout/pkg/errors"
	"github.com/matzehuels/forcelayout/pkg/fdp"
	"github.com/matzehuels/forcelayout/pkg/graph"
	"github.com/matzehuels/forcelayout/pkg/observability"
	"github.com/matzehuels/forcelayout/pkg/optimize"
)

// Runner executes layouts and sweeps with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely share one Runner.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Layout runs one simulation of g to completion. Seeded runs are
// deterministic and therefore cached; unseeded runs always compute.
func (r *Runner) Layout(ctx context.Context, g *graph.Graph, params fdp.Parameters) (*LayoutResult, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	graphData, err := graph.MarshalGraph(g)
	if err != nil {
		return nil, fmt.Errorf("serialize graph for cache key: %w", err)
	}
	res := &LayoutResult{GraphHash: cache.Hash(graphData)}

	cacheable := params.Seed != 0
	key := r.Keyer.LayoutKey(res.GraphHash, LayoutKeyOpts(params))
	if cacheable {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if l, err := graph.UnmarshalLayout(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				res.Layout, res.CacheHit = l, true
				r.Logger.Debug("layout cache hit", "graph", res.GraphHash[:12])
				return res, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	sim, err := fdp.New(g, params)
	if err != nil {
		return nil, err
	}

	hooks := observability.Simulation()
	hooks.OnRunStart(ctx, g.NodeCount())
	start := time.Now()
	iterations, err := sim.Run(ctx)
	res.Duration = time.Since(start)
	hooks.OnRunComplete(ctx, iterations, sim.Converged(), res.Duration, err)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCancelled, err, "layout stopped after %d iterations", iterations)
	}

	res.Layout = sim.Layout()
	r.Logger.Info("computed layout",
		"nodes", g.NodeCount(),
		"iterations", iterations,
		"converged", sim.Converged(),
		"duration", res.Duration)
	if !sim.Converged() {
		r.Logger.Warn("no equilibrium before the iteration cap", "cap", sim.Params().MaxIterations)
	}

	if cacheable {
		if data, err := graph.MarshalLayout(res.Layout); err == nil {
			if err := r.Cache.Set(ctx, key, data, cache.TTLLayout); err == nil {
				observability.Cache().OnCacheSet(ctx, "layout", len(data))
			} else {
				r.Logger.Warn("cache write failed", "error", err)
			}
		}
	}
	return res, nil
}

// Sweep runs a cooling-rate sweep. Seeded sweeps are cached.
func (r *Runner) Sweep(ctx context.Context, req SweepRequest) (*SweepResult, error) {
	if err := req.Source.Validate(); err != nil {
		return nil, err
	}
	factory, err := req.Source.Factory()
	if err != nil {
		return nil, err
	}

	cacheable := req.Seed != 0
	key := r.Keyer.SweepKey(req.Source.Spec(), SweepKeyOpts(req))
	if cacheable && !req.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var cached optimize.Result
			if err := json.Unmarshal(data, &cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "sweep")
				r.Logger.Debug("sweep cache hit", "source", req.Source.Spec())
				return &SweepResult{Result: &cached, CacheHit: true}, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "sweep")
	}

	start := time.Now()
	res, err := optimize.Sweep(ctx, factory, req.Params, req.Range, optimize.Options{
		Progress: req.Progress,
		Seed:     req.Seed,
		Logger:   r.Logger,
	})
	if err != nil {
		return nil, err
	}
	out := &SweepResult{Result: res, Duration: time.Since(start)}

	r.Logger.Info("sweep finished",
		"source", req.Source.Spec(),
		"rates", len(res.Points),
		"best", res.Best.Rate,
		"mean", res.Best.MeanIterations,
		"duration", out.Duration)

	if cacheable {
		if data, err := json.Marshal(res); err == nil {
			if err := r.Cache.Set(ctx, key, data, cache.TTLSweep); err == nil {
				observability.Cache().OnCacheSet(ctx, "sweep", len(data))
			} else {
				r.Logger.Warn("cache write failed", "error", err)
			}
		}
	}
	return out, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
