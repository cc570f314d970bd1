package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/forcelayout/pkg/config"
	"github.com/matzehuels/forcelayout/pkg/errors"
	"github.com/matzehuels/forcelayout/pkg/fdp"
	"github.com/matzehuels/forcelayout/pkg/graph"
	"github.com/matzehuels/forcelayout/pkg/pipeline"
)

// simulateCommand creates the simulate command for single layout runs.
func (c *CLI) simulateCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		animate bool
		flags   simulationFlags
	)

	cmd := &cobra.Command{
		Use:   "simulate [graph.json]",
		Short: "Lay out a graph with the force-directed algorithm",
		Long: `Lay out a graph with the Fruchterman-Reingold force-directed algorithm.

The graph is read from a graph.json file, or generated with --topology and
--size when no file is given. The result is written as layout.json.

Several force expressions may be given as ';'-separated lists. They are
paired index by index, repeating the last entry of the shorter list, and
every pair is run separately.

Seeded runs (--seed) are cached locally for faster subsequent runs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			flags.apply(cmd.Flags(), cfg)

			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return c.runSimulate(cmd.Context(), cfg, input, output, noCache, animate)
		},
	}

	flags.bind(cmd.Flags(), true)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&animate, "animate", false, "step interactively, pacing steps by --delay")

	return cmd
}

// runSimulate resolves the graph, runs one layout per force pair and writes the results.
func (c *CLI) runSimulate(ctx context.Context, cfg *config.Config, input, output string, noCache, animate bool) error {
	pairs, err := forcePairs(cfg.Simulation)
	if err != nil {
		return err
	}

	g, name, err := resolveGraph(cfg, input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	for i, pair := range pairs {
		params := cfg.Simulation
		params.Attractive, params.Repulsive = pair.Attractive, pair.Repulsive

		var (
			res *pipeline.LayoutResult
			err error
		)
		if animate {
			res, err = c.animateLayout(ctx, g, params)
		} else {
			res, err = c.computeLayout(ctx, runner, g, params)
		}
		if err != nil {
			return err
		}

		path := output
		if path == "" {
			path = outputPath(input, name, "layout.json")
		}
		if len(pairs) > 1 {
			path = indexedPath(path, i)
			printInfo("%s", pair.String())
		}
		if err := graph.WriteLayoutFile(res.Layout, path); err != nil {
			return fmt.Errorf("write output %s: %w", path, err)
		}

		printSuccess("Layout complete")
		printFile(path)
		printStats(layoutStats{
			Nodes:      g.NodeCount(),
			Edges:      g.EdgeCount(),
			Iterations: res.Layout.Iterations,
			Converged:  res.Layout.Converged,
			Cached:     res.CacheHit,
		})
	}

	if cfg.Simulation.Seed == 0 {
		printNewline()
		printNextStep("Reproduce and cache", fmt.Sprintf("%s simulate --seed <n>", appName))
	}
	return nil
}

// resolveGraph reads input, or generates the configured topology when input
// is empty. name is used for default output paths.
func resolveGraph(cfg *config.Config, input string) (g *graph.Graph, name string, err error) {
	if input != "" {
		g, err = graph.ReadGraphFile(input)
		if err != nil {
			return nil, "", errors.Wrap(errors.ErrCodeInvalidGraph, err, "load graph %s", input).WithField("graph")
		}
		return g, "", nil
	}

	src := pipeline.GraphSource{Topology: cfg.Topology.Kind, Size: cfg.Topology.Size}
	g, err = src.Build(fdp.NewRand(cfg.Simulation.Seed))
	if err != nil {
		return nil, "", err
	}
	return g, fmt.Sprintf("%s-%d", cfg.Topology.Kind, cfg.Topology.Size), nil
}

// computeLayout runs through the cached pipeline behind a spinner.
func (c *CLI) computeLayout(ctx context.Context, runner *pipeline.Runner, g *graph.Graph, params fdp.Parameters) (*pipeline.LayoutResult, error) {
	spinner := newSpinner(ctx, fmt.Sprintf("Laying out %d nodes...", g.NodeCount()))
	spinner.Start()

	res, err := runner.Layout(ctx, g, params)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return nil, err
	}
	spinner.Stop()
	return res, nil
}

// animateLayout steps the simulation with params.Delay between steps and
// reports every frame on the spinner line. Animated runs are not cached.
func (c *CLI) animateLayout(ctx context.Context, g *graph.Graph, params fdp.Parameters) (*pipeline.LayoutResult, error) {
	sim, err := fdp.New(g, params)
	if err != nil {
		return nil, err
	}

	spinner := newSpinner(ctx, "Starting simulation...")
	spinner.Start()

	prog := newProgress(c.Logger)
	start := time.Now()
	err = fdp.Animate(ctx, sim, params.Delay, func(f fdp.Frame) {
		spinner.SetMessage(fmt.Sprintf("iteration %d  temperature %.1f", f.Iteration, f.Temperature))
	})
	if err != nil {
		spinner.StopWithError("Simulation interrupted")
		return nil, errors.Wrap(errors.ErrCodeCancelled, err, "simulation stopped after %d iterations", sim.Iteration())
	}
	spinner.Stop()
	prog.done("animation finished", "iterations", sim.Iteration(), "converged", sim.Converged())

	return &pipeline.LayoutResult{Layout: sim.Layout(), Duration: time.Since(start)}, nil
}

// indexedPath inserts ".<i>" before the extension chain of path, so
// "ring-6.layout.json" becomes "ring-6.1.layout.json".
func indexedPath(path string, i int) string {
	const suffix = ".layout.json"
	if base, ok := strings.CutSuffix(path, suffix); ok && base != "" {
		return fmt.Sprintf("%s.%d%s", base, i, suffix)
	}
	return fmt.Sprintf("%s.%d", path, i)
}
