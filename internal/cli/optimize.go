package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/matzehuels/forcelayout/pkg/config"
	"github.com/matzehuels/forcelayout/pkg/errors"
	"github.com/matzehuels/forcelayout/pkg/force"
	"github.com/matzehuels/forcelayout/pkg/optimize"
	"github.com/matzehuels/forcelayout/pkg/pipeline"
)

// sweepReport is one force pair's sweep as written by --output.
type sweepReport struct {
	Attractive string           `json:"attractive,omitempty"`
	Repulsive  string           `json:"repulsive,omitempty"`
	Source     string           `json:"source"`
	Result     *optimize.Result `json:"result"`
}

// optimizeCommand creates the optimize command for cooling-rate sweeps.
func (c *CLI) optimizeCommand() *cobra.Command {
	var (
		output   string
		noCache  bool
		refresh  bool
		live     bool
		noChart  bool
		from     float64
		to       float64
		step     float64
		samples  int
		flags    simulationFlags
		defaults = optimize.DefaultRange()
	)

	cmd := &cobra.Command{
		Use:   "optimize [graph.json]",
		Short: "Find the cooling rate that reaches equilibrium fastest",
		Long: `Sweep cooling rates and report the mean number of iterations needed to
reach equilibrium at each rate.

Every rate in [--from, --to] spaced by --step is run --samples times from
independent random placements. The rate with the smallest mean wins; ties
go to the smaller rate. Runs that never reach equilibrium count as the
iteration cap.

The graph is read from a graph.json file, or generated with --topology and
--size for every sample when no file is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			flags.apply(cmd.Flags(), cfg)
			fs := cmd.Flags()
			if fs.Changed("from") {
				cfg.Sweep.From = from
			}
			if fs.Changed("to") {
				cfg.Sweep.To = to
			}
			if fs.Changed("step") {
				cfg.Sweep.Step = step
			}
			if fs.Changed("samples") {
				cfg.Sweep.SampleSize = samples
			}

			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			opts := optimizeOptions{
				input:   input,
				output:  output,
				noCache: noCache,
				refresh: refresh,
				live:    live && isatty.IsTerminal(os.Stderr.Fd()),
				chart:   !noChart,
			}
			return c.runOptimize(cmd.Context(), cfg, opts)
		},
	}

	flags.bind(cmd.Flags(), false)
	cmd.Flags().Float64Var(&from, "from", defaults.From, "first cooling rate")
	cmd.Flags().Float64Var(&to, "to", defaults.To, "last cooling rate")
	cmd.Flags().Float64Var(&step, "step", defaults.Step, "distance between rates")
	cmd.Flags().IntVar(&samples, "samples", defaults.SampleSize, "runs per rate")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write results as JSON to this file")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even when a cached result exists")
	cmd.Flags().BoolVar(&live, "live", true, "show live progress when attached to a terminal")
	cmd.Flags().BoolVar(&noChart, "no-chart", false, "omit the chart")

	return cmd
}

type optimizeOptions struct {
	input   string
	output  string
	noCache bool
	refresh bool
	live    bool
	chart   bool
}

// runOptimize sweeps once per force pair, prints each result and optionally writes JSON.
func (c *CLI) runOptimize(ctx context.Context, cfg *config.Config, opts optimizeOptions) error {
	pairs, err := forcePairs(cfg.Simulation)
	if err != nil {
		return err
	}

	src, err := sweepSource(cfg, opts.input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	reports := make([]sweepReport, 0, len(pairs))
	for _, pair := range pairs {
		params := cfg.Simulation
		params.Attractive, params.Repulsive = pair.Attractive, pair.Repulsive

		req := pipeline.SweepRequest{
			Source:  src,
			Params:  params,
			Range:   cfg.Sweep,
			Seed:    params.Seed,
			Refresh: opts.refresh,
		}
		res, err := c.sweep(ctx, runner, req, opts.live)
		if err != nil {
			return err
		}

		printSweep(c.Out, pair, res, opts.chart)
		reports = append(reports, sweepReport{
			Attractive: pair.Attractive,
			Repulsive:  pair.Repulsive,
			Source:     src.Spec(),
			Result:     res.Result,
		})
	}

	if opts.output != "" {
		if err := writeReports(opts.output, reports); err != nil {
			return err
		}
		printFile(opts.output)
	}
	return nil
}

// sweep runs req behind the live view, or with per-rate debug logging.
func (c *CLI) sweep(ctx context.Context, runner *pipeline.Runner, req pipeline.SweepRequest, live bool) (*pipeline.SweepResult, error) {
	if live {
		return runSweepTUI(ctx, os.Stderr, runner, req)
	}

	logger := loggerFromContext(ctx)
	prog := newProgress(logger)
	req.Progress = func(p optimize.Point) {
		logger.Info("rate done", "rate", p.Rate, "mean", p.MeanIterations, "converged", p.Converged)
	}
	res, err := runner.Sweep(ctx, req)
	if err != nil {
		return nil, err
	}
	prog.done("sweep finished", "rates", len(res.Points), "cached", res.CacheHit)
	return res, nil
}

// sweepSource resolves the graph family: an explicit graph file, or the
// configured topology regenerated per sample.
func sweepSource(cfg *config.Config, input string) (pipeline.GraphSource, error) {
	if input == "" {
		src := pipeline.GraphSource{Topology: cfg.Topology.Kind, Size: cfg.Topology.Size}
		return src, src.Validate()
	}
	g, _, err := resolveGraph(cfg, input)
	if err != nil {
		return pipeline.GraphSource{}, err
	}
	return pipeline.GraphSource{Graph: g}, nil
}

// printSweep writes the table, the best rate and optionally a chart to w.
func printSweep(w io.Writer, pair force.Pair, res *pipeline.SweepResult, chart bool) {
	fmt.Fprintln(w, StyleTitle.Render(pair.String()))
	fmt.Fprintln(w, renderSweepTable(res.Result))
	if chart {
		if plot := renderSweepChart(res.Result, 60, 10); plot != "" {
			fmt.Fprintln(w, plot)
		}
	}
	best := res.Best
	fmt.Fprintln(w, formatBest(best, res.CacheHit))
	if best.Converged < best.Samples {
		printWarning("%d of %d samples at the best rate hit the iteration cap", best.Samples-best.Converged, best.Samples)
	}
}

// formatBest renders the winning rate.
func formatBest(best optimize.Point, cached bool) string {
	status, statusStyle := iconFresh, styleComputed
	if cached {
		status, statusStyle = iconCached, styleCached
	}
	return styleIconSuccess.Render(iconSuccess) + " best rate " +
		StyleNumber.Render(formatRate(best.Rate)) +
		StyleDim.Render(fmt.Sprintf(" · mean %.2f iterations · ", best.MeanIterations)) +
		statusStyle.Render(status)
}

// writeReports writes reports as indented JSON.
func writeReports(path string, reports []sweepReport) error {
	data, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode sweep results")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}
	return nil
}
