package cli

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/matzehuels/forcelayout/pkg/config"
	"github.com/matzehuels/forcelayout/pkg/fdp"
	"github.com/matzehuels/forcelayout/pkg/force"
)

// simulationFlags are the run parameters shared by simulate and optimize.
// Only flags the user set override the configuration file.
type simulationFlags struct {
	width         int
	height        int
	attractive    string
	repulsive     string
	mode          string
	criterion     float64
	coolingRate   float64
	maxIterations int
	delay         time.Duration
	seed          uint64
	topology      string
	size          int
}

func (f *simulationFlags) bind(fs *pflag.FlagSet, withMode bool) {
	d := fdp.DefaultParameters()
	fs.IntVar(&f.width, "width", d.Width, "frame width")
	fs.IntVar(&f.height, "height", d.Height, "frame height")
	fs.StringVar(&f.attractive, "attractive", "", "attractive force expressions over d and k, ';'-separated (default d*d/k)")
	fs.StringVar(&f.repulsive, "repulsive", "", "repulsive force expressions over d and k, ';'-separated (default k*k/d)")
	fs.Float64Var(&f.criterion, "threshold", d.Criterion, "equilibrium net-force threshold, or step count with --mode iterations")
	fs.IntVar(&f.maxIterations, "max-iterations", d.MaxIterations, "iteration cap when seeking equilibrium")
	fs.Uint64Var(&f.seed, "seed", 0, "random seed for placement and random topologies (0 = random)")
	fs.StringVarP(&f.topology, "topology", "t", "ring", "generated graph: random, linear, grid, ring, star, wheel, hypercube, complete")
	fs.IntVarP(&f.size, "size", "n", 6, "topology size")
	if withMode {
		fs.StringVar(&f.mode, "mode", string(d.Mode), "stop policy: equilibrium, iterations")
		fs.Float64Var(&f.coolingRate, "cooling-rate", d.CoolingRate, "fractional temperature decay per step")
		fs.DurationVar(&f.delay, "delay", 0, "pause between animated steps")
	}
}

// apply overlays the flags the user set onto cfg.
func (f *simulationFlags) apply(fs *pflag.FlagSet, cfg *config.Config) {
	p := &cfg.Simulation
	set := func(name string, fn func()) {
		if fs.Changed(name) {
			fn()
		}
	}
	set("width", func() { p.Width = f.width })
	set("height", func() { p.Height = f.height })
	set("attractive", func() { p.Attractive = f.attractive })
	set("repulsive", func() { p.Repulsive = f.repulsive })
	set("mode", func() { p.Mode = fdp.Mode(f.mode) })
	set("threshold", func() { p.Criterion = f.criterion })
	set("cooling-rate", func() { p.CoolingRate = f.coolingRate })
	set("max-iterations", func() { p.MaxIterations = f.maxIterations })
	set("delay", func() { p.Delay = f.delay })
	set("seed", func() { p.Seed = f.seed })
	set("topology", func() { cfg.Topology.Kind = f.topology })
	set("size", func() { cfg.Topology.Size = f.size })
}

// forcePairs zips the configured force lists and compiles every pair, so a
// bad expression anywhere in either list fails before the first run.
func forcePairs(p fdp.Parameters) ([]force.Pair, error) {
	pairs := force.ZipPairs(p.Attractive, p.Repulsive)
	for i, pair := range pairs {
		if _, err := pair.Model(); err != nil {
			if len(pairs) == 1 {
				return nil, err
			}
			return nil, fmt.Errorf("force pair %d: %w", i+1, err)
		}
	}
	return pairs, nil
}
