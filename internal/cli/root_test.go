package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/forcelayout/pkg/config"
	"github.com/matzehuels/forcelayout/pkg/errors"
	"github.com/matzehuels/forcelayout/pkg/graph"
)

// runCLI executes the root command with args on a fresh CLI and returns
// the command output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvRedisURL, "")
	t.Setenv(config.EnvCacheDir, t.TempDir())

	var out bytes.Buffer
	c := New(&bytes.Buffer{}, LogInfo)
	c.Out = &out
	root := c.RootCommand()
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()

	want := []string{"simulate", "optimize", "topology", "serve", "cache", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}

	for _, flag := range []string{"config", "verbose"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("persistent flag --%s missing", flag)
		}
	}
}

func TestSimulateTopology(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ring.layout.json")

	_, err := runCLI(t, "simulate", "--topology", "ring", "--size", "5", "--seed", "7", "-o", path)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}

	l, err := graph.ReadLayoutFile(path)
	if err != nil {
		t.Fatalf("read layout: %v", err)
	}
	if len(l.Nodes) != 5 || len(l.Edges) != 5 {
		t.Errorf("layout has %d nodes and %d edges, want 5 and 5", len(l.Nodes), len(l.Edges))
	}
	for _, p := range l.Nodes {
		if p.X < 0 || p.X > l.Width || p.Y < 0 || p.Y > l.Height {
			t.Errorf("node %s at (%g, %g) outside %gx%g", p.ID, p.X, p.Y, l.Width, l.Height)
		}
	}
}

func TestSimulateIterationMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "star.layout.json")

	_, err := runCLI(t, "simulate", "-t", "star", "-n", "4", "--mode", "iterations", "--threshold", "12", "--no-cache", "-o", path)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}

	l, err := graph.ReadLayoutFile(path)
	if err != nil {
		t.Fatalf("read layout: %v", err)
	}
	if l.Iterations != 12 || !l.Converged {
		t.Errorf("iterations = %d, converged = %v; want 12 and true", l.Iterations, l.Converged)
	}
}

func TestSimulateForcePairs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ring.layout.json")

	_, err := runCLI(t, "simulate", "-n", "4", "--no-cache",
		"--attractive", "d*d/k;d*d/(2*k)", "--repulsive", "k*k/d",
		"--mode", "iterations", "--threshold", "5", "-o", path)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}

	for _, p := range []string{indexedPath(path, 0), indexedPath(path, 1)} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("expected output %s: %v", p, err)
		}
	}
}

func TestSimulateRejectsBadLaterPairBeforeRunning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ring.layout.json")

	_, err := runCLI(t, "simulate", "-n", "4", "--no-cache",
		"--attractive", "d*d/k; d +", "--mode", "iterations", "--threshold", "5", "-o", path)
	if !errors.Is(err, errors.ErrCodeInvalidExpression) {
		t.Fatalf("error = %v, want INVALID_EXPRESSION", err)
	}
	if got := errors.GetField(err); got != "attractive" {
		t.Errorf("error field = %q, want attractive", got)
	}
	if _, err := os.Stat(indexedPath(path, 0)); !os.IsNotExist(err) {
		t.Error("no layout should be written when a later force pair is invalid")
	}
}

func TestSimulateGraphFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "pair.json")
	g := graph.New()
	g.AddNode("a")
	g.AddNode("b")
	g.AddEdge("a", "b")
	if err := graph.WriteGraphFile(g, input); err != nil {
		t.Fatal(err)
	}

	if _, err := runCLI(t, "simulate", input, "--seed", "3", "--no-cache"); err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "pair.layout.json")); err != nil {
		t.Errorf("default output path not written: %v", err)
	}
}

func TestSimulateConfigErrors(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		code  errors.Code
		field string
	}{
		{"zero width", []string{"--width", "0"}, errors.ErrCodeInvalidParameter, "width"},
		{"cooling rate 1", []string{"--cooling-rate", "1"}, errors.ErrCodeInvalidParameter, "cooling_rate"},
		{"bad expression", []string{"--attractive", "d*"}, errors.ErrCodeInvalidExpression, "attractive"},
		{"unknown topology", []string{"-t", "torus"}, errors.ErrCodeInvalidTopology, "topology"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"simulate", "--no-cache", "-o", filepath.Join(t.TempDir(), "x.json")}, tt.args...)
			_, err := runCLI(t, args...)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("error code = %s, want %s (%v)", errors.GetCode(err), tt.code, err)
			}
			if got := errors.GetField(err); got != tt.field {
				t.Errorf("error field = %q, want %q", got, tt.field)
			}
		})
	}
}

func TestSimulateConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "run.toml")
	cfg := `
[simulation]
width = 400
height = 400

[topology]
kind = "wheel"
size = 6
`
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "wheel.layout.json")

	if _, err := runCLI(t, "--config", cfgPath, "simulate", "--seed", "1", "-o", out); err != nil {
		t.Fatalf("simulate: %v", err)
	}

	l, err := graph.ReadLayoutFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(l.Nodes) != 6 || l.Width != 400 {
		t.Errorf("got %d nodes in a %g wide frame, want 6 nodes and width 400", len(l.Nodes), l.Width)
	}
}

func TestTopologyCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cube.json")

	if _, err := runCLI(t, "topology", "hypercube", "3", "-o", path); err != nil {
		t.Fatalf("topology: %v", err)
	}

	g, err := graph.ReadGraphFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if g.NodeCount() != 8 || g.EdgeCount() != 12 {
		t.Errorf("hypercube 3 has %d nodes and %d edges, want 8 and 12", g.NodeCount(), g.EdgeCount())
	}
}

func TestTopologyCommandStdout(t *testing.T) {
	out, err := runCLI(t, "topology", "linear", "3", "-o", "-")
	if err != nil {
		t.Fatalf("topology: %v", err)
	}
	g, err := graph.ReadGraph(strings.NewReader(out))
	if err != nil {
		t.Fatalf("stdout is not a graph: %v", err)
	}
	if g.NodeCount() != 3 || g.EdgeCount() != 2 {
		t.Errorf("linear 3 has %d nodes and %d edges, want 3 and 2", g.NodeCount(), g.EdgeCount())
	}
}

func TestTopologyCommandRejectsBadSize(t *testing.T) {
	_, err := runCLI(t, "topology", "ring", "six")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestOptimizeCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweep.json")

	out, err := runCLI(t, "optimize", "-n", "4", "--seed", "9",
		"--from", "0.1", "--to", "0.2", "--step", "0.1", "--samples", "2",
		"--live=false", "-o", path)
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}
	if !strings.Contains(out, "best rate") {
		t.Errorf("output should report the best rate:\n%s", out)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var reports []sweepReport
	if err := json.Unmarshal(data, &reports); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	if len(reports) != 1 {
		t.Fatalf("got %d reports, want 1", len(reports))
	}
	res := reports[0].Result
	if len(res.Points) != 2 {
		t.Fatalf("got %d points, want 2", len(res.Points))
	}
	if res.Best.Rate != 0.1 && res.Best.Rate != 0.2 {
		t.Errorf("best rate %g is not one of the swept rates", res.Best.Rate)
	}
	if reports[0].Source != "ring:4" {
		t.Errorf("source = %q, want ring:4", reports[0].Source)
	}
}

func TestOptimizeRejectsBadLaterPairBeforeRunning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweep.json")

	out, err := runCLI(t, "optimize", "-n", "4", "--no-cache", "--live=false",
		"--from", "0.1", "--to", "0.2", "--step", "0.1", "--samples", "1",
		"--repulsive", "k*k/d; k*", "-o", path)
	if !errors.Is(err, errors.ErrCodeInvalidExpression) {
		t.Fatalf("error = %v, want INVALID_EXPRESSION", err)
	}
	if got := errors.GetField(err); got != "repulsive" {
		t.Errorf("error field = %q, want repulsive", got)
	}
	if strings.Contains(out, "best rate") {
		t.Errorf("no sweep should have run:\n%s", out)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("no report should be written")
	}
}

func TestOptimizeRejectsInvalidRange(t *testing.T) {
	_, err := runCLI(t, "optimize", "--from", "0.5", "--to", "0.1", "--live=false", "--no-cache")
	if !errors.Is(err, errors.ErrCodeInvalidRange) {
		t.Errorf("error = %v, want INVALID_RANGE", err)
	}
}
