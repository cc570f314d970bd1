package topology

import (
	"testing"

	"github.com/matzehuels/forcelayout/pkg/errors"
	"github.com/matzehuels/forcelayout/pkg/fdp"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		kind      Kind
		size      int
		wantNodes int
		wantEdges int
	}{
		{Linear, 5, 5, 4},
		{Linear, 1, 1, 0},
		{Ring, 6, 6, 6},
		{Ring, 2, 2, 1},
		{Grid, 3, 9, 12},
		{Star, 5, 5, 4},
		{Wheel, 6, 6, 10},
		{Wheel, 3, 3, 3},
		{Hypercube, 3, 8, 12},
		{Hypercube, 0, 1, 0},
		{Complete, 5, 5, 10},
		{Random, 6, 6, 6},
		{Random, 3, 3, 3},
		{Random, 2, 2, 1},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			g, err := Generate(tt.kind, tt.size, fdp.NewRand(1))
			if err != nil {
				t.Fatalf("Generate(%s, %d) error: %v", tt.kind, tt.size, err)
			}
			if err := g.Validate(); err != nil {
				t.Fatalf("generated graph invalid: %v", err)
			}
			if g.NodeCount() != tt.wantNodes {
				t.Errorf("nodes = %d, want %d", g.NodeCount(), tt.wantNodes)
			}
			if g.EdgeCount() != tt.wantEdges {
				t.Errorf("edges = %d, want %d", g.EdgeCount(), tt.wantEdges)
			}
			for _, e := range g.Edges {
				if e.From == e.To {
					t.Errorf("self-loop on %s", e.From)
				}
			}
		})
	}
}

func TestGenerateStableOrder(t *testing.T) {
	a, err := Generate(Grid, 4, nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Generate(Grid, 4, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a.Edges {
		if a.Edges[i] != b.Edges[i] {
			t.Fatalf("edge %d differs: %v vs %v", i, a.Edges[i], b.Edges[i])
		}
	}
	if a.Nodes[0].ID != "0" || a.Nodes[15].ID != "15" {
		t.Errorf("nodes not ordered by id: %q … %q", a.Nodes[0].ID, a.Nodes[15].ID)
	}
}

func TestGenerateRandomSeeded(t *testing.T) {
	a, _ := Generate(Random, 10, fdp.NewRand(5))
	b, _ := Generate(Random, 10, fdp.NewRand(5))
	for i := range a.Edges {
		if a.Edges[i] != b.Edges[i] {
			t.Fatalf("same seed gave different edge %d", i)
		}
	}
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name      string
		kind      Kind
		size      int
		wantCode  errors.Code
		wantField string
	}{
		{"unknown kind", "tree", 5, errors.ErrCodeInvalidTopology, "topology"},
		{"zero ring", Ring, 0, errors.ErrCodeInvalidTopology, "size"},
		{"tiny star", Star, 1, errors.ErrCodeInvalidTopology, "size"},
		{"huge grid", Grid, 100, errors.ErrCodeInvalidTopology, "size"},
		{"huge cube", Hypercube, 20, errors.ErrCodeInvalidTopology, "size"},
		{"largest grid plus one", Grid, 65, errors.ErrCodeInvalidTopology, "size"},
		{"grid side squaring past int", Grid, 1 << 32, errors.ErrCodeInvalidTopology, "size"},
		{"huge ring", Ring, 1 << 40, errors.ErrCodeInvalidTopology, "size"},
		{"random without rng", Random, 5, errors.ErrCodeInvalidInput, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Generate(tt.kind, tt.size, nil)
			if !errors.Is(err, tt.wantCode) {
				t.Fatalf("Generate() error = %v, want %s", err, tt.wantCode)
			}
			if got := errors.GetField(err); got != tt.wantField {
				t.Errorf("field = %q, want %q", got, tt.wantField)
			}
		})
	}
}

func TestVertices(t *testing.T) {
	tests := []struct {
		kind Kind
		size int
		want int
	}{
		{Grid, 64, 4096},
		{Grid, 65, MaxVertices + 1},
		{Grid, 1 << 32, MaxVertices + 1},
		{Hypercube, 12, 4096},
		{Hypercube, 63, MaxVertices + 1},
		{Ring, 7, 7},
	}
	for _, tt := range tests {
		if got := Vertices(tt.kind, tt.size); got != tt.want {
			t.Errorf("Vertices(%s, %d) = %d, want %d", tt.kind, tt.size, got, tt.want)
		}
	}
}

func TestGenerateLargestGrid(t *testing.T) {
	g, err := Generate(Grid, 64, nil)
	if err != nil {
		t.Fatalf("Generate(grid, 64) error: %v", err)
	}
	if g.NodeCount() != MaxVertices || g.EdgeCount() != 2*64*63 {
		t.Errorf("grid(64) = %d nodes, %d edges", g.NodeCount(), g.EdgeCount())
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(string(k))
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %q, %v", k, got, err)
		}
	}
	if _, err := ParseKind("Ring"); err == nil {
		t.Error("ParseKind should be case-sensitive")
	}
}

func TestFactory(t *testing.T) {
	f := Factory(Ring, 4)
	g, err := f(fdp.NewRand(1))
	if err != nil {
		t.Fatal(err)
	}
	if g.NodeCount() != 4 || g.EdgeCount() != 4 {
		t.Errorf("ring(4) = %d nodes, %d edges", g.NodeCount(), g.EdgeCount())
	}
}
