package graph

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/forcelayout/pkg/errors"
)

func triangle() *Graph {
	g := New()
	g.AddNode("a")
	g.AddNode("b")
	g.AddNode("c")
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	g.AddEdge("c", "a")
	return g
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		graph    *Graph
		wantCode errors.Code
	}{
		{"valid", triangle(), ""},
		{"nil", nil, errors.ErrCodeEmptyGraph},
		{"empty", New(), errors.ErrCodeEmptyGraph},
		{"empty id", &Graph{Nodes: []Node{{ID: ""}}}, errors.ErrCodeInvalidGraph},
		{"duplicate id", &Graph{Nodes: []Node{{ID: "a"}, {ID: "a"}}}, errors.ErrCodeInvalidGraph},
		{"unknown endpoint", &Graph{Nodes: []Node{{ID: "a"}}, Edges: []Edge{{From: "a", To: "z"}}}, errors.ErrCodeInvalidGraph},
		{"duplicate edges tolerated", &Graph{Nodes: []Node{{ID: "a"}, {ID: "b"}}, Edges: []Edge{{From: "a", To: "b"}, {From: "b", To: "a"}}}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.graph.Validate()
			if got := errors.GetCode(err); got != tt.wantCode {
				t.Errorf("Validate() code = %q, want %q (err=%v)", got, tt.wantCode, err)
			}
		})
	}
}

func TestGraphRoundTrip(t *testing.T) {
	g := triangle()

	var buf bytes.Buffer
	if err := WriteGraph(g, &buf); err != nil {
		t.Fatalf("WriteGraph: %v", err)
	}
	if !strings.Contains(buf.String(), `"from": "a"`) {
		t.Errorf("unexpected JSON: %s", buf.String())
	}

	back, err := ReadGraph(&buf)
	if err != nil {
		t.Fatalf("ReadGraph: %v", err)
	}
	if back.NodeCount() != 3 || back.EdgeCount() != 3 {
		t.Errorf("got %d nodes, %d edges; want 3, 3", back.NodeCount(), back.EdgeCount())
	}
}

func TestReadGraphRejectsInvalid(t *testing.T) {
	_, err := UnmarshalGraph([]byte(`{"nodes":[],"edges":[]}`))
	if !errors.Is(err, errors.ErrCodeEmptyGraph) {
		t.Errorf("UnmarshalGraph(empty) = %v, want EMPTY_GRAPH", err)
	}

	_, err = ReadGraph(strings.NewReader("not json"))
	if err == nil {
		t.Error("ReadGraph(garbage) should fail")
	}
}

func TestGraphFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "g.json")
	if err := WriteGraphFile(triangle(), path); err != nil {
		t.Fatalf("WriteGraphFile: %v", err)
	}
	g, err := ReadGraphFile(path)
	if err != nil {
		t.Fatalf("ReadGraphFile: %v", err)
	}
	if g.Index()["c"] != 2 {
		t.Errorf("Index()[c] = %d, want 2", g.Index()["c"])
	}
}

func TestClone(t *testing.T) {
	g := triangle()
	c := g.Clone()
	c.Nodes[0].ID = "changed"
	c.AddEdge("a", "a")

	if g.Nodes[0].ID != "a" {
		t.Error("Clone should copy nodes")
	}
	if g.EdgeCount() != 3 {
		t.Error("Clone should copy edges")
	}
}

func TestLayoutFile(t *testing.T) {
	l := Layout{
		Width: 100, Height: 50, Iterations: 7, Converged: true,
		Nodes: []Position{{ID: "a", X: 1, Y: 2}},
	}
	path := filepath.Join(t.TempDir(), "layout.json")
	if err := WriteLayoutFile(l, path); err != nil {
		t.Fatalf("WriteLayoutFile: %v", err)
	}
	got, err := ReadLayoutFile(path)
	if err != nil {
		t.Fatalf("ReadLayoutFile: %v", err)
	}
	p, ok := got.Position("a")
	if !ok || p.X != 1 || p.Y != 2 {
		t.Errorf("Position(a) = %+v, %v", p, ok)
	}
	if _, ok := got.Position("missing"); ok {
		t.Error("Position(missing) should not be found")
	}

	if _, err := UnmarshalLayout([]byte(`{"width":0,"height":1}`)); err == nil {
		t.Error("UnmarshalLayout should reject a zero-width frame")
	}
}
