package graph

import (
	"github.com/matzehuels/forcelayout/pkg/errors"
)

// =============================================================================
// Graph - Topology
// =============================================================================

// Graph is an undirected topology: vertices plus edges between them.
//
// Node order is preserved but carries no meaning. A Graph is not safe for
// concurrent mutation; the simulation takes a private copy of what it needs.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is a vertex identity.
type Node struct {
	ID    string `json:"id"`
	Label string `json:"label,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge is an unordered pair of vertex IDs.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{}
}

// AddNode appends a vertex.
func (g *Graph) AddNode(id string) {
	g.Nodes = append(g.Nodes, Node{ID: id})
}

// AddEdge appends an edge between two vertex IDs.
func (g *Graph) AddEdge(from, to string) {
	g.Edges = append(g.Edges, Edge{From: from, To: to})
}

// NodeCount returns the number of vertices.
func (g *Graph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.Edges) }

// Index returns a map from vertex ID to its position in Nodes.
func (g *Graph) Index() map[string]int {
	idx := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		idx[n.ID] = i
	}
	return idx
}

// Validate checks that the graph has at least one vertex, that vertex IDs
// are unique and non-empty, and that every edge references known vertices.
func (g *Graph) Validate() error {
	if g == nil || len(g.Nodes) == 0 {
		return errors.Field(errors.ErrCodeEmptyGraph, "nodes", "graph must contain at least one vertex")
	}

	seen := make(map[string]struct{}, len(g.Nodes))
	for i, n := range g.Nodes {
		if n.ID == "" {
			return errors.Field(errors.ErrCodeInvalidGraph, "nodes", "vertex %d has an empty id", i)
		}
		if _, dup := seen[n.ID]; dup {
			return errors.Field(errors.ErrCodeInvalidGraph, "nodes", "duplicate vertex id %q", n.ID)
		}
		seen[n.ID] = struct{}{}
	}

	for i, e := range g.Edges {
		if _, ok := seen[e.From]; !ok {
			return errors.Field(errors.ErrCodeInvalidGraph, "edges", "edge %d references unknown vertex %q", i, e.From)
		}
		if _, ok := seen[e.To]; !ok {
			return errors.Field(errors.ErrCodeInvalidGraph, "edges", "edge %d references unknown vertex %q", i, e.To)
		}
	}
	return nil
}

// Clone returns a deep copy of the graph.
func (g *Graph) Clone() *Graph {
	out := &Graph{
		Nodes: make([]Node, len(g.Nodes)),
		Edges: make([]Edge, len(g.Edges)),
	}
	copy(out.Nodes, g.Nodes)
	copy(out.Edges, g.Edges)
	return out
}
