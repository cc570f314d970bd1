// Package topology generates the graph families offered by the interactive
// optimizer: random, linear, grid, ring, star, wheel, hypercube and
// complete.
//
// Regular families are built with gonum's graph generators and converted to
// a [graph.Graph] with vertex IDs "0" … "n-1" and edges in a stable order, so
// a seeded simulation over a generated graph is reproducible.
package topology

import (
	"cmp"
	"math/rand/v2"
	"slices"
	"strconv"

	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/graphs/gen"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/matzehuels/forcelayout/pkg/errors"
	"github.com/matzehuels/forcelayout/pkg/graph"
	"github.com/matzehuels/forcelayout/pkg/optimize"
)

// Kind names a graph family.
type Kind string

const (
	Random    Kind = "random"    // G(n, m) with m = n edges
	Linear    Kind = "linear"    // path of n vertices
	Grid      Kind = "grid"      // n×n lattice
	Ring      Kind = "ring"      // cycle of n vertices
	Star      Kind = "star"      // hub plus n-1 leaves
	Wheel     Kind = "wheel"     // hub plus a ring of n-1 vertices
	Hypercube Kind = "hypercube" // n-dimensional cube, 2^n vertices
	Complete  Kind = "complete"  // K_n
)

// MaxVertices bounds the size of a generated graph.
const MaxVertices = 4096

// maxGridSide is the largest grid side with at most MaxVertices cells.
const maxGridSide = 64

// Kinds lists every supported family in display order.
func Kinds() []Kind {
	return []Kind{Random, Linear, Grid, Ring, Star, Wheel, Hypercube, Complete}
}

// ParseKind resolves a family name.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if slices.Contains(Kinds(), k) {
		return k, nil
	}
	return "", errors.Field(errors.ErrCodeInvalidTopology, "topology",
		"unknown topology %q, want one of %v", s, Kinds())
}

// Vertices returns the number of vertices Generate produces for kind and
// size, or MaxVertices+1 for any size beyond the limit.
func Vertices(kind Kind, size int) int {
	switch kind {
	case Grid:
		if size > maxGridSide {
			return MaxVertices + 1
		}
		return size * size
	case Hypercube:
		if size >= 31 {
			return MaxVertices + 1
		}
		return 1 << size
	}
	return size
}

// Generate builds a graph of the given family. size is the vertex count
// except for grid (side length) and hypercube (dimension). rng is only
// used by the random family and may be nil otherwise.
func Generate(kind Kind, size int, rng *rand.Rand) (*graph.Graph, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return nil, err
	}
	if err := checkSize(kind, size); err != nil {
		return nil, err
	}

	dst := simple.NewUndirectedGraph()
	ids := gen.IDRange{First: 0, Last: int64(size) - 1}
	switch kind {
	case Random:
		if rng == nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "random topology requires a random source")
		}
		randomGnm(dst, size, rng)
	case Linear:
		gen.Path(dst, ids)
	case Grid:
		lattice(dst, size)
	case Ring:
		if size < 3 {
			gen.Path(dst, ids)
		} else {
			gen.Cycle(dst, ids)
		}
	case Star:
		gen.Star(dst, 0, gen.IDRange{First: 1, Last: int64(size) - 1})
	case Wheel:
		if size < 4 {
			gen.Complete(dst, ids)
		} else {
			gen.Wheel(dst, 0, gen.IDRange{First: 1, Last: int64(size) - 1})
		}
	case Hypercube:
		hypercube(dst, size)
	case Complete:
		gen.Complete(dst, ids)
	}

	// Families whose generator adds no edges for tiny sizes still need
	// their vertices.
	for id := range int64(Vertices(kind, size)) {
		if dst.Node(id) == nil {
			dst.AddNode(simple.Node(id))
		}
	}
	return convert(dst), nil
}

// Factory returns a graph factory for sweeps over one family.
func Factory(kind Kind, size int) optimize.GraphFactory {
	return func(rng *rand.Rand) (*graph.Graph, error) {
		return Generate(kind, size, rng)
	}
}

func checkSize(kind Kind, size int) error {
	minSize := 1
	if kind == Star || kind == Wheel {
		minSize = 2
	}
	if kind == Hypercube {
		minSize = 0
	}
	if size < minSize {
		return errors.Field(errors.ErrCodeInvalidTopology, "size",
			"%s needs size >= %d, got %d", kind, minSize, size)
	}
	if Vertices(kind, size) > MaxVertices {
		return errors.Field(errors.ErrCodeInvalidTopology, "size",
			"%s(%d) has more than %d vertices", kind, size, MaxVertices)
	}
	return nil
}

// randomGnm adds n vertices and min(n, n(n-1)/2) distinct edges chosen
// uniformly from rng.
func randomGnm(dst *simple.UndirectedGraph, n int, rng *rand.Rand) {
	for id := range int64(n) {
		dst.AddNode(simple.Node(id))
	}
	m := min(n, n*(n-1)/2)
	for added := 0; added < m; {
		u, v := rng.Int64N(int64(n)), rng.Int64N(int64(n))
		if u == v || dst.HasEdgeBetween(u, v) {
			continue
		}
		dst.SetEdge(simple.Edge{F: simple.Node(u), T: simple.Node(v)})
		added++
	}
}

// lattice adds an n×n grid; vertex r·n+c joins its right and lower
// neighbours.
func lattice(dst *simple.UndirectedGraph, n int) {
	id := func(r, c int) simple.Node { return simple.Node(int64(r*n + c)) }
	for r := range n {
		for c := range n {
			if dst.Node(int64(r*n+c)) == nil {
				dst.AddNode(id(r, c))
			}
			if c+1 < n {
				dst.SetEdge(simple.Edge{F: id(r, c), T: id(r, c+1)})
			}
			if r+1 < n {
				dst.SetEdge(simple.Edge{F: id(r, c), T: id(r+1, c)})
			}
		}
	}
}

// hypercube adds the dim-dimensional cube: vertices differing in one bit
// are adjacent.
func hypercube(dst *simple.UndirectedGraph, dim int) {
	n := int64(1) << dim
	for v := range n {
		if dst.Node(v) == nil {
			dst.AddNode(simple.Node(v))
		}
		for b := range dim {
			if u := v ^ (1 << b); u > v {
				dst.SetEdge(simple.Edge{F: simple.Node(v), T: simple.Node(u)})
			}
		}
	}
}

// convert copies g into a graph.Graph with nodes ordered by ID and edges
// ordered by (lower, higher) endpoint.
func convert(g *simple.UndirectedGraph) *graph.Graph {
	nodes := gonum.NodesOf(g.Nodes())
	slices.SortFunc(nodes, func(a, b gonum.Node) int { return cmp.Compare(a.ID(), b.ID()) })

	type pair struct{ u, v int64 }
	var pairs []pair
	for _, e := range gonum.EdgesOf(g.Edges()) {
		u, v := e.From().ID(), e.To().ID()
		if u > v {
			u, v = v, u
		}
		pairs = append(pairs, pair{u, v})
	}
	slices.SortFunc(pairs, func(a, b pair) int {
		return cmp.Or(cmp.Compare(a.u, b.u), cmp.Compare(a.v, b.v))
	})

	out := graph.New()
	for _, n := range nodes {
		out.AddNode(strconv.FormatInt(n.ID(), 10))
	}
	for _, p := range pairs {
		out.AddEdge(strconv.FormatInt(p.u, 10), strconv.FormatInt(p.v, 10))
	}
	return out
}
