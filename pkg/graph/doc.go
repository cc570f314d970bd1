// Package graph provides the topology and layout types exchanged with the
// outside world.
//
// A [Graph] is what a topology collaborator hands to the simulation: a set of
// vertices and a set of undirected edges between them. A [Layout] is what the
// simulation hands back: the frame dimensions and one position per vertex,
// ready to draw vertices as circles and edges as line segments.
//
// # Graph Serialization
//
// Graphs use a simple node-link JSON format:
//
//	{
//	  "nodes": [{"id": "a"}, {"id": "b"}],
//	  "edges": [{"from": "a", "to": "b"}]
//	}
//
// Edges are unordered pairs; "from" and "to" are only field names. Duplicate
// edges are kept as-is.
//
// # Layout Serialization
//
//	{
//	  "width": 800, "height": 600,
//	  "iterations": 212, "converged": true,
//	  "nodes": [{"id": "a", "x": 371.2, "y": 288.0}],
//	  "edges": [{"from": "a", "to": "b"}]
//	}
package graph
