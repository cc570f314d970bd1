// Package fdp implements force-directed placement: a spring-embedder
// simulation that lays a graph out inside a rectangular frame.
//
// Vertices repel each other, vertices joined by an edge attract, and a
// temperature that cools geometrically caps how far a vertex may move per
// step. A run ends either after a fixed number of steps or once every
// vertex's net force is below a threshold (mechanical equilibrium), bounded
// by a hard iteration cap.
//
// # Components
//
//   - [State]: per-vertex position and displacement, edges as index pairs
//   - [Advance]: one physics step over a State
//   - [Simulation]: one run (initialisation, step clock, stop policy)
//   - [Animate]: paces a Simulation for interactive display
//
// # Usage
//
//	sim, err := fdp.New(g, fdp.Parameters{
//	    Width: 800, Height: 600,
//	    Mode: fdp.ModeEquilibrium, Criterion: 15,
//	    CoolingRate: 0.01,
//	})
//	if err != nil {
//	    return err // configuration error, nothing ran
//	}
//	iterations, err := sim.Run(ctx)
//	layout := sim.Layout()
//
// A Simulation is owned by one goroutine. Other goroutines (a renderer, a
// progress display) read [Simulation.Frame], an immutable snapshot published
// after every step.
package fdp
