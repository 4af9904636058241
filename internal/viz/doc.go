// Package viz renders Ising lattices and traces in the terminal.
//
//   - [RenderLattice]: coloured lattice, two characters per spin, with
//     block-majority reduction for large lattices
//   - [BrailleLattice]: compact lattice on a Braille [Canvas]
//   - [EnergyPlot]: asciigraph line chart of a trace
//   - [LiveModel]: Bubble Tea program stepping a chain one sweep per frame
//
// # Key Bindings
//
//	Space   - Pause/Resume
//	R       - Reset to the initial lattice
//	Up/Down - Scale β by ±5%
//	T       - Cycle color themes
//	B       - Toggle Braille lattice
//	?       - Show help overlay
package viz
