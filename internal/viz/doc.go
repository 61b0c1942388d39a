// Package viz renders calculus results in the terminal.
//
// Static output uses asciigraph line charts of stored sample tables. The
// interactive [Explorer] is a Bubble Tea program that re-evaluates a
// function as its step size changes, showing how the forward-difference
// gradient and the Riemann sums converge.
//
// # Key Bindings
//
//	+/↑   - Halve the step size
//	-/↓   - Double the step size
//	N     - Toggle diagonal/nested quadrature
//	P     - Toggle parallel gradient evaluation
//	R     - Reset to the initial step
//	Q     - Quit
package viz
