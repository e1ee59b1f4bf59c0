// Package lattice maps continuous coordinates onto an offset hexagonal
// lattice and finds free cells near a target.
//
// # Lattice
//
// Cells are addressed by integer (row, col). Rows are V apart and columns H
// apart; odd rows (negative ones included) are shifted right by H/2:
//
//	row 0:  o   o   o   o
//	row 1:    o   o   o   o
//	row 2:  o   o   o   o
//
// [Lattice.Cell] quantizes a point to the nearest cell and always returns a
// cell. [Lattice.Point] is its exact inverse on lattice sites.
//
// # Searches
//
// [Lattice.FindFree] and [Lattice.PackAround] expand breadth-first over the
// six neighbours of each cell, so they return the topologically nearest free
// cells. Both stop after MaxVisits cells. When the cap is hit FindFree falls
// back to the (possibly occupied) start cell and PackAround returns fewer
// cells than requested; callers must check for both.
//
// Occupancy is supplied fresh on every call and never modified.
//
// # Concurrency
//
// Lattice is a value type with no internal state; all methods are safe for
// concurrent use.
package lattice
