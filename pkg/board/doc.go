// Package board holds the canonical state of a pip board: 100 pips spread
// over a 5×5 grid of labeled buckets.
//
// The board owns pip positions and hands them to the two engines it is built
// on. [lattice] resolves drops and packs selections onto free hex sites;
// [codec] turns the per-bucket totals into a share token and back.
//
// # Layout
//
// Rows run from rarest to most frequent (epochal … annual), columns from
// positive to catastrophic. [Order] fixes which grid cell each codec bucket
// refers to: the annual row comes first, then the rows above it.
//
// # Geometry
//
// [Geometry] is the explicit parameter object for cell bounds and pip size.
// It is computed once and threaded through every call, so there is no cached
// layout to go stale.
//
// # Attribution
//
// Pips inside a cell count toward it. Pips dropped outside every cell are
// reported separately by [Board.Tally] and attributed to the nearest cell by
// geometric center when the board is encoded.
//
// A Board is not safe for concurrent use.
package board
