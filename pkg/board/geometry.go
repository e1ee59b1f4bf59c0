package board

import (
	"math"

	"github.com/matzehuels/pipgrid/pkg/errors"
	"github.com/matzehuels/pipgrid/pkg/lattice"
)

// Default geometry. A 280×220 cell fits a BFS disk of radius 6 (127 sites)
// at a pip size of 20, so any single cell can hold all 100 pips.
const (
	DefaultCellWidth  = 280.0
	DefaultCellHeight = 220.0
	DefaultPipSize    = 20.0
)

// Rect is an axis-aligned rectangle; Top < Bottom.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// RectFromPoints returns the rectangle spanned by two corners in any order.
func RectFromPoints(a, b lattice.Point) Rect {
	return Rect{
		Left:   math.Min(a.X, b.X),
		Top:    math.Min(a.Y, b.Y),
		Right:  math.Max(a.X, b.X),
		Bottom: math.Max(a.Y, b.Y),
	}
}

// Contains reports whether p lies in r, edges included.
func (r Rect) Contains(p lattice.Point) bool {
	return p.X >= r.Left && p.X <= r.Right && p.Y >= r.Top && p.Y <= r.Bottom
}

// Center returns the midpoint of r.
func (r Rect) Center() lattice.Point {
	return lattice.Point{X: (r.Left + r.Right) / 2, Y: (r.Top + r.Bottom) / 2}
}

// Geometry places the grid in continuous coordinates.
type Geometry struct {
	Origin     lattice.Point `json:"origin"`
	CellWidth  float64       `json:"cell_width"`
	CellHeight float64       `json:"cell_height"`
	PipSize    float64       `json:"pip_size"`
}

// DefaultGeometry returns the standard grid anchored at the origin.
func DefaultGeometry() Geometry {
	return Geometry{
		CellWidth:  DefaultCellWidth,
		CellHeight: DefaultCellHeight,
		PipSize:    DefaultPipSize,
	}
}

// Validate rejects geometries that cannot hold a full board in one cell.
func (g Geometry) Validate() error {
	if g.PipSize <= 0 || math.IsInf(g.PipSize, 0) || math.IsNaN(g.PipSize) {
		return errors.New(errors.ErrCodeInvalidConfig, "pip size must be positive, got %v", g.PipSize)
	}
	if g.CellWidth <= 0 || g.CellHeight <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cell size must be positive, got %vx%v", g.CellWidth, g.CellHeight)
	}
	// Restore packs each cell around its center. A radius-6 hex disk (127
	// sites) spans 12 steps each way, and the start site may sit half a step
	// off center, so 13 steps must fit strictly inside the cell.
	l := g.Lattice()
	if g.CellWidth <= 13*l.H || g.CellHeight <= 13*l.V {
		return errors.New(errors.ErrCodeInvalidConfig,
			"cell %vx%v too small for %d pips of size %v", g.CellWidth, g.CellHeight, TotalPips, g.PipSize)
	}
	return nil
}

// Lattice returns the hex lattice pips snap to.
func (g Geometry) Lattice() lattice.Lattice {
	return lattice.New(g.PipSize)
}

// Cell returns the bounds of bucket b.
func (g Geometry) Cell(b Bucket) Rect {
	left := g.Origin.X + float64(b.Col)*g.CellWidth
	top := g.Origin.Y + float64(b.Row)*g.CellHeight
	return Rect{Left: left, Top: top, Right: left + g.CellWidth, Bottom: top + g.CellHeight}
}

// Bounds returns the bounds of the whole grid.
func (g Geometry) Bounds() Rect {
	return Rect{
		Left:   g.Origin.X,
		Top:    g.Origin.Y,
		Right:  g.Origin.X + Cols*g.CellWidth,
		Bottom: g.Origin.Y + Rows*g.CellHeight,
	}
}

// RowAt returns the row containing y.
func (g Geometry) RowAt(y float64) (int, bool) {
	return band(y-g.Origin.Y, g.CellHeight, Rows)
}

// ColAt returns the column containing x.
func (g Geometry) ColAt(x float64) (int, bool) {
	return band(x-g.Origin.X, g.CellWidth, Cols)
}

func band(v, size float64, n int) (int, bool) {
	if v < 0 || v > size*float64(n) {
		return 0, false
	}
	i := int(v / size)
	if i == n {
		i = n - 1
	}
	return i, true
}

// BucketAt returns the bucket whose cell contains p.
func (g Geometry) BucketAt(p lattice.Point) (Bucket, bool) {
	row, ok := g.RowAt(p.Y)
	if !ok {
		return Bucket{}, false
	}
	col, ok := g.ColAt(p.X)
	if !ok {
		return Bucket{}, false
	}
	return Bucket{Row: row, Col: col}, true
}

// Nearest returns the bucket whose cell center is closest to p.
// Ties go to the bucket that comes first in row-major order.
func (g Geometry) Nearest(p lattice.Point) Bucket {
	best, bestD := Bucket{}, math.Inf(1)
	for row := 0; row < Rows; row++ {
		for col := 0; col < Cols; col++ {
			b := Bucket{Row: row, Col: col}
			c := g.Cell(b).Center()
			if d := math.Hypot(p.X-c.X, p.Y-c.Y); d < bestD {
				best, bestD = b, d
			}
		}
	}
	return best
}

// Attribute returns the bucket p counts toward: the containing cell, or the
// nearest one when p lies outside the grid.
func (g Geometry) Attribute(p lattice.Point) Bucket {
	if b, ok := g.BucketAt(p); ok {
		return b
	}
	return g.Nearest(p)
}
