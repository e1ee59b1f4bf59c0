package lattice

import "math"

const (
	// DefaultMaxVisits bounds the breadth-first searches.
	DefaultMaxVisits = 3000

	// VerticalRatio is V/H. It packs rows tighter than a regular hexagon
	// would.
	VerticalRatio = 0.8
)

// Cell addresses one lattice site.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Point is a position in continuous coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Lattice describes an offset hex lattice.
type Lattice struct {
	H         float64 // horizontal spacing
	V         float64 // vertical spacing
	MaxVisits int     // BFS cap; <= 0 means DefaultMaxVisits
}

// New returns a lattice with horizontal spacing h, V = 0.8·h, and the
// default search cap.
func New(h float64) Lattice {
	return Lattice{H: h, V: h * VerticalRatio, MaxVisits: DefaultMaxVisits}
}

// odd reports whether row is shifted. row&1 is correct for negative rows.
func odd(row int) bool { return row&1 == 1 }

func (l Lattice) offset(row int) float64 {
	if odd(row) {
		return l.H / 2
	}
	return 0
}

// Cell returns the lattice cell nearest to p.
func (l Lattice) Cell(p Point) Cell {
	row := int(math.Round(p.Y / l.V))
	col := int(math.Round((p.X - l.offset(row)) / l.H))
	return Cell{Row: row, Col: col}
}

// Point returns the coordinates of c.
func (l Lattice) Point(c Cell) Point {
	return Point{
		X: float64(c.Col)*l.H + l.offset(c.Row),
		Y: float64(c.Row) * l.V,
	}
}

// Snap moves p onto the nearest lattice site.
func (l Lattice) Snap(p Point) Point {
	return l.Point(l.Cell(p))
}

func (l Lattice) maxVisits() int {
	if l.MaxVisits <= 0 {
		return DefaultMaxVisits
	}
	return l.MaxVisits
}

var (
	evenNeighbors = [6]Cell{
		{-1, -1}, {-1, 0},
		{0, -1}, {0, 1},
		{1, -1}, {1, 0},
	}
	oddNeighbors = [6]Cell{
		{-1, 0}, {-1, 1},
		{0, -1}, {0, 1},
		{1, 0}, {1, 1},
	}
)

// Neighbors returns the six cells adjacent to c.
func Neighbors(c Cell) [6]Cell {
	dirs := &evenNeighbors
	if odd(c.Row) {
		dirs = &oddNeighbors
	}
	var out [6]Cell
	for i, d := range dirs {
		out[i] = Cell{Row: c.Row + d.Row, Col: c.Col + d.Col}
	}
	return out
}
