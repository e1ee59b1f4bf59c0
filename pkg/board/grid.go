package board

import (
	"fmt"

	"github.com/matzehuels/pipgrid/pkg/codec"
	"github.com/matzehuels/pipgrid/pkg/errors"
)

const (
	Rows    = 5
	Cols    = 5
	Buckets = Rows * Cols

	// TotalPips is the number of pips on every board.
	TotalPips = codec.DefaultUnits
)

// RowLabels name the grid rows top to bottom.
var RowLabels = [Rows]string{"epochal", "millenary", "centennial", "decennial", "annual"}

// ColLabels name the grid columns left to right.
var ColLabels = [Cols]string{"positive", "neutral", "minor", "major", "catastrophic"}

// Bucket addresses one grid cell.
type Bucket struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Valid reports whether b lies on the grid.
func (b Bucket) Valid() bool {
	return b.Row >= 0 && b.Row < Rows && b.Col >= 0 && b.Col < Cols
}

func (b Bucket) String() string {
	if !b.Valid() {
		return fmt.Sprintf("bucket(%d,%d)", b.Row, b.Col)
	}
	return RowLabels[b.Row] + "/" + ColLabels[b.Col]
}

// Order maps codec bucket i to its grid cell: annual row first, then upward,
// each row left to right.
var Order = func() [Buckets]Bucket {
	var o [Buckets]Bucket
	i := 0
	for row := Rows - 1; row >= 0; row-- {
		for col := 0; col < Cols; col++ {
			o[i] = Bucket{Row: row, Col: col}
			i++
		}
	}
	return o
}()

// CodecIndex returns the codec bucket index of b.
func CodecIndex(b Bucket) int {
	return (Rows-1-b.Row)*Cols + b.Col
}

// Grid holds one count per cell, indexed [row][col].
type Grid [Rows][Cols]int

// Counts returns g in codec order.
func (g Grid) Counts() []int {
	counts := make([]int, Buckets)
	for i, b := range Order {
		counts[i] = g[b.Row][b.Col]
	}
	return counts
}

// GridFromCounts lays codec-ordered counts out on the grid.
func GridFromCounts(counts []int) (Grid, error) {
	var g Grid
	if len(counts) != Buckets {
		return g, errors.New(errors.ErrCodeInvalidCounts, "expected %d buckets, got %d", Buckets, len(counts))
	}
	for i, b := range Order {
		g[b.Row][b.Col] = counts[i]
	}
	return g, nil
}

// Total returns the sum over all cells.
func (g Grid) Total() int {
	n := 0
	for _, row := range g {
		for _, v := range row {
			n += v
		}
	}
	return n
}

// RowTotals returns the per-row sums.
func (g Grid) RowTotals() [Rows]int {
	var out [Rows]int
	for r, row := range g {
		for _, v := range row {
			out[r] += v
		}
	}
	return out
}

// ColTotals returns the per-column sums.
func (g Grid) ColTotals() [Cols]int {
	var out [Cols]int
	for _, row := range g {
		for c, v := range row {
			out[c] += v
		}
	}
	return out
}

// Token encodes g with the default codec.
func (g Grid) Token() (string, error) {
	return codec.Encode(g.Counts())
}

// ParseToken decodes a share token into a grid.
func ParseToken(token string) (Grid, error) {
	counts, err := codec.Decode(token)
	if err != nil {
		return Grid{}, err
	}
	return GridFromCounts(counts)
}

// SeedGrid is the starting distribution: five pips in every cell of the top
// four rows, none in the annual row.
func SeedGrid() Grid {
	var g Grid
	for row := 0; row < Rows-1; row++ {
		for col := 0; col < Cols; col++ {
			g[row][col] = TotalPips / ((Rows - 1) * Cols)
		}
	}
	return g
}
