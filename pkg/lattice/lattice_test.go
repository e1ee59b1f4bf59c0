package lattice

import (
	"math"
	"testing"
)

func TestNew(t *testing.T) {
	l := New(20)
	if l.H != 20 || l.V != 16 {
		t.Errorf("New(20) = H %v V %v, want H 20 V 16", l.H, l.V)
	}
	if l.MaxVisits != DefaultMaxVisits {
		t.Errorf("MaxVisits = %d, want %d", l.MaxVisits, DefaultMaxVisits)
	}
}

func TestPointCellInverse(t *testing.T) {
	for _, l := range []Lattice{New(20), New(7.3), {H: 1, V: 3}} {
		for row := -25; row <= 25; row++ {
			for col := -25; col <= 25; col++ {
				c := Cell{Row: row, Col: col}
				if got := l.Cell(l.Point(c)); got != c {
					t.Fatalf("H=%v: Cell(Point(%v)) = %v", l.H, c, got)
				}
			}
		}
	}
}

func TestPoint(t *testing.T) {
	l := New(20)
	tests := []struct {
		cell Cell
		want Point
	}{
		{Cell{0, 0}, Point{0, 0}},
		{Cell{0, 3}, Point{60, 0}},
		{Cell{1, 0}, Point{10, 16}},
		{Cell{1, 2}, Point{50, 16}},
		{Cell{-1, 0}, Point{10, -16}},
		{Cell{-2, -1}, Point{-20, -32}},
	}

	for _, tt := range tests {
		if got := l.Point(tt.cell); got != tt.want {
			t.Errorf("Point(%v) = %v, want %v", tt.cell, got, tt.want)
		}
	}
}

func TestCellQuantization(t *testing.T) {
	l := New(20)
	tests := []struct {
		name string
		p    Point
		want Cell
	}{
		{"origin", Point{0, 0}, Cell{0, 0}},
		{"near origin", Point{4, 3}, Cell{0, 0}},
		{"odd row shifted", Point{12, 17}, Cell{1, 0}},
		{"odd row next col", Point{29, 15}, Cell{1, 1}},
		{"negative odd row", Point{9, -18}, Cell{-1, 0}},
		{"far away", Point{10000, 8000}, Cell{500, 500}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := l.Cell(tt.p); got != tt.want {
				t.Errorf("Cell(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestSnap(t *testing.T) {
	l := New(20)
	p := l.Snap(Point{13, 14})
	if p != (Point{10, 16}) {
		t.Errorf("Snap = %v, want {10 16}", p)
	}
}

func TestNeighborsSymmetric(t *testing.T) {
	for row := -4; row <= 4; row++ {
		for col := -4; col <= 4; col++ {
			c := Cell{row, col}
			seen := map[Cell]bool{}
			for _, n := range Neighbors(c) {
				if n == c {
					t.Fatalf("Neighbors(%v) contains itself", c)
				}
				if seen[n] {
					t.Fatalf("Neighbors(%v) repeats %v", c, n)
				}
				seen[n] = true

				back := false
				for _, m := range Neighbors(n) {
					if m == c {
						back = true
					}
				}
				if !back {
					t.Errorf("%v is a neighbor of %v but not vice versa", n, c)
				}
			}
		}
	}
}

func TestNeighborsAreClose(t *testing.T) {
	l := New(20)
	for _, c := range []Cell{{0, 0}, {1, 0}, {-1, 3}, {-2, -2}} {
		p := l.Point(c)
		for _, n := range Neighbors(c) {
			q := l.Point(n)
			d := math.Hypot(p.X-q.X, p.Y-q.Y)
			if d > l.H+1e-9 {
				t.Errorf("neighbor %v of %v is %.2f away, want <= %v", n, c, d, l.H)
			}
		}
	}
}
