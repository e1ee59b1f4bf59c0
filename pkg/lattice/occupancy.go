package lattice

// Occupancy is a set of filled cells.
type Occupancy map[Cell]struct{}

// NewOccupancy returns a set holding cells.
func NewOccupancy(cells ...Cell) Occupancy {
	o := make(Occupancy, len(cells))
	for _, c := range cells {
		o[c] = struct{}{}
	}
	return o
}

// Has reports whether c is filled. A nil Occupancy is empty.
func (o Occupancy) Has(c Cell) bool {
	_, ok := o[c]
	return ok
}

// Add marks c as filled.
func (o Occupancy) Add(c Cell) { o[c] = struct{}{} }

// Remove clears c.
func (o Occupancy) Remove(c Cell) { delete(o, c) }

// Len returns the number of filled cells.
func (o Occupancy) Len() int { return len(o) }

// Clone returns an independent copy.
func (o Occupancy) Clone() Occupancy {
	out := make(Occupancy, len(o))
	for c := range o {
		out[c] = struct{}{}
	}
	return out
}
