package board

import (
	"math"
	"slices"

	"github.com/matzehuels/pipgrid/pkg/codec"
	"github.com/matzehuels/pipgrid/pkg/errors"
	"github.com/matzehuels/pipgrid/pkg/lattice"
)

// HistoryLimit is the number of undo steps a board keeps.
const HistoryLimit = 50

// Pip is one unit on the board. Pos is the pip's center.
type Pip struct {
	ID  int           `json:"id"`
	Pos lattice.Point `json:"pos"`
}

// Board is the in-memory state of a pip board.
type Board struct {
	geom     Geometry
	lat      lattice.Lattice
	pips     []Pip
	selected map[int]bool
	history  [][]lattice.Point
}

// New returns a board seeded with SeedGrid.
func New(geom Geometry) (*Board, error) {
	return Restore(geom, SeedGrid())
}

// FromToken returns a board laid out from a share token.
func FromToken(geom Geometry, token string) (*Board, error) {
	g, err := ParseToken(token)
	if err != nil {
		return nil, err
	}
	return Restore(geom, g)
}

// Restore lays out grid on a fresh board. Each cell's pips are packed
// around the cell center; cells are filled in codec order so the layout is
// deterministic.
func Restore(geom Geometry, grid Grid) (*Board, error) {
	if err := geom.Validate(); err != nil {
		return nil, err
	}
	if err := codec.Default.Validate(grid.Counts()); err != nil {
		return nil, err
	}

	b := &Board{
		geom:     geom,
		lat:      geom.Lattice(),
		pips:     make([]Pip, 0, TotalPips),
		selected: make(map[int]bool),
	}

	occupied := lattice.NewOccupancy()
	for _, bucket := range Order {
		n := grid[bucket.Row][bucket.Col]
		if n == 0 {
			continue
		}
		cells := b.lat.PackAround(geom.Cell(bucket).Center(), n, occupied)
		if len(cells) < n {
			return nil, errors.New(errors.ErrCodeInternal, "placed %d of %d pips in %s", len(cells), n, bucket)
		}
		for _, c := range cells {
			occupied.Add(c)
			pos := b.lat.Point(c)
			if got, ok := geom.BucketAt(pos); !ok || got != bucket {
				return nil, errors.New(errors.ErrCodeInvalidConfig, "cell %s cannot hold %d pips", bucket, n)
			}
			b.pips = append(b.pips, Pip{ID: len(b.pips), Pos: pos})
		}
	}
	return b, nil
}

// Geometry returns the board's geometry.
func (b *Board) Geometry() Geometry { return b.geom }

// Lattice returns the lattice pips snap to.
func (b *Board) Lattice() lattice.Lattice { return b.lat }

// Pips returns a copy of all pips ordered by ID.
func (b *Board) Pips() []Pip { return slices.Clone(b.pips) }

// Pip returns the pip with the given ID.
func (b *Board) Pip(id int) (Pip, bool) {
	if id < 0 || id >= len(b.pips) {
		return Pip{}, false
	}
	return b.pips[id], true
}

// Tally counts pips per cell.
type Tally struct {
	Grid     Grid `json:"grid"`     // pips inside each cell
	Selected Grid `json:"selected"` // selected pips inside each cell
	Outside  int  `json:"outside"`  // pips outside every cell
}

// Tally counts the pips inside each cell. Pips outside the grid are only
// counted in Outside.
func (b *Board) Tally() Tally {
	var t Tally
	for _, p := range b.pips {
		bucket, ok := b.geom.BucketAt(p.Pos)
		if !ok {
			t.Outside++
			continue
		}
		t.Grid[bucket.Row][bucket.Col]++
		if b.selected[p.ID] {
			t.Selected[bucket.Row][bucket.Col]++
		}
	}
	return t
}

// Distribution attributes every pip to a cell, sending pips outside the
// grid to the nearest cell. The result always sums to TotalPips.
func (b *Board) Distribution() Grid {
	var g Grid
	for _, p := range b.pips {
		bucket := b.geom.Attribute(p.Pos)
		g[bucket.Row][bucket.Col]++
	}
	return g
}

// Token encodes the board's distribution.
func (b *Board) Token() (string, error) {
	return b.Distribution().Token()
}

// =============================================================================
// Selection
// =============================================================================

// Select adds a pip to the selection. It reports false for unknown IDs.
func (b *Board) Select(id int) bool {
	if _, ok := b.Pip(id); !ok {
		return false
	}
	b.selected[id] = true
	return true
}

// Deselect removes a pip from the selection.
func (b *Board) Deselect(id int) { delete(b.selected, id) }

// Toggle flips a pip's selection and reports whether it is now selected.
func (b *Board) Toggle(id int) bool {
	if b.selected[id] {
		b.Deselect(id)
		return false
	}
	return b.Select(id)
}

// IsSelected reports whether a pip is selected.
func (b *Board) IsSelected(id int) bool { return b.selected[id] }

// ClearSelection deselects every pip.
func (b *Board) ClearSelection() { clear(b.selected) }

// Selection returns the selected pip IDs in ascending order.
func (b *Board) Selection() []int {
	ids := make([]int, 0, len(b.selected))
	for id := range b.selected {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// SelectBox selects every pip whose center lies in r and returns how many
// were newly selected. Unless add is set the previous selection is cleared
// first.
func (b *Board) SelectBox(r Rect, add bool) int {
	if !add {
		b.ClearSelection()
	}
	n := 0
	for _, p := range b.pips {
		if r.Contains(p.Pos) && !b.selected[p.ID] {
			b.selected[p.ID] = true
			n++
		}
	}
	return n
}

// SelectInBucket selects up to n unselected pips inside bucket, lowest IDs
// first, and returns how many were selected.
func (b *Board) SelectInBucket(bucket Bucket, n int) int {
	got := 0
	for _, p := range b.pips {
		if got >= n {
			break
		}
		if b.selected[p.ID] {
			continue
		}
		if at, ok := b.geom.BucketAt(p.Pos); !ok || at != bucket {
			continue
		}
		b.selected[p.ID] = true
		got++
	}
	return got
}

// =============================================================================
// Moves
// =============================================================================

// Move translates the selection by (dx, dy). If any moved pip would land
// within one pip size of an unselected pip the move is reverted, no undo
// step is recorded, and Move reports false.
func (b *Board) Move(dx, dy float64) bool {
	ids := b.Selection()
	if len(ids) == 0 {
		return false
	}

	b.pushHistory()
	for _, id := range ids {
		b.pips[id].Pos.X += dx
		b.pips[id].Pos.Y += dy
	}
	if b.collides(ids) {
		b.restore(b.history[len(b.history)-1])
		b.history = b.history[:len(b.history)-1]
		return false
	}
	return true
}

func (b *Board) collides(ids []int) bool {
	for _, id := range ids {
		p := b.pips[id].Pos
		for _, other := range b.pips {
			if b.selected[other.ID] {
				continue
			}
			if math.Hypot(p.X-other.Pos.X, p.Y-other.Pos.Y) < b.geom.PipSize {
				return true
			}
		}
	}
	return false
}

// Pack moves the selection onto the free lattice sites nearest its
// centroid and returns how many pips were placed. Pips that find no site
// within the search cap stay where they were. A pack that places nothing
// records no undo step.
func (b *Board) Pack() int {
	ids := b.Selection()
	if len(ids) == 0 {
		return 0
	}
	var cx, cy float64
	for _, id := range ids {
		cx += b.pips[id].Pos.X
		cy += b.pips[id].Pos.Y
	}
	n := float64(len(ids))

	b.pushHistory()
	placed := b.packAt(ids, lattice.Point{X: cx / n, Y: cy / n})
	if placed == 0 {
		b.history = b.history[:len(b.history)-1]
	}
	return placed
}

// packAt places ids on free sites around center, treating every unselected
// pip's site as occupied.
func (b *Board) packAt(ids []int, center lattice.Point) int {
	occupied := lattice.NewOccupancy()
	for _, p := range b.pips {
		if !b.selected[p.ID] {
			occupied.Add(b.lat.Cell(p.Pos))
		}
	}
	cells := b.lat.PackAround(center, len(ids), occupied)
	for i, c := range cells {
		b.pips[ids[i]].Pos = b.lat.Point(c)
	}
	return len(cells)
}

// Transfer moves up to n pips from one cell to another and returns how many
// ended up inside the target cell. The selection is cleared afterwards.
func (b *Board) Transfer(from, to Bucket, n int) (int, error) {
	if !from.Valid() || !to.Valid() {
		return 0, errors.New(errors.ErrCodeInvalidInput, "transfer %s -> %s: bucket off the grid", from, to)
	}
	if n <= 0 || from == to {
		return 0, nil
	}

	b.ClearSelection()
	defer b.ClearSelection()
	if b.SelectInBucket(from, n) == 0 {
		return 0, nil
	}

	ids := b.Selection()
	b.pushHistory()
	b.packAt(ids, b.geom.Cell(to).Center())

	moved := 0
	for _, id := range ids {
		if at, ok := b.geom.BucketAt(b.pips[id].Pos); ok && at == to {
			moved++
		}
	}
	return moved, nil
}

// =============================================================================
// History
// =============================================================================

func (b *Board) snapshot() []lattice.Point {
	s := make([]lattice.Point, len(b.pips))
	for i, p := range b.pips {
		s[i] = p.Pos
	}
	return s
}

func (b *Board) restore(s []lattice.Point) {
	for i := range b.pips {
		b.pips[i].Pos = s[i]
	}
}

func (b *Board) pushHistory() {
	b.history = append(b.history, b.snapshot())
	if len(b.history) > HistoryLimit {
		b.history = slices.Delete(b.history, 0, len(b.history)-HistoryLimit)
	}
}

// CanUndo reports whether an undo step is available.
func (b *Board) CanUndo() bool { return len(b.history) > 0 }

// Undo restores the positions from before the last move, pack or transfer.
func (b *Board) Undo() bool {
	if len(b.history) == 0 {
		return false
	}
	last := b.history[len(b.history)-1]
	b.history = b.history[:len(b.history)-1]
	b.restore(last)
	return true
}
