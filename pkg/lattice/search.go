package lattice

// bfs walks cells outward from start in breadth-first order, calling visit
// for each one until visit returns false or the cap is reached.
func (l Lattice) bfs(start Cell, visit func(Cell) bool) {
	limit := l.maxVisits()
	queue := []Cell{start}
	seen := map[Cell]struct{}{start: {}}

	for head := 0; head < len(queue) && head < limit; head++ {
		cur := queue[head]
		if !visit(cur) {
			return
		}
		for _, n := range Neighbors(cur) {
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			queue = append(queue, n)
		}
	}
}

// FindFree returns the free cell nearest to target in BFS order.
//
// If no free cell is found within MaxVisits, FindFree returns the start
// cell and false. That cell may be occupied.
func (l Lattice) FindFree(target Point, occupied Occupancy) (Cell, bool) {
	start := l.Cell(target)
	found, ok := start, false
	l.bfs(start, func(c Cell) bool {
		if occupied.Has(c) {
			return true
		}
		found, ok = c, true
		return false
	})
	return found, ok
}

// PackAround collects up to count free cells around center in BFS order.
//
// Picks are reserved in a working copy of occupied so no cell is returned
// twice; occupied itself is left untouched. A result shorter than count
// means the search cap was reached first.
func (l Lattice) PackAround(center Point, count int, occupied Occupancy) []Cell {
	if count <= 0 {
		return nil
	}
	working := occupied.Clone()
	cells := make([]Cell, 0, count)
	l.bfs(l.Cell(center), func(c Cell) bool {
		if !working.Has(c) {
			working.Add(c)
			cells = append(cells, c)
		}
		return len(cells) < count
	})
	return cells
}
