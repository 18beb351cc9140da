package world

import "math"

// SpatialIndex is a uniform grid over bodies and fixtures used to narrow
// overlap tests. A cell is one meter (PixelsPerMeter pixels) on a side.
// Entries are inserted into every cell their bounds touch plus a one-cell
// margin, so a query only needs the cells its own rect covers.
// Accessed only from the game loop goroutine — no locks.
type SpatialIndex struct {
	ppm   float64
	cells map[cellKey]*cell

	bodies   int
	fixtures int

	seenBodies   map[*Body]struct{}
	seenFixtures map[*Fixture]struct{}
}

type cellKey struct {
	cx int32
	cy int32
}

type cell struct {
	bodies   []*Body
	fixtures []*Fixture
	used     bool
}

func NewSpatialIndex(pixelsPerMeter float64) *SpatialIndex {
	if pixelsPerMeter <= 0 {
		pixelsPerMeter = 1
	}
	return &SpatialIndex{
		ppm:          pixelsPerMeter,
		cells:        make(map[cellKey]*cell),
		seenBodies:   make(map[*Body]struct{}),
		seenFixtures: make(map[*Fixture]struct{}),
	}
}

func (g *SpatialIndex) PixelsPerMeter() float64 { return g.ppm }

func (g *SpatialIndex) toCellCoord(v float64) int32 {
	return int32(math.Floor(v / g.ppm))
}

// span returns the inclusive cell range covered by r grown by margin cells.
func (g *SpatialIndex) span(r Rect, margin int32) (minX, minY, maxX, maxY int32) {
	return g.toCellCoord(r.X) - margin, g.toCellCoord(r.Y) - margin,
		g.toCellCoord(r.MaxX()) + margin, g.toCellCoord(r.MaxY()) + margin
}

func (g *SpatialIndex) cellAt(k cellKey) *cell {
	c := g.cells[k]
	if c == nil {
		c = &cell{}
		g.cells[k] = c
	}
	c.used = true
	return c
}

// AddBody indexes b under its rotated bounds.
func (g *SpatialIndex) AddBody(b *Body) {
	minX, minY, maxX, maxY := g.span(b.RotatedBounds(), 1)
	for cx := minX; cx <= maxX; cx++ {
		for cy := minY; cy <= maxY; cy++ {
			c := g.cellAt(cellKey{cx, cy})
			c.bodies = append(c.bodies, b)
		}
	}
	g.bodies++
}

// AddFixture indexes f under the bounds of its world shape.
func (g *SpatialIndex) AddFixture(f *Fixture) {
	minX, minY, maxX, maxY := g.span(f.WorldShape().Bounds(), 1)
	for cx := minX; cx <= maxX; cx++ {
		for cy := minY; cy <= maxY; cy++ {
			c := g.cellAt(cellKey{cx, cy})
			c.fixtures = append(c.fixtures, f)
		}
	}
	g.fixtures++
}

// Bodies returns every body indexed in a cell covered by r, each once, in
// cell order (x, then y) and insertion order within a cell. Callers still
// need an exact overlap test.
func (g *SpatialIndex) Bodies(r Rect) []*Body {
	clear(g.seenBodies)
	var result []*Body
	minX, minY, maxX, maxY := g.span(r, 0)
	for cx := minX; cx <= maxX; cx++ {
		for cy := minY; cy <= maxY; cy++ {
			c := g.cells[cellKey{cx, cy}]
			if c == nil {
				continue
			}
			for _, b := range c.bodies {
				if _, dup := g.seenBodies[b]; dup {
					continue
				}
				g.seenBodies[b] = struct{}{}
				result = append(result, b)
			}
		}
	}
	return result
}

// Fixtures is Bodies for fixtures.
func (g *SpatialIndex) Fixtures(r Rect) []*Fixture {
	clear(g.seenFixtures)
	var result []*Fixture
	minX, minY, maxX, maxY := g.span(r, 0)
	for cx := minX; cx <= maxX; cx++ {
		for cy := minY; cy <= maxY; cy++ {
			c := g.cells[cellKey{cx, cy}]
			if c == nil {
				continue
			}
			for _, f := range c.fixtures {
				if _, dup := g.seenFixtures[f]; dup {
					continue
				}
				g.seenFixtures[f] = struct{}{}
				result = append(result, f)
			}
		}
	}
	return result
}

// Clear empties the index. Cells that stayed empty since the previous Clear
// are dropped; the rest keep their backing arrays.
func (g *SpatialIndex) Clear() {
	for k, c := range g.cells {
		if !c.used {
			delete(g.cells, k)
			continue
		}
		clear(c.bodies)
		clear(c.fixtures)
		c.bodies = c.bodies[:0]
		c.fixtures = c.fixtures[:0]
		c.used = false
	}
	g.bodies = 0
	g.fixtures = 0
}

// Len returns how many bodies and fixtures were added since the last Clear.
func (g *SpatialIndex) Len() (bodies, fixtures int) { return g.bodies, g.fixtures }

// CellCount returns the number of allocated cells.
func (g *SpatialIndex) CellCount() int { return len(g.cells) }
