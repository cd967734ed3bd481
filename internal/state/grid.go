package state

import "image"

// Cell addresses one grid unit.
type Cell struct {
	X, Y int
}

func (c Cell) Point() image.Point { return image.Pt(c.X, c.Y) }

// Grid is a fixed cols×rows array of optional colours. It is not safe for
// concurrent use; the editor mutates it only from the event goroutine.
type Grid struct {
	cols, rows int
	colors     []Color
	painted    []bool

	rev    Revision
	damage Damage
}

func NewGrid(cols, rows int) *Grid {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	return &Grid{
		cols:    cols,
		rows:    rows,
		colors:  make([]Color, cols*rows),
		painted: make([]bool, cols*rows),
	}
}

func (g *Grid) Cols() int { return g.cols }
func (g *Grid) Rows() int { return g.rows }

// Bounds is the grid rectangle in cell coordinates.
func (g *Grid) Bounds() image.Rectangle {
	return image.Rect(0, 0, g.cols, g.rows)
}

func (g *Grid) InBounds(c Cell) bool {
	return c.X >= 0 && c.X < g.cols && c.Y >= 0 && c.Y < g.rows
}

func (g *Grid) index(c Cell) int {
	return c.Y*g.cols + c.X
}

// Paint sets c to col. Out-of-bounds cells are ignored.
func (g *Grid) Paint(c Cell, col Color) {
	if !g.InBounds(c) {
		return
	}
	i := g.index(c)
	if g.painted[i] && g.colors[i] == col {
		return
	}
	g.colors[i] = col
	g.painted[i] = true
	g.touch(c)
}

// Erase clears c. Out-of-bounds cells are ignored.
func (g *Grid) Erase(c Cell) {
	if !g.InBounds(c) {
		return
	}
	i := g.index(c)
	if !g.painted[i] {
		return
	}
	g.colors[i] = Color{}
	g.painted[i] = false
	g.touch(c)
}

// Restore writes back a colour previously read with ColorAt.
func (g *Grid) Restore(c Cell, col Color, ok bool) {
	if ok {
		g.Paint(c, col)
	} else {
		g.Erase(c)
	}
}

// ColorAt reports the colour of c; ok is false for unpainted or
// out-of-bounds cells.
func (g *Grid) ColorAt(c Cell) (col Color, ok bool) {
	if !g.InBounds(c) {
		return Color{}, false
	}
	i := g.index(c)
	return g.colors[i], g.painted[i]
}

// Clear erases every cell.
func (g *Grid) Clear() {
	changed := false
	for i := range g.painted {
		if g.painted[i] {
			g.painted[i] = false
			g.colors[i] = Color{}
			changed = true
		}
	}
	if changed {
		g.rev.next()
		g.damage.AddRect(g.Bounds())
	}
}

// Each calls fn for every painted cell in row-major order.
func (g *Grid) Each(fn func(c Cell, col Color)) {
	for i, ok := range g.painted {
		if ok {
			fn(Cell{X: i % g.cols, Y: i / g.cols}, g.colors[i])
		}
	}
}

func (g *Grid) Revision() uint64 {
	return g.rev.Load()
}

// TakeDamage returns and resets the cells changed since the previous call.
func (g *Grid) TakeDamage() (image.Rectangle, bool) {
	return g.damage.Take()
}

func (g *Grid) touch(c Cell) {
	g.rev.next()
	g.damage.Add(c)
}
