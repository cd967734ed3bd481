// Package raster maps pointer positions onto grid cells and lays out the
// cells of a grid-snapped line.
//
// Lines are not Bresenham walks. A drag is classified as vertical,
// horizontal or diagonal, and diagonals always step one cell on both
// axes at a time. Near-45° drags therefore come out asymmetric; saved
// artwork depends on that output, so it is kept as is.
package raster

import (
	"image"

	"CircuiPlanner/internal/state"
)

type Orientation int

const (
	Vertical Orientation = iota
	Horizontal
	Diagonal
)

func (o Orientation) String() string {
	switch o {
	case Vertical:
		return "vertical"
	case Horizontal:
		return "horizontal"
	default:
		return "diagonal"
	}
}

// CellOf returns the cell under canvas pixel p. Division floors, so points
// left of or above the origin land on negative cells rather than cell 0.
func CellOf(p image.Point, pixelSize int) state.Cell {
	return state.Cell{X: floorDiv(p.X, pixelSize), Y: floorDiv(p.Y, pixelSize)}
}

// Orient classifies the drag from anchor to current.
func Orient(anchor, current image.Point) Orientation {
	dx := abs(anchor.X - current.X)
	dy := abs(anchor.Y - current.Y)
	skew := abs(dx - dy)
	switch {
	case dx < dy && dx < skew:
		return Vertical
	case dy < dx && dy < skew:
		return Horizontal
	default:
		return Diagonal
	}
}

// Points returns the canvas pixels a line from anchor to current touches,
// one per cell, in drawing order.
func Points(anchor, current image.Point, pixelSize int) []image.Point {
	if pixelSize < 1 {
		return nil
	}
	switch Orient(anchor, current) {
	case Vertical:
		var pts []image.Point
		for _, y := range snapped(anchor.Y, current.Y, pixelSize) {
			pts = append(pts, image.Pt(anchor.X, y))
		}
		return pts
	case Horizontal:
		var pts []image.Point
		for _, x := range snapped(anchor.X, current.X, pixelSize) {
			pts = append(pts, image.Pt(x, anchor.Y))
		}
		return pts
	default:
		return diagonal(anchor, current, pixelSize)
	}
}

// Trace returns the cells of a line from anchor to current.
func Trace(anchor, current image.Point, pixelSize int) []state.Cell {
	pts := Points(anchor, current, pixelSize)
	cells := make([]state.Cell, 0, len(pts))
	for _, p := range pts {
		cells = append(cells, CellOf(p, pixelSize))
	}
	return cells
}

// snapped lists the multiples of step in [min(a,b)-step, max(a,b)).
func snapped(a, b, step int) []int {
	lo, hi := b-step, a
	if a < b {
		lo, hi = a-step, b
	}
	var out []int
	for v := floorDiv(lo+step-1, step) * step; v < hi; v += step {
		out = append(out, v)
	}
	return out
}

func diagonal(anchor, current image.Point, step int) []image.Point {
	rx, ry := current.X-anchor.X, current.Y-anchor.Y
	sx, sy := sign(rx), sign(ry)
	// deviation is (|rx|+|ry|)/2; compare doubled to stay in integers.
	span := abs(rx) + abs(ry)
	var pts []image.Point
	for t := 0; 2*t <= span; t += step {
		pts = append(pts, image.Pt(anchor.X+t*sx, anchor.Y+t*sy))
	}
	return pts
}

func sign(v int) int {
	if v < 0 {
		return -1
	}
	return 1
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
