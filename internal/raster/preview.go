package raster

import (
	"image"

	"CircuiPlanner/internal/state"
)

type snapshot struct {
	cell  state.Cell
	prior state.Color
	had   bool
}

// LineOp is an in-progress line: the anchor from the first click and the
// cells its current preview overwrote. The grid always shows committed
// state plus at most this one preview.
type LineOp struct {
	anchor image.Point
	trace  []snapshot
}

// Begin anchors a new line at canvas pixel p.
func Begin(p image.Point) *LineOp {
	return &LineOp{anchor: p}
}

func (op *LineOp) Anchor() image.Point { return op.anchor }

// Previewed lists the cells the current preview has painted.
func (op *LineOp) Previewed() []state.Cell {
	cells := make([]state.Cell, len(op.trace))
	for i, s := range op.trace {
		cells[i] = s.cell
	}
	return cells
}

// Preview replaces the current preview with the line to current. A point
// outside the canvas leaves the previous preview in place and returns false.
func (op *LineOp) Preview(g *state.Grid, current image.Point, pixelSize int, col state.Color) bool {
	if !onCanvas(g, current, pixelSize) {
		return false
	}
	op.undo(g)
	for _, c := range Trace(op.anchor, current, pixelSize) {
		prior, had := g.ColorAt(c)
		op.trace = append(op.trace, snapshot{cell: c, prior: prior, had: had})
		g.Paint(c, col)
	}
	return true
}

// Commit drops the preview and paints the line to current for good.
// Returns false, leaving the op untouched, when current is off the canvas.
func (op *LineOp) Commit(g *state.Grid, current image.Point, pixelSize int, col state.Color) bool {
	if !onCanvas(g, current, pixelSize) {
		return false
	}
	op.undo(g)
	for _, c := range Trace(op.anchor, current, pixelSize) {
		g.Paint(c, col)
	}
	return true
}

// Cancel restores every cell the preview touched.
func (op *LineOp) Cancel(g *state.Grid) {
	op.undo(g)
}

// undo walks the trace backwards so a cell listed twice ends on its
// original colour.
func (op *LineOp) undo(g *state.Grid) {
	for i := len(op.trace) - 1; i >= 0; i-- {
		s := op.trace[i]
		g.Restore(s.cell, s.prior, s.had)
	}
	op.trace = op.trace[:0]
}

func onCanvas(g *state.Grid, p image.Point, pixelSize int) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < g.Cols()*pixelSize && p.Y < g.Rows()*pixelSize
}
