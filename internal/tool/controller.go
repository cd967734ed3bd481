package tool

import (
	"image"

	"github.com/sirupsen/logrus"

	"CircuiPlanner/internal/log"
	"CircuiPlanner/internal/raster"
	"CircuiPlanner/internal/state"
)

// State is the controller's externally visible mode.
type State int

const (
	Idle State = iota
	Painting
	Erasing
	LineIdle
	LineAnchored
	MoveIdle
	MoveDragging
)

func (s State) String() string {
	return [...]string{"Idle", "Point", "Erase", "Line-idle", "Line-anchored", "Move-idle", "Move-dragging"}[s]
}

// Controller turns pointer events into grid and view changes for the active
// tool. Points are in widget space; drawing tools shift them by the view
// offset before mapping to cells. Not safe for concurrent use.
type Controller struct {
	grid  *state.Grid
	view  *state.View
	color state.Color

	tool Tool
	mode handler
	pan  panner // middle button, independent of the tool

	log *logrus.Entry
}

func NewController(g *state.Grid, v *state.View) *Controller {
	c := &Controller{
		grid:  g,
		view:  v,
		color: state.Black,
		log:   log.With("tool"),
	}
	c.SetTool(Point)
	return c
}

func (c *Controller) Grid() *state.Grid { return c.grid }
func (c *Controller) View() *state.View { return c.view }
func (c *Controller) Tool() Tool { return c.tool }
func (c *Controller) Color() state.Color { return c.color }
func (c *Controller) State() State { return c.mode.status() }
func (c *Controller) SetColor(col state.Color) { c.color = col }

// SetColorHex sets the colour from "#RRGGBB". On error the colour is kept.
func (c *Controller) SetColorHex(s string) error {
	col, err := state.ParseHex(s)
	if err != nil {
		return err
	}
	c.color = col
	return nil
}

// SetTool drops any in-progress line preview or drag and activates t.
func (c *Controller) SetTool(t Tool) {
	c.Cancel()
	c.tool = t
	switch t {
	case Point:
		c.mode = &brush{}
	case Erase:
		c.mode = &brush{erase: true}
	case Line:
		c.mode = &liner{}
	case Move:
		c.mode = &mover{}
	default:
		c.mode = idle{}
	}
	c.log.Debugf("[TOOL] selected %s", t)
}

// Cancel discards transient state, as on focus loss. Nothing half-drawn
// is left on the grid.
func (c *Controller) Cancel() {
	if c.mode != nil {
		c.mode.cancel(c)
	}
	c.pan.end()
}

func (c *Controller) Press(b Button, p image.Point) {
	switch b {
	case Primary:
		c.mode.press(c, p)
	case Middle:
		c.pan.begin(p)
	}
}

func (c *Controller) Drag(b Button, p image.Point) {
	switch b {
	case Primary:
		c.mode.drag(c, p)
	case Middle:
		c.pan.step(c.view, p)
	}
}

// Hover handles pointer motion with no button held.
func (c *Controller) Hover(p image.Point) {
	c.mode.hover(c, p)
}

func (c *Controller) Release(b Button, p image.Point) {
	switch b {
	case Primary:
		c.mode.release(c, p)
	case Secondary:
		// Only ends a move drag; secondary never draws.
		if m, ok := c.mode.(*mover); ok {
			m.end()
		}
	case Middle:
		c.pan.end()
	}
}

// Scroll zooms in for positive delta and out for negative. A line being
// previewed is dropped: its anchor is in pixels of the old scale.
func (c *Controller) Scroll(delta float64) bool {
	if l, ok := c.mode.(*liner); ok {
		l.cancel(c)
	}
	changed := c.view.Zoom(delta)
	if changed {
		c.log.Debugf("[ZOOM] pixel size %d", c.view.PixelSize())
	}
	return changed
}

func (c *Controller) canvasPoint(p image.Point) image.Point {
	return c.view.CanvasPoint(p)
}

func (c *Controller) cellAt(p image.Point) state.Cell {
	return raster.CellOf(c.canvasPoint(p), c.view.PixelSize())
}

type handler interface {
	status() State
	press(c *Controller, p image.Point)
	drag(c *Controller, p image.Point)
	hover(c *Controller, p image.Point)
	release(c *Controller, p image.Point)
	cancel(c *Controller)
}

// idle backs the placeholder tools.
type idle struct{}

func (idle) status() State { return Idle }
func (idle) press(*Controller, image.Point) {}
func (idle) drag(*Controller, image.Point) {}
func (idle) hover(*Controller, image.Point) {}
func (idle) release(*Controller, image.Point) {}
func (idle) cancel(*Controller) {}

type brush struct {
	erase bool
}

func (b *brush) status() State {
	if b.erase {
		return Erasing
	}
	return Painting
}

func (b *brush) press(c *Controller, p image.Point) {
	cell := c.cellAt(p)
	if b.erase {
		c.grid.Erase(cell)
	} else {
		c.grid.Paint(cell, c.color)
	}
}

func (b *brush) drag(c *Controller, p image.Point) { b.press(c, p) }
func (b *brush) hover(*Controller, image.Point) {}
func (b *brush) release(*Controller, image.Point) {}
func (b *brush) cancel(*Controller) {}

// liner holds the line being drawn; op is nil until the first click.
type liner struct {
	op *raster.LineOp
}

func (l *liner) status() State {
	if l.op != nil {
		return LineAnchored
	}
	return LineIdle
}

func (l *liner) press(c *Controller, p image.Point) {
	cp := c.canvasPoint(p)
	ps := c.view.PixelSize()
	if l.op == nil {
		if !c.grid.InBounds(raster.CellOf(cp, ps)) {
			return
		}
		l.op = raster.Begin(cp)
		l.op.Preview(c.grid, cp, ps, c.color)
		return
	}
	if l.op.Commit(c.grid, cp, ps, c.color) {
		c.log.Debugf("[LINE] committed %s line from %v to %v", raster.Orient(l.op.Anchor(), cp), l.op.Anchor(), cp)
		l.op = nil
	}
}

func (l *liner) drag(c *Controller, p image.Point) { l.hover(c, p) }

func (l *liner) hover(c *Controller, p image.Point) {
	if l.op == nil {
		return
	}
	l.op.Preview(c.grid, c.canvasPoint(p), c.view.PixelSize(), c.color)
}

func (l *liner) release(*Controller, image.Point) {}

func (l *liner) cancel(c *Controller) {
	if l.op == nil {
		return
	}
	l.op.Cancel(c.grid)
	l.op = nil
}

type mover struct {
	panner
}

func (m *mover) status() State {
	if m.prev != nil {
		return MoveDragging
	}
	return MoveIdle
}

func (m *mover) press(_ *Controller, p image.Point) { m.begin(p) }
func (m *mover) drag(c *Controller, p image.Point) { m.step(c.view, p) }
func (m *mover) hover(*Controller, image.Point) {}
func (m *mover) release(*Controller, image.Point) { m.end() }
func (m *mover) cancel(*Controller) { m.end() }

// panner turns successive drag positions into view offset deltas.
type panner struct {
	prev *image.Point
}

func (p *panner) begin(at image.Point) {
	p.prev = &at
}

func (p *panner) step(v *state.View, at image.Point) {
	if p.prev != nil {
		d := at.Sub(*p.prev)
		v.Pan(d.X, d.Y)
	}
	p.prev = &at
}

func (p *panner) end() {
	p.prev = nil
}
