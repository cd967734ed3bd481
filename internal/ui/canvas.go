package ui

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"golang.org/x/image/draw"

	"CircuiPlanner/internal/export"
	"CircuiPlanner/internal/log"
	"CircuiPlanner/internal/net"
	"CircuiPlanner/internal/state"
	"CircuiPlanner/internal/tool"
)

var (
	checkerDark  = color.NRGBA{R: 211, G: 211, B: 211, A: 255}
	checkerLight = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	surround     = color.NRGBA{R: 90, G: 90, B: 96, A: 255}
)

// Canvas is the drawing surface. It forwards pointer events to the
// controller and renders the grid, one backing pixel per cell, scaled by
// the view.
type Canvas struct {
	widget.BaseWidget

	mu      sync.Mutex
	ctrl    *tool.Controller
	hub     *net.Hub
	raster  *canvas.Raster
	backing *image.NRGBA

	held    tool.Button
	holding bool
	last    image.Point

	published    uint64
	publishedPS  int
	hasPublished bool

	// OnChange runs on the event goroutine after every handled event.
	OnChange func()
}

var _ fyne.Widget = (*Canvas)(nil)
var _ fyne.Draggable = (*Canvas)(nil)
var _ fyne.Scrollable = (*Canvas)(nil)
var _ desktop.Mouseable = (*Canvas)(nil)
var _ desktop.Hoverable = (*Canvas)(nil)

// NewCanvas wraps ctrl. hub may be nil when nothing is being shared.
func NewCanvas(ctrl *tool.Controller, hub *net.Hub) *Canvas {
	c := &Canvas{ctrl: ctrl, hub: hub}
	g := ctrl.Grid()
	c.backing = image.NewNRGBA(g.Bounds())
	g.TakeDamage()
	c.paintBacking(g.Bounds())
	c.raster = canvas.NewRaster(c.render)
	c.raster.ScaleMode = canvas.ImageScalePixels
	c.ExtendBaseWidget(c)
	c.publish()
	return c
}

func (c *Canvas) Controller() *tool.Controller { return c.ctrl }

func (c *Canvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(c.raster)
}

func (c *Canvas) MinSize() fyne.Size {
	return fyne.NewSize(300, 300)
}

// update runs fn against the controller and then brings the backing image,
// the shared snapshot and the screen up to date.
func (c *Canvas) update(fn func()) {
	c.mu.Lock()
	fn()
	if r, ok := c.ctrl.Grid().TakeDamage(); ok {
		c.paintBacking(r)
	}
	c.publish()
	c.mu.Unlock()

	c.raster.Refresh()
	if c.OnChange != nil {
		c.OnChange()
	}
}

func (c *Canvas) paintBacking(r image.Rectangle) {
	g := c.ctrl.Grid()
	r = r.Intersect(g.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			cell := state.Cell{X: x, Y: y}
			if col, ok := g.ColorAt(cell); ok {
				c.backing.SetNRGBA(x, y, col.NRGBA())
			} else {
				c.backing.SetNRGBA(x, y, checker(cell))
			}
		}
	}
}

func checker(c state.Cell) color.NRGBA {
	if (c.X+c.Y)%2 == 0 {
		return checkerDark
	}
	return checkerLight
}

func (c *Canvas) publish() {
	if c.hub == nil {
		return
	}
	g, ps := c.ctrl.Grid(), c.ctrl.View().PixelSize()
	rev := g.Revision()
	if c.hasPublished && rev == c.published && ps == c.publishedPS {
		return
	}
	c.hub.Publish(net.Snapshot{Image: export.Raster(g), Revision: rev, PixelSize: ps})
	c.published, c.publishedPS, c.hasPublished = rev, ps, true
}

// render draws the backing image at the view's offset and pixel size into
// a w×h image. w and h are device pixels, so the view is scaled by the
// ratio to the widget's size.
func (c *Canvas) render(w, h int) image.Image {
	c.mu.Lock()
	defer c.mu.Unlock()

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(surround), image.Point{}, draw.Src)

	scale := float64(1)
	if size := c.Size(); size.Width > 0 {
		scale = float64(w) / float64(size.Width)
	}
	v := c.ctrl.View()
	ps := float64(v.PixelSize()) * scale
	b := c.backing.Bounds()
	min := image.Pt(int(math.Round(float64(v.Offset.X)*scale)), int(math.Round(float64(v.Offset.Y)*scale)))
	target := image.Rectangle{
		Min: min,
		Max: min.Add(image.Pt(int(math.Round(float64(b.Dx())*ps)), int(math.Round(float64(b.Dy())*ps)))),
	}
	draw.NearestNeighbor.Scale(dst, target, c.backing, b, draw.Src, nil)
	return dst
}

func point(pos fyne.Position) image.Point {
	return image.Pt(int(math.Floor(float64(pos.X))), int(math.Floor(float64(pos.Y))))
}

func button(b desktop.MouseButton) (tool.Button, bool) {
	switch b {
	case desktop.MouseButtonPrimary:
		return tool.Primary, true
	case desktop.MouseButtonSecondary:
		return tool.Secondary, true
	case desktop.MouseButtonTertiary:
		return tool.Middle, true
	}
	return 0, false
}

func (c *Canvas) MouseDown(e *desktop.MouseEvent) {
	b, ok := button(e.Button)
	if !ok {
		return
	}
	p := point(e.Position)
	c.update(func() {
		c.held, c.holding, c.last = b, true, p
		c.ctrl.Press(b, p)
	})
}

func (c *Canvas) MouseUp(e *desktop.MouseEvent) {
	b, ok := button(e.Button)
	if !ok {
		return
	}
	p := point(e.Position)
	c.update(func() {
		c.ctrl.Release(b, p)
		if c.holding && c.held == b {
			c.holding = false
		}
	})
}

// Dragged only reports the primary button on some drivers, so the button
// recorded at MouseDown wins.
func (c *Canvas) Dragged(e *fyne.DragEvent) {
	p := point(e.Position)
	c.update(func() {
		b := tool.Primary
		if c.holding {
			b = c.held
		}
		c.last = p
		c.ctrl.Drag(b, p)
	})
}

func (c *Canvas) DragEnd() {
	c.update(func() {
		if c.holding {
			c.ctrl.Release(c.held, c.last)
			c.holding = false
		}
	})
}

func (c *Canvas) MouseMoved(e *desktop.MouseEvent) {
	p := point(e.Position)
	c.update(func() {
		c.last = p
		if c.holding {
			c.ctrl.Drag(c.held, p)
			return
		}
		c.ctrl.Hover(p)
	})
}

func (c *Canvas) MouseIn(*desktop.MouseEvent) {}
func (c *Canvas) MouseOut() {}

func (c *Canvas) Scrolled(e *fyne.ScrollEvent) {
	c.update(func() {
		c.ctrl.Scroll(float64(e.Scrolled.DY))
	})
}

// Cancel drops any in-progress gesture, e.g. when the window loses focus.
func (c *Canvas) Cancel() {
	c.update(func() {
		c.ctrl.Cancel()
		c.holding = false
	})
}

func (c *Canvas) SetTool(t tool.Tool) {
	c.update(func() {
		c.ctrl.SetTool(t)
		c.holding = false
	})
}

func (c *Canvas) SetColor(col state.Color) {
	c.update(func() { c.ctrl.SetColor(col) })
}

func (c *Canvas) SetColorHex(s string) error {
	var err error
	c.update(func() { err = c.ctrl.SetColorHex(s) })
	return err
}

// Save writes the drawing to path at the current pixel size.
func (c *Canvas) Save(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := export.SaveFile(path, c.ctrl.Grid(), c.ctrl.View().PixelSize()); err != nil {
		log.With("ui").Errorf("[EXPORT] save failed: %v", err)
		return err
	}
	return nil
}

// Status is the one-line summary shown under the canvas.
func (c *Canvas) Status() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fmt.Sprintf("%s | %s | %dpx | %s",
		c.ctrl.Tool(), c.ctrl.State(), c.ctrl.View().PixelSize(), c.ctrl.Color().Hex())
}
