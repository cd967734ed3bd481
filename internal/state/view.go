package state

import "image"

const (
	DefaultPixelSize = 10
	MinPixelSize     = 2
	MaxPixelSize     = 20
	ZoomStep         = 2
)

// View is the per-canvas render context: zoom as pixels per cell edge and
// the pan offset of the grid origin inside the widget.
type View struct {
	pixelSize int
	min, max  int
	Offset    image.Point
}

func NewView(pixelSize, min, max int) *View {
	if min < 1 {
		min = 1
	}
	if max < min {
		max = min
	}
	v := &View{min: min, max: max}
	v.Resize(pixelSize)
	return v
}

func (v *View) PixelSize() int { return v.pixelSize }

func (v *View) Limits() (min, max int) { return v.min, v.max }

// Resize sets the pixel size clamped to the view limits and returns it.
func (v *View) Resize(n int) int {
	switch {
	case n < v.min:
		n = v.min
	case n > v.max:
		n = v.max
	}
	v.pixelSize = n
	return n
}

// Zoom steps the pixel size by ZoomStep in the direction of delta and
// reports whether it changed.
func (v *View) Zoom(delta float64) bool {
	old := v.pixelSize
	switch {
	case delta > 0 && old < v.max:
		v.Resize(old + ZoomStep)
	case delta < 0 && old > v.min:
		v.Resize(old - ZoomStep)
	}
	return v.pixelSize != old
}

func (v *View) Pan(dx, dy int) {
	v.Offset = v.Offset.Add(image.Pt(dx, dy))
}

// CanvasPoint converts a widget-space point to grid-canvas pixels.
func (v *View) CanvasPoint(p image.Point) image.Point {
	return p.Sub(v.Offset)
}

// CanvasSize is the grid's on-screen size in pixels at the current zoom.
func (v *View) CanvasSize(g *Grid) image.Point {
	return image.Pt(g.Cols()*v.pixelSize, g.Rows()*v.pixelSize)
}
