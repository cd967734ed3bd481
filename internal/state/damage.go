package state

import "image"

// Damage accumulates the bounding box, in cell coordinates, of every cell
// changed since the last Take. The canvas uses it to repaint only the
// affected part of its backing image.
type Damage struct {
	area  image.Rectangle
	dirty bool
}

// Add grows the damaged area to cover c.
func (d *Damage) Add(c Cell) {
	d.AddRect(image.Rect(c.X, c.Y, c.X+1, c.Y+1))
}

// AddRect merges r into the damaged area.
func (d *Damage) AddRect(r image.Rectangle) {
	if r.Empty() {
		return
	}
	if !d.dirty {
		d.area = r
		d.dirty = true
		return
	}
	d.area = d.area.Union(r)
}

// Take returns the damaged area and resets it.
func (d *Damage) Take() (image.Rectangle, bool) {
	area, dirty := d.area, d.dirty
	d.area, d.dirty = image.Rectangle{}, false
	return area, dirty
}

// Peek reports the damaged area without resetting it.
func (d *Damage) Peek() (image.Rectangle, bool) {
	return d.area, d.dirty
}
