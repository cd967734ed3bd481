package state

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var red = Color{R: 0xff}

func TestPaintErase(t *testing.T) {
	g := NewGrid(80, 40)

	for _, c := range []Cell{{0, 0}, {79, 39}, {12, 7}} {
		g.Paint(c, red)
		got, ok := g.ColorAt(c)
		require.True(t, ok, "cell %v", c)
		assert.Equal(t, red, got)

		g.Erase(c)
		_, ok = g.ColorAt(c)
		assert.False(t, ok, "cell %v", c)
	}
}

func TestOutOfBoundsIsNoop(t *testing.T) {
	g := NewGrid(8, 4)
	g.Paint(Cell{1, 1}, red)
	rev := g.Revision()
	_, _ = g.TakeDamage()

	for _, c := range []Cell{{-1, 0}, {0, -1}, {8, 0}, {0, 4}, {100, 100}, {-5, -5}} {
		g.Paint(c, Black)
		g.Erase(c)
		_, ok := g.ColorAt(c)
		assert.False(t, ok)
	}

	assert.Equal(t, rev, g.Revision())
	_, dirty := g.TakeDamage()
	assert.False(t, dirty)

	count := 0
	g.Each(func(c Cell, col Color) {
		count++
		assert.Equal(t, Cell{1, 1}, c)
		assert.Equal(t, red, col)
	})
	assert.Equal(t, 1, count)
}

func TestRevisionOnlyOnEffectiveChange(t *testing.T) {
	g := NewGrid(4, 4)
	assert.Zero(t, g.Revision())

	g.Paint(Cell{0, 0}, red)
	assert.EqualValues(t, 1, g.Revision())
	g.Paint(Cell{0, 0}, red)
	assert.EqualValues(t, 1, g.Revision())
	g.Erase(Cell{1, 1})
	assert.EqualValues(t, 1, g.Revision())
	g.Erase(Cell{0, 0})
	assert.EqualValues(t, 2, g.Revision())

	g.Clear()
	assert.EqualValues(t, 2, g.Revision())
}

func TestDamage(t *testing.T) {
	g := NewGrid(10, 10)
	g.Paint(Cell{2, 3}, red)
	g.Paint(Cell{5, 1}, red)

	area, dirty := g.TakeDamage()
	require.True(t, dirty)
	assert.Equal(t, image.Rect(2, 1, 6, 4), area)

	_, dirty = g.TakeDamage()
	assert.False(t, dirty)

	g.Clear()
	area, dirty = g.TakeDamage()
	require.True(t, dirty)
	assert.Equal(t, g.Bounds(), area)
}

func TestRestore(t *testing.T) {
	g := NewGrid(3, 3)
	c := Cell{1, 2}
	g.Paint(c, red)

	prev, ok := g.ColorAt(c)
	g.Paint(c, Black)
	g.Restore(c, prev, ok)
	got, ok := g.ColorAt(c)
	require.True(t, ok)
	assert.Equal(t, red, got)

	g.Restore(c, Color{}, false)
	_, ok = g.ColorAt(c)
	assert.False(t, ok)
}

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#FF0000")
	require.NoError(t, err)
	assert.Equal(t, red, c)
	assert.Equal(t, "#ff0000", c.Hex())

	c, err = ParseHex("#0a0B0c")
	require.NoError(t, err)
	assert.Equal(t, Color{R: 0x0a, G: 0x0b, B: 0x0c}, c)

	for _, bad := range []string{"", "#", "FF0000", "#FF000", "#FF00000", "#GG0000", "red", " #FF0000"} {
		_, err := ParseHex(bad)
		assert.ErrorIs(t, err, ErrBadColor, bad)
	}
}

func TestColorIsOpaque(t *testing.T) {
	n := color.NRGBAModel.Convert(Color{R: 1, G: 2, B: 3}).(color.NRGBA)
	assert.Equal(t, color.NRGBA{R: 1, G: 2, B: 3, A: 0xff}, n)

	assert.Equal(t, Color{R: 10, G: 20, B: 30}, FromColor(color.NRGBA{R: 10, G: 20, B: 30, A: 0x40}))
}

func TestZoomClamp(t *testing.T) {
	g := NewGrid(5, 5)
	g.Paint(Cell{1, 1}, red)
	v := NewView(DefaultPixelSize, MinPixelSize, MaxPixelSize)

	for i := 0; i < 20; i++ {
		v.Zoom(1)
	}
	assert.Equal(t, MaxPixelSize, v.PixelSize())
	assert.False(t, v.Zoom(1))

	for i := 0; i < 20; i++ {
		v.Zoom(-1)
	}
	assert.Equal(t, MinPixelSize, v.PixelSize())
	assert.False(t, v.Zoom(-3))
	assert.False(t, v.Zoom(0))

	got, ok := g.ColorAt(Cell{1, 1})
	assert.True(t, ok)
	assert.Equal(t, red, got)

	v = NewView(19, MinPixelSize, MaxPixelSize)
	assert.True(t, v.Zoom(1))
	assert.Equal(t, MaxPixelSize, v.PixelSize())

	assert.Equal(t, MinPixelSize, NewView(0, MinPixelSize, MaxPixelSize).PixelSize())
}

func TestPan(t *testing.T) {
	v := NewView(10, 2, 20)
	v.Pan(15, -4)
	v.Pan(5, 4)
	assert.Equal(t, image.Pt(20, 0), v.Offset)
	assert.Equal(t, image.Pt(5, 7), v.CanvasPoint(image.Pt(25, 7)))
}
