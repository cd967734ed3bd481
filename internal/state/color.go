package state

import (
	"encoding/hex"
	"errors"
	"fmt"
	"image/color"
)

var ErrBadColor = errors.New("color must be #RRGGBB")

// Color is an RGB triple. Painted cells are always fully opaque.
type Color struct {
	R, G, B uint8
}

var Black = Color{}

// RGBA implements color.Color with alpha fixed at 0xff.
func (c Color) RGBA() (r, g, b, a uint32) {
	return c.NRGBA().RGBA()
}

func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c Color) String() string {
	return c.Hex()
}

// ParseHex accepts exactly "#" followed by six hex digits.
func ParseHex(s string) (Color, error) {
	if len(s) != 7 || s[0] != '#' {
		return Color{}, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	b, err := hex.DecodeString(s[1:])
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	return Color{R: b[0], G: b[1], B: b[2]}, nil
}

// FromColor drops alpha from any color.Color, e.g. a colour picker result.
func FromColor(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{R: n.R, G: n.G, B: n.B}
}
