package export

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/image/draw"

	"CircuiPlanner/internal/log"
	"CircuiPlanner/internal/state"
)

// DefaultFile is where the Save action writes.
const DefaultFile = "pixel_art.png"

// Raster returns a cols×rows image of g: painted cells opaque, the rest
// fully transparent. The result shares nothing with g.
func Raster(g *state.Grid) *image.NRGBA {
	img := image.NewNRGBA(g.Bounds())
	g.Each(func(c state.Cell, col state.Color) {
		img.SetNRGBA(c.X, c.Y, col.NRGBA())
	})
	return img
}

// Scale enlarges img by factor with nearest-neighbour sampling so cell
// edges stay hard.
func Scale(img image.Image, factor int) *image.NRGBA {
	if factor < 1 {
		factor = 1
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Encode writes g as a PNG at pixelSize pixels per cell.
func Encode(w io.Writer, g *state.Grid, pixelSize int) error {
	return EncodeImage(w, Scale(Raster(g), pixelSize))
}

// EncodeImage writes an already rasterized image as PNG.
func EncodeImage(w io.Writer, img image.Image) error {
	enc := png.Encoder{
		CompressionLevel: png.BestCompression,
		BufferPool:       pngPool,
	}
	if err := enc.Encode(w, img); err != nil {
		return fmt.Errorf("could not encode PNG: %w", err)
	}
	return nil
}

// SaveFile writes g to path through a temporary file in the same directory,
// so a failed save never leaves a truncated image behind.
func SaveFile(path string, g *state.Grid, pixelSize int) (err error) {
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	out, err := os.CreateTemp(dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("could not create temporary file for %q: %w", path, err)
	}
	done := false
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("could not close %q: %w", out.Name(), cerr)
		}
		if !done || err != nil {
			os.Remove(out.Name())
			return
		}
		if rerr := os.Rename(out.Name(), path); rerr != nil {
			err = fmt.Errorf("could not rename to %q: %w", path, rerr)
		}
	}()

	if err = Encode(out, g, pixelSize); err != nil {
		return err
	}
	if err = out.Sync(); err != nil {
		return fmt.Errorf("could not flush %q: %w", out.Name(), err)
	}
	done = true

	log.With("export").Infof("[EXPORT] saved %dx%d grid at %dpx per cell to %s",
		g.Cols(), g.Rows(), pixelSize, path)
	return nil
}

type pngEncoderBufferPool struct {
	pool sync.Pool
}

func (p *pngEncoderBufferPool) Get() *png.EncoderBuffer {
	return p.pool.Get().(*png.EncoderBuffer)
}

func (p *pngEncoderBufferPool) Put(buf *png.EncoderBuffer) {
	p.pool.Put(buf)
}

var pngPool = &pngEncoderBufferPool{
	pool: sync.Pool{
		New: func() any {
			return &png.EncoderBuffer{}
		},
	},
}
