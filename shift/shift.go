// Package shift displaces single color channels of an image to produce a
// chromatic aberration look.
package shift

import (
	"image"
	"log/slog"

	"chromashift/parallel"
)

// Channel selects one of the four components of an NRGBA pixel.
type Channel int

const (
	Red Channel = iota
	Green
	Blue
	Alpha
)

func (c Channel) String() string {
	switch c {
	case Red:
		return "red"
	case Green:
		return "green"
	case Blue:
		return "blue"
	case Alpha:
		return "alpha"
	}
	return "unknown"
}

type Shifter struct {
	pool   *parallel.Pool
	logger *slog.Logger
}

// New returns a Shifter that shards every stage by rows over pool. A nil pool
// runs stages inline.
func New(pool *parallel.Pool, logger *slog.Logger) *Shifter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Shifter{pool: pool, logger: logger}
}

// Shift is the sequential form of Shifter.Shift.
func Shift(img *image.NRGBA, dx, dy int, c Channel) *image.NRGBA {
	return shiftRows(img, dx, dy, c, nil)
}

// Shift returns a copy of img in which channel c of the pixel at (x, y) is
// read from (x-dx, y-dy). Destinations whose source falls outside the image
// keep their own value. img is not modified.
func (s *Shifter) Shift(img *image.NRGBA, dx, dy int, c Channel) *image.NRGBA {
	s.logger.Debug("shifting channel", "channel", c, "dx", dx, "dy", dy)
	return shiftRows(img, dx, dy, c, s.pool)
}

// Aberrate runs the three channel stages: red right by offset, green down by
// offset, then blue left by offset. Alpha is left as decoded.
func (s *Shifter) Aberrate(img *image.NRGBA, offset int) *image.NRGBA {
	red := s.Shift(img, offset, 0, Red)
	green := s.Shift(red, 0, offset, Green)
	return s.Shift(green, -offset, 0, Blue)
}

func shiftRows(img *image.NRGBA, dx, dy int, c Channel, pool *parallel.Pool) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	result := &image.NRGBA{
		Pix:    make([]uint8, len(img.Pix)),
		Stride: img.Stride,
		Rect:   img.Rect,
	}
	copy(result.Pix, img.Pix)
	if w <= 0 || h <= 0 {
		return result
	}

	// destination columns with an in-bounds source
	x0, x1 := max(0, dx), min(w, w+dx)
	if x0 >= x1 {
		return result
	}

	pool.Rows(h, func(lo, hi int) {
		for y := lo; y < hi; y++ {
			sy := y - dy
			if sy < 0 || sy >= h {
				continue
			}
			dst := result.Pix[y*result.Stride:]
			src := img.Pix[sy*img.Stride:]
			for x := x0; x < x1; x++ {
				dst[x*4+int(c)] = src[(x-dx)*4+int(c)]
			}
		}
	})

	return result
}
