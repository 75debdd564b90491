package rgbimg

import (
	"image"
	"image/color"
)

// Image is an opaque 8-bit RGB image.
type Image struct {
	// Pix holds the image's pixels, in R, G, B order. The pixel at
	// (x, y) starts at Pix[(y-Rect.Min.Y)*Stride + (x-Rect.Min.X)*3].
	Pix []uint8
	// Stride is the Pix stride (in bytes) between vertically adjacent pixels.
	Stride int
	// Rect is the image's bounds.
	Rect image.Rectangle
}

var Model = color.ModelFunc(rgbConvert)

func rgbConvert(c color.Color) color.Color {
	if rc, ok := c.(color.RGBA); ok && rc.A == 0xff {
		return rc
	}
	nc := color.NRGBAModel.Convert(c).(color.NRGBA)
	return color.RGBA{R: nc.R, G: nc.G, B: nc.B, A: 0xff}
}

func New(r image.Rectangle) *Image {
	return &Image{
		Pix:    make([]uint8, 3*r.Dx()*r.Dy()),
		Stride: 3 * r.Dx(),
		Rect:   r,
	}
}

// FromNRGBA copies the color channels of src and drops alpha.
func FromNRGBA(src *image.NRGBA) *Image {
	b := src.Bounds()
	dst := New(b)
	w := b.Dx()

	for y := 0; y < b.Dy(); y++ {
		s := src.Pix[y*src.Stride : y*src.Stride+4*w]
		d := dst.Pix[y*dst.Stride : y*dst.Stride+3*w]
		for x := 0; x < w; x++ {
			d[3*x], d[3*x+1], d[3*x+2] = s[4*x], s[4*x+1], s[4*x+2]
		}
	}
	return dst
}

// ColorModel reports the 8-bit RGBA model; every pixel is opaque, so encoders
// pick their 8-bit truecolor form.
func (p *Image) ColorModel() color.Model { return color.RGBAModel }

func (p *Image) Bounds() image.Rectangle { return p.Rect }

func (p *Image) At(x, y int) color.Color {
	return p.RGBAt(x, y)
}

func (p *Image) RGBAt(x, y int) color.RGBA {
	if !(image.Point{x, y}.In(p.Rect)) {
		return color.RGBA{}
	}
	i := p.PixOffset(x, y)
	s := p.Pix[i : i+3 : i+3]
	return color.RGBA{s[0], s[1], s[2], 0xff}
}

func (p *Image) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*3
}

func (p *Image) Set(x, y int, c color.Color) {
	p.SetRGB(x, y, Model.Convert(c).(color.RGBA))
}

// SetRGB stores the color channels of c, ignoring its alpha.
func (p *Image) SetRGB(x, y int, c color.RGBA) {
	if !(image.Point{x, y}.In(p.Rect)) {
		return
	}
	i := p.PixOffset(x, y)
	s := p.Pix[i : i+3 : i+3]
	s[0], s[1], s[2] = c.R, c.G, c.B
}

func (p *Image) SubImage(r image.Rectangle) image.Image {
	r = r.Intersect(p.Rect)
	if r.Empty() {
		return &Image{}
	}
	i := p.PixOffset(r.Min.X, r.Min.Y)
	return &Image{
		Pix:    p.Pix[i:],
		Stride: p.Stride,
		Rect:   r,
	}
}

// Opaque is always true, so encoders write no alpha channel.
func (p *Image) Opaque() bool {
	return true
}
