package screen

import (
	"image"
	"image/color"
	"sync"
)

// RGBImage is an opaque image with 3 bytes per pixel in R, G, B order.
type RGBImage struct {
	Pix    []uint8
	Stride int
	Rect   image.Rectangle
}

// ColorModel implements image.Image.
func (p *RGBImage) ColorModel() color.Model { return color.RGBAModel }

// Bounds implements image.Image.
func (p *RGBImage) Bounds() image.Rectangle { return p.Rect }

// At implements image.Image.
func (p *RGBImage) At(x, y int) color.Color {
	return p.RGBAAt(x, y)
}

// RGBAAt returns the colour at (x, y) with full alpha, or transparent black
// outside the bounds.
func (p *RGBImage) RGBAAt(x, y int) color.RGBA {
	if !(image.Point{x, y}.In(p.Rect)) {
		return color.RGBA{}
	}
	i := p.PixOffset(x, y)
	s := p.Pix[i : i+3 : i+3]
	return color.RGBA{R: s[0], G: s[1], B: s[2], A: 0xFF}
}

// PixOffset returns the index of the first byte of the pixel at (x, y).
func (p *RGBImage) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*3
}

// Opaque reports that every pixel is fully opaque.
func (p *RGBImage) Opaque() bool { return true }

// newRGBImage builds an image that owns a copy of the display samples.
func newRGBImage(a *PixelArray) image.Image {
	pix := make([]uint8, len(a.Pix))
	copy(pix, a.Pix)
	return &RGBImage{
		Pix:    pix,
		Stride: a.Stride,
		Rect:   image.Rect(0, 0, a.Width, a.Height),
	}
}

// imageBuilder is the image construction capability. It is nil in builds
// tagged noimage.
var imageBuilder func(*PixelArray) image.Image

var (
	probeOnce sync.Once
	probed    func(*PixelArray) image.Image
)

// probeImageSupport resolves the image capability once per process and logs
// a single warning when it is missing.
func probeImageSupport() func(*PixelArray) image.Image {
	probeOnce.Do(func() {
		probed = imageBuilder
		if probed == nil {
			Logger().Warn("cannot generate screen images: binary built without image support",
				"tag", "noimage")
		}
	})
	return probed
}
