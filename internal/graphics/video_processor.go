package graphics

import (
	"math"

	"gbview/internal/screen"
)

// VideoProcessor applies video effects to display frames
type VideoProcessor struct {
	brightness float32
	contrast   float32
	saturation float32
}

// NewVideoProcessor creates a new video processor
func NewVideoProcessor(brightness, contrast, saturation float32) *VideoProcessor {
	return &VideoProcessor{
		brightness: brightness,
		contrast:   contrast,
		saturation: saturation,
	}
}

// IsIdentity reports whether ProcessFrame leaves frames unchanged
func (vp *VideoProcessor) IsIdentity() bool {
	return vp.brightness == 1.0 && vp.contrast == 1.0 && vp.saturation == 1.0
}

// ProcessFrame returns a new (height, width, 3) frame with the effects
// applied. The input frame is returned as is when no effect is active.
func (vp *VideoProcessor) ProcessFrame(frame *screen.PixelArray) *screen.PixelArray {
	if vp.IsIdentity() {
		return frame
	}

	out := &screen.PixelArray{
		Pix:      make([]byte, len(frame.Pix)),
		Width:    frame.Width,
		Height:   frame.Height,
		Channels: frame.Channels,
		Stride:   frame.Stride,
	}

	for i := 0; i+2 < len(frame.Pix); i += frame.Channels {
		r, g, b := vp.processPixel(float32(frame.Pix[i]), float32(frame.Pix[i+1]), float32(frame.Pix[i+2]))
		out.Pix[i] = r
		out.Pix[i+1] = g
		out.Pix[i+2] = b
	}

	return out
}

func (vp *VideoProcessor) processPixel(r, g, b float32) (uint8, uint8, uint8) {
	// Apply brightness
	r *= vp.brightness
	g *= vp.brightness
	b *= vp.brightness

	// Apply contrast
	r = ((r/255.0-0.5)*vp.contrast + 0.5) * 255.0
	g = ((g/255.0-0.5)*vp.contrast + 0.5) * 255.0
	b = ((b/255.0-0.5)*vp.contrast + 0.5) * 255.0

	// Apply saturation by converting to HSL and back
	if vp.saturation != 1.0 {
		h, s, l := rgbToHSL(clamp(r, 0, 255)/255.0, clamp(g, 0, 255)/255.0, clamp(b, 0, 255)/255.0)
		s *= vp.saturation
		if s > 1.0 {
			s = 1.0
		}
		r, g, b = hslToRGB(h, s, l)
		r *= 255.0
		g *= 255.0
		b *= 255.0
	}

	return uint8(clamp(r, 0, 255) + 0.5), uint8(clamp(g, 0, 255) + 0.5), uint8(clamp(b, 0, 255) + 0.5)
}

// clamp limits a value to a range
func clamp(value, min, max float32) float32 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// rgbToHSL converts RGB to HSL color space
func rgbToHSL(r, g, b float32) (h, s, l float32) {
	max := math.Max(float64(r), math.Max(float64(g), float64(b)))
	min := math.Min(float64(r), math.Min(float64(g), float64(b)))

	l = float32((max + min) / 2.0)

	if max == min {
		return 0, 0, l
	}

	d := float32(max - min)
	if l > 0.5 {
		s = d / float32(2.0-max-min)
	} else {
		s = d / float32(max+min)
	}

	switch max {
	case float64(r):
		h = (g - b) / d
		if g < b {
			h += 6
		}
	case float64(g):
		h = (b-r)/d + 2
	case float64(b):
		h = (r-g)/d + 4
	}
	h /= 6

	return h, s, l
}

// hslToRGB converts HSL to RGB color space
func hslToRGB(h, s, l float32) (r, g, b float32) {
	if s == 0 {
		return l, l, l
	}

	var q float32
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	r = hueToRGB(p, q, h+1.0/3.0)
	g = hueToRGB(p, q, h)
	b = hueToRGB(p, q, h-1.0/3.0)

	return r, g, b
}

// hueToRGB helper function for HSL to RGB conversion
func hueToRGB(p, q, t float32) float32 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	if t < 1.0/6.0 {
		return p + (q-p)*6*t
	}
	if t < 1.0/2.0 {
		return q
	}
	if t < 2.0/3.0 {
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}

// SetBrightness updates the brightness value
func (vp *VideoProcessor) SetBrightness(brightness float32) {
	vp.brightness = brightness
}

// SetContrast updates the contrast value
func (vp *VideoProcessor) SetContrast(contrast float32) {
	vp.contrast = contrast
}

// SetSaturation updates the saturation value
func (vp *VideoProcessor) SetSaturation(saturation float32) {
	vp.saturation = saturation
}
