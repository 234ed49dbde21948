// Package screen exposes a renderer's frame buffer and per-scanline viewport
// registers as raw bytes, pixel arrays, images and a scanline table.
//
// Every accessor reads the renderer at call time and returns freshly built
// values; nothing is cached between calls. Callers must not read a Surface
// while the renderer is in the middle of producing a frame.
package screen

import "image"

// Channels is the number of interleaved 8-bit channels in a renderer buffer.
// The last channel is auxiliary renderer data, not alpha.
const Channels = 4

// DisplayChannels is the number of colour channels left once the auxiliary
// channel is dropped.
const DisplayChannels = Channels - 1

// Renderer is the state a Surface reads from.
type Renderer interface {
	// FrameBuffer returns the live row-major buffer of the current frame.
	FrameBuffer() []byte
	BufferDims() (width, height int)
	// ColorFormat names the renderer's native channel order, e.g. "RGBA".
	ColorFormat() string
	// ScanlineParameters returns {SCX, SCY, WX-7, WY} for each line of the
	// latest frame, top to bottom.
	ScanlineParameters() [][4]uint8
	Viewport() (scx, scy int)
	// WindowPosition returns (WX-7, WY).
	WindowPosition() (wx, wy int)
}

// Point is an (X, Y) register pair.
type Point struct {
	X, Y int
}

// ViewportPosition holds the current background scroll and window position.
type ViewportPosition struct {
	Scroll Point
	Window Point
}

// Surface is a read-only view over a Renderer.
type Surface struct {
	renderer Renderer
	width    int
	height   int
	decode   func(*PixelArray) image.Image
}

// NewSurface wraps r after checking that its buffer matches its declared
// dimensions.
func NewSurface(r Renderer) (*Surface, error) {
	if r == nil {
		return nil, ErrNilRenderer
	}

	w, h := r.BufferDims()
	if n := len(r.FrameBuffer()); w <= 0 || h <= 0 || n != w*h*Channels {
		return nil, &ShapeError{Width: w, Height: h, BufferLen: n}
	}

	return &Surface{
		renderer: r,
		width:    w,
		height:   h,
		decode:   probeImageSupport(),
	}, nil
}

// ViewportPosition returns the scroll (SCX, SCY) and window (WX-7, WY)
// registers as they are right now.
func (s *Surface) ViewportPosition() ViewportPosition {
	scx, scy := s.renderer.Viewport()
	wx, wy := s.renderer.WindowPosition()
	return ViewportPosition{
		Scroll: Point{X: scx, Y: scy},
		Window: Point{X: wx, Y: wy},
	}
}

// ScanlineTable returns the per-line viewport registers of the latest frame.
// It fails with an *UnavailableError until the renderer has recorded a full
// frame of lines.
func (s *Surface) ScanlineTable() (ScanlineTable, error) {
	params := s.renderer.ScanlineParameters()
	if len(params) < s.height {
		return nil, &UnavailableError{What: "scanline parameters", Have: len(params), Want: s.height}
	}

	table := make(ScanlineTable, s.height)
	copy(table, params[:s.height])
	return table, nil
}

// RawBuffer returns a copy of the frame buffer: row-major, Channels bytes per
// pixel, in the renderer's native channel order.
func (s *Surface) RawBuffer() []byte {
	src := s.renderer.FrameBuffer()
	buf := make([]byte, len(src))
	copy(buf, src)
	return buf
}

// BufferDims returns (width, height) as declared by the renderer.
func (s *Surface) BufferDims() (width, height int) {
	return s.renderer.BufferDims()
}

// BufferFormat returns the renderer's channel order identifier.
func (s *Surface) BufferFormat() string {
	return s.renderer.ColorFormat()
}

// PixelArray returns the frame as a (height, width, 4) array in native order.
func (s *Surface) PixelArray() *PixelArray {
	return newPixelArray(s.RawBuffer(), s.width, s.height, Channels)
}

// DisplayPixelArray returns the frame as a (height, width, 3) array with the
// auxiliary channel removed.
func (s *Surface) DisplayPixelArray() *PixelArray {
	return dropLastChannel(s.PixelArray())
}

// DecodedImage returns the display pixels as a width x height RGB image. In
// builds without image support it returns ErrImageUnavailable.
func (s *Surface) DecodedImage() (image.Image, error) {
	if s.decode == nil {
		return nil, ErrImageUnavailable
	}
	return s.decode(s.DisplayPixelArray()), nil
}
