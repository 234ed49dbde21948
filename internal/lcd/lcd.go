// Package lcd implements a scanline-stepped Game Boy style LCD controller.
//
// Background and window layers are supplied as pre-decoded 256x256 maps of
// colour indices; the controller applies scroll, window placement and the BGP
// palette line by line and records the viewport registers used for each line.
package lcd

import "fmt"

// Screen geometry and buffer layout
const (
	Width         = 160
	Height        = 144
	LinesPerFrame = 154
	BytesPerPixel = 4
	Format        = "RGBA" // R, G, B, then the raw colour index (not alpha)

	LayerSize = 256
)

// Register addresses
const (
	RegLCDC uint16 = 0xFF40
	RegSCY  uint16 = 0xFF42
	RegSCX  uint16 = 0xFF43
	RegLY   uint16 = 0xFF44
	RegBGP  uint16 = 0xFF47
	RegWY   uint16 = 0xFF4A
	RegWX   uint16 = 0xFF4B
)

// LCDC bits
const (
	LCDCBackground uint8 = 1 << 0
	LCDCWindow     uint8 = 1 << 5
	LCDCEnable     uint8 = 1 << 7
)

// windowXOffset is subtracted from WX to get the window's screen column.
const windowXOffset = 7

// DefaultPalette holds the four DMG green shades as R, G, B.
var DefaultPalette = [4][3]uint8{
	{0xE0, 0xF8, 0xD0},
	{0x88, 0xC0, 0x70},
	{0x34, 0x68, 0x56},
	{0x08, 0x18, 0x20},
}

// LCD represents the display controller
type LCD struct {
	// Registers
	lcdc uint8
	scy  uint8
	scx  uint8
	ly   uint8
	bgp  uint8
	wy   uint8
	wx   uint8

	background [LayerSize * LayerSize]uint8
	window     [LayerSize * LayerSize]uint8
	palette    [4][3]uint8

	frameBuffer [Width * Height * BytesPerPixel]byte

	// Per-line viewport registers for the frame being drawn and the last
	// completed frame.
	lineParams  [Height][4]uint8
	frameParams [Height][4]uint8
	frameReady  bool

	windowLine int
	frameCount uint64

	// Callbacks
	hblankCallback        func(ly int)
	frameCompleteCallback func()
}

// New creates a new LCD with the display and background enabled
func New() *LCD {
	l := &LCD{}
	l.Reset()
	return l
}

// Reset resets registers, buffers and recorded lines. Layers are kept.
func (l *LCD) Reset() {
	l.lcdc = LCDCEnable | LCDCBackground
	l.scy = 0
	l.scx = 0
	l.ly = 0
	l.bgp = 0xE4 // 3,2,1,0
	l.wy = 0
	l.wx = 0
	l.palette = DefaultPalette

	l.windowLine = 0
	l.frameCount = 0
	l.frameReady = false
	l.lineParams = [Height][4]uint8{}
	l.frameParams = [Height][4]uint8{}

	for i := range l.frameBuffer {
		l.frameBuffer[i] = 0
	}
}

// SetHBlankCallback sets a function called after each visible line is drawn,
// with the line number. Register writes made there apply from the next line.
func (l *LCD) SetHBlankCallback(callback func(ly int)) {
	l.hblankCallback = callback
}

// SetFrameCompleteCallback sets the function called when line 143 is finished
func (l *LCD) SetFrameCompleteCallback(callback func()) {
	l.frameCompleteCallback = callback
}

// SetBackgroundLayer loads a 256x256 map of colour indices (0-3)
func (l *LCD) SetBackgroundLayer(layer []uint8) error {
	return loadLayer(&l.background, layer)
}

// SetWindowLayer loads a 256x256 map of colour indices (0-3)
func (l *LCD) SetWindowLayer(layer []uint8) error {
	return loadLayer(&l.window, layer)
}

func loadLayer(dst *[LayerSize * LayerSize]uint8, layer []uint8) error {
	if len(layer) != len(dst) {
		return fmt.Errorf("layer must be %dx%d (%d entries), got %d", LayerSize, LayerSize, len(dst), len(layer))
	}
	for i, v := range layer {
		dst[i] = v & 0x03
	}
	return nil
}

// SetPalette sets the RGB value of each of the four shades
func (l *LCD) SetPalette(palette [4][3]uint8) {
	l.palette = palette
}

// ReadRegister reads an LCD register
func (l *LCD) ReadRegister(address uint16) uint8 {
	switch address {
	case RegLCDC:
		return l.lcdc
	case RegSCY:
		return l.scy
	case RegSCX:
		return l.scx
	case RegLY:
		return l.ly
	case RegBGP:
		return l.bgp
	case RegWY:
		return l.wy
	case RegWX:
		return l.wx
	default:
		return 0xFF
	}
}

// WriteRegister writes an LCD register. LY is read-only.
func (l *LCD) WriteRegister(address uint16, value uint8) {
	switch address {
	case RegLCDC:
		l.lcdc = value
	case RegSCY:
		l.scy = value
	case RegSCX:
		l.scx = value
	case RegBGP:
		l.bgp = value
	case RegWY:
		l.wy = value
	case RegWX:
		l.wx = value
	}
}

// StepLine draws the current line if it is visible and advances LY
func (l *LCD) StepLine() {
	line := int(l.ly)

	if line < Height {
		l.renderLine(line)
		l.lineParams[line] = [4]uint8{l.scx, l.scy, l.wx - windowXOffset, l.wy}

		if l.hblankCallback != nil {
			l.hblankCallback(line)
		}
	}

	line++
	switch {
	case line == Height:
		l.frameParams = l.lineParams
		l.frameReady = true
		l.frameCount++
		if l.frameCompleteCallback != nil {
			l.frameCompleteCallback()
		}
	case line >= LinesPerFrame:
		line = 0
		l.windowLine = 0
	}
	l.ly = uint8(line)
}

// RunFrame steps through one full frame of lines
func (l *LCD) RunFrame() {
	for i := 0; i < LinesPerFrame; i++ {
		l.StepLine()
	}
}

// renderLine composes one line from the background and window layers
func (l *LCD) renderLine(line int) {
	row := l.frameBuffer[line*Width*BytesPerPixel : (line+1)*Width*BytesPerPixel]

	if l.lcdc&LCDCEnable == 0 {
		for x := 0; x < Width; x++ {
			l.putPixel(row, x, 0)
		}
		return
	}

	windowStart := Width
	if l.lcdc&LCDCWindow != 0 && int(l.wy) <= line && l.wx <= 166 {
		windowStart = int(l.wx) - windowXOffset
	}

	bgY := (int(l.scy) + line) & 0xFF
	for x := 0; x < Width; x++ {
		var index uint8
		switch {
		case x >= windowStart:
			index = l.window[l.windowLine*LayerSize+(x-windowStart)]
		case l.lcdc&LCDCBackground != 0:
			index = l.background[bgY*LayerSize+((int(l.scx)+x)&0xFF)]
		}
		l.putPixel(row, x, index)
	}

	if windowStart < Width {
		l.windowLine++
	}
}

func (l *LCD) putPixel(row []byte, x int, index uint8) {
	shade := (l.bgp >> (index * 2)) & 0x03
	rgb := l.palette[shade]
	i := x * BytesPerPixel
	row[i+0] = rgb[0]
	row[i+1] = rgb[1]
	row[i+2] = rgb[2]
	row[i+3] = index
}

// GetFrameCount returns the number of completed frames
func (l *LCD) GetFrameCount() uint64 {
	return l.frameCount
}

// FrameBuffer returns the live frame buffer
func (l *LCD) FrameBuffer() []byte {
	return l.frameBuffer[:]
}

// BufferDims returns the frame buffer dimensions
func (l *LCD) BufferDims() (int, int) {
	return Width, Height
}

// ColorFormat returns the frame buffer channel order
func (l *LCD) ColorFormat() string {
	return Format
}

// ScanlineParameters returns {SCX, SCY, WX-7, WY} per line of the last
// completed frame. Before the first frame completes only the lines drawn so
// far are returned.
func (l *LCD) ScanlineParameters() [][4]uint8 {
	if l.frameReady {
		return l.frameParams[:]
	}
	drawn := int(l.ly)
	if drawn > Height {
		drawn = Height
	}
	return l.lineParams[:drawn]
}

// Viewport returns the current SCX and SCY
func (l *LCD) Viewport() (int, int) {
	return int(l.scx), int(l.scy)
}

// WindowPosition returns the current WX-7 and WY
func (l *LCD) WindowPosition() (int, int) {
	return int(l.wx) - windowXOffset, int(l.wy)
}
