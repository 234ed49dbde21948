package lcd

import "math"

// Pattern identifies a procedural layer
type Pattern string

const (
	PatternCheckerboard Pattern = "checkerboard"
	PatternStripes      Pattern = "stripes"
	PatternGradient     Pattern = "gradient"
	PatternBorder       Pattern = "border"
)

// Pattern tuning
const (
	patternTileSize    = 8
	patternStripeWidth = 4

	// Border frame in layer pixels, anchored at the layer origin
	patternBorderWidth     = Width
	patternBorderHeight    = 40
	patternBorderThickness = 2
)

// NewPatternLayer builds a 256x256 colour index map for the given pattern.
// Unknown patterns produce an empty (index 0) layer.
func NewPatternLayer(p Pattern) []uint8 {
	layer := make([]uint8, LayerSize*LayerSize)
	for y := 0; y < LayerSize; y++ {
		for x := 0; x < LayerSize; x++ {
			layer[y*LayerSize+x] = patternIndex(p, x, y)
		}
	}
	return layer
}

func patternIndex(p Pattern, x, y int) uint8 {
	switch p {
	case PatternCheckerboard:
		if (x/patternTileSize+y/patternTileSize)%2 == 0 {
			return 0
		}
		return 2
	case PatternStripes:
		return uint8((x / patternStripeWidth) % 4)
	case PatternGradient:
		return uint8(y * 4 / LayerSize)
	case PatternBorder:
		t := patternBorderThickness
		if x < t || y < t || x >= patternBorderWidth-t || y >= patternBorderHeight-t {
			return 3
		}
		return 1
	default:
		return 0
	}
}

// WaveEffect returns an HBlank callback that offsets SCX by a sine of the
// line number, the way games bend the background with raster effects. The
// base scroll is taken from baseSCX on every call.
func WaveEffect(l *LCD, baseSCX func() uint8, amplitude float64) func(ly int) {
	return func(ly int) {
		next := float64(ly+1) * 2 * math.Pi / float64(Height)
		offset := int(math.Round(amplitude * math.Sin(next)))
		l.WriteRegister(RegSCX, uint8(int(baseSCX())+offset))
	}
}
