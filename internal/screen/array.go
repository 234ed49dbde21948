package screen

// PixelArray is a (Height, Width, Channels) grid of 8-bit samples laid over a
// packed byte slice. Row y starts at y*Stride and each pixel occupies Channels
// consecutive bytes.
type PixelArray struct {
	Pix      []byte
	Width    int
	Height   int
	Channels int
	Stride   int
}

// newPixelArray wraps pix without copying. len(pix) must be width*height*channels.
func newPixelArray(pix []byte, width, height, channels int) *PixelArray {
	return &PixelArray{
		Pix:      pix,
		Width:    width,
		Height:   height,
		Channels: channels,
		Stride:   width * channels,
	}
}

// Shape returns the array dimensions in (rows, columns, channels) order.
func (a *PixelArray) Shape() (height, width, channels int) {
	return a.Height, a.Width, a.Channels
}

// At returns channel c of the pixel at row y, column x.
func (a *PixelArray) At(y, x, c int) uint8 {
	return a.Pix[a.offset(y, x)+c]
}

// Pixel returns the samples of one pixel. The slice aliases Pix.
func (a *PixelArray) Pixel(y, x int) []byte {
	i := a.offset(y, x)
	return a.Pix[i : i+a.Channels : i+a.Channels]
}

// Row returns the packed samples of row y. The slice aliases Pix.
func (a *PixelArray) Row(y int) []byte {
	i := y * a.Stride
	return a.Pix[i : i+a.Width*a.Channels : i+a.Width*a.Channels]
}

func (a *PixelArray) offset(y, x int) int {
	return y*a.Stride + x*a.Channels
}

// dropLastChannel compacts a into a new array without its last channel.
func dropLastChannel(a *PixelArray) *PixelArray {
	keep := a.Channels - 1
	out := make([]byte, a.Width*a.Height*keep)
	dst := 0
	for y := 0; y < a.Height; y++ {
		row := a.Row(y)
		for src := 0; src < len(row); src += a.Channels {
			copy(out[dst:dst+keep], row[src:src+keep])
			dst += keep
		}
	}
	return newPixelArray(out, a.Width, a.Height, keep)
}
