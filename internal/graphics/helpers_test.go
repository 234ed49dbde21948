package graphics

import "gbview/internal/screen"

// newTestFrame builds a (height, width, 3) frame whose pixel (x, y) is {x, y, x^y}
func newTestFrame(width, height int) *screen.PixelArray {
	pix := make([]byte, width*height*3)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := (y*width + x) * 3
			pix[i] = byte(x)
			pix[i+1] = byte(y)
			pix[i+2] = byte(x ^ y)
		}
	}
	return &screen.PixelArray{Pix: pix, Width: width, Height: height, Channels: 3, Stride: width * 3}
}
