//go:build !noimage

package screen

func init() {
	imageBuilder = newRGBImage
}
