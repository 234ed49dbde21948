//go:build noimage

package screen

// Image construction is compiled out; DecodedImage returns ErrImageUnavailable.
func init() {
	imageBuilder = nil
}
