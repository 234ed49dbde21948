package screen

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable is matched by errors for data the renderer has not produced yet.
	ErrUnavailable = errors.New("screen: data not available")

	// ErrImageUnavailable is returned by DecodedImage when the binary was built
	// without image construction support.
	ErrImageUnavailable = errors.New("screen: image decoding unavailable")

	// ErrNilRenderer is returned by NewSurface for a nil renderer.
	ErrNilRenderer = errors.New("screen: nil renderer")
)

// UnavailableError reports a query made before the renderer produced enough data.
type UnavailableError struct {
	What string
	Have int
	Want int
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("screen: %s unavailable: have %d of %d entries", e.What, e.Have, e.Want)
}

// Is lets errors.Is match UnavailableError against ErrUnavailable.
func (e *UnavailableError) Is(target error) bool {
	return target == ErrUnavailable
}

// ShapeError reports a renderer whose declared geometry does not match its buffer.
type ShapeError struct {
	Width     int
	Height    int
	BufferLen int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("screen: buffer of %d bytes does not match %dx%d with %d channels",
		e.BufferLen, e.Width, e.Height, Channels)
}
