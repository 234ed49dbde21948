package screen

import (
	"bytes"
	"image"
	"log/slog"
	"sync"
	"testing"
)

// fakeRenderer is a Renderer with directly settable state.
type fakeRenderer struct {
	width, height int
	format        string
	buffer        []byte
	lines         [][4]uint8
	scx, scy      int
	wx, wy        int
}

func newFakeRenderer(width, height int) *fakeRenderer {
	return &fakeRenderer{
		width:  width,
		height: height,
		format: "RGBA",
		buffer: make([]byte, width*height*Channels),
		lines:  make([][4]uint8, height),
	}
}

func (f *fakeRenderer) FrameBuffer() []byte            { return f.buffer }
func (f *fakeRenderer) BufferDims() (int, int)         { return f.width, f.height }
func (f *fakeRenderer) ColorFormat() string            { return f.format }
func (f *fakeRenderer) ScanlineParameters() [][4]uint8 { return f.lines }
func (f *fakeRenderer) Viewport() (int, int)           { return f.scx, f.scy }
func (f *fakeRenderer) WindowPosition() (int, int)     { return f.wx, f.wy }

// fillPattern writes a deterministic value into every byte of the buffer.
func (f *fakeRenderer) fillPattern(seed byte) {
	for i := range f.buffer {
		f.buffer[i] = byte(i*7) ^ seed
	}
}

// withImageBuilder installs builder as the image capability for the duration
// of the test and re-runs the capability probe.
func withImageBuilder(t *testing.T, builder func(*PixelArray) image.Image) {
	t.Helper()
	saved := imageBuilder
	imageBuilder = builder
	probeOnce = sync.Once{}
	t.Cleanup(func() {
		imageBuilder = saved
		probeOnce = sync.Once{}
	})
}

// captureLogs routes package diagnostics into a buffer for the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	saved := Logger()
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { SetLogger(saved) })
	return &buf
}

func mustSurface(t *testing.T, r Renderer) *Surface {
	t.Helper()
	s, err := NewSurface(r)
	if err != nil {
		t.Fatalf("NewSurface failed: %v", err)
	}
	return s
}
