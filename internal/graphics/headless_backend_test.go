package graphics

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func newHeadlessWindow(t *testing.T, config Config) *HeadlessWindow {
	t.Helper()
	backend := NewHeadlessBackend()
	if err := backend.Initialize(config); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	window, err := backend.CreateWindow("test", 160, 144)
	if err != nil {
		t.Fatalf("CreateWindow failed: %v", err)
	}
	return window.(*HeadlessWindow)
}

func TestHeadlessBackend_Lifecycle(t *testing.T) {
	backend := NewHeadlessBackend()

	if _, err := backend.CreateWindow("test", 160, 144); err == nil {
		t.Fatal("Expected error when creating window on uninitialized backend")
	}
	if err := backend.Initialize(Config{}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if err := backend.Initialize(Config{}); err == nil {
		t.Error("Expected error on double initialization")
	}
	if !backend.IsHeadless() {
		t.Error("Expected headless backend to report headless")
	}
	if err := backend.Cleanup(); err != nil {
		t.Errorf("Cleanup failed: %v", err)
	}
}

func TestHeadlessWindow_RenderFrame(t *testing.T) {
	window := newHeadlessWindow(t, Config{})

	frame := newTestFrame(160, 144)
	for i := 0; i < 3; i++ {
		if err := window.RenderFrame(frame); err != nil {
			t.Fatalf("RenderFrame failed: %v", err)
		}
	}

	if window.GetFrameCount() != 3 {
		t.Errorf("Expected 3 frames, got %d", window.GetFrameCount())
	}
	if window.LastFrame() != frame {
		t.Error("Expected last frame to be kept")
	}
	if window.PollEvents() != nil {
		t.Error("Expected no events in headless mode")
	}

	window.Cleanup()
	if !window.ShouldClose() {
		t.Error("Expected window to close after cleanup")
	}
}

func TestHeadlessWindow_DumpsRequestedFrames(t *testing.T) {
	dir := t.TempDir()
	window := newHeadlessWindow(t, Config{DumpFrames: []int{2}, OutputDir: dir})

	frame := newTestFrame(4, 2)
	for i := 0; i < 3; i++ {
		if err := window.RenderFrame(frame); err != nil {
			t.Fatalf("RenderFrame failed: %v", err)
		}
	}

	if _, err := os.Stat(filepath.Join(dir, "frame_001.ppm")); !os.IsNotExist(err) {
		t.Error("Expected frame 1 not to be dumped")
	}

	data, err := os.ReadFile(filepath.Join(dir, "frame_002.ppm"))
	if err != nil {
		t.Fatalf("Expected frame 2 dump: %v", err)
	}

	header := []byte("P6\n4 2\n255\n")
	if !bytes.HasPrefix(data, header) {
		t.Fatalf("Unexpected PPM header: %q", data[:len(header)])
	}
	if !bytes.Equal(data[len(header):], frame.Pix) {
		t.Error("Expected PPM body to equal the display pixels")
	}
}

func TestHeadlessWindow_RejectsWrongChannels(t *testing.T) {
	window := newHeadlessWindow(t, Config{})
	frame := newTestFrame(2, 2)
	frame.Channels = 4

	if err := window.RenderFrame(frame); err == nil {
		t.Error("Expected error for 4 channel frame")
	}
	if window.GetFrameCount() != 0 {
		t.Error("Expected rejected frame not to be counted")
	}
}
