package app

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gbview/internal/graphics"
	"gbview/internal/lcd"
	"gbview/internal/screen"
)

// newTestApplication creates a headless viewer writing into a temp directory
func newTestApplication(t *testing.T, mutate func(*Config)) *Application {
	t.Helper()

	config := NewConfig()
	config.Video.Backend = "headless"
	config.Capture.Directory = t.TempDir()
	config.Scene.Effect = EffectScroll
	if mutate != nil {
		mutate(config)
	}

	saved := screen.Logger()
	t.Cleanup(func() { screen.SetLogger(saved) })

	app, err := NewApplicationWithConfig(config, true, io.Discard)
	if err != nil {
		t.Fatalf("NewApplicationWithConfig failed: %v", err)
	}
	t.Cleanup(func() { app.Cleanup() })
	return app
}

// TestApplication_HeadlessBackend tests backend selection in headless mode
func TestApplication_HeadlessBackend(t *testing.T) {
	app := newTestApplication(t, nil)

	if _, ok := app.Window().(*graphics.HeadlessWindow); !ok {
		t.Fatalf("Expected *graphics.HeadlessWindow, got %T", app.Window())
	}
	w, h := app.Window().GetSize()
	if w != 640 || h != 576 {
		t.Errorf("Expected 640x576 window, got %dx%d", w, h)
	}
}

// TestApplication_RunHeadless tests frame advance, scrolling and presentation
func TestApplication_RunHeadless(t *testing.T) {
	app := newTestApplication(t, nil)

	if err := app.RunHeadless(3); err != nil {
		t.Fatalf("RunHeadless failed: %v", err)
	}
	if app.GetFrameCount() != 3 {
		t.Errorf("Expected 3 frames, got %d", app.GetFrameCount())
	}
	if app.IsRunning() {
		t.Error("Expected loop to be stopped after RunHeadless")
	}

	vp := app.Surface().ViewportPosition()
	if vp.Scroll != (screen.Point{X: 3, Y: 3}) {
		t.Errorf("Expected scroll (3,3), got %+v", vp.Scroll)
	}
	if vp.Window != (screen.Point{X: 80, Y: 96}) {
		t.Errorf("Expected window (80,96), got %+v", vp.Window)
	}

	// The table holds the registers the third frame was drawn with
	table, err := app.Surface().ScanlineTable()
	if err != nil {
		t.Fatalf("ScanlineTable failed: %v", err)
	}
	if table[0] != [4]uint8{2, 2, 80, 96} || table[lcd.Height-1] != [4]uint8{2, 2, 80, 96} {
		t.Errorf("Unexpected scanline rows %v / %v", table[0], table[lcd.Height-1])
	}

	window := app.Window().(*graphics.HeadlessWindow)
	if window.GetFrameCount() != 3 {
		t.Errorf("Expected 3 presented frames, got %d", window.GetFrameCount())
	}
	last := window.LastFrame()
	if last == nil {
		t.Fatal("Expected a presented frame")
	}
	if h, w, c := last.Shape(); h != lcd.Height || w != lcd.Width || c != screen.DisplayChannels {
		t.Errorf("Expected (%d,%d,%d) frame, got (%d,%d,%d)", lcd.Height, lcd.Width, screen.DisplayChannels, h, w, c)
	}
	if !bytes.Equal(last.Pix, app.Surface().DisplayPixelArray().Pix) {
		t.Error("Presented frame differs from the display array")
	}
}

// TestApplication_WaveEffect tests that the raster effect varies SCX per line
func TestApplication_WaveEffect(t *testing.T) {
	app := newTestApplication(t, func(c *Config) {
		c.Scene.Effect = EffectWave
		c.Scene.Amplitude = 10
	})

	if err := app.RunHeadless(1); err != nil {
		t.Fatalf("RunHeadless failed: %v", err)
	}

	table, err := app.Surface().ScanlineTable()
	if err != nil {
		t.Fatalf("ScanlineTable failed: %v", err)
	}

	distinct := map[uint8]bool{}
	for y := range table {
		scx, _ := table.Scroll(y)
		distinct[scx] = true
	}
	if len(distinct) < 10 {
		t.Errorf("Expected SCX to vary across lines, got %d distinct values", len(distinct))
	}
}

// TestApplication_Pause tests that a paused viewer re-presents the same frame
func TestApplication_Pause(t *testing.T) {
	app := newTestApplication(t, nil)

	if err := app.RunFrame(); err != nil {
		t.Fatalf("RunFrame failed: %v", err)
	}
	app.TogglePause()
	if !app.IsPaused() {
		t.Fatal("Expected viewer to be paused")
	}
	if err := app.RunFrame(); err != nil {
		t.Fatalf("RunFrame failed: %v", err)
	}

	if app.LCD().GetFrameCount() != 1 {
		t.Errorf("Expected LCD to stay at frame 1, got %d", app.LCD().GetFrameCount())
	}
	if !strings.Contains(app.overlayText(), "paused") {
		t.Error("Expected overlay to report pause")
	}

	app.handleKeyInput(graphics.KeySpace)
	if app.IsPaused() {
		t.Error("Expected space to resume")
	}
}

// TestApplication_OverlayText tests the register overlay
func TestApplication_OverlayText(t *testing.T) {
	app := newTestApplication(t, nil)
	if err := app.RunHeadless(2); err != nil {
		t.Fatalf("RunHeadless failed: %v", err)
	}

	text := app.overlayText()
	for _, want := range []string{"SCX   2 SCY   2", "WX   80 WY  96", "frame 2"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected overlay to contain %q, got %q", want, text)
		}
	}
}

// TestApplication_TakeScreenshot tests the F12 screenshot path
func TestApplication_TakeScreenshot(t *testing.T) {
	app := newTestApplication(t, func(c *Config) {
		c.Capture.Format = "bmp"
	})
	if err := app.RunFrame(); err != nil {
		t.Fatalf("RunFrame failed: %v", err)
	}

	path, err := app.TakeScreenshot()
	if errors.Is(err, screen.ErrImageUnavailable) {
		t.Skip("binary built without image support")
	}
	if err != nil {
		t.Fatalf("TakeScreenshot failed: %v", err)
	}
	if filepath.Ext(path) != ".bmp" {
		t.Errorf("Expected .bmp screenshot, got %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected screenshot file: %v", err)
	}
}

// TestApplication_CaptureSession tests automatic capture and PPM dumps
func TestApplication_CaptureSession(t *testing.T) {
	var captureDir string
	app := newTestApplication(t, func(c *Config) {
		c.Capture.AutoStart = true
		c.Capture.MaxDumps = 2
		c.Capture.DumpFrames = []int{2}
		captureDir = c.Capture.Directory
	})

	if err := app.RunHeadless(4); err != nil {
		t.Fatalf("RunHeadless failed: %v", err)
	}
	if err := app.StopCapture(); err != nil {
		t.Fatalf("StopCapture failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(captureDir, "frame_002.ppm")); err != nil {
		t.Errorf("Expected headless PPM dump: %v", err)
	}

	sessions, err := filepath.Glob(filepath.Join(captureDir, "capture_*"))
	if err != nil || len(sessions) != 1 {
		t.Fatalf("Expected one session directory, got %v (%v)", sessions, err)
	}

	tables, _ := filepath.Glob(filepath.Join(sessions[0], "scanlines_*.txt"))
	if len(tables) != 2 {
		t.Errorf("Expected 2 scanline dumps, got %d", len(tables))
	}
	if _, err := os.Stat(filepath.Join(sessions[0], "summary.txt")); err != nil {
		t.Errorf("Expected session summary: %v", err)
	}
}

// TestApplication_CaptureRestart tests stopping and starting capture twice
func TestApplication_CaptureRestart(t *testing.T) {
	var captureDir string
	app := newTestApplication(t, func(c *Config) {
		c.Capture.MaxDumps = 2
		captureDir = c.Capture.Directory
	})

	for run := 0; run < 2; run++ {
		if err := app.StartCapture(); err != nil {
			t.Fatalf("StartCapture %d failed: %v", run, err)
		}
		if err := app.RunHeadless(3); err != nil {
			t.Fatalf("RunHeadless failed: %v", err)
		}
		if err := app.StopCapture(); err != nil {
			t.Fatalf("StopCapture %d failed: %v", run, err)
		}
	}

	sessions, err := filepath.Glob(filepath.Join(captureDir, "capture_*"))
	if err != nil || len(sessions) != 2 {
		t.Fatalf("Expected two session directories, got %v (%v)", sessions, err)
	}
	for _, dir := range sessions {
		tables, _ := filepath.Glob(filepath.Join(dir, "scanlines_*.txt"))
		if len(tables) != 2 {
			t.Errorf("%s: expected 2 scanline dumps, got %d", filepath.Base(dir), len(tables))
		}
	}
}

// TestApplication_InvalidFormat tests that a bad capture format fails setup
func TestApplication_InvalidFormat(t *testing.T) {
	config := NewConfig()
	config.Video.Backend = "headless"
	config.Capture.Format = "gif"

	saved := screen.Logger()
	defer screen.SetLogger(saved)

	_, err := NewApplicationWithConfig(config, true, io.Discard)
	var appErr *ApplicationError
	if !errors.As(err, &appErr) {
		t.Fatalf("Expected *ApplicationError, got %v", err)
	}
	if appErr.Component != "initialization" {
		t.Errorf("Expected initialization component, got %s", appErr.Component)
	}
}

// TestApplication_QuitEvent tests that a quit event stops the loop
func TestApplication_QuitEvent(t *testing.T) {
	app := newTestApplication(t, nil)
	app.running.Store(true)

	app.window = &eventWindow{Window: app.window, events: []graphics.InputEvent{
		{Type: graphics.InputEventTypeQuit, Pressed: true},
	}}
	if err := app.tick(); err != nil {
		t.Fatalf("tick failed: %v", err)
	}
	if app.IsRunning() {
		t.Error("Expected quit event to stop the loop")
	}
	if app.window.ShouldClose() {
		t.Error("Expected the window to be left for Cleanup")
	}
	if err := app.windowTick(); !errors.Is(err, graphics.ErrStop) {
		t.Errorf("Expected ErrStop from a stopped viewer, got %v", err)
	}
}

// eventWindow injects input events into a wrapped window
type eventWindow struct {
	graphics.Window
	events []graphics.InputEvent
}

func (w *eventWindow) PollEvents() []graphics.InputEvent {
	events := w.events
	w.events = nil
	return events
}
