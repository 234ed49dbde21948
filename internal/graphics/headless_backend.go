package graphics

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"gbview/internal/screen"
)

// HeadlessBackend implements the Backend interface for headless operation
type HeadlessBackend struct {
	initialized bool
	config      Config
}

// HeadlessWindow implements the Window interface for headless operation
type HeadlessWindow struct {
	title      string
	width      int
	height     int
	running    bool
	frameCount int
	outputDir  string
	dumpFrames map[int]bool
	lastFrame  *screen.PixelArray
}

// NewHeadlessBackend creates a new headless graphics backend
func NewHeadlessBackend() Backend {
	return &HeadlessBackend{}
}

// Initialize initializes the headless backend
func (b *HeadlessBackend) Initialize(config Config) error {
	if b.initialized {
		return fmt.Errorf("headless backend already initialized")
	}

	b.config = config
	b.initialized = true

	return nil
}

// CreateWindow creates a headless "window" (no actual window)
func (b *HeadlessBackend) CreateWindow(title string, width, height int) (Window, error) {
	if !b.initialized {
		return nil, fmt.Errorf("backend not initialized")
	}

	dumps := make(map[int]bool, len(b.config.DumpFrames))
	for _, n := range b.config.DumpFrames {
		dumps[n] = true
	}

	outputDir := b.config.OutputDir
	if outputDir == "" {
		outputDir = "frame_output"
	}

	return &HeadlessWindow{
		title:      title,
		width:      width,
		height:     height,
		running:    true,
		outputDir:  outputDir,
		dumpFrames: dumps,
	}, nil
}

// Cleanup releases all headless resources
func (b *HeadlessBackend) Cleanup() error {
	b.initialized = false
	return nil
}

// IsHeadless returns true (this is a headless backend)
func (b *HeadlessBackend) IsHeadless() bool {
	return true
}

// GetName returns the backend name
func (b *HeadlessBackend) GetName() string {
	return "Headless"
}

// HeadlessWindow implementation

// SetTitle sets the window title (for logging purposes)
func (w *HeadlessWindow) SetTitle(title string) {
	w.title = title
}

// GetSize returns window dimensions
func (w *HeadlessWindow) GetSize() (width, height int) {
	return w.width, w.height
}

// ShouldClose returns true if window should close
func (w *HeadlessWindow) ShouldClose() bool {
	return !w.running
}

// PollEvents returns empty events list (no input in headless mode)
func (w *HeadlessWindow) PollEvents() []InputEvent {
	return nil
}

// RenderFrame keeps the frame and writes it as PPM when its number was requested
func (w *HeadlessWindow) RenderFrame(frame *screen.PixelArray) error {
	if err := checkDisplayFrame(frame); err != nil {
		return err
	}

	w.frameCount++
	w.lastFrame = frame

	if w.dumpFrames[w.frameCount] {
		filename := filepath.Join(w.outputDir, fmt.Sprintf("frame_%03d.ppm", w.frameCount))
		return w.saveFrameAsPPM(frame, filename)
	}

	return nil
}

// saveFrameAsPPM saves the frame as a binary (P6) PPM image file
func (w *HeadlessWindow) saveFrameAsPPM(frame *screen.PixelArray, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", filename, err)
	}
	defer file.Close()

	out := bufio.NewWriter(file)
	fmt.Fprintf(out, "P6\n%d %d\n255\n", frame.Width, frame.Height)
	for y := 0; y < frame.Height; y++ {
		if _, err := out.Write(frame.Row(y)); err != nil {
			return fmt.Errorf("failed to write %s: %w", filename, err)
		}
	}

	return out.Flush()
}

// Cleanup releases window resources
func (w *HeadlessWindow) Cleanup() error {
	w.running = false
	return nil
}

// SetOutputDir sets the directory for frame dumps
func (w *HeadlessWindow) SetOutputDir(dir string) {
	w.outputDir = dir
}

// GetFrameCount returns the number of frames rendered
func (w *HeadlessWindow) GetFrameCount() int {
	return w.frameCount
}

// LastFrame returns the most recently rendered frame
func (w *HeadlessWindow) LastFrame() *screen.PixelArray {
	return w.lastFrame
}
