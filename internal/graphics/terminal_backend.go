package graphics

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"gbview/internal/screen"
)

// TerminalBackend implements the Backend interface for terminal-based rendering
type TerminalBackend struct {
	initialized bool
	config      Config
}

// TerminalWindow renders frames with ANSI true colour half blocks: each
// character cell shows two vertically stacked pixels.
type TerminalWindow struct {
	title   string
	width   int
	height  int
	running bool
	out     io.Writer
	step    int // source pixels per cell column
}

// NewTerminalBackend creates a new terminal graphics backend
func NewTerminalBackend() Backend {
	return &TerminalBackend{}
}

// Initialize initializes the terminal backend
func (b *TerminalBackend) Initialize(config Config) error {
	if b.initialized {
		return fmt.Errorf("terminal backend already initialized")
	}

	b.config = config
	b.initialized = true

	return nil
}

// CreateWindow creates a terminal "window"
func (b *TerminalBackend) CreateWindow(title string, width, height int) (Window, error) {
	if !b.initialized {
		return nil, fmt.Errorf("backend not initialized")
	}

	return &TerminalWindow{
		title:   title,
		width:   width,
		height:  height,
		running: true,
		out:     os.Stdout,
		step:    2,
	}, nil
}

// Cleanup releases all terminal resources
func (b *TerminalBackend) Cleanup() error {
	b.initialized = false
	return nil
}

// IsHeadless returns false (terminal has basic output)
func (b *TerminalBackend) IsHeadless() bool {
	return false
}

// GetName returns the backend name
func (b *TerminalBackend) GetName() string {
	return "Terminal"
}

// TerminalWindow implementation

// SetTitle sets the terminal title
func (w *TerminalWindow) SetTitle(title string) {
	w.title = title
	fmt.Fprintf(w.out, "\033]0;%s\007", title)
}

// GetSize returns window dimensions
func (w *TerminalWindow) GetSize() (width, height int) {
	return w.width, w.height
}

// ShouldClose returns true if window should close
func (w *TerminalWindow) ShouldClose() bool {
	return !w.running
}

// PollEvents returns empty events list (no input handling)
func (w *TerminalWindow) PollEvents() []InputEvent {
	return nil
}

// RenderFrame draws the frame at the top-left of the terminal
func (w *TerminalWindow) RenderFrame(frame *screen.PixelArray) error {
	if err := checkDisplayFrame(frame); err != nil {
		return err
	}

	out := bufio.NewWriter(w.out)
	out.WriteString("\033[H")

	rowStep := 2 * w.step
	for y := 0; y < frame.Height; y += rowStep {
		for x := 0; x < frame.Width; x += w.step {
			top := frame.Pixel(y, x)
			bottom := top
			if y+w.step < frame.Height {
				bottom = frame.Pixel(y+w.step, x)
			}
			fmt.Fprintf(out, "\033[38;2;%d;%d;%dm\033[48;2;%d;%d;%dm▀",
				top[0], top[1], top[2], bottom[0], bottom[1], bottom[2])
		}
		out.WriteString("\033[0m\n")
	}

	return out.Flush()
}

// SetOutput redirects terminal output
func (w *TerminalWindow) SetOutput(out io.Writer) {
	w.out = out
}

// Cleanup releases window resources
func (w *TerminalWindow) Cleanup() error {
	w.running = false
	return nil
}
