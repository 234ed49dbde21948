package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"gbview/internal/debug"
	"gbview/internal/graphics"
	"gbview/internal/lcd"
	"gbview/internal/screen"
)

// framePeriod is the LCD refresh period (70224 dots at 4.194304 MHz)
const framePeriod = time.Second * 70224 / 4194304

// Application drives the LCD scene, reads it through a Surface and presents
// the display array on a graphics backend
type Application struct {
	lcd     *lcd.LCD
	surface *screen.Surface

	graphicsBackend graphics.Backend
	window          graphics.Window
	videoProcessor  *graphics.VideoProcessor

	screenshots *debug.FrameDumper
	session     *debug.CaptureSession

	config *Config
	logger *slog.Logger

	running     atomic.Bool
	paused      bool
	initialized bool
	headless    bool

	// Scene state
	baseSCX uint8
	baseSCY uint8

	// Performance tracking
	frameCount  uint64
	startTime   time.Time
	lastFPSTime time.Time
	lastFPSN    uint64
	currentFPS  float64
}

// ApplicationError represents application-specific errors
type ApplicationError struct {
	Component string
	Operation string
	Err       error
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("Application %s error during %s: %v", e.Component, e.Operation, e.Err)
}

func (e *ApplicationError) Unwrap() error {
	return e.Err
}

// NewApplication creates a viewer from the config file at configPath
func NewApplication(configPath string) (*Application, error) {
	return NewApplicationWithMode(configPath, false)
}

// NewApplicationWithMode creates a viewer with optional headless mode. An
// unreadable config file falls back to defaults.
func NewApplicationWithMode(configPath string, headless bool) (*Application, error) {
	config := NewConfig()
	if configPath != "" {
		if err := config.LoadFromFile(configPath); err != nil {
			fmt.Fprintf(os.Stderr, "[APP_WARNING] Could not load config from %s, using defaults: %v\n", configPath, err)
			config = NewConfig()
		}
	}
	return NewApplicationWithConfig(config, headless, os.Stderr)
}

// NewApplicationWithConfig creates a viewer from config, logging to logOutput
func NewApplicationWithConfig(config *Config, headless bool, logOutput io.Writer) (*Application, error) {
	app := &Application{
		config:      config,
		logger:      config.NewLogger(logOutput),
		headless:    headless,
		startTime:   time.Now(),
		lastFPSTime: time.Now(),
	}
	screen.SetLogger(app.logger)

	if err := app.initializeComponents(); err != nil {
		return nil, &ApplicationError{
			Component: "initialization",
			Operation: "component setup",
			Err:       err,
		}
	}

	return app, nil
}

// initializeComponents builds the LCD scene, surface, backend and capture
func (app *Application) initializeComponents() error {
	app.lcd = lcd.New()
	if err := app.setupScene(); err != nil {
		return fmt.Errorf("failed to set up scene: %w", err)
	}

	surface, err := screen.NewSurface(app.lcd)
	if err != nil {
		return fmt.Errorf("failed to create surface: %w", err)
	}
	app.surface = surface

	if err := app.initializeGraphicsBackend(); err != nil {
		return fmt.Errorf("failed to initialize graphics backend: %w", err)
	}

	format, err := debug.ParseImageFormat(app.config.Capture.Format)
	if err != nil {
		return err
	}

	app.screenshots = debug.NewFrameDumper(app.surface, app.config.Capture.Directory)
	app.screenshots.SetFormat(format)
	app.screenshots.SetScale(app.config.Capture.Scale)

	app.session = debug.NewCaptureSession(app.surface, app.config.Capture.Directory)
	app.session.SetTargetFrames(app.config.Capture.MaxDumps)
	dumper := app.session.FrameDumper()
	dumper.SetFormat(format)
	dumper.SetScale(app.config.Capture.Scale)
	dumper.SetDumpInterval(app.config.Capture.Interval)

	if app.config.Capture.AutoStart {
		if err := app.session.Start(); err != nil {
			return fmt.Errorf("failed to start capture session: %w", err)
		}
	}

	app.initialized = true
	return nil
}

// setupScene loads the configured layers and raster effect into the LCD
func (app *Application) setupScene() error {
	scene := app.config.Scene

	if err := app.lcd.SetBackgroundLayer(lcd.NewPatternLayer(lcd.Pattern(scene.Background))); err != nil {
		return err
	}

	if scene.Window != "" {
		if err := app.lcd.SetWindowLayer(lcd.NewPatternLayer(lcd.Pattern(scene.Window))); err != nil {
			return err
		}
		lcdc := app.lcd.ReadRegister(lcd.RegLCDC)
		app.lcd.WriteRegister(lcd.RegLCDC, lcdc|lcd.LCDCWindow)
		app.lcd.WriteRegister(lcd.RegWX, uint8(scene.WindowX))
		app.lcd.WriteRegister(lcd.RegWY, uint8(scene.WindowY))
	}

	if scene.Effect == EffectWave {
		app.lcd.SetHBlankCallback(lcd.WaveEffect(app.lcd, func() uint8 { return app.baseSCX }, scene.Amplitude))
	}
	app.lcd.SetFrameCompleteCallback(app.advanceScene)

	return nil
}

// advanceScene moves the scroll registers once per completed frame
func (app *Application) advanceScene() {
	switch app.config.Scene.Effect {
	case EffectScroll:
		app.baseSCX++
		app.baseSCY++
	case EffectWave:
		app.baseSCX++
	default:
		return
	}
	app.lcd.WriteRegister(lcd.RegSCX, app.baseSCX)
	app.lcd.WriteRegister(lcd.RegSCY, app.baseSCY)
}

// initializeGraphicsBackend initializes the graphics backend based on configuration
func (app *Application) initializeGraphicsBackend() error {
	backendType := graphics.BackendType(app.config.Video.Backend)
	if app.headless {
		backendType = graphics.BackendHeadless
	}

	var err error
	app.graphicsBackend, err = graphics.CreateBackend(backendType)
	if err != nil {
		return fmt.Errorf("failed to create graphics backend: %w", err)
	}

	width, height := app.surface.BufferDims()
	windowWidth, windowHeight := app.config.GetWindowResolution(width, height)

	graphicsConfig := graphics.Config{
		WindowTitle:  "gbview - LCD frame surface",
		WindowWidth:  windowWidth,
		WindowHeight: windowHeight,
		Fullscreen:   app.config.Window.Fullscreen,
		VSync:        app.config.Video.VSync,
		Filter:       app.config.Video.Filter,
		Headless:     backendType == graphics.BackendHeadless,
		DumpFrames:   app.config.Capture.DumpFrames,
		OutputDir:    app.config.Capture.Directory,
	}

	if err := app.graphicsBackend.Initialize(graphicsConfig); err != nil {
		if backendType != graphics.BackendEbitengine {
			return err
		}
		// No display available: fall back to headless mode
		app.logger.Warn("ebitengine backend failed, falling back to headless", "err", err)
		app.graphicsBackend = graphics.NewHeadlessBackend()
		graphicsConfig.Headless = true
		if err := app.graphicsBackend.Initialize(graphicsConfig); err != nil {
			return fmt.Errorf("failed to initialize fallback headless backend: %w", err)
		}
		app.headless = true
	}

	app.window, err = app.graphicsBackend.CreateWindow(
		graphicsConfig.WindowTitle,
		graphicsConfig.WindowWidth,
		graphicsConfig.WindowHeight,
	)
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}

	if ew, ok := graphics.AsEbitengineWindow(app.window); ok {
		ew.SetOverlayVisible(app.config.Debug.ShowOverlay)
	}

	app.videoProcessor = graphics.NewVideoProcessor(
		app.config.Video.Brightness,
		app.config.Video.Contrast,
		app.config.Video.Saturation,
	)

	app.logger.Debug("graphics backend ready", "backend", app.graphicsBackend.GetName(),
		"width", windowWidth, "height", windowHeight)
	return nil
}

// RunFrame advances the LCD by one frame unless paused, then presents the
// display array and feeds the capture session
func (app *Application) RunFrame() error {
	if !app.initialized {
		return errors.New("application not initialized")
	}

	if !app.paused {
		app.lcd.RunFrame()
		app.frameCount++

		if err := app.session.ProcessFrame(app.lcd.GetFrameCount()); err != nil {
			app.logger.Error("capture failed", "frame", app.lcd.GetFrameCount(), "err", err)
		}
	}

	return app.render()
}

// render presents the current display array
func (app *Application) render() error {
	frame := app.videoProcessor.ProcessFrame(app.surface.DisplayPixelArray())
	if err := app.window.RenderFrame(frame); err != nil {
		return &ApplicationError{Component: "graphics", Operation: "render", Err: err}
	}

	if ew, ok := graphics.AsEbitengineWindow(app.window); ok {
		ew.SetOverlayText(app.overlayText())
	}
	return nil
}

// overlayText describes the live viewport registers
func (app *Application) overlayText() string {
	vp := app.surface.ViewportPosition()
	text := fmt.Sprintf("SCX %3d SCY %3d\nWX %4d WY %3d\nframe %d  %.1f fps",
		vp.Scroll.X, vp.Scroll.Y, vp.Window.X, vp.Window.Y, app.lcd.GetFrameCount(), app.currentFPS)
	if app.paused {
		text += "\npaused"
	}
	if app.session.IsActive() {
		text += "\ncapturing"
	}
	return text
}

// RunHeadless runs frames frames without pacing
func (app *Application) RunHeadless(frames int) error {
	if !app.initialized {
		return errors.New("application not initialized")
	}

	app.running.Store(true)
	defer app.running.Store(false)

	for i := 0; i < frames && app.running.Load(); i++ {
		if err := app.RunFrame(); err != nil {
			return err
		}
	}

	app.logger.Info("headless run finished", "frames", app.frameCount,
		"elapsed", time.Since(app.startTime).Round(time.Millisecond))
	return nil
}

// Run starts the main application loop
func (app *Application) Run() error {
	if !app.initialized {
		return errors.New("application not initialized")
	}

	app.running.Store(true)
	app.startTime = time.Now()
	app.lastFPSTime = app.startTime

	app.logger.Debug("starting viewer", "backend", app.graphicsBackend.GetName())

	if ew, ok := graphics.AsEbitengineWindow(app.window); ok {
		ew.SetEmulatorUpdateFunc(app.windowTick)
		return ew.Run()
	}

	ticker := time.NewTicker(framePeriod)
	defer ticker.Stop()

	for app.running.Load() {
		if err := app.tick(); err != nil {
			app.logger.Error("frame failed", "err", err)
		}
		<-ticker.C
	}

	app.logger.Debug("viewer loop ended")
	return nil
}

// tick handles input and runs one frame
func (app *Application) tick() error {
	app.processInput()

	if err := app.RunFrame(); err != nil {
		return err
	}
	app.updateFPS(time.Now())

	if app.window.ShouldClose() {
		app.Stop()
	}
	return nil
}

// windowTick runs tick for a window-driven loop and asks the window to
// return once the viewer stops
func (app *Application) windowTick() error {
	if err := app.tick(); err != nil {
		return err
	}
	if !app.running.Load() {
		return graphics.ErrStop
	}
	return nil
}

// processInput handles key events from the window
func (app *Application) processInput() {
	for _, event := range app.window.PollEvents() {
		switch event.Type {
		case graphics.InputEventTypeQuit:
			app.Stop()
			return

		case graphics.InputEventTypeKey:
			if !event.Pressed {
				continue
			}
			app.handleKeyInput(event.Key)
		}
	}
}

// handleKeyInput reacts to a pressed key
func (app *Application) handleKeyInput(key graphics.Key) {
	switch key {
	case graphics.KeySpace:
		app.TogglePause()
	case graphics.KeyF12:
		if path, err := app.TakeScreenshot(); err != nil {
			app.logger.Warn("screenshot failed", "err", err)
		} else {
			app.logger.Info("screenshot saved", "path", path)
		}
	}
}

// TakeScreenshot saves the current frame image to the capture directory
func (app *Application) TakeScreenshot() (string, error) {
	if err := os.MkdirAll(app.screenshots.OutputDir(), 0755); err != nil {
		return "", fmt.Errorf("failed to create screenshot directory: %w", err)
	}
	return app.screenshots.SaveScreenshot(app.lcd.GetFrameCount())
}

// updateFPS recomputes the frame rate once per second
func (app *Application) updateFPS(now time.Time) {
	elapsed := now.Sub(app.lastFPSTime)
	if elapsed < time.Second {
		return
	}
	app.currentFPS = float64(app.frameCount-app.lastFPSN) / elapsed.Seconds()
	app.lastFPSN = app.frameCount
	app.lastFPSTime = now
}

// StartCapture begins a capture session
func (app *Application) StartCapture() error {
	return app.session.Start()
}

// StopCapture ends the capture session
func (app *Application) StopCapture() error {
	return app.session.Stop()
}

// Stop stops the main loop
func (app *Application) Stop() {
	app.running.Store(false)
}

// TogglePause toggles pause state
func (app *Application) TogglePause() {
	app.paused = !app.paused
}

// IsRunning returns whether the main loop is active
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// IsPaused returns whether the scene is frozen
func (app *Application) IsPaused() bool {
	return app.paused
}

// GetFPS returns the measured frame rate
func (app *Application) GetFPS() float64 {
	return app.currentFPS
}

// GetFrameCount returns the number of frames advanced
func (app *Application) GetFrameCount() uint64 {
	return app.frameCount
}

// GetUptime returns the time since the viewer started
func (app *Application) GetUptime() time.Duration {
	return time.Since(app.startTime)
}

// GetConfig returns the active configuration
func (app *Application) GetConfig() *Config {
	return app.config
}

// Surface returns the view over the LCD
func (app *Application) Surface() *screen.Surface {
	return app.surface
}

// LCD returns the renderer
func (app *Application) LCD() *lcd.LCD {
	return app.lcd
}

// Window returns the presentation window
func (app *Application) Window() graphics.Window {
	return app.window
}

// Cleanup stops capture and releases graphics resources
func (app *Application) Cleanup() error {
	var lastErr error

	if app.session != nil && app.session.IsActive() {
		if err := app.session.Stop(); err != nil {
			lastErr = err
			app.logger.Error("capture session cleanup failed", "err", err)
		}
	}

	if app.window != nil {
		if err := app.window.Cleanup(); err != nil {
			lastErr = err
			app.logger.Error("window cleanup failed", "err", err)
		}
	}

	if app.graphicsBackend != nil {
		if err := app.graphicsBackend.Cleanup(); err != nil {
			lastErr = err
			app.logger.Error("graphics backend cleanup failed", "err", err)
		}
	}

	app.initialized = false
	return lastErr
}
