//go:build !headless
// +build !headless

package graphics

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"gbview/internal/screen"
)

// EbitengineBackend implements the Backend interface using Ebitengine
type EbitengineBackend struct {
	initialized bool
	config      Config
	game        *EbitengineGame
}

// EbitengineWindow implements the Window interface for Ebitengine
type EbitengineWindow struct {
	backend            *EbitengineBackend
	title              string
	width              int
	height             int
	game               *EbitengineGame
	running            bool
	events             []InputEvent
	emulatorUpdateFunc func() error
}

// EbitengineGame implements ebiten.Game for the viewer
type EbitengineGame struct {
	window       *EbitengineWindow
	frameImage   *ebiten.Image
	screenWidth  int
	screenHeight int
	windowWidth  int
	windowHeight int
	filter       ebiten.Filter

	// Frame staging: RenderFrame fills imageBuffer, Draw uploads it.
	imageBuffer *image.RGBA
	dirty       bool

	overlayText string
	showOverlay bool
	drawCount   int
}

// NewEbitengineBackend creates a new Ebitengine graphics backend
func NewEbitengineBackend() Backend {
	return &EbitengineBackend{}
}

// Initialize initializes the Ebitengine backend
func (b *EbitengineBackend) Initialize(config Config) error {
	if b.initialized {
		return fmt.Errorf("Ebitengine backend already initialized")
	}

	b.config = config
	b.initialized = true

	return nil
}

// CreateWindow creates an Ebitengine window. The frame size is taken from
// the first rendered frame.
func (b *EbitengineBackend) CreateWindow(title string, width, height int) (Window, error) {
	if !b.initialized {
		return nil, fmt.Errorf("backend not initialized")
	}

	if b.config.Headless {
		return nil, fmt.Errorf("cannot create window in headless mode")
	}

	game := &EbitengineGame{
		windowWidth:  width,
		windowHeight: height,
		filter:       ebiten.FilterNearest,
	}
	if b.config.Filter == "linear" {
		game.filter = ebiten.FilterLinear
	}

	window := &EbitengineWindow{
		backend: b,
		title:   title,
		width:   width,
		height:  height,
		game:    game,
		running: true,
	}

	game.window = window
	b.game = game

	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetVsyncEnabled(b.config.VSync)

	if b.config.Fullscreen {
		ebiten.SetFullscreen(true)
	}

	return window, nil
}

// Cleanup releases all Ebitengine resources
func (b *EbitengineBackend) Cleanup() error {
	b.initialized = false
	return nil
}

// IsHeadless returns true if running in headless mode
func (b *EbitengineBackend) IsHeadless() bool {
	return b.config.Headless
}

// GetName returns the backend name
func (b *EbitengineBackend) GetName() string {
	return "Ebitengine"
}

// EbitengineWindow implementation

// SetTitle sets the window title
func (w *EbitengineWindow) SetTitle(title string) {
	w.title = title
	ebiten.SetWindowTitle(title)
}

// GetSize returns window dimensions
func (w *EbitengineWindow) GetSize() (width, height int) {
	return w.width, w.height
}

// ShouldClose returns true if window should close
func (w *EbitengineWindow) ShouldClose() bool {
	return !w.running
}

// PollEvents returns and clears the queued input events
func (w *EbitengineWindow) PollEvents() []InputEvent {
	events := w.events
	w.events = nil
	return events
}

// RenderFrame stages a display frame for the next Draw
func (w *EbitengineWindow) RenderFrame(frame *screen.PixelArray) error {
	if w.game == nil {
		return fmt.Errorf("game not initialized")
	}
	if err := checkDisplayFrame(frame); err != nil {
		return err
	}

	g := w.game
	if g.imageBuffer == nil || g.screenWidth != frame.Width || g.screenHeight != frame.Height {
		g.screenWidth, g.screenHeight = frame.Width, frame.Height
		g.imageBuffer = image.NewRGBA(image.Rect(0, 0, frame.Width, frame.Height))
		g.frameImage = nil
	}

	fillRGBA(g.imageBuffer, frame)
	g.dirty = true
	return nil
}

// fillRGBA expands 3-channel display pixels to opaque RGBA
func fillRGBA(dst *image.RGBA, frame *screen.PixelArray) {
	for y := 0; y < frame.Height; y++ {
		src := frame.Row(y)
		row := dst.Pix[y*dst.Stride : y*dst.Stride+frame.Width*4]
		for x := 0; x < frame.Width; x++ {
			row[x*4+0] = src[x*3+0]
			row[x*4+1] = src[x*3+1]
			row[x*4+2] = src[x*3+2]
			row[x*4+3] = 0xFF
		}
	}
}

// SetOverlayText sets the debug text drawn over the frame when the overlay is on
func (w *EbitengineWindow) SetOverlayText(text string) {
	if w.game != nil {
		w.game.overlayText = text
	}
}

// SetOverlayVisible shows or hides the overlay
func (w *EbitengineWindow) SetOverlayVisible(visible bool) {
	if w.game != nil {
		w.game.showOverlay = visible
	}
}

// Cleanup releases window resources
func (w *EbitengineWindow) Cleanup() error {
	w.running = false
	return nil
}

// Run starts the Ebitengine game loop
func (w *EbitengineWindow) Run() error {
	if w.game == nil {
		return fmt.Errorf("game not initialized")
	}

	return ebiten.RunGame(w.game)
}

// SetEmulatorUpdateFunc sets the function called once per tick
func (w *EbitengineWindow) SetEmulatorUpdateFunc(updateFunc func() error) {
	w.emulatorUpdateFunc = updateFunc
}

// EbitengineGame implementation

// Update implements ebiten.Game.Update
func (g *EbitengineGame) Update() error {
	if g.window == nil {
		return nil
	}

	g.processInput()

	if !g.window.running {
		return ebiten.Termination
	}

	if g.window.emulatorUpdateFunc != nil {
		if err := g.window.emulatorUpdateFunc(); err != nil {
			if errors.Is(err, ErrStop) {
				return ebiten.Termination
			}
			// Log error but don't stop the game
			log.Printf("[Ebitengine] Update error: %v", err)
		}
	}

	return nil
}

// Draw implements ebiten.Game.Draw
func (g *EbitengineGame) Draw(dst *ebiten.Image) {
	dst.Fill(color.RGBA{R: 0, G: 0, B: 0, A: 255})

	if g.imageBuffer == nil {
		return
	}

	if g.frameImage == nil {
		g.frameImage = ebiten.NewImage(g.screenWidth, g.screenHeight)
		g.dirty = true
	}
	if g.dirty {
		g.frameImage.WritePixels(g.imageBuffer.Pix)
		g.dirty = false
	}

	scale, offsetX, offsetY := fitScale(g.screenWidth, g.screenHeight, g.windowWidth, g.windowHeight)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(offsetX, offsetY)
	op.Filter = g.filter
	dst.DrawImage(g.frameImage, op)

	if g.showOverlay && g.overlayText != "" {
		ebitenutil.DebugPrint(dst, g.overlayText)
	}

	g.drawCount++
}

// fitScale returns the largest uniform scale that fits src in dst and the
// offsets that center it
func fitScale(srcW, srcH, dstW, dstH int) (scale, offsetX, offsetY float64) {
	scaleX := float64(dstW) / float64(srcW)
	scaleY := float64(dstH) / float64(srcH)

	scale = scaleX
	if scaleY < scaleX {
		scale = scaleY
	}

	offsetX = (float64(dstW) - float64(srcW)*scale) / 2
	offsetY = (float64(dstH) - float64(srcH)*scale) / 2
	return scale, offsetX, offsetY
}

// Layout implements ebiten.Game.Layout
func (g *EbitengineGame) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	g.windowWidth = outsideWidth
	g.windowHeight = outsideHeight
	return outsideWidth, outsideHeight
}

// viewerKeys maps Ebitengine keys to viewer keys
var viewerKeys = map[ebiten.Key]Key{
	ebiten.KeyEscape: KeyEscape,
	ebiten.KeySpace:  KeySpace,
	ebiten.KeyTab:    KeyTab,
	ebiten.KeyF12:    KeyF12,
}

// processInput queues key events for PollEvents
func (g *EbitengineGame) processInput() {
	var events []InputEvent

	for ebitenKey, key := range viewerKeys {
		if inpututil.IsKeyJustPressed(ebitenKey) {
			events = append(events, InputEvent{Type: InputEventTypeKey, Key: key, Pressed: true})
		} else if inpututil.IsKeyJustReleased(ebitenKey) {
			events = append(events, InputEvent{Type: InputEventTypeKey, Key: key, Pressed: false})
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		events = append(events, InputEvent{Type: InputEventTypeQuit, Pressed: true})
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		g.showOverlay = !g.showOverlay
	}

	g.window.events = append(g.window.events, events...)
}
