//go:build !headless
// +build !headless

package graphics

import "image"

// Test helper methods for accessing internal state during testing

// GetImageBufferForTesting returns the staged RGBA frame
func (w *EbitengineWindow) GetImageBufferForTesting() *image.RGBA {
	if w.game == nil {
		return nil
	}
	return w.game.imageBuffer
}

// GetGameForTesting returns the internal game instance for testing purposes
func (w *EbitengineWindow) GetGameForTesting() *EbitengineGame {
	return w.game
}

// GetEmulatorUpdateFuncForTesting returns the emulator update function for testing
func (w *EbitengineWindow) GetEmulatorUpdateFuncForTesting() func() error {
	return w.emulatorUpdateFunc
}
