// Package app provides configuration management and the viewer application.
package app

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Config holds all application configuration
type Config struct {
	Window  WindowConfig  `json:"window"`
	Video   VideoConfig   `json:"video"`
	Capture CaptureConfig `json:"capture"`
	Scene   SceneConfig   `json:"scene"`
	Debug   DebugConfig   `json:"debug"`

	// Internal state
	configPath string
	loaded     bool
}

// WindowConfig contains window-related configuration
type WindowConfig struct {
	Scale      int  `json:"scale"` // LCD resolution multiplier
	Fullscreen bool `json:"fullscreen"`
}

// VideoConfig contains video rendering configuration
type VideoConfig struct {
	Backend    string  `json:"backend"` // "ebitengine", "headless", "terminal"
	Filter     string  `json:"filter"`  // "nearest", "linear"
	VSync      bool    `json:"vsync"`
	Brightness float32 `json:"brightness"`
	Contrast   float32 `json:"contrast"`
	Saturation float32 `json:"saturation"`
}

// CaptureConfig controls screenshots and frame dumps
type CaptureConfig struct {
	Directory  string `json:"directory"`
	Format     string `json:"format"` // "png", "bmp", "tiff"
	Scale      int    `json:"scale"`
	Interval   int    `json:"interval"`
	MaxDumps   int    `json:"max_dumps"`
	DumpFrames []int  `json:"dump_frames"` // headless backend PPM frames
	AutoStart  bool   `json:"auto_start"`  // start a capture session with the viewer
}

// SceneConfig selects the demo scene drawn by the LCD
type SceneConfig struct {
	Background string  `json:"background"` // lcd pattern name
	Window     string  `json:"window"`     // lcd pattern name, empty disables the window
	WindowX    int     `json:"window_x"`
	WindowY    int     `json:"window_y"`
	Effect     string  `json:"effect"` // "none", "scroll", "wave"
	Amplitude  float64 `json:"amplitude"`
}

// DebugConfig contains debugging options
type DebugConfig struct {
	LogLevel    string `json:"log_level"` // "DEBUG", "INFO", "WARN", "ERROR"
	ShowOverlay bool   `json:"show_overlay"`
}

// Scene effects
const (
	EffectNone   = "none"
	EffectScroll = "scroll"
	EffectWave   = "wave"
)

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Scale:      4, // 640x576
			Fullscreen: false,
		},
		Video: VideoConfig{
			Backend:    "ebitengine",
			Filter:     "nearest",
			VSync:      true,
			Brightness: 1.0,
			Contrast:   1.0,
			Saturation: 1.0,
		},
		Capture: CaptureConfig{
			Directory: "./captures",
			Format:    "png",
			Scale:     1,
			Interval:  1,
			MaxDumps:  10,
			AutoStart: false,
		},
		Scene: SceneConfig{
			Background: "checkerboard",
			Window:     "border",
			WindowX:    87,
			WindowY:    96,
			Effect:     EffectWave,
			Amplitude:  8,
		},
		Debug: DebugConfig{
			LogLevel:    "INFO",
			ShowOverlay: false,
		},
	}
}

// LoadFromFile loads configuration from a JSON file. A missing file is
// created with the current values.
func (c *Config) LoadFromFile(path string) error {
	c.configPath = path

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return c.SaveToFile(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := c.validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	c.loaded = true
	return nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	c.configPath = path
	return nil
}

// Save saves the configuration to the current config file
func (c *Config) Save() error {
	if c.configPath == "" {
		return fmt.Errorf("no config file path set")
	}

	return c.SaveToFile(c.configPath)
}

// validate rejects unusable values and resets out-of-range ones to defaults
func (c *Config) validate() error {
	switch c.Video.Backend {
	case "ebitengine", "headless", "terminal":
	default:
		return &ConfigError{Field: "video.backend", Value: c.Video.Backend, Err: fmt.Errorf("unknown backend")}
	}

	switch strings.ToLower(c.Capture.Format) {
	case "png", "bmp", "tif", "tiff":
	default:
		return &ConfigError{Field: "capture.format", Value: c.Capture.Format, Err: fmt.Errorf("unsupported format")}
	}

	if _, err := parseLogLevel(c.Debug.LogLevel); err != nil {
		return &ConfigError{Field: "debug.log_level", Value: c.Debug.LogLevel, Err: err}
	}

	if c.Window.Scale <= 0 {
		c.Window.Scale = 1
	}

	if c.Video.Filter != "nearest" && c.Video.Filter != "linear" {
		c.Video.Filter = "nearest"
	}

	if c.Video.Brightness < 0.1 || c.Video.Brightness > 3.0 {
		c.Video.Brightness = 1.0
	}

	if c.Video.Contrast < 0.1 || c.Video.Contrast > 3.0 {
		c.Video.Contrast = 1.0
	}

	if c.Video.Saturation < 0.0 || c.Video.Saturation > 3.0 {
		c.Video.Saturation = 1.0
	}

	if c.Capture.Scale <= 0 {
		c.Capture.Scale = 1
	}

	if c.Capture.Interval <= 0 {
		c.Capture.Interval = 1
	}

	if c.Capture.MaxDumps < 0 {
		c.Capture.MaxDumps = 0
	}

	switch c.Scene.Effect {
	case EffectNone, EffectScroll, EffectWave:
	default:
		c.Scene.Effect = EffectNone
	}

	if c.Scene.Amplitude < 0 || c.Scene.Amplitude > 128 {
		c.Scene.Amplitude = 8
	}

	if c.Scene.WindowX < 0 || c.Scene.WindowX > 255 {
		c.Scene.WindowX = 87
	}

	if c.Scene.WindowY < 0 || c.Scene.WindowY > 255 {
		c.Scene.WindowY = 96
	}

	return nil
}

// GetWindowResolution returns the window resolution based on scale
func (c *Config) GetWindowResolution(width, height int) (int, int) {
	return width * c.Window.Scale, height * c.Window.Scale
}

// IsLoaded returns whether the configuration was loaded from file
func (c *Config) IsLoaded() bool {
	return c.loaded
}

// GetConfigPath returns the path to the config file
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	data, err := json.Marshal(c)
	if err != nil {
		return NewConfig()
	}

	clone := &Config{}
	if err := json.Unmarshal(data, clone); err != nil {
		return NewConfig()
	}

	clone.configPath = c.configPath
	clone.loaded = c.loaded

	return clone
}

// NewLogger builds a text logger writing to w at the configured level
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLogLevel(c.Debug.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func parseLogLevel(name string) (slog.Level, error) {
	var level slog.Level
	if name == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo, err
	}
	return level, nil
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() string {
	return "./config/gbview.json"
}

// ConfigError represents configuration-related errors
type ConfigError struct {
	Field string
	Value interface{}
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in field '%s' with value '%v': %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
