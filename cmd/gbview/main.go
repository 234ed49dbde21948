// Package main implements the gbview frame surface viewer executable.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gbview/internal/app"
	"gbview/internal/debug"
	"gbview/internal/version"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
}

// run parses flags and drives the viewer. Deferred cleanup finishes before
// main decides the exit status.
func run(args []string) error {
	fs := flag.NewFlagSet("gbview", flag.ExitOnError)
	var (
		configFile = fs.String("config", "", "Path to configuration file")
		nogui      = fs.Bool("nogui", false, "Run without GUI (headless mode)")
		frames     = fs.Int("frames", 60, "Frames to run in headless mode")
		backend    = fs.String("backend", "", "Graphics backend: ebitengine, headless, terminal")
		captureDir = fs.String("capture-dir", "", "Directory for screenshots and dumps (starts a capture session)")
		format     = fs.String("format", "", "Screenshot format: png, bmp, tiff")
		table      = fs.Bool("table", false, "Print the scanline register table of the last frame")
		debugMode  = fs.Bool("debug", false, "Enable debug logging and the register overlay")
		help       = fs.Bool("help", false, "Show help message")
		showVer    = fs.Bool("version", false, "Show version information")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *help {
		printUsage(fs)
		return nil
	}

	if *showVer {
		version.PrintBuildInfo(os.Stdout)
		return nil
	}

	configPath := *configFile
	if configPath == "" {
		configPath = app.GetDefaultConfigPath()
	}

	config := app.NewConfig()
	if err := config.LoadFromFile(configPath); err != nil {
		log.Printf("Could not load config from %s, using defaults: %v", configPath, err)
		config = app.NewConfig()
	}

	if *backend != "" {
		config.Video.Backend = *backend
	}
	if *captureDir != "" {
		config.Capture.Directory = *captureDir
		config.Capture.AutoStart = true
	}
	if *format != "" {
		config.Capture.Format = *format
	}
	if *debugMode {
		config.Debug.LogLevel = "DEBUG"
		config.Debug.ShowOverlay = true
	}

	application, err := app.NewApplicationWithConfig(config, *nogui, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	defer func() {
		if err := application.Cleanup(); err != nil {
			log.Printf("Application cleanup error: %v", err)
		}
	}()

	setupGracefulShutdown(application)

	if *nogui {
		fmt.Printf("Running %d frames in headless mode...\n", *frames)
		if err := application.RunHeadless(*frames); err != nil {
			return fmt.Errorf("headless run failed: %w", err)
		}
	} else {
		if err := runGUIMode(application); err != nil {
			return fmt.Errorf("GUI mode failed: %w", err)
		}
	}

	if *table {
		if err := printScanlineTable(application); err != nil {
			log.Printf("Scanline table unavailable: %v", err)
		}
	}
	return nil
}

// runGUIMode runs the windowed viewer
func runGUIMode(application *app.Application) error {
	config := application.GetConfig()
	width, height := application.Surface().BufferDims()
	windowWidth, windowHeight := config.GetWindowResolution(width, height)
	fmt.Printf("Window: %dx%d (Scale: %dx), backend %s\n", windowWidth, windowHeight, config.Window.Scale, config.Video.Backend)
	fmt.Printf("Video: %s, VSync: %s\n", config.Video.Filter, enabledString(config.Video.VSync))

	if err := application.Run(); err != nil {
		return fmt.Errorf("application run failed: %w", err)
	}

	fmt.Printf("Frames rendered: %d\n", application.GetFrameCount())
	fmt.Printf("Session time: %v\n", application.GetUptime())
	fmt.Printf("Average FPS: %.1f\n", application.GetFPS())
	return nil
}

// printScanlineTable writes the last frame's registers to stdout
func printScanlineTable(application *app.Application) error {
	t, err := application.Surface().ScanlineTable()
	if err != nil {
		return err
	}
	return debug.WriteScanlineTable(os.Stdout, t, application.LCD().GetFrameCount())
}

// setupGracefulShutdown stops the main loop on interrupt
func setupGracefulShutdown(application *app.Application) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Println("\nInterrupt received, shutting down...")
		application.Stop()
	}()
}

// enabledString returns "enabled" or "disabled" based on boolean value
func enabledString(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}

func printUsage(fs *flag.FlagSet) {
	fmt.Println("gbview - Game Boy LCD frame surface viewer")
	fmt.Println()
	fmt.Println("DESCRIPTION:")
	fmt.Println("  Drives a scanline-stepped LCD with a demo scene and shows the frame")
	fmt.Println("  surface: display pixels, per-line scroll registers and screenshots.")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  gbview [options]                     # Start GUI mode")
	fmt.Println("  gbview -nogui -frames 120 [options]  # Run headless mode")
	fmt.Println()
	fmt.Println("OPTIONS:")
	fs.PrintDefaults()
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  gbview -debug                        # Show the register overlay")
	fmt.Println("  gbview -backend terminal             # Render with ANSI half blocks")
	fmt.Println("  gbview -nogui -table                 # Print the last scanline table")
	fmt.Println("  gbview -nogui -capture-dir out -format tiff")
	fmt.Println()
	fmt.Println("CONTROLS:")
	fmt.Println("    Escape            - Quit")
	fmt.Println("    Space             - Pause")
	fmt.Println("    Tab               - Toggle overlay")
	fmt.Println("    F12               - Screenshot")
	fmt.Println()
	fmt.Println("CONFIGURATION:")
	fmt.Printf("  Config file: %s\n", app.GetDefaultConfigPath())
	fmt.Println("  Captures:    ./captures/")
}
