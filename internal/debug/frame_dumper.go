// Package debug provides frame capture utilities: screenshots, scanline
// register tables and raw buffer dumps.
package debug

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/tiff"

	"gbview/internal/screen"
)

// ImageFormat is a screenshot file format
type ImageFormat string

const (
	FormatPNG  ImageFormat = "png"
	FormatBMP  ImageFormat = "bmp"
	FormatTIFF ImageFormat = "tiff"
)

// ParseImageFormat maps a name or extension to an ImageFormat
func ParseImageFormat(name string) (ImageFormat, error) {
	switch strings.TrimPrefix(strings.ToLower(name), ".") {
	case "png", "":
		return FormatPNG, nil
	case "bmp":
		return FormatBMP, nil
	case "tif", "tiff":
		return FormatTIFF, nil
	default:
		return "", fmt.Errorf("unsupported image format %q", name)
	}
}

// FrameDumper writes views of a Surface to files
type FrameDumper struct {
	surface      *screen.Surface
	outputDir    string
	dumpEnabled  bool
	dumpCount    int
	maxDumps     int
	dumpInterval int // Dump every N frames
	format       ImageFormat
	scale        int
}

// NewFrameDumper creates a new frame dumper
func NewFrameDumper(surface *screen.Surface, outputDir string) *FrameDumper {
	return &FrameDumper{
		surface:      surface,
		outputDir:    outputDir,
		maxDumps:     10,
		dumpInterval: 1,
		format:       FormatPNG,
		scale:        1,
	}
}

// Enable activates frame dumping and restarts the dump count
func (fd *FrameDumper) Enable() error {
	if err := os.MkdirAll(fd.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create dump directory: %w", err)
	}
	fd.dumpCount = 0
	fd.dumpEnabled = true
	return nil
}

// Disable deactivates frame dumping
func (fd *FrameDumper) Disable() {
	fd.dumpEnabled = false
}

// IsEnabled reports whether dumping is active
func (fd *FrameDumper) IsEnabled() bool {
	return fd.dumpEnabled
}

// SetMaxDumps sets the maximum number of frames DumpFrame writes; 0 means unlimited
func (fd *FrameDumper) SetMaxDumps(max int) {
	fd.maxDumps = max
}

// SetDumpInterval sets the interval between frame dumps
func (fd *FrameDumper) SetDumpInterval(interval int) {
	if interval < 1 {
		interval = 1
	}
	fd.dumpInterval = interval
}

// SetFormat sets the screenshot format
func (fd *FrameDumper) SetFormat(format ImageFormat) {
	fd.format = format
}

// SetScale sets the integer upscale factor for screenshots
func (fd *FrameDumper) SetScale(scale int) {
	if scale < 1 {
		scale = 1
	}
	fd.scale = scale
}

// SetOutputDir changes the directory later dumps are written to
func (fd *FrameDumper) SetOutputDir(dir string) {
	fd.outputDir = dir
}

// OutputDir returns the dump directory
func (fd *FrameDumper) OutputDir() string {
	return fd.outputDir
}

// DumpCount returns the number of frames written by DumpFrame
func (fd *FrameDumper) DumpCount() int {
	return fd.dumpCount
}

// DumpFrame writes the screenshot, scanline table and raw buffer for frameNum
// when dumping is enabled and the interval and limit allow it. A missing image
// capability skips the screenshot only.
func (fd *FrameDumper) DumpFrame(frameNum uint64) error {
	if !fd.dumpEnabled {
		return nil
	}
	if frameNum%uint64(fd.dumpInterval) != 0 {
		return nil
	}
	if fd.maxDumps > 0 && fd.dumpCount >= fd.maxDumps {
		return nil
	}

	if _, err := fd.SaveScreenshot(frameNum); err != nil && !errors.Is(err, screen.ErrImageUnavailable) {
		return err
	}
	if _, err := fd.DumpScanlineTable(frameNum); err != nil {
		return err
	}
	if _, err := fd.DumpRaw(frameNum); err != nil {
		return err
	}

	fd.dumpCount++
	return nil
}

// SaveScreenshot encodes the current frame image and returns the file path
func (fd *FrameDumper) SaveScreenshot(frameNum uint64) (string, error) {
	img, err := fd.surface.DecodedImage()
	if err != nil {
		return "", err
	}

	path := fd.path("frame", frameNum, string(fd.format))
	err = writeFile(path, func(w io.Writer) error {
		return encodeImage(w, scaleImage(img, fd.scale), fd.format)
	})
	if err != nil {
		return "", fmt.Errorf("failed to save screenshot: %w", err)
	}
	return path, nil
}

// DumpScanlineTable writes the per-line viewport registers as text
func (fd *FrameDumper) DumpScanlineTable(frameNum uint64) (string, error) {
	table, err := fd.surface.ScanlineTable()
	if err != nil {
		return "", err
	}

	path := fd.path("scanlines", frameNum, "txt")
	err = writeFile(path, func(w io.Writer) error {
		return WriteScanlineTable(w, table, frameNum)
	})
	if err != nil {
		return "", fmt.Errorf("failed to dump scanline table: %w", err)
	}
	return path, nil
}

// DumpRaw writes the raw frame buffer bytes
func (fd *FrameDumper) DumpRaw(frameNum uint64) (string, error) {
	path := fd.path("frame", frameNum, "rgba")
	err := writeFile(path, func(w io.Writer) error {
		_, err := w.Write(fd.surface.RawBuffer())
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to dump raw buffer: %w", err)
	}
	return path, nil
}

// WriteScanlineTable formats a scanline table, one line per scanline
func WriteScanlineTable(w io.Writer, table screen.ScanlineTable, frameNum uint64) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "Scanline Register Dump\n")
	fmt.Fprintf(bw, "Frame Number: %d\n", frameNum)
	fmt.Fprintf(bw, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(bw, "Lines: %d\n", len(table))
	fmt.Fprintf(bw, "===================\n")
	fmt.Fprintf(bw, "Line  SCX SCY  WX  WY\n")

	for y, row := range table {
		fmt.Fprintf(bw, "%03d  %3d %3d %3d %3d\n",
			y, row[screen.FieldSCX], row[screen.FieldSCY], row[screen.FieldWX], row[screen.FieldWY])
	}

	return bw.Flush()
}

func (fd *FrameDumper) path(kind string, frameNum uint64, ext string) string {
	return filepath.Join(fd.outputDir, fmt.Sprintf("%s_%06d.%s", kind, frameNum, ext))
}

// scaleImage upscales img by an integer factor with nearest neighbour sampling
func scaleImage(img image.Image, scale int) image.Image {
	if scale <= 1 {
		return img
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

func encodeImage(w io.Writer, img image.Image, format ImageFormat) error {
	switch format {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatBMP:
		return bmp.Encode(w, img)
	case FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("unsupported image format %q", format)
	}
}

func writeFile(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
