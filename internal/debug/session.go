package debug

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gbview/internal/screen"
)

// CaptureSession groups the dumps of one run under a timestamped directory.
// Each Start opens a fresh directory below the root.
type CaptureSession struct {
	root         string
	outputDir    string
	frameDumper  *FrameDumper
	sessionID    string
	startTime    time.Time
	enabled      bool
	targetFrames int
	lastFrame    uint64
	framesSeen   int
	now          func() time.Time
}

// NewCaptureSession creates a capture session below outputDir
func NewCaptureSession(surface *screen.Surface, outputDir string) *CaptureSession {
	return newCaptureSession(surface, outputDir, time.Now)
}

func newCaptureSession(surface *screen.Surface, outputDir string, now func() time.Time) *CaptureSession {
	return &CaptureSession{
		root:         outputDir,
		frameDumper:  NewFrameDumper(surface, outputDir),
		targetFrames: 5, // Capture first 5 frames by default
		now:          now,
	}
}

// SetTargetFrames sets how many frames the session captures
func (cs *CaptureSession) SetTargetFrames(frames int) {
	if frames < 1 {
		frames = 1
	}
	cs.targetFrames = frames
}

// FrameDumper returns the dumper used by the session
func (cs *CaptureSession) FrameDumper() *FrameDumper {
	return cs.frameDumper
}

// OutputDir returns the directory of the current or last session
func (cs *CaptureSession) OutputDir() string {
	return cs.outputDir
}

// SessionID returns the identifier of the current or last session
func (cs *CaptureSession) SessionID() string {
	return cs.sessionID
}

// IsActive reports whether the session is capturing
func (cs *CaptureSession) IsActive() bool {
	return cs.enabled
}

// Start creates the session directory and begins capturing
func (cs *CaptureSession) Start() error {
	if cs.enabled {
		return fmt.Errorf("capture session already active")
	}

	if err := os.MkdirAll(cs.root, 0755); err != nil {
		return fmt.Errorf("failed to create capture output directory: %w", err)
	}

	cs.startTime = cs.now()
	cs.sessionID = cs.nextSessionID()
	cs.outputDir = filepath.Join(cs.root, cs.sessionID)
	cs.lastFrame = 0
	cs.framesSeen = 0

	cs.frameDumper.SetOutputDir(cs.outputDir)
	cs.frameDumper.SetMaxDumps(cs.targetFrames)
	if err := cs.frameDumper.Enable(); err != nil {
		return err
	}

	cs.enabled = true
	screen.Logger().Info("capture session started", "id", cs.sessionID, "dir", cs.outputDir)

	return cs.writeSessionInfo()
}

// Stop ends the session and writes a summary
func (cs *CaptureSession) Stop() error {
	if !cs.enabled {
		return fmt.Errorf("capture session not active")
	}

	cs.enabled = false
	cs.frameDumper.Disable()
	screen.Logger().Info("capture session stopped", "id", cs.sessionID, "dumps", cs.frameDumper.DumpCount())

	return cs.writeSummary(cs.now())
}

// nextSessionID names the session after its start time, adding a counter
// when a session from the same second already exists
func (cs *CaptureSession) nextSessionID() string {
	base := fmt.Sprintf("capture_%s", cs.startTime.Format("20060102_150405"))
	id := base
	for n := 2; ; n++ {
		if _, err := os.Stat(filepath.Join(cs.root, id)); err != nil {
			return id
		}
		id = fmt.Sprintf("%s_%d", base, n)
	}
}

// ProcessFrame dumps the current surface state for frameNum
func (cs *CaptureSession) ProcessFrame(frameNum uint64) error {
	if !cs.enabled {
		return nil
	}

	cs.lastFrame = frameNum
	cs.framesSeen++

	if err := cs.frameDumper.DumpFrame(frameNum); err != nil {
		return fmt.Errorf("failed to dump frame %d: %w", frameNum, err)
	}
	return nil
}

func (cs *CaptureSession) writeSessionInfo() error {
	file, err := os.Create(filepath.Join(cs.outputDir, "session_info.txt"))
	if err != nil {
		return err
	}
	defer file.Close()

	fmt.Fprintf(file, "Frame Capture Session\n")
	fmt.Fprintf(file, "=====================\n\n")
	fmt.Fprintf(file, "Session ID: %s\n", cs.sessionID)
	fmt.Fprintf(file, "Start Time: %s\n", cs.startTime.Format(time.RFC3339))
	fmt.Fprintf(file, "Output Directory: %s\n", cs.outputDir)
	fmt.Fprintf(file, "Target Frames: %d\n", cs.targetFrames)
	fmt.Fprintf(file, "Screenshot Format: %s\n", cs.frameDumper.format)

	return nil
}

func (cs *CaptureSession) writeSummary(end time.Time) error {
	file, err := os.Create(filepath.Join(cs.outputDir, "summary.txt"))
	if err != nil {
		return err
	}
	defer file.Close()

	fmt.Fprintf(file, "Frame Capture Session - Summary\n")
	fmt.Fprintf(file, "===============================\n\n")
	fmt.Fprintf(file, "Session ID: %s\n", cs.sessionID)
	fmt.Fprintf(file, "Duration: %v\n", end.Sub(cs.startTime))
	fmt.Fprintf(file, "End Time: %s\n", end.Format(time.RFC3339))
	fmt.Fprintf(file, "Frames Seen: %d\n", cs.framesSeen)
	fmt.Fprintf(file, "Last Frame: %d\n", cs.lastFrame)
	fmt.Fprintf(file, "Frames Dumped: %d\n", cs.frameDumper.DumpCount())

	return nil
}
