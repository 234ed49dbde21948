// Package version reports gbview build information
package version

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"time"
)

// Set at build time via -ldflags "-X gbview/internal/version.Version=..."
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// BuildInfo describes the running binary
type BuildInfo struct {
	Version    string `json:"version"`
	GitCommit  string `json:"git_commit"`
	BuildTime  string `json:"build_time"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
	Arch       string `json:"arch"`
	CGOEnabled bool   `json:"cgo_enabled"`
	Tags       string `json:"tags,omitempty"`
}

// GetBuildInfo merges the ldflags values with the VCS and build settings
// recorded by the Go toolchain
func GetBuildInfo() BuildInfo {
	info := BuildInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS,
		Arch:      runtime.GOARCH,
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		applySettings(&info, bi.Settings)
	}

	return info
}

func applySettings(info *BuildInfo, settings []debug.BuildSetting) {
	for _, setting := range settings {
		switch setting.Key {
		case "vcs.revision":
			if info.GitCommit == "unknown" {
				info.GitCommit = setting.Value
			}
		case "vcs.time":
			if info.BuildTime == "unknown" {
				info.BuildTime = setting.Value
			}
		case "CGO_ENABLED":
			info.CGOEnabled = setting.Value == "1"
		case "-tags":
			info.Tags = setting.Value
		}
	}
}

// ShortCommit returns the first seven characters of the commit hash
func (b BuildInfo) ShortCommit() string {
	if len(b.GitCommit) > 7 {
		return b.GitCommit[:7]
	}
	return b.GitCommit
}

// GetVersion returns the version, with the commit appended for dev builds
func GetVersion() string {
	info := GetBuildInfo()
	if info.Version == "dev" && info.GitCommit != "unknown" {
		return fmt.Sprintf("dev-%s", info.ShortCommit())
	}
	return info.Version
}

// String returns a one-line version description
func (b BuildInfo) String() string {
	s := fmt.Sprintf("gbview version %s", b.Version)

	if b.GitCommit != "unknown" {
		s += fmt.Sprintf(" (commit %s)", b.ShortCommit())
	}

	if b.BuildTime != "unknown" {
		if t, err := time.Parse(time.RFC3339, b.BuildTime); err == nil {
			s += fmt.Sprintf(" built on %s", t.Format("2006-01-02 15:04:05"))
		} else {
			s += fmt.Sprintf(" built on %s", b.BuildTime)
		}
	}

	return s + fmt.Sprintf(" with %s for %s/%s", b.GoVersion, b.Platform, b.Arch)
}

// GetDetailedVersion returns a detailed version string
func GetDetailedVersion() string {
	return GetBuildInfo().String()
}

// PrintBuildInfo writes formatted build information to w
func PrintBuildInfo(w io.Writer) {
	info := GetBuildInfo()

	fmt.Fprintf(w, "gbview - Game Boy frame surface viewer\n")
	fmt.Fprintf(w, "Version:     %s\n", info.Version)
	fmt.Fprintf(w, "Git Commit:  %s\n", info.GitCommit)
	fmt.Fprintf(w, "Build Time:  %s\n", info.BuildTime)
	fmt.Fprintf(w, "Go Version:  %s\n", info.GoVersion)
	fmt.Fprintf(w, "Platform:    %s/%s\n", info.Platform, info.Arch)
	fmt.Fprintf(w, "CGO Enabled: %t\n", info.CGOEnabled)
	if info.Tags != "" {
		fmt.Fprintf(w, "Build Tags:  %s\n", info.Tags)
	}
}
