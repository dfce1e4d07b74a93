// Package version provides build and version information for pocketbible.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version is the release version, set via
// -ldflags "-X github.com/Aman-CERP/pocketbible/pkg/version.Version=...".
// Without ldflags it falls back to the module version recorded by
// `go install`, then to "dev".
var Version = "dev"

// Build information set via ldflags at build time.
var (
	// Commit is the git commit hash.
	Commit = "unknown"

	// Date is the build date in RFC3339 format.
	Date = "unknown"

	// GoVersion is the Go version used to build the binary.
	GoVersion = runtime.Version()
)

func init() {
	if Version != "dev" {
		return
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		Version = moduleVersion(info, Version)
	}
}

// moduleVersion returns the main module version unless it is unset or a
// local build.
func moduleVersion(info *debug.BuildInfo, fallback string) string {
	v := info.Main.Version
	if v == "" || v == "(devel)" {
		return fallback
	}
	return v
}

// BuildInfo is structured version information for JSON output.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// String returns a formatted version string with all build info.
func String() string {
	return fmt.Sprintf("pocketbible %s (commit: %s, built: %s, go: %s)",
		Version, Commit, Date, GoVersion)
}

// Short returns just the version string.
func Short() string {
	return Version
}

// GetInfo returns structured version information.
func GetInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}
