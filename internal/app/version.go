package app

import (
	"fmt"
	"runtime/debug"
)

// Version, Commit, and BuildTime are set via ldflags at build time.
// Example: go build -ldflags "-X github.com/heartmarshall/quotediary-backend/internal/app.Version=1.0.0"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// BuildVersion returns a formatted version string for startup logs. Without
// ldflags the commit falls back to the VCS revision stamped by the Go toolchain.
func BuildVersion() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, commit(), BuildTime)
}

func commit() string {
	if Commit != "unknown" {
		return Commit
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return Commit
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			return s.Value[:min(12, len(s.Value))]
		}
	}
	return Commit
}
