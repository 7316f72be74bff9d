package version

import (
	"fmt"
	"runtime"
)

// Set at build time with -ldflags "-X github.com/kylemclaren/clockbar/internal/version.Version=v1.2.3".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Short returns just the version string
func Short() string {
	return Version
}

// Info returns the full version line
func Info() string {
	return fmt.Sprintf("clockbar %s (commit %s, built %s, %s/%s)", Version, Commit, Date, runtime.GOOS, runtime.GOARCH)
}
