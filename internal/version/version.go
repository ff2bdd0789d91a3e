// Package version carries build metadata injected via ldflags.
package version

import "fmt"

// Build-time variables set by ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns the version, commit and build date.
func Info() (string, string, string) {
	return Version, GitCommit, BuildDate
}

// String returns a single-line version description.
func String() string {
	return fmt.Sprintf("docprep %s (commit %s, built %s)", Version, GitCommit, BuildDate)
}
