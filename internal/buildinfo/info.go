// Package buildinfo carries the version stamped into the tally binary.
package buildinfo

import "fmt"

// Set with -ldflags "-X github.com/tallywallet/tallywallet/internal/buildinfo.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String renders the version line shown by tally --version.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}
