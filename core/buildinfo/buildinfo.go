// Package buildinfo carries version metadata injected at link time:
//
//	-X 'github.com/m3rciful/twinbots/core/buildinfo.Version=v1.2.3'
//	-X 'github.com/m3rciful/twinbots/core/buildinfo.Commit=abcdef0'
//	-X 'github.com/m3rciful/twinbots/core/buildinfo.Date=2026-10-16T12:00:00Z'
package buildinfo

import "fmt"

var (
	// Version reports the semantic version or tag of the build.
	Version = "dev"
	// Commit reports the source control commit used for the build.
	Commit = "local"
	// Date reports the build timestamp in RFC3339 format.
	Date = ""
)

// String renders "version (commit)" for startup banners and /stats replies.
func String() string {
	return fmt.Sprintf("%s (%s)", Version, Commit)
}
