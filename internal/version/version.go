// Package version holds build metadata stamped in by the linker.
package version

// Version is the release version, set at build time:
// go build -ldflags "-X git.home.luguber.info/inful/snowbow/internal/version.Version=v0.3.0".
var Version = "dev"

// Build metadata, set the same way.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String returns a one-line description of the build.
func String() string {
	return Version + " (" + GitCommit + ", " + BuildTime + ")"
}
