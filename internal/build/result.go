package build

import (
	"time"

	"git.home.luguber.info/inful/snowbow/internal/config"
	"git.home.luguber.info/inful/snowbow/internal/manifest"
	"git.home.luguber.info/inful/snowbow/internal/render"
	"git.home.luguber.info/inful/snowbow/internal/resolve"
	"git.home.luguber.info/inful/snowbow/internal/vfs"
)

// BuildStatus represents the outcome of a build pass.
type BuildStatus string

const (
	// BuildStatusSuccess indicates the pass completed and produced a file system.
	BuildStatusSuccess BuildStatus = "success"

	// BuildStatusFailed indicates a stage failed.
	BuildStatusFailed BuildStatus = "failed"

	// BuildStatusCancelled indicates the context was cancelled during the pass.
	BuildStatusCancelled BuildStatus = "cancelled"
)

// IsSuccess returns true if the build completed successfully.
func (s BuildStatus) IsSuccess() bool { return s == BuildStatusSuccess }

// Request selects per-pass inputs.
type Request struct {
	// Trigger names what started the pass (see metrics.Trigger*).
	Trigger string
	// Time overrides the build time. Zero uses the generator's options.
	Time time.Time
}

// Result contains the outcome of a build pass. FS, Graph and Manifest are nil
// unless the pass succeeded. Theme is set once the theme has loaded.
type Result struct {
	ID      string
	Trigger string
	Status  BuildStatus
	Info    render.BuildInfo

	Theme    *config.Theme
	FS       *vfs.FS
	Graph    *resolve.Graph
	Manifest *manifest.Manifest

	StartTime time.Time
	Duration  time.Duration
	Timings   map[StageName]time.Duration
	// FailedStage is the stage that returned the error, if any.
	FailedStage StageName
	Err         error
}

// Files returns the number of output files, or 0 for a failed pass.
func (r *Result) Files() int {
	if r.FS == nil {
		return 0
	}
	return r.FS.Len()
}

// Articles returns the number of logical articles, or 0 for a failed pass.
func (r *Result) Articles() int {
	if r.Graph == nil {
		return 0
	}
	return r.Graph.ArticleCount()
}
