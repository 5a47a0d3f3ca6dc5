package server

import (
	"sync"
	"sync/atomic"
	"time"

	"git.home.luguber.info/inful/snowbow/internal/build"
	"git.home.luguber.info/inful/snowbow/internal/foundation/errors"
	"git.home.luguber.info/inful/snowbow/internal/manifest"
	"git.home.luguber.info/inful/snowbow/internal/vfs"
)

// BuildSummary describes one build pass for the status endpoint.
type BuildSummary struct {
	ID          string                    `json:"id"`
	Trigger     string                    `json:"trigger,omitempty"`
	Status      string                    `json:"status"`
	Started     time.Time                 `json:"started"`
	DurationMS  int64                     `json:"duration_ms"`
	Files       int                       `json:"files"`
	Articles    int                       `json:"articles"`
	Digest      string                    `json:"digest,omitempty"`
	Revision    string                    `json:"revision,omitempty"`
	FailedStage string                    `json:"failed_stage,omitempty"`
	Error       *errors.HTTPErrorResponse `json:"error,omitempty"`
}

// Status is the payload of /_snowbow/status.
type Status struct {
	// Serving is the pass whose output is being served.
	Serving *BuildSummary `json:"serving,omitempty"`
	// Last is the most recent pass. It differs from Serving after a failed rebuild.
	Last   *BuildSummary `json:"last,omitempty"`
	Builds int           `json:"builds"`
}

// Site holds the snapshot being served. Readers load it without locking; a
// successful rebuild replaces it with a single store.
type Site struct {
	current atomic.Pointer[vfs.FS]
	adapter *errors.HTTPErrorAdapter

	mu       sync.RWMutex
	status   Status
	manifest *manifest.Manifest
}

// NewSite creates a site with nothing to serve yet.
func NewSite() *Site {
	return &Site{adapter: errors.NewHTTPErrorAdapter(nil)}
}

// Current returns the served snapshot, or nil before the first successful build.
func (s *Site) Current() *vfs.FS { return s.current.Load() }

// Apply records the outcome of a pass. On success the snapshot is swapped
// and its digest returned; otherwise the previous snapshot stays in place.
func (s *Site) Apply(res *build.Result) (string, bool) {
	sum := s.summarize(res)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.Builds++
	s.status.Last = sum
	if res.Err != nil || res.FS == nil {
		return "", false
	}
	s.current.Store(res.FS)
	s.status.Serving = sum
	s.manifest = res.Manifest
	return sum.Digest, true
}

// Manifest returns the manifest of the served build, or nil.
func (s *Site) Manifest() *manifest.Manifest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.manifest
}

// Status returns a copy of the current status.
func (s *Site) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Site) summarize(res *build.Result) *BuildSummary {
	sum := &BuildSummary{
		ID:          res.ID,
		Trigger:     res.Trigger,
		Status:      string(res.Status),
		Started:     res.StartTime,
		DurationMS:  res.Duration.Milliseconds(),
		Files:       res.Files(),
		Articles:    res.Articles(),
		Revision:    res.Info.Revision.String(),
		FailedStage: string(res.FailedStage),
	}
	if res.FS != nil {
		sum.Digest = res.FS.Digest()
	}
	if res.Err != nil {
		formatted := s.adapter.FormatErrorResponse(res.Err)
		sum.Error = &formatted
	}
	return sum
}
