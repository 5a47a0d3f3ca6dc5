// Package history records one row per build pass so operators can see when
// the site was last built, from which revision, and why a build failed.
package history

import (
	"context"
	"path/filepath"
	"time"
)

// Dir is the per-site state directory below the content root.
const Dir = ".snowbow"

// DefaultPath returns the history database location for a content root.
func DefaultPath(contentRoot string) string {
	return filepath.Join(contentRoot, Dir, "history.db")
}

// Record describes one build pass.
type Record struct {
	ID       string
	Started  time.Time
	Duration time.Duration
	// Trigger is what started the build: build, initial, watch or schedule.
	Trigger  string
	Files    int
	Bytes    int64
	Articles int
	Digest   string
	Revision string
	// Stages holds per-stage durations.
	Stages   map[string]time.Duration
	// Error is empty for successful builds.
	Error    string
}

// Succeeded reports whether the build finished without error.
func (r Record) Succeeded() bool { return r.Error == "" }

// Store persists build records.
type Store interface {
	// Append adds a record.
	Append(ctx context.Context, r Record) error

	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]Record, error)

	// Close closes the store and releases resources.
	Close() error
}
