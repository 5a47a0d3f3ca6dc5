package server

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/snowbow/internal/foundation/errors"
	"git.home.luguber.info/inful/snowbow/internal/logfields"
)

// Watcher reports changes below a content root. Directories are watched
// recursively, including ones created after start.
type Watcher struct {
	fsw      *fsnotify.Watcher
	root     string
	skipDirs []string
	onChange func(path string)
}

// NewWatcher watches root and every directory below it except hidden ones
// and those in skipDirs. onChange is called for every relevant event.
func NewWatcher(root string, skipDirs []string, onChange func(path string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.ServerError("create file watcher").WithCause(err).Build()
	}
	w := &Watcher{fsw: fsw, root: filepath.Clean(root), onChange: onChange}
	for _, d := range skipDirs {
		if abs, err := filepath.Abs(d); err == nil {
			w.skipDirs = append(w.skipDirs, abs)
		}
	}
	if err := w.addRecursive(w.root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run dispatches events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("File watcher error", logfields.Error(err))
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error { return w.fsw.Close() }

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Op == fsnotify.Chmod || ShouldIgnore(ev.Name) || w.skipped(ev.Name) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			if err := w.addRecursive(ev.Name); err != nil {
				slog.Warn("Failed to watch new directory", logfields.Path(ev.Name), logfields.Error(err))
			}
		}
	}
	slog.Debug("File change detected", logfields.Path(ev.Name), logfields.Event(ev.Op.String()))
	w.onChange(ev.Name)
}

func (w *Watcher) skipped(p string) bool {
	abs, err := filepath.Abs(p)
	if err != nil {
		return false
	}
	for _, d := range w.skipDirs {
		if abs == d || strings.HasPrefix(abs, d+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != w.root && (strings.HasPrefix(d.Name(), ".") || w.skipped(p)) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(p); err != nil {
			return errors.ServerError("watch directory").WithCause(err).
				WithContext("dir", p).Build()
		}
		return nil
	})
}

// ShouldIgnore reports whether a change to path is editor noise: hidden
// files, swap and backup files, and lock files.
func ShouldIgnore(path string) bool {
	base := filepath.Base(path)
	switch {
	case strings.HasPrefix(base, "."):
		return true
	case strings.HasSuffix(base, "~"),
		strings.HasSuffix(base, ".swp"),
		strings.HasSuffix(base, ".swx"),
		strings.HasSuffix(base, ".tmp"):
		return true
	case strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"):
		return true
	case base == "Thumbs.db" || base == "4913":
		return true
	}
	return false
}
