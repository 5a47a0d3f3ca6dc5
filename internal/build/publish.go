package build

import (
	"log/slog"
	"os"
	"strings"

	"git.home.luguber.info/inful/snowbow/internal/foundation/errors"
	"git.home.luguber.info/inful/snowbow/internal/logfields"
	"git.home.luguber.info/inful/snowbow/internal/vfs"
)

// StripSegments returns the number of leading path segments the base path
// adds to every site path.
func StripSegments(basePath string) int {
	return strings.Count(basePath, "/") - 1
}

// Publish replaces dir with the content of fsys. Files are written to a
// sibling staging directory which is then promoted by rename, so dir only
// ever holds a complete build. The previous output is removed.
func Publish(fsys *vfs.FS, dir, basePath string) error {
	stage := dir + "_stage"
	if err := os.RemoveAll(stage); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "remove stale staging directory").
			WithContext("dir", stage).Build()
	}
	if err := fsys.Materialize(stage, StripSegments(basePath)); err != nil {
		abortStaging(stage)
		return err
	}

	prev := dir + ".prev"
	if err := os.RemoveAll(prev); err != nil {
		abortStaging(stage)
		return errors.WrapError(err, errors.CategoryFileSystem, "remove previous backup").
			WithContext("dir", prev).Build()
	}
	if _, err := os.Stat(dir); err == nil {
		if err := os.Rename(dir, prev); err != nil {
			abortStaging(stage)
			return errors.WrapError(err, errors.CategoryFileSystem, "back up existing output").
				WithContext("dir", dir).Build()
		}
	}
	if err := os.Rename(stage, dir); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "promote staging directory").
			WithContext("dir", dir).Build()
	}
	if err := os.RemoveAll(prev); err != nil {
		slog.Warn("Failed to remove previous output", logfields.Path(prev), logfields.Error(err))
	}
	slog.Info("Published site", logfields.Path(dir), logfields.Count(fsys.Len()))
	return nil
}

func abortStaging(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		slog.Warn("Failed to remove staging directory after abort", logfields.Path(dir), logfields.Error(err))
	}
}
