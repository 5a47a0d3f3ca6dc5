package build

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/snowbow/internal/foundation/errors"
	"git.home.luguber.info/inful/snowbow/internal/htmlproc"
	"git.home.luguber.info/inful/snowbow/internal/logfields"
	"git.home.luguber.info/inful/snowbow/internal/observability"
	"git.home.luguber.info/inful/snowbow/internal/render"
	"git.home.luguber.info/inful/snowbow/internal/resolve"
	"git.home.luguber.info/inful/snowbow/internal/util/sets"
)

// stageAssets copies theme assets to the base path and each resolved
// article's assets below article-assets/<commonName>/.
func stageAssets(ctx context.Context, st *State) error {
	themeAssets := filepath.Join(st.Options.ThemeDir(), render.AssetsDir)
	n, err := copyTree(ctx, st, themeAssets, func(rel string) string {
		return st.Theme.BasePath + rel
	})
	if err != nil {
		return err
	}

	resolved := sets.New[string]()
	for _, p := range st.Graph.Articles(st.Theme.DefaultLanguage()) {
		resolved.Add(p.CommonName)
	}
	dirs, err := resolve.ArticleDirs(st.Options.ContentRoot)
	if err != nil {
		return err
	}
	for _, d := range dirs {
		if !resolved.Has(d.CommonName) {
			continue
		}
		m, err := copyTree(ctx, st, filepath.Join(d.Path, resolve.AssetsDir), func(rel string) string {
			return htmlproc.ArticleAssetPath(st.Theme.BasePath, d.CommonName, rel)
		})
		if err != nil {
			return err
		}
		n += m
	}
	observability.DebugContext(ctx, "Copied assets", logfields.Count(n))
	return nil
}

// copyTree inserts every regular, non-hidden file below dir at target(rel).
// A missing dir copies nothing.
func copyTree(ctx context.Context, st *State, dir string, target func(rel string) string) (int, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return 0, nil
	}
	n := 0
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p != dir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "read asset").WithContext("file", p).Build()
		}
		if err := st.FS.Insert(target(filepath.ToSlash(rel)), data); err != nil {
			return err
		}
		n++
		return nil
	})
	if err != nil {
		if _, ok := errors.AsClassified(err); ok || ctx.Err() != nil {
			return n, err
		}
		return n, errors.WrapError(err, errors.CategoryFileSystem, "walk assets").WithContext("dir", dir).Build()
	}
	return n, nil
}
