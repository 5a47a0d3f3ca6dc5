package resolve

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"git.home.luguber.info/inful/snowbow/internal/foundation/errors"
	"git.home.luguber.info/inful/snowbow/internal/page"
	"git.home.luguber.info/inful/snowbow/internal/workpool"
)

// PageTarget maps a page source path (slash separated, relative to the pages
// directory) to its language and language-relative output path. A leading
// directory matching a configured language sets the language and is removed.
// index.md maps to its directory; name.md maps to name.html.
func PageTarget(rel string, languages []string) (lang, relativePath, commonName string) {
	for _, l := range languages {
		if rest, ok := strings.CutPrefix(rel, l+"/"); ok {
			lang, rel = l, rest
			break
		}
	}
	base := path.Base(rel)
	commonName = strings.TrimSuffix(base, ".md")
	if base == "index.md" {
		return lang, strings.TrimSuffix(rel, "index.md"), commonName
	}
	return lang, strings.TrimSuffix(rel, ".md") + ".html", commonName
}

// PageSources lists the Markdown files below root/pages as slash-separated
// relative paths in lexical order. Hidden files and directories are skipped.
func PageSources(root string) ([]string, error) {
	base := filepath.Join(root, PagesDir)
	if _, err := os.Stat(base); os.IsNotExist(err) {
		return nil, nil
	}
	var out []string
	err := filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(d.Name(), ".") && p != base {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		rel, err := filepath.Rel(base, p)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "pages directory not readable").
			WithContext("dir", base).Build()
	}
	slices.Sort(out)
	return out, nil
}

// DiscoverPages loads every page source on the worker pool. Pages are
// returned ordered by output path.
func (r *Resolver) DiscoverPages(ctx context.Context) ([]*page.Page, error) {
	sources, err := PageSources(r.root)
	if err != nil {
		return nil, err
	}
	pages, err := workpool.Map(ctx, r.workers, sources, r.loadPage)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(pages, func(a, b *page.Page) int { return strings.Compare(a.Path(), b.Path()) })
	return pages, nil
}

func (r *Resolver) loadPage(ctx context.Context, rel string) (*page.Page, error) {
	unit, err := r.loader.LoadFile(ctx, filepath.Join(r.root, PagesDir, filepath.FromSlash(rel)))
	if err != nil {
		return nil, err
	}
	lang, relPath, name := PageTarget(rel, r.theme.Languages)
	p := page.New(r.site, page.KindPage, name, lang, relPath, unit.Body, unit.FrontMatter)
	p.Fingerprint = unit.Fingerprint
	return p, nil
}

// IndexPages returns one index page per configured language.
func (r *Resolver) IndexPages() []*page.Page {
	out := make([]*page.Page, 0, len(r.theme.Languages))
	for _, l := range r.theme.Languages {
		out = append(out, page.New(r.site, page.KindIndex, "index", l, "", "", nil))
	}
	return out
}
