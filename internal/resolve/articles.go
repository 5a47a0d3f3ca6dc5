package resolve

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"git.home.luguber.info/inful/snowbow/internal/foundation/errors"
	"git.home.luguber.info/inful/snowbow/internal/htmlproc"
	"git.home.luguber.info/inful/snowbow/internal/logfields"
	"git.home.luguber.info/inful/snowbow/internal/page"
	"git.home.luguber.info/inful/snowbow/internal/workpool"
)

const (
	ArticlesDir = "articles"
	PagesDir    = "pages"
	// AssetsDir holds per-article files published under article-assets/.
	AssetsDir = "assets"
)

// ArticleDirPattern matches article directory names: <yyyymmdd>-<commonName>.
var ArticleDirPattern = regexp.MustCompile(`^(\d{8})-(.+)$`)

// Article is one discovered article directory with its language variants.
type Article struct {
	Dir        string
	CommonName string
	Variants   map[string]*page.Page
}

// ArticleDirs lists article directories below root/articles in name order.
// A missing articles directory yields no directories.
func ArticleDirs(root string) ([]ArticleDir, error) {
	base := filepath.Join(root, ArticlesDir)
	entries, err := os.ReadDir(base)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "articles directory not readable").
			WithContext("dir", base).Build()
	}
	var dirs []ArticleDir
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		m := ArticleDirPattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		dirs = append(dirs, ArticleDir{Path: filepath.Join(base, e.Name()), Date: m[1], CommonName: m[2]})
	}
	return dirs, nil
}

// ArticleDir is an article directory matching ArticleDirPattern.
type ArticleDir struct {
	Path       string
	Date       string
	CommonName string
}

// DiscoverArticles loads every article directory on the worker pool.
// Directories without a source in a configured language are dropped.
func (r *Resolver) DiscoverArticles(ctx context.Context) ([]*Article, error) {
	dirs, err := ArticleDirs(r.root)
	if err != nil {
		return nil, err
	}
	loaded, err := workpool.Map(ctx, r.workers, dirs, r.loadArticle)
	if err != nil {
		return nil, err
	}
	articles := make([]*Article, 0, len(loaded))
	for _, a := range loaded {
		if a != nil {
			articles = append(articles, a)
		}
	}
	return articles, nil
}

func (r *Resolver) loadArticle(ctx context.Context, dir ArticleDir) (*Article, error) {
	entries, err := os.ReadDir(dir.Path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "article directory not readable").
			WithContext("dir", dir.Path).Build()
	}

	art := &Article{Dir: dir.Path, CommonName: dir.CommonName, Variants: map[string]*page.Page{}}
	for _, e := range entries {
		lang, ok := sourceLanguage(e)
		if !ok {
			continue
		}
		if !slices.Contains(r.theme.Languages, lang) {
			slog.Debug("Skipping article source in unconfigured language",
				logfields.File(filepath.Join(dir.Path, e.Name())), logfields.Language(lang))
			continue
		}
		if _, dup := art.Variants[lang]; dup {
			return nil, errors.ContentParseError("article has two sources for one language").
				WithContext("dir", dir.Path).WithContext("language", lang).Build()
		}
		unit, err := r.loader.LoadFile(ctx, filepath.Join(dir.Path, e.Name()))
		if err != nil {
			return nil, err
		}
		body := htmlproc.RewriteAssetPaths(unit.Body, r.theme.BasePath, dir.CommonName)
		p := page.New(r.site, page.KindArticle, dir.CommonName, lang, ArticleRelativePath(dir.CommonName), body, unit.FrontMatter)
		p.Fingerprint = unit.Fingerprint
		art.Variants[lang] = p
	}
	if len(art.Variants) == 0 {
		slog.Debug("Dropping article without sources in configured languages", logfields.Path(dir.Path))
		return nil, nil
	}
	return art, nil
}

// sourceLanguage extracts <lang> from a <name>.<lang>.md file entry.
func sourceLanguage(e os.DirEntry) (string, bool) {
	if e.IsDir() {
		return "", false
	}
	name, ok := strings.CutSuffix(e.Name(), ".md")
	if !ok {
		return "", false
	}
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || i == len(name)-1 {
		return "", false
	}
	return name[i+1:], true
}

// ArticleRelativePath is the language-relative path of an article.
func ArticleRelativePath(commonName string) string {
	return "articles/" + commonName + "/"
}

// FillFallbacks gives every article a variant in every language. A missing
// variant is a clone of the first existing one in configured-language order.
func FillFallbacks(articles []*Article, languages []string) {
	for _, a := range articles {
		var source *page.Page
		for _, l := range languages {
			if v, ok := a.Variants[l]; ok {
				source = v
				break
			}
		}
		if source == nil {
			continue
		}
		for _, l := range languages {
			if _, ok := a.Variants[l]; !ok {
				a.Variants[l] = source.CloneAs(l)
			}
		}
	}
}
