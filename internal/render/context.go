package render

import (
	"html/template"
	"strings"
	"time"

	"git.home.luguber.info/inful/snowbow/internal/config"
	"git.home.luguber.info/inful/snowbow/internal/foundation/errors"
	"git.home.luguber.info/inful/snowbow/internal/git"
	"git.home.luguber.info/inful/snowbow/internal/page"
	"git.home.luguber.info/inful/snowbow/internal/resolve"
)

// BuildInfo describes the build pass a page is rendered in.
type BuildInfo struct {
	ID       string
	Time     time.Time
	Revision git.Revision
}

// Context is the data passed to the root template for one page.
type Context struct {
	Theme *config.Theme
	Graph *resolve.Graph
	Page  *page.Page
	Build BuildInfo
}

// Lang is the language the page is presented in. Language-less pages use
// the default language.
func (c *Context) Lang() string {
	if c.Page != nil && c.Page.Language != "" {
		return c.Page.Language
	}
	return c.Theme.DefaultLanguage()
}

// T looks up key in the translation table of the current language.
func (c *Context) T(key string) (string, error) {
	v, ok := c.Theme.Translate(c.Lang(), key)
	if !ok {
		return "", errors.TemplateError("missing translation").
			WithContext("language", c.Lang()).
			WithContext("key", key).
			Build()
	}
	return v, nil
}

// AP returns an absolute site path.
func (c *Context) AP(p string) string {
	return c.Theme.BasePath + strings.TrimLeft(p, "/")
}

// ALP returns the language root followed by p verbatim, so p normally
// starts with "/". ALP "" is the language root without a trailing slash.
func (c *Context) ALP(p string) string {
	return c.Theme.BasePath + c.Lang() + p
}

// TP returns the path of the current page in another language.
func (c *Context) TP(lang string) string {
	rel := ""
	if c.Page != nil {
		rel = c.Page.RelativePath
	}
	return c.Theme.BasePath + lang + "/" + rel
}

// Languages returns the configured languages.
func (c *Context) Languages() []string { return c.Theme.Languages }

// Articles returns the current language's articles in publish order.
func (c *Context) Articles() []*page.Page { return c.Graph.Articles(c.Lang()) }

// Tags returns the current language's tag taxonomy.
func (c *Context) Tags() *resolve.Taxonomy { return c.Graph.Tags(c.Lang()) }

// Categories returns the current language's category taxonomy.
func (c *Context) Categories() *resolve.Taxonomy { return c.Graph.Categories(c.Lang()) }

// Newer returns the next newer article, or nil.
func (c *Context) Newer() *page.Page {
	if c.Page == nil {
		return nil
	}
	newer, _ := c.Graph.Neighbors(c.Page)
	return newer
}

// Older returns the next older article, or nil.
func (c *Context) Older() *page.Page {
	if c.Page == nil {
		return nil
	}
	_, older := c.Graph.Neighbors(c.Page)
	return older
}

// Content returns the page's converted HTML.
func (c *Context) Content() template.HTML {
	return template.HTML(c.Page.Content) //nolint:gosec
}

// Excerpt returns the page's HTML before the more marker.
func (c *Context) Excerpt() template.HTML {
	return template.HTML(c.Page.Excerpt()) //nolint:gosec
}

// TOC returns the page's table of contents, or an empty string.
func (c *Context) TOC() template.HTML {
	return c.Page.TOC().HTML()
}
