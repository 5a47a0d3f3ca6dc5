// Package page defines the resolved, renderable unit of a site.
//
// A Page is constructed without knowledge of the article graph and never
// mutated after the graph is built. Derived fields are read from front matter
// on each access, falling back to kind-specific defaults.
package page

import (
	"time"

	"git.home.luguber.info/inful/snowbow/internal/frontmatter"
	"git.home.luguber.info/inful/snowbow/internal/htmlproc"
)

// Kind classifies a Page.
type Kind string

const (
	KindArticle Kind = "article"
	KindPage    Kind = "page"
	KindIndex   Kind = "index"
)

// Site carries the configuration values a page needs to compute its URLs.
type Site struct {
	BasePath      string
	SchemeAndHost string
}

// Page is a resolved, renderable unit.
type Page struct {
	Kind       Kind
	CommonName string
	// Language is empty for language-less pages.
	Language string
	// ContentLanguage is the language whose source produced Content. It
	// differs from Language for fallback clones.
	ContentLanguage string
	RelativePath    string
	Content         string
	FrontMatter     frontmatter.Map
	// Fingerprint of the source file(s), empty for synthesized pages.
	Fingerprint string
	// Index is the position within the language's sorted article list, or -1.
	Index int

	site Site
}

// New creates a page. Index starts unset.
func New(site Site, kind Kind, commonName, language, relativePath, content string, fm frontmatter.Map) *Page {
	return &Page{
		Kind:            kind,
		CommonName:      commonName,
		Language:        language,
		ContentLanguage: language,
		RelativePath:    relativePath,
		Content:         content,
		FrontMatter:     fm,
		Index:           -1,
		site:            site,
	}
}

// CloneAs returns a copy of p presented in another language. Content, front
// matter and the content language are shared with p.
func (p *Page) CloneAs(language string) *Page {
	cp := *p
	cp.Language = language
	cp.Index = -1
	return &cp
}

// IsFallback reports whether the page shows content from another language.
func (p *Page) IsFallback() bool {
	return p.Language != p.ContentLanguage
}

// Path is the absolute site path: basePath + (language + "/") + relativePath.
func (p *Page) Path() string {
	if p.Language != "" {
		return p.site.BasePath + p.Language + "/" + p.RelativePath
	}
	return p.site.BasePath + p.RelativePath
}

// Permalink is the absolute URL of the page.
func (p *Page) Permalink() string {
	return p.site.SchemeAndHost + p.Path()
}

func (p *Page) Title() string {
	return p.FrontMatter.String(frontmatter.KeyTitle, p.CommonName)
}

// Layout names the theme layout. It defaults to the kind.
func (p *Page) Layout() string {
	return p.FrontMatter.String(frontmatter.KeyLayout, string(p.Kind))
}

func (p *Page) TOCEnabled() bool {
	return p.FrontMatter.Bool(frontmatter.KeyTOC, false)
}

func (p *Page) AutoNumber() bool {
	return p.FrontMatter.Bool(frontmatter.KeyAutoNumber, false)
}

func (p *Page) Tags() []string {
	if tags := p.FrontMatter.Strings(frontmatter.KeyTags); tags != nil {
		return tags
	}
	return []string{}
}

func (p *Page) Categories() []string {
	if cats := p.FrontMatter.Strings(frontmatter.KeyCategories); cats != nil {
		return cats
	}
	return []string{}
}

// Time returns the publish time from front matter.
func (p *Page) Time() (time.Time, bool) {
	return p.FrontMatter.Time(frontmatter.KeyTime)
}

// HasTime reports whether a publish time is set.
func (p *Page) HasTime() bool {
	_, ok := p.Time()
	return ok
}

// PublishTime returns the publish time or the zero time. Templates use it
// together with HasTime.
func (p *Page) PublishTime() time.Time {
	t, _ := p.Time()
	return t
}

// HasIndex reports whether the page was placed in a sorted article list.
func (p *Page) HasIndex() bool {
	return p.Index >= 0
}

// Excerpt is the content before the first <!--more--> marker, or the whole content.
func (p *Page) Excerpt() string {
	return htmlproc.Excerpt(p.Content)
}

// TOC builds the table of contents outline from the rendered content.
func (p *Page) TOC() htmlproc.Outline {
	return htmlproc.BuildTOC(p.Content)
}

// Param returns a front matter value as a plain Go value, or def when absent.
func (p *Page) Param(key string, def any) any {
	v, ok := p.FrontMatter.Get(key)
	if !ok {
		return def
	}
	return v.Interface()
}
