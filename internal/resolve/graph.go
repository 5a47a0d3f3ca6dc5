package resolve

import (
	"slices"
	"sort"
	"strings"

	"git.home.luguber.info/inful/snowbow/internal/page"
)

// Graph is the resolved site for one build pass. Articles are stored per
// language in publish order; taxonomies refer to them by index. A Graph is
// read-only once built.
type Graph struct {
	languages  []string
	articles   map[string][]*page.Page
	tags       map[string]*Taxonomy
	categories map[string]*Taxonomy
	pages      []*page.Page
	indexes    []*page.Page
}

// Languages returns the configured languages in declared order.
func (g *Graph) Languages() []string { return g.languages }

// Articles returns the sorted articles of lang.
func (g *Graph) Articles(lang string) []*page.Page { return g.articles[lang] }

// Tags returns the tag taxonomy of lang. It is never nil for a configured language.
func (g *Graph) Tags(lang string) *Taxonomy { return g.tags[lang] }

// Categories returns the category taxonomy of lang.
func (g *Graph) Categories(lang string) *Taxonomy { return g.categories[lang] }

// Pages returns the standalone pages ordered by path.
func (g *Graph) Pages() []*page.Page { return g.pages }

// Indexes returns the per-language index pages in language order.
func (g *Graph) Indexes() []*page.Page { return g.indexes }

// ArticleCount returns the number of logical articles. Every language has this many entries.
func (g *Graph) ArticleCount() int {
	if len(g.languages) == 0 {
		return 0
	}
	return len(g.articles[g.languages[0]])
}

// All returns every renderable page: articles by language, then pages, then indexes.
func (g *Graph) All() []*page.Page {
	var out []*page.Page
	for _, l := range g.languages {
		out = append(out, g.articles[l]...)
	}
	out = append(out, g.pages...)
	return append(out, g.indexes...)
}

// Neighbors returns the newer and older article next to p in its language.
func (g *Graph) Neighbors(p *page.Page) (newer, older *page.Page) {
	list := g.articles[p.Language]
	if !p.HasIndex() || p.Index >= len(list) || list[p.Index] != p {
		return nil, nil
	}
	if p.Index > 0 {
		newer = list[p.Index-1]
	}
	if p.Index+1 < len(list) {
		older = list[p.Index+1]
	}
	return newer, older
}

// CompareArticles orders articles for publishing: timed before untimed, newer
// before older, then by common name.
func CompareArticles(a, b *page.Page) int {
	at, aok := a.Time()
	bt, bok := b.Time()
	switch {
	case aok && !bok:
		return -1
	case !aok && bok:
		return 1
	case aok && bok && !at.Equal(bt):
		return bt.Compare(at)
	}
	return strings.Compare(a.CommonName, b.CommonName)
}

// NewGraph sorts and indexes the fallback-filled articles per language and
// builds the taxonomies.
func NewGraph(languages []string, articles []*Article, pages, indexes []*page.Page) *Graph {
	g := &Graph{
		languages:  slices.Clone(languages),
		articles:   make(map[string][]*page.Page, len(languages)),
		tags:       make(map[string]*Taxonomy, len(languages)),
		categories: make(map[string]*Taxonomy, len(languages)),
		pages:      pages,
		indexes:    indexes,
	}
	for _, lang := range languages {
		list := make([]*page.Page, 0, len(articles))
		for _, a := range articles {
			if v, ok := a.Variants[lang]; ok {
				list = append(list, v)
			}
		}
		slices.SortStableFunc(list, CompareArticles)
		for i, p := range list {
			p.Index = i
		}
		g.articles[lang] = list
		g.tags[lang] = newTaxonomy(list, (*page.Page).Tags)
		g.categories[lang] = newTaxonomy(list, (*page.Page).Categories)
	}
	return g
}

// Taxonomy maps terms (tags or categories) to the articles declaring them.
// Terms iterate in sorted order; each term's articles are in publish order.
type Taxonomy struct {
	keys    []string
	buckets map[string][]int
	arena   []*page.Page
}

// Term is one taxonomy entry.
type Term struct {
	Name  string
	Pages []*page.Page
}

func newTaxonomy(arena []*page.Page, terms func(*page.Page) []string) *Taxonomy {
	t := &Taxonomy{buckets: map[string][]int{}, arena: arena}
	for i, p := range arena {
		for _, term := range terms(p) {
			b, ok := t.buckets[term]
			if !ok {
				t.keys = append(t.keys, term)
			}
			if len(b) > 0 && b[len(b)-1] == i {
				continue
			}
			t.buckets[term] = append(b, i)
		}
	}
	sort.Strings(t.keys)
	return t
}

// Keys returns the terms in sorted order.
func (t *Taxonomy) Keys() []string { return t.keys }

// Len returns the number of terms.
func (t *Taxonomy) Len() int { return len(t.keys) }

// Pages returns the articles declaring term, in publish order.
func (t *Taxonomy) Pages(term string) []*page.Page {
	idx := t.buckets[term]
	out := make([]*page.Page, len(idx))
	for i, j := range idx {
		out[i] = t.arena[j]
	}
	return out
}

// Terms returns every term with its articles, sorted by term.
func (t *Taxonomy) Terms() []Term {
	out := make([]Term, len(t.keys))
	for i, k := range t.keys {
		out[i] = Term{Name: k, Pages: t.Pages(k)}
	}
	return out
}
