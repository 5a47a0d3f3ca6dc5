// Package resolve builds the language-indexed article and page graph of a
// content root.
//
// Resolution runs in three phases: discovery loads article sources in
// parallel, fallback fill clones missing language variants, and sort & index
// orders each language's articles and builds the tag and category taxonomies.
package resolve

import (
	"context"
	"log/slog"
	"runtime"

	"git.home.luguber.info/inful/snowbow/internal/config"
	"git.home.luguber.info/inful/snowbow/internal/content"
	"git.home.luguber.info/inful/snowbow/internal/foundation/errors"
	"git.home.luguber.info/inful/snowbow/internal/page"
)

// Resolver resolves one content root against one theme configuration.
type Resolver struct {
	root    string
	theme   *config.Theme
	site    page.Site
	loader  *content.Loader
	workers int
}

// New creates a resolver. workers bounds concurrent source loads; values
// below one use the number of CPUs.
func New(root string, theme *config.Theme, loader *content.Loader, workers int) *Resolver {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &Resolver{
		root:    root,
		theme:   theme,
		site:    page.Site{BasePath: theme.BasePath, SchemeAndHost: theme.SchemeAndHost},
		loader:  loader,
		workers: workers,
	}
}

// Resolve discovers, fills, sorts and indexes all content. It fails with an
// ArticleResolutionError when no languages are configured.
func (r *Resolver) Resolve(ctx context.Context) (*Graph, error) {
	if len(r.theme.Languages) == 0 {
		return nil, errors.ArticleResolutionError("no languages configured").Build()
	}

	articles, err := r.DiscoverArticles(ctx)
	if err != nil {
		return nil, err
	}
	pages, err := r.DiscoverPages(ctx)
	if err != nil {
		return nil, err
	}

	FillFallbacks(articles, r.theme.Languages)
	g := NewGraph(r.theme.Languages, articles, pages, r.IndexPages())

	slog.Debug("Resolved content",
		slog.Int("articles", g.ArticleCount()),
		slog.Int("pages", len(pages)),
		slog.Int("languages", len(r.theme.Languages)))
	return g, nil
}
