package build

import (
	"context"

	"git.home.luguber.info/inful/snowbow/internal/config"
	"git.home.luguber.info/inful/snowbow/internal/content"
	"git.home.luguber.info/inful/snowbow/internal/feed"
	"git.home.luguber.info/inful/snowbow/internal/logfields"
	"git.home.luguber.info/inful/snowbow/internal/manifest"
	"git.home.luguber.info/inful/snowbow/internal/observability"
	"git.home.luguber.info/inful/snowbow/internal/page"
	"git.home.luguber.info/inful/snowbow/internal/render"
	"git.home.luguber.info/inful/snowbow/internal/resolve"
	"git.home.luguber.info/inful/snowbow/internal/workpool"
)

// stageLoadTheme reads the theme configuration and templates. Both are
// reloaded every pass so theme edits apply on the next rebuild.
func stageLoadTheme(ctx context.Context, st *State) error {
	theme, err := config.LoadTheme(st.Options.ContentRoot, st.Options.Theme)
	if err != nil {
		return err
	}
	tpl, err := render.LoadTemplates(st.Options.ThemeDir())
	if err != nil {
		return err
	}
	st.Theme, st.Templates = theme, tpl
	observability.DebugContext(ctx, "Loaded theme",
		logfields.Theme(st.Options.Theme), logfields.Count(len(tpl.Names())))
	return nil
}

func stageResolve(ctx context.Context, st *State) error {
	loader := content.NewLoader(st.generator.converter)
	g, err := resolve.New(st.Options.ContentRoot, st.Theme, loader, st.Options.Workers).Resolve(ctx)
	if err != nil {
		return err
	}
	st.Graph = g
	observability.InfoContext(ctx, "Resolved content",
		logfields.Count(g.ArticleCount()), logfields.Language(st.Theme.DefaultLanguage()))
	return nil
}

// stageRender renders every page on the worker pool and inserts the results
// in graph order, so a path collision is reported deterministically.
func stageRender(ctx context.Context, st *State) error {
	pages := st.Graph.All()
	out, err := workpool.Map(ctx, st.Options.Workers, pages, func(_ context.Context, p *page.Page) ([]byte, error) {
		return st.Templates.Render(&render.Context{Theme: st.Theme, Graph: st.Graph, Page: p, Build: st.Info})
	})
	if err != nil {
		return err
	}
	for i, p := range pages {
		if err := st.FS.Insert(p.Path(), out[i]); err != nil {
			return err
		}
	}
	observability.InfoContext(ctx, "Rendered pages", logfields.Count(len(pages)))
	return nil
}

func stageFeeds(ctx context.Context, st *State) error {
	for _, lang := range st.Theme.Languages {
		doc, err := feed.Build(st.Theme, st.Graph, lang, st.Info.Time)
		if err != nil {
			return err
		}
		if err := st.FS.InsertString(feed.Path(st.Theme, lang), doc); err != nil {
			return err
		}
		if lang == st.Theme.DefaultLanguage() {
			if err := st.FS.InsertString(feed.RootPath(st.Theme), doc); err != nil {
				return err
			}
		}
	}
	observability.DebugContext(ctx, "Wrote feeds", logfields.Count(len(st.Theme.Languages)))
	return nil
}

func stageRedirect(_ context.Context, st *State) error {
	return st.FS.InsertString(st.Theme.BasePath, RedirectHTML(st.Theme))
}

// stageManifest records the resolved sources and the finished output.
func stageManifest(ctx context.Context, st *State) error {
	m := manifest.New(st.Info.ID, st.Info.Time, st.Info.Revision.String())
	if err := m.SetTheme(st.Options.Theme, st.Theme, st.generator.converter.Name()); err != nil {
		return err
	}
	m.AddSources(st.Graph)
	m.SetOutputs(st.FS)
	st.Manifest = m
	observability.DebugContext(ctx, "Recorded manifest",
		logfields.Count(len(m.Inputs.Sources)), logfields.Digest(m.Outputs.Digest))
	return nil
}
