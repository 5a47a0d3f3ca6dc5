package render

import (
	"html/template"
	"reflect"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/snowbow/internal/config"
	"git.home.luguber.info/inful/snowbow/internal/foundation/errors"
	"git.home.luguber.info/inful/snowbow/internal/frontmatter"
	"git.home.luguber.info/inful/snowbow/internal/page"
	"git.home.luguber.info/inful/snowbow/internal/resolve"
)

func testTheme() *config.Theme {
	return &config.Theme{
		CommonTitle:   "Snow",
		SchemeAndHost: "https://example.org",
		BasePath:      "/blog/",
		Languages:     []string{"en", "fr"},
		Translation: map[string]map[string]string{
			"en": {"home": "Home"},
			"fr": {"home": "Accueil"},
		},
	}
}

func testGraph(theme *config.Theme) *resolve.Graph {
	site := page.Site{BasePath: theme.BasePath, SchemeAndHost: theme.SchemeAndHost}
	when := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	fm := frontmatter.Map{
		frontmatter.KeyTitle: frontmatter.String("Hello"),
		frontmatter.KeyTime:  frontmatter.Time(when),
		frontmatter.KeyTags:  frontmatter.Sequence(frontmatter.String("go")),
		"mood":               frontmatter.String("sunny"),
	}
	en := page.New(site, page.KindArticle, "hello", "en", resolve.ArticleRelativePath("hello"),
		"<h2 id=\"a\">A</h2><p>one</p><!--more--><p>two</p>", fm)
	arts := []*resolve.Article{{CommonName: "hello", Variants: map[string]*page.Page{"en": en}}}
	resolve.FillFallbacks(arts, theme.Languages)
	var indexes []*page.Page
	for _, l := range theme.Languages {
		indexes = append(indexes, page.New(site, page.KindIndex, "index", l, "", "", nil))
	}
	return resolve.NewGraph(theme.Languages, arts, nil, indexes)
}

var testTemplates = fstest.MapFS{
	"index.tmpl": {Data: []byte(`{{ if eq .Page.Layout "index" }}{{ template "partials/list.tmpl" . }}` +
		`{{ else }}<h1>{{ .Page.Title }}</h1>{{ .Content }}{{ end }}`)},
	"partials/list.tmpl": {Data: []byte(`<a href="{{ .TP "fr" }}">{{ .T "home" }}</a>` +
		`{{ range .Articles }}<li><a href="{{ .Path }}">{{ .Title }}</a> {{ fm . "mood" "?" }}</li>{{ end }}` +
		`{{ partial "partials/count.tmpl" .Tags }}`)},
	"partials/count.tmpl": {Data: []byte(`<span>{{ length . }} tags</span>`)},
	"assets/broken.tmpl":  {Data: []byte(`{{ if }}`)},
	"assets/site.css":     {Data: []byte(`body{}`)},
}

func TestParseFS(t *testing.T) {
	tpl, err := ParseFS(testTemplates)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"index.tmpl", "partials/list.tmpl", "partials/count.tmpl"}, tpl.Names())
}

func TestParseFS_Errors(t *testing.T) {
	_, err := ParseFS(fstest.MapFS{"page.tmpl": {Data: []byte("x")}})
	require.True(t, errors.HasCategory(err, errors.CategoryTemplate))

	_, err = ParseFS(fstest.MapFS{"index.tmpl": {Data: []byte("{{ if }}")}})
	require.True(t, errors.HasCategory(err, errors.CategoryTemplate))
	ce, _ := errors.AsClassified(err)
	name, _ := ce.Context().GetString("template")
	require.Equal(t, "index.tmpl", name)
}

func TestRender_IndexAndArticle(t *testing.T) {
	theme := testTheme()
	g := testGraph(theme)
	tpl, err := ParseFS(testTemplates)
	require.NoError(t, err)

	out, err := tpl.Render(&Context{Theme: theme, Graph: g, Page: g.Indexes()[1]})
	require.NoError(t, err)
	require.Equal(t, `<a href="/blog/fr/">Accueil</a>`+
		`<li><a href="/blog/fr/articles/hello/">Hello</a> sunny</li>`+
		`<span>1 tags</span>`, string(out))

	out, err = tpl.Render(&Context{Theme: theme, Graph: g, Page: g.Articles("en")[0]})
	require.NoError(t, err)
	require.Equal(t, `<h1>Hello</h1><h2 id="a">A</h2><p>one</p><!--more--><p>two</p>`, string(out))
}

func TestRender_MissingTranslationFails(t *testing.T) {
	theme := testTheme()
	g := testGraph(theme)
	tpl, err := ParseFS(fstest.MapFS{"index.tmpl": {Data: []byte(`{{ .T "nope" }}`)}})
	require.NoError(t, err)

	_, err = tpl.Render(&Context{Theme: theme, Graph: g, Page: g.Indexes()[0]})
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryTemplate))
	require.Contains(t, err.Error(), "nope")
}

func TestContextPaths(t *testing.T) {
	theme := testTheme()
	g := testGraph(theme)
	c := &Context{Theme: theme, Graph: g, Page: g.Articles("fr")[0]}

	require.Equal(t, "fr", c.Lang())
	require.Equal(t, "/blog/css/site.css", c.AP("/css/site.css"))
	require.Equal(t, "/blog/fr/tags/", c.ALP("/tags/"))
	require.Equal(t, "/blog/fr", c.ALP(""))
	require.Equal(t, "/blog/fr/", c.ALP("/"))
	require.Equal(t, "/blog/en/articles/hello/", c.TP("en"))
	require.Equal(t, template.HTML("<h2 id=\"a\">A</h2><p>one</p>"), c.Excerpt())
	require.Contains(t, string(c.TOC()), `<a href="#a">A</a>`)
	require.Nil(t, c.Newer())
	require.Nil(t, c.Older())

	langless := &Context{Theme: theme, Graph: g, Page: page.New(page.Site{BasePath: "/blog/"}, page.KindPage, "about", "", "about.html", "", nil)}
	require.Equal(t, "en", langless.Lang())
	v, err := langless.T("home")
	require.NoError(t, err)
	require.Equal(t, "Home", v)
}

func TestHelperArity(t *testing.T) {
	fm := (&Templates{}).funcMap()
	require.Len(t, fm, len(helperArity))
	for name, want := range helperArity {
		fn, ok := fm[name]
		require.True(t, ok, name)
		typ := reflect.TypeOf(fn)
		if want < 0 {
			require.True(t, typ.IsVariadic(), name)
			continue
		}
		require.False(t, typ.IsVariadic(), name)
		require.Equal(t, want, typ.NumIn(), name)
	}
}

func TestHelpers(t *testing.T) {
	require.Equal(t, "a1true", str("a", 1, true))
	require.Equal(t, "", str())
	require.Equal(t, "yes", ternary(true, "yes", "no"))
	require.Equal(t, "no", ternary(false, "yes", "no"))
	require.Equal(t, template.HTML("<b>"), safe("<b>"))
	require.Equal(t, "d", frontMatter(nil, "k", "d"))

	for _, tt := range []struct {
		in   any
		want int
	}{
		{"héllo", 5},
		{[]string{"a", "b"}, 2},
		{map[string]int{"a": 1}, 1},
		{nil, 0},
		{[3]int{}, 3},
	} {
		n, err := length(tt.in)
		require.NoError(t, err)
		require.Equal(t, tt.want, n)
	}
	_, err := length(42)
	require.Error(t, err)
}
