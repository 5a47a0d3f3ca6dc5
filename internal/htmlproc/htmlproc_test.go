package htmlproc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRewriteAssetPaths(t *testing.T) {
	src := `<p>See <a href="assets/doc.pdf">doc</a> and <a href="https://x.org/assets/y">ext</a>.</p>` + "\n" +
		`<figure><IMG SRC="assets/img/a.png" alt="A &amp; B"/></figure>` + "\n" +
		`<div data-src="assets/keep.png">assets/in text</div>`

	got := RewriteAssetPaths(src, "/blog/", "hello")

	require.Contains(t, got, `<a href="/blog/article-assets/hello/doc.pdf">doc</a>`)
	require.Contains(t, got, `<a href="https://x.org/assets/y">ext</a>`)
	require.Contains(t, got, `src="/blog/article-assets/hello/img/a.png"`)
	require.Contains(t, got, `alt="A &amp; B"`)
	require.Contains(t, got, `<div data-src="assets/keep.png">assets/in text</div>`)
}

func TestRewriteAssetPaths_Idempotent(t *testing.T) {
	src := `<p><img src="assets/a.png"><a href="assets/b.zip">b</a></p>`
	once := RewriteAssetPaths(src, "/", "post")
	twice := RewriteAssetPaths(once, "/", "post")
	require.Equal(t, once, twice)
	require.NotContains(t, once, `"assets/`)
}

func TestRewriteAssetPaths_NoMatchIsByteIdentical(t *testing.T) {
	src := "<P CLASS=x title='assets/x'>Un<b>closed <img src=/abs.png>\n<!-- c --><script>if (a < b) {}</script>"
	require.Equal(t, src, RewriteAssetPaths(src, "/", "post"))

	withMarkerText := "<p>assets/ mentioned only in text</p><br/>"
	require.Equal(t, withMarkerText, RewriteAssetPaths(withMarkerText, "/", "post"))
}

func TestBuildTOC_RoundTrip(t *testing.T) {
	src := `<h2 id="a">A</h2><p>x</p><h3 id="b">B</h3><h2 id="c">C</h2>`

	o := BuildTOC(src)
	require.Len(t, o.Items, 2)
	require.Equal(t, "A", o.Items[0].Text)
	require.Len(t, o.Items[0].Children, 1)
	require.Equal(t, "b", o.Items[0].Children[0].ID)
	require.Equal(t, "C", o.Items[1].Text)
	require.Empty(t, o.Items[1].Children)

	require.Equal(t,
		"<ol>\n<li><a href=\"#a\">A</a>\n<ol>\n<li><a href=\"#b\">B</a>\n</li>\n</ol>\n</li>\n<li><a href=\"#c\">C</a>\n</li>\n</ol>\n",
		string(o.HTML()))
}

func TestBuildTOC_SkipsH1AndHandlesMissingIDs(t *testing.T) {
	src := `<h1 id="t">Title</h1><h2>No <code>id</code></h2><h2 id="x">X &amp; Y</h2>`
	o := BuildTOC(src)
	require.Len(t, o.Items, 2)
	require.Equal(t, "No id", o.Items[0].Text)
	require.Empty(t, o.Items[0].ID)
	require.Equal(t, "<ol>\n<li>No id\n</li>\n<li><a href=\"#x\">X &amp; Y</a>\n</li>\n</ol>\n", string(o.HTML()))
}

func TestBuildTOC_DeeperFirstHeadingCreatesPlaceholder(t *testing.T) {
	o := BuildTOC(`<h4 id="d">Deep</h4><h2 id="s">S</h2>`)
	require.Len(t, o.Items, 2)
	first := o.Items[0]
	require.True(t, first.Placeholder)
	require.Len(t, first.Children, 1)
	require.True(t, first.Children[0].Placeholder)
	require.Equal(t, "d", first.Children[0].Children[0].ID)
	require.Equal(t, "s", o.Items[1].ID)
}

func TestBuildTOC_Empty(t *testing.T) {
	o := BuildTOC("<p>no headings</p>")
	require.True(t, o.IsEmpty())
	require.Empty(t, string(o.HTML()))
}

func TestHeadings_StreamOrder(t *testing.T) {
	hs := Headings("<h3 id=a>a</h3><h1>t</h1><h2 id=b>b\n  text</h2>")
	require.Equal(t, []Heading{
		{Level: 3, Text: "a", ID: "a"},
		{Level: 1, Text: "t"},
		{Level: 2, Text: "b text", ID: "b"},
	}, hs)
}

func TestExcerpt(t *testing.T) {
	require.Equal(t, "<p>intro</p>\n", Excerpt("<p>intro</p>\n<!--more-->\n<p>rest</p>"))
	require.Equal(t, "<p>a</p>", Excerpt("<p>a</p><!-- more --><!--more-->"))
	require.Equal(t, "<p>all</p><!-- furthermore -->", Excerpt("<p>all</p><!-- furthermore -->"))
	require.Equal(t, "<p>all</p>", Excerpt("<p>all</p>"))
}

func TestArticleAssetPath(t *testing.T) {
	require.Equal(t, "/article-assets/post/x/y.png", ArticleAssetPath("/", "post", "x/y.png"))
}
