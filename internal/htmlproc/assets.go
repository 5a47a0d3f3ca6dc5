package htmlproc

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// AssetPrefix marks attribute values that reference an article's own assets directory.
const AssetPrefix = "assets/"

// ArticleAssetsDir is the site directory article assets are published under.
const ArticleAssetsDir = "article-assets/"

// ArticleAssetPath returns the published path of an article asset given its
// path relative to the article's assets directory.
func ArticleAssetPath(basePath, commonName, rel string) string {
	return basePath + ArticleAssetsDir + commonName + "/" + rel
}

// RewriteAssetPaths rewrites src and href attributes starting with AssetPrefix
// to basePath + "article-assets/" + commonName + "/" + remainder. Other
// attributes and nodes are left unchanged.
func RewriteAssetPaths(src, basePath, commonName string) string {
	if !strings.Contains(src, AssetPrefix) {
		return src
	}

	z := html.NewTokenizer(strings.NewReader(src))
	var b strings.Builder
	b.Grow(len(src) + 64)
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() != io.EOF {
				return src
			}
			return b.String()
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			b.Write(z.Raw())
			continue
		}

		// Token lowercases the tag name in the tokenizer buffer, so copy first.
		raw := string(z.Raw())
		tok := z.Token()
		changed := false
		for i, a := range tok.Attr {
			if a.Namespace != "" || (a.Key != "src" && a.Key != "href") {
				continue
			}
			if rest, ok := strings.CutPrefix(a.Val, AssetPrefix); ok {
				tok.Attr[i].Val = ArticleAssetPath(basePath, commonName, rest)
				changed = true
			}
		}
		if changed {
			b.WriteString(tok.String())
		} else {
			b.WriteString(raw)
		}
	}
}
