package htmlproc

import (
	"strings"

	"golang.org/x/net/html"
)

// MoreMarker is the comment text that ends an excerpt.
const MoreMarker = "more"

// Excerpt returns the HTML before the first <!--more--> comment. Content
// without the marker is returned whole.
func Excerpt(src string) string {
	if !strings.Contains(src, "<!--") {
		return src
	}
	z := html.NewTokenizer(strings.NewReader(src))
	offset := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return src
		}
		if tt == html.CommentToken && strings.TrimSpace(string(z.Text())) == MoreMarker {
			return src[:offset]
		}
		offset += len(z.Raw())
	}
}
