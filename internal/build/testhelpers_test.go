package build

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/snowbow/internal/config"
	"git.home.luguber.info/inful/snowbow/internal/markdown"
)

const themeConfig = `{
  "CommonTitle": "Snow",
  "CommonSubtitle": "Notes",
  "Author": "Ada",
  "Email": "ada@example.org",
  "SchemeAndHost": "https://example.org",
  "BasePath": "BASE",
  "Languages": ["en", "fr"],
  "Translation": {
    "en": {"home": "Home"},
    "fr": {"home": "Accueil"}
  }
}`

const rootTemplate = `{{ if eq .Page.Layout "index" }}<ul>{{ range .Articles }}<li>{{ .Title }}</li>{{ end }}</ul>` +
	`{{ else }}<article lang="{{ .Page.ContentLanguage }}">{{ .Content }}</article>{{ end }}` +
	`<footer>{{ .T "home" }} {{ .Build.Time.Format "2006" }}</footer>`

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, body := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
}

// newSite writes a two-language site with one English-only article.
func newSite(t *testing.T, basePath string) string {
	t.Helper()
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"themes/plain/theme-config.json":         strings.ReplaceAll(themeConfig, "BASE", basePath),
		"themes/plain/index.tmpl":                rootTemplate,
		"themes/plain/assets/css/site.css":       "body{}",
		"articles/20240101-hello/hello.en.md":    "---\ntitle: Hello\ntime: 2024-01-01T00:00:00Z\n---\nHi ![pic](assets/pic.png)\n",
		"articles/20240101-hello/assets/pic.png": "PNG",
		"pages/about.md":                         "About\n",
	})
	return root
}

func newTestGenerator(root string, options ...Option) *Generator {
	opts := config.Options{
		ContentRoot: root,
		Theme:       "plain",
		Workers:     2,
		BuildTime:   time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	return NewGenerator(opts, markdown.NewGoldmarkConverter(), options...)
}
