package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/snowbow/internal/build"
	"git.home.luguber.info/inful/snowbow/internal/config"
	"git.home.luguber.info/inful/snowbow/internal/markdown"
	"git.home.luguber.info/inful/snowbow/internal/vfs"
)

const testThemeConfig = `{
  "CommonTitle": "Snow",
  "SchemeAndHost": "http://localhost",
  "BasePath": "/",
  "Languages": ["en"],
  "Translation": {"en": {}}
}`

func writeFile(t *testing.T, root, rel, body string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
}

func newTestSite(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "themes/plain/theme-config.json", testThemeConfig)
	writeFile(t, root, "themes/plain/index.tmpl", `<html><body>{{ .Content }}</body></html>`)
	writeFile(t, root, "pages/about.md", "About\n")
	return root
}

func newTestServer(root string) *Server {
	gen := build.NewGenerator(config.Options{
		ContentRoot: root,
		Theme:       "plain",
		Workers:     1,
		BuildTime:   time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}, markdown.NewGoldmarkConverter())
	return New(gen, Config{Debounce: 10 * time.Millisecond}, nil)
}

func snapshot(t *testing.T, files map[string]string) *vfs.FS {
	t.Helper()
	fsys := vfs.New()
	for p, body := range files {
		require.NoError(t, fsys.InsertString(p, body))
	}
	return fsys
}

func successResult(fsys *vfs.FS) *build.Result {
	return &build.Result{ID: "b1", Trigger: "build", Status: build.BuildStatusSuccess, FS: fsys}
}
