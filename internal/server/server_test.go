package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/snowbow/internal/build"
	"git.home.luguber.info/inful/snowbow/internal/config"
	"git.home.luguber.info/inful/snowbow/internal/manifest"
	"git.home.luguber.info/inful/snowbow/internal/markdown"
	"git.home.luguber.info/inful/snowbow/internal/metrics"
)

func TestServer_RebuildSwapsOrKeepsSnapshot(t *testing.T) {
	root := newTestSite(t)
	srv := newTestServer(root)
	h := srv.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, StatusPath, nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), `"code":"not_found"`)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, ManifestPath, nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	require.True(t, srv.Rebuild(t.Context(), metrics.TriggerInitial))
	first := srv.Site().Current()
	body := get(t, h, "/about.html")
	require.Contains(t, body, "<p>About</p>")
	require.Contains(t, body, LiveReloadScript)

	writeFile(t, root, "themes/plain/index.tmpl", `{{ .T "missing" }}`)
	require.False(t, srv.Rebuild(t.Context(), metrics.TriggerWatch))
	require.Same(t, first, srv.Site().Current())
	require.Contains(t, get(t, h, "/about.html"), "<p>About</p>")

	var st Status
	require.NoError(t, json.Unmarshal([]byte(get(t, h, StatusPath)), &st))
	require.Equal(t, 2, st.Builds)
	require.Equal(t, "success", st.Serving.Status)
	require.Equal(t, first.Digest(), st.Serving.Digest)
	require.Equal(t, "failed", st.Last.Status)
	require.Equal(t, "render", st.Last.FailedStage)
	require.Equal(t, "template", st.Last.Error.Code)

	var m manifest.Manifest
	require.NoError(t, json.Unmarshal([]byte(get(t, h, ManifestPath)), &m))
	require.Equal(t, first.Digest(), m.Outputs.Digest)
	require.Equal(t, st.Serving.ID, m.ID)

	writeFile(t, root, "themes/plain/index.tmpl", `<body>v2 {{ .Content }}</body>`)
	require.True(t, srv.Rebuild(t.Context(), metrics.TriggerWatch))
	require.Contains(t, get(t, h, "/about.html"), "v2")
}

func get(t *testing.T, h http.Handler, p string) string {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, p, nil))
	require.Equal(t, http.StatusOK, rec.Code, p)
	return rec.Body.String()
}

func TestServer_RecordsMetrics(t *testing.T) {
	root := newTestSite(t)
	reg := prometheus.NewRegistry()
	rec := metrics.NewPrometheusRecorder(reg)
	gen := build.NewGenerator(config.Options{ContentRoot: root, Theme: "plain", Workers: 1},
		markdown.NewGoldmarkConverter(), build.WithRecorder(rec))
	srv := New(gen, Config{}, rec)

	require.True(t, srv.Rebuild(t.Context(), metrics.TriggerSchedule))
	get(t, srv.Handler(), "/about.html")

	scrape := httptest.NewRecorder()
	metrics.HTTPHandler(reg).ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Contains(t, scrape.Body.String(), `snowbow_rebuilds_total{trigger="schedule"} 1`)
	require.Contains(t, scrape.Body.String(), `snowbow_http_requests_total{method="GET",status="200"} 1`)
	require.Contains(t, scrape.Body.String(), `snowbow_build_outcomes_total{outcome="success"} 1`)
}

func TestServer_RunRebuildsOnChange(t *testing.T) {
	root := newTestSite(t)
	srv := newTestServer(root)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	res, err := srv.gen.Generate(t.Context(), build.Request{Trigger: metrics.TriggerInitial})
	require.NoError(t, err)
	srv.site.Apply(res)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- srv.serve(ctx, ln) }()

	url := "http://" + ln.Addr().String()
	fetch := func(p string) (int, string) {
		resp, err := http.Get(url + p)
		if err != nil {
			return 0, ""
		}
		defer func() { _ = resp.Body.Close() }()
		b, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, string(b)
	}
	require.Eventually(t, func() bool { code, _ := fetch("/about.html"); return code == http.StatusOK },
		2*time.Second, 10*time.Millisecond)

	writeFile(t, root, "pages/contact.md", "Write us\n")
	require.Eventually(t, func() bool {
		code, body := fetch("/contact.html")
		return code == http.StatusOK && strings.Contains(body, "Write us")
	}, 5*time.Second, 20*time.Millisecond)

	// Output written below public/ must not cause rebuilds.
	builds := srv.Site().Status().Builds
	require.NoError(t, os.MkdirAll(filepath.Join(root, "public"), 0o755))
	time.Sleep(100 * time.Millisecond)
	require.Equal(t, builds, srv.Site().Status().Builds)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServer_RunFailsWhenInitialBuildFails(t *testing.T) {
	root := t.TempDir()
	srv := newTestServer(root)
	err := srv.Run(t.Context())
	require.Error(t, err)
	require.Nil(t, srv.Site().Current())
}

func TestScheduler(t *testing.T) {
	ticks := make(chan struct{}, 4)
	s, err := NewScheduler(20*time.Millisecond, func() {
		select {
		case ticks <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)
	s.Start()
	defer func() { require.NoError(t, s.Stop()) }()

	select {
	case <-ticks:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled task did not run")
	}

	_, err = NewScheduler(0, func() {})
	require.Error(t, err)
}
