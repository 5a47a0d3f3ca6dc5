package server

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/snowbow/internal/build"
	"git.home.luguber.info/inful/snowbow/internal/foundation/errors"
	"git.home.luguber.info/inful/snowbow/internal/metrics"
)

func TestSite_ServeHTTP(t *testing.T) {
	site := NewSite()
	site.Apply(successResult(snapshot(t, map[string]string{
		"/blog/":             "<p>home</p>",
		"/blog/css/site.css": "body{}",
		"/blog/LICENSE":      "MIT",
	})))

	tests := []struct {
		name, method, path string
		status             int
		ctype, body        string
	}{
		{"index", http.MethodGet, "/blog/", http.StatusOK, "text/html; charset=utf-8", "<p>home</p>"},
		{"explicit index", http.MethodGet, "/blog/index.html", http.StatusOK, "text/html; charset=utf-8", "<p>home</p>"},
		{"css", http.MethodGet, "/blog/css/site.css", http.StatusOK, "text/css; charset=utf-8", "body{}"},
		{"no extension", http.MethodGet, "/blog/LICENSE", http.StatusOK, "application/octet-stream", "MIT"},
		{"head", http.MethodHead, "/blog/", http.StatusOK, "text/html; charset=utf-8", ""},
		{"outside base path", http.MethodGet, "/", http.StatusNotFound, "text/plain; charset=utf-8", "404 not found"},
		{"missing", http.MethodGet, "/blog/nope.html", http.StatusNotFound, "text/plain; charset=utf-8", "404 not found"},
		{"post", http.MethodPost, "/blog/", http.StatusMethodNotAllowed, "text/plain; charset=utf-8", "405 method not allowed\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			site.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			require.Equal(t, tt.status, rec.Code)
			require.Equal(t, tt.ctype, rec.Header().Get("Content-Type"))
			require.Equal(t, tt.body, rec.Body.String())
		})
	}
}

func TestSite_EmptyServes404(t *testing.T) {
	rec := httptest.NewRecorder()
	NewSite().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSite_FailedBuildKeepsSnapshot(t *testing.T) {
	site := NewSite()
	good := snapshot(t, map[string]string{"/": "v1"})
	digest, ok := site.Apply(successResult(good))
	require.True(t, ok)
	require.Equal(t, good.Digest(), digest)

	failed := &build.Result{
		ID:          "b2",
		Status:      build.BuildStatusFailed,
		FailedStage: build.StageRender,
		Err:         errors.TemplateError("no translation").WithContext("key", "home").Build(),
	}
	_, ok = site.Apply(failed)
	require.False(t, ok)
	require.Same(t, good, site.Current())

	st := site.Status()
	require.Equal(t, 2, st.Builds)
	require.Equal(t, "b1", st.Serving.ID)
	require.Equal(t, "b2", st.Last.ID)
	require.Equal(t, "render", st.Last.FailedStage)
	require.Equal(t, "template", st.Last.Error.Code)
	require.Equal(t, "home", st.Last.Error.Details["key"])
}

func TestInjectLiveReload(t *testing.T) {
	site := NewSite()
	site.Apply(successResult(snapshot(t, map[string]string{
		"/":          "<html><body><p>hi</p></body></html>",
		"/app.js":    "console.log(1)</body>",
		"/frag.html": "<p>fragment</p>",
	})))
	h := InjectLiveReload(site)

	get := func(p string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, p, nil))
		return rec
	}

	page := get("/")
	require.Equal(t, "<html><body><p>hi</p>"+LiveReloadScript+"</body></html>", page.Body.String())
	require.Empty(t, page.Header().Get("Content-Length"))

	require.Equal(t, "<p>fragment</p>"+LiveReloadScript, get("/frag.html").Body.String())

	js := get("/app.js")
	require.Equal(t, "console.log(1)</body>", js.Body.String())
	require.NotContains(t, js.Body.String(), "EventSource")

	missing := get("/nope")
	require.Equal(t, http.StatusNotFound, missing.Code)
	require.Equal(t, "404 not found", missing.Body.String())
}

func TestChain_RecoversPanics(t *testing.T) {
	adapter := errors.NewHTTPErrorAdapter(nil)
	h := Chain(slog.New(slog.DiscardHandler), adapter, metrics.NoopRecorder{})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json"))
	require.Contains(t, rec.Body.String(), `"code":"internal"`)
}

func TestChain_PanicAfterResponseStartedKeepsBody(t *testing.T) {
	rec := &recordingRecorder{}
	h := Chain(slog.New(slog.DiscardHandler), errors.NewHTTPErrorAdapter(nil), rec)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("partial"))
		panic("late boom")
	}))
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/x", nil))

	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "partial", resp.Body.String())
	require.Equal(t, "text/plain", resp.Header().Get("Content-Type"))
	require.Equal(t, []int{http.StatusOK}, rec.statuses)
}

func TestChain_PanicBeforeResponseCountsServerError(t *testing.T) {
	rec := &recordingRecorder{}
	h := Chain(slog.New(slog.DiscardHandler), errors.NewHTTPErrorAdapter(nil), rec)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))
	require.Equal(t, []int{http.StatusInternalServerError}, rec.statuses)
}

// recordingRecorder keeps the status of every counted request.
type recordingRecorder struct {
	metrics.NoopRecorder
	statuses []int
}

func (r *recordingRecorder) IncHTTPRequest(_ string, status int) {
	r.statuses = append(r.statuses, status)
}
