package server

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"git.home.luguber.info/inful/snowbow/internal/build"
	"git.home.luguber.info/inful/snowbow/internal/foundation/errors"
	"git.home.luguber.info/inful/snowbow/internal/logfields"
	"git.home.luguber.info/inful/snowbow/internal/metrics"
)

// StatusPath serves a JSON summary of the served and the latest build.
const StatusPath = "/_snowbow/status"

// ManifestPath serves the manifest of the build being served.
const ManifestPath = "/_snowbow/manifest"

// DefaultAddr is where the site is served unless configured otherwise.
const DefaultAddr = "127.0.0.1:4000"

// Config controls server mode.
type Config struct {
	Addr string
	// Debounce is the quiet window between the last change and a rebuild.
	Debounce time.Duration
	// RebuildInterval enables periodic full rebuilds when positive.
	RebuildInterval time.Duration
	// MetricsAddr serves MetricsHandler on its own listener when both are set.
	MetricsAddr    string
	MetricsHandler http.Handler
}

// Server builds the site, serves it from memory and rebuilds on change.
type Server struct {
	cfg       Config
	gen       *build.Generator
	recorder  metrics.Recorder
	site      *Site
	hub       *LiveReloadHub
	adapter   *errors.HTTPErrorAdapter
	debouncer *Debouncer
}

// New creates a server. A nil recorder disables metrics.
func New(gen *build.Generator, cfg Config, recorder metrics.Recorder) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 300 * time.Millisecond
	}
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Server{
		cfg:      cfg,
		gen:      gen,
		recorder: recorder,
		site:     NewSite(),
		hub:      NewLiveReloadHub(),
		adapter:  errors.NewHTTPErrorAdapter(nil),
	}
}

// Site returns the served snapshot holder.
func (s *Server) Site() *Site { return s.site }

// Handler returns the HTTP handler for the site, live reload and status.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(LiveReloadPath, s.hub)
	mux.HandleFunc(StatusPath, s.handleStatus)
	mux.HandleFunc(ManifestPath, s.handleManifest)
	mux.Handle("/", InjectLiveReload(s.site))
	return Chain(slog.Default(), s.adapter, s.recorder)(mux)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.site.Status()
	if st.Last == nil {
		s.writeJSON(w, r, nil)
		return
	}
	s.writeJSON(w, r, st)
}

func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	if m := s.site.Manifest(); m != nil {
		s.writeJSON(w, r, m)
		return
	}
	s.writeJSON(w, r, nil)
}

// writeJSON writes v as indented JSON. A nil v means nothing has been built yet.
func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "405 method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if v == nil {
		s.adapter.WriteErrorResponse(w, r, errors.NewError(errors.CategoryNotFound, "no build has completed").Build())
		return
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		s.adapter.WriteErrorResponse(w, r, errors.WrapError(err, errors.CategoryInternal, "encode response").Build())
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(buf.Bytes())
}

// Rebuild runs one pass and swaps the snapshot on success. A failed pass is
// logged and the previous snapshot stays in service.
func (s *Server) Rebuild(ctx context.Context, trigger string) bool {
	s.recorder.IncRebuild(trigger)
	res, _ := s.gen.Generate(ctx, build.Request{Trigger: trigger, Time: time.Now()})
	digest, ok := s.site.Apply(res)
	if !ok {
		if res.Status != build.BuildStatusCancelled {
			build.LogResult(ctx, res)
		}
		return false
	}
	s.hub.Broadcast(digest)
	slog.Info("Site rebuilt", logfields.Event(trigger), logfields.Count(res.Files()),
		logfields.Digest(digest), logfields.DurationMS(res.Duration))
	return true
}

// Run performs the initial build, which must succeed, then serves until ctx
// is cancelled.
func (s *Server) Run(ctx context.Context) error {
	res, err := s.gen.Generate(ctx, build.Request{Trigger: metrics.TriggerInitial, Time: time.Now()})
	if err != nil {
		build.LogResult(ctx, res)
		return err
	}
	digest, _ := s.site.Apply(res)
	s.hub.Broadcast(digest)

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return errors.ServerError("listen").WithCause(err).WithContext("addr", s.cfg.Addr).Build()
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	opts := s.gen.Options()
	s.debouncer = NewDebouncer(s.cfg.Debounce, func(trigger string) { s.Rebuild(ctx, trigger) })
	defer s.debouncer.Stop()

	watcher, err := NewWatcher(opts.ContentRoot, []string{opts.PublishDir()}, func(string) {
		s.debouncer.Trigger(metrics.TriggerWatch)
	})
	if err != nil {
		_ = ln.Close()
		return err
	}
	defer func() { _ = watcher.Close() }()
	go func() { _ = watcher.Run(ctx) }()

	if s.cfg.RebuildInterval > 0 {
		sched, err := NewScheduler(s.cfg.RebuildInterval, func() { s.debouncer.Trigger(metrics.TriggerSchedule) })
		if err != nil {
			_ = ln.Close()
			return err
		}
		sched.Start()
		defer func() {
			if err := sched.Stop(); err != nil {
				slog.Warn("Scheduler shutdown error", logfields.Error(err))
			}
		}()
	}

	servers := []*http.Server{{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}}
	listeners := []net.Listener{ln}
	if s.cfg.MetricsAddr != "" && s.cfg.MetricsHandler != nil {
		mln, err := net.Listen("tcp", s.cfg.MetricsAddr)
		if err != nil {
			_ = ln.Close()
			return errors.ServerError("listen for metrics").WithCause(err).
				WithContext("addr", s.cfg.MetricsAddr).Build()
		}
		servers = append(servers, &http.Server{Handler: s.cfg.MetricsHandler, ReadHeaderTimeout: 10 * time.Second})
		listeners = append(listeners, mln)
		slog.Info("Metrics listening", logfields.Addr(mln.Addr().String()))
	}

	errCh := make(chan error, len(servers))
	for i, srv := range servers {
		go func() {
			if err := srv.Serve(listeners[i]); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}
	slog.Info("Serving site", logfields.Addr("http://"+ln.Addr().String()))

	var serveErr error
	select {
	case <-ctx.Done():
	case err := <-errCh:
		serveErr = errors.ServerError("HTTP server failed").WithCause(err).Build()
	}

	slog.Info("Shutting down server")
	s.hub.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("HTTP server shutdown error", logfields.Error(err))
		}
	}
	return serveErr
}
