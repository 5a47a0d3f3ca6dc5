package build

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/snowbow/internal/config"
	"git.home.luguber.info/inful/snowbow/internal/git"
	"git.home.luguber.info/inful/snowbow/internal/history"
	"git.home.luguber.info/inful/snowbow/internal/logfields"
	"git.home.luguber.info/inful/snowbow/internal/markdown"
	"git.home.luguber.info/inful/snowbow/internal/metrics"
	"git.home.luguber.info/inful/snowbow/internal/observability"
	"git.home.luguber.info/inful/snowbow/internal/render"
	"git.home.luguber.info/inful/snowbow/internal/vfs"
)

// Generator runs build passes for one content root and theme.
type Generator struct {
	opts      config.Options
	converter markdown.Converter
	recorder  metrics.Recorder
	history   history.Store
	stages    []StageDef
}

// Option configures a Generator.
type Option func(*Generator)

// WithRecorder reports stage and build metrics to r.
func WithRecorder(r metrics.Recorder) Option {
	return func(g *Generator) {
		if r != nil {
			g.recorder = r
		}
	}
}

// WithHistory appends a record of every pass to s.
func WithHistory(s history.Store) Option {
	return func(g *Generator) { g.history = s }
}

// NewGenerator creates a generator. opts must be valid; zero fields get defaults.
func NewGenerator(opts config.Options, conv markdown.Converter, options ...Option) *Generator {
	g := &Generator{
		opts:     opts.WithDefaults(),
		recorder: metrics.NoopRecorder{},
		stages:   defaultStages(),
	}
	for _, o := range options {
		o(g)
	}
	g.converter = timedConverter{Converter: conv, recorder: g.recorder}
	return g
}

// Options returns the generator's options.
func (g *Generator) Options() config.Options { return g.opts }

// Generate runs one pass. The returned Result is never nil; on failure it
// carries the error and the returned error is the same value.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	id := uuid.NewString()
	ctx = observability.WithBuildID(ctx, id)

	buildTime := req.Time
	if buildTime.IsZero() {
		buildTime = g.opts.BuildTime
	}
	st := &State{
		Options:   g.opts,
		Info:      render.BuildInfo{ID: id, Time: buildTime, Revision: g.readRevision(ctx)},
		FS:        vfs.New(),
		Timings:   map[StageName]time.Duration{},
		generator: g,
	}
	observability.InfoContext(ctx, "Build started",
		logfields.Path(g.opts.ContentRoot), logfields.Theme(g.opts.Theme),
		logfields.Event(req.Trigger), logfields.Converter(g.converter.Name()))

	err := runStages(ctx, st, g.stages, g.recorder)

	res := &Result{
		ID:        id,
		Trigger:   req.Trigger,
		Info:      st.Info,
		Theme:     st.Theme,
		StartTime: start,
		Duration:  time.Since(start),
		Timings:   st.Timings,
		Err:       err,
	}
	switch {
	case err == nil:
		res.Status = BuildStatusSuccess
		res.FS, res.Graph, res.Manifest = st.FS, st.Graph, st.Manifest
		g.recorder.IncBuildOutcome(metrics.BuildSuccess)
		g.recorder.SetOutput(st.FS.Len(), st.FS.Size())
		observability.InfoContext(ctx, "Build finished",
			logfields.Count(st.FS.Len()), logfields.DurationMS(res.Duration))
	case ctx.Err() != nil:
		res.Status = BuildStatusCancelled
		g.recorder.IncBuildOutcome(metrics.BuildCanceled)
	default:
		res.Status = BuildStatusFailed
		res.FailedStage = lastStage(st)
		g.recorder.IncBuildOutcome(metrics.BuildFailed)
	}
	g.recorder.ObserveBuildDuration(res.Duration)
	g.appendHistory(ctx, res)
	return res, err
}

func (g *Generator) readRevision(ctx context.Context) git.Revision {
	rev, err := git.ReadRevision(g.opts.ContentRoot)
	if err != nil && !stderrors.Is(err, git.ErrNotRepository) {
		observability.WarnContext(ctx, "Could not read content revision", logfields.Error(err))
	}
	return rev
}

func (g *Generator) appendHistory(ctx context.Context, res *Result) {
	if g.history == nil {
		return
	}
	rec := history.Record{
		ID:       res.ID,
		Started:  res.StartTime,
		Duration: res.Duration,
		Trigger:  res.Trigger,
		Files:    res.Files(),
		Articles: res.Articles(),
		Revision: res.Info.Revision.String(),
		Stages:   make(map[string]time.Duration, len(res.Timings)),
	}
	for k, d := range res.Timings {
		rec.Stages[string(k)] = d
	}
	if res.FS != nil {
		rec.Bytes = res.FS.Size()
		rec.Digest = res.FS.Digest()
	}
	if res.Err != nil {
		rec.Error = res.Err.Error()
	}
	// A cancelled context must not lose the record of the pass.
	if err := g.history.Append(context.WithoutCancel(ctx), rec); err != nil {
		observability.WarnContext(ctx, "Could not record build history", logfields.Error(err))
	}
}

// lastStage returns the stage that ran last, which is the failing one.
func lastStage(st *State) StageName {
	var last StageName
	for _, sd := range st.generator.stages {
		if _, ok := st.Timings[sd.Name]; ok {
			last = sd.Name
		}
	}
	return last
}

// LogResult logs a failed pass with its classification.
func LogResult(ctx context.Context, res *Result) {
	if res.Err == nil {
		return
	}
	ctx = observability.WithBuildID(ctx, res.ID)
	attrs := []slog.Attr{logfields.Error(res.Err), logfields.Stage(string(res.FailedStage))}
	observability.ErrorContext(ctx, "Build failed", attrs...)
}
