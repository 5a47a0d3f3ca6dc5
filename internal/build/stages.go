package build

import (
	"context"
	"time"

	"git.home.luguber.info/inful/snowbow/internal/config"
	"git.home.luguber.info/inful/snowbow/internal/logfields"
	"git.home.luguber.info/inful/snowbow/internal/manifest"
	"git.home.luguber.info/inful/snowbow/internal/metrics"
	"git.home.luguber.info/inful/snowbow/internal/observability"
	"git.home.luguber.info/inful/snowbow/internal/render"
	"git.home.luguber.info/inful/snowbow/internal/resolve"
	"git.home.luguber.info/inful/snowbow/internal/vfs"
)

// StageName is a strongly-typed identifier for a build stage.
type StageName string

// Canonical stage names, in execution order.
const (
	StageLoadTheme StageName = "load_theme"
	StageResolve   StageName = "resolve"
	StageRender    StageName = "render"
	StageAssets    StageName = "assets"
	StageFeeds     StageName = "feeds"
	StageRedirect  StageName = "redirect"
	StageManifest  StageName = "manifest"
)

// Stage is a discrete unit of work in a build pass.
type Stage func(ctx context.Context, st *State) error

// StageDef pairs a stage name with its executing function.
type StageDef struct {
	Name StageName
	Fn   Stage
}

// State carries the values stages produce for later stages.
type State struct {
	Options   config.Options
	Info      render.BuildInfo
	Theme     *config.Theme
	Templates *render.Templates
	Graph     *resolve.Graph
	FS        *vfs.FS
	Manifest  *manifest.Manifest
	Timings   map[StageName]time.Duration

	generator *Generator
}

// runStages executes stages in order, recording timing and stopping on the
// first error.
func runStages(ctx context.Context, st *State, stages []StageDef, recorder metrics.Recorder) error {
	for _, sd := range stages {
		if err := ctx.Err(); err != nil {
			recorder.IncStageResult(string(sd.Name), metrics.ResultCanceled)
			return err
		}
		sctx := observability.WithStage(ctx, string(sd.Name))
		t0 := time.Now()
		err := sd.Fn(sctx, st)
		dur := time.Since(t0)
		st.Timings[sd.Name] = dur
		recorder.ObserveStageDuration(string(sd.Name), dur)
		if err != nil {
			result := metrics.ResultFatal
			if ctx.Err() != nil {
				result = metrics.ResultCanceled
			}
			recorder.IncStageResult(string(sd.Name), result)
			return err
		}
		recorder.IncStageResult(string(sd.Name), metrics.ResultSuccess)
		observability.DebugContext(sctx, "Stage complete", logfields.DurationMS(dur))
	}
	return nil
}

func defaultStages() []StageDef {
	return []StageDef{
		{StageLoadTheme, stageLoadTheme},
		{StageResolve, stageResolve},
		{StageRender, stageRender},
		{StageAssets, stageAssets},
		{StageFeeds, stageFeeds},
		{StageRedirect, stageRedirect},
		{StageManifest, stageManifest},
	}
}
