package commands

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/snowbow/internal/build"
	"git.home.luguber.info/inful/snowbow/internal/history"
	"git.home.luguber.info/inful/snowbow/internal/logfields"
	"git.home.luguber.info/inful/snowbow/internal/manifest"
	"git.home.luguber.info/inful/snowbow/internal/metrics"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Dir       string `arg:"" type:"existingdir" help:"Content root"`
	Theme     string `required:"" help:"Theme directory name below <dir>/themes"`
	Output    string `short:"o" help:"Output directory (default <dir>/public)" type:"path"`
	NoHistory bool   `name:"no-history" help:"Do not record the build in <dir>/.snowbow/history.db"`
}

// Run builds the site in memory and publishes it only if every stage succeeded.
func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	ctx, cancel := signalContext()
	defer cancel()

	opts, err := root.Options(b.Dir, b.Theme)
	if err != nil {
		return err
	}
	opts.OutputDir = b.Output
	conv, err := converterFor(opts)
	if err != nil {
		return err
	}
	store, genOpts := openHistory(opts, b.NoHistory)
	defer closeHistory(store)

	res, err := build.NewGenerator(opts, conv, genOpts...).Generate(ctx, build.Request{Trigger: metrics.TriggerBuild})
	if err != nil {
		build.LogResult(ctx, res)
		return err
	}
	if err := build.Publish(res.FS, opts.PublishDir(), res.Theme.BasePath); err != nil {
		return err
	}
	if err := res.Manifest.WriteFile(filepath.Join(opts.ContentRoot, history.Dir, manifest.FileName)); err != nil {
		slog.Warn("Failed to write build manifest", logfields.Error(err))
	}
	fmt.Printf("Built %d files (%d articles) into %s in %s\n",
		res.Files(), res.Articles(), opts.PublishDir(), res.Duration.Round(time.Millisecond))
	return nil
}
