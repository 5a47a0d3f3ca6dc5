// Package commands implements the snowbow command line.
package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"git.home.luguber.info/inful/snowbow/internal/build"
	"git.home.luguber.info/inful/snowbow/internal/config"
	"git.home.luguber.info/inful/snowbow/internal/history"
	"git.home.luguber.info/inful/snowbow/internal/logfields"
	"git.home.luguber.info/inful/snowbow/internal/markdown"
)

// EnvFileFlag names the flag PreloadEnv looks for.
const EnvFileFlag = "--env-file"

// Global carries state shared by all commands.
type Global struct {
	Logger *slog.Logger
}

// CLI is the root command and its global flags.
type CLI struct {
	Verbose   bool     `short:"v" help:"Enable verbose logging"`
	EnvFile   []string `name:"env-file" help:"Environment files loaded before flags are resolved (default .env)" placeholder:"FILE"`
	Workers   int      `help:"Parallel load and render workers (0 uses every CPU)" default:"0" env:"SNOWBOW_WORKERS"`
	Converter string   `help:"Markdown converter: auto, pandoc or goldmark" default:"auto" enum:"auto,pandoc,goldmark" env:"SNOWBOW_CONVERTER"`
	Pandoc    string   `help:"Path to the pandoc binary" default:"pandoc" env:"PANDOC_PATH"`

	Build   BuildCmd   `cmd:"" help:"Build the site into <dir>/public"`
	Server  ServerCmd  `cmd:"" help:"Serve the site from memory and rebuild on change"`
	History HistoryCmd `cmd:"" help:"List recorded builds"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// PreloadEnv loads the files named by --env-file in args, or .env in the
// working directory when the flag is absent. It runs before kong parses the
// command line so env-bound flag defaults see the loaded variables.
func PreloadEnv(args []string) ([]string, error) {
	var files []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			break
		}
		if v, ok := strings.CutPrefix(a, EnvFileFlag+"="); ok {
			files = append(files, v)
			continue
		}
		if a == EnvFileFlag && i+1 < len(args) {
			files = append(files, args[i+1])
			i++
		}
	}
	if len(files) == 0 {
		files = []string{".env"}
	}
	return config.LoadEnvFiles(files...)
}

// Options assembles validated build options for a content root.
func (c *CLI) Options(dir, theme string) (config.Options, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return config.Options{}, err
	}
	// Variables in the content root's .env are available to theme-config.json.
	loaded, err := config.LoadEnvFiles(filepath.Join(abs, ".env"))
	if err != nil {
		return config.Options{}, err
	}
	for _, f := range loaded {
		slog.Debug("Loaded environment", logfields.File(f))
	}
	kind, err := config.ParseConverterKind(c.Converter)
	if err != nil {
		return config.Options{}, err
	}
	opts := config.Options{
		ContentRoot: abs,
		Theme:       theme,
		Workers:     c.Workers,
		Converter:   kind,
		PandocPath:  c.Pandoc,
	}
	if err := opts.Validate(); err != nil {
		return config.Options{}, err
	}
	return opts.WithDefaults(), nil
}

func converterFor(opts config.Options) (markdown.Converter, error) {
	return markdown.New(opts.Converter, opts.PandocPath)
}

// openHistory opens the content root's history store. Failure is logged and
// the build continues without history.
func openHistory(opts config.Options, disabled bool) (history.Store, []build.Option) {
	if disabled {
		return nil, nil
	}
	store, err := history.OpenSQLite(history.DefaultPath(opts.ContentRoot))
	if err != nil {
		slog.Warn("Build history unavailable", logfields.Error(err))
		return nil, nil
	}
	return store, []build.Option{build.WithHistory(store)}
}

func closeHistory(store history.Store) {
	if store == nil {
		return
	}
	if err := store.Close(); err != nil {
		slog.Warn("Failed to close build history", logfields.Error(err))
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
