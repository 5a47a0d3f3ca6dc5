package config

import (
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"git.home.luguber.info/inful/snowbow/internal/foundation/errors"
)

// ConverterKind selects the Markdown converter.
type ConverterKind string

const (
	ConverterAuto     ConverterKind = "auto"
	ConverterPandoc   ConverterKind = "pandoc"
	ConverterGoldmark ConverterKind = "goldmark"
)

// ParseConverterKind normalizes a converter name. The empty string selects auto.
func ParseConverterKind(raw string) (ConverterKind, error) {
	switch ConverterKind(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ConverterAuto:
		return ConverterAuto, nil
	case ConverterPandoc:
		return ConverterPandoc, nil
	case ConverterGoldmark:
		return ConverterGoldmark, nil
	default:
		return "", errors.ValidationError("unknown converter").
			WithContext("converter", raw).
			WithContext("valid", "auto, pandoc, goldmark").
			Build()
	}
}

// PublishDirName is the build output directory created below the content root.
const PublishDirName = "public"

// Options is the immutable per-invocation build configuration threaded through
// every pipeline entry point.
type Options struct {
	ContentRoot string
	Theme       string
	// BuildTime is fixed once per build pass and exposed to templates and feeds.
	BuildTime  time.Time
	Workers    int
	Converter  ConverterKind
	PandocPath string
	// OutputDir overrides <ContentRoot>/public.
	OutputDir string
}

// WithDefaults returns a copy with zero fields filled in.
func (o Options) WithDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.Converter == "" {
		o.Converter = ConverterAuto
	}
	if o.PandocPath == "" {
		o.PandocPath = "pandoc"
	}
	if o.BuildTime.IsZero() {
		o.BuildTime = time.Now()
	}
	return o
}

// WithBuildTime returns a copy stamped with t. Each rebuild gets its own stamp.
func (o Options) WithBuildTime(t time.Time) Options {
	o.BuildTime = t
	return o
}

// Validate checks required fields.
func (o Options) Validate() error {
	if o.ContentRoot == "" {
		return errors.ValidationError("content root is required").Build()
	}
	if o.Theme == "" {
		return errors.ValidationError("theme is required").Build()
	}
	if strings.ContainsAny(o.Theme, `/\`) {
		return errors.ValidationError("theme must be a directory name").WithContext("theme", o.Theme).Build()
	}
	if o.Workers < 0 {
		return errors.ValidationError("workers must not be negative").WithContext("workers", o.Workers).Build()
	}
	return nil
}

// PublishDir returns the directory build mode writes to.
func (o Options) PublishDir() string {
	if o.OutputDir != "" {
		return o.OutputDir
	}
	return filepath.Join(o.ContentRoot, PublishDirName)
}

// ThemeDir returns the selected theme's directory.
func (o Options) ThemeDir() string {
	return ThemeDir(o.ContentRoot, o.Theme)
}
