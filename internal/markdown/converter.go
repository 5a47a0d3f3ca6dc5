// Package markdown converts Markdown bodies into HTML fragments.
//
// Two converters are provided: PandocConverter shells out to the pandoc
// binary and GoldmarkConverter runs in-process. New picks one from the
// configured config.ConverterKind.
package markdown

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"

	"git.home.luguber.info/inful/snowbow/internal/config"
	"git.home.luguber.info/inful/snowbow/internal/logfields"
)

// Converter turns a Markdown body (front matter already removed) into HTML.
// Implementations must be safe for concurrent use.
type Converter interface {
	Convert(ctx context.Context, src []byte) (string, error)
	Name() string
}

var (
	ErrPandocNotFound   = errors.New("pandoc binary not found")
	ErrConversionFailed = errors.New("markdown conversion failed")
)

// ConverterFunc adapts a function to the Converter interface.
type ConverterFunc func(ctx context.Context, src []byte) (string, error)

func (f ConverterFunc) Convert(ctx context.Context, src []byte) (string, error) { return f(ctx, src) }
func (f ConverterFunc) Name() string                                            { return "func" }

// New returns the converter for kind. Auto prefers pandoc when it is on PATH.
func New(kind config.ConverterKind, pandocPath string) (Converter, error) {
	switch kind {
	case config.ConverterGoldmark:
		return NewGoldmarkConverter(), nil
	case config.ConverterPandoc:
		p := &PandocConverter{Path: pandocPath}
		if _, err := exec.LookPath(p.binary()); err != nil {
			return nil, errors.Join(ErrPandocNotFound, err)
		}
		return p, nil
	default:
		p := &PandocConverter{Path: pandocPath}
		if _, err := exec.LookPath(p.binary()); err != nil {
			slog.Info("pandoc not found, using goldmark", logfields.Converter("goldmark"))
			return NewGoldmarkConverter(), nil
		}
		return p, nil
	}
}
