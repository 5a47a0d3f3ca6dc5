// Package content loads Markdown source files into rendered content units.
package content

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/inful/mdfp"

	ferrors "git.home.luguber.info/inful/snowbow/internal/foundation/errors"
	"git.home.luguber.info/inful/snowbow/internal/frontmatter"
	"git.home.luguber.info/inful/snowbow/internal/markdown"
)

// Unit is one source file's parsed result. It lives for a single build pass.
type Unit struct {
	// FrontMatter is nil when the source had no front matter block.
	FrontMatter frontmatter.Map
	// Body is the converted HTML.
	Body string
	// Fingerprint identifies the source (front matter and Markdown body).
	Fingerprint string
}

// Loader splits sources into front matter and body and converts the body.
type Loader struct {
	converter markdown.Converter
}

func NewLoader(c markdown.Converter) *Loader {
	return &Loader{converter: c}
}

// Converter returns the converter used for bodies.
func (l *Loader) Converter() markdown.Converter { return l.converter }

// Load parses raw source text. Malformed front matter and converter failures
// are ContentParseErrors.
func (l *Loader) Load(ctx context.Context, raw []byte) (Unit, error) {
	fmRaw, body, had, err := frontmatter.Split(raw)
	if err != nil {
		return Unit{}, ferrors.WrapError(err, ferrors.CategoryContent, "front matter is not terminated").UserAction().Build()
	}

	var fm frontmatter.Map
	if had {
		fm, err = frontmatter.Parse(fmRaw)
		if err != nil {
			return Unit{}, ferrors.WrapError(err, ferrors.CategoryContent, "front matter is not valid YAML").UserAction().Build()
		}
		if err := fm.CheckWellKnown(); err != nil {
			return Unit{}, ferrors.WrapError(err, ferrors.CategoryContent, "front matter has a mistyped key").UserAction().Build()
		}
	}

	html, err := l.converter.Convert(ctx, body)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return Unit{}, err
		}
		return Unit{}, ferrors.WrapError(err, ferrors.CategoryContent, "markdown conversion failed").
			WithContext("converter", l.converter.Name()).
			UserAction().
			Build()
	}

	return Unit{
		FrontMatter: fm,
		Body:        html,
		Fingerprint: Fingerprint(fmRaw, body),
	}, nil
}

// LoadFile reads and loads path. Errors carry the file path as context.
func (l *Loader) LoadFile(ctx context.Context, path string) (Unit, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Unit{}, ferrors.WrapError(err, ferrors.CategoryFileSystem, "content file not readable").
			WithContext("file", path).
			Build()
	}
	u, err := l.Load(ctx, raw)
	if err != nil {
		if ce, ok := ferrors.AsClassified(err); ok {
			return Unit{}, ce.WithContext("file", path)
		}
		return Unit{}, err
	}
	return u, nil
}

// Fingerprint returns the mdfp fingerprint of a source split into its raw
// front matter and Markdown body.
func Fingerprint(fm, body []byte) string {
	return mdfp.CalculateFingerprintFromParts(strings.TrimSuffix(string(fm), "\n"), string(body))
}
