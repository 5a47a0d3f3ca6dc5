// Package render executes theme templates against resolved pages.
//
// Every *.tmpl file below the theme directory, except those under assets/,
// is parsed into one html/template set and named by its slash-separated
// path relative to the theme directory. Pages are rendered by executing
// RootTemplate with a Context; other templates are reached through the
// template action or the partial helper.
package render

import (
	"bytes"
	"html/template"
	"io/fs"
	"os"
	"path"
	"strings"

	"git.home.luguber.info/inful/snowbow/internal/foundation/errors"
)

const (
	// RootTemplate is executed once per page.
	RootTemplate = "index.tmpl"
	// TemplateExt marks theme files parsed as templates.
	TemplateExt = ".tmpl"
	// AssetsDir holds static theme files, never parsed.
	AssetsDir = "assets"
)

// Templates is a parsed theme template set. It is safe for concurrent use.
type Templates struct {
	set   *template.Template
	names []string
}

// LoadTemplates parses the templates of the theme at dir.
func LoadTemplates(dir string) (*Templates, error) {
	return ParseFS(os.DirFS(dir))
}

// ParseFS parses every template file in fsys.
func ParseFS(fsys fs.FS) (*Templates, error) {
	t := &Templates{}
	t.set = template.New("").Funcs(t.funcMap()).Option("missingkey=error")

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p == AssetsDir || (p != "." && strings.HasPrefix(d.Name(), ".")) {
				return fs.SkipDir
			}
			return nil
		}
		if path.Ext(p) != TemplateExt {
			return nil
		}
		src, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		if _, err := t.set.New(p).Parse(string(src)); err != nil {
			return errors.WrapError(err, errors.CategoryTemplate, "parse template").
				WithContext("template", p).UserAction().Build()
		}
		t.names = append(t.names, p)
		return nil
	})
	if err != nil {
		if _, ok := errors.AsClassified(err); ok {
			return nil, err
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "read theme templates").Build()
	}
	if t.set.Lookup(RootTemplate) == nil {
		return nil, errors.TemplateError("theme has no root template").
			WithContext("template", RootTemplate).Build()
	}
	return t, nil
}

// Names returns the parsed template names in walk order.
func (t *Templates) Names() []string { return t.names }

// Render executes the root template for ctx.
func (t *Templates) Render(ctx *Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.set.ExecuteTemplate(&buf, RootTemplate, ctx); err != nil {
		b := errors.WrapError(err, errors.CategoryTemplate, "execute template").
			WithContext("template", RootTemplate)
		if ctx.Page != nil {
			b = b.WithContext("page", ctx.Page.Path())
		}
		return nil, b.Build()
	}
	return buf.Bytes(), nil
}

func (t *Templates) partial(name string, data any) (template.HTML, error) {
	tmpl := t.set.Lookup(name)
	if tmpl == nil {
		return "", errors.TemplateError("unknown partial").WithContext("template", name).Build()
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	// The partial's output was escaped by its own execution.
	return template.HTML(buf.String()), nil //nolint:gosec
}
