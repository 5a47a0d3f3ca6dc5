package render

import (
	"fmt"
	"html/template"
	"reflect"
	"strings"
	"unicode/utf8"

	"git.home.luguber.info/inful/snowbow/internal/page"
	"git.home.luguber.info/inful/snowbow/internal/resolve"
)

// Helper arities, checked by tests against funcMap. A negative value marks a
// variadic helper.
var helperArity = map[string]int{
	"fm":      3,
	"str":     -1,
	"length":  1,
	"ternary": 3,
	"partial": 2,
	"safe":    1,
}

func (t *Templates) funcMap() template.FuncMap {
	return template.FuncMap{
		"fm":      frontMatter,
		"str":     str,
		"length":  length,
		"ternary": ternary,
		"partial": t.partial,
		"safe":    safe,
	}
}

// frontMatter returns a front matter value of p, or def when the key is absent.
func frontMatter(p *page.Page, key string, def any) any {
	if p == nil {
		return def
	}
	return p.Param(key, def)
}

func str(args ...any) string {
	var b strings.Builder
	for _, a := range args {
		b.WriteString(fmt.Sprint(a))
	}
	return b.String()
}

func length(v any) (int, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case string:
		return utf8.RuneCountInString(x), nil
	case template.HTML:
		return utf8.RuneCountInString(string(x)), nil
	case *resolve.Taxonomy:
		return x.Len(), nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Chan:
		return rv.Len(), nil
	}
	return 0, fmt.Errorf("length: unsupported type %T", v)
}

func ternary(cond bool, a, b any) any {
	if cond {
		return a
	}
	return b
}

func safe(s string) template.HTML {
	return template.HTML(s) //nolint:gosec
}
