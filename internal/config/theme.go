package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/language"

	"git.home.luguber.info/inful/snowbow/internal/foundation/errors"
	"git.home.luguber.info/inful/snowbow/internal/util/sets"
)

// ThemeConfigFile is the name of the theme configuration file inside a theme directory.
const ThemeConfigFile = "theme-config.json"

// Theme is the per-theme site configuration. It is immutable after LoadTheme returns.
type Theme struct {
	CommonTitle    string                       `json:"CommonTitle"`
	CommonSubtitle string                       `json:"CommonSubtitle"`
	Author         string                       `json:"Author"`
	Email          string                       `json:"Email"`
	SchemeAndHost  string                       `json:"SchemeAndHost"`
	BasePath       string                       `json:"BasePath"`
	Languages      []string                     `json:"Languages"`
	Translation    map[string]map[string]string `json:"Translation"`
}

// LoadTheme reads themes/<name>/theme-config.json below the content root.
func LoadTheme(contentRoot, name string) (*Theme, error) {
	path := filepath.Join(ThemeDir(contentRoot, name), ThemeConfigFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "theme configuration not readable").
			WithContext("file", path).
			Fatal().
			Build()
	}
	theme, err := ParseTheme(data)
	if err != nil {
		if ce, ok := errors.AsClassified(err); ok {
			return nil, ce.WithContext("file", path)
		}
		return nil, err
	}
	return theme, nil
}

// envRef matches ${NAME}. Bare $NAME is left alone so site text keeps its dollars.
var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvRefs replaces ${NAME} with the value of the environment variable.
func expandEnvRefs(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(ref string) string {
		return os.Getenv(ref[2 : len(ref)-1])
	})
}

// ParseTheme decodes a theme configuration. Unknown fields are rejected.
// ${NAME} references in SchemeAndHost and BasePath are expanded from the
// environment after decoding; other fields are taken literally.
func ParseTheme(data []byte) (*Theme, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var t Theme
	if err := dec.Decode(&t); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "theme configuration is not valid").Fatal().Build()
	}
	if err := dec.Decode(new(json.RawMessage)); err != io.EOF {
		return nil, errors.ConfigError("theme configuration has trailing data").Build()
	}
	t.SchemeAndHost = expandEnvRefs(t.SchemeAndHost)
	t.BasePath = expandEnvRefs(t.BasePath)
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks the required fields and language table consistency.
func (t *Theme) Validate() error {
	switch {
	case t.SchemeAndHost == "":
		return errors.ConfigError("SchemeAndHost is required").Build()
	case t.BasePath == "":
		return errors.ConfigError("BasePath is required").Build()
	case !strings.HasPrefix(t.BasePath, "/") || !strings.HasSuffix(t.BasePath, "/"):
		return errors.ConfigError("BasePath must start and end with '/'").WithContext("base_path", t.BasePath).Build()
	case strings.HasSuffix(t.SchemeAndHost, "/"):
		return errors.ConfigError("SchemeAndHost must not end with '/'").WithContext("scheme_and_host", t.SchemeAndHost).Build()
	case t.Languages == nil:
		return errors.ConfigError("Languages is required").Build()
	}

	seen := sets.New[string]()
	for _, lang := range t.Languages {
		if _, err := language.Parse(lang); err != nil {
			return errors.WrapError(err, errors.CategoryConfig, "language is not a valid BCP 47 tag").
				WithContext("language", lang).Fatal().Build()
		}
		if strings.Contains(lang, "/") {
			return errors.ConfigError("language must not contain '/'").WithContext("language", lang).Build()
		}
		if seen.Has(lang) {
			return errors.ConfigError("duplicate language").WithContext("language", lang).Build()
		}
		seen.Add(lang)
		if _, ok := t.Translation[lang]; !ok {
			return errors.ConfigError("missing translation table").WithContext("language", lang).Build()
		}
	}
	return nil
}

// DefaultLanguage returns the first configured language, or "" when none are configured.
func (t *Theme) DefaultLanguage() string {
	if len(t.Languages) == 0 {
		return ""
	}
	return t.Languages[0]
}

// HasLanguage reports whether lang is one of the configured languages.
func (t *Theme) HasLanguage(lang string) bool {
	for _, l := range t.Languages {
		if l == lang {
			return true
		}
	}
	return false
}

// Translate looks up key in the table for lang.
func (t *Theme) Translate(lang, key string) (string, bool) {
	table, ok := t.Translation[lang]
	if !ok {
		return "", false
	}
	v, ok := table[key]
	return v, ok
}

// TranslateOr returns the translation of key, or key itself when no entry exists.
func (t *Theme) TranslateOr(lang, key string) string {
	if v, ok := t.Translate(lang, key); ok {
		return v
	}
	return key
}

// String renders the theme for debug logs.
func (t *Theme) String() string {
	return fmt.Sprintf("Theme{title=%q base=%q host=%q languages=%v}", t.CommonTitle, t.BasePath, t.SchemeAndHost, t.Languages)
}

// ThemeDir returns the directory of the named theme below the content root.
func ThemeDir(contentRoot, name string) string {
	return filepath.Join(contentRoot, "themes", name)
}
