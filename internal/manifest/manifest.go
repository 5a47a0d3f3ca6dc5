// Package manifest describes what went into a build and what came out: the
// theme, the converter, every source with its fingerprint, and the output
// digest. Two builds with the same input hash produce the same site.
package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"git.home.luguber.info/inful/snowbow/internal/config"
	"git.home.luguber.info/inful/snowbow/internal/foundation/errors"
	"git.home.luguber.info/inful/snowbow/internal/page"
	"git.home.luguber.info/inful/snowbow/internal/resolve"
	"git.home.luguber.info/inful/snowbow/internal/vfs"
)

// FileName is the manifest's file name in the site state directory.
const FileName = "manifest.json"

// Manifest is the record of one build.
type Manifest struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Revision  string    `json:"revision,omitempty"`
	Inputs    Inputs    `json:"inputs"`
	Outputs   Outputs   `json:"outputs"`
}

// Inputs captures everything that determines the output.
type Inputs struct {
	Theme     string   `json:"theme"`
	ThemeHash string   `json:"theme_hash"`
	Converter string   `json:"converter"`
	Languages []string `json:"languages"`
	Sources   []Source `json:"sources"`
}

// Source is one Markdown file as it was resolved.
type Source struct {
	Kind        string `json:"kind"`
	CommonName  string `json:"common_name"`
	Language    string `json:"language,omitempty"`
	Path        string `json:"path"`
	Fingerprint string `json:"fingerprint"`
}

// Outputs summarizes the generated file system.
type Outputs struct {
	Files  int    `json:"files"`
	Bytes  int64  `json:"bytes"`
	Digest string `json:"digest"`
}

// New starts a manifest for a build.
func New(id string, ts time.Time, revision string) *Manifest {
	return &Manifest{ID: id, Timestamp: ts, Revision: revision}
}

// SetTheme records the theme and converter.
func (m *Manifest) SetTheme(name string, theme *config.Theme, converter string) error {
	data, err := json.Marshal(theme)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "marshal theme for manifest").Build()
	}
	sum := sha256.Sum256(data)
	m.Inputs.Theme = name
	m.Inputs.ThemeHash = hex.EncodeToString(sum[:])
	m.Inputs.Converter = converter
	m.Inputs.Languages = append([]string(nil), theme.Languages...)
	return nil
}

// AddSources records every page that was rendered from its own source, in
// path order. Fallback copies and language indexes have no source of their own.
func (m *Manifest) AddSources(g *resolve.Graph) {
	for _, p := range g.All() {
		if p.Kind == page.KindIndex || p.IsFallback() {
			continue
		}
		m.Inputs.Sources = append(m.Inputs.Sources, sourceOf(p))
	}
	sort.Slice(m.Inputs.Sources, func(i, j int) bool {
		return m.Inputs.Sources[i].Path < m.Inputs.Sources[j].Path
	})
}

func sourceOf(p *page.Page) Source {
	return Source{
		Kind:        string(p.Kind),
		CommonName:  p.CommonName,
		Language:    p.ContentLanguage,
		Path:        p.Path(),
		Fingerprint: p.Fingerprint,
	}
}

// SetOutputs records the size and digest of fsys.
func (m *Manifest) SetOutputs(fsys *vfs.FS) {
	m.Outputs = Outputs{Files: fsys.Len(), Bytes: fsys.Size(), Digest: fsys.Digest()}
}

// ToJSON serializes the manifest to indented JSON.
func (m *Manifest) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "marshal manifest").Build()
	}
	return data, nil
}

// FromJSON deserializes a manifest.
func FromJSON(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "unmarshal manifest").Build()
	}
	return &m, nil
}

// Hash returns a digest of the inputs only. Build id, time and outputs do not
// contribute, so equal hashes mean equal inputs.
func (m *Manifest) Hash() (string, error) {
	data, err := json.Marshal(m.Inputs)
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryInternal, "marshal manifest inputs").Build()
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// WriteFile writes the manifest to path, creating its directory.
func (m *Manifest) WriteFile(path string) error {
	data, err := m.ToJSON()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "create manifest directory").
			WithContext("path", path).Build()
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "write manifest").
			WithContext("path", path).Build()
	}
	return nil
}
