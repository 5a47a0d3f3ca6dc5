// Package vfs holds a build's output in memory until it is published or served.
//
// Paths are absolute site paths ("/en/articles/x/index.html"). A path ending
// in "/" is stored as its index.html. The file set behaves like a real
// directory tree: a path can not be both a file and a directory, so inserting
// "/a" and "/a/b" into one FS fails whichever comes first.
//
// An FS is not safe for concurrent mutation. Once a build completes it is
// treated as an immutable snapshot and may be read from many goroutines.
package vfs

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	stderrors "errors"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"

	"git.home.luguber.info/inful/snowbow/internal/foundation/errors"
)

// IndexFile is the name a trailing-slash path resolves to.
const IndexFile = "index.html"

// ErrInvalidPath is the cause of every path validation failure.
var ErrInvalidPath = stderrors.New("invalid vfs path")

// FS is an in-memory file tree keyed by canonical site path.
type FS struct {
	files map[string][]byte
	// dirs maps every ancestor directory of a stored file to one file below it.
	dirs map[string]string
}

// New returns an empty FS.
func New() *FS {
	return &FS{files: map[string][]byte{}, dirs: map[string]string{}}
}

// Canonical validates p and resolves a trailing slash to IndexFile.
func Canonical(p string) (string, error) {
	if !strings.HasPrefix(p, "/") {
		return "", errors.WrapError(ErrInvalidPath, errors.CategoryValidation, "vfs path must be absolute").
			WithContext("path", p).Build()
	}
	if strings.HasSuffix(p, "/") {
		p += IndexFile
	}
	if path.Clean(p) != p {
		return "", errors.WrapError(ErrInvalidPath, errors.CategoryValidation, "vfs path is not clean").
			WithContext("path", p).Build()
	}
	return p, nil
}

// Insert stores data at p. It fails if p equals an existing path, or if
// either path is a directory prefix of the other.
func (f *FS) Insert(p string, data []byte) error {
	p, err := Canonical(p)
	if err != nil {
		return err
	}
	if _, ok := f.files[p]; ok {
		return collision(p, p)
	}
	if other, ok := f.dirs[p]; ok {
		return collision(p, other)
	}
	for dir := path.Dir(p); dir != "/"; dir = path.Dir(dir) {
		if _, ok := f.files[dir]; ok {
			return collision(p, dir)
		}
	}

	f.files[p] = data
	for dir := path.Dir(p); dir != "/"; dir = path.Dir(dir) {
		if _, ok := f.dirs[dir]; ok {
			break
		}
		f.dirs[dir] = p
	}
	return nil
}

func collision(p, existing string) error {
	return errors.PathCollisionError("output paths overlap").
		WithContext("path", p).
		WithContext("existing", existing).
		Build()
}

// InsertString stores s as UTF-8 at p.
func (f *FS) InsertString(p, s string) error {
	return f.Insert(p, []byte(s))
}

// Merge inserts every entry of other in path order. It stops at the first
// collision; entries inserted before it are kept.
func (f *FS) Merge(other *FS) error {
	for _, p := range other.Paths() {
		if err := f.Insert(p, other.files[p]); err != nil {
			return err
		}
	}
	return nil
}

// Read returns the bytes stored at p. The returned slice must not be modified.
func (f *FS) Read(p string) ([]byte, bool) {
	p, err := Canonical(p)
	if err != nil {
		return nil, false
	}
	data, ok := f.files[p]
	return data, ok
}

// ReadString returns the content at p as a string.
func (f *FS) ReadString(p string) (string, bool) {
	data, ok := f.Read(p)
	if !ok {
		return "", false
	}
	return string(data), true
}

// Paths returns every stored path in lexical order.
func (f *FS) Paths() []string {
	out := make([]string, 0, len(f.files))
	for p := range f.files {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// Len returns the number of stored files.
func (f *FS) Len() int { return len(f.files) }

// Size returns the total number of stored bytes.
func (f *FS) Size() int64 {
	var n int64
	for _, data := range f.files {
		n += int64(len(data))
	}
	return n
}

// Digest is a hex sha256 over all paths and contents in path order. Two FS
// values with equal digests serve identical sites.
func (f *FS) Digest() string {
	h := sha256.New()
	var n [8]byte
	for _, p := range f.Paths() {
		data := f.files[p]
		h.Write([]byte(p))
		h.Write([]byte{0})
		binary.BigEndian.PutUint64(n[:], uint64(len(data)))
		h.Write(n[:])
		h.Write(data)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// StripPath drops the first strip segments of a site path. It returns false
// when nothing is left.
func StripPath(p string, strip int) (string, bool) {
	rest := strings.TrimPrefix(p, "/")
	for range strip {
		i := strings.IndexByte(rest, '/')
		if i < 0 {
			return "", false
		}
		rest = rest[i+1:]
	}
	return rest, rest != ""
}

// Materialize writes every file below root on the local disk after dropping
// strip leading path segments.
func (f *FS) Materialize(root string, strip int) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "create output root").
			WithContext("root", root).Build()
	}
	return f.MaterializeTo(afero.NewBasePathFs(afero.NewOsFs(), root), strip)
}

// MaterializeTo writes every file into dst, creating parent directories as
// needed.
func (f *FS) MaterializeTo(dst afero.Fs, strip int) error {
	for _, p := range f.Paths() {
		rel, ok := StripPath(p, strip)
		if !ok {
			return errors.ValidationError("path shorter than stripped prefix").
				WithContext("path", p).WithContext("strip", strip).Build()
		}
		name := filepath.FromSlash(rel)
		if err := dst.MkdirAll(filepath.Dir(name), 0o755); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "create output directory").
				WithContext("path", p).Build()
		}
		if err := afero.WriteFile(dst, name, f.files[p], 0o644); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "write output file").
				WithContext("path", p).Build()
		}
	}
	return nil
}
