package vfs

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/snowbow/internal/foundation/errors"
)

func TestInsert_Collisions(t *testing.T) {
	tests := []struct {
		name  string
		first string
		then  string
	}{
		{"file then child", "/a", "/a/b"},
		{"child then parent", "/a/b", "/a"},
		{"same path twice", "/a", "/a"},
		{"deep child then ancestor", "/a/b/c/d", "/a/b"},
		{"trailing slash is index", "/a/", "/a/index.html"},
		{"index blocks file at dir", "/x/", "/x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New()
			require.NoError(t, f.InsertString(tt.first, "1"))
			err := f.InsertString(tt.then, "2")
			require.Error(t, err)
			require.True(t, errors.HasCategory(err, errors.CategoryCollision))
			require.Equal(t, 1, f.Len())
		})
	}
}

func TestInsert_CollisionNamesBothPaths(t *testing.T) {
	f := New()
	require.NoError(t, f.InsertString("/en/articles/x/index.html", ""))
	err := f.InsertString("/en/articles", "")
	ce, ok := errors.AsClassified(err)
	require.True(t, ok)
	got, _ := ce.Context().GetString("path")
	require.Equal(t, "/en/articles", got)
	got, _ = ce.Context().GetString("existing")
	require.Equal(t, "/en/articles/x/index.html", got)
}

func TestInsert_SiblingsAndPrefixNames(t *testing.T) {
	f := New()
	for _, p := range []string{"/a", "/ab", "/b/a", "/b/ab", "/c/", "/c.html"} {
		require.NoError(t, f.InsertString(p, p))
	}
	require.Equal(t, []string{"/a", "/ab", "/b/a", "/b/ab", "/c.html", "/c/index.html"}, f.Paths())
}

func TestInsert_InvalidPaths(t *testing.T) {
	f := New()
	for _, p := range []string{"", "a/b", "/a//b", "/a/../b", "/./a"} {
		err := f.InsertString(p, "")
		require.Error(t, err, p)
		require.True(t, stderrors.Is(err, ErrInvalidPath), p)
		require.True(t, errors.HasCategory(err, errors.CategoryValidation), p)
	}
	require.Zero(t, f.Len())
}

func TestReadString(t *testing.T) {
	f := New()
	require.NoError(t, f.InsertString("/", "home"))
	require.NoError(t, f.Insert("/img.png", []byte{0x89, 'P'}))

	s, ok := f.ReadString("/")
	require.True(t, ok)
	require.Equal(t, "home", s)
	s, ok = f.ReadString("/index.html")
	require.True(t, ok)
	require.Equal(t, "home", s)

	data, ok := f.Read("/img.png")
	require.True(t, ok)
	require.Equal(t, []byte{0x89, 'P'}, data)

	_, ok = f.ReadString("/missing")
	require.False(t, ok)
	_, ok = f.ReadString("relative")
	require.False(t, ok)
	require.EqualValues(t, 6, f.Size())
}

func TestMerge(t *testing.T) {
	a := New()
	require.NoError(t, a.InsertString("/a.html", "a"))
	b := New()
	require.NoError(t, b.InsertString("/b.html", "b"))
	require.NoError(t, b.InsertString("/c/", "c"))

	require.NoError(t, a.Merge(b))
	require.Equal(t, []string{"/a.html", "/b.html", "/c/index.html"}, a.Paths())

	clash := New()
	require.NoError(t, clash.InsertString("/c", "file"))
	err := a.Merge(clash)
	require.True(t, errors.HasCategory(err, errors.CategoryCollision))
}

func TestDigest(t *testing.T) {
	a := New()
	require.NoError(t, a.InsertString("/x", "1"))
	require.NoError(t, a.InsertString("/y", "2"))
	b := New()
	require.NoError(t, b.InsertString("/y", "2"))
	require.NoError(t, b.InsertString("/x", "1"))
	require.Equal(t, a.Digest(), b.Digest())

	c := New()
	require.NoError(t, c.InsertString("/x", "12"))
	require.NoError(t, c.InsertString("/y", ""))
	require.NotEqual(t, a.Digest(), c.Digest())
	require.Len(t, New().Digest(), 64)
}

func TestStripPath(t *testing.T) {
	tests := []struct {
		in    string
		strip int
		want  string
		ok    bool
	}{
		{"/en/index.html", 0, "en/index.html", true},
		{"/blog/en/index.html", 1, "en/index.html", true},
		{"/a/b/c/x.css", 3, "x.css", true},
		{"/blog/index.html", 2, "", false},
	}
	for _, tt := range tests {
		got, ok := StripPath(tt.in, tt.strip)
		require.Equal(t, tt.ok, ok, tt.in)
		require.Equal(t, tt.want, got, tt.in)
	}
}

func TestMaterializeTo(t *testing.T) {
	f := New()
	require.NoError(t, f.InsertString("/blog/", "root"))
	require.NoError(t, f.InsertString("/blog/en/articles/x/", "x"))
	require.NoError(t, f.InsertString("/blog/css/site.css", "body{}"))

	dst := afero.NewMemMapFs()
	require.NoError(t, f.MaterializeTo(dst, 1))

	for name, want := range map[string]string{
		"index.html":                "root",
		"en/articles/x/index.html": "x",
		"css/site.css":              "body{}",
	} {
		got, err := afero.ReadFile(dst, filepath.FromSlash(name))
		require.NoError(t, err, name)
		require.Equal(t, want, string(got))
	}

	err := f.MaterializeTo(afero.NewMemMapFs(), 2)
	require.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func TestMaterialize_Disk(t *testing.T) {
	root := filepath.Join(t.TempDir(), "public")
	f := New()
	require.NoError(t, f.InsertString("/en/index.html", "hello"))
	require.NoError(t, f.Materialize(root, 0))

	got, err := os.ReadFile(filepath.Join(root, "en", "index.html"))
	require.NoError(t, err)
	require.Equal(t, "hello", string(got))
}
