package vfs

import (
	"slices"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// pathTable holds every path of depth 1 to 3 over the segments a, b, c, so
// random index slices produce frequent overlaps.
var pathTable = func() []string {
	segs := []string{"a", "b", "c"}
	var out []string
	var walk func(prefix string, depth int)
	walk = func(prefix string, depth int) {
		for _, s := range segs {
			p := prefix + "/" + s
			out = append(out, p)
			if depth < 3 {
				walk(p, depth+1)
			}
		}
	}
	walk("", 1)
	return out
}()

func overlaps(a, b string) bool {
	return a == b || strings.HasPrefix(a, b+"/") || strings.HasPrefix(b, a+"/")
}

func pathsFor(idx []int) []string {
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = pathTable[j]
	}
	return out
}

func TestCollisionProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1729)
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	indexes := gen.SliceOf(gen.IntRange(0, len(pathTable)-1))

	properties.Property("insert fails exactly at the first overlapping path", prop.ForAll(
		func(idx []int) bool {
			paths := pathsFor(idx)
			want := -1
		scan:
			for i := range paths {
				for j := range i {
					if overlaps(paths[i], paths[j]) {
						want = i
						break scan
					}
				}
			}

			f := New()
			got := -1
			for i, p := range paths {
				if err := f.InsertString(p, p); err != nil {
					got = i
					break
				}
			}
			return got == want
		}, indexes))

	properties.Property("non-overlapping sets are order independent", prop.ForAll(
		func(idx []int) bool {
			var paths []string
			for _, p := range pathsFor(idx) {
				if !slices.ContainsFunc(paths, func(q string) bool { return overlaps(p, q) }) {
					paths = append(paths, p)
				}
			}
			forward, backward := New(), New()
			for i := range paths {
				if forward.InsertString(paths[i], paths[i]) != nil {
					return false
				}
				j := len(paths) - 1 - i
				if backward.InsertString(paths[j], paths[j]) != nil {
					return false
				}
			}
			return forward.Digest() == backward.Digest() && forward.Len() == len(paths)
		}, indexes))

	properties.TestingRun(t)
}
