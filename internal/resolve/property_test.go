package resolve

import (
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"git.home.luguber.info/inful/snowbow/internal/frontmatter"
	"git.home.luguber.info/inful/snowbow/internal/page"
)

var propLanguages = []string{"en", "fr", "de"}

// buildArticles creates one article per mask entry. Bit i of a mask says the
// article has a source in propLanguages[i]; a zero mask is treated as "en".
// stamps[i] < 0 leaves the article untimed, equal stamps produce ties.
func buildArticles(masks, stamps []int) []*Article {
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	arts := make([]*Article, 0, len(masks))
	for i, mask := range masks {
		if mask == 0 {
			mask = 1
		}
		name := fmt.Sprintf("a%03d", (i*37)%101)
		fm := frontmatter.Map{}
		if i < len(stamps) && stamps[i] >= 0 {
			fm[frontmatter.KeyTime] = frontmatter.Time(base.Add(time.Duration(stamps[i]) * time.Hour))
		}
		a := &Article{CommonName: name, Variants: map[string]*page.Page{}}
		for bit, lang := range propLanguages {
			if mask&(1<<bit) != 0 {
				a.Variants[lang] = page.New(page.Site{BasePath: "/"}, page.KindArticle, name, lang, ArticleRelativePath(name), "", fm)
			}
		}
		arts = append(arts, a)
	}
	return arts
}

func properties(t *testing.T) *gopter.Properties {
	t.Helper()
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(4242)
	parameters.MinSuccessfulTests = 200
	return gopter.NewProperties(parameters)
}

func TestResolutionProperties(t *testing.T) {
	props := properties(t)
	masks := gen.SliceOf(gen.IntRange(0, 7))
	stamps := gen.SliceOf(gen.IntRange(-1, 4))

	props.Property("every language has one entry per article", prop.ForAll(
		func(ms, ss []int) bool {
			arts := buildArticles(ms, ss)
			FillFallbacks(arts, propLanguages)
			g := NewGraph(propLanguages, arts, nil, nil)
			for _, l := range propLanguages {
				if len(g.Articles(l)) != len(arts) {
					return false
				}
			}
			return true
		}, masks, stamps))

	props.Property("sort is a strict total order and idempotent", prop.ForAll(
		func(ms, ss []int) bool {
			arts := buildArticles(ms, ss)
			FillFallbacks(arts, propLanguages)
			g := NewGraph(propLanguages, arts, nil, nil)
			for _, l := range propLanguages {
				list := g.Articles(l)
				for i := 1; i < len(list); i++ {
					a, b := list[i-1], list[i]
					if !a.HasTime() && b.HasTime() {
						return false
					}
					if a.HasTime() && b.HasTime() && a.PublishTime().Before(b.PublishTime()) {
						return false
					}
					if CompareArticles(a, b) > 0 {
						return false
					}
				}
				resorted := slices.Clone(list)
				slices.SortStableFunc(resorted, CompareArticles)
				if !slices.Equal(resorted, list) {
					return false
				}
			}
			return true
		}, masks, stamps))

	props.Property("index equals position in every language", prop.ForAll(
		func(ms, ss []int) bool {
			arts := buildArticles(ms, ss)
			FillFallbacks(arts, propLanguages)
			g := NewGraph(propLanguages, arts, nil, nil)
			for _, l := range propLanguages {
				for i, p := range g.Articles(l) {
					if p.Index != i || p.Language != l {
						return false
					}
				}
			}
			return true
		}, masks, stamps))

	props.Property("fallback clones copy the first available language", prop.ForAll(
		func(ms []int) bool {
			arts := buildArticles(ms, nil)
			original := make([]map[string]bool, len(arts))
			for i, a := range arts {
				original[i] = map[string]bool{}
				for l := range a.Variants {
					original[i][l] = true
				}
			}
			FillFallbacks(arts, propLanguages)
			for i, a := range arts {
				var first string
				for _, l := range propLanguages {
					if original[i][l] {
						first = l
						break
					}
				}
				for _, l := range propLanguages {
					v := a.Variants[l]
					if original[i][l] {
						if v.IsFallback() {
							return false
						}
						continue
					}
					if v.ContentLanguage != first || v.Language != l {
						return false
					}
				}
			}
			return true
		}, masks))

	props.TestingRun(t)
}
