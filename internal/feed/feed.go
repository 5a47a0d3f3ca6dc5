// Package feed renders per-language Atom feeds of a site's articles.
package feed

import (
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/feeds"

	"git.home.luguber.info/inful/snowbow/internal/config"
	"git.home.luguber.info/inful/snowbow/internal/foundation/errors"
	"git.home.luguber.info/inful/snowbow/internal/resolve"
)

const (
	// FileName is the feed file below each language and the site root.
	FileName = "atom.xml"

	atomNS = "http://www.w3.org/2005/Atom"
)

// Path returns the site path of the feed for lang.
func Path(theme *config.Theme, lang string) string {
	return theme.BasePath + lang + "/" + FileName
}

// RootPath returns the site path of the default language's feed alias.
func RootPath(theme *config.Theme) string {
	return theme.BasePath + FileName
}

// ID returns the stable Atom id of a URL.
func ID(url string) string {
	return "urn:uuid:" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(url)).String()
}

// Build renders the Atom feed for lang. The feed and untimed articles are
// dated at buildTime.
func Build(theme *config.Theme, g *resolve.Graph, lang string, buildTime time.Time) (string, error) {
	home := theme.SchemeAndHost + theme.BasePath + lang + "/"
	af := &feeds.AtomFeed{
		Xmlns:    atomNS,
		Title:    theme.TranslateOr(lang, theme.CommonTitle),
		Subtitle: theme.TranslateOr(lang, theme.CommonSubtitle),
		Id:       ID(home),
		Updated:  buildTime.UTC().Format(time.RFC3339),
		Link:     &feeds.AtomLink{Href: home, Rel: "alternate"},
	}
	if theme.Author != "" || theme.Email != "" {
		af.Author = &feeds.AtomAuthor{AtomPerson: feeds.AtomPerson{Name: theme.Author, Email: theme.Email}}
	}

	for _, p := range g.Articles(lang) {
		when := buildTime
		if t, ok := p.Time(); ok {
			when = t
		}
		link := p.Permalink()
		af.Entries = append(af.Entries, &feeds.AtomEntry{
			Title:   p.Title(),
			Id:      ID(link),
			Updated: when.UTC().Format(time.RFC3339),
			Links:   []feeds.AtomLink{{Href: link, Rel: "alternate"}},
			Content: &feeds.AtomContent{Content: p.Content, Type: "html"},
		})
	}

	out, err := feeds.ToXML(af)
	if err != nil {
		return "", errors.BuildError("encode atom feed").WithCause(err).
			WithContext("language", lang).Build()
	}
	return out, nil
}

